package layout

import (
	"strings"
	"unicode/utf8"
)

// WrapText splits text into consecutive chunks of at most size runes.
// Empty text yields a single empty line.
func WrapText(text string, size int) []string {
	if text == "" || size <= 0 {
		return []string{text}
	}
	runes := []rune(text)
	lines := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		lines = append(lines, string(runes[start:end]))
	}
	return lines
}

// CardLines word-wraps card text for a card of the given width. Words longer
// than a line, such as unspaced Japanese, are split by rune. At most three
// lines are kept; overflow truncates the last line with an ellipsis.
func CardLines(text string, cardWidth float64) []string {
	maxChars := int(cardWidth / cardCharWidth)
	var lines []string
	current := ""
	for _, word := range strings.Split(text, " ") {
		if maxChars > 0 && utf8.RuneCountInString(word) > maxChars {
			if current != "" {
				lines = append(lines, current)
			}
			chunks := WrapText(word, maxChars)
			lines = append(lines, chunks[:len(chunks)-1]...)
			current = chunks[len(chunks)-1]
			continue
		}
		if utf8.RuneCountInString(current+word) <= maxChars {
			if current != "" {
				current += " "
			}
			current += word
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) <= cardMaxLines {
		return lines
	}
	out := lines[:cardMaxLines:cardMaxLines]
	last := []rune(out[cardMaxLines-1])
	keep := max(maxChars-3, 0)
	if len(last) > keep {
		last = last[:keep]
	}
	out[cardMaxLines-1] = string(last) + "..."
	return out
}
