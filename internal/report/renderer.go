package report

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const minWrapWidth = 24

// Renderer renders markdown for terminal output and recreates the glamour
// renderer when the wrap width changes.
type Renderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// NewRenderer constructs a new value for this package. An empty style selects
// "dark".
func NewRenderer(style string) *Renderer {
	style = strings.TrimSpace(style)
	if style == "" {
		style = "dark"
	}
	return &Renderer{style: style}
}

// Render converts markdown into ANSI-styled terminal text wrapped at width.
// On renderer failure the raw markdown is returned.
func (r *Renderer) Render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	wrapWidth := max(width, minWrapWidth)
	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}
	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}
