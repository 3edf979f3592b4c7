package domain

import "strings"

// Item represents one card on the logic board.
// Positions are derived by the layout engine and never stored.
type Item struct {
	ID       string
	Text     string
	Category Category
}

// NewItem constructs a new value for this package.
func NewItem(id, text string, category Category) (Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Item{}, ErrInvalidID
	}
	text, err := normalizeField(text, MaxItemTextLength, ErrInvalidText)
	if err != nil {
		return Item{}, err
	}
	if !category.Valid() {
		return Item{}, ErrInvalidCategory
	}
	return Item{ID: id, Text: text, Category: category}, nil
}
