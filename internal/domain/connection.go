package domain

import "strings"

// Connection is a directed arrow between two items in adjacent stages.
type Connection struct {
	ID     string
	Source string
	Target string
}

// NewConnection constructs a new value for this package.
func NewConnection(id, source, target string) (Connection, error) {
	id = strings.TrimSpace(id)
	source = strings.TrimSpace(source)
	target = strings.TrimSpace(target)
	if id == "" || source == "" || target == "" {
		return Connection{}, ErrInvalidID
	}
	return Connection{ID: id, Source: source, Target: target}, nil
}

// Touches reports whether the connection starts or ends at itemID.
func (c Connection) Touches(itemID string) bool {
	return c.Source == itemID || c.Target == itemID
}

// CheckAdjacency applies the stage-order rule to a source and target category.
// It accepts exactly when target immediately follows source.
func CheckAdjacency(source, target Category) error {
	i, j := source.Index(), target.Index()
	if i < 0 || j < 0 {
		return ErrInvalidCategory
	}
	switch {
	case j <= i:
		return ErrWrongDirection
	case j > i+1:
		return ErrNotAdjacent
	default:
		return nil
	}
}
