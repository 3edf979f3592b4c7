package domain

import "strings"

// Category identifies one of the six ordered logic-model stages.
type Category string

// Category values in left-to-right stage order.
const (
	CategoryInputs         Category = "inputs"
	CategoryActivities     Category = "activities"
	CategoryOutputs        Category = "outputs"
	CategoryShortOutcomes  Category = "short_outcomes"
	CategoryMiddleOutcomes Category = "middle_outcomes"
	CategoryImpact         Category = "impact"
)

var categoryOrder = []Category{
	CategoryInputs,
	CategoryActivities,
	CategoryOutputs,
	CategoryShortOutcomes,
	CategoryMiddleOutcomes,
	CategoryImpact,
}

// Categories returns every category in stage order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseCategory parses a category name, case-insensitively.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c.Index() >= 0
}

// Index returns the stage position of c, or -1 when c is unknown.
func (c Category) Index() int {
	switch c {
	case CategoryInputs:
		return 0
	case CategoryActivities:
		return 1
	case CategoryOutputs:
		return 2
	case CategoryShortOutcomes:
		return 3
	case CategoryMiddleOutcomes:
		return 4
	case CategoryImpact:
		return 5
	default:
		return -1
	}
}

// Next returns the successor stage. The last stage has none.
func (c Category) Next() (Category, bool) {
	idx := c.Index()
	if idx < 0 || idx+1 >= len(categoryOrder) {
		return "", false
	}
	return categoryOrder[idx+1], true
}

// IsLast reports whether c is the final stage.
func (c Category) IsLast() bool {
	return c == CategoryImpact
}

// Label returns the display label.
func (c Category) Label() string {
	switch c {
	case CategoryInputs:
		return "インプット"
	case CategoryActivities:
		return "アクティビティ"
	case CategoryOutputs:
		return "アウトプット"
	case CategoryShortOutcomes:
		return "短期アウトカム"
	case CategoryMiddleOutcomes:
		return "中期アウトカム"
	case CategoryImpact:
		return "インパクト"
	default:
		return string(c)
	}
}

// Color returns the card fill colour as a hex string.
func (c Category) Color() string {
	switch c {
	case CategoryInputs:
		return "#FFD166"
	case CategoryActivities:
		return "#FF6B35"
	case CategoryOutputs:
		return "#5A3FC0"
	case CategoryShortOutcomes:
		return "#00A86B"
	case CategoryMiddleOutcomes:
		return "#2D9CDB"
	case CategoryImpact:
		return "#E05297"
	default:
		return "#CCCCCC"
	}
}
