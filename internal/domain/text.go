package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Field length limits, counted in runes after trimming.
const (
	MaxItemTextLength           = 30
	MaxStakeholderNameLength    = 10
	MaxStakeholderRoleLength    = 10
	MaxStakeholderGoalLength    = 20
	MaxPurposeTitleLength       = 10
	MaxPurposeDescriptionLength = 20
)

// normalizeField trims raw and enforces a non-empty value of at most limit runes.
// Over-long values wrap both fieldErr and ErrTooLong.
func normalizeField(raw string, limit int, fieldErr error) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fieldErr
	}
	if n := utf8.RuneCountInString(value); n > limit {
		return "", fmt.Errorf("%w: %w (%d > %d)", fieldErr, ErrTooLong, n, limit)
	}
	return value, nil
}
