package domain

// Purpose is the central statement of a purpose diagram.
type Purpose struct {
	Title       string
	Description string
}

// NewPurpose constructs a new value for this package.
func NewPurpose(title, description string) (Purpose, error) {
	var err error
	if title, err = normalizeField(title, MaxPurposeTitleLength, ErrInvalidTitle); err != nil {
		return Purpose{}, err
	}
	if description, err = normalizeField(description, MaxPurposeDescriptionLength, ErrInvalidDescription); err != nil {
		return Purpose{}, err
	}
	return Purpose{Title: title, Description: description}, nil
}

// DefaultPurpose is the purpose given to fresh comparison partitions.
func DefaultPurpose() Purpose {
	return Purpose{Title: "タイトル", Description: "共通の目的"}
}

// PlaceholderPurpose is shown in comparison mode while nothing is selected.
func PlaceholderPurpose() Purpose {
	return Purpose{Title: "タイトル", Description: "比較対象を選択してください"}
}
