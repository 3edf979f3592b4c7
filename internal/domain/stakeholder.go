package domain

import "strings"

// StakeholderCategory classifies a stakeholder and picks its arc colour.
type StakeholderCategory string

// StakeholderCategory values.
const (
	StakeholderCompany    StakeholderCategory = "company"
	StakeholderGovernment StakeholderCategory = "government"
	StakeholderCitizen    StakeholderCategory = "citizen"
	StakeholderExpert     StakeholderCategory = "expert"
)

// StakeholderCategories returns the categories in display order.
func StakeholderCategories() []StakeholderCategory {
	return []StakeholderCategory{StakeholderCompany, StakeholderGovernment, StakeholderCitizen, StakeholderExpert}
}

// ParseStakeholderCategory parses a stakeholder category name.
func ParseStakeholderCategory(raw string) (StakeholderCategory, error) {
	c := StakeholderCategory(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", ErrInvalidStakeholderCategory
	}
	return c, nil
}

// Valid reports whether c is known.
func (c StakeholderCategory) Valid() bool {
	switch c {
	case StakeholderCompany, StakeholderGovernment, StakeholderCitizen, StakeholderExpert:
		return true
	default:
		return false
	}
}

// Color returns the base arc colour.
func (c StakeholderCategory) Color() string {
	switch c {
	case StakeholderCompany:
		return "#69DB7C"
	case StakeholderGovernment:
		return "#FFD43B"
	case StakeholderCitizen:
		return "#FF8A65"
	case StakeholderExpert:
		return "#5C7CFA"
	default:
		return "#CCCCCC"
	}
}

// Label returns the display label.
func (c StakeholderCategory) Label() string {
	switch c {
	case StakeholderCompany:
		return "企業"
	case StakeholderGovernment:
		return "行政"
	case StakeholderCitizen:
		return "住民"
	case StakeholderExpert:
		return "専門家"
	default:
		return string(c)
	}
}

// Layer places a stakeholder on the upper (supporting) or lower (leading) half.
type Layer string

// Layer values.
const (
	LayerSupporting Layer = "supporting"
	LayerLeading    Layer = "leading"
)

// ParseLayer parses a layer name.
func ParseLayer(raw string) (Layer, error) {
	l := Layer(strings.ToLower(strings.TrimSpace(raw)))
	if !l.Valid() {
		return "", ErrInvalidLayer
	}
	return l, nil
}

// Valid reports whether l is known.
func (l Layer) Valid() bool {
	switch l {
	case LayerSupporting, LayerLeading:
		return true
	default:
		return false
	}
}

// Label returns the caption drawn for the layer's half of the ring.
func (l Layer) Label() string {
	switch l {
	case LayerSupporting:
		return "共創のステークホルダー"
	case LayerLeading:
		return "主体のステークホルダー"
	default:
		return string(l)
	}
}

// Stakeholder represents one arc of the purpose ring.
type Stakeholder struct {
	ID       string
	Name     string
	Role     string
	Goal     string
	Category StakeholderCategory
	Layer    Layer
}

// NewStakeholder constructs a new value for this package.
func NewStakeholder(id, name, role, goal string, category StakeholderCategory, layer Layer) (Stakeholder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Stakeholder{}, ErrInvalidID
	}
	var err error
	if name, err = normalizeField(name, MaxStakeholderNameLength, ErrInvalidName); err != nil {
		return Stakeholder{}, err
	}
	if role, err = normalizeField(role, MaxStakeholderRoleLength, ErrInvalidRole); err != nil {
		return Stakeholder{}, err
	}
	if goal, err = normalizeField(goal, MaxStakeholderGoalLength, ErrInvalidGoal); err != nil {
		return Stakeholder{}, err
	}
	if !category.Valid() {
		return Stakeholder{}, ErrInvalidStakeholderCategory
	}
	if !layer.Valid() {
		return Stakeholder{}, ErrInvalidLayer
	}
	return Stakeholder{ID: id, Name: name, Role: role, Goal: goal, Category: category, Layer: layer}, nil
}

// StakeholderPatch lists optional stakeholder edits; nil fields are left alone.
type StakeholderPatch struct {
	Name     *string
	Role     *string
	Goal     *string
	Category *StakeholderCategory
	Layer    *Layer
}

// Empty reports whether the patch changes nothing.
func (p StakeholderPatch) Empty() bool {
	return p.Name == nil && p.Role == nil && p.Goal == nil && p.Category == nil && p.Layer == nil
}

// Apply returns a copy of s with the patch applied and validated.
func (p StakeholderPatch) Apply(s Stakeholder) (Stakeholder, error) {
	next := s
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Role != nil {
		next.Role = *p.Role
	}
	if p.Goal != nil {
		next.Goal = *p.Goal
	}
	if p.Category != nil {
		next.Category = *p.Category
	}
	if p.Layer != nil {
		next.Layer = *p.Layer
	}
	return NewStakeholder(next.ID, next.Name, next.Role, next.Goal, next.Category, next.Layer)
}
