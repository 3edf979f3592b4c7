package domain

import "strings"

// TimelineSlot names one fixed point on the purpose timeline.
type TimelineSlot string

// TimelineSlot values.
const (
	SlotCurrent    TimelineSlot = "current"
	SlotPast       TimelineSlot = "past"
	SlotNearFuture TimelineSlot = "near-future"
	SlotFuture     TimelineSlot = "future"
)

// TimelineSlots returns the slots in display order.
func TimelineSlots() []TimelineSlot {
	return []TimelineSlot{SlotPast, SlotCurrent, SlotNearFuture, SlotFuture}
}

// ParseTimelineSlot parses a slot name.
func ParseTimelineSlot(raw string) (TimelineSlot, error) {
	s := TimelineSlot(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidTimelineSlot
	}
	return s, nil
}

// Valid reports whether s is known.
func (s TimelineSlot) Valid() bool {
	switch s {
	case SlotCurrent, SlotPast, SlotNearFuture, SlotFuture:
		return true
	default:
		return false
	}
}

// Label returns the short caption for the slot.
func (s TimelineSlot) Label() string {
	switch s {
	case SlotCurrent:
		return "現在"
	case SlotPast:
		return "過去"
	case SlotNearFuture:
		return "数年先"
	case SlotFuture:
		return "将来"
	default:
		return string(s)
	}
}

// DefaultPurpose returns the seed purpose for the slot.
func (s TimelineSlot) DefaultPurpose() Purpose {
	switch s {
	case SlotPast:
		return Purpose{Title: "過去の目的", Description: "過去に目指していた価値"}
	case SlotNearFuture:
		return Purpose{Title: "数年先の目的", Description: "数年先に実現したい価値"}
	case SlotFuture:
		return Purpose{Title: "将来の目的", Description: "将来的に実現したい価値"}
	default:
		return DefaultPurpose()
	}
}

// Mode selects which partition of a purpose model is active.
type Mode string

// Mode values.
const (
	ModeSingle     Mode = "single"
	ModeTimeline   Mode = "timeline"
	ModeComparison Mode = "comparison"
)

// ParseMode parses a mode name.
func ParseMode(raw string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(raw)))
	if !m.Valid() {
		return "", ErrInvalidMode
	}
	return m, nil
}

// Valid reports whether m is known.
func (m Mode) Valid() bool {
	switch m {
	case ModeSingle, ModeTimeline, ModeComparison:
		return true
	default:
		return false
	}
}

// Partition holds one purpose and its stakeholders.
type Partition struct {
	Purpose      Purpose
	Stakeholders []Stakeholder
}

// NewPartition returns an empty partition seeded with purpose.
func NewPartition(purpose Purpose) Partition {
	return Partition{Purpose: purpose, Stakeholders: []Stakeholder{}}
}

// Clone returns a deep copy.
func (p Partition) Clone() Partition {
	out := Partition{Purpose: p.Purpose, Stakeholders: make([]Stakeholder, len(p.Stakeholders))}
	copy(out.Stakeholders, p.Stakeholders)
	return out
}

// StakeholdersInLayer returns stakeholders of one layer in insertion order.
func (p Partition) StakeholdersInLayer(layer Layer) []Stakeholder {
	out := make([]Stakeholder, 0)
	for _, s := range p.Stakeholders {
		if s.Layer == layer {
			out = append(out, s)
		}
	}
	return out
}
