package domain

import (
	"fmt"
	"slices"
	"strings"
)

// PurposeModel is the root aggregate for the circular purpose diagram.
// Exactly one partition is writable at a time, except in comparison mode
// without a selection.
type PurposeModel struct {
	Timeline           map[TimelineSlot]Partition
	Comparisons        map[string]Partition
	CurrentSlot        TimelineSlot
	Mode               Mode
	ComparisonNames    []string
	SelectedComparison string
}

// NewPurposeModel returns a model with default timeline partitions.
func NewPurposeModel() PurposeModel {
	m := PurposeModel{}
	m.Reset()
	return m
}

// Reset restores defaults: seeded timeline, no comparisons, timeline mode.
func (m *PurposeModel) Reset() {
	m.Timeline = make(map[TimelineSlot]Partition, 4)
	for _, slot := range TimelineSlots() {
		m.Timeline[slot] = NewPartition(slot.DefaultPurpose())
	}
	m.Comparisons = map[string]Partition{}
	m.ComparisonNames = []string{}
	m.SelectedComparison = ""
	m.CurrentSlot = SlotCurrent
	m.Mode = ModeTimeline
}

// Clone returns a deep copy.
func (m PurposeModel) Clone() PurposeModel {
	out := m
	out.Timeline = make(map[TimelineSlot]Partition, len(m.Timeline))
	for k, v := range m.Timeline {
		out.Timeline[k] = v.Clone()
	}
	out.Comparisons = make(map[string]Partition, len(m.Comparisons))
	for k, v := range m.Comparisons {
		out.Comparisons[k] = v.Clone()
	}
	out.ComparisonNames = slices.Clone(m.ComparisonNames)
	if out.ComparisonNames == nil {
		out.ComparisonNames = []string{}
	}
	return out
}

// SetMode switches the active mode.
func (m *PurposeModel) SetMode(mode Mode) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}
	m.Mode = mode
	return nil
}

// SelectTimeline moves the timeline pointer.
func (m *PurposeModel) SelectTimeline(slot TimelineSlot) error {
	if !slot.Valid() {
		return ErrInvalidTimelineSlot
	}
	m.CurrentSlot = slot
	if _, ok := m.Timeline[slot]; !ok {
		m.Timeline[slot] = NewPartition(slot.DefaultPurpose())
	}
	return nil
}

// AddComparison registers and selects a new comparison partition.
func (m *PurposeModel) AddComparison(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidComparisonName
	}
	if slices.Contains(m.ComparisonNames, name) {
		return "", fmt.Errorf("comparison %q: %w", name, ErrDuplicateComparison)
	}
	m.ComparisonNames = append(m.ComparisonNames, name)
	m.Comparisons[name] = NewPartition(DefaultPurpose())
	m.SelectedComparison = name
	return name, nil
}

// RemoveComparison deletes a comparison and its data. When it was selected the
// selection falls back to the first remaining name, or none.
func (m *PurposeModel) RemoveComparison(name string) error {
	name = strings.TrimSpace(name)
	idx := slices.Index(m.ComparisonNames, name)
	if idx < 0 {
		return ErrComparisonNotFound
	}
	m.ComparisonNames = slices.Delete(m.ComparisonNames, idx, idx+1)
	delete(m.Comparisons, name)
	if m.SelectedComparison == name {
		m.SelectedComparison = ""
		if len(m.ComparisonNames) > 0 {
			m.SelectedComparison = m.ComparisonNames[0]
		}
	}
	return nil
}

// SelectComparison moves the comparison pointer.
func (m *PurposeModel) SelectComparison(name string) error {
	name = strings.TrimSpace(name)
	if !slices.Contains(m.ComparisonNames, name) {
		return ErrComparisonNotFound
	}
	m.SelectedComparison = name
	if _, ok := m.Comparisons[name]; !ok {
		m.Comparisons[name] = NewPartition(DefaultPurpose())
	}
	return nil
}

// activeKey resolves the writable partition for the current mode.
func (m PurposeModel) activeKey() (slot TimelineSlot, comparison string, err error) {
	switch m.Mode {
	case ModeSingle:
		return SlotCurrent, "", nil
	case ModeTimeline:
		return m.CurrentSlot, "", nil
	case ModeComparison:
		if m.SelectedComparison == "" {
			return "", "", ErrNoComparisonSelected
		}
		return "", m.SelectedComparison, nil
	default:
		return "", "", ErrInvalidMode
	}
}

// Writable reports whether a partition can currently be edited.
func (m PurposeModel) Writable() bool {
	_, _, err := m.activeKey()
	return err == nil
}

// ActiveView returns a copy of the active partition. In comparison mode with
// no selection the read-only placeholder is returned.
func (m PurposeModel) ActiveView() Partition {
	slot, name, err := m.activeKey()
	if err != nil {
		return NewPartition(PlaceholderPurpose())
	}
	if name != "" {
		return m.Comparisons[name].Clone()
	}
	p, ok := m.Timeline[slot]
	if !ok {
		return NewPartition(slot.DefaultPurpose())
	}
	return p.Clone()
}

// Caption returns the label drawn under the ring for the active partition.
func (m PurposeModel) Caption() string {
	switch m.Mode {
	case ModeTimeline:
		return m.CurrentSlot.Label()
	case ModeComparison:
		return m.SelectedComparison
	default:
		return ""
	}
}

// mutateActive applies fn to the active partition in place.
func (m *PurposeModel) mutateActive(fn func(p *Partition) error) error {
	slot, name, err := m.activeKey()
	if err != nil {
		return err
	}
	var p Partition
	if name != "" {
		p = m.Comparisons[name].Clone()
	} else {
		var ok bool
		if p, ok = m.Timeline[slot]; !ok {
			p = NewPartition(slot.DefaultPurpose())
		}
		p = p.Clone()
	}
	if err := fn(&p); err != nil {
		return err
	}
	if name != "" {
		m.Comparisons[name] = p
	} else {
		m.Timeline[slot] = p
	}
	return nil
}

// AddStakeholder appends a validated stakeholder to the active partition.
func (m *PurposeModel) AddStakeholder(s Stakeholder) error {
	s, err := NewStakeholder(s.ID, s.Name, s.Role, s.Goal, s.Category, s.Layer)
	if err != nil {
		return err
	}
	return m.mutateActive(func(p *Partition) error {
		if slices.ContainsFunc(p.Stakeholders, func(x Stakeholder) bool { return x.ID == s.ID }) {
			return fmt.Errorf("stakeholder %q: %w", s.ID, ErrDuplicateID)
		}
		p.Stakeholders = append(p.Stakeholders, s)
		return nil
	})
}

// UpdateStakeholder applies patch to a stakeholder of the active partition.
func (m *PurposeModel) UpdateStakeholder(id string, patch StakeholderPatch) (Stakeholder, error) {
	id = strings.TrimSpace(id)
	var out Stakeholder
	err := m.mutateActive(func(p *Partition) error {
		idx := slices.IndexFunc(p.Stakeholders, func(x Stakeholder) bool { return x.ID == id })
		if idx < 0 {
			return ErrStakeholderNotFound
		}
		next, err := patch.Apply(p.Stakeholders[idx])
		if err != nil {
			return err
		}
		p.Stakeholders[idx] = next
		out = next
		return nil
	})
	return out, err
}

// RemoveStakeholder deletes a stakeholder from the active partition.
func (m *PurposeModel) RemoveStakeholder(id string) (Stakeholder, error) {
	id = strings.TrimSpace(id)
	var out Stakeholder
	err := m.mutateActive(func(p *Partition) error {
		idx := slices.IndexFunc(p.Stakeholders, func(x Stakeholder) bool { return x.ID == id })
		if idx < 0 {
			return ErrStakeholderNotFound
		}
		out = p.Stakeholders[idx]
		p.Stakeholders = slices.Delete(p.Stakeholders, idx, idx+1)
		return nil
	})
	return out, err
}

// UpdatePurpose edits the active partition's purpose. Nil fields are left alone.
func (m *PurposeModel) UpdatePurpose(title, description *string) (Purpose, error) {
	var out Purpose
	err := m.mutateActive(func(p *Partition) error {
		next := p.Purpose
		if title != nil {
			next.Title = *title
		}
		if description != nil {
			next.Description = *description
		}
		validated, err := NewPurpose(next.Title, next.Description)
		if err != nil {
			return err
		}
		p.Purpose = validated
		out = validated
		return nil
	})
	return out, err
}
