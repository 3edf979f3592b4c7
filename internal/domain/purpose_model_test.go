package domain

import (
	"errors"
	"testing"
)

func mustStakeholder(t *testing.T, id, name string, layer Layer) Stakeholder {
	t.Helper()
	s, err := NewStakeholder(id, name, "funder", "grow the region", StakeholderCompany, layer)
	if err != nil {
		t.Fatalf("NewStakeholder() error = %v", err)
	}
	return s
}

// TestNewStakeholderValidation verifies behavior for the covered scenario.
func TestNewStakeholderValidation(t *testing.T) {
	cases := []struct {
		name string
		run  func() error
		want error
	}{
		{"blank name", func() error {
			_, err := NewStakeholder("s1", " ", "r", "g", StakeholderExpert, LayerLeading)
			return err
		}, ErrInvalidName},
		{"long role", func() error {
			_, err := NewStakeholder("s1", "n", "12345678901", "g", StakeholderExpert, LayerLeading)
			return err
		}, ErrInvalidRole},
		{"long goal", func() error {
			_, err := NewStakeholder("s1", "n", "r", "123456789012345678901", StakeholderExpert, LayerLeading)
			return err
		}, ErrTooLong},
		{"bad category", func() error {
			_, err := NewStakeholder("s1", "n", "r", "g", StakeholderCategory("ngo"), LayerLeading)
			return err
		}, ErrInvalidStakeholderCategory},
		{"bad layer", func() error {
			_, err := NewStakeholder("s1", "n", "r", "g", StakeholderCitizen, Layer("middle"))
			return err
		}, ErrInvalidLayer},
		{"long title", func() error {
			_, err := NewPurpose("12345678901", "d")
			return err
		}, ErrInvalidTitle},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

// TestPurposeModelDefaults verifies behavior for the covered scenario.
func TestPurposeModelDefaults(t *testing.T) {
	m := NewPurposeModel()
	if m.Mode != ModeTimeline || m.CurrentSlot != SlotCurrent {
		t.Fatalf("unexpected defaults mode=%q slot=%q", m.Mode, m.CurrentSlot)
	}
	if got := m.Timeline[SlotPast].Purpose.Title; got != "過去の目的" {
		t.Fatalf("unexpected past title %q", got)
	}
	if got := m.ActiveView().Purpose; got != DefaultPurpose() {
		t.Fatalf("unexpected current purpose %+v", got)
	}
	if m.Caption() != "現在" {
		t.Fatalf("unexpected caption %q", m.Caption())
	}
}

// TestPurposeModelPartitionIsolation verifies behavior for the covered scenario.
func TestPurposeModelPartitionIsolation(t *testing.T) {
	m := NewPurposeModel()
	if err := m.AddStakeholder(mustStakeholder(t, "s1", "A社", LayerSupporting)); err != nil {
		t.Fatalf("AddStakeholder() error = %v", err)
	}
	if err := m.SelectTimeline(SlotPast); err != nil {
		t.Fatalf("SelectTimeline() error = %v", err)
	}
	if n := len(m.ActiveView().Stakeholders); n != 0 {
		t.Fatalf("past slot should be empty, got %d", n)
	}
	if err := m.SelectTimeline(SlotCurrent); err != nil {
		t.Fatalf("SelectTimeline() error = %v", err)
	}
	if n := len(m.ActiveView().Stakeholders); n != 1 {
		t.Fatalf("current slot should keep its stakeholder, got %d", n)
	}
	if err := m.SelectTimeline(TimelineSlot("someday")); !errors.Is(err, ErrInvalidTimelineSlot) {
		t.Fatalf("expected ErrInvalidTimelineSlot, got %v", err)
	}
}

// TestPurposeModelComparisons verifies behavior for the covered scenario.
func TestPurposeModelComparisons(t *testing.T) {
	m := NewPurposeModel()
	if err := m.SetMode(ModeComparison); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	if m.Writable() {
		t.Fatal("comparison mode without a selection must be read-only")
	}
	if got := m.ActiveView().Purpose; got != PlaceholderPurpose() {
		t.Fatalf("unexpected placeholder %+v", got)
	}
	if err := m.AddStakeholder(mustStakeholder(t, "s1", "A社", LayerLeading)); !errors.Is(err, ErrNoComparisonSelected) {
		t.Fatalf("expected ErrNoComparisonSelected, got %v", err)
	}

	if _, err := m.AddComparison("  "); !errors.Is(err, ErrInvalidComparisonName) {
		t.Fatalf("expected ErrInvalidComparisonName, got %v", err)
	}
	if _, err := m.AddComparison(" A "); err != nil {
		t.Fatalf("AddComparison() error = %v", err)
	}
	if _, err := m.AddComparison("A"); !errors.Is(err, ErrDuplicateComparison) {
		t.Fatalf("expected ErrDuplicateComparison, got %v", err)
	}
	if _, err := m.AddComparison("B"); err != nil {
		t.Fatalf("AddComparison() error = %v", err)
	}
	if m.SelectedComparison != "B" || m.Caption() != "B" {
		t.Fatalf("new comparison should be selected, got %q", m.SelectedComparison)
	}
	if err := m.AddStakeholder(mustStakeholder(t, "s1", "B社", LayerLeading)); err != nil {
		t.Fatalf("AddStakeholder() error = %v", err)
	}
	if err := m.SelectComparison("A"); err != nil {
		t.Fatalf("SelectComparison() error = %v", err)
	}
	if n := len(m.ActiveView().Stakeholders); n != 0 {
		t.Fatalf("comparison A should be empty, got %d", n)
	}
	if err := m.SelectComparison("C"); !errors.Is(err, ErrComparisonNotFound) {
		t.Fatalf("expected ErrComparisonNotFound, got %v", err)
	}

	if err := m.RemoveComparison("A"); err != nil {
		t.Fatalf("RemoveComparison() error = %v", err)
	}
	if m.SelectedComparison != "B" {
		t.Fatalf("selection should fall back to B, got %q", m.SelectedComparison)
	}
	if err := m.RemoveComparison("B"); err != nil {
		t.Fatalf("RemoveComparison() error = %v", err)
	}
	if m.SelectedComparison != "" || len(m.Comparisons) != 0 {
		t.Fatalf("expected no comparisons left, got %q %d", m.SelectedComparison, len(m.Comparisons))
	}
}

// TestPurposeModelEdits verifies behavior for the covered scenario.
func TestPurposeModelEdits(t *testing.T) {
	m := NewPurposeModel()
	if err := m.AddStakeholder(mustStakeholder(t, "s1", "A社", LayerSupporting)); err != nil {
		t.Fatalf("AddStakeholder() error = %v", err)
	}
	name := "B社"
	layer := LayerLeading
	got, err := m.UpdateStakeholder("s1", StakeholderPatch{Name: &name, Layer: &layer})
	if err != nil {
		t.Fatalf("UpdateStakeholder() error = %v", err)
	}
	if got.Name != "B社" || got.Layer != LayerLeading || got.Role != "funder" {
		t.Fatalf("unexpected stakeholder %+v", got)
	}
	blank := "  "
	if _, err := m.UpdateStakeholder("s1", StakeholderPatch{Role: &blank}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if m.ActiveView().Stakeholders[0].Role != "funder" {
		t.Fatal("rejected edit must not change the stakeholder")
	}

	title := "新しい目的"
	if _, err := m.UpdatePurpose(&title, nil); err != nil {
		t.Fatalf("UpdatePurpose() error = %v", err)
	}
	if m.ActiveView().Purpose.Title != title || m.ActiveView().Purpose.Description != "共通の目的" {
		t.Fatalf("unexpected purpose %+v", m.ActiveView().Purpose)
	}
	if _, err := m.RemoveStakeholder("s1"); err != nil {
		t.Fatalf("RemoveStakeholder() error = %v", err)
	}
	if _, err := m.RemoveStakeholder("s1"); !errors.Is(err, ErrStakeholderNotFound) {
		t.Fatalf("expected ErrStakeholderNotFound, got %v", err)
	}

	m.Reset()
	if m.ActiveView().Purpose != DefaultPurpose() || m.Mode != ModeTimeline {
		t.Fatalf("reset should restore defaults, got %+v", m.ActiveView().Purpose)
	}
}

// TestPurposeModelSingleModeUsesCurrent verifies behavior for the covered scenario.
func TestPurposeModelSingleModeUsesCurrent(t *testing.T) {
	m := NewPurposeModel()
	if err := m.SelectTimeline(SlotFuture); err != nil {
		t.Fatalf("SelectTimeline() error = %v", err)
	}
	if err := m.SetMode(ModeSingle); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	if err := m.AddStakeholder(mustStakeholder(t, "s1", "A社", LayerSupporting)); err != nil {
		t.Fatalf("AddStakeholder() error = %v", err)
	}
	if len(m.Timeline[SlotCurrent].Stakeholders) != 1 || len(m.Timeline[SlotFuture].Stakeholders) != 0 {
		t.Fatal("single mode must write to the current slot")
	}
	if m.Caption() != "" {
		t.Fatalf("single mode has no caption, got %q", m.Caption())
	}
	if err := m.SetMode(Mode("grid")); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}
