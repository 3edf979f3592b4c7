package tui

import (
	"testing"

	"charm.land/bubbles/v2/key"
)

// TestKeyMapHelpGroups verifies each tab advertises only its own bindings.
func TestKeyMapHelpGroups(t *testing.T) {
	keys := newKeyMap()
	logic := logicKeyMap{keys}
	purpose := purposeKeyMap{keys}

	if !containsBinding(logic.ShortHelp(), keys.connect) {
		t.Fatal("logic short help missing draw arrow")
	}
	if containsBinding(logic.ShortHelp(), keys.cycleMode) {
		t.Fatal("logic short help should not list cycle mode")
	}
	if !containsBinding(purpose.ShortHelp(), keys.cycleMode) {
		t.Fatal("purpose short help missing cycle mode")
	}
	for _, group := range [][][]key.Binding{logic.FullHelp(), purpose.FullHelp()} {
		found := false
		for _, row := range group {
			if containsBinding(row, keys.quit) {
				found = true
			}
		}
		if !found {
			t.Fatal("full help missing quit")
		}
	}
}

// TestKeyMapShiftAliases verifies uppercase bindings also match shift chords.
func TestKeyMapShiftAliases(t *testing.T) {
	keys := newKeyMap()
	for _, b := range []key.Binding{keys.newModel, keys.dropCompare} {
		got := b.Keys()
		if len(got) != 2 {
			t.Fatalf("binding %q keys = %#v, want upper and shift alias", b.Help().Key, got)
		}
	}
}

func containsBinding(bindings []key.Binding, want key.Binding) bool {
	for _, b := range bindings {
		if b.Help().Key == want.Help().Key && b.Help().Desc == want.Help().Desc {
			return true
		}
	}
	return false
}
