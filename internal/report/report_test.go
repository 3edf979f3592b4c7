package report

import (
	"strings"
	"testing"
	"time"

	"github.com/hylla/zukai/internal/domain"
)

// TestLogicMarkdown verifies behavior for the covered scenario.
func TestLogicMarkdown(t *testing.T) {
	m := domain.NewLogicModel()
	for _, item := range []domain.Item{
		{ID: "a", Text: "資金_1", Category: domain.CategoryInputs},
		{ID: "b", Text: "研修", Category: domain.CategoryActivities},
	} {
		if err := m.AddItem(item); err != nil {
			t.Fatalf("AddItem() error = %v", err)
		}
	}
	if err := m.AddConnection(domain.Connection{ID: "c", Source: "a", Target: "b"}); err != nil {
		t.Fatalf("AddConnection() error = %v", err)
	}
	out := LogicMarkdown(m)
	for _, want := range []string{"2 items, 1 connections", "## インプット", "- 資金\\_1 `a`", "  - → 研修", "## インパクト\n\n_none_"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in\n%s", want, out)
		}
	}
}

// TestPurposeMarkdown verifies behavior for the covered scenario.
func TestPurposeMarkdown(t *testing.T) {
	m := domain.NewPurposeModel()
	s, err := domain.NewStakeholder("s1", "A|B", "role", "goal", domain.StakeholderExpert, domain.LayerLeading)
	if err != nil {
		t.Fatalf("NewStakeholder() error = %v", err)
	}
	if err := m.AddStakeholder(s); err != nil {
		t.Fatalf("AddStakeholder() error = %v", err)
	}
	out := PurposeMarkdown(m)
	for _, want := range []string{"- timeline: 現在", "## タイトル", "### 主体のステークホルダー", `| A\|B | role | goal | 専門家 | `+"`s1` |"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in\n%s", want, out)
		}
	}

	if err := m.SetMode(domain.ModeComparison); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	out = PurposeMarkdown(m)
	if !strings.Contains(out, "- comparisons: _none_") || !strings.Contains(out, "比較対象を選択してください") {
		t.Fatalf("unexpected comparison summary\n%s", out)
	}
}

// TestHistoryMarkdown verifies behavior for the covered scenario.
func TestHistoryMarkdown(t *testing.T) {
	if out := HistoryMarkdown(nil); !strings.Contains(out, "no changes recorded") {
		t.Fatalf("unexpected empty history %q", out)
	}
	out := HistoryMarkdown([]domain.ChangeEvent{{
		ID:         3,
		Diagram:    domain.DiagramLogic,
		Operation:  domain.ChangeOperationCreate,
		SubjectID:  "item-1",
		ActorID:    "agent-7",
		ActorType:  domain.ActorTypeAgent,
		OccurredAt: time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC),
	}})
	if !strings.Contains(out, "| 3 | 2026-02-21 12:00:00 | logic | create | item-1 | agent-7 (agent) |") {
		t.Fatalf("unexpected history\n%s", out)
	}
}

// TestRendererFallsBackToMarkdown verifies behavior for the covered scenario.
func TestRendererFallsBackToMarkdown(t *testing.T) {
	r := NewRenderer("")
	if got := r.Render("   ", 80); got != "" {
		t.Fatalf("expected empty render, got %q", got)
	}
	if got := r.Render("# Title", 10); !strings.Contains(got, "Title") {
		t.Fatalf("expected title in render, got %q", got)
	}
	if r.width != minWrapWidth {
		t.Fatalf("expected wrap width clamp to %d, got %d", minWrapWidth, r.width)
	}
}
