package report

import (
	"fmt"
	"strings"

	"github.com/hylla/zukai/internal/domain"
)

// LogicMarkdown summarizes a logic model stage by stage.
func LogicMarkdown(m domain.LogicModel) string {
	var b strings.Builder
	b.WriteString("# ロジックモデル\n\n")
	fmt.Fprintf(&b, "%d items, %d connections\n", len(m.Items), len(m.Connections))
	for _, category := range domain.Categories() {
		fmt.Fprintf(&b, "\n## %s\n\n", category.Label())
		items := m.ItemsInCategory(category)
		if len(items) == 0 {
			b.WriteString("_none_\n")
			continue
		}
		for _, item := range items {
			fmt.Fprintf(&b, "- %s `%s`\n", escape(item.Text), item.ID)
			for _, c := range m.Connections {
				if c.Source != item.ID {
					continue
				}
				if target, ok := m.Item(c.Target); ok {
					fmt.Fprintf(&b, "  - → %s\n", escape(target.Text))
				}
			}
		}
	}
	return b.String()
}

// PurposeMarkdown summarizes the active partition and the model's navigation
// state.
func PurposeMarkdown(m domain.PurposeModel) string {
	var b strings.Builder
	view := m.ActiveView()
	b.WriteString("# 目的モデル\n\n")
	fmt.Fprintf(&b, "- mode: `%s`\n", m.Mode)
	switch m.Mode {
	case domain.ModeTimeline:
		fmt.Fprintf(&b, "- timeline: %s\n", m.CurrentSlot.Label())
	case domain.ModeComparison:
		names := "_none_"
		if len(m.ComparisonNames) > 0 {
			names = escape(strings.Join(m.ComparisonNames, ", "))
		}
		fmt.Fprintf(&b, "- comparisons: %s\n", names)
		if m.SelectedComparison != "" {
			fmt.Fprintf(&b, "- selected: %s\n", escape(m.SelectedComparison))
		}
	}
	fmt.Fprintf(&b, "\n## %s\n\n%s\n", escape(view.Purpose.Title), escape(view.Purpose.Description))
	for _, layer := range []domain.Layer{domain.LayerSupporting, domain.LayerLeading} {
		fmt.Fprintf(&b, "\n### %s\n\n", layer.Label())
		list := view.StakeholdersInLayer(layer)
		if len(list) == 0 {
			b.WriteString("_none_\n")
			continue
		}
		b.WriteString("| name | role | goal | category | id |\n|---|---|---|---|---|\n")
		for _, s := range list {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | `%s` |\n", cell(s.Name), cell(s.Role), cell(s.Goal), s.Category.Label(), s.ID)
		}
	}
	return b.String()
}

// HistoryMarkdown lists change events newest first.
func HistoryMarkdown(events []domain.ChangeEvent) string {
	var b strings.Builder
	b.WriteString("# History\n\n")
	if len(events) == 0 {
		b.WriteString("_no changes recorded_\n")
		return b.String()
	}
	b.WriteString("| # | when | diagram | operation | subject | actor |\n|---|---|---|---|---|---|\n")
	for _, e := range events {
		subject := e.SubjectID
		if subject == "" {
			subject = "-"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s (%s) |\n",
			e.ID, e.OccurredAt.UTC().Format("2006-01-02 15:04:05"), e.Diagram, e.Operation, cell(subject), cell(e.ActorID), e.ActorType)
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"#", `\#`,
	"[", `\[`,
	"]", `\]`,
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func cell(s string) string {
	return strings.ReplaceAll(escape(s), "|", `\|`)
}
