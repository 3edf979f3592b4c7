package tui

import (
	"context"
	"fmt"
	"image/color"
	"slices"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/zukai/internal/app"
	"github.com/hylla/zukai/internal/domain"
)

var modeOrder = []domain.Mode{domain.ModeSingle, domain.ModeTimeline, domain.ModeComparison}

var layerOrder = []domain.Layer{domain.LayerSupporting, domain.LayerLeading}

// stakeholder form field indexes.
const (
	fieldName = iota
	fieldRole
	fieldGoal
	fieldCategory
	fieldLayer
	stakeholderFieldCount
)

// orderedStakeholders lists the active partition supporting layer first, as
// the ring draws them.
func (m Model) orderedStakeholders() []domain.Stakeholder {
	view := m.purpose.View()
	out := view.StakeholdersInLayer(domain.LayerSupporting)
	return append(out, view.StakeholdersInLayer(domain.LayerLeading)...)
}

// selectedStakeholderValue returns the stakeholder under the cursor.
func (m Model) selectedStakeholderValue() (domain.Stakeholder, bool) {
	list := m.orderedStakeholders()
	if m.selectedStakeholder < 0 || m.selectedStakeholder >= len(list) {
		return domain.Stakeholder{}, false
	}
	return list[m.selectedStakeholder], true
}

// clampStakeholderSelection keeps the cursor on an existing stakeholder.
func (m *Model) clampStakeholderSelection() {
	n := len(m.orderedStakeholders())
	if n == 0 {
		m.selectedStakeholder = 0
		return
	}
	m.selectedStakeholder = clamp(m.selectedStakeholder, 0, n-1)
}

// handlePurposeKey handles normal-mode keys on the purpose view.
func (m Model) handlePurposeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	model := m.purpose.Model()
	switch {
	case key.Matches(msg, m.keys.moveUp):
		m.selectedStakeholder--
		m.clampStakeholderSelection()
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.selectedStakeholder++
		m.clampStakeholderSelection()
		return m, nil
	case key.Matches(msg, m.keys.cycleMode):
		next := modeOrder[wrapIndex(slices.Index(modeOrder, model.Mode), 1, len(modeOrder))]
		if err := m.purpose.SetMode(ctx, next); err != nil {
			m.status = "mode change failed: " + err.Error()
			return m, nil
		}
		m.selectedStakeholder = 0
		m.status = "mode: " + string(next)
		return m, nil
	case key.Matches(msg, m.keys.prevSlot):
		return m.stepPartition(-1)
	case key.Matches(msg, m.keys.nextSlot):
		return m.stepPartition(1)
	case key.Matches(msg, m.keys.addCompare):
		if model.Mode != domain.ModeComparison {
			m.status = "switch to comparison mode (m) to add comparisons"
			return m, nil
		}
		m.input = newModalInput("name: ", "comparison name", "", 0)
		m.mode = modeAddComparison
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.dropCompare):
		name := model.SelectedComparison
		if model.Mode != domain.ModeComparison || name == "" {
			m.status = "no comparison selected"
			return m, nil
		}
		return m.confirm(fmt.Sprintf("remove comparison %q and its stakeholders?", name), func(m Model) (Model, tea.Cmd) {
			if err := m.purpose.RemoveComparison(context.Background(), name); err != nil {
				m.status = "remove failed: " + err.Error()
				return m, nil
			}
			m.selectedStakeholder = 0
			m.status = fmt.Sprintf("removed comparison %q", name)
			return m, nil
		})
	case key.Matches(msg, m.keys.addItem):
		if !model.Writable() {
			m.status = "select a comparison first"
			return m, nil
		}
		m.openStakeholderForm(domain.Stakeholder{Category: domain.StakeholderCompany, Layer: domain.LayerSupporting})
		cmd := m.formInputs[0].Focus()
		return m, cmd
	case key.Matches(msg, m.keys.editItem):
		s, ok := m.selectedStakeholderValue()
		if !ok {
			m.status = "no stakeholder selected"
			return m, nil
		}
		m.openStakeholderForm(s)
		cmd := m.formInputs[0].Focus()
		return m, cmd
	case key.Matches(msg, m.keys.deleteItem):
		s, ok := m.selectedStakeholderValue()
		if !ok {
			m.status = "no stakeholder selected"
			return m, nil
		}
		return m.confirm(fmt.Sprintf("delete stakeholder %q?", s.Name), func(m Model) (Model, tea.Cmd) {
			if _, err := m.purpose.RemoveStakeholder(context.Background(), s.ID); err != nil {
				m.status = "delete failed: " + err.Error()
				return m, nil
			}
			m.clampStakeholderSelection()
			m.status = fmt.Sprintf("deleted stakeholder %q", s.Name)
			return m, nil
		})
	case key.Matches(msg, m.keys.editPurpose):
		if !model.Writable() {
			m.status = "select a comparison first"
			return m, nil
		}
		p := m.purpose.View().Purpose
		m.mode = modePurposeForm
		m.formFocus = 0
		m.formInputs = []textinput.Model{
			newModalInput("title: ", "purpose title", p.Title, domain.MaxPurposeTitleLength),
			newModalInput("description: ", "purpose description", p.Description, domain.MaxPurposeDescriptionLength),
		}
		cmd := m.formInputs[0].Focus()
		return m, cmd
	}
	return m, nil
}

// stepPartition moves to the previous or next timeline slot or comparison.
func (m Model) stepPartition(delta int) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	model := m.purpose.Model()
	switch model.Mode {
	case domain.ModeTimeline:
		slots := domain.TimelineSlots()
		next := slots[wrapIndex(slices.Index(slots, model.CurrentSlot), delta, len(slots))]
		if err := m.purpose.SelectTimeline(ctx, next); err != nil {
			m.status = "select failed: " + err.Error()
			return m, nil
		}
		m.selectedStakeholder = 0
		m.status = "timeline: " + next.Label()
	case domain.ModeComparison:
		names := model.ComparisonNames
		if len(names) == 0 {
			m.status = "no comparisons yet (c adds one)"
			return m, nil
		}
		idx := slices.Index(names, model.SelectedComparison)
		if idx < 0 && delta > 0 {
			idx = -1
		} else if idx < 0 {
			idx = 0
		}
		next := names[wrapIndex(idx, delta, len(names))]
		if err := m.purpose.SelectComparison(ctx, next); err != nil {
			m.status = "select failed: " + err.Error()
			return m, nil
		}
		m.selectedStakeholder = 0
		m.status = "comparison: " + next
	default:
		m.status = "single mode has one partition (m switches mode)"
	}
	return m, nil
}

// openStakeholderForm opens the add or edit stakeholder form seeded from s.
func (m *Model) openStakeholderForm(s domain.Stakeholder) {
	m.mode = modeStakeholderForm
	m.editingID = s.ID
	m.formFocus = fieldName
	m.formInputs = []textinput.Model{
		newModalInput("name: ", "name", s.Name, domain.MaxStakeholderNameLength),
		newModalInput("role: ", "role", s.Role, domain.MaxStakeholderRoleLength),
		newModalInput("goal: ", "goal", s.Goal, domain.MaxStakeholderGoalLength),
	}
	m.formCategory = max(0, slices.Index(domain.StakeholderCategories(), s.Category))
	m.formLayer = max(0, slices.Index(layerOrder, s.Layer))
}

// formFieldCount returns how many fields the open form cycles through.
func (m Model) formFieldCount() int {
	if m.mode == modeStakeholderForm {
		return stakeholderFieldCount
	}
	return len(m.formInputs)
}

// focusFormField moves focus to field idx.
func (m *Model) focusFormField(idx int) tea.Cmd {
	m.formFocus = idx
	var cmd tea.Cmd
	for i := range m.formInputs {
		if i == idx {
			cmd = m.formInputs[i].Focus()
			continue
		}
		m.formInputs[i].Blur()
	}
	return cmd
}

// handleFormKey handles the stakeholder and purpose forms.
func (m Model) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.status = "cancelled"
		return m, nil
	case "tab", "down":
		cmd := m.focusFormField(wrapIndex(m.formFocus, 1, m.formFieldCount()))
		return m, cmd
	case "shift+tab", "up":
		cmd := m.focusFormField(wrapIndex(m.formFocus, -1, m.formFieldCount()))
		return m, cmd
	case "left", "right":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		if m.mode == modeStakeholderForm {
			switch m.formFocus {
			case fieldCategory:
				m.formCategory = wrapIndex(m.formCategory, delta, len(domain.StakeholderCategories()))
				return m, nil
			case fieldLayer:
				m.formLayer = wrapIndex(m.formLayer, delta, len(layerOrder))
				return m, nil
			}
		}
	case "enter":
		if m.mode == modePurposeForm {
			return m.submitPurposeForm()
		}
		return m.submitStakeholderForm()
	}
	if m.formFocus < 0 || m.formFocus >= len(m.formInputs) {
		return m, nil
	}
	var cmd tea.Cmd
	m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	return m, cmd
}

// submitStakeholderForm saves the stakeholder form.
func (m Model) submitStakeholderForm() (tea.Model, tea.Cmd) {
	ctx := context.Background()
	name := strings.TrimSpace(m.formInputs[fieldName].Value())
	role := strings.TrimSpace(m.formInputs[fieldRole].Value())
	goal := strings.TrimSpace(m.formInputs[fieldGoal].Value())
	category := domain.StakeholderCategories()[m.formCategory]
	layer := layerOrder[m.formLayer]

	if m.editingID == "" {
		s, err := m.purpose.AddStakeholder(ctx, app.AddStakeholderInput{Name: name, Role: role, Goal: goal, Category: category, Layer: layer})
		if err != nil {
			m.status = "add failed: " + err.Error()
			return m, nil
		}
		m.mode = modeNone
		m.selectStakeholder(s.ID)
		m.status = fmt.Sprintf("added stakeholder %q", s.Name)
		return m, nil
	}
	s, err := m.purpose.UpdateStakeholder(ctx, m.editingID, domain.StakeholderPatch{
		Name:     &name,
		Role:     &role,
		Goal:     &goal,
		Category: &category,
		Layer:    &layer,
	})
	if err != nil {
		m.status = "edit failed: " + err.Error()
		return m, nil
	}
	m.mode = modeNone
	m.selectStakeholder(s.ID)
	m.status = fmt.Sprintf("updated stakeholder %q", s.Name)
	return m, nil
}

// submitPurposeForm saves the purpose form.
func (m Model) submitPurposeForm() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.formInputs[0].Value())
	description := strings.TrimSpace(m.formInputs[1].Value())
	p, err := m.purpose.UpdatePurpose(context.Background(), app.UpdatePurposeInput{Title: &title, Description: &description})
	if err != nil {
		m.status = "edit failed: " + err.Error()
		return m, nil
	}
	m.mode = modeNone
	m.status = fmt.Sprintf("purpose: %s", p.Title)
	return m, nil
}

// handleComparisonInputKey handles the add-comparison modal.
func (m Model) handleComparisonInputKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.status = "cancelled"
		return m, nil
	case "enter":
		name, err := m.purpose.AddComparison(context.Background(), m.input.Value())
		if err != nil {
			m.status = "add comparison failed: " + err.Error()
			return m, nil
		}
		m.mode = modeNone
		m.selectedStakeholder = 0
		m.status = fmt.Sprintf("added comparison %q", name)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// selectStakeholder moves the cursor onto id.
func (m *Model) selectStakeholder(id string) {
	for i, s := range m.orderedStakeholders() {
		if s.ID == id {
			m.selectedStakeholder = i
			return
		}
	}
}

// formTitle names the open form.
func (m Model) formTitle() string {
	switch {
	case m.mode == modePurposeForm:
		return "edit purpose"
	case m.editingID == "":
		return "add stakeholder"
	default:
		return "edit stakeholder"
	}
}

// formLines renders the open form's fields.
func (m Model) formLines(accent color.Color) []string {
	focused := lipgloss.NewStyle().Bold(true).Foreground(accent)
	lines := make([]string, 0, stakeholderFieldCount)
	for i, in := range m.formInputs {
		prefix := "  "
		if i == m.formFocus {
			prefix = "> "
		}
		lines = append(lines, prefix+in.View())
	}
	if m.mode != modeStakeholderForm {
		return lines
	}
	category := domain.StakeholderCategories()[m.formCategory]
	layer := layerOrder[m.formLayer]
	selectors := []struct {
		field int
		text  string
	}{
		{fieldCategory, "category: ‹ " + lipgloss.NewStyle().Foreground(lipgloss.Color(category.Color())).Render(category.Label()) + " ›"},
		{fieldLayer, "layer: ‹ " + layer.Label() + " ›"},
	}
	for _, sel := range selectors {
		if sel.field == m.formFocus {
			lines = append(lines, focused.Render("> ")+sel.text)
		} else {
			lines = append(lines, "  "+sel.text)
		}
	}
	return lines
}

// renderPurposeView renders mode, partition selectors, purpose and ring.
func (m Model) renderPurposeView(accent, muted, dim color.Color) string {
	model := m.purpose.Model()
	view := m.purpose.View()
	active := lipgloss.NewStyle().Bold(true).Foreground(accent)
	inactive := lipgloss.NewStyle().Foreground(muted)
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(dim).Padding(0, 1)

	modes := make([]string, 0, len(modeOrder))
	for _, mode := range modeOrder {
		if mode == model.Mode {
			modes = append(modes, active.Render("["+string(mode)+"]"))
		} else {
			modes = append(modes, inactive.Render(string(mode)))
		}
	}
	lines := []string{"mode: " + strings.Join(modes, " ")}

	switch model.Mode {
	case domain.ModeTimeline:
		slots := make([]string, 0, 4)
		for _, slot := range domain.TimelineSlots() {
			if slot == model.CurrentSlot {
				slots = append(slots, active.Render("["+slot.Label()+"]"))
			} else {
				slots = append(slots, inactive.Render(slot.Label()))
			}
		}
		lines = append(lines, "timeline: "+strings.Join(slots, " → "))
	case domain.ModeComparison:
		if len(model.ComparisonNames) == 0 {
			lines = append(lines, inactive.Render("comparisons: none (c adds one)"))
		} else {
			names := make([]string, 0, len(model.ComparisonNames))
			for _, name := range model.ComparisonNames {
				if name == model.SelectedComparison {
					names = append(names, active.Render("["+name+"]"))
				} else {
					names = append(names, inactive.Render(name))
				}
			}
			lines = append(lines, "comparisons: "+strings.Join(names, " "))
		}
	}

	purposeBox := box.Render(strings.Join([]string{
		lipgloss.NewStyle().Bold(true).Render(view.Purpose.Title),
		view.Purpose.Description,
	}, "\n"))
	if !model.Writable() {
		purposeBox = lipgloss.NewStyle().Foreground(muted).Render(purposeBox)
	}
	lines = append(lines, "", purposeBox, "")

	ordered := m.orderedStakeholders()
	idx := 0
	for _, layer := range layerOrder {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render(layer.Label()))
		group := view.StakeholdersInLayer(layer)
		if len(group) == 0 {
			lines = append(lines, inactive.Render("  (none)"))
		}
		for _, s := range group {
			prefix := "  "
			row := fmt.Sprintf("%s  %s / %s", s.Name, s.Role, s.Goal)
			if idx == m.selectedStakeholder && idx < len(ordered) {
				prefix = "> "
				row = lipgloss.NewStyle().Bold(true).Underline(true).Render(row)
			}
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Category.Color())).Render("■ " + s.Category.Label())
			lines = append(lines, prefix+swatch+"  "+row)
			idx++
		}
	}

	wedges := m.purpose.Layout().Wedges
	if len(wedges) > 0 {
		ring := make([]string, 0, len(wedges))
		for _, w := range wedges {
			ring = append(ring, fmt.Sprintf("%s %.0f°±%.0f", truncate(w.Stakeholder.Name, 6), w.Angle, w.Bandwidth/2))
		}
		lines = append(lines, "", inactive.Render("ring: "+strings.Join(ring, " • ")))
	}
	if caption := model.Caption(); caption != "" {
		lines = append(lines, inactive.Render("("+caption+")"))
	}
	return strings.Join(lines, "\n")
}
