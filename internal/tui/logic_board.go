package tui

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/zukai/internal/app"
	"github.com/hylla/zukai/internal/domain"
)

// selectedItem returns the card under the cursor.
func (m Model) selectedItem() (domain.Item, bool) {
	categories := domain.Categories()
	if m.selectedColumn < 0 || m.selectedColumn >= len(categories) {
		return domain.Item{}, false
	}
	items := m.logic.Model().ItemsInCategory(categories[m.selectedColumn])
	if m.selectedRow < 0 || m.selectedRow >= len(items) {
		return domain.Item{}, false
	}
	return items[m.selectedRow], true
}

// clampLogicSelection keeps the cursor on an existing row.
func (m *Model) clampLogicSelection() {
	categories := domain.Categories()
	m.selectedColumn = clamp(m.selectedColumn, 0, len(categories)-1)
	n := len(m.logic.Model().ItemsInCategory(categories[m.selectedColumn]))
	if n == 0 {
		m.selectedRow = 0
		return
	}
	m.selectedRow = clamp(m.selectedRow, 0, n-1)
}

// selectItem moves the cursor onto id.
func (m *Model) selectItem(id string) {
	model := m.logic.Model()
	item, ok := model.Item(id)
	if !ok {
		return
	}
	m.selectedColumn = item.Category.Index()
	for i, candidate := range model.ItemsInCategory(item.Category) {
		if candidate.ID == id {
			m.selectedRow = i
			return
		}
	}
}

// handleLogicKey handles normal-mode keys on the logic board.
func (m Model) handleLogicKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch {
	case msg.String() == "esc":
		if m.logic.CancelGesture() {
			m.status = "arrow cancelled"
		}
		return m, nil
	case key.Matches(msg, m.keys.moveLeft):
		m.selectedColumn--
		m.clampLogicSelection()
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		m.selectedColumn++
		m.clampLogicSelection()
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.selectedRow--
		m.clampLogicSelection()
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.selectedRow++
		m.clampLogicSelection()
		return m, nil
	case key.Matches(msg, m.keys.connect):
		item, ok := m.selectedItem()
		if !ok {
			m.status = "no card selected"
			return m, nil
		}
		outcome, err := m.logic.ClickCard(ctx, item.ID)
		switch {
		case outcome.Message != "":
			m.status = outcome.Message
		case err != nil:
			m.status = "error: " + err.Error()
		}
		return m, nil
	case key.Matches(msg, m.keys.addItem):
		m.editCategory = domain.Categories()[clamp(m.selectedColumn, 0, len(domain.Categories())-1)]
		m.editingID = ""
		m.input = newModalInput("text: ", "card text", "", domain.MaxItemTextLength)
		m.mode = modeAddItem
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.editItem):
		item, ok := m.selectedItem()
		if !ok {
			m.status = "no card selected"
			return m, nil
		}
		m.editCategory = item.Category
		m.editingID = item.ID
		m.input = newModalInput("text: ", "card text", item.Text, domain.MaxItemTextLength)
		m.mode = modeEditItem
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.deleteItem):
		item, ok := m.selectedItem()
		if !ok {
			m.status = "no card selected"
			return m, nil
		}
		return m.confirm(fmt.Sprintf("delete %q and its arrows?", item.Text), func(m Model) (Model, tea.Cmd) {
			res, err := m.logic.RemoveItem(context.Background(), item.ID)
			if err != nil {
				m.status = "delete failed: " + err.Error()
				return m, nil
			}
			m.clampLogicSelection()
			m.status = fmt.Sprintf("deleted %q (%d arrows removed)", res.Item.Text, res.RemovedConnections)
			return m, nil
		})
	case key.Matches(msg, m.keys.disconnect):
		item, ok := m.selectedItem()
		if !ok {
			m.status = "no card selected"
			return m, nil
		}
		if len(m.connectionsTouching(item.ID)) == 0 {
			m.status = "no arrows on this card"
			return m, nil
		}
		m.editingID = item.ID
		m.connIndex = 0
		m.mode = modeConnectionPicker
		return m, nil
	}
	return m, nil
}

// handleItemInputKey handles the add/edit card modal.
func (m Model) handleItemInputKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.status = "cancelled"
		return m, nil
	case "tab":
		if m.mode == modeEditItem {
			categories := domain.Categories()
			m.editCategory = categories[wrapIndex(m.editCategory.Index(), 1, len(categories))]
		}
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		ctx := context.Background()
		if m.mode == modeAddItem {
			item, err := m.logic.AddItem(ctx, app.AddItemInput{Text: text, Category: m.editCategory})
			if err != nil {
				m.status = "add failed: " + err.Error()
				return m, nil
			}
			m.mode = modeNone
			m.selectItem(item.ID)
			m.status = fmt.Sprintf("added %q to %s", item.Text, item.Category.Label())
			return m, nil
		}
		res, err := m.logic.UpdateItem(ctx, app.UpdateItemInput{ID: m.editingID, Text: text, Category: m.editCategory})
		if err != nil {
			m.status = "edit failed: " + err.Error()
			return m, nil
		}
		m.mode = modeNone
		m.selectItem(res.Item.ID)
		m.status = fmt.Sprintf("updated %q", res.Item.Text)
		if res.RemovedConnections > 0 {
			m.status += fmt.Sprintf(" (%d arrows removed)", res.RemovedConnections)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// connectionsTouching lists arrows that start or end at itemID.
func (m Model) connectionsTouching(itemID string) []domain.Connection {
	var out []domain.Connection
	for _, conn := range m.logic.Model().Connections {
		if conn.Touches(itemID) {
			out = append(out, conn)
		}
	}
	return out
}

// handleConnectionPickerKey handles the delete-arrow picker.
func (m Model) handleConnectionPickerKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	conns := m.connectionsTouching(m.editingID)
	switch {
	case msg.String() == "esc":
		m.mode = modeNone
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.connIndex = wrapIndex(m.connIndex, -1, len(conns))
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.connIndex = wrapIndex(m.connIndex, 1, len(conns))
		return m, nil
	case msg.String() == "enter":
		m.mode = modeNone
		if m.connIndex < 0 || m.connIndex >= len(conns) {
			return m, nil
		}
		conn, err := m.logic.Disconnect(context.Background(), conns[m.connIndex].ID)
		if err != nil {
			m.status = "delete arrow failed: " + err.Error()
			return m, nil
		}
		m.status = "deleted arrow " + m.connectionLabel(conn)
		return m, nil
	}
	return m, nil
}

// connectionLabel describes an arrow by its card texts.
func (m Model) connectionLabel(conn domain.Connection) string {
	model := m.logic.Model()
	source, target := conn.Source, conn.Target
	if item, ok := model.Item(conn.Source); ok {
		source = item.Text
	}
	if item, ok := model.Item(conn.Target); ok {
		target = item.Text
	}
	return source + " → " + target
}

// connectionPickerLines renders the picker rows.
func (m Model) connectionPickerLines(accent color.Color) []string {
	conns := m.connectionsTouching(m.editingID)
	lines := make([]string, 0, len(conns))
	for i, conn := range conns {
		prefix := "  "
		label := m.connectionLabel(conn)
		if i == m.connIndex {
			prefix = "> "
			label = lipgloss.NewStyle().Bold(true).Foreground(accent).Render(label)
		}
		lines = append(lines, prefix+label)
	}
	return lines
}

// renderLogicBoard renders the six stage columns side by side.
func (m Model) renderLogicBoard(accent, muted, dim color.Color) string {
	model := m.logic.Model()
	categories := domain.Categories()
	sourceID, targetCategory, armed := m.logic.GestureSource()

	colWidth := 18
	if m.width > 0 {
		colWidth = max(12, (m.width-2)/len(categories)-1)
	}
	textWidth := max(4, colWidth-4)

	columns := make([]string, 0, len(categories))
	for ci, category := range categories {
		header := categoryStyle(category).Render(truncate(category.Label(), textWidth))
		lines := []string{header, lipgloss.NewStyle().Foreground(dim).Render(strings.Repeat("─", textWidth))}
		items := model.ItemsInCategory(category)
		if len(items) == 0 {
			lines = append(lines, lipgloss.NewStyle().Foreground(muted).Render("(empty)"))
		}
		for ri, item := range items {
			prefix := "  "
			style := lipgloss.NewStyle()
			switch {
			case armed && item.ID == sourceID:
				prefix = "● "
				style = style.Bold(true).Foreground(lipgloss.Color(category.Color()))
			case armed && targetCategory != "" && category == targetCategory:
				prefix = "○ "
				style = style.Foreground(accent)
			}
			if ci == m.selectedColumn && ri == m.selectedRow {
				prefix = "> "
				style = style.Bold(true).Underline(true)
			}
			lines = append(lines, style.Render(prefix+truncate(item.Text, textWidth-2)))
			for _, conn := range model.Connections {
				if conn.Source != item.ID {
					continue
				}
				target, ok := model.Item(conn.Target)
				if !ok {
					continue
				}
				lines = append(lines, lipgloss.NewStyle().Foreground(muted).Render("   → "+truncate(target.Text, textWidth-5)))
			}
		}

		border := dim
		if ci == m.selectedColumn {
			border = accent
		} else if armed && targetCategory != "" && category == targetCategory {
			border = lipgloss.Color(category.Color())
		}
		columns = append(columns, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1).
			Width(colWidth).
			Render(strings.Join(lines, "\n")))
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	caption := fmt.Sprintf("%d cards • %d arrows", len(model.Items), len(model.Connections))
	if armed && targetCategory != "" {
		if src, ok := model.Item(sourceID); ok {
			caption += fmt.Sprintf(" • drawing from %q, pick a card in %s (esc cancels)", src.Text, targetCategory.Label())
		}
	}
	return board + "\n" + lipgloss.NewStyle().Foreground(muted).Render(caption)
}
