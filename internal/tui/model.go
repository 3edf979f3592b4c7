package tui

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/zukai/internal/app"
	"github.com/hylla/zukai/internal/domain"
	"github.com/hylla/zukai/internal/layout"
	"github.com/hylla/zukai/internal/report"
)

// LogicService is the logic-board surface the TUI drives.
type LogicService interface {
	Model() domain.LogicModel
	AddItem(context.Context, app.AddItemInput) (domain.Item, error)
	UpdateItem(context.Context, app.UpdateItemInput) (app.UpdateItemResult, error)
	RemoveItem(context.Context, string) (app.RemoveItemResult, error)
	Disconnect(context.Context, string) (domain.Connection, error)
	Reset(context.Context)
	ClickCard(context.Context, string) (app.GestureOutcome, error)
	CancelGesture() bool
	GestureSource() (string, domain.Category, bool)
	ExportJSON() ([]byte, error)
	ExportImage(context.Context, domain.ImageFormat) (app.ImageExport, error)
	FileName(string) string
}

// PurposeService is the purpose-view surface the TUI drives.
type PurposeService interface {
	Model() domain.PurposeModel
	View() domain.Partition
	Layout() layout.PurposeDiagram
	SetMode(context.Context, domain.Mode) error
	SelectTimeline(context.Context, domain.TimelineSlot) error
	AddComparison(context.Context, string) (string, error)
	RemoveComparison(context.Context, string) error
	SelectComparison(context.Context, string) error
	AddStakeholder(context.Context, app.AddStakeholderInput) (domain.Stakeholder, error)
	UpdateStakeholder(context.Context, string, domain.StakeholderPatch) (domain.Stakeholder, error)
	RemoveStakeholder(context.Context, string) (domain.Stakeholder, error)
	UpdatePurpose(context.Context, app.UpdatePurposeInput) (domain.Purpose, error)
	Reset(context.Context)
	ExportJSON() ([]byte, error)
	ExportImage(context.Context, domain.ImageFormat) (app.ImageExport, error)
	FileName(string) string
}

// tab selects which diagram is on screen.
type tab int

const (
	tabLogic tab = iota
	tabPurpose
)

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeAddItem
	modeEditItem
	modeConnectionPicker
	modeStakeholderForm
	modePurposeForm
	modeAddComparison
	modeConfirm
	modeSummary
	modeBusy
)

// confirmAction is a destructive action waiting for y/n.
type confirmAction struct {
	prompt string
	apply  func(Model) (Model, tea.Cmd)
}

// exportedMsg reports a finished background image export.
type exportedMsg struct {
	status string
	err    error
}

type Model struct {
	logic   LogicService
	purpose PurposeService

	ready  bool
	width  int
	height int
	status string

	help     help.Model
	keys     keyMap
	showHelp bool

	tab  tab
	mode inputMode

	selectedColumn int
	selectedRow    int
	connIndex      int
	editingID      string
	editCategory   domain.Category

	selectedStakeholder int
	formInputs          []textinput.Model
	formFocus           int
	formCategory        int
	formLayer           int

	input          textinput.Model
	pendingConfirm confirmAction

	summary  string
	markdown *report.Renderer

	confirmDelete bool
	exportDir     string
	imageFormat   domain.ImageFormat
	clipboard     ClipboardFunc
}

// NewModel constructs a new value for this package.
func NewModel(logic LogicService, purpose PurposeService, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		logic:         logic,
		purpose:       purpose,
		status:        "ready",
		help:          h,
		keys:          newKeyMap(),
		showHelp:      true,
		markdown:      report.NewRenderer("dark"),
		confirmDelete: true,
		exportDir:     ".",
		imageFormat:   domain.ImagePNG,
		clipboard:     clipboard.WriteAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case exportedMsg:
		m.mode = modeNone
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	default:
		return m, nil
	}
}

// handleNormalModeKey routes keys shared by both tabs, then the active tab.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.switchTab):
		if m.tab == tabLogic {
			if m.logic.CancelGesture() {
				m.status = "arrow cancelled"
			}
			m.tab = tabPurpose
		} else {
			m.tab = tabLogic
		}
		return m, nil
	case key.Matches(msg, m.keys.newModel):
		return m.confirm("start a new "+m.tabName()+" model? unsaved work is cleared", func(m Model) (Model, tea.Cmd) {
			if m.tab == tabLogic {
				m.logic.Reset(context.Background())
				m.selectedColumn, m.selectedRow = 0, 0
			} else {
				m.purpose.Reset(context.Background())
				m.selectedStakeholder = 0
			}
			m.status = "new " + m.tabName() + " model"
			return m, nil
		})
	case key.Matches(msg, m.keys.saveImage):
		m.mode = modeBusy
		m.status = "exporting..."
		return m, m.saveImageCmd()
	case key.Matches(msg, m.keys.writeJSON):
		m.status = m.writeJSON()
		return m, nil
	case key.Matches(msg, m.keys.yankJSON):
		m.status = m.yankJSON()
		return m, nil
	case key.Matches(msg, m.keys.summary):
		m.summary = m.renderSummary()
		m.mode = modeSummary
		return m, nil
	}
	if m.tab == tabLogic {
		return m.handleLogicKey(msg)
	}
	return m.handlePurposeKey(msg)
}

// handleInputModeKey routes keys while a modal is open.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeBusy:
		return m, nil
	case modeSummary:
		if msg.String() == "esc" || key.Matches(msg, m.keys.summary) || key.Matches(msg, m.keys.quit) {
			m.mode = modeNone
		}
		return m, nil
	case modeConfirm:
		switch msg.String() {
		case "y", "Y", "enter":
			m.mode = modeNone
			apply := m.pendingConfirm.apply
			m.pendingConfirm = confirmAction{}
			if apply == nil {
				return m, nil
			}
			return apply(m)
		case "n", "N", "esc":
			m.mode = modeNone
			m.pendingConfirm = confirmAction{}
			m.status = "cancelled"
		}
		return m, nil
	case modeAddItem, modeEditItem:
		return m.handleItemInputKey(msg)
	case modeConnectionPicker:
		return m.handleConnectionPickerKey(msg)
	case modeAddComparison:
		return m.handleComparisonInputKey(msg)
	case modeStakeholderForm, modePurposeForm:
		return m.handleFormKey(msg)
	default:
		m.mode = modeNone
		return m, nil
	}
}

// confirm runs apply now or after a y/n prompt depending on configuration.
func (m Model) confirm(prompt string, apply func(Model) (Model, tea.Cmd)) (tea.Model, tea.Cmd) {
	if !m.confirmDelete {
		return apply(m)
	}
	m.pendingConfirm = confirmAction{prompt: prompt, apply: apply}
	m.mode = modeConfirm
	return m, nil
}

// tabName names the active diagram for status lines.
func (m Model) tabName() string {
	if m.tab == tabLogic {
		return "logic"
	}
	return "purpose"
}

// renderSummary renders the active diagram as terminal markdown.
func (m Model) renderSummary() string {
	var md string
	if m.tab == tabLogic {
		md = report.LogicMarkdown(m.logic.Model())
	} else {
		md = report.PurposeMarkdown(m.purpose.Model())
	}
	return m.markdown.Render(md, max(24, m.width-12))
}

// View handles view.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the full screen, overlays included.
func (m Model) render() string {
	if !m.ready {
		return "loading..."
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render("zukai") + "  " + m.renderTabs(accent, dim)
	var body string
	if m.tab == tabLogic {
		body = m.renderLogicBoard(accent, muted, dim)
	} else {
		body = m.renderPurposeView(accent, muted, dim)
	}

	sections := []string{header, "", body}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	fullContent := content
	if m.showHelp {
		helpBubble := m.help
		helpBubble.ShowAll = false
		helpBubble.SetWidth(max(0, m.width-2))
		var helpText string
		if m.tab == tabLogic {
			helpText = helpBubble.View(logicKeyMap{m.keys})
		} else {
			helpText = helpBubble.View(purposeKeyMap{m.keys})
		}
		helpLine := lipgloss.NewStyle().
			Foreground(muted).
			BorderTop(true).
			BorderForeground(dim).
			Padding(0, 1).
			Width(max(0, m.width)).
			Render(helpText)
		if m.height > 0 {
			content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
		}
		fullContent = content + "\n" + helpLine
	}

	overlay := m.renderModeOverlay(accent, muted, dim, m.width-8)
	if m.help.ShowAll && m.mode == modeNone {
		overlay = m.renderHelpOverlay(accent, muted, dim, m.width-8)
	}
	if overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}
	return fullContent
}

// renderTabs renders the diagram tab strip.
func (m Model) renderTabs(accent, dim color.Color) string {
	active := lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true)
	inactive := lipgloss.NewStyle().Foreground(dim)
	names := []string{"ロジックモデル", "目的モデル"}
	out := make([]string, 0, len(names))
	for i, name := range names {
		if tab(i) == m.tab {
			out = append(out, active.Render(name))
		} else {
			out = append(out, inactive.Render(name))
		}
	}
	return strings.Join(out, "  ")
}

// renderHelpOverlay renders the expanded key reference.
func (m Model) renderHelpOverlay(accent, muted, dim color.Color, maxWidth int) string {
	width := clamp(maxWidth, 48, 96)
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)

	var keys string
	var workflow []string
	if m.tab == tabLogic {
		keys = hb.View(logicKeyMap{m.keys})
		workflow = []string{
			"1. n adds a card to the selected column",
			"2. enter on a card arms an arrow, enter on a card in the next column draws it",
			"3. esc cancels an armed arrow  •  x deletes arrows touching the card",
		}
	} else {
		keys = hb.View(purposeKeyMap{m.keys})
		workflow = []string{
			"1. m cycles single → timeline → comparison",
			"2. [ ] step through timeline slots or comparisons",
			"3. c adds a comparison  •  n adds a stakeholder to the active partition",
		}
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render("zukai help"),
		"",
		keys,
		"",
		lipgloss.NewStyle().Foreground(muted).Render(strings.Join(workflow, "\n")),
		lipgloss.NewStyle().Foreground(muted).Render("press ? to close"),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

// renderModeOverlay renders the modal for the active input mode.
func (m Model) renderModeOverlay(accent, muted, dim color.Color, maxWidth int) string {
	width := clamp(maxWidth, 40, 90)
	title := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hint := lipgloss.NewStyle().Foreground(muted)
	var lines []string
	switch m.mode {
	case modeNone, modeBusy:
		return ""
	case modeSummary:
		lines = []string{title.Render("summary"), "", m.summary, "", hint.Render("esc close")}
	case modeConfirm:
		lines = []string{title.Render("confirm"), "", m.pendingConfirm.prompt, "", hint.Render("y confirm • n cancel")}
	case modeAddItem, modeEditItem:
		heading := "add card"
		if m.mode == modeEditItem {
			heading = "edit card"
		}
		lines = []string{
			title.Render(heading),
			"",
			"column: " + categoryStyle(m.editCategory).Render(m.editCategory.Label()),
			m.input.View(),
			"",
			hint.Render(fmt.Sprintf("max %d characters • tab change column • enter save • esc cancel", domain.MaxItemTextLength)),
		}
		if m.mode == modeAddItem {
			lines[len(lines)-1] = hint.Render(fmt.Sprintf("max %d characters • enter save • esc cancel", domain.MaxItemTextLength))
		}
	case modeConnectionPicker:
		lines = append([]string{title.Render("delete arrow"), ""}, m.connectionPickerLines(accent)...)
		lines = append(lines, "", hint.Render("j/k choose • enter delete • esc cancel"))
	case modeAddComparison:
		lines = []string{title.Render("add comparison"), "", m.input.View(), "", hint.Render("enter save • esc cancel")}
	case modeStakeholderForm, modePurposeForm:
		lines = append([]string{title.Render(m.formTitle()), ""}, m.formLines(accent)...)
		lines = append(lines, "", hint.Render("tab next field • ←/→ change choice • enter save • esc cancel"))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// categoryStyle colours text with a logic category's card colour.
func categoryStyle(c domain.Category) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Color()))
}

// wrapIndex moves current by delta within total, wrapping at both ends.
func wrapIndex(current int, delta int, total int) int {
	if total <= 0 {
		return 0
	}
	return ((current+delta)%total + total) % total
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	return min(max(v, minV), maxV)
}

// fitLines pads or truncates content to exactly maxLines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centres overlay over base.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
