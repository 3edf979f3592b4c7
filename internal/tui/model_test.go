package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/hylla/zukai/internal/app"
	"github.com/hylla/zukai/internal/domain"
	"github.com/hylla/zukai/internal/render"
)

func fixedClock() time.Time {
	return time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
}

func sequentialIDs(prefix string) app.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// newTestServices builds in-memory services with a real renderer.
func newTestServices() (*app.LogicService, *app.PurposeService) {
	cfg := app.ServiceConfig{Renderer: render.New()}
	logic := app.NewLogicService(nil, sequentialIDs("item"), fixedClock, cfg)
	purpose := app.NewPurposeService(nil, sequentialIDs("sh"), fixedClock, cfg)
	return logic, purpose
}

func loadReadyModel(t *testing.T, m Model) Model {
	t.Helper()
	return applyMsg(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
}

// applyMsg runs one update. Returned commands are not executed; see applyCmd.
func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return out
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	return applyMsg(t, m, cmd())
}

func keyRune(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = applyMsg(t, m, keyRune(r))
	}
	return m
}

func enter() tea.KeyPressMsg { return tea.KeyPressMsg{Code: tea.KeyEnter} }

func esc() tea.KeyPressMsg { return tea.KeyPressMsg{Code: tea.KeyEscape} }

func tabKey() tea.KeyPressMsg { return tea.KeyPressMsg{Code: tea.KeyTab} }

func viewContent(t *testing.T, m Model) string {
	t.Helper()
	if v := m.View(); !v.AltScreen {
		t.Fatal("expected alt screen view")
	}
	return ansi.Strip(m.render())
}

// addCard adds a card to the selected column through the modal.
func addCard(t *testing.T, m Model, text string) Model {
	t.Helper()
	m = applyMsg(t, m, keyRune('n'))
	if m.mode != modeAddItem {
		t.Fatalf("expected add mode, got %v", m.mode)
	}
	m = typeText(t, m, text)
	return applyMsg(t, m, enter())
}

// TestModelLogicBoardGesture verifies behavior for the covered scenario.
func TestModelLogicBoardGesture(t *testing.T) {
	logic, purpose := newTestServices()
	m := loadReadyModel(t, NewModel(logic, purpose))

	m = addCard(t, m, "funds")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyRight})
	m = addCard(t, m, "workshops")
	if n := len(logic.Model().Items); n != 2 {
		t.Fatalf("expected 2 items, got %d", n)
	}
	if m.selectedColumn != 1 {
		t.Fatalf("expected selectedColumn=1, got %d", m.selectedColumn)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyLeft})
	m = applyMsg(t, m, enter())
	if _, _, armed := logic.GestureSource(); !armed {
		t.Fatal("expected gesture to be armed")
	}
	if !strings.Contains(m.status, domain.CategoryActivities.Label()) {
		t.Fatalf("expected armed hint naming the next column, got %q", m.status)
	}
	if !strings.Contains(viewContent(t, m), "drawing from") {
		t.Fatal("expected armed caption in view")
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyRight})
	m = applyMsg(t, m, enter())
	if n := len(logic.Model().Connections); n != 1 {
		t.Fatalf("expected 1 connection, got %d", n)
	}
	out := viewContent(t, m)
	if !strings.Contains(out, "→ workshops") {
		t.Fatalf("expected arrow in view, got %q", out)
	}
}

// TestModelLogicGestureHighlightsNextStage verifies behavior for the covered scenario.
func TestModelLogicGestureHighlightsNextStage(t *testing.T) {
	logic, purpose := newTestServices()
	m := loadReadyModel(t, NewModel(logic, purpose))

	m = addCard(t, m, "A")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyRight})
	m = addCard(t, m, "B")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyRight})
	m = addCard(t, m, "C")
	m.selectedColumn, m.selectedRow = 0, 0

	m = applyMsg(t, m, enter())
	_, target, armed := logic.GestureSource()
	if !armed || target != domain.CategoryActivities {
		t.Fatalf("expected armed gesture targeting activities, got armed=%t target=%q", armed, target)
	}

	out := viewContent(t, m)
	want := "pick a card in " + domain.CategoryActivities.Label()
	if !strings.Contains(out, want) {
		t.Fatalf("expected caption %q, got %q", want, out)
	}
	if strings.Contains(out, "pick a card in "+domain.CategoryOutputs.Label()) {
		t.Fatalf("expected caption not to skip a stage, got %q", out)
	}
	if !strings.Contains(out, "○ B") {
		t.Fatalf("expected activities card marked as a target, got %q", out)
	}
	if strings.Contains(out, "○ C") {
		t.Fatalf("expected outputs card not marked as a target, got %q", out)
	}
}

// TestModelLogicGestureRejectAndCancel verifies behavior for the covered scenario.
func TestModelLogicGestureRejectAndCancel(t *testing.T) {
	logic, purpose := newTestServices()
	m := loadReadyModel(t, NewModel(logic, purpose))
	m = addCard(t, m, "a")
	m = addCard(t, m, "b")

	m = applyMsg(t, m, enter())
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyUp})
	m = applyMsg(t, m, enter())
	if n := len(logic.Model().Connections); n != 0 {
		t.Fatalf("expected same-column arrow to be rejected, got %d", n)
	}
	if m.status == "" {
		t.Fatal("expected rejection message")
	}

	m = applyMsg(t, m, enter())
	m = applyMsg(t, m, esc())
	if _, _, armed := logic.GestureSource(); armed {
		t.Fatal("expected esc to cancel the gesture")
	}
	if m.status != "arrow cancelled" {
		t.Fatalf("expected cancel status, got %q", m.status)
	}

	m = applyMsg(t, m, enter())
	m = applyMsg(t, m, tabKey())
	if _, _, armed := logic.GestureSource(); armed {
		t.Fatal("expected tab switch to cancel the gesture")
	}
	if m.tab != tabPurpose {
		t.Fatalf("expected purpose tab, got %v", m.tab)
	}
}

// TestModelLogicEditDeleteAndDisconnect verifies behavior for the covered scenario.
func TestModelLogicEditDeleteAndDisconnect(t *testing.T) {
	logic, purpose := newTestServices()
	m := loadReadyModel(t, NewModel(logic, purpose))
	m = addCard(t, m, "a")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyRight})
	m = addCard(t, m, "b")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyLeft})
	m = applyMsg(t, m, enter())
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyRight})
	m = applyMsg(t, m, enter())
	if n := len(logic.Model().Connections); n != 1 {
		t.Fatalf("expected 1 connection, got %d", n)
	}

	m = applyMsg(t, m, keyRune('x'))
	if m.mode != modeConnectionPicker {
		t.Fatalf("expected connection picker, got %v", m.mode)
	}
	if !strings.Contains(viewContent(t, m), "a → b") {
		t.Fatal("expected picker to list the arrow")
	}
	m = applyMsg(t, m, enter())
	if n := len(logic.Model().Connections); n != 0 {
		t.Fatalf("expected arrow deleted, got %d", n)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyLeft})
	m = applyMsg(t, m, enter())
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyRight})
	m = applyMsg(t, m, enter())

	m = applyMsg(t, m, keyRune('e'))
	if m.mode != modeEditItem {
		t.Fatalf("expected edit mode, got %v", m.mode)
	}
	m = typeText(t, m, "2")
	m = applyMsg(t, m, tabKey())
	m = applyMsg(t, m, enter())
	item, ok := logic.Model().Item("item-2")
	if !ok || item.Text != "b2" || item.Category != domain.CategoryOutputs {
		t.Fatalf("unexpected edited item %#v", item)
	}
	if n := len(logic.Model().Connections); n != 0 {
		t.Fatalf("expected category move to drop arrows, got %d", n)
	}
	if !strings.Contains(m.status, "1 arrows removed") {
		t.Fatalf("expected cascade in status, got %q", m.status)
	}
	if m.selectedColumn != 2 {
		t.Fatalf("expected cursor to follow the card, got column %d", m.selectedColumn)
	}

	m = applyMsg(t, m, keyRune('d'))
	if m.mode != modeConfirm {
		t.Fatalf("expected confirm mode, got %v", m.mode)
	}
	m = applyMsg(t, m, keyRune('n'))
	if len(logic.Model().Items) != 2 {
		t.Fatal("expected cancelled delete to keep the card")
	}
	m = applyMsg(t, m, keyRune('d'))
	m = applyMsg(t, m, keyRune('y'))
	if len(logic.Model().Items) != 1 {
		t.Fatalf("expected 1 item after delete, got %d", len(logic.Model().Items))
	}
}

// TestModelItemInputValidation verifies behavior for the covered scenario.
func TestModelItemInputValidation(t *testing.T) {
	logic, purpose := newTestServices()
	m := loadReadyModel(t, NewModel(logic, purpose))

	m = applyMsg(t, m, keyRune('n'))
	m = applyMsg(t, m, enter())
	if m.mode != modeAddItem {
		t.Fatalf("expected modal to stay open on empty text, got %v", m.mode)
	}
	if !strings.HasPrefix(m.status, "add failed") {
		t.Fatalf("expected add failure status, got %q", m.status)
	}
	m = applyMsg(t, m, esc())
	if m.mode != modeNone || len(logic.Model().Items) != 0 {
		t.Fatal("expected esc to close the modal without changes")
	}

	m = applyMsg(t, m, keyRune('e'))
	if m.status != "no card selected" {
		t.Fatalf("expected empty-selection status, got %q", m.status)
	}
}

// TestModelPurposeComparisonAndStakeholders verifies behavior for the covered scenario.
func TestModelPurposeComparisonAndStakeholders(t *testing.T) {
	logic, purpose := newTestServices()
	m := loadReadyModel(t, NewModel(logic, purpose, WithStartTab(true)))

	m = applyMsg(t, m, keyRune('m'))
	if got := purpose.Model().Mode; got != domain.ModeComparison {
		t.Fatalf("expected comparison mode, got %q", got)
	}
	m = applyMsg(t, m, keyRune('n'))
	if m.status != "select a comparison first" {
		t.Fatalf("expected read-only status, got %q", m.status)
	}

	m = applyMsg(t, m, keyRune('c'))
	m = typeText(t, m, "A")
	m = applyMsg(t, m, enter())
	if got := purpose.Model().SelectedComparison; got != "A" {
		t.Fatalf("expected comparison A selected, got %q", got)
	}

	m = applyMsg(t, m, keyRune('n'))
	if m.mode != modeStakeholderForm {
		t.Fatalf("expected stakeholder form, got %v", m.mode)
	}
	m = typeText(t, m, "Ken")
	m = applyMsg(t, m, tabKey())
	m = typeText(t, m, "mayor")
	m = applyMsg(t, m, tabKey())
	m = typeText(t, m, "growth")
	m = applyMsg(t, m, tabKey())
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyRight})
	m = applyMsg(t, m, tabKey())
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyRight})
	m = applyMsg(t, m, enter())

	view := purpose.View()
	if len(view.Stakeholders) != 1 {
		t.Fatalf("expected 1 stakeholder, got %d", len(view.Stakeholders))
	}
	got := view.Stakeholders[0]
	if got.Name != "Ken" || got.Role != "mayor" || got.Goal != "growth" {
		t.Fatalf("unexpected stakeholder %#v", got)
	}
	if got.Category != domain.StakeholderGovernment || got.Layer != domain.LayerLeading {
		t.Fatalf("unexpected selectors category=%q layer=%q", got.Category, got.Layer)
	}
	out := viewContent(t, m)
	if !strings.Contains(out, "Ken") || !strings.Contains(out, "ring:") {
		t.Fatalf("expected stakeholder and ring summary in view, got %q", out)
	}

	m = applyMsg(t, m, keyRune('e'))
	m = typeText(t, m, "ji")
	m = applyMsg(t, m, enter())
	if name := purpose.View().Stakeholders[0].Name; name != "Kenji" {
		t.Fatalf("expected edited name, got %q", name)
	}

	m = applyMsg(t, m, keyRune('C'))
	m = applyMsg(t, m, keyRune('y'))
	if n := len(purpose.Model().ComparisonNames); n != 0 {
		t.Fatalf("expected comparison removed, got %d", n)
	}
}

// TestModelPurposeTimelineAndPurposeEdit verifies behavior for the covered scenario.
func TestModelPurposeTimelineAndPurposeEdit(t *testing.T) {
	logic, purpose := newTestServices()
	m := loadReadyModel(t, NewModel(logic, purpose, WithStartTab(true)))

	m = applyMsg(t, m, keyRune(']'))
	if got := purpose.Model().CurrentSlot; got != domain.SlotNearFuture {
		t.Fatalf("expected near-future slot, got %q", got)
	}
	m = applyMsg(t, m, keyRune('['))
	m = applyMsg(t, m, keyRune('['))
	if got := purpose.Model().CurrentSlot; got != domain.SlotPast {
		t.Fatalf("expected past slot, got %q", got)
	}

	m = applyMsg(t, m, keyRune('p'))
	if m.mode != modePurposeForm {
		t.Fatalf("expected purpose form, got %v", m.mode)
	}
	m = typeText(t, m, "!")
	m = applyMsg(t, m, enter())
	if got := purpose.View().Purpose.Title; got != "過去の目的!" {
		t.Fatalf("expected edited title, got %q", got)
	}
	if !strings.Contains(viewContent(t, m), "(過去)") {
		t.Fatal("expected slot caption in view")
	}
}

// TestModelExports verifies behavior for the covered scenario.
func TestModelExports(t *testing.T) {
	dir := t.TempDir()
	var copied string
	logic, purpose := newTestServices()
	m := loadReadyModel(t, NewModel(logic, purpose,
		WithExportDir(dir),
		WithImageFormat(domain.ImageSVG),
		WithClipboard(func(text string) error {
			copied = text
			return nil
		}),
	))
	m = addCard(t, m, "funds")

	m = applyMsg(t, m, keyRune('w'))
	data, err := os.ReadFile(filepath.Join(dir, "logic-model-2026-02-21.json"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "funds") {
		t.Fatalf("expected card in exported json, got %s", data)
	}

	m = applyMsg(t, m, keyRune('y'))
	if !strings.Contains(copied, "funds") {
		t.Fatalf("expected clipboard json, got %q", copied)
	}

	updated, cmd := m.Update(keyRune('s'))
	m = updated.(Model)
	if m.mode != modeBusy {
		t.Fatalf("expected busy mode during export, got %v", m.mode)
	}
	m = applyMsg(t, m, keyRune('q'))
	if m.mode != modeBusy {
		t.Fatal("expected keys to be ignored while busy")
	}
	m = applyCmd(t, m, cmd)
	if m.mode != modeNone {
		t.Fatalf("expected export to finish, got %v", m.mode)
	}
	svg, err := os.ReadFile(filepath.Join(dir, "logic-model-2026-02-21.svg"))
	if err != nil {
		t.Fatalf("ReadFile(svg) error = %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Fatal("expected svg document")
	}

	m = applyMsg(t, m, tabKey())
	m = applyMsg(t, m, keyRune('w'))
	if _, err := os.Stat(filepath.Join(dir, "purpose-model.json")); err != nil {
		t.Fatalf("expected purpose json, status=%q err=%v", m.status, err)
	}
}

// TestModelExportWithoutRenderer verifies behavior for the covered scenario.
func TestModelExportWithoutRenderer(t *testing.T) {
	logic := app.NewLogicService(nil, sequentialIDs("item"), fixedClock, app.ServiceConfig{})
	purpose := app.NewPurposeService(nil, sequentialIDs("sh"), fixedClock, app.ServiceConfig{})
	m := loadReadyModel(t, NewModel(logic, purpose, WithExportDir(t.TempDir())))

	updated, cmd := m.Update(keyRune('s'))
	m = applyCmd(t, updated.(Model), cmd)
	if m.mode != modeNone || !strings.HasPrefix(m.status, "export failed") {
		t.Fatalf("expected export failure, mode=%v status=%q", m.mode, m.status)
	}
}

// TestModelNewModelConfirm verifies behavior for the covered scenario.
func TestModelNewModelConfirm(t *testing.T) {
	logic, purpose := newTestServices()
	m := loadReadyModel(t, NewModel(logic, purpose))
	m = addCard(t, m, "funds")

	m = applyMsg(t, m, keyRune('N'))
	if m.mode != modeConfirm || !strings.Contains(viewContent(t, m), "start a new logic model") {
		t.Fatal("expected reset confirmation")
	}
	m = applyMsg(t, m, esc())
	if len(logic.Model().Items) != 1 {
		t.Fatal("expected cancelled reset to keep cards")
	}
	m = applyMsg(t, m, keyRune('N'))
	m = applyMsg(t, m, keyRune('y'))
	if len(logic.Model().Items) != 0 {
		t.Fatal("expected reset to clear cards")
	}

	m = loadReadyModel(t, NewModel(logic, purpose, WithConfirmDelete(false)))
	m = addCard(t, m, "again")
	m = applyMsg(t, m, keyRune('d'))
	if m.mode != modeNone || len(logic.Model().Items) != 0 {
		t.Fatal("expected delete without confirmation")
	}
}

// TestModelSummaryAndHelp verifies behavior for the covered scenario.
func TestModelSummaryAndHelp(t *testing.T) {
	logic, purpose := newTestServices()
	m := loadReadyModel(t, NewModel(logic, purpose))
	m = addCard(t, m, "funds")

	m = applyMsg(t, m, keyRune('v'))
	if m.mode != modeSummary || !strings.Contains(m.summary, "funds") {
		t.Fatalf("expected summary overlay, got mode=%v summary=%q", m.mode, m.summary)
	}
	m = applyMsg(t, m, esc())
	if m.mode != modeNone {
		t.Fatalf("expected summary closed, got %v", m.mode)
	}

	m = applyMsg(t, m, keyRune('?'))
	if !m.help.ShowAll || !strings.Contains(viewContent(t, m), "zukai help") {
		t.Fatal("expected expanded help overlay")
	}

	hidden := loadReadyModel(t, NewModel(logic, purpose, WithShowHelp(false)))
	if strings.Contains(viewContent(t, hidden), "toggle help") {
		t.Fatal("expected footer help to be hidden")
	}
}

// TestModelQuitKey verifies behavior for the covered scenario.
func TestModelQuitKey(t *testing.T) {
	logic, purpose := newTestServices()
	m := NewModel(logic, purpose)
	if !strings.Contains(viewContent(t, m), "loading") {
		t.Fatal("expected loading view before first resize")
	}
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
}

// TestHelpers verifies behavior for the covered scenario.
func TestHelpers(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Fatalf("truncate() = %q", got)
	}
	if got := truncate("インプット", 3); got != "イン…" {
		t.Fatalf("truncate() = %q", got)
	}
	if got := fitLines("a\nb\nc", 2); got != "a\n…" {
		t.Fatalf("fitLines() = %q", got)
	}
	if got := fitLines("a", 3); got != "a\n\n" {
		t.Fatalf("fitLines() = %q", got)
	}
	if got := wrapIndex(0, -1, 4); got != 3 {
		t.Fatalf("wrapIndex() = %d", got)
	}
	if got := wrapIndex(5, 1, 0); got != 0 {
		t.Fatalf("wrapIndex() = %d", got)
	}
	if got := clamp(9, 0, 3); got != 3 {
		t.Fatalf("clamp() = %d", got)
	}
}
