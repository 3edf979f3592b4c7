package app

import (
	"context"
	"errors"
	"testing"

	"github.com/hylla/zukai/internal/domain"
)

func newTestPurposeService(store DocumentStore, cfg ServiceConfig) *PurposeService {
	return NewPurposeService(store, sequentialIDs("sh"), fixedClock, cfg)
}

func stakeholderInput(name string, layer domain.Layer) AddStakeholderInput {
	return AddStakeholderInput{Name: name, Role: "funder", Goal: "grow the region", Category: domain.StakeholderGovernment, Layer: layer}
}

// TestPurposeServiceTimelineScenario verifies behavior for the covered scenario.
func TestPurposeServiceTimelineScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestPurposeService(newFakeStore(), ServiceConfig{})
	s1, err := svc.AddStakeholder(ctx, stakeholderInput("S1", domain.LayerSupporting))
	if err != nil {
		t.Fatalf("AddStakeholder() error = %v", err)
	}
	if err := svc.SelectTimeline(ctx, domain.SlotPast); err != nil {
		t.Fatalf("SelectTimeline() error = %v", err)
	}
	if n := len(svc.View().Stakeholders); n != 0 {
		t.Fatalf("expected empty past slot, got %d", n)
	}
	if svc.View().Purpose.Title != "過去の目的" {
		t.Fatalf("unexpected past purpose %+v", svc.View().Purpose)
	}
	if err := svc.SelectTimeline(ctx, domain.SlotCurrent); err != nil {
		t.Fatalf("SelectTimeline() error = %v", err)
	}
	view := svc.View()
	if len(view.Stakeholders) != 1 || view.Stakeholders[0].ID != s1.ID {
		t.Fatalf("expected S1 under current, got %+v", view.Stakeholders)
	}
}

// TestPurposeServiceComparisonWithoutSelection verifies behavior for the covered scenario.
func TestPurposeServiceComparisonWithoutSelection(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestPurposeService(store, ServiceConfig{})
	if err := svc.SetMode(ctx, domain.ModeComparison); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	before := svc.Model()
	events := len(store.events)
	if _, err := svc.AddStakeholder(ctx, stakeholderInput("S1", domain.LayerLeading)); !errors.Is(err, domain.ErrNoComparisonSelected) {
		t.Fatalf("expected ErrNoComparisonSelected, got %v", err)
	}
	title := "x"
	if _, err := svc.UpdatePurpose(ctx, UpdatePurposeInput{Title: &title}); !errors.Is(err, domain.ErrNoComparisonSelected) {
		t.Fatalf("expected ErrNoComparisonSelected, got %v", err)
	}
	if len(store.events) != events {
		t.Fatal("rejected operations must not be recorded")
	}
	after := svc.Model()
	if len(after.Comparisons) != len(before.Comparisons) || len(after.Timeline[domain.SlotCurrent].Stakeholders) != 0 {
		t.Fatal("rejected operations must not mutate")
	}
	if svc.View().Purpose != domain.PlaceholderPurpose() {
		t.Fatalf("expected placeholder purpose, got %+v", svc.View().Purpose)
	}
}

// TestPurposeServiceComparisons verifies behavior for the covered scenario.
func TestPurposeServiceComparisons(t *testing.T) {
	ctx := context.Background()
	svc := newTestPurposeService(newFakeStore(), ServiceConfig{})
	if err := svc.SetMode(ctx, domain.ModeComparison); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	for _, name := range []string{"案A", "案B"} {
		if _, err := svc.AddComparison(ctx, name); err != nil {
			t.Fatalf("AddComparison() error = %v", err)
		}
	}
	if _, err := svc.AddStakeholder(ctx, stakeholderInput("B社", domain.LayerLeading)); err != nil {
		t.Fatalf("AddStakeholder() error = %v", err)
	}
	if got := svc.Layout().Texts[len(svc.Layout().Texts)-1].Value; got != "(案B)" {
		t.Fatalf("unexpected caption %q", got)
	}
	if err := svc.RemoveComparison(ctx, "案B"); err != nil {
		t.Fatalf("RemoveComparison() error = %v", err)
	}
	m := svc.Model()
	if m.SelectedComparison != "案A" || len(m.ComparisonNames) != 1 {
		t.Fatalf("unexpected comparisons %+v", m.ComparisonNames)
	}
	if err := svc.RemoveComparison(ctx, "案B"); !errors.Is(err, domain.ErrComparisonNotFound) {
		t.Fatalf("expected ErrComparisonNotFound, got %v", err)
	}
}

// TestPurposeServiceEditsAndReset verifies behavior for the covered scenario.
func TestPurposeServiceEditsAndReset(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestPurposeService(store, ServiceConfig{})
	s, err := svc.AddStakeholder(ctx, stakeholderInput("S1", domain.LayerSupporting))
	if err != nil {
		t.Fatalf("AddStakeholder() error = %v", err)
	}
	goal := "もっと長い目的を書いてみると二十文字を超えてしまう"
	if _, err := svc.UpdateStakeholder(ctx, s.ID, domain.StakeholderPatch{Goal: &goal}); !errors.Is(err, domain.ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
	role := "運営"
	updated, err := svc.UpdateStakeholder(ctx, s.ID, domain.StakeholderPatch{Role: &role})
	if err != nil {
		t.Fatalf("UpdateStakeholder() error = %v", err)
	}
	if updated.Role != "運営" {
		t.Fatalf("unexpected role %q", updated.Role)
	}
	desc := "地域の価値"
	if _, err := svc.UpdatePurpose(ctx, UpdatePurposeInput{Description: &desc}); err != nil {
		t.Fatalf("UpdatePurpose() error = %v", err)
	}
	if svc.View().Purpose.Description != desc {
		t.Fatalf("unexpected purpose %+v", svc.View().Purpose)
	}
	if _, err := svc.RemoveStakeholder(ctx, s.ID); err != nil {
		t.Fatalf("RemoveStakeholder() error = %v", err)
	}
	if _, err := svc.AddComparison(ctx, "A"); err != nil {
		t.Fatalf("AddComparison() error = %v", err)
	}
	svc.Reset(ctx)
	m := svc.Model()
	if m.Mode != domain.ModeTimeline || len(m.ComparisonNames) != 0 || m.Timeline[domain.SlotCurrent].Purpose != domain.DefaultPurpose() {
		t.Fatalf("reset did not restore defaults %+v", m)
	}
	if _, ok := store.docs[PurposeStorageKey]; ok {
		t.Fatal("expected reset to delete the stored purpose document")
	}
}

// TestPurposeServiceLoadAndImport verifies behavior for the covered scenario.
func TestPurposeServiceLoadAndImport(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestPurposeService(store, ServiceConfig{})
	if err := svc.SelectTimeline(ctx, domain.SlotFuture); err != nil {
		t.Fatalf("SelectTimeline() error = %v", err)
	}
	if _, err := svc.AddStakeholder(ctx, stakeholderInput("S1", domain.LayerLeading)); err != nil {
		t.Fatalf("AddStakeholder() error = %v", err)
	}

	reloaded := newTestPurposeService(store, ServiceConfig{})
	reloaded.Load(ctx)
	if m := reloaded.Model(); m.CurrentSlot != domain.SlotFuture || len(m.Timeline[domain.SlotFuture].Stakeholders) != 1 {
		t.Fatalf("unexpected reloaded model %+v", m)
	}

	legacy := `{"purpose":{"title":"旧目的","description":"旧説明"},"stakeholders":[{"id":"x","name":"n","role":"r","goal":"g","category":"alien","layer":"middle"}]}`
	m, err := reloaded.ImportJSON(ctx, []byte(legacy))
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	if m.Mode != domain.ModeTimeline || m.CurrentSlot != domain.SlotCurrent {
		t.Fatalf("legacy import must reset mode and slot, got %q %q", m.Mode, m.CurrentSlot)
	}
	current := m.Timeline[domain.SlotCurrent]
	if current.Purpose.Title != "旧目的" || current.Stakeholders[0].Category != domain.StakeholderCompany || current.Stakeholders[0].Layer != domain.LayerSupporting {
		t.Fatalf("unexpected legacy partition %+v", current)
	}
	if len(m.Timeline[domain.SlotFuture].Stakeholders) != 1 {
		t.Fatal("legacy import must keep other timeline slots")
	}

	before := reloaded.Model()
	if _, err := reloaded.ImportJSON(ctx, []byte(`{"purpose":{"title":"t","description":"d"},"stakeholders":[{"id":"x","name":""}]}`)); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
	if _, err := reloaded.ImportJSON(ctx, []byte(`{"hello":"world"}`)); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
	if reloaded.Model().Timeline[domain.SlotCurrent].Purpose != before.Timeline[domain.SlotCurrent].Purpose {
		t.Fatal("failed import must leave the model untouched")
	}
}

// TestPurposeServiceExportImage verifies behavior for the covered scenario.
func TestPurposeServiceExportImage(t *testing.T) {
	ctx := context.Background()
	renderer := &stubRenderer{}
	svc := newTestPurposeService(newFakeStore(), ServiceConfig{Renderer: renderer})
	out, err := svc.ExportImage(ctx, domain.ImagePNG)
	if err != nil {
		t.Fatalf("ExportImage() error = %v", err)
	}
	if out.FellBack || out.FileName != "purpose-model.png" {
		t.Fatalf("unexpected export %+v", out)
	}
	if renderer.purposeSize != [2]float64{1000, 800} {
		t.Fatalf("expected 1000x800 export canvas, got %v", renderer.purposeSize)
	}
	if vp := svc.Viewport(); vp.Width != 900 || vp.Height != 700 {
		t.Fatalf("viewport not restored, got %+v", vp)
	}
}
