package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hylla/zukai/internal/domain"
)

// TestLogicJSONRoundTrip verifies behavior for the covered scenario.
func TestLogicJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestLogicService(newFakeStore(), ServiceConfig{})
	a, _ := svc.AddItem(ctx, AddItemInput{Text: "資金", Category: domain.CategoryInputs})
	b, _ := svc.AddItem(ctx, AddItemInput{Text: "研修", Category: domain.CategoryActivities})
	if _, err := svc.AddItem(ctx, AddItemInput{Text: "報告書", Category: domain.CategoryOutputs}); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if _, err := svc.Connect(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	data, err := svc.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	var env LogicEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if env.Version != "1.0" || !env.Timestamp.Equal(fixedClock()) {
		t.Fatalf("unexpected envelope header %q %v", env.Version, env.Timestamp)
	}

	decoded, err := DecodeLogicDocument(data)
	if err != nil {
		t.Fatalf("DecodeLogicDocument() error = %v", err)
	}
	if diff := cmp.Diff(svc.Model(), decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// TestPurposeJSONRoundTrip verifies behavior for the covered scenario.
func TestPurposeJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestPurposeService(newFakeStore(), ServiceConfig{})
	if _, err := svc.AddStakeholder(ctx, stakeholderInput("S1", domain.LayerSupporting)); err != nil {
		t.Fatalf("AddStakeholder() error = %v", err)
	}
	if err := svc.SetMode(ctx, domain.ModeComparison); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	for _, name := range []string{"A", "B"} {
		if _, err := svc.AddComparison(ctx, name); err != nil {
			t.Fatalf("AddComparison() error = %v", err)
		}
	}
	if _, err := svc.AddStakeholder(ctx, stakeholderInput("S2", domain.LayerLeading)); err != nil {
		t.Fatalf("AddStakeholder() error = %v", err)
	}
	if err := svc.SelectComparison(ctx, "A"); err != nil {
		t.Fatalf("SelectComparison() error = %v", err)
	}

	data, err := svc.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	decoded, err := DecodePurposeDocument(data, domain.NewPurposeModel())
	if err != nil {
		t.Fatalf("DecodePurposeDocument() error = %v", err)
	}
	if diff := cmp.Diff(svc.Model(), decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// TestDecodeLogicDocumentRejections verifies behavior for the covered scenario.
func TestDecodeLogicDocumentRejections(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"not json", `{`, "decode json"},
		{"missing connections", `{"items":[]}`, "connections array is required"},
		{"items not array", `{"data":{"items":{},"connections":[]}}`, "items array is required"},
		{"missing item id", `{"items":[{"text":"a","category":"inputs"}],"connections":[]}`, "items[0].id is required"},
		{"missing target", `{"items":[],"connections":[{"id":"c","source":"a"}]}`, "connections[0].target is required"},
		{"dangling connection", `{"items":[{"id":"a","text":"a","category":"inputs"}],"connections":[{"id":"c","source":"a","target":"b"}]}`, "connections[0]"},
		{"non adjacent", `{"items":[{"id":"a","text":"a","category":"inputs"},{"id":"b","text":"b","category":"outputs"}],"connections":[{"id":"c","source":"a","target":"b"}]}`, "adjacent"},
		{"empty data beside outer arrays", `{"items":[],"connections":[],"data":{}}`, "items array is required"},
		{"data missing connections", `{"connections":[],"data":{"items":[]}}`, "connections array is required"},
		{"null data", `{"items":[],"connections":[],"data":null}`, "data must be an object"},
		{"duplicate item", `{"items":[{"id":"a","text":"a","category":"inputs"},{"id":"a","text":"b","category":"inputs"}],"connections":[]}`, "duplicate id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeLogicDocument([]byte(tc.body))
			if !errors.Is(err, ErrInvalidDocument) {
				t.Fatalf("expected ErrInvalidDocument, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

// TestDecodePurposeDocumentDefaults verifies behavior for the covered scenario.
func TestDecodePurposeDocumentDefaults(t *testing.T) {
	m, err := DecodePurposeDocument([]byte(`{"timelineData":{"past":{"purpose":{"title":"昔","description":"昔の価値"},"stakeholders":[]}}}`), domain.NewPurposeModel())
	if err != nil {
		t.Fatalf("DecodePurposeDocument() error = %v", err)
	}
	if m.Mode != domain.ModeTimeline || m.CurrentSlot != domain.SlotCurrent || len(m.ComparisonNames) != 0 {
		t.Fatalf("missing fields must default, got %+v", m)
	}
	if m.Timeline[domain.SlotPast].Purpose.Title != "昔" || m.Timeline[domain.SlotFuture].Purpose.Title != "将来の目的" {
		t.Fatalf("unexpected timeline %+v", m.Timeline)
	}

	for _, body := range []string{
		`{"timelineData":{},"currentMode":"grid"}`,
		`{"timelineData":{"someday":{"purpose":{"title":"a","description":"b"},"stakeholders":[]}}}`,
		`{"timelineData":{},"comparisonList":["A","A"]}`,
		`{"timelineData":{},"comparisonList":["A"],"selectedComparison":"B"}`,
		`{"timelineData":{"current":{"stakeholders":[]}}}`,
	} {
		if _, err := DecodePurposeDocument([]byte(body), domain.NewPurposeModel()); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("expected ErrInvalidDocument for %s, got %v", body, err)
		}
	}
}
