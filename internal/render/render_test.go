package render

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/hylla/zukai/internal/domain"
	"github.com/hylla/zukai/internal/layout"
)

func sampleLogic(t *testing.T) (layout.Logic, layout.ExportFrame) {
	t.Helper()
	m := domain.NewLogicModel()
	for _, item := range []domain.Item{
		{ID: "a", Text: "funds & <staff>", Category: domain.CategoryInputs},
		{ID: "b", Text: "training", Category: domain.CategoryActivities},
	} {
		if err := m.AddItem(item); err != nil {
			t.Fatalf("AddItem() error = %v", err)
		}
	}
	if err := m.AddConnection(domain.Connection{ID: "c1", Source: "a", Target: "b"}); err != nil {
		t.Fatalf("AddConnection() error = %v", err)
	}
	frame := layout.LogicExportFrame(m, layout.ExportColumnWidth, layout.ExportPadding)
	return layout.LogicLayout(m, frame.ContentWidth), frame
}

func samplePurpose(t *testing.T) layout.PurposeDiagram {
	t.Helper()
	p := domain.NewPartition(domain.DefaultPurpose())
	for i, layer := range []domain.Layer{domain.LayerSupporting, domain.LayerLeading, domain.LayerLeading} {
		s, err := domain.NewStakeholder(string(rune('a'+i)), "name", "role", "goal", domain.StakeholderCitizen, layer)
		if err != nil {
			t.Fatalf("NewStakeholder() error = %v", err)
		}
		p.Stakeholders = append(p.Stakeholders, s)
	}
	return layout.PurposeLayout(p, "現在", layout.ExportPurposeWidth, layout.ExportPurposeHeight)
}

// TestLogicSVG verifies behavior for the covered scenario.
func TestLogicSVG(t *testing.T) {
	placed, frame := sampleLogic(t)
	out := string(LogicSVG(placed, frame))
	for _, want := range []string{
		`width="1160" height="480"`,
		`<g transform="translate(40,40)">`,
		`marker-end="url(#arrowhead)"`,
		`data-id="c1" d="` + placed.Paths[0].D() + `"`,
		`funds &amp; &lt;staff&gt;`,
		`>インプット</text>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in svg output", want)
		}
	}
	if got := strings.Count(out, `class="card"`); got != 2 {
		t.Fatalf("expected 2 cards, got %d", got)
	}
	if got := strings.Count(out, `class="column"`); got != 6 {
		t.Fatalf("expected 6 columns, got %d", got)
	}
}

// TestPurposeSVG verifies behavior for the covered scenario.
func TestPurposeSVG(t *testing.T) {
	d := samplePurpose(t)
	out := string(PurposeSVG(d))
	if got := strings.Count(out, `class="arc"`); got != 6 {
		t.Fatalf("expected two arcs per stakeholder, got %d", got)
	}
	for _, want := range []string{`(現在)`, `class="purpose"`, `transform="rotate(`, layout.PurposeFill} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in svg output", want)
		}
	}
}

// TestArcPathSweepsClockwise verifies behavior for the covered scenario.
func TestArcPathSweepsClockwise(t *testing.T) {
	d := layout.PurposeDiagram{CenterX: 100, CenterY: 100}
	got := arcPath(d, layout.Arc{StartAngle: 0, EndAngle: 90, InnerRadius: 10, OuterRadius: 50})
	want := "M 100,50 A 50,50 0 0 1 150,100 L 110,100 A 10,10 0 0 0 100,90 Z"
	if got != want {
		t.Fatalf("arcPath() = %q, want %q", got, want)
	}
	wide := arcPath(d, layout.Arc{StartAngle: -90, EndAngle: 189, InnerRadius: 10, OuterRadius: 50})
	if !strings.Contains(wide, " 0 1 1 ") {
		t.Fatalf("expected large-arc flag for wide sweep, got %q", wide)
	}
}

// TestPNGDimensions verifies behavior for the covered scenario.
func TestPNGDimensions(t *testing.T) {
	placed, frame := sampleLogic(t)
	data, err := LogicPNG(placed, frame)
	if err != nil {
		t.Fatalf("LogicPNG() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1160 || b.Dy() != 480 {
		t.Fatalf("unexpected logic bounds %v", b)
	}
	// Card fill is drawn inside the translated frame.
	card := placed.Cards[0]
	r, g, b, _ := img.At(int(card.X+frame.Padding+card.Width/2), int(card.Y+frame.Padding+4)).RGBA()
	if r>>8 != 0xFF || g>>8 != 0xD1 || b>>8 != 0x66 {
		t.Fatalf("unexpected card pixel %x %x %x", r>>8, g>>8, b>>8)
	}

	data, err = PurposePNG(samplePurpose(t))
	if err != nil {
		t.Fatalf("PurposePNG() error = %v", err)
	}
	img, err = png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1000 || b.Dy() != 800 {
		t.Fatalf("unexpected purpose bounds %v", b)
	}
}

// TestRendererFormats verifies behavior for the covered scenario.
func TestRendererFormats(t *testing.T) {
	r := New()
	placed, frame := sampleLogic(t)
	svg, err := r.RenderLogic(context.Background(), placed, frame, domain.ImageSVG)
	if err != nil || !bytes.HasPrefix(svg, []byte("<svg")) {
		t.Fatalf("RenderLogic(svg) = %q, %v", svg, err)
	}
	if _, err := r.RenderPurpose(context.Background(), samplePurpose(t), domain.ImageFormat("gif")); !errors.Is(err, domain.ErrInvalidImageFormat) {
		t.Fatalf("expected ErrInvalidImageFormat, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.RenderLogic(ctx, placed, frame, domain.ImagePNG); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := LogicPNG(layout.Logic{}, layout.ExportFrame{}); err == nil {
		t.Fatal("expected error for empty frame")
	}
}
