package layout

import (
	"math"

	"github.com/hylla/zukai/internal/domain"
)

// Purpose ring geometry and palette.
const (
	DefaultPurposeWidth  = 900.0
	DefaultPurposeHeight = 700.0
	ExportPurposeWidth   = 1000.0
	ExportPurposeHeight  = 800.0

	InkColor           = "#2F3E46"
	PurposeFill        = "#F4F3EE"
	PurposeStroke      = "#A8A196"
	CaptionColor       = "#666666"
	DividerStrokeWidth = 6.0

	radiusRatio        = 0.8
	purposeRadiusRatio = 0.3
	innerRadiusRatio   = 0.35
	outerRadiusRatio   = 0.95

	goalWrap        = 8
	purposeTextWrap = 10
)

// Layer angle ranges in degrees, clockwise from twelve o'clock.
var (
	supportingRange = [2]float64{-90, 89}
	leadingRange    = [2]float64{91, 270}
)

// Arc is an annular sector centred on the canvas origin.
type Arc struct {
	StakeholderID string
	StartAngle    float64
	EndAngle      float64
	InnerRadius   float64
	OuterRadius   float64
	Fill          string
}

// Text is a single line of text anchored at its middle. Rotate is applied
// around (X, Y) in degrees.
type Text struct {
	Value    string
	X        float64
	Y        float64
	Rotate   float64
	FontSize float64
	Bold     bool
	Fill     string
}

// Line is a straight stroke.
type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         string
	Width          float64
}

// Wedge records the band assigned to one stakeholder.
type Wedge struct {
	Stakeholder domain.Stakeholder
	Angle       float64
	Bandwidth   float64
}

// PurposeDiagram is a fully placed purpose ring in absolute canvas coordinates.
type PurposeDiagram struct {
	Width         float64
	Height        float64
	CenterX       float64
	CenterY       float64
	Radius        float64
	PurposeRadius float64
	InnerRadius   float64
	OuterRadius   float64
	Wedges        []Wedge
	Arcs          []Arc
	Texts         []Text
	Dividers      []Line
}

// PurposeLayout places a partition on a width x height canvas. caption is drawn
// in parentheses under the ring when non-empty.
func PurposeLayout(view domain.Partition, caption string, width, height float64) PurposeDiagram {
	r := math.Min(width, height) / 2 * radiusRatio
	d := PurposeDiagram{
		Width:         width,
		Height:        height,
		CenterX:       width / 2,
		CenterY:       height / 2,
		Radius:        r,
		PurposeRadius: r * purposeRadiusRatio,
		InnerRadius:   r * innerRadiusRatio,
		OuterRadius:   r * outerRadiusRatio,
	}
	supporting := view.StakeholdersInLayer(domain.LayerSupporting)
	leading := view.StakeholdersInLayer(domain.LayerLeading)
	d.Wedges = append(bandWedges(supporting, supportingRange), bandWedges(leading, leadingRange)...)

	band := d.OuterRadius - d.InnerRadius
	for _, w := range d.Wedges {
		base := w.Stakeholder.Category.Color()
		half := w.Bandwidth / 2
		d.Arcs = append(d.Arcs,
			Arc{StakeholderID: w.Stakeholder.ID, StartAngle: w.Angle - half, EndAngle: w.Angle + half, InnerRadius: d.InnerRadius, OuterRadius: d.InnerRadius + 2*band/3, Fill: Darker(base, 0.1)},
			Arc{StakeholderID: w.Stakeholder.ID, StartAngle: w.Angle - half, EndAngle: w.Angle + half, InnerRadius: d.InnerRadius + 2*band/3, OuterRadius: d.OuterRadius, Fill: Brighter(base, 0.5)},
		)
	}
	for _, w := range d.Wedges {
		d.Texts = append(d.Texts, d.radialLines(w.Angle, d.InnerRadius+band/3, WrapText(w.Stakeholder.Goal, goalWrap), 16, true, PurposeFill)...)
		d.Texts = append(d.Texts, d.radialLines(w.Angle, d.InnerRadius+5*band/6, []string{w.Stakeholder.Role}, 18, false, InkColor)...)
		d.Texts = append(d.Texts, d.radialLines(w.Angle, d.OuterRadius+25, []string{w.Stakeholder.Name}, 18, true, InkColor)...)
	}

	d.Texts = append(d.Texts, d.purposeLines(view.Purpose)...)
	d.Dividers = []Line{
		{X1: d.CenterX + d.InnerRadius, Y1: d.CenterY, X2: d.CenterX + d.OuterRadius, Y2: d.CenterY, Stroke: InkColor, Width: DividerStrokeWidth},
		{X1: d.CenterX - d.InnerRadius, Y1: d.CenterY, X2: d.CenterX - d.OuterRadius, Y2: d.CenterY, Stroke: InkColor, Width: DividerStrokeWidth},
	}
	d.Texts = append(d.Texts,
		Text{Value: domain.LayerSupporting.Label(), X: d.CenterX, Y: d.CenterY - (d.OuterRadius + 50), FontSize: 20, Bold: true, Fill: InkColor},
		Text{Value: domain.LayerLeading.Label(), X: d.CenterX, Y: d.CenterY + d.OuterRadius + 65, FontSize: 20, Bold: true, Fill: InkColor},
	)
	if caption != "" {
		d.Texts = append(d.Texts, Text{Value: "(" + caption + ")", X: d.CenterX, Y: d.CenterY + d.OuterRadius + 85, FontSize: 14, Fill: CaptionColor})
	}
	return d
}

// bandWedges divides span into equal bands, one per stakeholder, in order.
func bandWedges(list []domain.Stakeholder, span [2]float64) []Wedge {
	if len(list) == 0 {
		return nil
	}
	bw := (span[1] - span[0]) / float64(len(list))
	out := make([]Wedge, 0, len(list))
	for i, s := range list {
		out = append(out, Wedge{Stakeholder: s, Angle: span[0] + float64(i)*bw + bw/2, Bandwidth: bw})
	}
	return out
}

// TextRotation returns the extra glyph rotation for a band angle so text on
// the lower half reads upright.
func TextRotation(angle float64) float64 {
	if angle > 90 && angle < 270 {
		return 180
	}
	return 0
}

// radialLines places wrapped text at radius r along angle.
func (d PurposeDiagram) radialLines(angle, r float64, lines []string, size float64, bold bool, fill string) []Text {
	rot := TextRotation(angle)
	n := float64(len(lines) - 1)
	out := make([]Text, 0, len(lines))
	for i, line := range lines {
		y := -r + float64(i)*size*1.2 - n*size*0.6
		if rot == 180 {
			y = r - float64(i)*size*1.2 + n*size*0.6
		}
		total := angle + rot
		rad := total * math.Pi / 180
		out = append(out, Text{
			Value:    line,
			X:        d.CenterX - y*math.Sin(rad),
			Y:        d.CenterY + y*math.Cos(rad),
			Rotate:   normalizeAngle(total),
			FontSize: size,
			Bold:     bold,
			Fill:     fill,
		})
	}
	return out
}

// purposeLines stacks the wrapped title and description in the centre circle.
func (d PurposeDiagram) purposeLines(p domain.Purpose) []Text {
	title := WrapText(p.Title, purposeTextWrap)
	desc := WrapText(p.Description, purposeTextWrap)
	out := make([]Text, 0, len(title)+len(desc))
	y := -float64(len(title)-1) * 0.8 * 20
	for i, line := range title {
		if i > 0 {
			y += 1.4 * 20
		}
		out = append(out, Text{Value: line, X: d.CenterX, Y: d.CenterY + y, FontSize: 20, Bold: true, Fill: InkColor})
	}
	for i, line := range desc {
		if i == 0 {
			y += 2.0 * 16
		} else {
			y += 1.4 * 16
		}
		out = append(out, Text{Value: line, X: d.CenterX, Y: d.CenterY + y, FontSize: 16, Fill: InkColor})
	}
	return out
}

// PolarPoint converts a clockwise-from-north angle and radius to canvas space.
func (d PurposeDiagram) PolarPoint(angle, r float64) Point {
	rad := angle * math.Pi / 180
	return Point{X: d.CenterX + r*math.Sin(rad), Y: d.CenterY - r*math.Cos(rad)}
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
