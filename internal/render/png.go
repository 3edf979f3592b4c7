package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/hylla/zukai/internal/layout"
)

const (
	curveSteps = 24
	arcStep    = 2.0
)

// canvas wraps an RGBA image with a vector rasterizer for filled shapes.
type canvas struct {
	img *image.RGBA
	dx  float64
	dy  float64
}

func newCanvas(w, h float64) (*canvas, error) {
	iw, ih := int(math.Ceil(w)), int(math.Ceil(h))
	if iw <= 0 || ih <= 0 {
		return nil, fmt.Errorf("invalid canvas size %vx%v", w, h)
	}
	c := &canvas{img: image.NewRGBA(image.Rect(0, 0, iw, ih))}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(parseColor(BackgroundColor)), image.Point{}, draw.Src)
	return c, nil
}

// fill rasterizes the closed polygon pts.
func (c *canvas) fill(pts []layout.Point, hex string) {
	if len(pts) < 3 {
		return
	}
	b := c.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(float32(pts[0].X+c.dx), float32(pts[0].Y+c.dy))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X+c.dx), float32(p.Y+c.dy))
	}
	z.ClosePath()
	z.Draw(c.img, b, image.NewUniform(parseColor(hex)), image.Point{})
}

// stroke draws the open polyline pts as quads of the given width.
func (c *canvas) stroke(pts []layout.Point, width float64, hex string) {
	half := width / 2
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		n := math.Hypot(dx, dy)
		if n == 0 {
			continue
		}
		nx, ny := -dy/n*half, dx/n*half
		c.fill([]layout.Point{
			{X: a.X + nx, Y: a.Y + ny},
			{X: b.X + nx, Y: b.Y + ny},
			{X: b.X - nx, Y: b.Y - ny},
			{X: a.X - nx, Y: a.Y - ny},
		}, hex)
	}
}

// text draws a horizontally centred label without rotation. Only glyphs the
// bitmap face carries are drawn.
func (c *canvas) text(value string, x, y float64, hex string) {
	d := font.Drawer{Dst: c.img, Src: image.NewUniform(parseColor(hex)), Face: basicfont.Face7x13}
	w := d.MeasureString(value)
	metrics := basicfont.Face7x13.Metrics()
	baseline := y + c.dy + float64(metrics.Ascent.Round()-metrics.Descent.Round())/2
	d.Dot = fixed.Point26_6{
		X: fixed.I(int(math.Round(x+c.dx))) - w/2,
		Y: fixed.I(int(math.Round(baseline))),
	}
	d.DrawString(value)
}

func (c *canvas) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// LogicPNG rasterizes a placed board inside frame.
func LogicPNG(placed layout.Logic, frame layout.ExportFrame) ([]byte, error) {
	c, err := newCanvas(frame.Width(), frame.Height())
	if err != nil {
		return nil, err
	}
	c.dx, c.dy = frame.Padding, frame.Padding
	for _, col := range placed.Columns {
		c.fill(rect(col.X, 0, col.Width, placed.Height), ColumnFill)
		c.text(col.Label, col.X+col.Width/2, layout.TitleHeight/2, TitleColor)
	}
	for _, p := range placed.Paths {
		pts := bezier(p.Start, p.Control1, p.Control2, p.End)
		c.stroke(pts, arrowWidth, ArrowColor)
		c.fill(arrowhead(pts[len(pts)-2], p.End), ArrowColor)
	}
	for _, card := range placed.Cards {
		c.fill(roundedRect(card.X, card.Y, card.Width, card.Height, layout.CardRadius), card.Color)
		top := card.Y + card.Height/2 - float64(len(card.Lines)-1)*cardLineHeight/2
		for i, line := range card.Lines {
			c.text(line, card.X+card.Width/2, top+float64(i)*cardLineHeight, CardTextColor)
		}
	}
	return c.encode()
}

// PurposePNG rasterizes a placed purpose ring.
func PurposePNG(d layout.PurposeDiagram) ([]byte, error) {
	c, err := newCanvas(d.Width, d.Height)
	if err != nil {
		return nil, err
	}
	for _, a := range d.Arcs {
		c.fill(sector(d, a), a.Fill)
	}
	disc := circle(d, d.PurposeRadius)
	c.fill(disc, layout.PurposeFill)
	c.stroke(append(disc, disc[0]), 2, layout.PurposeStroke)
	for _, l := range d.Dividers {
		c.stroke([]layout.Point{{X: l.X1, Y: l.Y1}, {X: l.X2, Y: l.Y2}}, l.Width, l.Stroke)
	}
	for _, t := range d.Texts {
		c.text(t.Value, t.X, t.Y, t.Fill)
	}
	return c.encode()
}

func rect(x, y, w, h float64) []layout.Point {
	return []layout.Point{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}
}

func roundedRect(x, y, w, h, r float64) []layout.Point {
	r = math.Min(r, math.Min(w, h)/2)
	corners := []struct{ cx, cy, from float64 }{
		{x + w - r, y + r, -90},
		{x + w - r, y + h - r, 0},
		{x + r, y + h - r, 90},
		{x + r, y + r, 180},
	}
	var pts []layout.Point
	for _, c := range corners {
		for deg := 0.0; deg <= 90; deg += 15 {
			rad := (c.from + deg) * math.Pi / 180
			pts = append(pts, layout.Point{X: c.cx + r*math.Cos(rad), Y: c.cy + r*math.Sin(rad)})
		}
	}
	return pts
}

func bezier(p0, p1, p2, p3 layout.Point) []layout.Point {
	pts := make([]layout.Point, 0, curveSteps+1)
	for i := 0; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		pts = append(pts, layout.Point{
			X: u*u*u*p0.X + 3*u*u*t*p1.X + 3*u*t*t*p2.X + t*t*t*p3.X,
			Y: u*u*u*p0.Y + 3*u*u*t*p1.Y + 3*u*t*t*p2.Y + t*t*t*p3.Y,
		})
	}
	return pts
}

// arrowhead returns a triangle pointing from prev to tip.
func arrowhead(prev, tip layout.Point) []layout.Point {
	const size = 8.0
	dx, dy := tip.X-prev.X, tip.Y-prev.Y
	n := math.Hypot(dx, dy)
	if n == 0 {
		dx, dy, n = 1, 0, 1
	}
	ux, uy := dx/n, dy/n
	bx, by := tip.X-ux*size, tip.Y-uy*size
	return []layout.Point{
		tip,
		{X: bx - uy*size/2, Y: by + ux*size/2},
		{X: bx + uy*size/2, Y: by - ux*size/2},
	}
}

func sector(d layout.PurposeDiagram, a layout.Arc) []layout.Point {
	var pts []layout.Point
	for deg := a.StartAngle; deg < a.EndAngle; deg += arcStep {
		pts = append(pts, d.PolarPoint(deg, a.OuterRadius))
	}
	pts = append(pts, d.PolarPoint(a.EndAngle, a.OuterRadius))
	for deg := a.EndAngle; deg > a.StartAngle; deg -= arcStep {
		pts = append(pts, d.PolarPoint(deg, a.InnerRadius))
	}
	return append(pts, d.PolarPoint(a.StartAngle, a.InnerRadius))
}

func circle(d layout.PurposeDiagram, r float64) []layout.Point {
	pts := make([]layout.Point, 0, int(360/arcStep))
	for deg := 0.0; deg < 360; deg += arcStep {
		pts = append(pts, d.PolarPoint(deg, r))
	}
	return pts
}

// parseColor accepts #rgb or #rrggbb and falls back to black.
func parseColor(hex string) color.Color {
	c, err := colorful.Hex(expandHex(hex))
	if err != nil {
		return color.Black
	}
	return c
}

func expandHex(hex string) string {
	if len(hex) == 4 && hex[0] == '#' {
		return string([]byte{'#', hex[1], hex[1], hex[2], hex[2], hex[3], hex[3]})
	}
	return hex
}
