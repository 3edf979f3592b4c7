package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hylla/zukai/internal/layout"
)

// Logic board palette.
const (
	BackgroundColor = "#FFFFFF"
	ColumnFill      = "#F7F7F7"
	ArrowColor      = "#555555"
	CardTextColor   = "#1F1F1F"
	TitleColor      = "#333333"

	cardLineHeight = 16.0
	cardFontSize   = 13.0
	titleFontSize  = 15.0
	arrowWidth     = 2.0
)

// LogicSVG draws a placed board inside frame. Content is translated by the
// frame padding so nothing touches the canvas edge.
func LogicSVG(placed layout.Logic, frame layout.ExportFrame) []byte {
	var b strings.Builder
	w, h := frame.Width(), frame.Height()
	openSVG(&b, w, h)
	b.WriteString(`<defs><marker id="arrowhead" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse">`)
	fmt.Fprintf(&b, `<path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/></marker></defs>`, ArrowColor)
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%s" height="%s" fill="%s"/>`, num(w), num(h), BackgroundColor)
	fmt.Fprintf(&b, `<g transform="translate(%s,%s)">`, num(frame.Padding), num(frame.Padding))

	for _, col := range placed.Columns {
		fmt.Fprintf(&b, `<rect class="column" x="%s" y="0" width="%s" height="%s" fill="%s"/>`,
			num(col.X), num(col.Width), num(placed.Height), ColumnFill)
		writeText(&b, col.Label, col.X+col.Width/2, layout.TitleHeight/2, 0, titleFontSize, true, TitleColor)
	}
	for _, p := range placed.Paths {
		fmt.Fprintf(&b, `<path class="connection" data-id="%s" d="%s" fill="none" stroke="%s" stroke-width="%s" marker-end="url(#arrowhead)"/>`,
			escapeXML(p.ID), p.D(), ArrowColor, num(arrowWidth))
	}
	for _, c := range placed.Cards {
		fmt.Fprintf(&b, `<rect class="card" data-id="%s" x="%s" y="%s" width="%s" height="%s" rx="%s" ry="%s" fill="%s"/>`,
			escapeXML(c.ID), num(c.X), num(c.Y), num(c.Width), num(c.Height), num(layout.CardRadius), num(layout.CardRadius), c.Color)
		top := c.Y + c.Height/2 - float64(len(c.Lines)-1)*cardLineHeight/2
		for i, line := range c.Lines {
			writeText(&b, line, c.X+c.Width/2, top+float64(i)*cardLineHeight, 0, cardFontSize, false, CardTextColor)
		}
	}
	b.WriteString(`</g></svg>`)
	return []byte(b.String())
}

// PurposeSVG draws a placed purpose ring.
func PurposeSVG(d layout.PurposeDiagram) []byte {
	var b strings.Builder
	openSVG(&b, d.Width, d.Height)
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%s" height="%s" fill="%s"/>`, num(d.Width), num(d.Height), BackgroundColor)
	for _, a := range d.Arcs {
		fmt.Fprintf(&b, `<path class="arc" data-id="%s" d="%s" fill="%s"/>`, escapeXML(a.StakeholderID), arcPath(d, a), a.Fill)
	}
	fmt.Fprintf(&b, `<circle class="purpose" cx="%s" cy="%s" r="%s" fill="%s" stroke="%s" stroke-width="2"/>`,
		num(d.CenterX), num(d.CenterY), num(d.PurposeRadius), layout.PurposeFill, layout.PurposeStroke)
	for _, l := range d.Dividers {
		fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"/>`,
			num(l.X1), num(l.Y1), num(l.X2), num(l.Y2), l.Stroke, num(l.Width))
	}
	for _, t := range d.Texts {
		writeText(&b, t.Value, t.X, t.Y, t.Rotate, t.FontSize, t.Bold, t.Fill)
	}
	b.WriteString(`</svg>`)
	return []byte(b.String())
}

// arcPath builds an annular sector, sweeping clockwise from StartAngle.
func arcPath(d layout.PurposeDiagram, a layout.Arc) string {
	large := 0
	if math.Abs(a.EndAngle-a.StartAngle) > 180 {
		large = 1
	}
	os := d.PolarPoint(a.StartAngle, a.OuterRadius)
	oe := d.PolarPoint(a.EndAngle, a.OuterRadius)
	ie := d.PolarPoint(a.EndAngle, a.InnerRadius)
	is := d.PolarPoint(a.StartAngle, a.InnerRadius)
	return fmt.Sprintf("M %s,%s A %s,%s 0 %d 1 %s,%s L %s,%s A %s,%s 0 %d 0 %s,%s Z",
		num(os.X), num(os.Y), num(a.OuterRadius), num(a.OuterRadius), large, num(oe.X), num(oe.Y),
		num(ie.X), num(ie.Y), num(a.InnerRadius), num(a.InnerRadius), large, num(is.X), num(is.Y))
}

func openSVG(b *strings.Builder, w, h float64) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s" font-family="sans-serif">`,
		num(w), num(h), num(w), num(h))
}

func writeText(b *strings.Builder, value string, x, y, rotate, size float64, bold bool, fill string) {
	fmt.Fprintf(b, `<text x="%s" y="%s" font-size="%s" fill="%s" text-anchor="middle" dominant-baseline="middle"`,
		num(x), num(y), num(size), fill)
	if bold {
		b.WriteString(` font-weight="bold"`)
	}
	if rotate != 0 {
		fmt.Fprintf(b, ` transform="rotate(%s %s %s)"`, num(rotate), num(x), num(y))
	}
	b.WriteString(">")
	b.WriteString(escapeXML(value))
	b.WriteString("</text>")
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
