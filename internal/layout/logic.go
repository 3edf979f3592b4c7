package layout

import (
	"fmt"
	"math"

	"github.com/hylla/zukai/internal/domain"
)

// Logic board geometry.
const (
	CardHeight        = 77.0
	CardVMargin       = 35.0
	TitleHeight       = 50.0
	ColumnGutter      = 40.0
	ExportColumnWidth = 180.0
	ExportPadding     = 40.0
	MinBoardHeight    = 400.0
	CardRadius        = 12.0

	cardCharWidth = 8.0
	cardMaxLines  = 3
)

// Point is a 2D coordinate in SVG user space.
type Point struct {
	X float64
	Y float64
}

// Column is one stage band of the board.
type Column struct {
	Category domain.Category
	Label    string
	X        float64
	Width    float64
}

// Card is a placed item.
type Card struct {
	ID       string
	Text     string
	Category domain.Category
	Color    string
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Lines    []string
}

// In returns the left-middle anchor where incoming arrows end.
func (c Card) In() Point {
	return Point{X: c.X, Y: c.Y + c.Height/2}
}

// Out returns the right-middle anchor where outgoing arrows start.
func (c Card) Out() Point {
	return Point{X: c.X + c.Width, Y: c.Y + c.Height/2}
}

// Path is a cubic Bézier arrow between two cards.
type Path struct {
	ID       string
	Source   string
	Target   string
	Start    Point
	Control1 Point
	Control2 Point
	End      Point
}

// D renders the path as SVG path data.
func (p Path) D() string {
	return fmt.Sprintf("M %s,%s C %s,%s %s,%s %s,%s",
		num(p.Start.X), num(p.Start.Y),
		num(p.Control1.X), num(p.Control1.Y),
		num(p.Control2.X), num(p.Control2.Y),
		num(p.End.X), num(p.End.Y))
}

// Logic is a fully placed logic board.
type Logic struct {
	Width       float64
	Height      float64
	ColumnWidth float64
	CardWidth   float64
	Columns     []Column
	Cards       []Card
	Paths       []Path
}

// Card returns the placed card for id.
func (l Logic) Card(id string) (Card, bool) {
	for _, c := range l.Cards {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// LogicLayout places every item and connection for a board of the given width.
// It is a pure function of its inputs. Connections whose endpoints are missing
// are skipped.
func LogicLayout(m domain.LogicModel, width float64) Logic {
	categories := domain.Categories()
	colW := width / float64(len(categories))
	cardW := colW - ColumnGutter
	out := Logic{
		Width:       width,
		Height:      BoardHeight(m),
		ColumnWidth: colW,
		CardWidth:   cardW,
		Columns:     make([]Column, 0, len(categories)),
		Cards:       make([]Card, 0, len(m.Items)),
		Paths:       make([]Path, 0, len(m.Connections)),
	}
	for idx, category := range categories {
		out.Columns = append(out.Columns, Column{
			Category: category,
			Label:    category.Label(),
			X:        float64(idx) * colW,
			Width:    colW,
		})
	}

	rank := make(map[domain.Category]int, len(categories))
	for _, item := range m.Items {
		i := rank[item.Category]
		rank[item.Category] = i + 1
		out.Cards = append(out.Cards, Card{
			ID:       item.ID,
			Text:     item.Text,
			Category: item.Category,
			Color:    item.Category.Color(),
			X:        float64(item.Category.Index())*colW + (colW-cardW)/2,
			Y:        TitleHeight + float64(i)*(CardHeight+CardVMargin) + CardVMargin,
			Width:    cardW,
			Height:   CardHeight,
			Lines:    CardLines(item.Text, cardW),
		})
	}

	for _, conn := range m.Connections {
		src, ok := out.Card(conn.Source)
		if !ok {
			continue
		}
		dst, ok := out.Card(conn.Target)
		if !ok {
			continue
		}
		out.Paths = append(out.Paths, connectionPath(conn, src.Out(), dst.In()))
	}
	return out
}

func connectionPath(conn domain.Connection, start, end Point) Path {
	dx := end.X - start.X
	dy := end.Y - start.Y
	p := Path{ID: conn.ID, Source: conn.Source, Target: conn.Target, Start: start, End: end}
	if math.Abs(dx) > math.Abs(dy) {
		off := math.Max(50, math.Abs(dx)*0.4)
		p.Control1 = Point{X: start.X + off, Y: start.Y}
		p.Control2 = Point{X: end.X - off, Y: end.Y}
		return p
	}
	off := math.Max(30, math.Abs(dy)*0.3)
	if dy <= 0 {
		off = -off
	}
	p.Control1 = Point{X: start.X + math.Abs(dx)*0.3, Y: start.Y + off}
	p.Control2 = Point{X: end.X - math.Abs(dx)*0.3, Y: end.Y - off}
	return p
}

// BoardHeight returns the content height needed for the tallest column.
func BoardHeight(m domain.LogicModel) float64 {
	tallest := 0
	counts := map[domain.Category]int{}
	for _, item := range m.Items {
		counts[item.Category]++
		tallest = max(tallest, counts[item.Category])
	}
	return math.Max(MinBoardHeight, TitleHeight+float64(tallest)*(CardHeight+CardVMargin)+CardVMargin+50)
}

// ExportFrame describes the fixed-size canvas used for image export.
type ExportFrame struct {
	ContentWidth  float64
	ContentHeight float64
	Padding       float64
}

// Width returns the padded canvas width.
func (f ExportFrame) Width() float64 { return f.ContentWidth + 2*f.Padding }

// Height returns the padded canvas height.
func (f ExportFrame) Height() float64 { return f.ContentHeight + 2*f.Padding }

// LogicExportFrame sizes the export canvas from a fixed column width.
func LogicExportFrame(m domain.LogicModel, columnWidth, padding float64) ExportFrame {
	if columnWidth <= 0 {
		columnWidth = ExportColumnWidth
	}
	if padding < 0 {
		padding = ExportPadding
	}
	return ExportFrame{
		ContentWidth:  columnWidth * float64(len(domain.Categories())),
		ContentHeight: BoardHeight(m),
		Padding:       padding,
	}
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
