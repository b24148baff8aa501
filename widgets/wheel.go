package widgets

import (
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"camelot/chord"
	"camelot/theme"
	"camelot/wheel"
)

// Wheel geometry. Cells sit on two ellipses like a clock face, slot 12 and
// slot 1 straddling the top. The two rings never share a row.
const (
	cellWidth   = 5
	outerRadX   = 18
	outerRadY   = 8
	innerRadX   = 10
	innerRadY   = 4
	wheelWidth  = 2*outerRadX + cellWidth
	wheelHeight = 2*outerRadY + 1
	centerX     = wheelWidth / 2
	centerY     = outerRadY
)

type wheelCell struct {
	pos  wheel.Position
	x, y int // left column and row, widget-local
}

// Wheel renders the 24 positions and maps clicks back to them
type Wheel struct {
	theme *theme.Theme
	cells []wheelCell
	rows  [wheelHeight][]wheelCell // cells of each row sorted by x
}

func NewWheel(th *theme.Theme) *Wheel {
	w := &Wheel{theme: th}
	for _, p := range wheel.All() {
		rx, ry := outerRadX, outerRadY
		if p.Ring() == wheel.RingInner {
			rx, ry = innerRadX, innerRadY
		}
		theta := (float64(p.Slot()) - 0.5) * math.Pi / 6
		cx := centerX + int(math.Round(float64(rx)*math.Sin(theta)))
		cy := centerY - int(math.Round(float64(ry)*math.Cos(theta)))
		c := wheelCell{pos: p, x: cx - cellWidth/2, y: cy}
		w.cells = append(w.cells, c)
		w.rows[cy] = append(w.rows[cy], c)
	}
	for i := range w.rows {
		slices.SortFunc(w.rows[i], func(a, b wheelCell) int { return a.x - b.x })
	}
	return w
}

// Size returns the widget's width and height in cells
func (w *Wheel) Size() (int, int) {
	return wheelWidth, wheelHeight
}

// HitTest returns the position under widget-local coordinates
func (w *Wheel) HitTest(x, y int) (wheel.Position, bool) {
	if y < 0 || y >= wheelHeight {
		return 0, false
	}
	for _, c := range w.rows[y] {
		if x >= c.x && x < c.x+cellWidth {
			return c.pos, true
		}
	}
	return 0, false
}

// Label is the text shown in a cell
func Label(p wheel.Position, musical bool) string {
	if musical {
		return wheel.Lookup(p).Name()
	}
	return p.String()
}

// View draws the wheel. sounding is 0 when nothing plays; its harmonic
// neighbours are drawn in the accent colour.
func (w *Wheel) View(sounding wheel.Position, musical bool) string {
	var hints [3]wheel.Position
	if sounding.Valid() {
		hints = sounding.Neighbours()
	}

	lines := make([]string, wheelHeight)
	for y := 0; y < wheelHeight; y++ {
		var line strings.Builder
		col := 0
		for _, c := range w.rows[y] {
			line.WriteString(strings.Repeat(" ", c.x-col))
			line.WriteString(w.cellStyle(c.pos, sounding, hints).Render(Label(c.pos, musical)))
			col = c.x + cellWidth
		}
		if y == centerY {
			line.WriteString(w.center(sounding, musical))
		}
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

func (w *Wheel) cellStyle(p, sounding wheel.Position, hints [3]wheel.Position) lipgloss.Style {
	style := lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Center)
	switch {
	case p == sounding && p.Ring() == wheel.RingOuter:
		return style.Bold(true).Foreground(w.theme.BG()).Background(w.theme.OuterActive())
	case p == sounding:
		return style.Bold(true).Foreground(w.theme.BG()).Background(w.theme.InnerActive())
	case slices.Contains(hints[:], p):
		return style.Foreground(w.theme.Accent())
	case p.Ring() == wheel.RingOuter:
		return style.Foreground(w.theme.Outer())
	default:
		return style.Foreground(w.theme.Inner())
	}
}

// center is the centre row: the name of the sounding key, or a dot
func (w *Wheel) center(sounding wheel.Position, musical bool) string {
	text := "·"
	if sounding.Valid() {
		text = Label(sounding, !musical)
	}
	return lipgloss.NewStyle().
		Width(wheelWidth).
		Align(lipgloss.Center).
		Foreground(w.theme.FG()).
		Render(text)
}

// ChordLine describes a sounding triad, e.g. "8B  C  C4 E4 G4"
func ChordLine(p wheel.Position, t chord.Triad) string {
	names := make([]string, len(t))
	for i, pitch := range t {
		names[i] = chord.NoteName(pitch)
	}
	return p.String() + "  " + wheel.Lookup(p).Name() + "  " + strings.Join(names, " ")
}
