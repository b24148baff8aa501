package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"camelot/midi"
	"camelot/theme"
	"camelot/wheel"
)

// PadGrid returns the colour of every Launchpad pad, row 0 at the bottom.
// Unmapped pads are off.
func PadGrid(th *theme.Theme, sounding wheel.Position) [8][8]theme.RGB {
	var grid [8][8]theme.RGB
	for _, p := range wheel.All() {
		row, col := midi.PadFor(p)
		switch {
		case p == sounding:
			grid[row][col] = th.RGB(theme.RoleAccent)
		case p.Ring() == wheel.RingOuter:
			grid[row][col] = th.RGB(theme.RoleOuter)
		default:
			grid[row][col] = th.RGB(theme.RoleInner)
		}
	}
	return grid
}

// RenderPad renders a single colored pad
func RenderPad(th *theme.Theme, color theme.RGB) string {
	symbol := th.Symbols.Solid
	if color == (theme.RGB{}) {
		symbol = th.Symbols.Empty
		color = th.RGB(theme.RoleBorder)
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color.Hex()))
	return style.Render(string(symbol))
}

// RenderPadGrid renders an 8x8 grid of pads (row 0 at bottom, row 7 at top)
func RenderPadGrid(th *theme.Theme, grid [8][8]theme.RGB) string {
	var lines []string
	for row := 7; row >= 0; row-- {
		var line strings.Builder
		for col := 0; col < 8; col++ {
			if col > 0 {
				line.WriteString(" ")
			}
			line.WriteString(RenderPad(th, grid[row][col]))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(th *theme.Theme, color theme.RGB, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderPad(th, color), name, desc)
}

// Pads is the Launchpad preview shown next to the wheel
type Pads struct {
	theme *theme.Theme
}

func NewPads(th *theme.Theme) *Pads {
	return &Pads{theme: th}
}

func (p *Pads) View(sounding wheel.Position, device string) string {
	th := p.theme
	title := lipgloss.NewStyle().Foreground(th.Muted()).Render("launchpad: none")
	if device != "" {
		title = lipgloss.NewStyle().Foreground(th.Accent()).Render("launchpad: " + device)
	}
	legend := []string{
		RenderLegendItem(th, th.RGB(theme.RoleOuter), "B", "major, cols 1-4"),
		RenderLegendItem(th, th.RGB(theme.RoleInner), "A", "minor, cols 5-8"),
	}
	return title + "\n" + RenderPadGrid(th, PadGrid(th, sounding)) + "\n" + strings.Join(legend, "\n")
}
