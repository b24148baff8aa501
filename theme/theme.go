package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Launchpad preview
	Solid rune // ■ mapped pad
	Empty rune // □ unmapped pad

	// Piano strip
	WhiteKey rune // ▯
	BlackKey rune // ▮
	LitKey   rune // ◆ note of the sounding triad
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Solid: '■',
			Empty: '□',

			WhiteKey: '▯',
			BlackKey: '▮',
			LitKey:   '◆',
		},
	}
}

// Color roles mapped to palette positions (0-1). On the default palette
// each role lands exactly on one entry.
const (
	RoleBG          = 0.0
	RoleBorder      = 1.0 / 7
	RoleOuterActive = 2.0 / 7
	RoleOuter       = 3.0 / 7
	RoleInner       = 4.0 / 7
	RoleInnerActive = 5.0 / 7
	RoleAccent      = 6.0 / 7
	RoleFG          = 1.0
)

func (t *Theme) BG() lipgloss.Color          { return t.Color(RoleBG) }
func (t *Theme) FG() lipgloss.Color          { return t.Color(RoleFG) }
func (t *Theme) Muted() lipgloss.Color       { return t.Color(RoleBorder) }
func (t *Theme) Accent() lipgloss.Color      { return t.Color(RoleAccent) }
func (t *Theme) Warning() lipgloss.Color     { return lipgloss.Color("#f87171") }
func (t *Theme) Outer() lipgloss.Color       { return t.Color(RoleOuter) }
func (t *Theme) OuterActive() lipgloss.Color { return t.Color(RoleOuterActive) }
func (t *Theme) Inner() lipgloss.Color       { return t.Color(RoleInner) }
func (t *Theme) InnerActive() lipgloss.Color { return t.Color(RoleInnerActive) }

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(norm).Hex())
}

// RGB returns raw RGB for any normalized value (for Launchpad)
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}
