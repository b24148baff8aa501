package widgets

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"camelot/chord"
	"camelot/theme"
)

// Piano strip range, F3 to F5
const (
	PianoLow  = 53
	PianoHigh = 77
)

var blackKeys = [12]bool{1: true, 3: true, 6: true, 8: true, 10: true}

// Piano draws a one-line key strip with the sounding triad lit
type Piano struct {
	theme *theme.Theme
}

func NewPiano(th *theme.Theme) *Piano {
	return &Piano{theme: th}
}

// Keys returns the key symbols without styling, one rune per pitch
func (p *Piano) Keys(lit []int) []rune {
	keys := make([]rune, 0, PianoHigh-PianoLow+1)
	for pitch := PianoLow; pitch <= PianoHigh; pitch++ {
		switch {
		case slices.Contains(lit, pitch):
			keys = append(keys, p.theme.Symbols.LitKey)
		case blackKeys[pitch%12]:
			keys = append(keys, p.theme.Symbols.BlackKey)
		default:
			keys = append(keys, p.theme.Symbols.WhiteKey)
		}
	}
	return keys
}

// View renders the strip; pitches outside the strip are listed after it
func (p *Piano) View(lit []int) string {
	litStyle := lipgloss.NewStyle().Foreground(p.theme.Accent())
	keyStyle := lipgloss.NewStyle().Foreground(p.theme.Muted())

	var out strings.Builder
	for i, r := range p.Keys(lit) {
		style := keyStyle
		if slices.Contains(lit, PianoLow+i) {
			style = litStyle
		}
		out.WriteString(style.Render(string(r)))
	}

	var outside []string
	for _, pitch := range lit {
		if pitch < PianoLow || pitch > PianoHigh {
			outside = append(outside, chord.NoteName(pitch))
		}
	}
	if len(outside) > 0 {
		out.WriteString(" ")
		out.WriteString(litStyle.Render("+" + strings.Join(outside, " ")))
	}
	return out.String()
}
