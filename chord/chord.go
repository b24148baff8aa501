package chord

import (
	"fmt"

	"camelot/wheel"
)

// ReferenceTonic is the pitch of C in the reference octave (C4)
const ReferenceTonic = 60

var (
	majorScale = [7]int{0, 2, 4, 5, 7, 9, 11}
	minorScale = [7]int{0, 2, 3, 5, 7, 8, 10}
)

// ScaleDegrees returns the semitone offsets of the seven scale degrees
func ScaleDegrees(m wheel.Mode) [7]int {
	if m == wheel.Minor {
		return minorScale
	}
	return majorScale
}

// Triad is root, third and fifth as absolute pitch numbers
type Triad [3]int

// Scale returns the seven pitches of the key at p, shifted by whole octaves.
func Scale(p wheel.Position, octaveShift int) [7]int {
	e := wheel.Lookup(p)
	tonic := ReferenceTonic + int(e.Root) + 12*octaveShift

	var out [7]int
	for i, deg := range ScaleDegrees(e.Mode) {
		out[i] = tonic + deg
	}
	return out
}

// Resolve returns the close-voiced triad for p: the 1st, 3rd and 5th degrees
// of its scale. Pure; panics only for an invalid position.
func Resolve(p wheel.Position, octaveShift int) Triad {
	s := Scale(p, octaveShift)
	return Triad{s[0], s[2], s[4]}
}

// InRange reports whether every pitch fits the 0-127 note range
func (t Triad) InRange() bool {
	for _, n := range t {
		if n < 0 || n > 127 {
			return false
		}
	}
	return true
}

// Shift returns the triad moved by n octaves
func (t Triad) Shift(n int) Triad {
	return Triad{t[0] + 12*n, t[1] + 12*n, t[2] + 12*n}
}

func (t Triad) String() string {
	return fmt.Sprintf("%s-%s-%s", NoteName(t[0]), NoteName(t[1]), NoteName(t[2]))
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName formats a pitch as name and octave, middle C = "C4"
func NoteName(pitch int) string {
	if pitch < 0 {
		return fmt.Sprintf("?%d", pitch)
	}
	return fmt.Sprintf("%s%d", noteNames[pitch%12], pitch/12-1)
}
