package wheel

// PitchClass is a note name independent of octave, C = 0
type PitchClass uint8

const (
	C PitchClass = iota
	Db
	D
	Eb
	E
	F
	Gb
	G
	Ab
	A
	Bb
	B
)

// Spellings follow the wheel's conventional labels (F# rather than Gb).
var pitchNames = [12]string{"C", "Db", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

func (pc PitchClass) String() string {
	return pitchNames[pc%12]
}

// Mode selects the scale a triad is cut from
type Mode uint8

const (
	Major Mode = iota
	Minor
)

func (m Mode) String() string {
	if m == Minor {
		return "minor"
	}
	return "major"
}

// Entry is the key a position denotes
type Entry struct {
	Root PitchClass
	Mode Mode
}

// Name returns the musical key name, e.g. "Abm" or "F#"
func (e Entry) Name() string {
	if e.Mode == Minor {
		return e.Root.String() + "m"
	}
	return e.Root.String()
}

// Indexed by slot-1. Inner ring holds the relative minor of the outer slot.
var (
	innerRoots = [NumSlots]PitchClass{Ab, Eb, Bb, F, C, G, D, A, E, B, Gb, Db}
	outerRoots = [NumSlots]PitchClass{B, Gb, Db, Ab, Eb, Bb, F, C, G, D, A, E}
)

// Lookup returns the key for a position. It panics with ErrInvalidPosition
// for anything outside the 24 slots.
func Lookup(p Position) Entry {
	mustValid(p)
	if p.Ring() == RingInner {
		return Entry{Root: innerRoots[p.Slot()-1], Mode: Minor}
	}
	return Entry{Root: outerRoots[p.Slot()-1], Mode: Major}
}
