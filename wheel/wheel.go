package wheel

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPosition is returned (or panicked with) when a position is
// outside the 24 wheel slots.
var ErrInvalidPosition = errors.New("invalid wheel position")

// Ring identifies one of the two concentric rings of the wheel
type Ring uint8

const (
	RingInner Ring = iota + 1 // "A" - minor keys
	RingOuter                 // "B" - major keys
)

// Letter returns the Camelot suffix for the ring
func (r Ring) Letter() string {
	switch r {
	case RingInner:
		return "A"
	case RingOuter:
		return "B"
	}
	return "?"
}

// Other returns the opposite ring
func (r Ring) Other() Ring {
	if r == RingInner {
		return RingOuter
	}
	return RingInner
}

// NumSlots is the number of angular slots per ring
const NumSlots = 12

// Position is one of the 24 wheel regions. The zero value is invalid.
type Position uint8

// At returns the position for a ring and slot (1-12). Out-of-range input
// yields an invalid position.
func At(ring Ring, slot int) Position {
	if ring != RingInner && ring != RingOuter {
		return 0
	}
	if slot < 1 || slot > NumSlots {
		return 0
	}
	return Position(int(ring-1)*NumSlots + slot)
}

// ParsePosition parses a Camelot label such as "8B" or "12a".
func ParsePosition(s string) (Position, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}

	var ring Ring
	switch strings.ToUpper(s[len(s)-1:]) {
	case "A":
		ring = RingInner
	case "B":
		ring = RingOuter
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}

	slot, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	p := At(ring, slot)
	if !p.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	return p, nil
}

// MustParse is ParsePosition for static labels; it panics on error
func MustParse(s string) Position {
	p, err := ParsePosition(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Position) Valid() bool {
	return p >= 1 && p <= 2*NumSlots
}

func (p Position) Ring() Ring {
	if !p.Valid() {
		return 0
	}
	return Ring((int(p)-1)/NumSlots + 1)
}

func (p Position) Slot() int {
	if !p.Valid() {
		return 0
	}
	return (int(p)-1)%NumSlots + 1
}

func (p Position) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Position(%d)", uint8(p))
	}
	return strconv.Itoa(p.Slot()) + p.Ring().Letter()
}

// Neighbours returns the harmonically compatible positions: one slot either
// way around the same ring, then the relative key on the other ring.
func (p Position) Neighbours() [3]Position {
	mustValid(p)
	slot := p.Slot()
	prev := (slot+NumSlots-2)%NumSlots + 1
	next := slot%NumSlots + 1
	return [3]Position{
		At(p.Ring(), prev),
		At(p.Ring(), next),
		At(p.Ring().Other(), slot),
	}
}

// All returns every position, outer ring first, slots ascending
func All() []Position {
	out := make([]Position, 0, 2*NumSlots)
	for _, ring := range []Ring{RingOuter, RingInner} {
		for slot := 1; slot <= NumSlots; slot++ {
			out = append(out, At(ring, slot))
		}
	}
	return out
}

func mustValid(p Position) {
	if !p.Valid() {
		panic(fmt.Errorf("%w: %d", ErrInvalidPosition, uint8(p)))
	}
}
