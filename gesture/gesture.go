// Package gesture turns press/enter/release pointer signals over wheel
// regions into a paired stream of begin/end events. At most one position is
// ever sounding.
package gesture

import (
	"fmt"

	"camelot/wheel"
)

// State is either Idle or Sounding(position)
type State struct {
	pos wheel.Position // zero when idle
}

// Idle is the initial state
func Idle() State { return State{} }

// Sounding returns the state holding p
func Sounding(p wheel.Position) State {
	mustValid(p)
	return State{pos: p}
}

func (s State) IsIdle() bool { return s.pos == 0 }

// Position returns the sounding position, ok is false when idle
func (s State) Position() (p wheel.Position, ok bool) {
	return s.pos, s.pos != 0
}

func (s State) String() string {
	if s.IsIdle() {
		return "Idle"
	}
	return "Sounding(" + s.pos.String() + ")"
}

// Signal is the kind of pointer input
type Signal uint8

const (
	SignalPress Signal = iota + 1
	SignalEnter
	SignalRelease
)

func (s Signal) String() string {
	switch s {
	case SignalPress:
		return "press"
	case SignalEnter:
		return "enter"
	case SignalRelease:
		return "release"
	}
	return fmt.Sprintf("Signal(%d)", uint8(s))
}

// Input is one pointer signal. Position is ignored for release.
type Input struct {
	Signal   Signal
	Position wheel.Position
}

func Press(p wheel.Position) Input { return Input{Signal: SignalPress, Position: p} }
func Enter(p wheel.Position) Input { return Input{Signal: SignalEnter, Position: p} }
func Release() Input               { return Input{Signal: SignalRelease} }

// Kind says whether an effect starts or stops a chord
type Kind uint8

const (
	Begin Kind = iota + 1
	End
)

func (k Kind) String() string {
	if k == End {
		return "end"
	}
	return "begin"
}

// Effect is an emitted lifecycle event for a position
type Effect struct {
	Kind     Kind
	Position wheel.Position
}

func (e Effect) String() string {
	return e.Kind.String() + "(" + e.Position.String() + ")"
}

// Reduce applies one input to s. It never fails; a press or enter naming an
// invalid position panics with wheel.ErrInvalidPosition.
//
// When sliding from p to q the end of p is always ordered before the begin
// of q.
func Reduce(s State, in Input) (State, []Effect) {
	switch in.Signal {
	case SignalPress, SignalEnter:
		mustValid(in.Position)
		if s.IsIdle() {
			// entering a region without an active press does nothing
			if in.Signal == SignalEnter {
				return s, nil
			}
			return State{pos: in.Position}, []Effect{{Kind: Begin, Position: in.Position}}
		}
		// press while sounding is handled like enter
		if s.pos == in.Position {
			return s, nil
		}
		return State{pos: in.Position}, []Effect{
			{Kind: End, Position: s.pos},
			{Kind: Begin, Position: in.Position},
		}

	case SignalRelease:
		if s.IsIdle() {
			return s, nil
		}
		return Idle(), []Effect{{Kind: End, Position: s.pos}}
	}
	panic(fmt.Sprintf("gesture: unknown signal %v", in.Signal))
}

// Machine holds a State and applies inputs to it in arrival order
type Machine struct {
	state State
}

func (m *Machine) State() State { return m.state }

// Apply reduces in against the current state and returns the effects
func (m *Machine) Apply(in Input) []Effect {
	var effects []Effect
	m.state, effects = Reduce(m.state, in)
	return effects
}

func mustValid(p wheel.Position) {
	if !p.Valid() {
		panic(fmt.Errorf("gesture: %w: %d", wheel.ErrInvalidPosition, uint8(p)))
	}
}
