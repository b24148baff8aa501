// Package session connects the gesture reducer to the chord resolver and a
// note dispatcher. A Session owns one SoundingState; several sessions can
// run side by side without sharing anything.
package session

import (
	"errors"

	"go.uber.org/zap"

	"camelot/chord"
	"camelot/gesture"
	"camelot/wheel"
)

// Dispatcher sends a resolved triad. *dispatch.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(t chord.Triad, k gesture.Kind) error
}

// Octave bounds keep every triad inside the 0-127 note range
const (
	MinOctave = -5
	MaxOctave = 4
)

// Snapshot describes the session after a change
type Snapshot struct {
	State  gesture.State
	Triad  chord.Triad // valid only while sounding
	Octave int
}

// Session is not safe for concurrent use: deliver every signal from one
// goroutine (the UI update loop).
type Session struct {
	machine  gesture.Machine
	dispatch Dispatcher
	octave   int
	sounding chord.Triad
	log      *zap.Logger
	onChange func(Snapshot)
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithOctave sets the initial octave shift
func WithOctave(n int) Option {
	return func(s *Session) { s.octave = clampOctave(n) }
}

// WithOnChange registers a callback run after every state or octave change
func WithOnChange(fn func(Snapshot)) Option {
	return func(s *Session) { s.onChange = fn }
}

func New(d Dispatcher, opts ...Option) *Session {
	s := &Session{dispatch: d, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Press starts a gesture on p
func (s *Session) Press(p wheel.Position) error {
	return s.Apply(gesture.Press(p))
}

// Enter reports the pointer moving into p while pressed
func (s *Session) Enter(p wheel.Position) error {
	return s.Apply(gesture.Enter(p))
}

// Release ends the gesture wherever the pointer is
func (s *Session) Release() error {
	return s.Apply(gesture.Release())
}

// Apply feeds one gesture input. The state advances first; dispatch
// failures never undo it.
func (s *Session) Apply(in gesture.Input) error {
	before := s.machine.State()
	effects := s.machine.Apply(in)
	if len(effects) == 0 {
		return nil
	}

	var errs []error
	for _, e := range effects {
		var t chord.Triad
		if e.Kind == gesture.Begin {
			t = chord.Resolve(e.Position, s.octave)
			s.sounding = t
		} else {
			// the chord that began, even if the octave changed since
			t = s.sounding
		}
		s.log.Debug("chord",
			zap.Stringer("kind", e.Kind),
			zap.Stringer("position", e.Position),
			zap.Stringer("triad", t),
		)
		if err := s.dispatch.Dispatch(t, e.Kind); err != nil {
			errs = append(errs, err)
		}
	}

	if s.machine.State() != before {
		s.changed()
	}
	return errors.Join(errs...)
}

func (s *Session) State() gesture.State { return s.machine.State() }

// Sounding returns the sounding position and the triad it started with
func (s *Session) Sounding() (wheel.Position, chord.Triad, bool) {
	p, ok := s.machine.State().Position()
	if !ok {
		return 0, chord.Triad{}, false
	}
	return p, s.sounding, true
}

func (s *Session) Octave() int { return s.octave }

// SetOctave changes the shift used by the next begin; a sounding chord is
// left alone.
func (s *Session) SetOctave(n int) {
	n = clampOctave(n)
	if n == s.octave {
		return
	}
	s.octave = n
	s.changed()
}

func (s *Session) ShiftOctave(delta int) {
	s.SetOctave(s.octave + delta)
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{State: s.machine.State(), Octave: s.octave}
	if !snap.State.IsIdle() {
		snap.Triad = s.sounding
	}
	return snap
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange(s.Snapshot())
	}
}

func clampOctave(n int) int {
	return max(MinOctave, min(MaxOctave, n))
}
