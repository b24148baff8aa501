// Package dispatch turns triad begin/end events into note-on/note-off
// messages on a bindable MIDI output.
package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	gomidi "gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"

	"camelot/chord"
	"camelot/gesture"
)

var (
	// ErrNoOutputBound is returned when a chord is dispatched with no output
	ErrNoOutputBound = errors.New("no MIDI output bound")
	// ErrPitchOutOfRange marks pitches outside 0-127 that were skipped
	ErrPitchOutOfRange = errors.New("pitch out of MIDI range")
)

// TagDeferred marks errors from note-offs sent after the grace period
const TagDeferred ftag.Kind = "deferred_note_off"

// DefaultVelocity is used for note-ons unless configured otherwise
const DefaultVelocity uint8 = 127

// Kind is begin or end of a chord
type Kind = gesture.Kind

const (
	Begin = gesture.Begin
	End   = gesture.End
)

// Sink receives protocol-level messages
type Sink interface {
	Send(msg gomidi.Message) error
}

// SinkFunc adapts a send function, such as the one returned by
// gomidi.SendTo, to a Sink.
type SinkFunc func(msg gomidi.Message) error

func (f SinkFunc) Send(msg gomidi.Message) error { return f(msg) }

// NoteEvent is a single outbound note
type NoteEvent struct {
	Pitch    int
	Kind     Kind
	Velocity uint8
}

// Message encodes the event for channel ch
func (e NoteEvent) Message(ch uint8) gomidi.Message {
	if e.Kind == End {
		return gomidi.NoteOff(ch, uint8(e.Pitch))
	}
	return gomidi.NoteOn(ch, uint8(e.Pitch), e.Velocity)
}

// Dispatcher sends chords to whatever sink is currently bound. Each end
// owns its own grace-period timer; a later begin never cancels it.
type Dispatcher struct {
	mu   sync.RWMutex
	sink Sink

	grace    time.Duration
	velocity uint8
	channel  uint8
	log      *zap.Logger
	onError  func(error)

	pendingMu sync.Mutex
	pending   map[uint64]*pendingEnd
	nextID    uint64
}

type pendingEnd struct {
	timer *time.Timer
	sink  Sink
	msgs  []gomidi.Message
}

// New creates a dispatcher with no sink bound
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		velocity: DefaultVelocity,
		log:      zap.NewNop(),
		pending:  make(map[uint64]*pendingEnd),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Bind replaces the output sink. Note-offs already scheduled still go to
// the sink that received their note-ons.
func (d *Dispatcher) Bind(s Sink) {
	d.mu.Lock()
	d.sink = s
	d.mu.Unlock()
}

// Unbind removes the output sink
func (d *Dispatcher) Unbind() {
	d.Bind(nil)
}

// Bound reports whether a sink is bound
func (d *Dispatcher) Bound() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sink != nil
}

func (d *Dispatcher) GracePeriod() time.Duration { return d.grace }

// Events expands a triad into note events
func (d *Dispatcher) Events(t chord.Triad, k Kind) []NoteEvent {
	out := make([]NoteEvent, 0, len(t))
	for _, pitch := range t {
		e := NoteEvent{Pitch: pitch, Kind: k}
		if k == Begin {
			e.Velocity = d.velocity
		}
		out = append(out, e)
	}
	return out
}

// Dispatch sends the note-ons (begin) or note-offs (end) for a triad.
// Without a bound sink it sends nothing and returns ErrNoOutputBound.
// Send failures are reported, never retried.
func (d *Dispatcher) Dispatch(t chord.Triad, k Kind) error {
	d.mu.RLock()
	sink := d.sink
	d.mu.RUnlock()

	if sink == nil {
		d.log.Debug("dispatch skipped", zap.Stringer("kind", k), zap.Ints("pitches", t[:]))
		return ErrNoOutputBound
	}

	var msgs []gomidi.Message
	var errs []error
	for _, e := range d.Events(t, k) {
		if e.Pitch < 0 || e.Pitch > 127 {
			errs = append(errs, fmt.Errorf("%w: %d", ErrPitchOutOfRange, e.Pitch))
			continue
		}
		msgs = append(msgs, e.Message(d.channel))
	}
	if len(errs) > 0 {
		d.log.Warn("pitches skipped", zap.Ints("pitches", t[:]))
	}

	if k == End && d.grace > 0 {
		d.schedule(sink, msgs)
		return errors.Join(errs...)
	}

	d.log.Debug("dispatch", zap.Stringer("kind", k), zap.Ints("pitches", t[:]))
	if err := d.send(sink, msgs); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// schedule sends msgs to sink after the grace period
func (d *Dispatcher) schedule(sink Sink, msgs []gomidi.Message) {
	d.pendingMu.Lock()
	id := d.nextID
	d.nextID++
	pe := &pendingEnd{sink: sink, msgs: msgs}
	d.pending[id] = pe
	// the timer can fire before AfterFunc returns, so it must not touch pe.timer
	pe.timer = time.AfterFunc(d.grace, func() { d.fire(id) })
	d.pendingMu.Unlock()
}

func (d *Dispatcher) take(id uint64) *pendingEnd {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	pe, ok := d.pending[id]
	if !ok {
		return nil
	}
	delete(d.pending, id)
	return pe
}

func (d *Dispatcher) fire(id uint64) {
	pe := d.take(id)
	if pe == nil {
		return // flushed
	}
	if err := d.send(pe.sink, pe.msgs); err != nil {
		d.log.Warn("deferred note-off failed", zap.Error(err))
		if d.onError != nil {
			d.onError(fault.Wrap(err, ftag.With(TagDeferred)))
		}
	}
}

// Pending returns the number of ends still waiting for their grace period
func (d *Dispatcher) Pending() int {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	return len(d.pending)
}

// Flush sends every scheduled note-off now
func (d *Dispatcher) Flush() error {
	d.pendingMu.Lock()
	batch := make([]*pendingEnd, 0, len(d.pending))
	for id, pe := range d.pending {
		if pe.timer != nil {
			pe.timer.Stop()
		}
		batch = append(batch, pe)
		delete(d.pending, id)
	}
	d.pendingMu.Unlock()

	var errs []error
	for _, pe := range batch {
		if err := d.send(pe.sink, pe.msgs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes pending note-offs
func (d *Dispatcher) Close() error {
	return d.Flush()
}

// Panic sends a note-off for every pitch on the channel
func (d *Dispatcher) Panic() error {
	d.mu.RLock()
	sink := d.sink
	d.mu.RUnlock()
	if sink == nil {
		return ErrNoOutputBound
	}

	msgs := make([]gomidi.Message, 0, 128)
	for pitch := 0; pitch < 128; pitch++ {
		msgs = append(msgs, gomidi.NoteOff(d.channel, uint8(pitch)))
	}
	d.log.Info("all notes off", zap.Uint8("channel", d.channel))
	return d.send(sink, msgs)
}

// send attempts every message even after a failure
func (d *Dispatcher) send(sink Sink, msgs []gomidi.Message) error {
	var errs []error
	for _, msg := range msgs {
		if err := sink.Send(msg); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fault.Wrap(errors.Join(errs...),
		fmsg.WithDesc("send to MIDI output", "The MIDI output did not accept the chord - is the device still connected?"),
	)
}
