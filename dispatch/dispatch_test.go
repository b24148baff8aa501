package dispatch_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Southclaws/fault/ftag"
	gomidi "gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"camelot/chord"
	"camelot/dispatch"
)

var cMajor = chord.Triad{60, 64, 67}

type sent struct {
	on       bool
	channel  uint8
	key      uint8
	velocity uint8
}

// recorder is a Sink that remembers decoded note messages
type recorder struct {
	mu   sync.Mutex
	msgs []sent
	fail error
	got  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{got: make(chan struct{}, 256)}
}

func (r *recorder) Send(msg gomidi.Message) error {
	var ch, key, vel uint8
	var s sent
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		s = sent{on: true, channel: ch, key: key, velocity: vel}
	case msg.GetNoteOff(&ch, &key, &vel):
		s = sent{on: false, channel: ch, key: key, velocity: vel}
	}
	r.mu.Lock()
	r.msgs = append(r.msgs, s)
	fail := r.fail
	r.mu.Unlock()
	r.got <- struct{}{}
	return fail
}

func (r *recorder) snapshot() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sent(nil), r.msgs...)
}

func (r *recorder) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.got:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d of %d", i+1, n)
		}
	}
}

func TestBeginSendsNoteOns(t *testing.T) {
	rec := newRecorder()
	d := dispatch.New(dispatch.WithChannel(2))
	d.Bind(rec)

	if err := d.Dispatch(cMajor, dispatch.Begin); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	got := rec.snapshot()
	if len(got) != 3 {
		t.Fatalf("sent %d messages, want 3", len(got))
	}
	for i, s := range got {
		if !s.on || s.key != uint8(cMajor[i]) || s.velocity != dispatch.DefaultVelocity || s.channel != 2 {
			t.Errorf("message %d = %+v, want note-on %d vel 127 ch 2", i, s, cMajor[i])
		}
	}
}

func TestEndWithoutGraceIsImmediate(t *testing.T) {
	rec := newRecorder()
	d := dispatch.New()
	d.Bind(rec)

	if err := d.Dispatch(cMajor, dispatch.End); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	got := rec.snapshot()
	if len(got) != 3 {
		t.Fatalf("sent %d messages, want 3", len(got))
	}
	for i, s := range got {
		if s.on || s.key != uint8(cMajor[i]) {
			t.Errorf("message %d = %+v, want note-off %d", i, s, cMajor[i])
		}
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", d.Pending())
	}
}

func TestNoOutputBound(t *testing.T) {
	d := dispatch.New()
	for _, k := range []dispatch.Kind{dispatch.Begin, dispatch.End} {
		if err := d.Dispatch(cMajor, k); !errors.Is(err, dispatch.ErrNoOutputBound) {
			t.Errorf("Dispatch(%v) error = %v, want ErrNoOutputBound", k, err)
		}
	}
	if d.Bound() {
		t.Error("Bound() = true with no sink")
	}

	rec := newRecorder()
	d.Bind(rec)
	d.Unbind()
	if err := d.Dispatch(cMajor, dispatch.Begin); !errors.Is(err, dispatch.ErrNoOutputBound) {
		t.Errorf("after Unbind error = %v, want ErrNoOutputBound", err)
	}
	if n := len(rec.snapshot()); n != 0 {
		t.Errorf("unbound sink received %d messages", n)
	}
}

func TestGracePeriodDefersNoteOffs(t *testing.T) {
	rec := newRecorder()
	d := dispatch.New(dispatch.WithGracePeriod(20 * time.Millisecond))
	d.Bind(rec)

	if err := d.Dispatch(cMajor, dispatch.End); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if n := len(rec.snapshot()); n != 0 {
		t.Fatalf("%d note-offs sent before the grace period", n)
	}
	rec.wait(t, 3)
	for _, s := range rec.snapshot() {
		if s.on {
			t.Errorf("unexpected note-on %+v", s)
		}
	}
}

func TestEachEndOwnsItsTimer(t *testing.T) {
	rec := newRecorder()
	d := dispatch.New(dispatch.WithGracePeriod(20 * time.Millisecond))
	d.Bind(rec)

	aMinor := chord.Triad{69, 72, 76}
	d.Dispatch(cMajor, dispatch.End)
	d.Dispatch(aMinor, dispatch.End)
	d.Dispatch(aMinor, dispatch.Begin) // a new begin must not cancel pending ends

	rec.wait(t, 9)
	offs := map[uint8]int{}
	for _, s := range rec.snapshot() {
		if !s.on {
			offs[s.key]++
		}
	}
	for _, p := range append(cMajor[:], aMinor[:]...) {
		if offs[uint8(p)] != 1 {
			t.Errorf("pitch %d got %d note-offs, want 1", p, offs[uint8(p)])
		}
	}
}

func TestRebindKeepsScheduledSink(t *testing.T) {
	first, second := newRecorder(), newRecorder()
	d := dispatch.New(dispatch.WithGracePeriod(10 * time.Millisecond))
	d.Bind(first)
	d.Dispatch(cMajor, dispatch.End)
	d.Bind(second)

	first.wait(t, 3)
	if n := len(second.snapshot()); n != 0 {
		t.Errorf("new sink received %d messages of an old chord", n)
	}
}

func TestFlushSendsPendingOnce(t *testing.T) {
	rec := newRecorder()
	d := dispatch.New(dispatch.WithGracePeriod(time.Hour))
	d.Bind(rec)

	d.Dispatch(cMajor, dispatch.End)
	if d.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", d.Pending())
	}
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := len(rec.snapshot()); n != 3 {
		t.Errorf("sent %d messages, want 3", n)
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d after Flush", d.Pending())
	}
}

func TestSendFailureIsReported(t *testing.T) {
	rec := newRecorder()
	rec.fail = errors.New("device gone")
	d := dispatch.New()
	d.Bind(rec)

	err := d.Dispatch(cMajor, dispatch.Begin)
	if err == nil {
		t.Fatal("expected an error from a failing sink")
	}
	if errors.Is(err, dispatch.ErrNoOutputBound) {
		t.Error("send failure reported as ErrNoOutputBound")
	}
	if n := len(rec.snapshot()); n != 3 {
		t.Errorf("attempted %d sends, want all 3", n)
	}
}

func TestDeferredFailureGoesToHandler(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	errc := make(chan error, 1)

	rec := newRecorder()
	rec.fail = errors.New("device gone")
	d := dispatch.New(
		dispatch.WithGracePeriod(5*time.Millisecond),
		dispatch.WithLogger(zap.New(core)),
		dispatch.WithErrorHandler(func(err error) { errc <- err }),
	)
	d.Bind(rec)

	if err := d.Dispatch(cMajor, dispatch.End); err != nil {
		t.Fatalf("scheduling an end should not fail: %v", err)
	}
	select {
	case err := <-errc:
		if err == nil {
			t.Fatal("handler got nil error")
		}
		if ftag.Get(err) != dispatch.TagDeferred {
			t.Errorf("tag = %q, want %q", ftag.Get(err), dispatch.TagDeferred)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error handler not called")
	}
	if logs.FilterMessage("deferred note-off failed").Len() != 1 {
		t.Errorf("expected one warning log, got %v", logs.All())
	}
}

func TestOutOfRangePitchesAreSkipped(t *testing.T) {
	rec := newRecorder()
	d := dispatch.New()
	d.Bind(rec)

	err := d.Dispatch(chord.Triad{120, 124, 130}, dispatch.Begin)
	if !errors.Is(err, dispatch.ErrPitchOutOfRange) {
		t.Fatalf("error = %v, want ErrPitchOutOfRange", err)
	}
	if n := len(rec.snapshot()); n != 2 {
		t.Errorf("sent %d messages, want 2", n)
	}
}

func TestPanicSendsAllNotesOff(t *testing.T) {
	rec := newRecorder()
	d := dispatch.New()
	if err := d.Panic(); !errors.Is(err, dispatch.ErrNoOutputBound) {
		t.Errorf("Panic() unbound error = %v", err)
	}
	d.Bind(rec)
	if err := d.Panic(); err != nil {
		t.Fatalf("Panic: %v", err)
	}
	if n := len(rec.snapshot()); n != 128 {
		t.Errorf("sent %d note-offs, want 128", n)
	}
}

func TestVelocityOption(t *testing.T) {
	d := dispatch.New(dispatch.WithVelocity(90))
	for _, e := range d.Events(cMajor, dispatch.Begin) {
		if e.Velocity != 90 {
			t.Errorf("velocity = %d, want 90", e.Velocity)
		}
	}
	for _, e := range d.Events(cMajor, dispatch.End) {
		if e.Velocity != 0 {
			t.Errorf("note-off velocity = %d, want 0", e.Velocity)
		}
	}
}
