package session_test

import (
	"errors"
	"reflect"
	"testing"

	"camelot/chord"
	"camelot/dispatch"
	"camelot/gesture"
	"camelot/session"
	"camelot/wheel"
)

type call struct {
	triad chord.Triad
	kind  gesture.Kind
}

type fakeDispatcher struct {
	calls []call
	err   error
}

func (f *fakeDispatcher) Dispatch(t chord.Triad, k gesture.Kind) error {
	f.calls = append(f.calls, call{t, k})
	return f.err
}

var (
	cMaj = wheel.MustParse("8B")
	gMaj = wheel.MustParse("9B")
)

func TestSlideDispatchesInOrder(t *testing.T) {
	fd := &fakeDispatcher{}
	s := session.New(fd)

	s.Press(cMaj)
	s.Enter(gMaj)
	s.Release()

	want := []call{
		{chord.Triad{60, 64, 67}, gesture.Begin},
		{chord.Triad{60, 64, 67}, gesture.End},
		{chord.Triad{67, 71, 74}, gesture.Begin},
		{chord.Triad{67, 71, 74}, gesture.End},
	}
	if !reflect.DeepEqual(fd.calls, want) {
		t.Errorf("calls = %v, want %v", fd.calls, want)
	}
	if !s.State().IsIdle() {
		t.Errorf("state = %v, want Idle", s.State())
	}
}

func TestOctaveChangeIsNotRetroactive(t *testing.T) {
	fd := &fakeDispatcher{}
	s := session.New(fd)

	s.Press(cMaj)
	s.ShiftOctave(1)
	if _, tr, _ := s.Sounding(); tr != (chord.Triad{60, 64, 67}) {
		t.Errorf("sounding triad changed to %v", tr)
	}
	s.Release()
	s.Press(cMaj)

	if got := fd.calls[1]; got.kind != gesture.End || got.triad != (chord.Triad{60, 64, 67}) {
		t.Errorf("end = %v, want the begin-time triad", got)
	}
	if got := fd.calls[2].triad; got != (chord.Triad{72, 76, 79}) {
		t.Errorf("next begin = %v, want shifted triad", got)
	}
}

func TestIdempotentReentry(t *testing.T) {
	fd := &fakeDispatcher{}
	s := session.New(fd)
	s.Press(cMaj)
	s.Enter(cMaj)
	if len(fd.calls) != 1 {
		t.Errorf("got %d dispatches, want 1", len(fd.calls))
	}
}

func TestStateAdvancesWithoutOutput(t *testing.T) {
	d := dispatch.New()
	s := session.New(d)

	if err := s.Press(cMaj); !errors.Is(err, dispatch.ErrNoOutputBound) {
		t.Fatalf("Press error = %v, want ErrNoOutputBound", err)
	}
	if p, ok := s.State().Position(); !ok || p != cMaj {
		t.Fatalf("state = %v, want Sounding(8B)", s.State())
	}
	if err := s.Enter(gMaj); !errors.Is(err, dispatch.ErrNoOutputBound) {
		t.Fatalf("Enter error = %v", err)
	}
	if err := s.Release(); !errors.Is(err, dispatch.ErrNoOutputBound) {
		t.Fatalf("Release error = %v", err)
	}
	if !s.State().IsIdle() {
		t.Errorf("state = %v, want Idle", s.State())
	}
	if err := s.Release(); err != nil {
		t.Errorf("spurious release returned %v", err)
	}
}

func TestSendErrorsDoNotCorruptState(t *testing.T) {
	fd := &fakeDispatcher{err: errors.New("unplugged")}
	s := session.New(fd)
	if err := s.Press(cMaj); err == nil {
		t.Fatal("expected dispatch error")
	}
	if err := s.Enter(gMaj); err == nil {
		t.Fatal("expected dispatch error")
	}
	if p, ok := s.State().Position(); !ok || p != gMaj {
		t.Errorf("state = %v, want Sounding(9B)", s.State())
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	a, b := session.New(&fakeDispatcher{}), session.New(&fakeDispatcher{})
	a.Press(cMaj)
	a.ShiftOctave(2)
	if !b.State().IsIdle() || b.Octave() != 0 {
		t.Errorf("second session affected: %v octave %d", b.State(), b.Octave())
	}
}

func TestOctaveClamp(t *testing.T) {
	s := session.New(&fakeDispatcher{}, session.WithOctave(10))
	if s.Octave() != session.MaxOctave {
		t.Errorf("Octave() = %d, want %d", s.Octave(), session.MaxOctave)
	}
	s.SetOctave(-10)
	if s.Octave() != session.MinOctave {
		t.Errorf("Octave() = %d, want %d", s.Octave(), session.MinOctave)
	}
	for _, p := range wheel.All() {
		for _, n := range []int{session.MinOctave, session.MaxOctave} {
			if tr := chord.Resolve(p, n); !tr.InRange() {
				t.Errorf("Resolve(%v, %d) = %v out of range", p, n, tr)
			}
		}
	}
}

func TestOnChange(t *testing.T) {
	var snaps []session.Snapshot
	s := session.New(&fakeDispatcher{}, session.WithOnChange(func(snap session.Snapshot) {
		snaps = append(snaps, snap)
	}))

	s.Press(cMaj)
	s.Enter(cMaj) // no change
	s.ShiftOctave(1)
	s.Release()
	s.Release() // no change

	if len(snaps) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(snaps))
	}
	if snaps[0].State != gesture.Sounding(cMaj) || snaps[0].Triad != (chord.Triad{60, 64, 67}) {
		t.Errorf("first snapshot = %+v", snaps[0])
	}
	if snaps[1].Octave != 1 {
		t.Errorf("octave snapshot = %+v", snaps[1])
	}
	if !snaps[2].State.IsIdle() {
		t.Errorf("last snapshot = %+v", snaps[2])
	}
}
