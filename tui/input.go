package tui

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"camelot/gesture"
	"camelot/midi"
	"camelot/wheel"
)

// mouseAdapter turns terminal mouse events over the wheel into gesture
// inputs. Coordinates are shifted by the wheel's origin on screen.
type mouseAdapter struct {
	originX, originY int
	held             bool
}

func (a *mouseAdapter) handle(msg tea.MouseMsg, hit func(x, y int) (wheel.Position, bool)) (gesture.Input, bool) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return gesture.Input{}, false
		}
		a.held = true
		if p, ok := hit(msg.X-a.originX, msg.Y-a.originY); ok {
			return gesture.Press(p), true
		}
	case tea.MouseActionMotion:
		if !a.held {
			return gesture.Input{}, false
		}
		if p, ok := hit(msg.X-a.originX, msg.Y-a.originY); ok {
			return gesture.Enter(p), true
		}
	case tea.MouseActionRelease:
		// some terminals report releases without the button
		if a.held {
			a.held = false
			return gesture.Release(), true
		}
	}
	return gesture.Input{}, false
}

// padTracker turns Launchpad pad presses into gesture inputs. The first
// held pad presses, further pads slide, and the chord ends when the last
// pad is let go.
type padTracker struct {
	held []wheel.Position
}

func (t *padTracker) handle(ev midi.PadEvent) (gesture.Input, bool) {
	p, ok := midi.PositionAt(ev.Row, ev.Col)
	if !ok {
		return gesture.Input{}, false
	}

	if ev.Pressed() {
		if slices.Contains(t.held, p) {
			return gesture.Input{}, false
		}
		t.held = append(t.held, p)
		if len(t.held) == 1 {
			return gesture.Press(p), true
		}
		return gesture.Enter(p), true
	}

	i := slices.Index(t.held, p)
	if i < 0 {
		return gesture.Input{}, false
	}
	t.held = slices.Delete(t.held, i, i+1)
	if len(t.held) == 0 {
		return gesture.Release(), true
	}
	return gesture.Input{}, false
}

func (t *padTracker) reset() {
	t.held = t.held[:0]
}
