package dispatch

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithGracePeriod delays the note-offs of every end by d. Zero sends them
// immediately.
func WithGracePeriod(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.grace = d
		}
	}
}

// WithVelocity sets the note-on velocity (1-127)
func WithVelocity(v uint8) Option {
	return func(disp *Dispatcher) {
		if v > 0 && v <= 127 {
			disp.velocity = v
		}
	}
}

// WithChannel sets the MIDI channel (0-15)
func WithChannel(ch uint8) Option {
	return func(disp *Dispatcher) {
		if ch < 16 {
			disp.channel = ch
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(l *zap.Logger) Option {
	return func(disp *Dispatcher) {
		if l != nil {
			disp.log = l
		}
	}
}

// WithErrorHandler receives failures of note-offs sent after a grace
// period, which have no caller left to return to. It is called from the
// timer goroutine.
func WithErrorHandler(fn func(error)) Option {
	return func(disp *Dispatcher) {
		disp.onError = fn
	}
}
