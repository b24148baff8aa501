package midi

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerLaunchpad
)

// PadEvent is sent when a pad on a grid controller is pressed or released.
// Velocity is 0 on release.
type PadEvent struct {
	Row, Col int
	Velocity uint8
}

func (e PadEvent) Pressed() bool { return e.Velocity > 0 }

// LEDUpdate sets one pad colour
type LEDUpdate struct {
	Row, Col int
	Color    [3]uint8 // RGB - controller maps to its palette
	Channel  uint8    // ChannelStatic, ChannelFlash or ChannelPulse
}

// Controller is a grid surface used as a second gesture input
type Controller interface {
	ID() string
	Type() ControllerType

	// Input events from the controller; closed by Close
	PadEvents() <-chan PadEvent

	// Output to the controller
	SetLEDBatch(updates []LEDUpdate) error

	// Lifecycle
	Close() error
}

// Channel modes for LEDUpdate
const (
	ChannelStatic uint8 = 0 // solid color
	ChannelFlash  uint8 = 1 // flashing A/B alternating
	ChannelPulse  uint8 = 2 // pulsing (fades)
)
