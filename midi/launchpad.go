package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"
)

// LaunchpadController handles a Novation Launchpad X in programmer mode
type LaunchpadController struct {
	id       string
	outPort  drivers.Out
	inPort   drivers.In
	send     func(msg gomidi.Message) error
	stopFunc func()
	log      *zap.Logger

	closeOnce sync.Once
	padChan   chan PadEvent
}

// NewLaunchpadController opens both ports and switches the device to
// programmer mode. outPort may be nil (no LED feedback).
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out, log *zap.Logger) (*LaunchpadController, error) {
	if log == nil {
		log = zap.NewNop()
	}
	lp := &LaunchpadController{
		id:      id,
		inPort:  inPort,
		outPort: outPort,
		log:     log.With(zap.String("launchpad", id)),
		padChan: make(chan PadEvent, 64),
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send

		// F0 00 20 29 02 0C 00 7F F7 - programmer mode
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}))
		// F0 00 20 29 02 0C 08 7F F7 - full brightness
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}))
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, lp.handle)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

// handle turns grid notes into pad presses and releases
func (lp *LaunchpadController) handle(msg gomidi.Message, timestampms int32) {
	var channel, note, velocity uint8
	var ev PadEvent
	switch {
	case msg.GetNoteStart(&channel, &note, &velocity):
		ev.Velocity = velocity
	case msg.GetNoteEnd(&channel, &note):
		ev.Velocity = 0
	default:
		return
	}

	row, col := noteToRowCol(note)
	if row < 0 {
		return
	}
	ev.Row, ev.Col = row, col

	select {
	case lp.padChan <- ev:
	default:
		lp.log.Warn("pad event dropped", zap.Int("row", row), zap.Int("col", col))
	}
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

func (lp *LaunchpadController) Type() ControllerType {
	return ControllerLaunchpad
}

func (lp *LaunchpadController) PadEvents() <-chan PadEvent {
	return lp.padChan
}

// SetLEDBatch sends one NoteOn per update
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}

	for _, u := range updates {
		note := rowColToNote(u.Row, u.Col)
		color := mapRGBToLaunchpad(u.Color)
		if err := lp.send(gomidi.NoteOn(u.Channel, note, color)); err != nil {
			return fmt.Errorf("set LED %d,%d: %w", u.Row, u.Col, err)
		}
	}
	return nil
}

// mapRGBToLaunchpad finds the nearest Launchpad X palette color for an RGB value
func mapRGBToLaunchpad(rgb [3]uint8) uint8 {
	// {velocity, R, G, B}
	palette := [][4]uint8{
		{0, 0, 0, 0},         // off
		{5, 255, 0, 0},       // red
		{9, 255, 100, 0},     // orange
		{13, 255, 200, 0},    // yellow
		{17, 0, 180, 0},      // green
		{19, 0, 100, 0},      // dim green
		{21, 0, 255, 0},      // bright green
		{29, 0, 255, 150},    // mint
		{33, 0, 150, 100},    // dim mint
		{37, 0, 200, 200},    // cyan
		{41, 80, 180, 255},   // sky
		{43, 40, 60, 120},    // dim blue
		{45, 0, 100, 255},    // blue
		{47, 20, 40, 140},    // navy
		{78, 100, 100, 255},  // light blue
		{119, 255, 255, 255}, // white
	}

	bestMatch := uint8(0)
	bestDist := 1 << 30

	r, g, b := int(rgb[0]), int(rgb[1]), int(rgb[2])
	for _, p := range palette {
		dr, dg, db := r-int(p[1]), g-int(p[2]), b-int(p[3])
		if dist := dr*dr + dg*dg + db*db; dist < bestDist {
			bestDist = dist
			bestMatch = p[0]
		}
	}
	return bestMatch
}

// Close clears the grid, stops listening and closes PadEvents
func (lp *LaunchpadController) Close() error {
	lp.closeOnce.Do(func() {
		if lp.send != nil {
			var updates []LEDUpdate
			for row := 0; row < 8; row++ {
				for col := 0; col < 8; col++ {
					updates = append(updates, LEDUpdate{Row: row, Col: col})
				}
			}
			lp.SetLEDBatch(updates)
		}
		if lp.stopFunc != nil {
			lp.stopFunc()
		}
		close(lp.padChan)
	})
	return nil
}

// Launchpad X programmer-mode grid: row 0 (bottom) = notes 11-18,
// row 7 = notes 81-88.

func rowColToNote(row, col int) uint8 {
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row > 7 || col < 0 || col > 7 {
		return -1, -1
	}
	return row, col
}
