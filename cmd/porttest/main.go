package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"camelot/chord"
	"camelot/dispatch"
	cmidi "camelot/midi"
	"camelot/theme"
	"camelot/wheel"
	"camelot/widgets"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		listPorts()
	case "chord":
		err = playChord(os.Args[2:])
	case "poll":
		pollDevices()
	case "pads":
		err = lightPads()
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI port checks")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                         - List all MIDI ports")
	fmt.Println("  chord <pos> [octave] [port]  - Play one wheel triad for 500ms, e.g. chord 8B")
	fmt.Println("  poll                         - Watch for port and Launchpad changes")
	fmt.Println("  pads                         - Show the wheel layout on a Launchpad X")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func playChord(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("chord needs a wheel position")
	}
	pos, err := wheel.ParsePosition(args[0])
	if err != nil {
		return err
	}
	octave := 0
	if len(args) > 1 {
		if octave, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("octave %q: %w", args[1], err)
		}
	}

	var out drivers.Out
	if len(args) > 2 {
		out, err = midi.FindOutPort(args[2])
	} else {
		out, err = firstOutput()
	}
	if err != nil {
		return err
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return fmt.Errorf("open %s: %w", out, err)
	}

	d := dispatch.New()
	d.Bind(dispatch.SinkFunc(send))
	defer d.Close()

	triad := chord.Resolve(pos, octave)
	fmt.Printf("%s -> %s\n", out, widgets.ChordLine(pos, triad))
	if err := d.Dispatch(triad, dispatch.Begin); err != nil {
		return err
	}
	time.Sleep(500 * time.Millisecond)
	return d.Dispatch(triad, dispatch.End)
}

// firstOutput skips virtual through ports and Launchpads
func firstOutput() (drivers.Out, error) {
	for _, p := range midi.GetOutPorts() {
		name := strings.ToLower(p.String())
		if strings.Contains(name, "through") || strings.Contains(name, "launchpad") {
			continue
		}
		return p, nil
	}
	return nil, fmt.Errorf("no MIDI output found")
}

func pollDevices() {
	fmt.Println("Polling for device changes every second...")
	fmt.Println("Connect/disconnect devices to test. Ctrl+C to exit.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dm := cmidi.NewDeviceManager(cmidi.WithExcluded("Midi Through"), cmidi.WithLaunchpads(true))
	go dm.Run(ctx)

	for ev := range dm.Events() {
		fmt.Printf("[%s] %s", time.Now().Format("15:04:05"), ev.Type)
		switch ev.Type {
		case cmidi.OutputsChanged:
			fmt.Printf("  outputs: %v\n", ev.Outputs)
		default:
			fmt.Printf("  %s\n", ev.ID)
		}
	}
}

func lightPads() error {
	var in drivers.In
	for _, p := range midi.GetInPorts() {
		name := strings.ToLower(p.String())
		if strings.Contains(name, "launchpad") && strings.Contains(name, "midi") {
			in = p
			break
		}
	}
	if in == nil {
		return fmt.Errorf("no Launchpad found")
	}
	// LEDs stay dark without the output half, presses still print
	out, _ := midi.FindOutPort(strings.TrimSuffix(in.String(), " In"))

	lp, err := cmidi.NewLaunchpadController(in.String(), in, out, nil)
	if err != nil {
		return err
	}
	defer lp.Close()

	th := theme.New(nil)
	show := func(sounding wheel.Position) error {
		grid := widgets.PadGrid(th, sounding)
		var updates []cmidi.LEDUpdate
		for row := range grid {
			for col := range grid[row] {
				updates = append(updates, cmidi.LEDUpdate{Row: row, Col: col, Color: [3]uint8(grid[row][col])})
			}
		}
		return lp.SetLEDBatch(updates)
	}
	if err := show(0); err != nil {
		return err
	}

	fmt.Println("Press pads to see their wheel position. Press Enter to quit.")
	go func() {
		for ev := range lp.PadEvents() {
			pos, ok := cmidi.PositionAt(ev.Row, ev.Col)
			if !ok || !ev.Pressed() {
				continue
			}
			fmt.Printf("  pad %d,%d -> %s (%s)\n", ev.Row, ev.Col, pos, wheel.Lookup(pos).Name())
			show(pos)
		}
	}()
	fmt.Scanln()
	return nil
}
