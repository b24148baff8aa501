package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.uber.org/zap"

	"camelot/config"
	"camelot/debug"
	"camelot/dispatch"
	"camelot/midi"
	"camelot/session"
	"camelot/theme"
	"camelot/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/camelot/config.json)")
	debugLog := flag.Bool("debug", false, "write a debug log to ~/.config/camelot/debug.log")
	port := flag.String("port", "", "MIDI output port (overrides config)")
	flag.Parse()

	if *debugLog {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
		defer debug.Disable()
	}
	log := debug.Logger()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.OutputPort = *port
	}

	save := func(c *config.Config) error { return c.Save() }
	if *configPath != "" {
		save = func(c *config.Config) error { return c.SaveTo(*configPath) }
	}

	th := theme.New(nil)
	if cfg.Palette != "" {
		palette, err := theme.LoadGPL(cfg.Palette)
		if err != nil {
			fmt.Fprintf(os.Stderr, "palette: %v (using default)\n", err)
		} else {
			th = theme.New(palette)
		}
	}

	errs := make(chan error, 8)
	d := dispatch.New(
		dispatch.WithGracePeriod(cfg.GracePeriod()),
		dispatch.WithVelocity(cfg.Velocity),
		dispatch.WithChannel(cfg.Channel),
		dispatch.WithLogger(log.Named("dispatch")),
		dispatch.WithErrorHandler(func(err error) {
			select {
			case errs <- err:
			default:
			}
		}),
	)
	sess := session.New(d,
		session.WithOctave(cfg.Octave),
		session.WithLogger(log.Named("session")),
		session.WithOnChange(func(s session.Snapshot) {
			log.Debug("state", zap.Stringer("state", s.State), zap.Int("octave", s.Octave))
		}),
	)

	// Create MIDI device manager (handles hot-plug)
	deviceMgr := midi.NewDeviceManager(
		midi.WithExcluded(cfg.ExcludePorts...),
		midi.WithLaunchpads(cfg.Launchpad),
		midi.WithManagerLogger(log.Named("midi")),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deviceMgr.Run(ctx)

	m := tui.NewModel(tui.Options{
		Config:     cfg,
		Save:       save,
		Session:    sess,
		Dispatcher: d,
		Devices:    deviceMgr,
		Theme:      th,
		Errors:     errs,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	_, runErr := p.Run()

	// no note may outlive the program
	if err := d.Close(); err != nil {
		log.Warn("flush note-offs", zap.Error(err))
	}
	if runErr != nil {
		fmt.Printf("Error: %v\n", runErr)
		os.Exit(1)
	}
}
