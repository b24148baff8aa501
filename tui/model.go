package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	gomidi "gitlab.com/gomidi/midi/v2"

	"camelot/config"
	"camelot/debug"
	"camelot/dispatch"
	"camelot/gesture"
	"camelot/midi"
	"camelot/session"
	"camelot/theme"
	"camelot/widgets"
)

// Screen position of the wheel: one blank line, the header, another blank
// line, and a two column margin.
const (
	wheelLeft = 2
	wheelTop  = 3
)

// Devices is the part of midi.DeviceManager the UI needs
type Devices interface {
	Events() <-chan midi.DeviceEvent
	Output(name string) (func(gomidi.Message) error, error)
	ForgetOutput(name string)
}

type Options struct {
	Config     *config.Config
	Save       func(*config.Config) error // nil: settings are not persisted
	Session    *session.Session
	Dispatcher *dispatch.Dispatcher
	Devices    Devices
	Theme      *theme.Theme
	Errors     <-chan error // deferred dispatcher failures
}

type Model struct {
	cfg      *config.Config
	save     func(*config.Config) error
	session  *session.Session
	dispatch *dispatch.Dispatcher
	devices  Devices
	theme    *theme.Theme
	errs     <-chan error

	wheel *widgets.Wheel
	piano *widgets.Piano
	pads  *widgets.Pads
	keys  keyMap
	help  help.Model

	mouse   *mouseAdapter
	padHeld *padTracker

	outputs    []string
	output     string
	controller midi.Controller
	leds       [8][8]theme.RGB
	ledsValid  bool

	status    string
	statusErr bool
	quitting  bool
}

type DeviceEventMsg midi.DeviceEvent

type padMsg struct {
	id string
	ev midi.PadEvent
}

type errMsg struct{ err error }

func NewModel(o Options) Model {
	return Model{
		cfg:      o.Config,
		save:     o.Save,
		session:  o.Session,
		dispatch: o.Dispatcher,
		devices:  o.Devices,
		theme:    o.Theme,
		errs:     o.Errors,
		wheel:    widgets.NewWheel(o.Theme),
		piano:    widgets.NewPiano(o.Theme),
		pads:     widgets.NewPads(o.Theme),
		keys:     defaultKeyMap(),
		help:     help.New(),
		mouse:    &mouseAdapter{originX: wheelLeft, originY: wheelTop},
		padHeld:  &padTracker{},
	}
}

func ListenForDevices(devices Devices) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-devices.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func listenForPads(c midi.Controller) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-c.PadEvents()
		if !ok {
			return nil
		}
		return padMsg{id: c.ID(), ev: ev}
	}
}

func listenForErrors(errs <-chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-errs
		if !ok {
			return nil
		}
		return errMsg{err}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForDevices(m.devices)}
	if m.errs != nil {
		cmds = append(cmds, listenForErrors(m.errs))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if err := m.session.Release(); err != nil {
				debug.Log("tui", "release on quit: %v", err)
			}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.OctaveUp):
			m.shiftOctave(1)

		case key.Matches(msg, m.keys.OctaveDown):
			m.shiftOctave(-1)

		case key.Matches(msg, m.keys.Notation):
			if m.cfg.Notation == config.NotationMusical {
				m.cfg.Notation = config.NotationCamelot
			} else {
				m.cfg.Notation = config.NotationMusical
			}
			m.persist()

		case key.Matches(msg, m.keys.Output):
			m.cycleOutput()

		case key.Matches(msg, m.keys.AllOff):
			if err := m.dispatch.Panic(); err != nil {
				m.report(err)
			} else {
				m.setStatus("all notes off")
			}

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.MouseMsg:
		if in, ok := m.mouse.handle(msg, m.wheel.HitTest); ok {
			m.apply(in)
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case DeviceEventMsg:
		cmd = tea.Batch(m.handleDevice(midi.DeviceEvent(msg)), ListenForDevices(m.devices))

	case padMsg:
		if m.controller == nil || m.controller.ID() != msg.id {
			break // stale listener of an unplugged device
		}
		if in, ok := m.padHeld.handle(msg.ev); ok {
			m.apply(in)
		}
		cmd = listenForPads(m.controller)

	case errMsg:
		m.report(msg.err)
		cmd = listenForErrors(m.errs)
	}

	m.refreshLEDs()
	return m, cmd
}

func (m *Model) apply(in gesture.Input) {
	err := m.session.Apply(in)
	if err != nil {
		m.report(err)
		return
	}
	if in.Signal == gesture.SignalPress && m.statusErr {
		m.setStatus("")
	}
}

func (m *Model) shiftOctave(delta int) {
	m.session.ShiftOctave(delta)
	m.cfg.Octave = m.session.Octave()
	m.setStatus(fmt.Sprintf("octave %+d", m.cfg.Octave))
	m.persist()
}

func (m *Model) handleDevice(ev midi.DeviceEvent) tea.Cmd {
	debug.Log("devices", "%s %s", ev.Type, ev.ID)

	switch ev.Type {
	case midi.OutputsChanged:
		m.outputs = ev.Outputs
		if m.output != "" && !slices.Contains(m.outputs, m.output) {
			m.dispatch.Unbind()
			m.setStatus("output " + m.output + " disconnected")
			m.output = ""
		}
		if m.output == "" && len(m.outputs) > 0 {
			name := m.outputs[0]
			if slices.Contains(m.outputs, m.cfg.OutputPort) {
				name = m.cfg.OutputPort
			}
			m.bind(name)
		}

	case midi.DeviceConnected:
		if m.controller != nil {
			return nil
		}
		m.controller = ev.Controller
		m.ledsValid = false
		m.padHeld.reset()
		m.setStatus("launchpad connected")
		return listenForPads(ev.Controller)

	case midi.DeviceDisconnected:
		if m.controller == nil || m.controller.ID() != ev.ID {
			return nil
		}
		m.controller = nil
		if len(m.padHeld.held) > 0 {
			m.padHeld.reset()
			m.apply(gesture.Release())
		}
		m.setStatus("launchpad disconnected")
	}
	return nil
}

func (m *Model) bind(name string) {
	sender, err := m.devices.Output(name)
	if err != nil {
		m.devices.ForgetOutput(name)
		m.report(err)
		return
	}
	m.dispatch.Bind(dispatch.SinkFunc(sender))
	m.output = name
	m.setStatus("output " + name)
}

func (m *Model) cycleOutput() {
	if len(m.outputs) == 0 {
		m.setError("no MIDI outputs found")
		return
	}

	// end the chord on the port it started on
	if _, _, sounding := m.session.Sounding(); sounding {
		m.padHeld.reset()
		if err := m.session.Release(); err != nil {
			m.report(err)
		}
	}

	next := m.outputs[(slices.Index(m.outputs, m.output)+1)%len(m.outputs)]
	m.bind(next)
	if m.output == next {
		m.cfg.OutputPort = next
		m.persist()
	}
}

func (m *Model) persist() {
	if m.save == nil {
		return
	}
	if err := m.save(m.cfg); err != nil {
		m.report(err)
	}
}

func (m *Model) refreshLEDs() {
	if m.controller == nil {
		return
	}
	p, _, _ := m.session.Sounding()
	grid := widgets.PadGrid(m.theme, p)

	var updates []midi.LEDUpdate
	for row := range grid {
		for col := range grid[row] {
			if m.ledsValid && grid[row][col] == m.leds[row][col] {
				continue
			}
			updates = append(updates, midi.LEDUpdate{Row: row, Col: col, Color: [3]uint8(grid[row][col])})
		}
	}
	if err := m.controller.SetLEDBatch(updates); err != nil {
		debug.Log("launchpad", "LED update: %v", err)
		return
	}
	m.leds = grid
	m.ledsValid = true
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m *Model) report(err error) {
	debug.Log("tui", "error: %v", err)
	m.setError(describe(err))
}

// describe turns an engine error into one status line
func describe(err error) string {
	if errors.Is(err, dispatch.ErrNoOutputBound) {
		return "no MIDI output - press o to choose one"
	}
	msg := fmsg.GetIssue(err)
	if msg == "" {
		msg = err.Error()
	}
	if ftag.Get(err) == dispatch.TagDeferred {
		msg = "note-off failed: " + msg
	}
	return msg
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	th := m.theme
	headerStyle := lipgloss.NewStyle().Foreground(th.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	musical := m.cfg.Notation == config.NotationMusical

	output := m.output
	if output == "" {
		output = "none"
	}
	header := headerStyle.Render(fmt.Sprintf("camelot  out: %s  octave: %+d  labels: %s",
		output, m.session.Octave(), m.cfg.Notation))

	p, triad, sounding := m.session.Sounding()

	wheelView := lipgloss.NewStyle().PaddingLeft(wheelLeft).Render(m.wheel.View(p, musical))
	var padsView string
	if m.controller != nil {
		padsView = m.pads.View(p, m.controller.ID())
	} else {
		padsView = m.pads.View(p, "")
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, wheelView, "    ", padsView)

	chordLine := dimStyle.Render("press a key on the wheel")
	var lit []int
	if sounding {
		chordLine = lipgloss.NewStyle().Foreground(th.FG()).Render(widgets.ChordLine(p, triad))
		lit = triad[:]
	}

	status := dimStyle.Render(m.status)
	if m.statusErr {
		status = lipgloss.NewStyle().Foreground(th.Warning()).Render(m.status)
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(body)
	out.WriteString("\n\n  ")
	out.WriteString(chordLine)
	out.WriteString("\n  ")
	out.WriteString(m.piano.View(lit))
	out.WriteString("\n\n  ")
	out.WriteString(status)
	out.WriteString("\n  ")
	out.WriteString(m.help.View(m.keys))
	return out.String()
}
