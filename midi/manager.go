package midi

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"
)

// DeviceManager polls the MIDI driver for output ports and Launchpads and
// reports hot-plug changes. A driver must be registered by the importing
// program (blank import of a gomidi driver package).
type DeviceManager struct {
	mu          sync.RWMutex
	controllers map[string]Controller
	outputs     []string
	senders     map[string]func(gomidi.Message) error

	exclude    []string
	launchpads bool
	events     chan DeviceEvent
	pollRate   time.Duration
	log        *zap.Logger

	listPorts func() ([]drivers.In, []drivers.Out)
}

type ManagerOption func(*DeviceManager)

// WithExcluded hides output ports whose name contains any of the patterns
// (case-insensitive), e.g. "Midi Through".
func WithExcluded(patterns ...string) ManagerOption {
	return func(dm *DeviceManager) { dm.exclude = append(dm.exclude, patterns...) }
}

// WithLaunchpads enables Launchpad detection
func WithLaunchpads(on bool) ManagerOption {
	return func(dm *DeviceManager) { dm.launchpads = on }
}

func WithManagerLogger(l *zap.Logger) ManagerOption {
	return func(dm *DeviceManager) {
		if l != nil {
			dm.log = l
		}
	}
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(opts ...ManagerOption) *DeviceManager {
	dm := &DeviceManager{
		controllers: make(map[string]Controller),
		senders:     make(map[string]func(gomidi.Message) error),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		log:         zap.NewNop(),
		listPorts: func() ([]drivers.In, []drivers.Out) {
			return gomidi.GetInPorts(), gomidi.GetOutPorts()
		},
	}
	for _, opt := range opts {
		opt(dm)
	}
	return dm
}

// Events returns a channel of device events; closed when Run returns
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Outputs returns the output port names seen by the last scan
func (dm *DeviceManager) Outputs() []string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return slices.Clone(dm.outputs)
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	// CoreMIDI can hang while enumerating; skip the scan rather than block
	ch := make(chan portsResult, 1)
	go func() {
		ins, outs := dm.listPorts()
		ch <- portsResult{inPorts: ins, outPorts: outs}
	}()

	var res portsResult
	select {
	case res = <-ch:
	case <-time.After(3 * time.Second):
		dm.log.Warn("port scan timed out")
		return
	}

	names := make([]string, 0, len(res.outPorts))
	for _, p := range res.outPorts {
		names = append(names, p.String())
	}

	var events []DeviceEvent
	if ev, ok := dm.updateOutputs(names); ok {
		events = append(events, ev)
	}
	if dm.launchpads {
		events = append(events, dm.updateLaunchpads(res.inPorts, res.outPorts)...)
	}

	for _, ev := range events {
		dm.log.Debug("device event", zap.Stringer("type", ev.Type), zap.String("id", ev.ID))
		dm.events <- ev
	}
}

// updateOutputs records the playable output names and drops senders of
// vanished ports.
func (dm *DeviceManager) updateOutputs(names []string) (DeviceEvent, bool) {
	names = filterOutputs(names, dm.exclude)

	dm.mu.Lock()
	defer dm.mu.Unlock()
	if slices.Equal(names, dm.outputs) {
		return DeviceEvent{}, false
	}
	for name := range dm.senders {
		if !slices.Contains(names, name) {
			delete(dm.senders, name)
		}
	}
	dm.outputs = names
	return DeviceEvent{Type: OutputsChanged, Outputs: slices.Clone(names)}, true
}

func (dm *DeviceManager) updateLaunchpads(inPorts []drivers.In, outPorts []drivers.Out) []DeviceEvent {
	var events []DeviceEvent
	seenIDs := make(map[string]bool)

	for _, inPort := range inPorts {
		id := inPort.String()
		if !isLaunchpad(id) {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var outPort drivers.Out
		for _, op := range outPorts {
			if samePort(op.String(), id) {
				outPort = op
				break
			}
		}

		lp, err := NewLaunchpadController(id, inPort, outPort, dm.log)
		if err != nil {
			dm.log.Warn("launchpad open failed", zap.String("id", id), zap.Error(err))
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = lp
		dm.mu.Unlock()
		events = append(events, DeviceEvent{Type: DeviceConnected, Controller: lp, ID: id})
	}

	dm.mu.Lock()
	for id, c := range dm.controllers {
		if !seenIDs[id] {
			c.Close()
			delete(dm.controllers, id)
			events = append(events, DeviceEvent{Type: DeviceDisconnected, ID: id})
		}
	}
	dm.mu.Unlock()
	return events
}

// Output returns a sender for the named port, opening it on first use
func (dm *DeviceManager) Output(name string) (func(gomidi.Message) error, error) {
	if name == "" {
		return nil, fmt.Errorf("no output port named")
	}

	dm.mu.RLock()
	if sender, ok := dm.senders[name]; ok {
		dm.mu.RUnlock()
		return sender, nil
	}
	dm.mu.RUnlock()

	dm.mu.Lock()
	defer dm.mu.Unlock()

	// Double-check after acquiring write lock
	if sender, ok := dm.senders[name]; ok {
		return sender, nil
	}

	port, err := gomidi.FindOutPort(name)
	if err != nil {
		return nil, fmt.Errorf("find output %q: %w", name, err)
	}
	sender, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output %q: %w", name, err)
	}
	dm.senders[name] = sender
	return sender, nil
}

// ForgetOutput drops a cached sender so the next Output call reopens it
func (dm *DeviceManager) ForgetOutput(name string) {
	dm.mu.Lock()
	delete(dm.senders, name)
	dm.mu.Unlock()
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// filterOutputs removes Launchpads and excluded ports, keeping order
func filterOutputs(names, exclude []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if isLaunchpad(name) || matchesAny(name, exclude) {
			continue
		}
		out = append(out, name)
	}
	return out
}

func matchesAny(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, pat := range patterns {
		if pat != "" && strings.Contains(lower, strings.ToLower(pat)) {
			return true
		}
	}
	return false
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}

// samePort matches the output half of a device to its input, ignoring the
// " In"/" Out" suffix CoreMIDI adds.
func samePort(out, in string) bool {
	trim := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		s = strings.TrimSuffix(s, " out")
		return strings.TrimSuffix(s, " in")
	}
	return trim(out) == trim(in)
}
