package midi

// DeviceEvent is emitted when ports or controllers come and go
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller // DeviceConnected only
	ID         string
	Outputs    []string // OutputsChanged only: the full current list
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
	OutputsChanged
)

func (t DeviceEventType) String() string {
	switch t {
	case DeviceConnected:
		return "connected"
	case DeviceDisconnected:
		return "disconnected"
	case OutputsChanged:
		return "outputs-changed"
	}
	return "unknown"
}
