package renderer

// State is the lifecycle stage of a Renderer. Stages only move forward.
type State int

const (
	Uninitialized State = iota
	WindowCreated
	DeviceInitialized
	Running
	Terminated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case WindowCreated:
		return "window-created"
	case DeviceInitialized:
		return "device-initialized"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}
