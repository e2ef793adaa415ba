package domain

// ControllerState is the connectivity state of a controller as reported
// by the owning transport.
type ControllerState int

const (
	StateNew ControllerState = iota
	StateLive
	StateResetting
	StateConnecting
	StateDeleting
	StateDead
)

// String returns the string representation of ControllerState.
func (s ControllerState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateLive:
		return "live"
	case StateResetting:
		return "resetting"
	case StateConnecting:
		return "connecting"
	case StateDeleting:
		return "deleting"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}
