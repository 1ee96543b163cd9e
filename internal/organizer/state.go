package organizer

// State is the organizer's position in a run.
type State int32

const (
	StateIdle State = iota
	StateBackingUp
	StateClassifying
	StatePreviewing
	StateMoving
	StateReporting
	StateRestoring
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBackingUp:
		return "backing_up"
	case StateClassifying:
		return "classifying"
	case StatePreviewing:
		return "previewing"
	case StateMoving:
		return "moving"
	case StateReporting:
		return "reporting"
	case StateRestoring:
		return "restoring"
	default:
		return "unknown"
	}
}
