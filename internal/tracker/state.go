package tracker

// State represents the accrual engine's finite-state machine state.
type State string

const (
	// StateIdle indicates that no activity is being tracked.
	StateIdle State = "idle"
	// StateTracking indicates that the periodic tick is accruing calories.
	StateTracking State = "tracking"
)

var validTransitions = map[State][]State{
	StateIdle: {
		StateTracking,
	},
	StateTracking: {
		StateIdle,
	},
}

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe
// tracker state transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

// IsTransitionAllowed reports whether moving from one state to another is valid.
func IsTransitionAllowed(from, to State) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}
