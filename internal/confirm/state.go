package confirm

import "fmt"

// State is a dialog lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRequested
	StateOpen
	StateConfirming
	StateResolved
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequested:
		return "requested"
	case StateOpen:
		return "open"
	case StateConfirming:
		return "confirming"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Transition is one allowed edge of the dialog lifecycle.
type Transition struct {
	From State
	To   State
}

// AllTransitions returns every valid lifecycle edge.
func AllTransitions() []Transition {
	return []Transition{
		{From: StateIdle, To: StateRequested},
		{From: StateRequested, To: StateOpen},

		// Open: confirm, cancel, or acknowledge
		{From: StateOpen, To: StateConfirming},
		{From: StateOpen, To: StateClosed},

		// Confirming settles one way or the other
		{From: StateConfirming, To: StateResolved},
		{From: StateConfirming, To: StateFailed},

		{From: StateResolved, To: StateClosed},
		{From: StateFailed, To: StateOpen},

		{From: StateClosed, To: StateIdle},
	}
}

// IsValidTransition reports whether from → to is an allowed edge.
func IsValidTransition(from, to State) bool {
	for _, t := range AllTransitions() {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}

// TransitionError reports an attempted edge that the lifecycle forbids.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid dialog transition %s → %s", e.From, e.To)
}
