package session

// State is the lifecycle state of a Session.
type State string

const (
	// StateClosed is the initial state; no source is open.
	StateClosed State = "CLOSED"
	// StateOpened means a source is open and an engine handle is held.
	StateOpened State = "OPENED"
	// StateReleased is terminal; the engine handle has been released.
	StateReleased State = "RELEASED"
)

// validTransitions defines which state transitions are allowed.
var validTransitions = map[State][]State{
	StateClosed:   {StateOpened, StateReleased},
	StateOpened:   {StateReleased},
	StateReleased: {},
}

// canTransition checks if a transition from one state to another is valid.
func canTransition(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
