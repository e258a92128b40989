package chat

// State is the store's per-conversation lifecycle.
type State string

const (
	// StateNoSession means no conversation is selected.
	StateNoSession State = "no_session"

	// StateSessionSelected means a conversation is selected but its
	// messages have not been loaded.
	StateSessionSelected State = "session_selected"

	// StateMessagesLoaded means the history is loaded and the session
	// is interactive.
	StateMessagesLoaded State = "messages_loaded"

	// StateAwaitingStream means a send is in flight for the active
	// session.
	StateAwaitingStream State = "awaiting_stream"
)

// Valid state transitions.
var validTransitions = map[State][]State{
	StateNoSession:       {StateSessionSelected},
	StateSessionSelected: {StateMessagesLoaded, StateSessionSelected, StateNoSession},
	StateMessagesLoaded:  {StateAwaitingStream, StateSessionSelected, StateNoSession},
	StateAwaitingStream:  {StateMessagesLoaded, StateSessionSelected, StateNoSession},
}

// canTransition checks if moving from to next is allowed.
func canTransition(from, next State) bool {
	for _, s := range validTransitions[from] {
		if s == next {
			return true
		}
	}
	return false
}
