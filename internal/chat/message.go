package chat

import (
	"github.com/google/uuid"

	"github.com/strandtools/strand/internal/api"
)

// Lifecycle is the explicit per-message state. Status is never inferred
// from the presence of a server id.
type Lifecycle string

const (
	// LifecyclePending marks an optimistic message whose turn has not
	// completed. Pending messages cannot be edited or deleted.
	LifecyclePending Lifecycle = "pending"

	// LifecycleConfirmed marks a server-committed message.
	LifecycleConfirmed Lifecycle = "confirmed"

	// LifecycleFailed marks a message whose turn failed. It is retained
	// so the user can resend, and can be removed locally.
	LifecycleFailed Lifecycle = "failed"
)

// Message is a cached session message plus its local lifecycle state.
// LocalID identifies the message before (and independent of) the server
// assigning an ID.
type Message struct {
	api.Message
	LocalID string
	State   Lifecycle
}

// newPending wraps an optimistic message with a fresh local id.
func newPending(m api.Message) Message {
	return Message{
		Message: m,
		LocalID: uuid.NewString(),
		State:   LifecyclePending,
	}
}

// confirmed wraps a server-committed message.
func confirmed(m api.Message) Message {
	return Message{
		Message: m,
		LocalID: uuid.NewString(),
		State:   LifecycleConfirmed,
	}
}
