package tui

import (
	"github.com/strandtools/strand/internal/api"
	"github.com/strandtools/strand/internal/chat"
)

// storeEventMsg wraps an event emitted by the chat store. Exactly one of
// the fields is set.
type storeEventMsg struct {
	content *chat.ContentEvent
	plan    *chat.PlanEvent
	turn    *chat.TurnEvent
}

// sessionsLoadedMsg is delivered after the session list has been fetched.
type sessionsLoadedMsg struct {
	err error
}

// sessionSelectedMsg is delivered after a session's messages have been
// loaded and the session made active.
type sessionSelectedMsg struct {
	session api.Session
	err     error
}

// sessionCreatedMsg is delivered after a new session has been created.
type sessionCreatedMsg struct {
	session api.Session
	err     error
}

// sessionRenamedMsg reports the outcome of a rename.
type sessionRenamedMsg struct {
	err error
}

// sessionDeletedMsg reports the outcome of a delete.
type sessionDeletedMsg struct {
	err error
}

// sendDoneMsg is delivered when a streamed turn finishes, successfully or
// not. The store has already emitted the turn outcome as a TurnEvent; this
// message only unblocks input handling.
type sendDoneMsg struct {
	err error
}

// confirmDoneMsg reports the outcome of a plan confirmation.
type confirmDoneMsg struct {
	analysisID string
	err        error
}

// editDoneMsg reports the outcome of a message edit.
type editDoneMsg struct {
	err error
}

// statusClearMsg clears a transient status line.
type statusClearMsg struct{}
