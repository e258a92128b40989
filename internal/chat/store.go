// Package chat owns the conversational plan pipeline: the session
// store and message cache, the streaming turn runner, and plan
// confirmation dispatch.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/strandtools/strand/internal/api"
	"github.com/strandtools/strand/internal/event"
	"github.com/strandtools/strand/internal/plan"
	"github.com/strandtools/strand/internal/stream"
)

// Errors returned by store operations.
var (
	ErrNoSession           = errors.New("chat: no session selected")
	ErrSessionNotFound     = errors.New("chat: session not found")
	ErrStreamInFlight      = errors.New("chat: a stream is already in flight for this session")
	ErrConfirmInFlight     = errors.New("chat: a plan confirmation is already in flight")
	ErrMessagesNotLoaded   = errors.New("chat: messages not loaded")
	ErrMessageNotCommitted = errors.New("chat: message is not committed")
	ErrMessageNotFound     = errors.New("chat: message not found")
	ErrStreamEnded         = errors.New("chat: stream ended before completion")
)

// StreamError is a server-reported failure envelope.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("chat: stream error: %s", e.Message)
}

// Backend is the slice of the API client the store needs. api.Client
// satisfies it; tests substitute fakes.
type Backend interface {
	StartStream(ctx context.Context, projectID string, req api.StreamRequest) (io.ReadCloser, error)
	ConfirmPlan(ctx context.Context, projectID, sessionID, planData string) (*api.ConfirmResponse, error)

	ListSessions(ctx context.Context, projectID string) ([]api.Session, error)
	CreateSession(ctx context.Context, projectID, title string) (*api.Session, error)
	RenameSession(ctx context.Context, sessionID, title string) error
	DeleteSession(ctx context.Context, sessionID string) error

	ListMessages(ctx context.Context, sessionID string) ([]api.Message, error)
	UpdateMessage(ctx context.Context, messageID, content string) error
	DeleteMessage(ctx context.Context, messageID string) error
}

// ContentEvent is published on every token while a turn streams.
// Active false clears the observable.
type ContentEvent struct {
	SessionID string
	Content   string // full accumulated text
	Active    bool
}

// PlanEvent is published when a plan envelope arrives mid-turn, so a
// plan card can render before the turn completes. Plan is nil when the
// payload doesn't parse. Active false clears the observable.
type PlanEvent struct {
	SessionID string
	PlanData  string
	Plan      *plan.Plan
	Active    bool
}

// TurnEvent reports a completed or failed turn. On success Message is
// the committed assistant message; on failure Err is set.
type TurnEvent struct {
	SessionID string
	Message   *Message
	Err       error
}

// Store owns the session list and per-session message caches, and runs
// streamed turns. The committed message list is written only by the
// turn's done handler and by explicit CRUD; the one-stream-per-session
// guard prevents concurrent writers.
type Store struct {
	projectID string
	backend   Backend

	mu       sync.Mutex
	sessions []api.Session
	activeID string
	state    State
	messages map[string][]Message

	// In-flight stream bookkeeping. generation increments on every
	// send and every session switch; a turn commits only if its
	// generation is still current (stale streams after a switch are
	// recognized and discarded).
	generation   uint64
	streaming    bool
	cancelStream context.CancelFunc

	confirming bool

	// Observables.
	ContentEvents *event.Emitter[ContentEvent]
	PlanEvents    *event.Emitter[PlanEvent]
	TurnEvents    *event.Emitter[TurnEvent]
}

// NewStore creates a store for one project.
func NewStore(projectID string, backend Backend) *Store {
	return &Store{
		projectID:     projectID,
		backend:       backend,
		state:         StateNoSession,
		messages:      make(map[string][]Message),
		ContentEvents: event.NewEmitter[ContentEvent](),
		PlanEvents:    event.NewEmitter[PlanEvent](),
		TurnEvents:    event.NewEmitter[TurnEvent](),
	}
}

// State returns the current conversation state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ActiveSession returns the selected session id, or "".
func (s *Store) ActiveSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Sessions returns a snapshot of the loaded session list.
func (s *Store) Sessions() []api.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// FilterSessions returns sessions whose titles contain query,
// case-insensitively, over the full loaded list. An empty query returns
// everything.
func (s *Store) FilterSessions(query string) []api.Session {
	all := s.Sessions()
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all
	}
	var out []api.Session
	for _, sess := range all {
		if strings.Contains(strings.ToLower(sess.Title), query) {
			out = append(out, sess)
		}
	}
	return out
}

// Messages returns a snapshot of the active session's cached messages.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[s.activeID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// LoadSessions fetches the project's conversations, newest first.
func (s *Store) LoadSessions(ctx context.Context) error {
	sessions, err := s.backend.ListSessions(ctx, s.projectID)
	if err != nil {
		return err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})

	s.mu.Lock()
	s.sessions = sessions
	s.mu.Unlock()
	return nil
}

// transitionLocked moves the state machine, logging invalid jumps.
// Caller holds mu.
func (s *Store) transitionLocked(next State) {
	if s.state == next {
		return
	}
	if !canTransition(s.state, next) {
		slog.Warn("invalid chat state transition", "from", s.state, "to", next)
		return
	}
	s.state = next
}

// Select makes sessionID the active conversation and loads its history.
// Any in-flight stream for the previous selection is aborted; its
// remaining events are discarded by the generation guard so nothing
// leaks into the new session's live or committed state.
func (s *Store) Select(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	if !s.hasSessionLocked(sessionID) {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	s.invalidateStreamLocked()
	s.activeID = sessionID
	s.transitionLocked(StateSessionSelected)
	s.mu.Unlock()

	msgs, err := s.backend.ListMessages(ctx, sessionID)
	if err != nil {
		return err
	}

	cache := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		cache = append(cache, confirmed(m))
	}

	s.mu.Lock()
	// The user may have switched again while messages were loading.
	if s.activeID == sessionID {
		s.messages[sessionID] = cache
		s.transitionLocked(StateMessagesLoaded)
	}
	s.mu.Unlock()
	return nil
}

// Deselect clears the selection.
func (s *Store) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateStreamLocked()
	s.activeID = ""
	s.transitionLocked(StateNoSession)
}

// hasSessionLocked reports whether sessionID is in the loaded list.
func (s *Store) hasSessionLocked(sessionID string) bool {
	for _, sess := range s.sessions {
		if sess.ID == sessionID {
			return true
		}
	}
	return false
}

// invalidateStreamLocked aborts any in-flight stream and bumps the
// generation so its remaining events are recognized as stale.
func (s *Store) invalidateStreamLocked() {
	s.generation++
	if s.cancelStream != nil {
		s.cancelStream()
		s.cancelStream = nil
	}
	s.streaming = false
}

// Create creates a conversation, prepends it to the list, and selects
// it with an empty message cache.
func (s *Store) Create(ctx context.Context, title string) (*api.Session, error) {
	sess, err := s.backend.CreateSession(ctx, s.projectID, title)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions = append([]api.Session{*sess}, s.sessions...)
	s.invalidateStreamLocked()
	s.activeID = sess.ID
	s.messages[sess.ID] = nil
	s.transitionLocked(StateSessionSelected)
	s.transitionLocked(StateMessagesLoaded)
	s.mu.Unlock()
	return sess, nil
}

// Rename updates a session title optimistically and persists it,
// reverting the local update on failure.
func (s *Store) Rename(ctx context.Context, sessionID, title string) error {
	s.mu.Lock()
	var prev string
	found := false
	for i := range s.sessions {
		if s.sessions[i].ID == sessionID {
			prev = s.sessions[i].Title
			s.sessions[i].Title = title
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return ErrSessionNotFound
	}

	if err := s.backend.RenameSession(ctx, sessionID, title); err != nil {
		s.mu.Lock()
		for i := range s.sessions {
			if s.sessions[i].ID == sessionID {
				s.sessions[i].Title = prev
				break
			}
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// Delete removes a session. If it was active, the store falls back to
// no selection.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.backend.DeleteSession(ctx, sessionID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == sessionID {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			break
		}
	}
	delete(s.messages, sessionID)
	if s.activeID == sessionID {
		s.invalidateStreamLocked()
		s.activeID = ""
		s.transitionLocked(StateNoSession)
	}
	return nil
}

// Send runs one streamed turn for the active session: it appends an
// optimistic user message, opens the stream, accumulates envelopes, and
// on done commits the user and assistant messages atomically. It blocks
// until the turn ends; live updates flow through the observables.
//
// A second send while one is in flight returns ErrStreamInFlight; sends
// are rejected, never queued.
func (s *Store) Send(ctx context.Context, text string) (*Message, error) {
	s.mu.Lock()
	if s.activeID == "" {
		s.mu.Unlock()
		return nil, ErrNoSession
	}
	if s.streaming {
		s.mu.Unlock()
		return nil, ErrStreamInFlight
	}
	if s.state != StateMessagesLoaded {
		s.mu.Unlock()
		return nil, ErrMessagesNotLoaded
	}

	sessionID := s.activeID
	s.generation++
	gen := s.generation
	s.streaming = true
	s.transitionLocked(StateAwaitingStream)

	now := time.Now()
	pending := newPending(api.Message{
		Role:      api.RoleUser,
		Content:   text,
		CreatedAt: &now,
	})
	s.messages[sessionID] = append(s.messages[sessionID], pending)

	streamCtx, cancel := context.WithCancel(ctx)
	s.cancelStream = cancel
	s.mu.Unlock()
	defer cancel()

	body, err := s.backend.StartStream(streamCtx, s.projectID, api.StreamRequest{
		Message:   text,
		SessionID: sessionID,
		ProjectID: s.projectID,
	})
	if err != nil {
		// Stream never opened: roll the optimistic message back so the
		// user can retry cleanly.
		s.rollbackPending(sessionID, gen, pending.LocalID)
		return nil, err
	}
	defer body.Close()

	turn := NewTurn()
	var committed *Message
	var turnErr error

	consumeErr := stream.Consume(streamCtx, body, func(env stream.Envelope) bool {
		switch env.Type {
		case stream.TypeToken:
			content := turn.AppendToken(env.Content)
			if s.isCurrent(sessionID, gen) {
				s.ContentEvents.Emit(ContentEvent{SessionID: sessionID, Content: content, Active: true})
			}
		case stream.TypePlan:
			turn.SetPlan(env.PlanData)
			if s.isCurrent(sessionID, gen) {
				s.PlanEvents.Emit(PlanEvent{
					SessionID: sessionID,
					PlanData:  env.PlanData,
					Plan:      turn.CurrentPlan(),
					Active:    true,
				})
			}
		case stream.TypeDone:
			committed = s.commitTurn(sessionID, gen, pending.LocalID, turn.Finalize(env))
			return false
		case stream.TypeError:
			turnErr = &StreamError{Message: env.Message}
			s.failTurn(sessionID, gen, pending.LocalID, turnErr)
			return false
		}
		return true
	})

	switch {
	case committed != nil:
		return committed, nil
	case turnErr != nil:
		return nil, turnErr
	case consumeErr != nil && !errors.Is(consumeErr, stream.ErrStopped):
		s.failTurn(sessionID, gen, pending.LocalID, consumeErr)
		return nil, consumeErr
	default:
		// EOF with no terminal envelope.
		s.failTurn(sessionID, gen, pending.LocalID, ErrStreamEnded)
		return nil, ErrStreamEnded
	}
}

// Stop aborts the in-flight stream, if any. The abort is wired through
// the read loop's context so the connection is actually released, not
// just hidden from the UI.
func (s *Store) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelStream != nil {
		s.cancelStream()
	}
}

// isCurrent reports whether a turn's events should still be observed:
// its session is active and no newer generation has superseded it.
func (s *Store) isCurrent(sessionID string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID == sessionID && s.generation == gen
}

// commitTurn atomically confirms the pending user message and appends
// the assistant message in a single update, so no render can observe
// the user's message without its reply. Stale turns are discarded.
func (s *Store) commitTurn(sessionID string, gen uint64, pendingID string, assistant api.Message) *Message {
	s.mu.Lock()
	if s.activeID != sessionID || s.generation != gen {
		// Session switched mid-stream; discard, but leave the pending
		// message resendable in its own session.
		s.markMessageLocked(sessionID, pendingID, LifecycleFailed)
		s.mu.Unlock()
		slog.Debug("discarding stale turn", "session", sessionID, "generation", gen)
		return nil
	}

	msgs := s.messages[sessionID]
	for i := range msgs {
		if msgs[i].LocalID == pendingID {
			msgs[i].State = LifecycleConfirmed
			break
		}
	}
	reply := confirmed(assistant)
	s.messages[sessionID] = append(msgs, reply)
	s.streaming = false
	s.cancelStream = nil
	s.transitionLocked(StateMessagesLoaded)
	s.bumpSessionLocked(sessionID, 2)
	s.mu.Unlock()

	s.clearObservables(sessionID)
	s.TurnEvents.Emit(TurnEvent{SessionID: sessionID, Message: &reply})
	return &reply
}

// failTurn marks the pending user message Failed, clears the streaming
// observables, and surfaces the error. No assistant message is
// committed. The failed message is retained so the user can resend.
func (s *Store) failTurn(sessionID string, gen uint64, pendingID string, cause error) {
	s.mu.Lock()
	s.markMessageLocked(sessionID, pendingID, LifecycleFailed)
	if s.activeID == sessionID && s.generation == gen {
		s.streaming = false
		s.cancelStream = nil
		s.transitionLocked(StateMessagesLoaded)
	}
	current := s.activeID == sessionID && s.generation == gen
	s.mu.Unlock()

	if current {
		s.clearObservables(sessionID)
		s.TurnEvents.Emit(TurnEvent{SessionID: sessionID, Err: cause})
	}
}

// rollbackPending removes the optimistic message after a failure to
// open the stream at all, so the user can retry from a clean history.
func (s *Store) rollbackPending(sessionID string, gen uint64, pendingID string) {
	s.mu.Lock()
	msgs := s.messages[sessionID]
	for i := range msgs {
		if msgs[i].LocalID == pendingID {
			s.messages[sessionID] = append(msgs[:i], msgs[i+1:]...)
			break
		}
	}
	if s.activeID == sessionID && s.generation == gen {
		s.streaming = false
		s.cancelStream = nil
		s.transitionLocked(StateMessagesLoaded)
	}
	s.mu.Unlock()
}

// markMessageLocked sets a message's lifecycle state. Caller holds mu.
func (s *Store) markMessageLocked(sessionID, localID string, state Lifecycle) {
	msgs := s.messages[sessionID]
	for i := range msgs {
		if msgs[i].LocalID == localID {
			msgs[i].State = state
			return
		}
	}
}

// bumpSessionLocked updates list metadata after a committed turn.
// Caller holds mu.
func (s *Store) bumpSessionLocked(sessionID string, added int) {
	for i := range s.sessions {
		if s.sessions[i].ID == sessionID {
			s.sessions[i].MessageCount += added
			s.sessions[i].UpdatedAt = time.Now()
			return
		}
	}
}

// clearObservables resets both streaming observables.
func (s *Store) clearObservables(sessionID string) {
	s.ContentEvents.Emit(ContentEvent{SessionID: sessionID})
	s.PlanEvents.Emit(PlanEvent{SessionID: sessionID})
}

// ConfirmPlan dispatches a confirmed plan for the given session. The
// confirming guard ensures a single user action issues exactly one
// network call even under rapid repeated invocation; concurrent
// attempts get ErrConfirmInFlight. Failure mutates neither the message
// history nor the plan's attachment to its message.
func (s *Store) ConfirmPlan(ctx context.Context, sessionID, planData string) (*api.ConfirmResponse, error) {
	s.mu.Lock()
	if s.confirming {
		s.mu.Unlock()
		return nil, ErrConfirmInFlight
	}
	s.confirming = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.confirming = false
		s.mu.Unlock()
	}()

	return s.backend.ConfirmPlan(ctx, s.projectID, sessionID, planData)
}

// EditMessage edits a committed message's content, persisting first and
// updating the cache on success. Pending and failed messages are
// rejected.
func (s *Store) EditMessage(ctx context.Context, sessionID, localID, content string) error {
	serverID, err := s.committedServerID(sessionID, localID)
	if err != nil {
		return err
	}
	if err := s.backend.UpdateMessage(ctx, serverID, content); err != nil {
		return err
	}

	s.mu.Lock()
	msgs := s.messages[sessionID]
	for i := range msgs {
		if msgs[i].LocalID == localID {
			msgs[i].Content = content
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// DeleteMessage deletes a committed message. Pending and failed
// messages are rejected; use RemoveFailed for failed ones.
func (s *Store) DeleteMessage(ctx context.Context, sessionID, localID string) error {
	serverID, err := s.committedServerID(sessionID, localID)
	if err != nil {
		return err
	}
	if err := s.backend.DeleteMessage(ctx, serverID); err != nil {
		return err
	}

	s.mu.Lock()
	msgs := s.messages[sessionID]
	for i := range msgs {
		if msgs[i].LocalID == localID {
			s.messages[sessionID] = append(msgs[:i], msgs[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// RemoveFailed drops a failed message from the local cache. Failed
// messages never reached the server, so this is a purely local cleanup.
func (s *Store) RemoveFailed(sessionID, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[sessionID]
	for i := range msgs {
		if msgs[i].LocalID != localID {
			continue
		}
		if msgs[i].State != LifecycleFailed {
			return ErrMessageNotCommitted
		}
		s.messages[sessionID] = append(msgs[:i], msgs[i+1:]...)
		return nil
	}
	return ErrMessageNotFound
}

// committedServerID resolves a local id to a server id, rejecting
// messages that aren't committed.
func (s *Store) committedServerID(sessionID, localID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages[sessionID] {
		if m.LocalID != localID {
			continue
		}
		if m.State != LifecycleConfirmed || m.ID == "" {
			return "", ErrMessageNotCommitted
		}
		return m.ID, nil
	}
	return "", ErrMessageNotFound
}
