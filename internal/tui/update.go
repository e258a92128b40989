package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/strandtools/strand/internal/api"
	"github.com/strandtools/strand/internal/chat"
	"github.com/strandtools/strand/internal/plan"
)

const statusLinger = 4 * time.Second

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sessions.SetSize(sessionPaneWidth-2, msg.Height-7)
		chatWidth := msg.Width - sessionPaneWidth - 6
		m.chat.SetSize(chatWidth, msg.Height-8)
		m.input.SetWidth(chatWidth)
		m.prompt.Width = sessionPaneWidth - 12
		return m, nil

	case spinner.TickMsg:
		if !m.streaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case storeEventMsg:
		return m.handleStoreEvent(msg)

	case sessionsLoadedMsg:
		if msg.err != nil {
			return m.fail("loading conversations", msg.err)
		}
		m.sessions.SetSessions(m.store.Sessions())
		return m, nil

	case sessionSelectedMsg:
		if msg.err != nil {
			return m.fail("opening conversation", msg.err)
		}
		// An abandoned stream's clearing events are suppressed once its
		// generation goes stale, so drop its live text here or it would
		// render under the new conversation.
		m.chat.ClearTurn()
		m.streaming = false
		m.chat.SetMessages(m.store.Messages())
		m.chat.ClearPlan()
		m.mode = modeChat
		return m, m.input.Focus()

	case sessionCreatedMsg:
		if msg.err != nil {
			return m.fail("creating conversation", msg.err)
		}
		m.chat.ClearTurn()
		m.streaming = false
		m.sessions.SetSessions(m.store.Sessions())
		m.chat.SetMessages(nil)
		m.chat.ClearPlan()
		m.mode = modeChat
		return m, m.input.Focus()

	case sessionRenamedMsg:
		if msg.err != nil {
			m.sessions.SetSessions(m.store.Sessions())
			return m.fail("renaming conversation", msg.err)
		}
		m.sessions.SetSessions(m.store.Sessions())
		return m, nil

	case sessionDeletedMsg:
		if msg.err != nil {
			return m.fail("deleting conversation", msg.err)
		}
		m.sessions.SetSessions(m.store.Sessions())
		if m.store.State() == chat.StateNoSession {
			m.chat.SetMessages(nil)
			m.chat.ClearPlan()
			m.mode = modeSessions
			m.input.Blur()
		}
		return m, nil

	case sendDoneMsg:
		m.streaming = false
		if msg.err != nil && !suppressedSendError(msg.err) {
			return m.fail("sending", msg.err)
		}
		return m, nil

	case confirmDoneMsg:
		if msg.err != nil {
			if errors.Is(msg.err, chat.ErrConfirmInFlight) {
				return m, nil
			}
			return m.fail("starting analysis", msg.err)
		}
		m.chat.ClearPlan()
		m.status = "analysis started: " + msg.analysisID
		m.statusErr = false
		return m, clearStatusAfter(statusLinger)

	case editDoneMsg:
		if msg.err != nil {
			return m.fail("updating message", msg.err)
		}
		m.chat.SetMessages(m.store.Messages())
		return m, nil

	case statusClearMsg:
		m.status = ""
		m.statusErr = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// suppressedSendError reports whether a Send failure is already visible in
// the conversation itself and needs no status line.
func suppressedSendError(err error) bool {
	var streamErr *chat.StreamError
	return errors.As(err, &streamErr) ||
		errors.Is(err, chat.ErrStreamEnded) ||
		errors.Is(err, context.Canceled)
}

func (m Model) handleStoreEvent(msg storeEventMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.content != nil:
		if msg.content.Active {
			m.chat.SetStreaming(msg.content.Content)
		} else {
			m.chat.ClearTurn()
		}
	case msg.plan != nil:
		if msg.plan.Active {
			m.chat.SetPlan(msg.plan.Plan, msg.plan.PlanData)
		} else {
			m.chat.ClearPlan()
		}
	case msg.turn != nil:
		m.chat.SetMessages(m.store.Messages())
		m.sessions.SetSessions(m.store.Sessions())
		if msg.turn.Err != nil {
			m.status = errorStatus("turn failed", msg.turn.Err)
			m.statusErr = true
			return m, tea.Batch(waitForEvent(m.events), clearStatusAfter(statusLinger))
		}
		// The observables were cleared before the commit; put the card
		// back up from the committed message so the plan can be run.
		if msg.turn.Message != nil && msg.turn.Message.PlanData != "" {
			if p, err := plan.Parse(msg.turn.Message.PlanData); err == nil {
				m.chat.SetPlan(p, msg.turn.Message.PlanData)
			}
		}
	}
	return m, waitForEvent(m.events)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.store.Stop()
		return m, tea.Quit
	}

	switch m.mode {
	case modeFilter, modeRename, modeNew:
		return m.handlePromptKey(msg)
	case modeSessions:
		return m.handleSessionsKey(msg)
	case modeChat:
		return m.handleChatKey(msg)
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.mode == modeFilter {
			m.sessions.SetFilter("")
		}
		m.prompt.Blur()
		m.prompt.Reset()
		m.mode = modeSessions
		return m, nil

	case tea.KeyEnter:
		value := m.prompt.Value()
		prev := m.mode
		m.prompt.Blur()
		m.prompt.Reset()
		m.mode = modeSessions

		switch prev {
		case modeFilter:
			return m, nil // filter already applied while typing
		case modeRename:
			if s, ok := m.sessions.Selected(); ok && value != "" {
				return m, renameSession(m.store, s.ID, value)
			}
			return m, nil
		case modeNew:
			return m, createSession(m.store, value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	if m.mode == modeFilter {
		m.sessions.SetFilter(m.prompt.Value())
	}
	return m, cmd
}

func (m Model) handleSessionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.store.Stop()
		return m, tea.Quit

	case "up", "k":
		m.sessions.MoveUp()
		return m, nil

	case "down", "j":
		m.sessions.MoveDown()
		return m, nil

	case "enter":
		if s, ok := m.sessions.Selected(); ok {
			return m, selectSession(m.store, s)
		}
		return m, nil

	case "n":
		m.mode = modeNew
		return m, m.prompt.Focus()

	case "r":
		if s, ok := m.sessions.Selected(); ok {
			m.mode = modeRename
			m.prompt.SetValue(s.Title)
			m.prompt.CursorEnd()
			return m, m.prompt.Focus()
		}
		return m, nil

	case "d":
		if s, ok := m.sessions.Selected(); ok {
			return m, deleteSession(m.store, s.ID)
		}
		return m, nil

	case "/":
		m.mode = modeFilter
		m.prompt.SetValue(m.sessions.Filter())
		m.prompt.CursorEnd()
		return m, m.prompt.Focus()

	case "esc":
		m.sessions.SetFilter("")
		return m, nil

	case "tab":
		if m.store.ActiveSession() != "" {
			m.mode = modeChat
			return m, m.input.Focus()
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab:
		m.input.Blur()
		m.mode = modeSessions
		return m, nil

	case tea.KeyEsc:
		if m.streaming {
			m.store.Stop()
			return m, nil
		}
		m.input.Blur()
		m.mode = modeSessions
		return m, nil

	case tea.KeyEnter:
		if m.streaming {
			return m, nil
		}
		content := m.input.Take()
		if content == "" {
			return m, nil
		}
		m.streaming = true
		m.chat.SetMessages(m.store.Messages())
		return m, tea.Batch(
			sendMessage(m.store, content),
			m.spinner.Tick,
		)

	case tea.KeyCtrlR:
		if m.streaming {
			return m, nil
		}
		if _, planData := m.chat.Plan(); planData != "" {
			return m, confirmPlan(m.store, m.store.ActiveSession(), planData)
		}
		return m, nil

	case tea.KeyCtrlX:
		// Drop the most recent failed message, if any.
		msgs := m.store.Messages()
		for i := len(msgs) - 1; i >= 0; i-- {
			if msgs[i].State == chat.LifecycleFailed {
				return m, removeFailed(m.store, m.store.ActiveSession(), msgs[i].LocalID)
			}
		}
		return m, nil

	case tea.KeyUp:
		if m.input.Value() == "" || m.historyActive() {
			m.input.HistoryPrev()
			return m, nil
		}

	case tea.KeyDown:
		if m.historyActive() {
			m.input.HistoryNext()
			return m, nil
		}

	case tea.KeyPgUp, tea.KeyPgDown:
		return m, m.chat.Update(msg)
	}

	return m, m.input.Update(msg)
}

func (m Model) historyActive() bool {
	return m.input.historyPos != -1
}

func (m Model) fail(action string, err error) (tea.Model, tea.Cmd) {
	m.status = errorStatus(action, err)
	m.statusErr = true
	return m, clearStatusAfter(statusLinger)
}

// errorStatus formats an error for the status line, pointing auth
// failures at the login command instead of showing the raw sentinel.
func errorStatus(action string, err error) string {
	switch {
	case errors.Is(err, api.ErrAuthExpired):
		return "session expired: run 'strand login' to authenticate again"
	case errors.Is(err, api.ErrNoToken):
		return "not logged in: run 'strand login' first"
	default:
		return fmt.Sprintf("%s: %v", action, err)
	}
}
