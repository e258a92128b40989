package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/strandtools/strand/internal/api"
	"github.com/strandtools/strand/internal/chat"
)

// eventBuffer is how many store events can queue up before an emit blocks.
// Token events arrive in bursts during streaming.
const eventBuffer = 256

// subscribeStore wires the store's emitters into a channel the update loop
// can drain. The returned unsubscribe releases all three subscriptions.
func subscribeStore(store *chat.Store) (<-chan storeEventMsg, func()) {
	ch := make(chan storeEventMsg, eventBuffer)

	unsubContent := store.ContentEvents.Subscribe(func(e chat.ContentEvent) {
		ch <- storeEventMsg{content: &e}
	})
	unsubPlan := store.PlanEvents.Subscribe(func(e chat.PlanEvent) {
		ch <- storeEventMsg{plan: &e}
	})
	unsubTurn := store.TurnEvents.Subscribe(func(e chat.TurnEvent) {
		ch <- storeEventMsg{turn: &e}
	})

	return ch, func() {
		unsubContent()
		unsubPlan()
		unsubTurn()
	}
}

// waitForEvent returns a command that delivers the next store event.
func waitForEvent(ch <-chan storeEventMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func loadSessions(store *chat.Store) tea.Cmd {
	return func() tea.Msg {
		err := store.LoadSessions(context.Background())
		return sessionsLoadedMsg{err: err}
	}
}

func selectSession(store *chat.Store, session api.Session) tea.Cmd {
	return func() tea.Msg {
		err := store.Select(context.Background(), session.ID)
		return sessionSelectedMsg{session: session, err: err}
	}
}

func createSession(store *chat.Store, title string) tea.Cmd {
	return func() tea.Msg {
		session, err := store.Create(context.Background(), title)
		if err != nil {
			return sessionCreatedMsg{err: err}
		}
		return sessionCreatedMsg{session: *session}
	}
}

func renameSession(store *chat.Store, id, title string) tea.Cmd {
	return func() tea.Msg {
		err := store.Rename(context.Background(), id, title)
		return sessionRenamedMsg{err: err}
	}
}

func deleteSession(store *chat.Store, id string) tea.Cmd {
	return func() tea.Msg {
		err := store.Delete(context.Background(), id)
		return sessionDeletedMsg{err: err}
	}
}

// sendMessage runs a full streamed turn. It blocks until the stream ends,
// which is why it runs as a command: progress arrives through the store's
// emitters, not through this command's return value.
func sendMessage(store *chat.Store, content string) tea.Cmd {
	return func() tea.Msg {
		_, err := store.Send(context.Background(), content)
		return sendDoneMsg{err: err}
	}
}

func confirmPlan(store *chat.Store, sessionID, planData string) tea.Cmd {
	return func() tea.Msg {
		resp, err := store.ConfirmPlan(context.Background(), sessionID, planData)
		if err != nil {
			return confirmDoneMsg{err: err}
		}
		return confirmDoneMsg{analysisID: resp.AnalysisID}
	}
}

// removeFailed drops a failed local message so the turn can be retried
// from a clean history.
func removeFailed(store *chat.Store, sessionID, localID string) tea.Cmd {
	return func() tea.Msg {
		err := store.RemoveFailed(sessionID, localID)
		return editDoneMsg{err: err}
	}
}

// clearStatusAfter clears the status line once the delay elapses.
func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return statusClearMsg{}
	})
}
