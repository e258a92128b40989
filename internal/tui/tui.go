// Package tui implements the interactive chat interface for the Strand
// analysis platform.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/strandtools/strand/internal/chat"
)

// mode is the current input mode of the interface.
type mode int

const (
	modeSessions mode = iota // navigating the session list
	modeChat                 // composing in the chat pane
	modeFilter               // typing a session filter
	modeRename               // renaming the selected session
	modeNew                  // naming a new session
)

const sessionPaneWidth = 34

// Model is the root bubbletea model.
type Model struct {
	store  *chat.Store
	events <-chan storeEventMsg
	unsub  func()

	sessions sessionList
	chat     chatView
	input    inputLine
	prompt   textinput.Model
	spinner  spinner.Model

	mode      mode
	streaming bool
	status    string
	statusErr bool

	width  int
	height int
}

// New creates the root model bound to a chat store.
func New(store *chat.Store) Model {
	events, unsub := subscribeStore(store)

	prompt := textinput.New()
	prompt.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return Model{
		store:    store,
		events:   events,
		unsub:    unsub,
		sessions: newSessionList(),
		chat:     newChatView(),
		input:    newInputLine(),
		prompt:   prompt,
		spinner:  sp,
		mode:     modeSessions,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadSessions(m.store),
		waitForEvent(m.events),
	)
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading…"
	}

	header := headerStyle.Width(m.width).Render("strand")

	chatWidth := m.width - sessionPaneWidth - 4
	contentHeight := m.height - 5

	left := m.renderSessionPane(contentHeight)
	right := m.renderChatPane(chatWidth, contentHeight)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.renderStatus(),
	)
}

func (m Model) renderSessionPane(height int) string {
	var parts []string
	switch m.mode {
	case modeFilter:
		parts = append(parts, filterPromptStyle.Render("/"+m.prompt.View()))
	case modeRename:
		parts = append(parts, filterPromptStyle.Render("rename: "+m.prompt.View()))
	case modeNew:
		parts = append(parts, filterPromptStyle.Render("title: "+m.prompt.View()))
	default:
		if f := m.sessions.Filter(); f != "" {
			parts = append(parts, filterPromptStyle.Render("/"+f))
		}
	}
	parts = append(parts, m.sessions.View())

	style := chatBorderStyle
	if m.mode != modeChat {
		style = chatBorderFocusedStyle
	}
	return style.Width(sessionPaneWidth).Height(height).Render(
		strings.Join(parts, "\n"))
}

func (m Model) renderChatPane(width, height int) string {
	style := chatBorderStyle
	if m.mode == modeChat {
		style = chatBorderFocusedStyle
	}
	pane := lipgloss.JoinVertical(lipgloss.Left,
		m.chat.View(),
		m.input.View(),
	)
	return style.Width(width).Height(height).Render(pane)
}

func (m Model) renderStatus() string {
	if m.status != "" {
		if m.statusErr {
			return statusErrorStyle.Width(m.width).Render(m.status)
		}
		return statusStyle.Width(m.width).Render(m.status)
	}
	if m.streaming {
		return statusStyle.Width(m.width).Render(
			m.spinner.View() + " streaming (esc to stop)")
	}
	return statusStyle.Width(m.width).Render(m.keyHints())
}

func (m Model) keyHints() string {
	switch m.mode {
	case modeSessions:
		return "enter open · n new · r rename · d delete · / filter · tab chat · q quit"
	case modeChat:
		return "enter send · ctrl+r run plan · tab sessions · ctrl+c quit"
	default:
		return "enter apply · esc cancel"
	}
}

// Run starts the interface and blocks until it exits.
func Run(store *chat.Store) error {
	m := New(store)
	defer m.unsub()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running interface: %w", err)
	}
	slog.Info("interface closed")
	return nil
}
