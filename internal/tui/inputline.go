package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// inputLine is the single-line message composer at the bottom of the chat
// pane. It keeps a small history navigable with up/down when empty.
type inputLine struct {
	textarea textarea.Model

	history    []string
	historyPos int
}

func newInputLine() inputLine {
	ta := textarea.New()
	ta.Placeholder = "Describe an analysis…"
	ta.Prompt = "> "
	ta.CharLimit = 4000
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)
	return inputLine{
		textarea:   ta,
		historyPos: -1,
	}
}

func (i *inputLine) Focus() tea.Cmd {
	return i.textarea.Focus()
}

func (i *inputLine) Blur() {
	i.textarea.Blur()
}

func (i *inputLine) Focused() bool {
	return i.textarea.Focused()
}

func (i *inputLine) SetWidth(w int) {
	i.textarea.SetWidth(w)
}

func (i *inputLine) Value() string {
	return i.textarea.Value()
}

func (i *inputLine) SetValue(v string) {
	i.textarea.SetValue(v)
}

// Take returns the current value and resets the composer, recording the
// value in history.
func (i *inputLine) Take() string {
	v := i.textarea.Value()
	if v != "" {
		i.history = append(i.history, v)
	}
	i.historyPos = -1
	i.textarea.Reset()
	return v
}

// HistoryPrev recalls the previous history entry. Only meaningful when the
// composer is empty or already navigating history.
func (i *inputLine) HistoryPrev() {
	if len(i.history) == 0 {
		return
	}
	if i.historyPos == -1 {
		i.historyPos = len(i.history) - 1
	} else if i.historyPos > 0 {
		i.historyPos--
	}
	i.textarea.SetValue(i.history[i.historyPos])
	i.textarea.CursorEnd()
}

// HistoryNext recalls the next history entry, clearing the composer when
// navigation runs past the newest entry.
func (i *inputLine) HistoryNext() {
	if i.historyPos == -1 {
		return
	}
	i.historyPos++
	if i.historyPos >= len(i.history) {
		i.historyPos = -1
		i.textarea.Reset()
		return
	}
	i.textarea.SetValue(i.history[i.historyPos])
	i.textarea.CursorEnd()
}

func (i *inputLine) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	i.textarea, cmd = i.textarea.Update(msg)
	return cmd
}

func (i *inputLine) View() string {
	return i.textarea.View()
}
