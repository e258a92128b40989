package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/strandtools/strand/internal/api"
)

// sessionList is the left-hand pane listing conversations. It supports
// cursor movement and an incremental filter.
type sessionList struct {
	sessions []api.Session
	filtered []api.Session
	cursor   int
	filter   string
	width    int
	height   int
}

func newSessionList() sessionList {
	return sessionList{}
}

// SetSessions replaces the backing list, keeping the cursor on the same
// session when it survives the update.
func (l *sessionList) SetSessions(sessions []api.Session) {
	var keepID string
	if s, ok := l.Selected(); ok {
		keepID = s.ID
	}
	l.sessions = sessions
	l.applyFilter()
	if keepID != "" {
		for i, s := range l.filtered {
			if s.ID == keepID {
				l.cursor = i
				return
			}
		}
	}
	l.clampCursor()
}

func (l *sessionList) SetSize(width, height int) {
	l.width = width
	l.height = height
}

func (l *sessionList) SetFilter(filter string) {
	l.filter = filter
	l.applyFilter()
	l.cursor = 0
}

func (l *sessionList) Filter() string {
	return l.filter
}

func (l *sessionList) applyFilter() {
	if l.filter == "" {
		l.filtered = l.sessions
		return
	}
	needle := strings.ToLower(l.filter)
	l.filtered = nil
	for _, s := range l.sessions {
		if strings.Contains(strings.ToLower(s.Title), needle) {
			l.filtered = append(l.filtered, s)
		}
	}
}

func (l *sessionList) clampCursor() {
	if l.cursor >= len(l.filtered) {
		l.cursor = len(l.filtered) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (l *sessionList) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
	}
}

func (l *sessionList) MoveDown() {
	if l.cursor < len(l.filtered)-1 {
		l.cursor++
	}
}

// Selected returns the session under the cursor.
func (l *sessionList) Selected() (api.Session, bool) {
	if l.cursor < 0 || l.cursor >= len(l.filtered) {
		return api.Session{}, false
	}
	return l.filtered[l.cursor], true
}

func (l *sessionList) View() string {
	if len(l.filtered) == 0 {
		if l.filter != "" {
			return sessionListEmptyStyle.Render("No matching conversations.")
		}
		return sessionListEmptyStyle.Render("No conversations yet.\nPress n to start one.")
	}

	var b strings.Builder
	visible := l.height
	if visible <= 0 {
		visible = len(l.filtered)
	}

	// Keep the cursor in view by scrolling the window.
	start := 0
	if l.cursor >= visible {
		start = l.cursor - visible + 1
	}
	end := start + visible
	if end > len(l.filtered) {
		end = len(l.filtered)
	}

	for i := start; i < end; i++ {
		s := l.filtered[i]
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		meta := fmt.Sprintf("%d msgs", s.MessageCount)
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			sessionTitleStyle.Render(truncate(title, l.width-len(meta)-4)),
			" ",
			sessionMetaStyle.Render(meta),
		)
		if i == l.cursor {
			b.WriteString(sessionRowSelectedStyle.Width(l.width).Render(row))
		} else {
			b.WriteString(sessionRowStyle.Width(l.width).Render(row))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
