package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor = lipgloss.Color("#2DD4BF") // Teal
	mutedColor   = lipgloss.Color("#6B7280") // Gray
	errorColor   = lipgloss.Color("#EF4444") // Red
	accentColor  = lipgloss.Color("#F59E0B") // Amber

	// Header
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 1)

	// Status bar
	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(errorColor).
				Padding(0, 1)

	// Session list
	sessionListEmptyStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Padding(1, 2)

	sessionRowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	sessionRowSelectedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#3B3B3B")).
				Padding(0, 1)

	sessionTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF"))

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	filterPromptStyle = lipgloss.NewStyle().
				Foreground(accentColor).
				Padding(0, 1)

	// Chat view
	chatUserStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	chatAssistantStyle = lipgloss.NewStyle().
				Foreground(accentColor).
				Bold(true)

	chatPendingStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	chatFailedStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	chatEmptyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(1, 2)

	chatBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor)

	chatBorderFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(primaryColor)

	// Plan card
	planCardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)

	planTitleStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	planBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D1D5DB"))

	planHintStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)
