package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("25")).
			Padding(0, 1)

	barStyle = lipgloss.NewStyle().Background(lipgloss.Color("25"))

	accountStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("25")).
			Padding(0, 1)

	userBubble = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("33")).
			Padding(0, 1)

	botBubble = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	errorBubble = botBubble.
			Foreground(lipgloss.Color("203")).
			BorderForeground(lipgloss.Color("160"))

	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	chosenStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)
