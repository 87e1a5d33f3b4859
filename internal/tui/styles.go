package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	successStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	inProgressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	accentStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle      = lipgloss.NewStyle().Faint(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)

	boxChecked    = "☑"
	boxUnchecked  = "☐"
	boxInProgress = "◐"
)

func panelString(inner string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	return border.Render(inner)
}
