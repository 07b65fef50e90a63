package tui

import "github.com/charmbracelet/lipgloss"

// Row statuses used by the lint progress table.
const (
	StatusPending  = "pending"
	StatusClean    = "clean"
	StatusWarnings = "warnings"
	StatusErrors   = "errors"
	StatusFailed   = "failed"
)

var (
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	// TitleStyle styles the table title.
	TitleStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	statusStyles = map[string]lipgloss.Style{
		StatusClean:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		StatusWarnings: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		StatusErrors:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		StatusFailed:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		StatusPending:  lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
