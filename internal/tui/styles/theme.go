package styles

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Mauve).
			Background(Surface0).
			Padding(0, 1)

	// One-shot command output (send, read, flush)
	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	FailureStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Mauve).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Overlay0)

	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(Surface1)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Surface2).
			Padding(0, 1)
)

// ConnectionState is what the status bar indicator reflects
type ConnectionState int

const (
	StateConnecting ConnectionState = iota
	StateConnected
	StateDisconnected
	StateFailed
)

// Indicator returns the status bar glyph for a connection state
func Indicator(state ConnectionState) string {
	switch state {
	case StateConnected:
		return lipgloss.NewStyle().Foreground(Green).Render("●")
	case StateConnecting:
		return lipgloss.NewStyle().Foreground(Yellow).Render("○")
	case StateFailed:
		return lipgloss.NewStyle().Foreground(Red).Render("✗")
	default:
		return lipgloss.NewStyle().Foreground(Red).Render("○")
	}
}
