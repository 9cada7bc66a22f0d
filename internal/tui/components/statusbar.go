package components

import (
	"fmt"

	"github.com/allbin/serialkit"
	"github.com/allbin/serialkit/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// Counters summarise the traffic of a session
type Counters struct {
	Commands int
	Timeouts int
	BytesTX  int
	BytesRX  int
}

type StatusBar struct {
	portPath string
	config   serialkit.Config
	state    styles.ConnectionState
	status   string
	err      error
	width    int
	counters Counters
}

func NewStatusBar(config serialkit.Config) *StatusBar {
	return &StatusBar{
		portPath: config.Port,
		config:   config,
		state:    styles.StateConnecting,
		status:   "Connecting...",
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetConnected() {
	sb.state = styles.StateConnected
	sb.status = "Connected"
	sb.err = nil
}

func (sb *StatusBar) SetDisconnected(err error) {
	if err != nil {
		sb.state = styles.StateFailed
		sb.status = fmt.Sprintf("Connection failed: %v", err)
		sb.err = err
		return
	}
	sb.state = styles.StateDisconnected
	sb.status = "Disconnected"
	sb.err = nil
}

func (sb *StatusBar) State() styles.ConnectionState {
	return sb.state
}

func (sb *StatusBar) Status() string {
	return sb.status
}

func (sb *StatusBar) Counters() *Counters {
	return &sb.counters
}

// Framing renders the line settings the way they are usually written, e.g. "9600 8N1"
func Framing(c serialkit.Config) string {
	parity := "N"
	switch c.Parity {
	case serialkit.ParityOdd:
		parity = "O"
	case serialkit.ParityEven:
		parity = "E"
	}
	return fmt.Sprintf("%d %s%s%s", c.BaudRate, c.ByteSize, parity, c.StopBits)
}

// View renders mode, port, connection state, framing, counters and the clock in one line.
// sendingMode is only shown in insert mode and may be empty for read-only views.
func (sb *StatusBar) View(inputMode, sendingMode string, timestamp string) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	modeBackground := styles.Blue
	if inputMode == "INSERT" {
		modeBackground = styles.Green
	}
	mode := lipgloss.NewStyle().
		Foreground(styles.Base).
		Background(modeBackground).
		Bold(true).
		Padding(0, 1).
		Render(inputMode)

	port := lipgloss.NewStyle().
		Foreground(styles.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(sb.portPath)

	divider := lipgloss.NewStyle().
		Foreground(styles.Surface2).
		Padding(0, 1).
		Render("│")

	left := []string{mode, port, styles.Indicator(sb.state)}
	if inputMode == "INSERT" && sendingMode != "" {
		left = append(left, lipgloss.NewStyle().
			Foreground(styles.Peach).
			Bold(true).
			Padding(0, 1).
			Render(fmt.Sprintf("[%s] Tab to toggle", sendingMode)))
	}
	left = append(left, divider)
	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, left...)

	details := fmt.Sprintf("⚡ %s  tx %dB rx %dB", Framing(sb.config), sb.counters.BytesTX, sb.counters.BytesRX)
	if sb.counters.Commands > 0 {
		details += fmt.Sprintf("  cmd %d", sb.counters.Commands)
	}
	if sb.counters.Timeouts > 0 {
		details += fmt.Sprintf(" (%d timed out)", sb.counters.Timeouts)
	}
	connectionDetails := lipgloss.NewStyle().
		Foreground(styles.Subtext0).
		Padding(0, 1).
		Render(details)

	clock := lipgloss.NewStyle().
		Foreground(styles.Subtext1).
		Padding(0, 1).
		Render(timestamp)

	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, connectionDetails, divider, clock)

	spacerWidth := terminalWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(styles.Text).
		Background(styles.Surface0).
		Width(terminalWidth).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}
