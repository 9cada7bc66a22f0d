package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/serialkit/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// Direction tells which way an entry travelled
type Direction int

const (
	DirectionRX Direction = iota
	DirectionTX
	DirectionInfo
)

// Status of a command written from the console
type Status int

const (
	StatusNone Status = iota
	StatusPending
	StatusAnswered
	StatusTimeout
	StatusFailed
)

// DataMsg is one line of the terminal: a command, a response, received data or a notice
type DataMsg struct {
	Seq       int
	Timestamp time.Time
	Direction Direction
	Data      []byte
	Status    Status
	Err       error
}

type DisplayMode struct {
	ShowHex        bool
	ShowASCII      bool
	ShowTimestamps bool
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(mode DisplayMode) *DataFormatter {
	return &DataFormatter{mode: mode}
}

func (df *DataFormatter) GetDisplayMode() DisplayMode {
	return df.mode
}

func (df *DataFormatter) ToggleHex() {
	df.mode.ShowHex = !df.mode.ShowHex
}

func (df *DataFormatter) ToggleASCII() {
	df.mode.ShowASCII = !df.mode.ShowASCII
}

func (df *DataFormatter) ToggleTimestamps() {
	df.mode.ShowTimestamps = !df.mode.ShowTimestamps
}

func indicator(msg DataMsg) string {
	switch msg.Direction {
	case DirectionTX:
		color, text := styles.Peach, "TX"
		switch msg.Status {
		case StatusPending:
			color, text = styles.Yellow, "TX ○"
		case StatusAnswered:
			color, text = styles.Green, "TX ✓"
		case StatusTimeout:
			color, text = styles.Blue, "TX ⏱"
		case StatusFailed:
			color, text = styles.Red, "TX ✗"
		}
		return lipgloss.NewStyle().Foreground(color).Bold(true).Render("↗ " + text)
	case DirectionInfo:
		color := styles.Subtext1
		if msg.Err != nil {
			color = styles.Red
		}
		return lipgloss.NewStyle().Foreground(color).Bold(true).Render("• --")
	default:
		return lipgloss.NewStyle().Foreground(styles.Sky).Bold(true).Render("↙ RX")
	}
}

// Printable replaces everything outside printable ASCII with '.'
func Printable(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func (df *DataFormatter) FormatMessage(msg DataMsg) string {
	var parts []string

	if msg.Direction == DirectionInfo {
		text := string(msg.Data)
		if msg.Err != nil {
			text = msg.Err.Error()
		}
		parts = append(parts, text)
	} else {
		if df.mode.ShowHex {
			parts = append(parts, fmt.Sprintf("HEX: % X", msg.Data))
		}
		if df.mode.ShowASCII {
			parts = append(parts, "ASCII: "+Printable(msg.Data))
		}
		if !df.mode.ShowHex && !df.mode.ShowASCII {
			parts = append(parts, fmt.Sprintf("BYTES: %d", len(msg.Data)))
		}
	}

	line := fmt.Sprintf("%s: %s", indicator(msg), strings.Join(parts, "  "))
	if !df.mode.ShowTimestamps {
		return line
	}

	timestamp := lipgloss.NewStyle().
		Foreground(styles.Subtext0).
		Render("[" + msg.Timestamp.Format("15:04:05.000") + "]")
	return timestamp + " " + line
}

func (df *DataFormatter) FormatMessages(messages []DataMsg) []string {
	formatted := make([]string, len(messages))
	for i, msg := range messages {
		formatted[i] = df.FormatMessage(msg)
	}
	return formatted
}
