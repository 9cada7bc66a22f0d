/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/allbin/serialkit/internal/tui/components"
	"github.com/allbin/serialkit/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:     "console [port]",
	Aliases: []string{"connect"},
	Short:   "Interactive command/response console",
	Long: `Open an interactive console on a serial port.

Every line entered is sent as one command and the single response read that
follows it is shown below it. Features include:
- Timestamps with TX/RX indicators and per-command status
- ASCII and hex display modes
- ASCII or hex command entry (Tab to toggle)
- Command history (up/down)
- Traffic counters in the status bar

Keys: i insert mode, esc normal mode, h/a/t toggle hex/ascii/timestamps,
c clear, g/G top/follow, ? help, q quit.

Example usage:
  serialkit console /dev/ttyUSB0
  serialkit console /dev/ttyUSB0 --baud 115200 --eol crlf
  serialkit console -p /dev/ttyACM0 --hex`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eol, _ := cmd.Flags().GetString("eol")
		hexInput, _ := cmd.Flags().GetBool("hex")

		lineEnding, err := parseLineEnding(eol)
		exitOnError(err)

		f, err := newFetcher(portFromArgs(args, 0))
		exitOnError(err)

		opts := models.ConsoleOptions{
			LineEnding: lineEnding,
			Display:    components.DisplayMode{ShowHex: true, ShowASCII: true, ShowTimestamps: true},
		}
		if hexInput {
			opts.SendingMode = components.SendingModeHex
		}

		m := models.NewConsoleModel(f, opts)
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()

		// the model disconnects on quit; this covers a program error
		f.Disconnect()
		exitOnError(tuiError(err, m))
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().String("eol", "lf", "Line ending appended to ASCII commands: lf, cr, crlf, none")
	consoleCmd.Flags().BoolP("hex", "x", false, "Start in hex entry mode")
}

func parseLineEnding(name string) (string, error) {
	switch name {
	case "lf", "":
		return "\n", nil
	case "cr":
		return "\r", nil
	case "crlf":
		return "\r\n", nil
	case "none":
		return "", nil
	}
	return "", fmt.Errorf("unknown line ending %q (use lf, cr, crlf or none)", name)
}
