/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"github.com/allbin/serialkit/internal/tui/components"
	"github.com/allbin/serialkit/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen [port]",
	Short: "Listen for data on a serial port with real-time display",
	Long: `Listen for incoming data on a serial port with a real-time TUI display.

Nothing is sent; the port is read repeatedly and everything received is shown.
Features include:
- Real-time data with timestamps
- ASCII and hex display modes
- Pause (space) without dropping the byte counters

Example usage:
  serialkit listen /dev/ttyUSB0
  serialkit listen /dev/ttyUSB0 --baud 9600 --no-timestamps
  serialkit listen -p /dev/ttyACM0 --timeout 100ms --size 64`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		noTimestamps, _ := cmd.Flags().GetBool("no-timestamps")
		hexOnly, _ := cmd.Flags().GetBool("hex")
		size, _ := cmd.Flags().GetInt("size")

		f, err := newFetcher(portFromArgs(args, 0))
		exitOnError(err)

		m := models.NewListenModel(f, models.ListenOptions{
			ReadSize: size,
			Display: components.DisplayMode{
				ShowHex:        hexOnly,
				ShowASCII:      !hexOnly,
				ShowTimestamps: !noTimestamps,
			},
		})
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()

		f.Disconnect()
		exitOnError(tuiError(err, m))
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().Bool("no-timestamps", false, "Hide timestamps from output")
	listenCmd.Flags().BoolP("hex", "x", false, "Show hex instead of ASCII")
	listenCmd.Flags().Int("size", 0, "Maximum bytes per read (default: --response-size)")
}
