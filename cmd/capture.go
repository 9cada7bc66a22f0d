/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/allbin/serialkit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <output-file> [port]",
	Short: "Capture serial data to a file",
	Long: `Capture incoming serial data to a file for later parsing.

Reads from the serial port and writes everything received directly to the output
file. Runs continuously until interrupted (Ctrl+C).

The output file is opened in append mode, allowing you to resume captures
without overwriting existing data.

Example usage:
  serialkit capture data.log /dev/ttyUSB0
  serialkit capture output.txt -p /dev/ttyUSB0 --baud 9600
  serialkit capture capture.log /dev/ttyUSB0 --console`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		bufferSize, _ := cmd.Flags().GetInt("buffer")
		showConsole, _ := cmd.Flags().GetBool("console")

		f, err := openFetcher(portFromArgs(args, 1))
		exitOnError(err)
		defer f.Disconnect()

		file, err := os.OpenFile(args[0], os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		exitOnError(err)
		defer file.Close()

		ctx, cancel := interruptContext()
		defer cancel()

		fmt.Fprintf(os.Stderr, "Capturing data from %s to %s\n", f.Config().Port, args[0])
		if showConsole {
			fmt.Fprintf(os.Stderr, "Console display enabled\n")
		}
		fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

		var console io.Writer
		if showConsole {
			console = os.Stdout
		}

		start := time.Now()
		written, err := runCapture(ctx, f, file, console, bufferSize)
		fmt.Fprintf(os.Stderr, "\nCapture complete: %d bytes written in %v\n", written, time.Since(start).Round(time.Millisecond))
		exitOnError(err)
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().Int("buffer", 4096, "Read buffer size")
	captureCmd.Flags().BoolP("console", "c", false, "Display incoming data on console while capturing")
}

// runCapture appends everything read to out (and console when set) until ctx is done
func runCapture(ctx context.Context, f *serialkit.Fetcher, out, console io.Writer, bufferSize int) (int64, error) {
	var total int64

	err := readLoop(ctx, f, bufferSize, func(data []byte) error {
		n, err := out.Write(data)
		total += int64(n)
		if err != nil {
			return fmt.Errorf("write error: %w", err)
		}
		if console != nil {
			console.Write(data)
		}
		logger.Debug("captured", zap.Int("bytes", n), zap.Int64("total", total))
		return nil
	})
	return total, err
}
