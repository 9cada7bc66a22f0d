/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allbin/serialkit"
	"github.com/spf13/cobra"
)

// idlePoll spaces reads when the port is non-blocking (--timeout 0)
const idlePoll = 50 * time.Millisecond

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read [port]",
	Short: "Read data from a serial port",
	Long: `Read data from a serial port without sending anything.

By default a single read of up to --size bytes is performed; nothing is printed when
the read times out. With --follow, reads repeat until interrupted (Ctrl+C).

Example usage:
  serialkit read /dev/ttyUSB0 --size 64
  serialkit read -p /dev/ttyACM0 --follow --timeout 100ms`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		size, _ := cmd.Flags().GetInt("size")
		follow, _ := cmd.Flags().GetBool("follow")

		f, err := openFetcher(portFromArgs(args, 0))
		exitOnError(err)
		defer f.Disconnect()

		if !follow {
			data, err := f.ReadData(size)
			exitOnError(err)
			if len(data) == 0 {
				reportNoResponse()
				return
			}
			os.Stdout.Write(data)
			return
		}

		ctx, cancel := interruptContext()
		defer cancel()

		fmt.Fprintf(os.Stderr, "Reading from %s, press Ctrl+C to stop\n", f.Config().Port)
		exitOnError(readLoop(ctx, f, size, func(data []byte) error {
			_, err := os.Stdout.Write(data)
			return err
		}))
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().Int("size", serialkit.DefaultResponseSize, "Maximum bytes per read")
	readCmd.Flags().BoolP("follow", "f", false, "Keep reading until interrupted")
}

// interruptContext is cancelled on Ctrl+C or SIGTERM
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, shutting down...\n")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// readLoop calls ReadData until ctx is done and hands every non-empty result to sink
func readLoop(ctx context.Context, f *serialkit.Fetcher, size int, sink func([]byte) error) error {
	if size <= 0 {
		return fmt.Errorf("--size must be positive when following, got %d", size)
	}
	nonBlocking := f.Config().Timeout == 0

	for ctx.Err() == nil {
		data, err := f.ReadData(size)
		if err != nil {
			return err
		}

		if len(data) == 0 {
			if nonBlocking {
				select {
				case <-ctx.Done():
				case <-time.After(idlePoll):
				}
			}
			continue
		}

		if err := sink(data); err != nil {
			return err
		}
	}
	return nil
}
