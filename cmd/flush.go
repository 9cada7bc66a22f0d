/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/allbin/serialkit/internal/tui/styles"
	"github.com/spf13/cobra"
)

// flushCmd represents the flush command
var flushCmd = &cobra.Command{
	Use:   "flush [port]",
	Short: "Discard buffered input and output",
	Long: `Open the port and discard everything waiting in its input and output buffers.

Example usage:
  serialkit flush /dev/ttyUSB0`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := openFetcher(portFromArgs(args, 0))
		exitOnError(err)
		defer f.Disconnect()

		exitOnError(f.Flush())
		fmt.Printf("%s Flushed %s\n", styles.SuccessStyle.Render("✓"), f.Config().Port)
	},
}

func init() {
	rootCmd.AddCommand(flushCmd)
}
