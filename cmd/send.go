/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/allbin/serialkit"
	"github.com/allbin/serialkit/internal/tui/components"
	"github.com/allbin/serialkit/internal/tui/styles"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var parserNames = []string{"raw", "text", "lines", "kv", "hex"}

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [command] [port]",
	Short: "Send a command and print the response",
	Long: `Send one command to a serial device and print its response.

The command is written, then a single response read of --response-size bytes is
performed. An empty response means the device did not answer within --timeout.

The command can be provided as:
- Command line argument: serialkit send "VER" /dev/ttyUSB0 --newline
- From stdin (pipe): echo "VER" | serialkit send --port /dev/ttyUSB0
- Interactive mode: serialkit send --port /dev/ttyUSB0 (prompts for input)

The response can be printed as:
  raw    bytes exactly as received (default)
  text   trimmed text
  lines  one line per response line
  kv     "key=value" / "key: value" lines as YAML
  hex    space separated hex bytes

Example usage:
  serialkit send "AT+GMR" /dev/ttyUSB0 --newline
  serialkit send "0206000300000099" --hex --parser hex -p /dev/ttyACM0
  serialkit send "STATUS" --newline --parser kv`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		addNewline, _ := cmd.Flags().GetBool("newline")
		hexMode, _ := cmd.Flags().GetBool("hex")
		parser, _ := cmd.Flags().GetString("parser")
		flushFirst, _ := cmd.Flags().GetBool("flush")

		if !validParser(parser) {
			exitOnError(fmt.Errorf("unknown parser %q (use %s)", parser, strings.Join(parserNames, ", ")))
		}

		var data string
		if len(args) > 0 {
			data = args[0]
		} else {
			input, err := readCommandInput(os.Stdin)
			exitOnError(err)
			data = input
		}

		payload, err := buildPayload(data, hexMode, addNewline)
		exitOnError(err)

		f, err := openFetcher(portFromArgs(args, 1))
		exitOnError(err)
		defer f.Disconnect()

		if flushFirst {
			exitOnError(f.Flush())
		}

		fmt.Fprintf(os.Stderr, "%s %s: sending %d bytes\n", styles.InfoStyle.Render("⚡"), f.Config().Port, len(payload))
		exitOnError(runSend(os.Stdout, f, payload, parser))
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolP("newline", "n", false, "Add newline character to the end of the command")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret the command as hexadecimal (e.g., '48656c6c6f' for 'Hello')")
	sendCmd.Flags().String("parser", "raw", "Response format: "+strings.Join(parserNames, ", "))
	sendCmd.Flags().Bool("flush", false, "Discard buffered input and output before sending")
}

func validParser(name string) bool {
	for _, p := range parserNames {
		if p == name {
			return true
		}
	}
	return false
}

// readCommandInput reads the command from a pipe, or prompts for it on a terminal
func readCommandInput(stdin *os.File) (string, error) {
	stat, err := stdin.Stat()
	if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
		return promptForData(stdin), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func promptForData(r io.Reader) string {
	fmt.Fprint(os.Stderr, styles.InfoStyle.Render("Enter command to send: "))

	scanner := bufio.NewScanner(r)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

// buildPayload applies --hex and --newline to the command text
func buildPayload(data string, hexMode, addNewline bool) (string, error) {
	if hexMode {
		b, err := components.ParseHex(data)
		if err != nil {
			return "", fmt.Errorf("invalid hex data: %w", err)
		}
		return string(b), nil
	}
	if data == "" {
		return "", fmt.Errorf("nothing to send")
	}
	if addNewline {
		data += "\n"
	}
	return data, nil
}

// runSend performs one command cycle and writes the response to w in the requested format
func runSend(w io.Writer, f *serialkit.Fetcher, command, parser string) error {
	switch parser {
	case "raw":
		resp, err := f.SendCommand(command)
		if err != nil {
			return err
		}
		if len(resp) == 0 {
			reportNoResponse()
			return nil
		}
		_, err = w.Write(resp)
		return err

	case "text":
		text, err := serialkit.SendCommandParse(f, command, serialkit.Text)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, text)

	case "lines":
		lines, err := serialkit.SendCommandParse(f, command, serialkit.SplitLines)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			reportNoResponse()
		}
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}

	case "kv":
		values, err := serialkit.SendCommandParse(f, command, serialkit.KeyValues)
		if err != nil {
			return err
		}
		if len(values) == 0 {
			reportNoResponse()
			return nil
		}
		out, err := yaml.Marshal(values)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err

	case "hex":
		text, err := serialkit.SendCommandParse(f, command, serialkit.Hex)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, text)

	default:
		return fmt.Errorf("unknown parser %q (use %s)", parser, strings.Join(parserNames, ", "))
	}
	return nil
}

func reportNoResponse() {
	fmt.Fprintln(os.Stderr, styles.MutedStyle.Render("(no response before timeout)"))
}
