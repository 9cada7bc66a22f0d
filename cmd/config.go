/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/allbin/serialkit"
	"github.com/allbin/serialkit/internal/settings"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [port]",
	Short: "Show the resolved connection configuration",
	Long: `Show the configuration a command would connect with, after merging flags,
SERIALKIT_* environment variables and the config file. The port is not opened.

Example usage:
  serialkit config /dev/ttyUSB0 -b 115200
  SERIALKIT_PORT=/dev/ttyACM0 serialkit config --output yaml
  serialkit config --describe`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		describe, _ := cmd.Flags().GetBool("describe")

		f, err := newFetcher(portFromArgs(args, 0))
		exitOnError(err)

		if describe {
			fmt.Println(f.Help())
			return
		}

		exitOnError(renderConfig(os.Stdout, describeConfig(f, settings.ConfigFile(v)), output))
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().StringP("output", "o", "table", "Output format: table, yaml")
	configCmd.Flags().Bool("describe", false, "Describe the adapter and its operations instead")
}

type configView struct {
	Port         string `yaml:"port"`
	BaudRate     int    `yaml:"baud"`
	Timeout      string `yaml:"timeout"`
	Parity       string `yaml:"parity"`
	StopBits     string `yaml:"stopbits"`
	ByteSize     string `yaml:"bytesize"`
	ResponseSize int    `yaml:"response_size"`
	ConfigFile   string `yaml:"config_file,omitempty"`
}

func describeConfig(f *serialkit.Fetcher, configFile string) configView {
	c := f.Config()
	return configView{
		Port:         c.Port,
		BaudRate:     c.BaudRate,
		Timeout:      c.Timeout.String(),
		Parity:       c.Parity.String(),
		StopBits:     c.StopBits.String(),
		ByteSize:     c.ByteSize.String(),
		ResponseSize: f.ResponseSize(),
		ConfigFile:   configFile,
	}
}

func renderConfig(w io.Writer, view configView, output string) error {
	switch output {
	case "yaml":
		return yaml.NewEncoder(w).Encode(view)
	case "table":
		rows := []table.Row{
			configRow("Port", view.Port),
			configRow("Baud rate", fmt.Sprint(view.BaudRate)),
			configRow("Timeout", view.Timeout),
			configRow("Parity", view.Parity),
			configRow("Stop bits", view.StopBits),
			configRow("Data bits", view.ByteSize),
			configRow("Response size", fmt.Sprint(view.ResponseSize)),
		}
		if view.ConfigFile != "" {
			rows = append(rows, configRow("Config file", view.ConfigFile))
		}
		_, err := fmt.Fprintln(w, renderTable([]table.Column{
			table.NewColumn("setting", "Setting", 16),
			table.NewColumn("value", "Value", 32),
		}, rows))
		return err
	default:
		return fmt.Errorf("unknown output format %q (use table or yaml)", output)
	}
}

func configRow(name, value string) table.Row {
	return table.NewRow(table.RowData{"setting": name, "value": value})
}
