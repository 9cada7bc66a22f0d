/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/allbin/serialkit"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List all serial ports present on the system, sorted by name.

Examples:
  serialkit list
  serialkit list --filter usb
  serialkit list --table`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := serialkit.ListPorts()
		exitOnError(err)

		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")

		infos := describePorts(ports, serialkit.GetPortInfo)
		filtered, err := filterPorts(infos, filterType)
		exitOnError(err)

		if len(filtered) == 0 {
			if filterType != "" && filterType != "all" {
				fmt.Printf("No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Println("No serial ports found")
			}
			return
		}

		if tableFormat {
			fmt.Printf("Found %d serial port(s):\n", len(filtered))
			fmt.Println(portTable(filtered))
		} else {
			renderSimple(os.Stdout, filtered)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, arm, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

// describePorts resolves PortInfo for every port; ports that cannot be described keep only their path
func describePorts(ports []string, info func(string) (*serialkit.PortInfo, error)) []serialkit.PortInfo {
	infos := make([]serialkit.PortInfo, 0, len(ports))
	for _, port := range ports {
		pi, err := info(port)
		if err != nil {
			logger.Debug("port info unavailable", zap.String("port", port), zap.Error(err))
			pi = &serialkit.PortInfo{Path: port, Name: filepath.Base(port), Description: "Serial Port"}
		}
		infos = append(infos, *pi)
	}
	return infos
}

// filterPorts keeps the ports of the requested type
func filterPorts(ports []serialkit.PortInfo, filterType string) ([]serialkit.PortInfo, error) {
	filterType = strings.ToLower(filterType)
	switch filterType {
	case "", "all":
		return ports, nil
	case "usb", "standard", "arm":
	default:
		return nil, fmt.Errorf("unknown filter %q (use usb, standard, arm or all)", filterType)
	}

	var filtered []serialkit.PortInfo
	for _, p := range ports {
		name := strings.ToLower(p.Name)
		var match bool
		switch filterType {
		case "usb":
			match = p.IsUSB || strings.HasPrefix(name, "ttyusb") || strings.HasPrefix(name, "ttyacm")
		case "standard":
			match = strings.HasPrefix(name, "ttys") && !strings.HasPrefix(name, "ttysac")
		case "arm":
			match = strings.HasPrefix(name, "ttyama")
		}
		if match {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func portTable(ports []serialkit.PortInfo) string {
	columns := []table.Column{
		table.NewColumn("port", "Port", 18),
		table.NewColumn("type", "Type", 16),
		table.NewColumn("description", "Description", 24),
		table.NewColumn("usb", "VID:PID", 10),
		table.NewColumn("access", "Access", 8),
	}

	rows := make([]table.Row, 0, len(ports))
	for _, p := range ports {
		usb := ""
		if p.IsUSB {
			usb = p.VendorID + ":" + p.ProductID
		}
		access := "no"
		if p.Accessible {
			access = "rw"
		}
		rows = append(rows, table.NewRow(table.RowData{
			"port":        p.Name,
			"type":        getPortType(p.Name),
			"description": p.Description,
			"usb":         usb,
			"access":      access,
		}))
	}
	return renderTable(columns, rows)
}

func renderSimple(w io.Writer, ports []serialkit.PortInfo) {
	for _, p := range ports {
		fmt.Fprintln(w, p.Path)
	}
}

// getPortType returns a more specific type classification for the port
func getPortType(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "ttyusb"):
		return "USB Serial"
	case strings.HasPrefix(name, "ttyacm"):
		return "USB CDC/ACM"
	case strings.HasPrefix(name, "ttyama"):
		return "ARM Serial"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial"
	case strings.HasPrefix(name, "ttysac"):
		return "Samsung Serial"
	case strings.HasPrefix(name, "ttyths"):
		return "Tegra Serial"
	case strings.HasPrefix(name, "ttyo"):
		return "OMAP Serial"
	case strings.HasPrefix(name, "ttys"):
		return "Standard Serial"
	case strings.HasPrefix(name, "cu."), strings.HasPrefix(name, "tty."):
		return "macOS Serial"
	case strings.HasPrefix(name, "com"):
		return "COM Port"
	default:
		return "Serial Port"
	}
}
