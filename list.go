package serialkit

import (
	"os"
	"path/filepath"
	"strings"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes a serial port present on the host
type PortInfo struct {
	Name         string
	Path         string
	Description  string
	IsUSB        bool
	VendorID     string
	ProductID    string
	SerialNumber string
	Product      string
	Accessible   bool // current user can open the device read/write
}

// detailedPorts is swapped out in tests
var detailedPorts = enumerator.GetDetailedPortsList

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	details, err := detailedPorts()
	if err != nil {
		return nil, newError("info", portPath, ErrEnumerationFailed, err)
	}

	var match *enumerator.PortDetails
	for _, d := range details {
		if d.Name == portPath {
			match = d
			break
		}
	}

	if match == nil && !isCharacterDevice(portPath) {
		return nil, newError("info", portPath, ErrDeviceNotFound, nil)
	}

	name := filepath.Base(portPath)
	info := &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: getPortDescription(name),
		Accessible:  canOpen(portPath),
	}

	if match != nil && match.IsUSB {
		info.IsUSB = true
		info.VendorID = match.VID
		info.ProductID = match.PID
		info.SerialNumber = match.SerialNumber
		info.Product = match.Product
	}

	return info, nil
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// getPortDescription provides human-readable descriptions for different port types
func getPortDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	case strings.HasPrefix(name, "cu."), strings.HasPrefix(name, "tty."):
		return "macOS Serial Device"
	case strings.HasPrefix(strings.ToUpper(name), "COM"):
		return "Windows COM Port"
	default:
		return "Serial Port"
	}
}
