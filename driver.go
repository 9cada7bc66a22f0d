package serialkit

import (
	"errors"
	"fmt"
	"sort"

	"go.bug.st/serial"
)

// Handle is an open connection to a serial device. go.bug.st/serial.Port satisfies it.
type Handle interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	ResetInputBuffer() error
	ResetOutputBuffer() error
	Close() error
}

// Driver opens handles and enumerates the ports present on the host
type Driver interface {
	Open(config Config) (Handle, error)
	Ports() ([]string, error)
}

// Ensure serial.Port implements Handle at compile time
var _ Handle = (serial.Port)(nil)

// DefaultDriver returns the go.bug.st/serial backed driver
func DefaultDriver() Driver {
	return bugstDriver{}
}

type bugstDriver struct{}

func (bugstDriver) Open(config Config) (Handle, error) {
	mode, err := toMode(config)
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(config.Port, mode)
	if err != nil {
		return nil, mapPortError(err)
	}

	if err := port.SetReadTimeout(config.Timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	return port, nil
}

func (bugstDriver) Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	sort.Strings(ports)
	return ports, nil
}

// toMode converts a Config to the go.bug.st/serial mode struct
func toMode(config Config) (*serial.Mode, error) {
	mode := &serial.Mode{
		BaudRate: config.BaudRate,
		DataBits: int(config.ByteSize),
	}

	switch config.Parity {
	case ParityNone:
		mode.Parity = serial.NoParity
	case ParityOdd:
		mode.Parity = serial.OddParity
	case ParityEven:
		mode.Parity = serial.EvenParity
	default:
		return nil, fmt.Errorf("unsupported parity %v", config.Parity)
	}

	switch config.StopBits {
	case StopBitsOne:
		mode.StopBits = serial.OneStopBit
	case StopBitsTwo:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("unsupported stop bits %v", config.StopBits)
	}

	return mode, nil
}

// mapPortError attaches the package sentinels to the driver's error codes
func mapPortError(err error) error {
	var portErr *serial.PortError
	if !errors.As(err, &portErr) {
		return err
	}

	switch portErr.Code() {
	case serial.PortNotFound:
		return fmt.Errorf("%w: %w", ErrDeviceNotFound, err)
	case serial.PermissionDenied:
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case serial.PortBusy:
		return fmt.Errorf("%w: %w", ErrDeviceInUse, err)
	default:
		return err
	}
}
