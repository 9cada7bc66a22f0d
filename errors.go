package serialkit

import (
	"errors"
	"fmt"
)

// Error kinds carried by FetchError. Match them with errors.Is.
var (
	ErrInvalidConfig     = errors.New("invalid serial configuration")
	ErrInvalidBaudRate   = errors.New("invalid baudrate")
	ErrAlreadyConnected  = errors.New("already connected")
	ErrNotConnected      = errors.New("not connected")
	ErrConnectFailed     = errors.New("failed to connect")
	ErrDisconnectFailed  = errors.New("failed to disconnect")
	ErrCommandFailed     = errors.New("error in command-response")
	ErrReadFailed        = errors.New("failed to read")
	ErrFlushFailed       = errors.New("failed to flush buffers")
	ErrParseFailed       = errors.New("failed to parse response")
	ErrEnumerationFailed = errors.New("failed to enumerate serial ports")

	// Driver level causes, wrapped inside ErrConnectFailed when the driver reports them
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")
)

// FetchError is the single error type returned by Fetcher operations.
//
// Kind is one of the Err* sentinels above and Err is the underlying cause, if any.
// errors.Is matches against both.
type FetchError struct {
	Op   string
	Port string
	Kind error
	Err  error
}

func (e *FetchError) Error() string {
	msg := "serialkit: " + e.Op
	if e.Port != "" {
		msg += " " + e.Port
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op, port string, kind, cause error) *FetchError {
	return &FetchError{Op: op, Port: port, Kind: kind, Err: cause}
}

func invalidConfig(format string, args ...any) error {
	return &FetchError{Op: "configure", Kind: ErrInvalidConfig, Err: fmt.Errorf(format, args...)}
}
