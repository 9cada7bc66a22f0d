package serialkit

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// connState is either disconnected or connected; only connected carries a handle
type connState interface {
	isConnState()
}

type disconnected struct{}

type connected struct {
	handle Handle
}

func (disconnected) isConnState() {}
func (connected) isConnState()    {}

// Fetcher guards a single serial connection. All handle I/O runs under one mutex, so
// a command write and its response read are never interleaved with another caller.
type Fetcher struct {
	mu    sync.Mutex
	state connState

	config       Config
	responseSize int
	driver       Driver
	logger       *zap.Logger
}

// New creates a disconnected Fetcher for port at baudRate
func New(port string, baudRate int, opts ...Option) (*Fetcher, error) {
	s := defaultSettings(port, baudRate)
	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return nil, err
		}
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	driver := s.driver
	if driver == nil {
		driver = DefaultDriver()
	}

	return &Fetcher{
		state:        disconnected{},
		config:       s.config,
		responseSize: s.responseSize,
		driver:       driver,
		logger:       s.buildLogger().With(zap.String("port", s.config.Port)),
	}, nil
}

// Connect opens the serial port using the stored configuration
func (f *Fetcher) Connect() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.state.(connected); ok {
		return newError("connect", f.config.Port, ErrAlreadyConnected, nil)
	}

	f.logger.Debug("connecting",
		zap.Int("baudrate", f.config.BaudRate),
		zap.Duration("timeout", f.config.Timeout),
		zap.Stringer("parity", f.config.Parity),
		zap.Stringer("stopbits", f.config.StopBits),
		zap.Stringer("bytesize", f.config.ByteSize),
	)

	handle, err := f.driver.Open(f.config)
	if err != nil {
		f.logger.Debug("connect failed", zap.Error(err))
		return newError("connect", f.config.Port, ErrConnectFailed, err)
	}

	f.state = connected{handle: handle}
	f.logger.Debug("connected")
	return nil
}

// Disconnect closes the port. It is a no-op when not connected. The handle is released
// even if closing it fails.
func (f *Fetcher) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.state.(connected)
	if !ok {
		return nil
	}

	f.state = disconnected{}
	if err := c.handle.Close(); err != nil {
		f.logger.Warn("close failed", zap.Error(err))
		return newError("disconnect", f.config.Port, ErrDisconnectFailed, err)
	}

	f.logger.Debug("disconnected")
	return nil
}

// IsConnected reports whether a handle is currently open
func (f *Fetcher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.state.(connected)
	return ok
}

// handle returns the open handle; callers must hold f.mu
func (f *Fetcher) handle(op string) (Handle, error) {
	c, ok := f.state.(connected)
	if !ok {
		return nil, newError(op, f.config.Port, ErrNotConnected, nil)
	}
	return c.handle, nil
}

// ReadData performs a single read of up to size bytes. A read that times out returns
// an empty slice and no error, as does a zero size.
func (f *Fetcher) ReadData(size int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	h, err := f.handle("read")
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, newError("read", f.config.Port, ErrInvalidConfig,
			fmt.Errorf("read size must not be negative, got %d", size))
	}
	if size == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, size)
	n, err := h.Read(buf)
	if err != nil {
		return nil, newError("read", f.config.Port, ErrReadFailed, err)
	}

	f.logger.Debug("read", zap.Int("requested", size), zap.Int("bytes", n))
	return buf[:n], nil
}

// SendCommand writes command and returns the raw bytes of a single response read
func (f *Fetcher) SendCommand(command string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exchange(command)
}

// exchange runs one write/read cycle; callers must hold f.mu
func (f *Fetcher) exchange(command string) ([]byte, error) {
	h, err := f.handle("command")
	if err != nil {
		return nil, err
	}

	log := f.logger.With(zap.String("cycle", uuid.NewString()))
	data := []byte(command)

	n, err := h.Write(data)
	if err != nil {
		log.Debug("command write failed", zap.Error(err))
		return nil, newError("command", f.config.Port, ErrCommandFailed, err)
	}
	if n != len(data) {
		return nil, newError("command", f.config.Port, ErrCommandFailed,
			fmt.Errorf("short write: %d of %d bytes", n, len(data)))
	}
	log.Debug("command written", zap.Int("bytes", n))

	buf := make([]byte, f.responseSize)
	n, err = h.Read(buf)
	if err != nil {
		log.Debug("response read failed", zap.Error(err))
		return nil, newError("command", f.config.Port, ErrCommandFailed, err)
	}
	log.Debug("response read", zap.Int("bytes", n))

	return buf[:n], nil
}

// SendCommandParse runs a SendCommand cycle and returns parse applied to the response
func SendCommandParse[T any](f *Fetcher, command string, parse Parser[T]) (T, error) {
	var zero T

	f.mu.Lock()
	raw, err := f.exchange(command)
	f.mu.Unlock()
	if err != nil {
		return zero, err
	}

	v, err := parse(raw)
	if err != nil {
		return zero, newError("parse", f.config.Port, ErrParseFailed, err)
	}
	return v, nil
}

// Flush discards both the input and the output buffers of the port
func (f *Fetcher) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	h, err := f.handle("flush")
	if err != nil {
		return err
	}

	if err := h.ResetInputBuffer(); err != nil {
		return newError("flush", f.config.Port, ErrFlushFailed, err)
	}
	if err := h.ResetOutputBuffer(); err != nil {
		return newError("flush", f.config.Port, ErrFlushFailed, err)
	}

	f.logger.Debug("flushed")
	return nil
}

// Config returns a copy of the configuration. It never touches the handle.
func (f *Fetcher) Config() Config {
	return f.config
}

// ResponseSize is the number of bytes requested when reading a command response
func (f *Fetcher) ResponseSize() int {
	return f.responseSize
}

func (f *Fetcher) String() string {
	return fmt.Sprintf("Fetcher(port=%s, baudrate=%d, connected=%t)",
		f.config.Port, f.config.BaudRate, f.IsConnected())
}

// Help describes the Fetcher API with the receiver's current settings
func (f *Fetcher) Help() string {
	var b strings.Builder
	c := f.config

	fmt.Fprintf(&b, "Fetcher: serial connection on %s\n\n", c.Port)
	fmt.Fprintf(&b, "  baudrate  %d\n", c.BaudRate)
	fmt.Fprintf(&b, "  timeout   %v\n", c.Timeout)
	fmt.Fprintf(&b, "  framing   %s%s%s\n", c.ByteSize, strings.ToUpper(c.Parity.String()[:1]), c.StopBits)
	fmt.Fprintf(&b, "  response  %d bytes\n\n", f.responseSize)

	b.WriteString("Operations:\n")
	for _, line := range []string{
		"Connect()                      open the port",
		"Disconnect()                   close the port (no-op when closed)",
		"IsConnected()                  report connection state",
		"ReadData(size)                 read up to size bytes, empty on timeout",
		"SendCommand(cmd)               write cmd and read one response",
		"SendCommandParse(f, cmd, p)    same, returning p(response)",
		"Flush()                        discard input and output buffers",
		"Config()                       configuration snapshot",
		"ListPorts()                    serial ports present on this host",
	} {
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

// ListPorts returns the serial ports present on this host, sorted
func ListPorts() ([]string, error) {
	return ListPortsWith(DefaultDriver())
}

// ListPortsWith enumerates ports through d
func ListPortsWith(d Driver) ([]string, error) {
	ports, err := d.Ports()
	if err != nil {
		return nil, newError("list", "", ErrEnumerationFailed, err)
	}
	if ports == nil {
		ports = []string{}
	}
	return ports, nil
}
