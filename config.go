package serialkit

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	default:
		return fmt.Sprintf("Parity(%d)", int(p))
	}
}

// ParseParity accepts none/odd/even and their single letter forms N/O/E
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "n":
		return ParityNone, nil
	case "odd", "o":
		return ParityOdd, nil
	case "even", "e":
		return ParityEven, nil
	}
	return 0, invalidConfig("unknown parity %q", s)
}

// StopBits represents the number of stop bits
type StopBits int

const (
	StopBitsOne StopBits = iota
	StopBitsTwo
)

func (s StopBits) String() string {
	switch s {
	case StopBitsOne:
		return "1"
	case StopBitsTwo:
		return "2"
	default:
		return fmt.Sprintf("StopBits(%d)", int(s))
	}
}

// ParseStopBits accepts 1, 2, one or two
func ParseStopBits(s string) (StopBits, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "1", "one":
		return StopBitsOne, nil
	case "2", "two":
		return StopBitsTwo, nil
	}
	return 0, invalidConfig("unknown stop bits %q", s)
}

// ByteSize is the number of data bits per character (5-8)
type ByteSize int

const (
	ByteSize5 ByteSize = 5
	ByteSize6 ByteSize = 6
	ByteSize7 ByteSize = 7
	ByteSize8 ByteSize = 8
)

func (b ByteSize) String() string {
	return strconv.Itoa(int(b))
}

func (b ByteSize) valid() bool {
	return b >= ByteSize5 && b <= ByteSize8
}

// ParseByteSize accepts "5" through "8"
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ByteSize8, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || !ByteSize(n).valid() {
		return 0, invalidConfig("unknown byte size %q", s)
	}
	return ByteSize(n), nil
}

// Config is the serial line configuration of a Fetcher. It is fixed at construction.
type Config struct {
	Port     string
	BaudRate int
	Timeout  time.Duration
	Parity   Parity
	StopBits StopBits
	ByteSize ByteSize
}

const (
	DefaultTimeout      = time.Second
	DefaultResponseSize = 1024
)

// settings is everything an Option can touch; Config is the public part of it
type settings struct {
	config       Config
	responseSize int
	logLevel     *zapcore.Level
	logger       *zap.Logger
	driver       Driver
}

func defaultSettings(port string, baudRate int) settings {
	return settings{
		config: Config{
			Port:     port,
			BaudRate: baudRate,
			Timeout:  DefaultTimeout,
			Parity:   ParityNone,
			StopBits: StopBitsOne,
			ByteSize: ByteSize8,
		},
		responseSize: DefaultResponseSize,
	}
}

func (s *settings) validate() error {
	if s.config.Port == "" {
		return invalidConfig("port is required")
	}
	if s.config.BaudRate <= 0 {
		return invalidConfig("%w %d", ErrInvalidBaudRate, s.config.BaudRate)
	}
	return nil
}

// Option is a functional option for configuring a Fetcher
type Option func(*settings) error

// WithTimeout sets the read timeout. Zero makes reads return immediately with whatever
// is already buffered.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) error {
		if timeout < 0 {
			return invalidConfig("negative timeout %v", timeout)
		}
		s.config.Timeout = timeout
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(s *settings) error {
		switch parity {
		case ParityNone, ParityOdd, ParityEven:
		default:
			return invalidConfig("unknown parity %d", int(parity))
		}
		s.config.Parity = parity
		return nil
	}
}

// WithStopBits sets the number of stop bits
func WithStopBits(bits StopBits) Option {
	return func(s *settings) error {
		if bits != StopBitsOne && bits != StopBitsTwo {
			return invalidConfig("unknown stop bits %d", int(bits))
		}
		s.config.StopBits = bits
		return nil
	}
}

// WithByteSize sets the number of data bits (5, 6, 7, or 8)
func WithByteSize(size ByteSize) Option {
	return func(s *settings) error {
		if !size.valid() {
			return invalidConfig("byte size %d out of range 5-8", int(size))
		}
		s.config.ByteSize = size
		return nil
	}
}

// WithResponseSize sets how many bytes SendCommand asks the driver for when reading
// the response
func WithResponseSize(size int) Option {
	return func(s *settings) error {
		if size <= 0 {
			return invalidConfig("response size must be positive, got %d", size)
		}
		s.responseSize = size
		return nil
	}
}

// WithLogLevel sets the verbosity of the Fetcher's diagnostics. Without WithLogger a
// console logger writing to stderr is created at this level.
func WithLogLevel(level zapcore.Level) Option {
	return func(s *settings) error {
		s.logLevel = &level
		return nil
	}
}

// WithLogger routes diagnostics to logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			return invalidConfig("nil logger")
		}
		s.logger = logger
		return nil
	}
}

// WithDriver replaces the go.bug.st/serial backed driver
func WithDriver(d Driver) Option {
	return func(s *settings) error {
		if d == nil {
			return invalidConfig("nil driver")
		}
		s.driver = d
		return nil
	}
}

func (s *settings) buildLogger() *zap.Logger {
	switch {
	case s.logger != nil && s.logLevel != nil:
		return s.logger.WithOptions(zap.IncreaseLevel(*s.logLevel))
	case s.logger != nil:
		return s.logger
	case s.logLevel != nil:
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(*s.logLevel)
		cfg.DisableStacktrace = true
		logger, err := cfg.Build()
		if err != nil {
			return zap.NewNop()
		}
		return logger
	default:
		return zap.NewNop()
	}
}
