// Package settings resolves the serialkit command line configuration from flags,
// SERIALKIT_* environment variables and an optional YAML file.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allbin/serialkit"
	"github.com/allbin/serialkit/internal/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const EnvPrefix = "SERIALKIT"

// Settings is the resolved configuration of a command invocation
type Settings struct {
	Port         string         `mapstructure:"port"`
	Baud         int            `mapstructure:"baud"`
	Timeout      time.Duration  `mapstructure:"timeout"`
	Parity       string         `mapstructure:"parity"`
	StopBits     string         `mapstructure:"stopbits"`
	ByteSize     string         `mapstructure:"bytesize"`
	ResponseSize int            `mapstructure:"response_size"`
	Log          logging.Config `mapstructure:"log"`
}

// flag name -> viper key
var bindings = map[string]string{
	"port":            "port",
	"baud":            "baud",
	"timeout":         "timeout",
	"parity":          "parity",
	"stopbits":        "stopbits",
	"bytesize":        "bytesize",
	"response-size":   "response_size",
	"log-level":       "log.level",
	"log-format":      "log.format",
	"log-file":        "log.output",
	"log-max-size":    "log.max_size",
	"log-max-backups": "log.max_backups",
	"log-max-age":     "log.max_age",
	"log-compress":    "log.compress",
}

// Register defines the connection and logging flags on flags and binds them to v
func Register(flags *pflag.FlagSet, v *viper.Viper) error {
	logDefaults := logging.DefaultConfig()

	flags.StringP("port", "p", "", "Serial port (e.g. /dev/ttyUSB0, COM3)")
	flags.IntP("baud", "b", 9600, "Baud rate")
	flags.Duration("timeout", serialkit.DefaultTimeout, "Read timeout (0 = return immediately)")
	flags.String("parity", "none", "Parity: none, odd, even")
	flags.String("stopbits", "1", "Stop bits: 1, 2")
	flags.String("bytesize", "8", "Data bits: 5, 6, 7, 8")
	flags.Int("response-size", serialkit.DefaultResponseSize, "Bytes requested when reading a command response")
	flags.String("log-level", logDefaults.Level, "Log level: debug, info, warn, error")
	flags.String("log-format", logDefaults.Format, "Log format: console, json")
	flags.String("log-file", logDefaults.Output, "Log destination: stderr, stdout or a file path (rotated)")
	flags.Int("log-max-size", logDefaults.MaxSize, "Rotate the log file after this many megabytes")
	flags.Int("log-max-backups", logDefaults.MaxBackups, "Rotated log files to keep")
	flags.Int("log-max-age", logDefaults.MaxAge, "Days to keep rotated log files")
	flags.Bool("log-compress", false, "Gzip rotated log files")

	for name, key := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return nil
}

// ReadConfigFile loads path, or .serialkit.yaml from the home or working directory
// when path is empty. A missing default file is not an error.
func ReadConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".serialkit")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load resolves the settings held by v
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}

// ConfigFile returns the file v was loaded from, if any
func ConfigFile(v *viper.Viper) string {
	if f := v.ConfigFileUsed(); f != "" {
		return filepath.Clean(f)
	}
	return ""
}

// Options converts the serial settings to Fetcher options
func (s Settings) Options() ([]serialkit.Option, error) {
	parity, err := serialkit.ParseParity(s.Parity)
	if err != nil {
		return nil, err
	}
	stopBits, err := serialkit.ParseStopBits(s.StopBits)
	if err != nil {
		return nil, err
	}
	byteSize, err := serialkit.ParseByteSize(s.ByteSize)
	if err != nil {
		return nil, err
	}

	opts := []serialkit.Option{
		serialkit.WithTimeout(s.Timeout),
		serialkit.WithParity(parity),
		serialkit.WithStopBits(stopBits),
		serialkit.WithByteSize(byteSize),
	}
	if s.ResponseSize != 0 {
		opts = append(opts, serialkit.WithResponseSize(s.ResponseSize))
	}
	return opts, nil
}

// NewFetcher builds a disconnected Fetcher from the settings
func (s Settings) NewFetcher(logger *zap.Logger, extra ...serialkit.Option) (*serialkit.Fetcher, error) {
	if s.Port == "" {
		return nil, errors.New("no serial port given: use --port or SERIALKIT_PORT")
	}

	opts, err := s.Options()
	if err != nil {
		return nil, err
	}
	if logger != nil {
		opts = append(opts, serialkit.WithLogger(logger))
	}
	opts = append(opts, extra...)

	return serialkit.New(s.Port, s.Baud, opts...)
}
