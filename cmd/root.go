/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/allbin/serialkit"
	"github.com/allbin/serialkit/internal/logging"
	"github.com/allbin/serialkit/internal/settings"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	v       = viper.New()

	// resolved in PersistentPreRunE
	current settings.Settings
	logger  = zap.NewNop()

	// testDriver replaces the go.bug.st/serial driver in tests
	testDriver serialkit.Driver
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serialkit",
	Short: "Talk to command/response serial devices",
	Long: `serialkit sends commands to serial devices and reads their responses.

Every connection setting can come from a flag, a SERIALKIT_* environment variable
(SERIALKIT_PORT, SERIALKIT_BAUD, SERIALKIT_LOG_LEVEL, ...) or a YAML config file
($HOME/.serialkit.yaml, or --config).

Example usage:
  serialkit list --table
  serialkit send "VER" --port /dev/ttyUSB0 --newline
  serialkit console /dev/ttyACM0 -b 115200
  serialkit listen /dev/ttyUSB0`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load(v)
		if err != nil {
			return err
		}
		current = s

		l, err := logging.New(s.Log)
		if err != nil {
			return err
		}
		logger = l.Named("serialkit")
		logger.Debug("settings resolved",
			zap.String("command", cmd.Name()),
			zap.String("config", settings.ConfigFile(v)),
			zap.String("port", s.Port),
			zap.Int("baud", s.Baud),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.serialkit.yaml)")
	if err := settings.Register(rootCmd.PersistentFlags(), v); err != nil {
		panic(err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := settings.ReadConfigFile(v, cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// portFromArgs lets a trailing positional argument override --port
func portFromArgs(args []string, index int) string {
	if len(args) > index {
		return args[index]
	}
	return current.Port
}

// newFetcher builds a disconnected Fetcher for port from the resolved settings
func newFetcher(port string) (*serialkit.Fetcher, error) {
	s := current
	s.Port = port

	var extra []serialkit.Option
	if testDriver != nil {
		extra = append(extra, serialkit.WithDriver(testDriver))
	}
	return s.NewFetcher(logger, extra...)
}

// openFetcher builds and connects a Fetcher
func openFetcher(port string) (*serialkit.Fetcher, error) {
	f, err := newFetcher(port)
	if err != nil {
		return nil, err
	}
	if err := f.Connect(); err != nil {
		return nil, err
	}
	return f, nil
}

// tuiError returns the program error, or else the error the model finished with
func tuiError(runErr error, m interface{ GetError() error }) error {
	if runErr != nil {
		return runErr
	}
	return m.GetError()
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
