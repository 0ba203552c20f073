// Itpctl decodes, builds and sniffs ITP frames exchanged between heat pumps,
// wall thermostats and bridge controllers.
//
// The ITP bus is a 2400 baud 8E1 UART link. Each frame is
//
//	FC <type> 01 30 <len> <payload...> <checksum>
//
// itpctl decodes frames given as hex, builds request frames and watches a
// live serial port, optionally re-broadcasting every packet to WebSocket
// observers advertised over mDNS. Tap captures can be decoded again later
// with "itpctl replay".
//
// Usage:
//
//	itpctl [command] [flags]
//
// See 'itpctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/itpctl/internal/config"
	"github.com/muurk/itpctl/internal/logging"
	"github.com/muurk/itpctl/internal/version"
)

var (
	logLevel   string
	configPath string
)

func main() {
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "itpctl",
	Short: "ITP heat pump / thermostat protocol tool",
	Long: `A tool for the ITP serial protocol spoken between heat pumps,
wall thermostats and bridge controllers.

Decode captured frames, build request frames, and sniff a live bus from a
serial adapter. Sniffed packets can be served to WebSocket observers and
announced on the local network over mDNS.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (default: $"+logging.LogLevelEnvVar+" or silent)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default: $"+config.ConfigPathEnvVar+" or the user config dir)")
}

// setupLogging picks the level from --log-level, then ITP_LOG_LEVEL, then
// the config file.
func setupLogging() error {
	level := logLevel
	if level == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
		if cfg, err := loadConfig(); err == nil && cfg.Logging != nil {
			level = cfg.Logging.Level
		}
	}
	return logging.Initialize(level)
}

// loadConfig reads the file named by --config, or the default location
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

// resolveConfigPath returns where loadConfig reads from
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}
