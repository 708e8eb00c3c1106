// Package main implements the confhub CLI: a host daemon plus one-shot
// client commands against a running host.
package main

import (
	"github.com/spf13/cobra"

	"confhub/internal/config"
	"confhub/internal/logging"
	"confhub/pkg/client"
)

var (
	flagConfig    string
	flagAuthority string
	flagDataDir   string
	flagSocketDir string
	flagLogLevel  string
	flagLogFormat string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "confhub",
	Short: "Share string key-value settings between processes on one device",
	Long: `Confhub lets independent processes on one device share a small set of
string key-value settings. One host process owns the canonical store and a
properties-file snapshot; clients talk to it over a unix socket and never
touch the file directly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}

		// Flags override config file values.
		if flagAuthority != "" {
			cfg.Host.Authority = flagAuthority
		}
		if flagDataDir != "" {
			cfg.Host.DataDir = flagDataDir
		}
		if flagSocketDir != "" {
			cfg.Host.SocketDir = flagSocketDir
		}
		if flagLogLevel != "" {
			cfg.Log.Level = flagLogLevel
		}
		if flagLogFormat != "" {
			cfg.Log.Format = flagLogFormat
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logging.Init(cfg.Log.Level, cfg.Log.Format)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to config file")
	pf.StringVar(&flagAuthority, "authority", "", "host authority name (overrides config)")
	pf.StringVar(&flagDataDir, "data-dir", "", "host data directory (overrides config)")
	pf.StringVar(&flagSocketDir, "socket-dir", "", "socket directory (overrides config)")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flagLogFormat, "log-format", "", "log format: text or json")
}

// newClient builds a client addressed to the configured authority's socket.
func newClient() *client.Client {
	return client.New(cfg.Host.Authority, cfg.SocketPath())
}
