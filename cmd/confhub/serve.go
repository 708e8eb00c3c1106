package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"confhub/internal/logging"
	"confhub/internal/props"
	"confhub/internal/server"
	"confhub/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the host that owns the canonical store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.For("main")

		dataDir := filepath.Dir(cfg.FilePath())
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return err
		}

		enc, err := props.ParseEncoding(cfg.Host.Encoding)
		if err != nil {
			return err
		}

		// A store that cannot initialize degrades the host to no-op
		// responses instead of keeping it from starting.
		st, err := store.Open(cfg.FilePath(), enc)
		if err != nil {
			logger.Error("store unavailable, serving degraded", "err", err)
			st = nil
		}

		srv := server.New(cfg.Host.Authority, cfg.SocketPath(), st)
		if err := srv.Listen(); err != nil {
			return err
		}
		logger.Info("listening",
			"authority", cfg.Host.Authority,
			"socket", srv.SocketPath(),
			"degraded", srv.Degraded(),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		err = srv.Serve(ctx)
		logger.Info("shut down")
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
