package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devmarvs/pmboard/dashboard"
)

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard gateway",
		Long:  "Serves the dashboard JSON API in front of the backend until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if address != "" {
				cfg.Address = address
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := dashboard.Bootstrap(ctx, cfg, opts.logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			opts.logger.Info("gateway configured",
				slog.String("backend", rt.Backend.BaseURL()),
				slog.String("session_store", cfg.SessionStore),
				slog.Bool("tracing", cfg.Tracing),
			)
			return rt.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&address, "addr", "", "listen address (overrides config)")
	return cmd
}
