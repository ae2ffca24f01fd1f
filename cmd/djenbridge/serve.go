package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/djenbridge/internal/app"
	"github.com/crimson-sun/djenbridge/internal/config"
	"github.com/crimson-sun/djenbridge/internal/server"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /intimations, /courts, /health and /metrics over HTTP",
		Long: `Start the HTTP server.

Examples:
  djenbridge serve
  djenbridge serve --addr :9000
  DJEN_CONNECTOR=static djenbridge serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(false, func(c *config.Config) {
				if addr != "" {
					c.Server.Addr = addr
				}
			})
			if err != nil {
				return err
			}
			a, err := app.Build(cfg)
			if err != nil {
				return err
			}

			slog.Info("djenbridge starting",
				"version", config.Version,
				"connector", cfg.Connector.Provider,
				"rules", a.Taxonomy.Version(),
			)
			srv := server.New(a.Adapter, server.Config{
				Addr:            cfg.Server.Addr,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.ShutdownTimeout,
				Version:         config.Version,
			})
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (env DJEN_ADDR, default :8000)")
	return cmd
}
