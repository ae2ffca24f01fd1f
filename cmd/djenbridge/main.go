package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/djenbridge/internal/config"
	"github.com/crimson-sun/djenbridge/internal/logging"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "djenbridge",
		Short:         "DJEN court notifications, normalized for LLMs",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("DJEN_CONFIG"), "YAML config file (env DJEN_CONFIG)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(courtsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "djenbridge:", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the optional file, then the environment, applies
// override, validates, and initializes logging.
func loadConfig(resultsOnStdout bool, override func(*config.Config)) (config.Config, error) {
	cfg := config.Load()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadFile(configPath); err != nil {
			return config.Config{}, err
		}
	}
	if override != nil {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration:\n%w", err)
	}
	logging.Init(resultsOnStdout, logging.ParseLevel(cfg.LogLevel))
	return cfg, nil
}
