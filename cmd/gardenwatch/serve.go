package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/gardenwatch"
	"github.com/jpalmerr/gardenwatch/config"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd starts the dashboard server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Mirror the garden to a browser dashboard",
	Long: `Start the gardenwatch dashboard server.

The server will:
  - Load configuration from the specified YAML file
  - Start polling the garden server
  - Serve the dashboard UI and Prometheus metrics on the configured port

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  gardenwatch serve -c garden.yaml
  gardenwatch serve --config /etc/gardenwatch/garden.yaml --env-file .env`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	gw, err := loadGardenWatch(cmd, logger)
	if err != nil {
		return err
	}

	logger.Info("starting server",
		"port", gw.Port(),
		"poll_interval", gw.PollingInterval().String(),
	)

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runUntilDone(ctx, logger, gw.Start)
}

// loadGardenWatch loads the --config file and builds a GardenWatch from it.
func loadGardenWatch(cmd *cobra.Command, logger *slog.Logger, extra ...gardenwatch.Option) (*gardenwatch.GardenWatch, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"server_url", cfg.ServerURL,
		"failure_threshold", cfg.FailureThreshold,
		"reset_policy", cfg.ResetPolicy,
	)

	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build options: %w", err)
	}
	opts = append(opts, gardenwatch.WithLogger(logger))
	opts = append(opts, extra...)

	gw, err := gardenwatch.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gardenwatch: %w", err)
	}
	return gw, nil
}

// runUntilDone runs fn until ctx is cancelled, then allows shutdownTimeout
// for it to return.
func runUntilDone(ctx context.Context, logger *slog.Logger, fn func(context.Context) error) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- fn(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
