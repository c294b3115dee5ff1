package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/gardenwatch/internal/render"
)

// watchCmd mirrors the garden to the terminal.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Mirror the garden to the terminal",
	Long: `Poll the garden server and print every change to the terminal.

No dashboard server is started. When the session disconnects a Reconnect
prompt is printed; press Enter to reconnect. Logs go to stderr.

Example:
  gardenwatch watch -c garden.yaml
  gardenwatch watch -c garden.yaml 2>/dev/null`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = watchCmd.MarkFlagRequired("config")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	gw, err := loadGardenWatch(cmd, logger)
	if err != nil {
		return err
	}

	console := render.NewConsoleRenderer(cmd.OutOrStdout())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go pressToActivate(ctx, os.Stdin, console)

	return runUntilDone(ctx, logger, func(ctx context.Context) error {
		return gw.Watch(ctx, console)
	})
}

// pressToActivate fires the pending control for every line read from in.
func pressToActivate(ctx context.Context, in io.Reader, console *render.ConsoleRenderer) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		console.ActivatePending()
	}
}
