package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/gardenwatch"
	"github.com/jpalmerr/gardenwatch/example/mockgarden"
)

func main() {
	// in-process garden; toggled into an outage below
	garden := mockgarden.New()
	go func() {
		if err := http.ListenAndServe(":3000", garden.Handler()); err != nil {
			slog.Error("mock garden error", "error", err)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	gw, err := gardenwatch.New(
		gardenwatch.WithServerURL("http://localhost:3000"),
		gardenwatch.WithPollingInterval(125*time.Millisecond),
		gardenwatch.WithFailureThreshold(20),
		gardenwatch.WithTitle("Demo Garden"),
		gardenwatch.WithPort(8080),
		gardenwatch.WithCycleCallback(func(r gardenwatch.CycleResult) {
			if r.Outcome == gardenwatch.OutcomeDisconnected {
				slog.Warn("garden lost; press Reconnect in the dashboard",
					"failures", r.ConsecutiveFailures,
					"last_tick", r.Tick,
				)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create gardenwatch", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   gardenwatch Demo                                    ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   The garden goes down 20s in, long enough to         ║")
	fmt.Println("  ║   disconnect. Press Reconnect once it is back.        ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	time.AfterFunc(20*time.Second, func() {
		garden.SetOutage(true)
		time.AfterFunc(10*time.Second, func() { garden.SetOutage(false) })
	})

	if err := gw.Start(ctx); err != nil {
		slog.Error("gardenwatch error", "error", err)
		os.Exit(1)
	}
}
