package gardenwatch

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// gwConfig holds mutable state during GardenWatch construction.
type gwConfig struct {
	title            string
	serverURL        string
	pollingInterval  time.Duration
	requestTimeout   time.Duration
	failureThreshold int
	watcherID        bool
	requireCounts    bool
	resetPolicy      ResetPolicy
	port             int
	logger           *slog.Logger
	cycleCallbacks   []func(CycleResult)
	renderers        []Renderer
}

// Option is a function that configures a [GardenWatch] instance during
// construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*gwConfig) error

// WithServerURL sets the base URL of the garden server. Updates are fetched
// from <url>/api/getUpdates. Required.
//
// Example:
//
//	gw, err := gardenwatch.New(
//	    gardenwatch.WithServerURL("http://localhost:3000"),
//	)
//
// Returns an error if the URL is not an absolute http or https URL.
func WithServerURL(rawURL string) Option {
	return func(cfg *gwConfig) error {
		u, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("invalid server URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("server URL scheme must be http or https, got %q", u.Scheme)
		}
		if u.Host == "" {
			return errors.New("server URL must have a host")
		}
		cfg.serverURL = strings.TrimRight(rawURL, "/")
		return nil
	}
}

// WithPollingInterval sets the time between polling cycles.
//
// A cycle that is still waiting for its response when the next one is due
// causes that next one to be skipped, never overlapped. Defaults to 125ms.
//
// Returns an error if the duration is zero or negative.
func WithPollingInterval(d time.Duration) Option {
	return func(cfg *gwConfig) error {
		if d <= 0 {
			return errors.New("polling interval must be positive")
		}
		cfg.pollingInterval = d
		return nil
	}
}

// WithRequestTimeout bounds each update request. Zero disables the bound.
// Defaults to 10 seconds.
//
// Returns an error if the duration is negative.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *gwConfig) error {
		if d < 0 {
			return errors.New("request timeout cannot be negative")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithFailureThreshold sets how many consecutive failed cycles are tolerated.
// The first cycle after the streak exceeds n disconnects. Defaults to 50.
//
// Returns an error if n is less than 1.
func WithFailureThreshold(n int) Option {
	return func(cfg *gwConfig) error {
		if n < 1 {
			return errors.New("failure threshold must be at least 1")
		}
		cfg.failureThreshold = n
		return nil
	}
}

// WithWatcherID controls whether a random 16-hex-digit watcher ID is sent
// with every request so the server can count distinct watchers. The ID is
// generated once per run and kept across reconnects. Enabled by default.
func WithWatcherID(enabled bool) Option {
	return func(cfg *gwConfig) error {
		cfg.watcherID = enabled
		return nil
	}
}

// WithCounts controls whether numPlants and numWatchers must be present in
// every payload. When disabled they are rendered only if the server sends
// them. Required by default.
func WithCounts(required bool) Option {
	return func(cfg *gwConfig) error {
		cfg.requireCounts = required
		return nil
	}
}

// WithResetPolicy selects when a cycle clears the failure streak.
// Defaults to [ResetOnValidPayload].
//
// Returns an error for unknown policies.
func WithResetPolicy(p ResetPolicy) Option {
	return func(cfg *gwConfig) error {
		if p != ResetOnValidPayload && p != ResetOnReachable {
			return fmt.Errorf("unknown reset policy %s", p)
		}
		cfg.resetPolicy = p
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard server.
//
// The dashboard UI and API will be available at http://localhost:<port>.
// Defaults to 8080 if not specified. Ignored by [GardenWatch.Watch].
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *gwConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "Garden".
func WithTitle(title string) Option {
	return func(cfg *gwConfig) error {
		cfg.title = title
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the GardenWatch instance.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *gwConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithCycleCallback registers a function to be called after every cycle.
//
// Multiple callbacks may be registered; they execute in registration order.
//
// IMPORTANT: Callbacks run on the polling goroutine and must be
// non-blocking. A slow callback delays the next cycle.
//
// Panics within callbacks are recovered and logged.
//
// Example:
//
//	gw, err := gardenwatch.New(
//	    gardenwatch.WithServerURL(url),
//	    gardenwatch.WithCycleCallback(func(r gardenwatch.CycleResult) {
//	        if r.Outcome == gardenwatch.OutcomeDisconnected {
//	            log.Printf("lost the garden after %d failures", r.ConsecutiveFailures)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithCycleCallback(cb func(CycleResult)) Option {
	return func(cfg *gwConfig) error {
		if cb == nil {
			return nil
		}
		cfg.cycleCallbacks = append(cfg.cycleCallbacks, cb)
		return nil
	}
}

// WithRenderer adds a renderer that receives every view change alongside
// the dashboard (or alongside the renderer passed to [GardenWatch.Watch]).
//
// Returns an error if r is nil.
func WithRenderer(r Renderer) Option {
	return func(cfg *gwConfig) error {
		if r == nil {
			return ErrNilRenderer
		}
		cfg.renderers = append(cfg.renderers, r)
		return nil
	}
}
