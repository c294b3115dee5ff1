package gardenwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jpalmerr/gardenwatch/dashboard"
	"github.com/jpalmerr/gardenwatch/internal/metrics"
	"github.com/jpalmerr/gardenwatch/internal/poller"
	"github.com/jpalmerr/gardenwatch/internal/render"
	"github.com/jpalmerr/gardenwatch/internal/server"
	"github.com/jpalmerr/gardenwatch/internal/store"
)

const (
	defaultPollingInterval = 125 * time.Millisecond
	defaultRequestTimeout  = 10 * time.Second
	defaultPort            = 8080
)

// ErrNilRenderer is returned by [GardenWatch.Watch] when no renderer is given.
var ErrNilRenderer = errors.New("renderer cannot be nil")

// GardenWatch mirrors a garden server's state, polling it on a fixed
// interval and rendering each update.
//
// GardenWatch is created using [New] with functional options and run with
// either [GardenWatch.Start] (dashboard server included) or
// [GardenWatch.Watch] (caller-supplied renderer only).
//
// The typical lifecycle is:
//
//	gw, err := gardenwatch.New(gardenwatch.WithServerURL("http://localhost:3000"))
//	if err != nil {
//	    slog.Error("failed to create gardenwatch", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	gw.Start(ctx) // blocks until context cancelled
//
// After too many consecutive failures the session disconnects: polling
// stops, the page is greyed out, and a Reconnect control is attached to the
// age target. Polling resumes only when that control is activated.
type GardenWatch struct {
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

	mu      sync.Mutex
	session *poller.Session
}

// New creates a new [GardenWatch] instance with the given options.
//
// A server URL must be configured via [WithServerURL]. Other options have
// sensible defaults:
//   - Polling interval: 125 milliseconds
//   - Request timeout: 10 seconds
//   - Failure threshold: 50
//   - Watcher ID: enabled
//   - Counts: required
//   - Port: 8080
//
// Returns an error if no server URL is configured or if any option is invalid.
func New(opts ...Option) (*GardenWatch, error) {
	cfg := &gwConfig{
		pollingInterval:  defaultPollingInterval,
		requestTimeout:   defaultRequestTimeout,
		failureThreshold: poller.DefaultFailureThreshold,
		watcherID:        true,
		requireCounts:    true,
		resetPolicy:      ResetOnValidPayload,
		port:             defaultPort,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.serverURL == "" {
		return nil, errors.New("server URL is required")
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &GardenWatch{
		title:            cfg.title,
		serverURL:        cfg.serverURL,
		pollingInterval:  cfg.pollingInterval,
		requestTimeout:   cfg.requestTimeout,
		failureThreshold: cfg.failureThreshold,
		watcherID:        cfg.watcherID,
		requireCounts:    cfg.requireCounts,
		resetPolicy:      cfg.resetPolicy,
		port:             cfg.port,
		logger:           logger,
		cycleCallbacks:   cfg.cycleCallbacks,
		renderers:        cfg.renderers,
	}, nil
}

// Start polls the garden server and serves the dashboard.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - The HTTP server starts on the configured port
//   - The garden server is polled at the configured interval
//   - Every view change is pushed to dashboard clients over SSE
//   - Renderers added with [WithRenderer] receive the same changes
//
// The dashboard is available at http://localhost:<port>; its Reconnect
// button drives the recovery control.
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server fails
// to start or a watcher ID cannot be generated.
func (gw *GardenWatch) Start(ctx context.Context) error {
	gw.logger.Info("gardenwatch starting", "server_url", gw.serverURL)
	gw.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", gw.port))

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	viewStore := store.NewMemoryStore()
	storeRenderer := render.NewStoreRenderer(viewStore)

	var renderer poller.Renderer = storeRenderer
	if len(gw.renderers) > 0 {
		renderer = append(render.Multi{storeRenderer}, gw.renderers...)
	}

	session, client, err := gw.newSession(renderer)
	if err != nil {
		return err
	}
	defer client.Close()

	httpServer := server.NewServer(viewStore, session, storeRenderer, gw.port, dashboard.Assets, gw.title, gw.logger)
	if err := httpServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return gw.listen(ctx, session)
}

// Watch polls the garden server and renders into r only, without serving
// the dashboard.
//
// Watch blocks until ctx is cancelled. The caller is responsible for
// activating the Reconnect control that r receives via
// [Renderer.AttachControl] once the session disconnects.
func (gw *GardenWatch) Watch(ctx context.Context, r Renderer) error {
	if r == nil {
		return ErrNilRenderer
	}
	if ctx.Err() != nil {
		return nil
	}

	var renderer poller.Renderer = r
	if len(gw.renderers) > 0 {
		renderer = append(render.Multi{r}, gw.renderers...)
	}

	session, client, err := gw.newSession(renderer)
	if err != nil {
		return err
	}
	defer client.Close()

	return gw.listen(ctx, session)
}

// listen runs session until ctx is cancelled.
func (gw *GardenWatch) listen(ctx context.Context, session *poller.Session) error {
	gw.mu.Lock()
	gw.session = session
	gw.mu.Unlock()

	if err := session.StartListening(ctx, gw.pollingInterval); err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	<-ctx.Done()
	session.Stop()
	gw.logger.Info("gardenwatch stopped")
	return nil
}

// newSession wires a polling session to renderer.
func (gw *GardenWatch) newSession(renderer poller.Renderer) (*poller.Session, *poller.Client, error) {
	var watcherID string
	if gw.watcherID {
		id, err := poller.NewWatcherID(nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate watcher ID: %w", err)
		}
		watcherID = id
	}

	client := poller.NewClient(gw.serverURL, gw.requestTimeout)
	session := poller.NewSession(client, renderer, poller.SessionConfig{
		FailureThreshold: gw.failureThreshold,
		WatcherID:        watcherID,
		RequireCounts:    gw.requireCounts,
		ResetPolicy:      gw.resetPolicy,
		Logger:           gw.logger,
		OnCycle:          gw.handleCycle,
		OnReconnect:      metrics.ObserveReconnect,
	})
	return session, client, nil
}

// handleCycle records metrics and fans the result out to callbacks.
func (gw *GardenWatch) handleCycle(r poller.CycleResult) {
	metrics.ObserveCycle(r)

	if len(gw.cycleCallbacks) == 0 {
		return
	}
	result := toPublicResult(r)
	for _, cb := range gw.cycleCallbacks {
		invokeCallbackSafe(cb, result, gw.logger)
	}
}

// State returns the current session state. It is the zero State before
// [GardenWatch.Start] or [GardenWatch.Watch] has been called.
func (gw *GardenWatch) State() State {
	gw.mu.Lock()
	session := gw.session
	gw.mu.Unlock()

	if session == nil {
		return State{}
	}
	s := session.Snapshot()
	return State{
		Connected:           s.Mode == poller.ModeConnected,
		LastTick:            s.LastTick,
		ConsecutiveFailures: s.ConsecutiveFailures,
		WatcherID:           s.WatcherID,
	}
}

// ServerURL returns the configured garden server base URL.
func (gw *GardenWatch) ServerURL() string {
	return gw.serverURL
}

// Port returns the configured HTTP port for the dashboard server.
func (gw *GardenWatch) Port() int {
	return gw.port
}

// PollingInterval returns the configured interval between polling cycles.
func (gw *GardenWatch) PollingInterval() time.Duration {
	return gw.pollingInterval
}

// FailureThreshold returns the configured failure threshold.
func (gw *GardenWatch) FailureThreshold() int {
	return gw.failureThreshold
}

// toPublicResult converts an internal cycle result to the public API type.
func toPublicResult(r poller.CycleResult) CycleResult {
	outcome := Outcome(r.Outcome)
	switch r.Outcome {
	case poller.OutcomeOK, poller.OutcomeTransportErr, poller.OutcomeProtocolErr,
		poller.OutcomeDisconnected, poller.OutcomeCancelled:
	default:
		// unclassified failures still count toward the streak
		outcome = OutcomeTransportError
	}
	return CycleResult{
		Outcome:             outcome,
		Tick:                r.Tick,
		ConsecutiveFailures: r.Failures,
		Latency:             r.Latency,
		CompletedAt:         r.At,
		Error:               r.Err,
	}
}

// invokeCallbackSafe calls a cycle callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(CycleResult), result CycleResult, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("cycle callback panicked",
				"panic", r,
				"outcome", result.Outcome,
			)
		}
	}()
	cb(result)
}
