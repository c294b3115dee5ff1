// Package gardenwatch provides a polling client that mirrors the state of a
// shared garden server.
//
// A garden server exposes GET /api/getUpdates returning the current tick,
// the garden as a string, and plant and watcher counts. gardenwatch polls
// that endpoint on a fixed interval, validates each payload, and renders
// it: "Age: {tick} ticks", "Plants: {n}", "Watchers: {n}", and the garden
// string verbatim.
//
// # Quick Start
//
// Mirror a garden to a browser dashboard with graceful shutdown:
//
//	gw, _ := gardenwatch.New(gardenwatch.WithServerURL("http://localhost:3000"))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	gw.Start(ctx) // blocks until context is cancelled
//
// Or render somewhere else with [GardenWatch.Watch] and a custom [Renderer].
//
// # Failure Handling
//
// Every cycle that fails (transport error, non-2xx status, malformed JSON
// or a field of the wrong type) extends a failure streak. Fields are applied
// in order, so a payload with a good tick and a bad count still updates the
// age. Once the streak exceeds the threshold (50 by default) the next cycle
// disconnects instead of polling: the page turns grey, the age shows
// DISCONNECTED, and a one-shot Reconnect control is attached. Activating it
// resumes polling from the last known tick.
//
// # Architecture
//
// gardenwatch consists of several internal packages (under internal/):
//
//   - internal/poller: HTTP client, polling session state machine, validation
//   - internal/render: store-backed, terminal and fan-out renderers
//   - internal/store: In-memory view storage with pub/sub for real-time updates
//   - internal/server: HTTP server with REST API, SSE and control activation
//   - internal/metrics: Prometheus instrumentation
//   - dashboard: Embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice.
package gardenwatch
