// Package server provides the HTTP server that mirrors a garden session to
// browsers.
//
// The server reads the view from a [store.Store] filled by the store-backed
// renderer and handles:
//
//   - Dashboard serving: the embedded HTML page at "/"
//   - REST API: "/api/view" for the current elements and "/api/session" for
//     the polling session's state
//   - Server-Sent Events: element changes at "/api/sse"
//   - Controls: "POST /api/controls/{target}/activate" presses the control
//     attached to a target (the Reconnect button)
//   - Metrics: Prometheus exposition at "/metrics"
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the gardenwatch library should not need to interact with this
// package directly. The server is started by [gardenwatch.GardenWatch.Start].
package server
