// Package poller implements the garden polling session.
//
// This package is internal to gardenwatch. A [Session] runs one
// fetch/validate/apply cycle per tick against the garden server's update
// endpoint, counts consecutive failures, and moves into a terminal
// disconnected mode with a one-shot recovery control once the streak
// exceeds its threshold.
//
// The main components are:
//
//   - [Session]: the poll/reconcile/fail-recover state machine
//   - [Client]: HTTP [Fetcher] with an optional per-request timeout and body limit
//   - [Renderer]: capability interface the session writes display state to
//   - [Clock]: ticker source, replaceable for deterministic tests
//   - [TransportError], [ProtocolError]: the recoverable failure taxonomy
//
// Users of the gardenwatch library should not need to interact with this
// package directly. Configuration is done through the main gardenwatch package.
package poller
