package gardenwatch

import (
	"time"

	"github.com/jpalmerr/gardenwatch/internal/poller"
)

// Target names a region of the view that a [Renderer] draws.
type Target = poller.Target

// Render targets written by a session.
const (
	TargetAge      = poller.TargetAge
	TargetGarden   = poller.TargetGarden
	TargetPlants   = poller.TargetPlants
	TargetWatchers = poller.TargetWatchers
	TargetPage     = poller.TargetPage
)

// Renderer receives view changes from a session. See [GardenWatch.Watch].
//
// Renderer methods are called from the polling goroutine and must not block.
// A panicking renderer is recovered and logged with a correlation ID; the
// session keeps polling.
type Renderer = poller.Renderer

// Control is a handle on a control attached by [Renderer.AttachControl].
type Control = poller.Control

// ResetPolicy selects when a cycle clears the failure streak.
type ResetPolicy = poller.ResetPolicy

const (
	// ResetOnValidPayload clears the streak only after a fully valid payload
	// has been applied. This is the default.
	ResetOnValidPayload = poller.ResetOnValidPayload

	// ResetOnReachable clears the streak on any 2xx response, before the
	// payload is validated.
	ResetOnReachable = poller.ResetOnReachable
)

// Outcome classifies a single polling cycle.
//
// Outcome is a string type so it can be logged and used as a metric label
// directly.
type Outcome string

const (
	// OutcomeOK indicates the payload was valid and applied in full.
	OutcomeOK Outcome = "ok"

	// OutcomeTransportError indicates the request failed or the server
	// answered with a non-2xx status.
	OutcomeTransportError Outcome = "transport_error"

	// OutcomeProtocolError indicates the body was not JSON or a field
	// failed validation.
	OutcomeProtocolError Outcome = "protocol_error"

	// OutcomeDisconnected indicates the failure streak exceeded the
	// threshold and polling stopped. No request was made.
	OutcomeDisconnected Outcome = "disconnected"

	// OutcomeCancelled indicates the request was abandoned because the
	// session was stopped.
	OutcomeCancelled Outcome = "cancelled"
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// Failed reports whether the outcome counts toward the failure streak.
func (o Outcome) Failed() bool {
	return o == OutcomeTransportError || o == OutcomeProtocolError
}

// TransportError is the error of a cycle whose request failed or returned a
// non-2xx status. Use [errors.As] on [CycleResult.Error].
type TransportError = poller.TransportError

// ProtocolError is the error of a cycle whose response failed validation.
type ProtocolError = poller.ProtocolError

// CycleResult holds the outcome of one polling cycle.
//
// CycleResult is a copy; it shares nothing with the running session.
type CycleResult struct {
	// Outcome classifies the cycle.
	Outcome Outcome

	// Tick is the last observed server tick after the cycle.
	Tick float64

	// ConsecutiveFailures is the failure streak after the cycle.
	ConsecutiveFailures int

	// Latency is the time taken by the request. Zero for disconnect cycles.
	Latency time.Duration

	// CompletedAt is the timestamp when the cycle finished.
	CompletedAt time.Time

	// Error is nil for [OutcomeOK].
	Error error
}

// State is a point-in-time view of a session.
type State struct {
	// Connected is false once the session has disconnected and is waiting
	// for the Reconnect control.
	Connected bool

	LastTick            float64
	ConsecutiveFailures int

	// WatcherID is empty unless [WithWatcherID] is enabled.
	WatcherID string
}
