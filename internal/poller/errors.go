package poller

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInterval is returned by [Session.StartListening] for a
	// non-positive interval.
	ErrInvalidInterval = errors.New("interval must be positive")

	// ErrAlreadyListening is returned by [Session.StartListening] while a
	// ticker from an earlier call is still active.
	ErrAlreadyListening = errors.New("session is already listening")

	// ErrExhausted marks the cycle outcome that moved the session to
	// [ModeDisconnected]. It is reported through [CycleResult] only.
	ErrExhausted = errors.New("consecutive failure limit exceeded")
)

// TransportError reports a network failure or a non-success HTTP status.
type TransportError struct {
	// StatusCode is zero when no response was received.
	StatusCode int
	Status     string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("transport: status %d: %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("transport: %v", e.Err)
	case e.Status != "":
		return "transport: " + e.Status
	default:
		return fmt.Sprintf("transport: status %d", e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a response body that is not valid JSON, lacks a
// required field, or carries a field of the wrong kind.
type ProtocolError struct {
	// Field is empty when the body as a whole could not be decoded.
	Field string
	// Raw is the offending value as it appeared on the wire.
	Raw    string
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Field == "" {
		if e.Err != nil {
			return fmt.Sprintf("protocol: %s: %v", e.Reason, e.Err)
		}
		return "protocol: " + e.Reason
	}
	return fmt.Sprintf("protocol: expected %s for %q, but was '%s'", e.Reason, e.Field, e.Raw)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
