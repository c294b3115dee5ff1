// Package render provides the concrete render targets a gardenwatch session
// writes to: the dashboard view store, a styled terminal, and a fan-out of
// both.
package render
