package store

import "time"

// Element is the stored state of one render target.
//
// Element is the storage representation of a target, optimized for JSON
// serialization (used by the REST API and SSE). It is decoupled from the
// poller's types to allow independent evolution.
type Element struct {
	// Target is the render target name (e.g. "age", "garden", "page").
	Target string `json:"target"`

	// Text is the target's displayed text.
	Text string `json:"text"`

	// Style is an inline style applied to the target; empty for none.
	Style string `json:"style"`

	// Control is the label of a pending control attached to the target.
	// Empty when no control is attached.
	Control string `json:"control,omitempty"`

	// UpdatedAt is the time of the last change.
	UpdatedAt time.Time `json:"updatedAt"`
}

// sameContent reports whether a and b display identically.
func sameContent(a, b Element) bool {
	return a.Text == b.Text && a.Style == b.Style && a.Control == b.Control
}

// Store defines the interface for storing and subscribing to view updates.
//
// Store implementations must be safe for concurrent access. The pub/sub
// mechanism allows real-time updates to be pushed to connected clients
// (e.g., via Server-Sent Events).
type Store interface {
	// Update stores an element and notifies subscribers if its displayed
	// content changed. The element is keyed by Target.
	Update(el Element) bool

	// Modify applies fn to the stored element for target (a zero Element
	// with Target set if none exists) atomically, and notifies subscribers
	// if the displayed content changed.
	Modify(target string, fn func(el *Element)) bool

	// Get returns the element for target.
	Get(target string) (Element, bool)

	// GetAll returns all stored elements sorted by target.
	// The returned slice is a snapshot; modifications do not affect the store.
	GetAll() []Element

	// Subscribe returns a channel that receives element updates.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Element

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Element)
}
