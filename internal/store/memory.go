package store

import (
	"sort"
	"sync"
	"time"
)

// subscriberBuffer is the channel capacity handed to each subscriber.
const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore provides thread-safe storage with a publish-subscribe mechanism
// for real-time updates. Elements are keyed by target name, with new values
// replacing previous ones. Writes that leave an element's displayed content
// unchanged are not published, so a steady view produces no update traffic.
//
// Subscribers receive updates via buffered channels (buffer size 100). Updates
// are sent non-blocking; if a subscriber's buffer is full, the update is dropped
// for that subscriber to prevent blocking the entire system.
type MemoryStore struct {
	mu          sync.RWMutex
	elements    map[string]Element
	subscribers map[chan Element]struct{}
	subMu       sync.RWMutex
	now         func() time.Time
}

// NewMemoryStore creates a new in-memory [Store] implementation.
//
// The store is immediately ready for use. No cleanup is required when done.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		elements:    make(map[string]Element),
		subscribers: make(map[chan Element]struct{}),
		now:         time.Now,
	}
}

// Update stores an [Element] and notifies all subscribers if it changed.
func (m *MemoryStore) Update(el Element) bool {
	return m.Modify(el.Target, func(cur *Element) {
		cur.Text = el.Text
		cur.Style = el.Style
		cur.Control = el.Control
	})
}

// Modify applies fn to the element for target under the store lock.
func (m *MemoryStore) Modify(target string, fn func(el *Element)) bool {
	m.mu.Lock()
	prev, exists := m.elements[target]
	if !exists {
		prev = Element{Target: target}
	}
	next := prev
	fn(&next)
	next.Target = target

	if exists && sameContent(prev, next) {
		m.mu.Unlock()
		return false
	}
	next.UpdatedAt = m.now()
	m.elements[target] = next
	m.mu.Unlock()

	m.notifySubscribers(next)
	return true
}

// Get returns the element stored for target.
func (m *MemoryStore) Get(target string) (Element, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	el, ok := m.elements[target]
	return el, ok
}

// GetAll returns a snapshot of all stored elements sorted by target.
//
// The returned slice is a copy; modifications do not affect the store.
func (m *MemoryStore) GetAll() []Element {
	m.mu.RLock()
	elements := make([]Element, 0, len(m.elements))
	for _, el := range m.elements {
		elements = append(elements, el)
	}
	m.mu.RUnlock()

	sort.Slice(elements, func(i, j int) bool {
		return elements[i].Target < elements[j].Target
	})
	return elements
}

// Subscribe creates a new subscription and returns a channel for receiving updates.
//
// The returned channel has a buffer of 100 messages. If the buffer fills
// (slow consumer), new updates are dropped for this subscriber.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan Element {
	ch := make(chan Element, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// After calling Unsubscribe, the channel will be closed and no further
// updates will be sent. Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Element) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	// find and delete the channel (need to convert to the right type)
	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the element to all active subscribers.
//
// This is non-blocking: if a subscriber's channel buffer is full, the message
// is dropped for that subscriber rather than blocking the update path.
func (m *MemoryStore) notifySubscribers(el Element) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- el:
		default:
			// subscriber is slow, drop the message
		}
	}
}
