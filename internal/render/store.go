package render

import (
	"github.com/jpalmerr/gardenwatch/internal/poller"
	"github.com/jpalmerr/gardenwatch/internal/store"
)

// StoreRenderer renders into a [store.Store]. The dashboard server publishes
// the store to browsers and routes control activations back through
// [StoreRenderer.Activate].
type StoreRenderer struct {
	store    store.Store
	controls *Controls
}

// NewStoreRenderer creates a renderer backed by st. Every target gets an
// empty element up front so the dashboard lays out before the first poll.
func NewStoreRenderer(st store.Store) *StoreRenderer {
	r := &StoreRenderer{store: st}
	r.controls = NewControls(func(target poller.Target, label string) {
		st.Modify(string(target), func(el *store.Element) { el.Control = label })
	})
	for _, target := range poller.Targets {
		st.Modify(string(target), func(*store.Element) {})
	}
	return r
}

func (r *StoreRenderer) SetText(target poller.Target, text string) {
	r.store.Modify(string(target), func(el *store.Element) { el.Text = text })
}

func (r *StoreRenderer) SetStyle(target poller.Target, style string) {
	r.store.Modify(string(target), func(el *store.Element) { el.Style = style })
}

func (r *StoreRenderer) AttachControl(target poller.Target, label string, onActivate func()) poller.Control {
	return r.controls.Attach(target, label, onActivate)
}

// Activate fires the control pending on target, if any.
func (r *StoreRenderer) Activate(target string) bool {
	return r.controls.Activate(poller.Target(target))
}
