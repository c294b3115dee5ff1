package render

import (
	"sync"

	"github.com/jpalmerr/gardenwatch/internal/poller"
)

// Controls tracks the pending one-shot control of each target.
//
// Attaching a control to a target that already has one replaces it.
// Activation removes the control before running its callback, so a control
// fires at most once however many clients press it.
type Controls struct {
	mu       sync.Mutex
	pending  map[poller.Target]*control
	order    []poller.Target
	onChange func(target poller.Target, label string)
}

// NewControls creates a registry. onChange, if non-nil, is called with the
// target and its new label ("" once removed) after every attach or removal.
func NewControls(onChange func(target poller.Target, label string)) *Controls {
	return &Controls{
		pending:  make(map[poller.Target]*control),
		onChange: onChange,
	}
}

type control struct {
	owner      *Controls
	target     poller.Target
	label      string
	onActivate func()
}

// Remove implements poller.Control.
func (c *control) Remove() {
	c.owner.remove(c)
}

// Attach registers a control on target.
func (cs *Controls) Attach(target poller.Target, label string, onActivate func()) poller.Control {
	c := &control{owner: cs, target: target, label: label, onActivate: onActivate}

	cs.mu.Lock()
	if _, exists := cs.pending[target]; !exists {
		cs.order = append(cs.order, target)
	}
	cs.pending[target] = c
	cs.mu.Unlock()

	cs.changed(target, label)
	return c
}

// pendingLabel returns the label of the control attached to target.
func (cs *Controls) pendingLabel(target poller.Target) (string, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	c, ok := cs.pending[target]
	if !ok {
		return "", false
	}
	return c.label, true
}

// Activate removes the control attached to target and runs its callback.
// It reports false when target has no control.
func (cs *Controls) Activate(target poller.Target) bool {
	cs.mu.Lock()
	c, ok := cs.pending[target]
	cs.mu.Unlock()
	if !ok {
		return false
	}
	return cs.fire(c)
}

// ActivateOldest activates the earliest attached control still pending.
func (cs *Controls) ActivateOldest() bool {
	cs.mu.Lock()
	var c *control
	if len(cs.order) > 0 {
		c = cs.pending[cs.order[0]]
	}
	cs.mu.Unlock()
	if c == nil {
		return false
	}
	return cs.fire(c)
}

// fire removes c and runs its callback if c was still pending.
func (cs *Controls) fire(c *control) bool {
	if !cs.remove(c) {
		return false
	}
	if c.onActivate != nil {
		c.onActivate()
	}
	return true
}

// remove detaches c if it is still the pending control of its target.
func (cs *Controls) remove(c *control) bool {
	cs.mu.Lock()
	if cs.pending[c.target] != c {
		cs.mu.Unlock()
		return false
	}
	delete(cs.pending, c.target)
	for i, t := range cs.order {
		if t == c.target {
			cs.order = append(cs.order[:i], cs.order[i+1:]...)
			break
		}
	}
	cs.mu.Unlock()

	cs.changed(c.target, "")
	return true
}

func (cs *Controls) changed(target poller.Target, label string) {
	if cs.onChange != nil {
		cs.onChange(target, label)
	}
}
