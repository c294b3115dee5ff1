package render

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/jpalmerr/gardenwatch/internal/poller"
)

// Multi fans every call out to several renderers. A control attached
// through Multi is attached to each renderer; removing it removes all of
// them, so activating it on any one renderer clears it everywhere.
//
// A panicking renderer is recovered and logged on its own, so the
// renderers after it still receive the call.
type Multi []poller.Renderer

func (m Multi) SetText(target poller.Target, text string) {
	for i, r := range m {
		guard(i, "set_text", func() { r.SetText(target, text) })
	}
}

func (m Multi) SetStyle(target poller.Target, style string) {
	for i, r := range m {
		guard(i, "set_style", func() { r.SetStyle(target, style) })
	}
}

func (m Multi) AttachControl(target poller.Target, label string, onActivate func()) poller.Control {
	ctls := make(multiControl, 0, len(m))
	for i, r := range m {
		guard(i, "attach_control", func() {
			if c := r.AttachControl(target, label, onActivate); c != nil {
				ctls = append(ctls, c)
			}
		})
	}
	return ctls
}

type multiControl []poller.Control

func (mc multiControl) Remove() {
	for i, c := range mc {
		guard(i, "remove_control", c.Remove)
	}
}

// guard runs fn for the renderer at index i, logging a panic instead of
// letting it cut the fan-out short.
func guard(i int, op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("renderer panic",
				"correlation_id", uuid.NewString(),
				"renderer", i,
				"op", op,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}
