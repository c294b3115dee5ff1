package poller

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fetchCall records the arguments of one GetUpdates call.
type fetchCall struct {
	tick      float64
	watcherID string
}

// fakeFetcher replays queued responses, then repeats fallback.
type fakeFetcher struct {
	mu       sync.Mutex
	queue    []fakeResponse
	fallback fakeResponse
	calls    []fetchCall
}

type fakeResponse struct {
	body string
	err  error
}

func (f *fakeFetcher) GetUpdates(_ context.Context, tick float64, watcherID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fetchCall{tick: tick, watcherID: watcherID})

	resp := f.fallback
	if len(f.queue) > 0 {
		resp = f.queue[0]
		f.queue = f.queue[1:]
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return []byte(resp.body), nil
}

func (f *fakeFetcher) push(body string) {
	f.mu.Lock()
	f.queue = append(f.queue, fakeResponse{body: body})
	f.mu.Unlock()
}

func (f *fakeFetcher) fail(err error) {
	f.mu.Lock()
	f.queue = append(f.queue, fakeResponse{err: err})
	f.mu.Unlock()
}

func (f *fakeFetcher) setFallback(r fakeResponse) {
	f.mu.Lock()
	f.fallback = r
	f.mu.Unlock()
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) lastCall() fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// fakeRenderer records the latest text and style per target plus every
// SetText call.
type fakeRenderer struct {
	mu       sync.Mutex
	texts    map[Target]string
	styles   map[Target]string
	writes   map[Target]int
	controls []*fakeControl
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		texts:  make(map[Target]string),
		styles: make(map[Target]string),
		writes: make(map[Target]int),
	}
}

func (r *fakeRenderer) SetText(target Target, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts[target] = text
	r.writes[target]++
}

func (r *fakeRenderer) SetStyle(target Target, style string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.styles[target] = style
}

func (r *fakeRenderer) AttachControl(target Target, label string, onActivate func()) Control {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &fakeControl{target: target, label: label, onActivate: onActivate}
	r.controls = append(r.controls, c)
	return c
}

func (r *fakeRenderer) text(target Target) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.texts[target]
}

func (r *fakeRenderer) style(target Target) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.styles[target]
}

func (r *fakeRenderer) writeCount(target Target) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes[target]
}

// activeControls returns controls that have not been removed.
func (r *fakeRenderer) activeControls() []*fakeControl {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*fakeControl
	for _, c := range r.controls {
		if !c.isRemoved() {
			out = append(out, c)
		}
	}
	return out
}

type fakeControl struct {
	target     Target
	label      string
	onActivate func()

	mu      sync.Mutex
	removed bool
}

func (c *fakeControl) Remove() {
	c.mu.Lock()
	c.removed = true
	c.mu.Unlock()
}

func (c *fakeControl) isRemoved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removed
}

// manualClock hands out tickers that only fire when the test says so.
type manualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (c *manualClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *manualClock) latest() *manualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

func (c *manualClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

type manualTicker struct {
	ch chan time.Time

	mu      sync.Mutex
	stopped bool
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *manualTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
