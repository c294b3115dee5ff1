package gardenwatch

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// gardenServer is a fake garden server whose tick advances on every
// successful request. Setting failing makes it answer 500.
type gardenServer struct {
	*httptest.Server

	mu      sync.Mutex
	tick    int
	failing bool
	queries []url.Values
}

func newGardenServer(t *testing.T) *gardenServer {
	t.Helper()
	gs := &gardenServer{}
	gs.Server = httptest.NewServer(http.HandlerFunc(gs.handle))
	t.Cleanup(gs.Close)
	return gs
}

func (gs *gardenServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/getUpdates" {
		http.NotFound(w, r)
		return
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.queries = append(gs.queries, r.URL.Query())

	if gs.failing {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	gs.tick++
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"tick":%d,"garden":"🌱🌻","numPlants":2,"numWatchers":1}`, gs.tick)
}

func (gs *gardenServer) setFailing(failing bool) {
	gs.mu.Lock()
	gs.failing = failing
	gs.mu.Unlock()
}

func (gs *gardenServer) requests() []url.Values {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	out := make([]url.Values, len(gs.queries))
	copy(out, gs.queries)
	return out
}

// recordingRenderer keeps the latest text and style per target and every
// attached control.
type recordingRenderer struct {
	mu       sync.Mutex
	texts    map[Target]string
	styles   map[Target]string
	controls []*recordedControl
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{
		texts:  make(map[Target]string),
		styles: make(map[Target]string),
	}
}

func (r *recordingRenderer) SetText(target Target, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts[target] = text
}

func (r *recordingRenderer) SetStyle(target Target, style string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.styles[target] = style
}

func (r *recordingRenderer) AttachControl(target Target, label string, onActivate func()) Control {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &recordedControl{target: target, label: label, onActivate: onActivate}
	r.controls = append(r.controls, c)
	return c
}

func (r *recordingRenderer) text(target Target) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.texts[target]
}

func (r *recordingRenderer) style(target Target) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.styles[target]
}

// pending returns the most recent control that has not been removed.
func (r *recordingRenderer) pending() *recordedControl {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.controls) - 1; i >= 0; i-- {
		if !r.controls[i].isRemoved() {
			return r.controls[i]
		}
	}
	return nil
}

type recordedControl struct {
	target     Target
	label      string
	onActivate func()

	mu      sync.Mutex
	removed bool
}

func (c *recordedControl) Remove() {
	c.mu.Lock()
	c.removed = true
	c.mu.Unlock()
}

func (c *recordedControl) isRemoved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removed
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
