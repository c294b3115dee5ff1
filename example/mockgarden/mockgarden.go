// Package mockgarden is a fake garden server for demos and manual testing.
//
// Each request to /api/getUpdates advances the tick; every few ticks a plant
// grows. Distinct watcherId values seen in the last minute are counted as
// watchers. During an outage every request answers 503.
package mockgarden

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	watcherTTL  = time.Minute
	growthTicks = 40
	maxPlants   = 24
)

var plants = []string{"🌱", "🌷", "🌻", "🌼", "🌵", "🌿", "🍄", "🌹"}

// Garden is the mock server state.
type Garden struct {
	mu       sync.Mutex
	tick     int
	plants   []string
	watchers map[string]time.Time
	outage   bool
	now      func() time.Time
}

// New creates an empty garden.
func New() *Garden {
	return &Garden{
		watchers: make(map[string]time.Time),
		now:      time.Now,
	}
}

// SetOutage makes the garden fail every request while on is true.
func (g *Garden) SetOutage(on bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.outage != on {
		slog.Info("outage changed", "outage", on, "tick", g.tick)
	}
	g.outage = on
}

// Handler serves /api/getUpdates.
func (g *Garden) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/getUpdates", g.handleUpdates)
	return mux
}

func (g *Garden) handleUpdates(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	if g.outage {
		g.mu.Unlock()
		http.Error(w, "garden unavailable", http.StatusServiceUnavailable)
		return
	}

	now := g.now()
	if id := r.URL.Query().Get("watcherId"); id != "" {
		g.watchers[id] = now
	}
	for id, seen := range g.watchers {
		if now.Sub(seen) > watcherTTL {
			delete(g.watchers, id)
		}
	}

	g.tick++
	if g.tick%growthTicks == 0 && len(g.plants) < maxPlants {
		g.plants = append(g.plants, plants[len(g.plants)%len(plants)])
	}

	resp := map[string]any{
		"tick":        g.tick,
		"garden":      strings.Join(g.plants, ""),
		"numPlants":   len(g.plants),
		"numWatchers": len(g.watchers),
	}
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
