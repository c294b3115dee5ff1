package poller

import "time"

// Clock creates tickers for a [Session]. Tests substitute a manual clock to
// drive cycles deterministically.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of *time.Ticker a session needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock is the production [Clock] backed by the time package.
type RealClock struct{}

func (RealClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time {
	return r.t.C
}

func (r *realTicker) Stop() {
	r.t.Stop()
}
