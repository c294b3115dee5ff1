package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultFailureThreshold is the number of consecutive failed cycles a
// session tolerates. The cycle after the streak exceeds it disconnects.
const DefaultFailureThreshold = 50

// ErrSessionStopped is returned by [Session.StartListening] after [Session.Stop].
var ErrSessionStopped = errors.New("session is stopped")

// Mode is the session's position in the connection state machine.
type Mode string

const (
	// ModeIdle is a session that has not started listening or was stopped.
	ModeIdle Mode = "idle"
	// ModeConnected is a session with an active ticker.
	ModeConnected Mode = "connected"
	// ModeDisconnected is the terminal mode entered once the failure streak
	// exceeds the threshold. Only the recovery control leaves it.
	ModeDisconnected Mode = "disconnected"
)

// ResetPolicy controls when a cycle clears the failure streak.
type ResetPolicy int

const (
	// ResetOnValidPayload clears the streak only after the whole payload
	// validated and was applied.
	ResetOnValidPayload ResetPolicy = iota
	// ResetOnReachable clears the streak on any success status, before the
	// payload is validated. A 200 with a malformed tick then leaves the
	// streak at 1 regardless of what it was before.
	ResetOnReachable
)

func (p ResetPolicy) String() string {
	switch p {
	case ResetOnValidPayload:
		return "valid_payload"
	case ResetOnReachable:
		return "reachable"
	default:
		return fmt.Sprintf("ResetPolicy(%d)", int(p))
	}
}

// Outcome classifies a single cycle.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeTransportErr Outcome = "transport_error"
	OutcomeProtocolErr  Outcome = "protocol_error"
	OutcomeDisconnected Outcome = "disconnected"
	OutcomeCancelled    Outcome = "cancelled"
	outcomeUnclassified Outcome = "error"
)

// CycleResult describes one completed cycle. It is delivered to
// [SessionConfig.OnCycle].
type CycleResult struct {
	Outcome Outcome
	// Tick is lastTick after the cycle.
	Tick float64
	// Failures is the failure streak after the cycle.
	Failures int
	// Latency is the request duration; zero for disconnect cycles.
	Latency time.Duration
	At      time.Time
	Err     error
}

// State is a point-in-time copy of a session's mutable state.
type State struct {
	Mode                Mode          `json:"mode"`
	LastTick            float64       `json:"lastTick"`
	ConsecutiveFailures int           `json:"consecutiveFailures"`
	WatcherID           string        `json:"watcherId,omitempty"`
	Interval            time.Duration `json:"interval"`
}

// SessionConfig is the immutable configuration of a [Session].
type SessionConfig struct {
	// FailureThreshold defaults to DefaultFailureThreshold when zero.
	FailureThreshold int

	// WatcherID is sent with every request when non-empty.
	WatcherID string

	// RequireCounts makes numPlants and numWatchers mandatory. When false
	// they are validated and rendered only if present.
	RequireCounts bool

	ResetPolicy ResetPolicy

	// Clock defaults to RealClock.
	Clock Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// OnCycle, if set, runs after every cycle on the polling goroutine.
	OnCycle func(CycleResult)

	// OnReconnect, if set, runs when the recovery control is activated.
	OnReconnect func()
}

// Session drives the poll/reconcile/fail-recover loop against one garden
// server.
//
// Each Connected period owns one goroutine that runs cycles inline off a
// ticker, so cycles never overlap; ticks arriving during a slow request are
// dropped. [Session.StartListening], [Session.Stop] and [Session.Snapshot]
// are safe for concurrent use.
type Session struct {
	fetcher   Fetcher
	renderer  Renderer
	cfg       SessionConfig
	clock     Clock
	logger    *slog.Logger
	threshold int

	mu         sync.Mutex
	mode       Mode
	lastTick   float64
	failures   int
	interval   time.Duration
	parent     context.Context
	ticker     Ticker
	cancelLoop context.CancelFunc
	stopped    bool

	wg sync.WaitGroup
}

// NewSession creates an idle [Session]. Call [Session.StartListening] to
// begin polling.
func NewSession(fetcher Fetcher, renderer Renderer, cfg SessionConfig) *Session {
	s := &Session{
		fetcher:   fetcher,
		renderer:  renderer,
		cfg:       cfg,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		threshold: cfg.FailureThreshold,
		mode:      ModeIdle,
	}
	if s.clock == nil {
		s.clock = RealClock{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.threshold <= 0 {
		s.threshold = DefaultFailureThreshold
	}
	return s
}

// StartListening begins running a cycle every interval until the session
// disconnects, ctx is cancelled, or [Session.Stop] is called.
//
// StartListening is non-blocking. The recovery control restarts polling
// with the same ctx and interval.
func (s *Session) StartListening(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSessionStopped
	}
	if s.ticker != nil {
		return ErrAlreadyListening
	}

	loopCtx, cancel := context.WithCancel(ctx)
	ticker := s.clock.NewTicker(interval)

	s.parent = ctx
	s.interval = interval
	s.ticker = ticker
	s.cancelLoop = cancel
	s.mode = ModeConnected

	s.wg.Add(1)
	go s.run(loopCtx, ticker)

	s.logger.Info("polling started",
		"interval", interval.String(),
		"last_tick", s.lastTick,
		"watcher_id", s.cfg.WatcherID,
	)
	return nil
}

// Stop cancels the ticker and any in-flight request, then waits for the
// polling goroutine to exit. Stop is idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		s.clearTickerLocked()
		if s.mode == ModeConnected {
			s.mode = ModeIdle
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Snapshot returns a copy of the session's current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Mode:                s.mode,
		LastTick:            s.lastTick,
		ConsecutiveFailures: s.failures,
		WatcherID:           s.cfg.WatcherID,
		Interval:            s.interval,
	}
}

func (s *Session) run(ctx context.Context, ticker Ticker) {
	defer s.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			if s.ticker == ticker {
				// parent cancelled; Stop and disconnect clear their own ticker
				s.clearTickerLocked()
				s.mode = ModeIdle
			}
			s.mu.Unlock()
			return
		case <-ticker.C():
			if disconnected := s.cycle(ctx); disconnected {
				return
			}
		}
	}
}

// clearTickerLocked stops the active ticker and its goroutine. s.mu must be held.
func (s *Session) clearTickerLocked() {
	if s.cancelLoop != nil {
		s.cancelLoop()
		s.cancelLoop = nil
	}
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

// cycle runs one fetch/validate/apply round. It reports whether the session
// disconnected, in which case the caller's loop must exit.
func (s *Session) cycle(ctx context.Context) bool {
	s.mu.Lock()
	if s.failures > s.threshold {
		failures := s.failures
		tick := s.lastTick
		s.clearTickerLocked()
		s.mode = ModeDisconnected
		s.mu.Unlock()

		s.logger.Error("disconnected",
			"failures", failures,
			"threshold", s.threshold,
			"last_tick", tick,
		)
		s.showDisconnected()
		s.report(CycleResult{
			Outcome:  OutcomeDisconnected,
			Tick:     tick,
			Failures: failures,
			At:       time.Now(),
			Err:      ErrExhausted,
		})
		s.attachRecovery()
		return true
	}
	tick := s.lastTick
	s.mu.Unlock()

	start := time.Now()
	err := s.poll(ctx, tick)
	latency := time.Since(start)

	if err != nil && ctx.Err() != nil {
		// stopped mid-request; not a failure of the server
		s.report(CycleResult{Outcome: OutcomeCancelled, Tick: tick, Latency: latency, At: time.Now(), Err: err})
		return false
	}

	s.mu.Lock()
	if err != nil {
		s.failures++
	}
	result := CycleResult{
		Outcome:  classify(err),
		Tick:     s.lastTick,
		Failures: s.failures,
		Latency:  latency,
		At:       time.Now(),
		Err:      err,
	}
	s.mu.Unlock()

	if err != nil {
		s.logFailure(err, result)
	} else {
		s.logger.Debug("cycle completed",
			"tick", result.Tick,
			"latency_ms", latency.Milliseconds(),
		)
	}
	s.report(result)
	return false
}

// poll fetches one update and applies it field by field. Fields applied
// before a later field fails validation stay rendered.
func (s *Session) poll(ctx context.Context, tick float64) error {
	body, err := s.fetcher.GetUpdates(ctx, tick, s.cfg.WatcherID)
	if err != nil {
		return err
	}

	if s.cfg.ResetPolicy == ResetOnReachable {
		s.resetFailures()
	}

	p, err := decodePayload(body)
	if err != nil {
		return err
	}

	next, err := p.number(FieldTick)
	if err != nil {
		return err
	}
	s.setTick(next)
	s.setText(TargetAge, fmt.Sprintf("Age: %s ticks", FormatNumber(next)))

	if s.cfg.RequireCounts || p.has(FieldNumPlants) {
		n, err := p.number(FieldNumPlants)
		if err != nil {
			return err
		}
		s.setText(TargetPlants, "Plants: "+FormatNumber(n))
	}
	if s.cfg.RequireCounts || p.has(FieldNumWatchers) {
		n, err := p.number(FieldNumWatchers)
		if err != nil {
			return err
		}
		s.setText(TargetWatchers, "Watchers: "+FormatNumber(n))
	}

	garden, err := p.text(FieldGarden)
	if err != nil {
		return err
	}
	s.setText(TargetGarden, garden)

	if s.cfg.ResetPolicy == ResetOnValidPayload {
		s.resetFailures()
	}
	return nil
}

func (s *Session) setTick(next float64) {
	s.mu.Lock()
	prev := s.lastTick
	s.lastTick = next
	s.mu.Unlock()

	if next < prev {
		s.logger.Warn("tick went backwards", "previous", prev, "tick", next)
	}
}

func (s *Session) resetFailures() {
	s.mu.Lock()
	s.failures = 0
	s.mu.Unlock()
}

// showDisconnected greys the page and marks the age target disconnected.
func (s *Session) showDisconnected() {
	s.safeRender("set_style", func() { s.renderer.SetStyle(TargetPage, DisconnectedStyle) })
	s.setText(TargetAge, DisconnectedText)
}

// attachRecovery attaches the one-shot Reconnect control. It runs after the
// disconnected cycle is reported so a reconnect is never observed first.
func (s *Session) attachRecovery() {
	rc := &recoveryControl{session: s}
	s.safeRender("attach_control", func() {
		ctl := s.renderer.AttachControl(TargetAge, ReconnectLabel, rc.activate)
		rc.bind(ctl)
	})
}

// reconnect starts a fresh Connected period keeping lastTick and the
// watcher ID. The failure streak is cleared so the first cycle polls.
func (s *Session) reconnect() {
	s.mu.Lock()
	if s.stopped || s.mode != ModeDisconnected {
		s.mu.Unlock()
		return
	}
	s.failures = 0
	ctx, interval := s.parent, s.interval
	s.mu.Unlock()

	s.safeRender("set_style", func() { s.renderer.SetStyle(TargetPage, "") })

	if err := s.StartListening(ctx, interval); err != nil {
		s.logger.Error("reconnect failed", "error", err)
		return
	}
	s.logger.Info("reconnected", "interval", interval.String())

	if s.cfg.OnReconnect != nil {
		s.safeCall("on_reconnect", s.cfg.OnReconnect)
	}
}

func (s *Session) setText(target Target, text string) {
	s.safeRender("set_text", func() { s.renderer.SetText(target, text) })
}

func (s *Session) report(result CycleResult) {
	if s.cfg.OnCycle == nil {
		return
	}
	s.safeCall("on_cycle", func() { s.cfg.OnCycle(result) })
}

func (s *Session) safeRender(op string, fn func()) {
	if s.renderer == nil {
		return
	}
	s.safeCall(op, fn)
}

// safeCall runs fn with panic recovery. A panic is logged with a correlation
// ID and the full stack trace; the polling loop carries on.
func (s *Session) safeCall(op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("callback panic",
				"correlation_id", uuid.NewString(),
				"op", op,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}

func (s *Session) logFailure(err error, result CycleResult) {
	attrs := []any{
		"error", err.Error(),
		"outcome", string(result.Outcome),
		"failures", result.Failures,
		"latency_ms", result.Latency.Milliseconds(),
	}
	var pe *ProtocolError
	if errors.As(err, &pe) && pe.Field != "" {
		attrs = append(attrs, "field", pe.Field, "raw", pe.Raw)
	}
	var te *TransportError
	if errors.As(err, &te) && te.StatusCode != 0 {
		attrs = append(attrs, "status_code", te.StatusCode)
	}
	s.logger.Warn("cycle failed", attrs...)
}

func classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	var te *TransportError
	if errors.As(err, &te) {
		return OutcomeTransportErr
	}
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return OutcomeProtocolErr
	}
	return outcomeUnclassified
}

// recoveryControl fires a reconnect at most once and removes its control,
// whichever of activation and attachment completes first.
type recoveryControl struct {
	session *Session

	mu    sync.Mutex
	ctl   Control
	fired bool
}

func (rc *recoveryControl) bind(ctl Control) {
	rc.mu.Lock()
	rc.ctl = ctl
	fired := rc.fired
	rc.mu.Unlock()

	if fired && ctl != nil {
		ctl.Remove()
	}
}

func (rc *recoveryControl) activate() {
	rc.mu.Lock()
	if rc.fired {
		rc.mu.Unlock()
		return
	}
	rc.fired = true
	ctl := rc.ctl
	rc.mu.Unlock()

	if ctl != nil {
		ctl.Remove()
	}
	rc.session.reconnect()
}
