package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/hostwatch/internal/domain"
	"github.com/hamed0406/hostwatch/internal/notify"
)

// patternCapacity bounds the per-address success/failure window.
const patternCapacity = 20

// Kind identifies which condition fired.
type Kind string

const (
	KindNoResponse  Kind = "no_response"
	KindHighLatency Kind = "high_latency"
	KindRecovery    Kind = "recovery"
	KindDegradation Kind = "degradation"
	KindFlapping    Kind = "flapping"
	KindOutage      Kind = "aggregate_outage"
)

// Event is one fired notification condition.
type Event struct {
	Kind  Kind
	Title string
	Body  string
}

// Globals are the session-wide alerting switches.
type Globals struct {
	Enabled         bool
	ApplyToAll      bool
	AggregateOutage bool
}

// LatestView is what the aggregate-outage condition consults: whether every
// host in the monitored set has a cached down result. The scheduler provides
// it, since only the scheduler knows the monitored set.
type LatestView interface {
	AllDown() bool
}

// hostState is the behavioral memory kept per probed address. Addresses are
// the key (not host IDs) because a host can be rebound to a new address;
// entries for addresses no longer monitored are never pruned, an accepted
// leak bounded by the number of distinct addresses ever probed.
type hostState struct {
	prev     *domain.ProbeResult
	baseline *time.Duration
	window   []bool
}

// Evaluator advances one state machine per address and emits notification
// events. It has no knowledge of how notifications are displayed; delivery
// goes through the configured Notifier and failures there are logged and
// dropped.
type Evaluator struct {
	logger   *zap.Logger
	notifier notify.Notifier
	view     LatestView

	mu      sync.Mutex
	globals Globals
	states  map[string]*hostState
}

func NewEvaluator(logger *zap.Logger, notifier notify.Notifier, view LatestView, globals Globals) *Evaluator {
	return &Evaluator{
		logger:   logger,
		notifier: notifier,
		view:     view,
		globals:  globals,
		states:   make(map[string]*hostState),
	}
}

// SetGlobals swaps the global switches; takes effect on the next evaluation.
func (e *Evaluator) SetGlobals(g Globals) {
	e.mu.Lock()
	e.globals = g
	e.mu.Unlock()
}

// SetView installs the monitored-set view. The evaluator is built before the
// scheduler that serves as its view, so the view arrives late; without one
// the aggregate-outage condition stays silent.
func (e *Evaluator) SetView(v LatestView) {
	e.mu.Lock()
	e.view = v
	e.mu.Unlock()
}

// Evaluate advances the state machine for the result's address and delivers
// whatever fired. Conditions are independent; several may fire on one
// result. Returns the fired events so callers and tests can observe them.
func (e *Evaluator) Evaluate(ctx context.Context, host domain.Host, r domain.ProbeResult) []Event {
	e.mu.Lock()
	g := e.globals
	view := e.view
	st := e.states[r.Address]
	if st == nil {
		st = &hostState{}
		e.states[r.Address] = st
	}
	e.mu.Unlock()

	hostEnabled := g.Enabled && (host.Alerts.Enabled || g.ApplyToAll)
	cfg := host.Alerts

	var events []Event

	// 1. No-response: only on the up->down edge, or a down first result.
	if hostEnabled && cfg.NoResponse && r.Status.Down() {
		if st.prev == nil || !st.prev.Status.Down() {
			events = append(events, Event{
				Kind:  KindNoResponse,
				Title: fmt.Sprintf("🔴 %s is not responding", host.Name),
				Body:  fmt.Sprintf("%s (%s) stopped responding to probes.", host.Name, r.Address),
			})
		}
	}

	// 2. High latency: level-triggered, every cycle above the threshold.
	if hostEnabled && cfg.HighLatency && r.Latency != nil && *r.Latency > cfg.LatencyThreshold {
		events = append(events, Event{
			Kind:  KindHighLatency,
			Title: fmt.Sprintf("🐢 %s latency is high", host.Name),
			Body: fmt.Sprintf("%s responded in %s, above the %s threshold.",
				host.Name, r.Latency.Round(time.Millisecond), cfg.LatencyThreshold),
		})
	}

	// 3. Recovery: only on the down->good edge.
	if hostEnabled && cfg.Recovery && r.Status == domain.StatusGood {
		if st.prev != nil && st.prev.Status.Down() {
			events = append(events, Event{
				Kind:  KindRecovery,
				Title: fmt.Sprintf("🟢 %s recovered", host.Name),
				Body:  fmt.Sprintf("%s (%s) is responding again.", host.Name, r.Address),
			})
		}
	}

	// 4. Degradation against the running-minimum baseline.
	if hostEnabled && cfg.Degradation && r.Latency != nil && st.baseline != nil && *st.baseline > 0 {
		pct := (r.Latency.Seconds() - st.baseline.Seconds()) / st.baseline.Seconds() * 100
		if pct > cfg.DegradationPercent {
			events = append(events, Event{
				Kind:  KindDegradation,
				Title: fmt.Sprintf("📉 %s is degrading", host.Name),
				Body: fmt.Sprintf("%s latency %s is %.0f%% above its %s baseline.",
					host.Name, r.Latency.Round(time.Millisecond), pct, st.baseline.Round(time.Millisecond)),
			})
		}
	}

	// 5. Baseline update: good results only, lowered but never raised.
	if r.Status == domain.StatusGood && r.Latency != nil {
		if st.baseline == nil || *r.Latency < *st.baseline {
			lat := *r.Latency
			st.baseline = &lat
		}
	}

	// 6. Pattern window update: FIFO, capped.
	st.window = append(st.window, r.Status == domain.StatusGood)
	if len(st.window) > patternCapacity {
		st.window = st.window[len(st.window)-patternCapacity:]
	}

	// 7. Flapping: enough failures in the trailing window.
	if hostEnabled && cfg.Flapping && len(st.window) >= cfg.PatternWindow {
		failures := 0
		for _, ok := range st.window[len(st.window)-cfg.PatternWindow:] {
			if !ok {
				failures++
			}
		}
		if failures >= cfg.PatternThreshold {
			events = append(events, Event{
				Kind:  KindFlapping,
				Title: fmt.Sprintf("🔁 %s is flapping", host.Name),
				Body: fmt.Sprintf("%s failed %d of its last %d probes.",
					host.Name, failures, cfg.PatternWindow),
			})
		}
	}

	// 8. Aggregate outage: across all monitored hosts, not per-host gated.
	if g.Enabled && g.AggregateOutage && view != nil && view.AllDown() {
		events = append(events, Event{
			Kind:  KindOutage,
			Title: "🚨 All hosts unreachable",
			Body:  "Every monitored host is failing; the local network or uplink may be down.",
		})
	}

	st.prev = &r

	for _, ev := range events {
		if err := e.notifier.Send(ctx, ev.Title, ev.Body); err != nil {
			e.logger.Warn("notify_failed",
				zap.String("kind", string(ev.Kind)),
				zap.String("host", string(host.ID)),
				zap.Error(err),
			)
		}
	}
	return events
}

// StateCount reports how many addresses have behavioral state.
func (e *Evaluator) StateCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.states)
}
