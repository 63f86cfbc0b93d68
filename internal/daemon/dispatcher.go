package daemon

import (
	"context"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
	"github.com/eliteGoblin/focusd/focus_mon/internal/policy"
)

// Decision sources, used as a metrics label.
const (
	SourceEvent = "event"
	SourcePoll  = "poll"
)

// Dispatcher is the path both monitors share after classification:
// submit to the debounce gate, and on acceptance run the block action.
type Dispatcher struct {
	gate    domain.DebounceGate
	action  domain.BlockAction
	metrics domain.MonitorMetrics
	handle  *Handle
	clock   domain.Clock
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher. metrics and handle may be nil.
func NewDispatcher(
	gate domain.DebounceGate,
	action domain.BlockAction,
	metrics domain.MonitorMetrics,
	handle *Handle,
	clock domain.Clock,
	logger *zap.Logger,
) *Dispatcher {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if handle == nil {
		handle = NewHandle(nil)
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Dispatcher{
		gate:    gate,
		action:  action,
		metrics: metrics,
		handle:  handle,
		clock:   clock,
		logger:  logger,
	}
}

// Dispatch submits d and executes the block if the gate accepts it.
// It reports whether the decision was accepted.
func (d *Dispatcher) Dispatch(ctx context.Context, source string, dec domain.BlockDecision) bool {
	accepted := d.gate.Submit(dec)
	d.metrics.DecisionSubmitted(source, dec.Category, accepted)
	d.handle.observe(dec, accepted, d.clock.Now())

	if !accepted {
		d.logger.Debug("decision suppressed",
			zap.String("source", source),
			zap.String("target", dec.Target))
		return false
	}

	d.action.Execute(ctx, dec)
	return true
}

// NopMetrics discards all counters.
type NopMetrics struct{}

func (NopMetrics) NotificationReceived(domain.EventKind)                {}
func (NopMetrics) DecisionSubmitted(string, domain.BlockCategory, bool) {}
func (NopMetrics) PollSkipped(string)                                   {}

// ignoredApps returns the identifiers neither monitor evaluates.
func ignoredApps(selfID string) map[string]bool {
	ignored := map[string]bool{policy.SystemUIAppID: true}
	if selfID != "" {
		ignored[selfID] = true
	}
	return ignored
}

// Ensure NopMetrics implements domain.MonitorMetrics.
var _ domain.MonitorMetrics = NopMetrics{}
