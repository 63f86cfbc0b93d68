package daemon

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
	"github.com/eliteGoblin/focusd/focus_mon/internal/usecase"
)

// MonitorState is the event monitor's position in its evaluation cycle.
type MonitorState int32

const (
	StateIdle MonitorState = iota
	StateEvaluating
	StateCooldown
)

func (s MonitorState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEvaluating:
		return "evaluating"
	case StateCooldown:
		return "cooldown"
	default:
		return fmt.Sprintf("MonitorState(%d)", int32(s))
	}
}

// EventMonitor consumes the push notification feed.
// Notifications are evaluated one at a time in arrival order; the next one
// is not read until the previous evaluation, including any block action,
// has returned.
type EventMonitor struct {
	source     domain.NotificationSource
	classifier *usecase.Classifier
	dispatcher *Dispatcher
	metrics    domain.MonitorMetrics
	ignored    map[string]bool
	logger     *zap.Logger

	state    atomic.Int32
	traceLog rate.Sometimes
}

// NewEventMonitor creates an event monitor. Notifications from selfID
// and from the system UI are discarded.
func NewEventMonitor(
	source domain.NotificationSource,
	classifier *usecase.Classifier,
	dispatcher *Dispatcher,
	metrics domain.MonitorMetrics,
	selfID string,
	logger *zap.Logger,
) *EventMonitor {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &EventMonitor{
		source:     source,
		classifier: classifier,
		dispatcher: dispatcher,
		metrics:    metrics,
		ignored:    ignoredApps(selfID),
		logger:     logger,
		traceLog:   rate.Sometimes{Interval: time.Second},
	}
}

// Name identifies the task in supervisor logs.
func (m *EventMonitor) Name() string {
	return "event_monitor"
}

// State returns the current state.
func (m *EventMonitor) State() MonitorState {
	return MonitorState(m.state.Load())
}

// Run subscribes to the feed and evaluates notifications until ctx is
// canceled or the feed ends. A feed that ends on its own yields
// domain.ErrSourceClosed.
func (m *EventMonitor) Run(ctx context.Context) error {
	notifications, err := m.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to notifications: %w", err)
	}

	m.logger.Info("event monitor started")

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("event monitor stopping")
			return ctx.Err()

		case n, ok := <-notifications:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return domain.ErrSourceClosed
			}
			m.HandleNotification(ctx, n)
		}
	}
}

// HandleNotification evaluates a single notification. The snapshot root is
// released before returning, whatever the outcome.
func (m *EventMonitor) HandleNotification(ctx context.Context, n domain.Notification) {
	if n.Root != nil {
		defer releaseRoot(n.Root)
	}

	if n.AppID == "" || m.ignored[n.AppID] {
		return
	}
	if !n.Kind.Valid() {
		m.logger.Debug("unknown notification kind", zap.String("kind", string(n.Kind)))
		return
	}

	m.metrics.NotificationReceived(n.Kind)
	m.traceLog.Do(func() {
		m.logger.Debug("evaluating notification",
			zap.String("app", n.AppID),
			zap.String("kind", string(n.Kind)))
	})

	m.setState(StateEvaluating)
	defer m.setState(StateIdle)

	decision, ok := m.evaluate(n)
	if !ok {
		return
	}

	if m.dispatcher.Dispatch(ctx, SourceEvent, decision) {
		// Cooldown is bookkeeping only; the deferred transition returns to
		// Idle as soon as this call ends.
		m.setState(StateCooldown)
	}
}

func (m *EventMonitor) evaluate(n domain.Notification) (d domain.BlockDecision, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("notification evaluation panicked",
				zap.String("app", n.AppID),
				zap.Any("panic", r))
			d, ok = domain.BlockDecision{}, false
		}
	}()

	return m.classifier.Classify(n.Kind, domain.ForegroundContext{
		AppID: n.AppID,
		Root:  n.Root,
	})
}

func (m *EventMonitor) setState(s MonitorState) {
	m.state.Store(int32(s))
}

func releaseRoot(n domain.UINode) {
	defer func() { _ = recover() }()
	n.Release()
}
