package daemon

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
	"github.com/eliteGoblin/focusd/focus_mon/internal/usecase"
)

// Poll skip reasons, used as a metrics label.
const (
	SkipUnavailable = "unavailable"
	SkipError       = "error"
	SkipNone        = "none"
	SkipIgnored     = "ignored"
)

// PollingMonitor is the backstop for blocked-app detection. It asks the OS
// which app was most recently in the foreground on a fixed tick. It has no
// UI snapshot, so it never blocks by address.
type PollingMonitor struct {
	query      domain.ForegroundQuery
	classifier *usecase.Classifier
	dispatcher *Dispatcher
	screenTime *usecase.ScreenTime
	metrics    domain.MonitorMetrics
	ignored    map[string]bool
	interval   time.Duration
	window     time.Duration
	logger     *zap.Logger

	unavailable sync.Once
}

// NewPollingMonitor creates a polling monitor. screenTime may be nil.
func NewPollingMonitor(
	query domain.ForegroundQuery,
	classifier *usecase.Classifier,
	dispatcher *Dispatcher,
	screenTime *usecase.ScreenTime,
	metrics domain.MonitorMetrics,
	cfg Config,
	logger *zap.Logger,
) *PollingMonitor {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &PollingMonitor{
		query:      query,
		classifier: classifier,
		dispatcher: dispatcher,
		screenTime: screenTime,
		metrics:    metrics,
		ignored:    ignoredApps(cfg.SelfID),
		interval:   cfg.PollInterval,
		window:     cfg.PollWindow,
		logger:     logger,
	}
}

// Name identifies the task in supervisor logs.
func (m *PollingMonitor) Name() string {
	return "polling_monitor"
}

// Run ticks until ctx is canceled.
func (m *PollingMonitor) Run(ctx context.Context) error {
	m.logger.Info("polling monitor started",
		zap.Duration("interval", m.interval),
		zap.Duration("window", m.window))

	m.Tick(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("polling monitor stopping")
			return ctx.Err()

		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// Tick runs one poll. A missing or unavailable foreground app skips the tick.
func (m *PollingMonitor) Tick(ctx context.Context) {
	appID, err := m.query.MostRecent(ctx, m.window)
	if err != nil {
		if errors.Is(err, domain.ErrForegroundUnavailable) {
			m.unavailable.Do(func() {
				m.logger.Warn("foreground query unavailable, polling degraded to no-op", zap.Error(err))
			})
			m.metrics.PollSkipped(SkipUnavailable)
			return
		}
		m.logger.Debug("foreground query failed", zap.Error(err))
		m.metrics.PollSkipped(SkipError)
		return
	}
	if appID == "" {
		m.metrics.PollSkipped(SkipNone)
		return
	}

	if m.screenTime != nil {
		m.screenTime.Add(m.interval)
	}

	if m.ignored[appID] {
		m.metrics.PollSkipped(SkipIgnored)
		return
	}

	decision, ok := m.classifier.Classify(domain.KindForegroundChanged, domain.ForegroundContext{AppID: appID})
	if !ok || decision.Category != domain.CategoryApp {
		return
	}

	m.dispatcher.Dispatch(ctx, SourcePoll, decision)
}
