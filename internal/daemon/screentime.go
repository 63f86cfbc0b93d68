package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
	"github.com/eliteGoblin/focusd/focus_mon/internal/usecase"
)

// ScreenTimeReporter periodically sends today's screen time as a
// passive notification.
type ScreenTimeReporter struct {
	screenTime *usecase.ScreenTime
	presenter  domain.Presenter
	interval   time.Duration
	logger     *zap.Logger
}

// NewScreenTimeReporter creates a reporter. An interval of 0 disables it.
func NewScreenTimeReporter(st *usecase.ScreenTime, p domain.Presenter, interval time.Duration, logger *zap.Logger) *ScreenTimeReporter {
	return &ScreenTimeReporter{
		screenTime: st,
		presenter:  p,
		interval:   interval,
		logger:     logger,
	}
}

// Name identifies the task in supervisor logs.
func (r *ScreenTimeReporter) Name() string {
	return "screen_time_reporter"
}

// Run reports on every interval until ctx is canceled.
func (r *ScreenTimeReporter) Run(ctx context.Context) error {
	if r.interval <= 0 {
		r.logger.Info("screen time reminders disabled")
		return nil
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Report(ctx)
		}
	}
}

// Report sends the reminder for the current total.
func (r *ScreenTimeReporter) Report(ctx context.Context) {
	today := r.screenTime.Today()
	msg := usecase.ScreenTimeMessage(today)

	if err := r.presenter.Notify(ctx, msg); err != nil {
		r.logger.Warn("failed to send screen time reminder", zap.Error(err))
		return
	}
	r.logger.Info("screen time reminder sent", zap.Duration("today", today))
}
