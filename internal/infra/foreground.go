package infra

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
)

const xpropCommand = "xprop"

// WindowForegroundQuery implements domain.ForegroundQuery by asking the
// window manager for the active window (xprop _NET_ACTIVE_WINDOW, then its
// WM_CLASS). The active window is by definition inside any trailing window,
// so an app that has stayed on screen for minutes is still reported.
//
// When the window manager cannot be queried (no X display, xprop missing)
// the fallback query answers instead, or ErrForegroundUnavailable is
// returned when there is none.
type WindowForegroundQuery struct {
	cmdRunner CommandRunner
	fallback  domain.ForegroundQuery
	logger    *zap.Logger

	degraded sync.Once
}

// NewWindowForegroundQuery creates a query running real xprop commands with
// the process table as fallback.
func NewWindowForegroundQuery(logger *zap.Logger) *WindowForegroundQuery {
	return NewWindowForegroundQueryWithDeps(RealCommandRunner{}, NewProcessForegroundQuery(), logger)
}

// NewWindowForegroundQueryWithDeps creates a query with injectable dependencies (for testing).
// fallback may be nil.
func NewWindowForegroundQueryWithDeps(runner CommandRunner, fallback domain.ForegroundQuery, logger *zap.Logger) *WindowForegroundQuery {
	return &WindowForegroundQuery{
		cmdRunner: runner,
		fallback:  fallback,
		logger:    logger,
	}
}

// MostRecent returns the class of the active window, or "" when no window
// has focus.
func (q *WindowForegroundQuery) MostRecent(ctx context.Context, window time.Duration) (string, error) {
	app, err := q.activeWindowClass(ctx)
	if err == nil {
		return app, nil
	}

	q.degraded.Do(func() {
		q.logger.Warn("active window query failed, using fallback",
			zap.Bool("has_fallback", q.fallback != nil),
			zap.Error(err))
	})
	if q.fallback == nil {
		return "", fmt.Errorf("%w: %v", domain.ErrForegroundUnavailable, err)
	}
	return q.fallback.MostRecent(ctx, window)
}

func (q *WindowForegroundQuery) activeWindowClass(ctx context.Context) (string, error) {
	out, err := q.cmdRunner.Output(ctx, xpropCommand, "-root", "_NET_ACTIVE_WINDOW")
	if err != nil {
		return "", fmt.Errorf("xprop failed (no X11?): %w", err)
	}

	windowID, err := parseActiveWindow(string(out))
	if err != nil {
		return "", err
	}
	if windowID == "" {
		return "", nil
	}

	out, err = q.cmdRunner.Output(ctx, xpropCommand, "-id", windowID, "WM_CLASS")
	if err != nil {
		// The window closed between the two queries.
		q.logger.Debug("failed to query WM_CLASS", zap.String("window", windowID), zap.Error(err))
		return "", nil
	}
	return parseWMClass(string(out)), nil
}

// parseActiveWindow extracts the window id from
// "_NET_ACTIVE_WINDOW(WINDOW): window id # 0x3a00007". An id of 0x0 means
// nothing has focus and yields "".
func parseActiveWindow(out string) (string, error) {
	fields := strings.Fields(out)
	if len(fields) < 5 || !strings.HasPrefix(fields[len(fields)-1], "0x") {
		return "", fmt.Errorf("unexpected xprop output: %q", strings.TrimSpace(out))
	}
	id := fields[len(fields)-1]
	if strings.Trim(id[2:], "0") == "" {
		return "", nil
	}
	return id, nil
}

// parseWMClass returns the instance name, the first quoted value of
// `WM_CLASS(STRING) = "instance", "Class"`, or "" when the window has none.
func parseWMClass(out string) string {
	start := strings.IndexByte(out, '"')
	if start < 0 {
		return ""
	}
	rest := out[start+1:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// Ensure WindowForegroundQuery implements domain.ForegroundQuery.
var _ domain.ForegroundQuery = (*WindowForegroundQuery)(nil)
