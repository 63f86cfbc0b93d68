// Package infra implements the OS adapters: notification feeds, UI
// snapshots, the foreground query, the presenter, the block journal,
// runtime paths and metrics.
package infra

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
)

// ProcessInfo is the subset of a process table entry the foreground query needs.
type ProcessInfo struct {
	PID       int32
	Name      string
	CreatedAt time.Time
}

// ProcessLister abstracts the process table for testing.
type ProcessLister interface {
	List(ctx context.Context) ([]ProcessInfo, error)
}

// GopsutilLister lists processes with gopsutil.
type GopsutilLister struct{}

// List returns every process whose name and create time can be read.
// Processes that exit while being listed are skipped.
func (GopsutilLister) List(ctx context.Context) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		created, err := p.CreateTimeWithContext(ctx)
		if err != nil {
			continue
		}
		out = append(out, ProcessInfo{
			PID:       p.Pid,
			Name:      name,
			CreatedAt: time.UnixMilli(created),
		})
	}
	return out, nil
}

// ProcessForegroundQuery implements domain.ForegroundQuery on top of the
// process table: the most recently foregrounded app is approximated by the
// newest process started inside the trailing window. It only catches
// launches, so it serves as the fallback of WindowForegroundQuery.
type ProcessForegroundQuery struct {
	lister  ProcessLister
	clock   domain.Clock
	selfPID int32
}

// NewProcessForegroundQuery creates a query over the real process table.
func NewProcessForegroundQuery() *ProcessForegroundQuery {
	return NewProcessForegroundQueryWithDeps(GopsutilLister{}, domain.SystemClock{})
}

// NewProcessForegroundQueryWithDeps creates a query with injectable dependencies (for testing).
func NewProcessForegroundQueryWithDeps(lister ProcessLister, clock domain.Clock) *ProcessForegroundQuery {
	return &ProcessForegroundQuery{
		lister:  lister,
		clock:   clock,
		selfPID: int32(os.Getpid()),
	}
}

// MostRecent returns the name of the newest process created within window,
// or "" when there is none. A failed listing is reported as
// domain.ErrForegroundUnavailable.
func (q *ProcessForegroundQuery) MostRecent(ctx context.Context, window time.Duration) (string, error) {
	procs, err := q.lister.List(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrForegroundUnavailable, err)
	}

	cutoff := q.clock.Now().Add(-window)
	var newest ProcessInfo
	for _, p := range procs {
		if p.PID == q.selfPID || p.CreatedAt.Before(cutoff) {
			continue
		}
		if newest.Name == "" || p.CreatedAt.After(newest.CreatedAt) {
			newest = p
		}
	}
	return newest.Name, nil
}

// SelfName returns the current process name as the OS reports it.
func SelfName(ctx context.Context) (string, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return "", err
	}
	return p.NameWithContext(ctx)
}

// Ensure ProcessForegroundQuery implements domain.ForegroundQuery.
var _ domain.ForegroundQuery = (*ProcessForegroundQuery)(nil)
