//go:build integration

package integration

import (
	"context"
	"sync"
	"time"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
)

// recordingPresenter captures interruption screens and reminders.
type recordingPresenter struct {
	mu       sync.Mutex
	calls    []string
	shown    []domain.BlockCategory
	messages []string
}

func (p *recordingPresenter) Back(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "back")
	return nil
}

func (p *recordingPresenter) Present(ctx context.Context, category domain.BlockCategory) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "present")
	p.shown = append(p.shown, category)
	return nil
}

func (p *recordingPresenter) Notify(ctx context.Context, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message)
	return nil
}

func (p *recordingPresenter) Shown() []domain.BlockCategory {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.BlockCategory(nil), p.shown...)
}

func (p *recordingPresenter) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// scriptedQuery reports a configurable foreground app.
type scriptedQuery struct {
	mu    sync.Mutex
	appID string
	err   error
}

func (q *scriptedQuery) MostRecent(ctx context.Context, window time.Duration) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.appID, q.err
}

func (q *scriptedQuery) Set(appID string, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.appID, q.err = appID, err
}

// manualClock only moves when advanced.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
