package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
)

// fakeClock is a manually advanced domain.Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// mockPresenter records calls in order.
type mockPresenter struct {
	mu         sync.Mutex
	calls      []string
	categories []domain.BlockCategory
	messages   []string
	backErr    error
	presentErr error
}

func (m *mockPresenter) Back(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "back")
	return m.backErr
}

func (m *mockPresenter) Present(ctx context.Context, category domain.BlockCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "present")
	m.categories = append(m.categories, category)
	return m.presentErr
}

func (m *mockPresenter) Notify(ctx context.Context, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return nil
}

// mockJournal implements domain.BlockJournal for testing.
type mockJournal struct {
	records   []domain.BlockRecord
	recordErr error
}

func (m *mockJournal) Record(rec domain.BlockRecord) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *mockJournal) Recent(limit int) ([]domain.BlockRecord, error) {
	return m.records, nil
}

func (m *mockJournal) CountSince(t time.Time) (map[domain.BlockCategory]int, error) {
	return nil, errors.New("not implemented")
}

func (m *mockJournal) Close() error { return nil }

// stubExtractor returns a fixed address.
type stubExtractor struct {
	address string
	calls   int
}

func (s *stubExtractor) Extract(appID string, root domain.UINode) (string, bool) {
	s.calls++
	return s.address, s.address != ""
}

// stubNode is an empty UI node; the stub extractor ignores it.
type stubNode struct{}

func (stubNode) Text() (string, error)                           { return "", nil }
func (stubNode) Label() (string, error)                          { return "", nil }
func (stubNode) ViewID() (string, error)                         { return "", nil }
func (stubNode) ChildCount() (int, error)                        { return 0, nil }
func (stubNode) Child(i int) (domain.UINode, error)              { return nil, nil }
func (stubNode) FindByViewID(id string) ([]domain.UINode, error) { return nil, nil }
func (stubNode) Release()                                        {}
