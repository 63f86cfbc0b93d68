package daemon

import (
	"context"
	"sync"
	"sync/atomic"
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

// chanSource is a NotificationSource backed by a channel the test owns.
type chanSource struct {
	ch  chan domain.Notification
	err error
}

func newChanSource() *chanSource {
	return &chanSource{ch: make(chan domain.Notification, 16)}
}

func (s *chanSource) Subscribe(ctx context.Context) (<-chan domain.Notification, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ch, nil
}

// stubQuery returns a fixed foreground app.
type stubQuery struct {
	mu    sync.Mutex
	appID string
	err   error
	calls int
}

func (q *stubQuery) MostRecent(ctx context.Context, window time.Duration) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls++
	return q.appID, q.err
}

func (q *stubQuery) set(appID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.appID = appID
}

// mockPresenter records calls in order.
type mockPresenter struct {
	mu         sync.Mutex
	calls      []string
	categories []domain.BlockCategory
	messages   []string
	notifyErr  error
}

func (m *mockPresenter) Back(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "back")
	return nil
}

func (m *mockPresenter) Present(ctx context.Context, category domain.BlockCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "present")
	m.categories = append(m.categories, category)
	return nil
}

func (m *mockPresenter) Notify(ctx context.Context, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return m.notifyErr
}

func (m *mockPresenter) presented() []domain.BlockCategory {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.BlockCategory(nil), m.categories...)
}

// recordingAction implements domain.BlockAction and optionally observes
// the monitor's state during execution.
type recordingAction struct {
	mu        sync.Mutex
	decisions []domain.BlockDecision
	during    func()
}

func (a *recordingAction) Execute(ctx context.Context, d domain.BlockDecision) {
	if a.during != nil {
		a.during()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.decisions = append(a.decisions, d)
}

func (a *recordingAction) executed() []domain.BlockDecision {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.BlockDecision(nil), a.decisions...)
}

// countingMetrics implements domain.MonitorMetrics.
type countingMetrics struct {
	mu            sync.Mutex
	notifications map[domain.EventKind]int
	accepted      map[string]int
	suppressed    map[string]int
	skipped       map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		notifications: map[domain.EventKind]int{},
		accepted:      map[string]int{},
		suppressed:    map[string]int{},
		skipped:       map[string]int{},
	}
}

func (m *countingMetrics) NotificationReceived(kind domain.EventKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[kind]++
}

func (m *countingMetrics) DecisionSubmitted(source string, category domain.BlockCategory, accepted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if accepted {
		m.accepted[source]++
	} else {
		m.suppressed[source]++
	}
}

func (m *countingMetrics) PollSkipped(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped[reason]++
}

// treeNode is an in-memory UI node that counts releases.
type treeNode struct {
	text     string
	label    string
	viewID   string
	children []*treeNode
	released *atomic.Int32
}

func (n *treeNode) Text() (string, error)   { return n.text, nil }
func (n *treeNode) Label() (string, error)  { return n.label, nil }
func (n *treeNode) ViewID() (string, error) { return n.viewID, nil }
func (n *treeNode) ChildCount() (int, error) {
	return len(n.children), nil
}

func (n *treeNode) Child(i int) (domain.UINode, error) {
	return n.children[i], nil
}

func (n *treeNode) FindByViewID(id string) ([]domain.UINode, error) {
	var out []domain.UINode
	stack := []*treeNode{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.viewID == id {
			out = append(out, cur)
		}
		for i := len(cur.children) - 1; i >= 0; i-- {
			stack = append(stack, cur.children[i])
		}
	}
	return out, nil
}

func (n *treeNode) Release() {
	if n.released != nil {
		n.released.Add(1)
	}
}

// chromeWith returns a Chrome window whose URL bar shows address.
func chromeWith(address string, released *atomic.Int32) *treeNode {
	return &treeNode{
		viewID:   "com.android.chrome:id/root",
		released: released,
		children: []*treeNode{
			{viewID: "com.android.chrome:id/toolbar", children: []*treeNode{
				{viewID: "com.android.chrome:id/url_bar", text: address},
			}},
		},
	}
}
