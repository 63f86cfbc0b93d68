package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
	"github.com/eliteGoblin/focusd/focus_mon/internal/usecase"
)

// funcTask adapts a function to Task.
type funcTask struct {
	name string
	run  func(ctx context.Context) error
}

func (t funcTask) Name() string                  { return t.name }
func (t funcTask) Run(ctx context.Context) error { return t.run(ctx) }

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// TestSupervisor_CancelIsCleanStop verifies cancellation returns nil.
func TestSupervisor_CancelIsCleanStop(t *testing.T) {
	s := NewSupervisor(nil, zap.NewNop(),
		funcTask{"a", blockUntilDone},
		funcTask{"b", blockUntilDone},
	)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, s.Handle().Running, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop")
	}
	assert.False(t, s.Handle().Running())
}

// TestSupervisor_TaskFailureStopsAll verifies one failing task stops the rest.
func TestSupervisor_TaskFailureStopsAll(t *testing.T) {
	boom := errors.New("listen failed")
	s := NewSupervisor(nil, zap.NewNop(),
		funcTask{"listener", func(ctx context.Context) error { return boom }},
		funcTask{"ticker", blockUntilDone},
	)

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "listener")
}

// TestSupervisor_SourceClosedIsNotFatal verifies the other tasks keep running.
func TestSupervisor_SourceClosedIsNotFatal(t *testing.T) {
	stillRunning := make(chan struct{})
	s := NewSupervisor(nil, zap.NewNop(),
		funcTask{"event", func(ctx context.Context) error { return domain.ErrSourceClosed }},
		funcTask{"poll", func(ctx context.Context) error {
			close(stillRunning)
			return blockUntilDone(ctx)
		}},
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	<-stillRunning
	time.Sleep(20 * time.Millisecond)
	assert.True(t, s.Handle().Running())

	cancel()
	assert.NoError(t, <-done)
}

// TestNew_FullPipeline verifies the wired subsystem blocks from both feeds.
func TestNew_FullPipeline(t *testing.T) {
	source := newChanSource()
	presenter := &mockPresenter{}
	query := &stubQuery{appID: "com.google.android.youtube"}

	cfg := DefaultConfig()
	cfg.PollInterval = 10 * time.Millisecond
	s := New(cfg, Dependencies{
		Source:    source,
		Presenter: presenter,
		Query:     query,
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	source.ch <- domain.Notification{
		AppID: "com.android.chrome",
		Kind:  domain.KindContentChanged,
		Root:  chromeWith("reddit.com/r/golang", nil),
	}

	require.Eventually(t, func() bool {
		return len(presenter.presented()) >= 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	assert.ElementsMatch(t,
		[]domain.BlockCategory{domain.CategoryApp, domain.CategoryURL},
		presenter.presented()[:2])

	status := s.Handle().Status()
	assert.False(t, status.Running)
	assert.GreaterOrEqual(t, status.Accepted, int64(2))
	require.NotNil(t, status.LastBlock)
	assert.NotEmpty(t, status.ScreenTimeToday)
}

// TestHandle_Status verifies counters and JSON shape.
func TestHandle_Status(t *testing.T) {
	clock := newFakeClock()
	h := NewHandle(usecase.NewScreenTime(clock))

	_, ok := h.LastDecision()
	assert.False(t, ok)

	d := domain.BlockDecision{Target: "youtube.com", Category: domain.CategoryShortVideo, AppID: "com.android.chrome", Address: "youtube.com/shorts/a"}
	h.observe(d, true, clock.Now())
	h.observe(d, false, clock.Now())

	rec, ok := h.LastDecision()
	require.True(t, ok)
	assert.Equal(t, "youtube.com", rec.Target)
	assert.Equal(t, clock.Now(), rec.BlockedAt)

	raw, err := json.Marshal(h.Status())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["running"])
	assert.Equal(t, float64(1), decoded["accepted"])
	assert.Equal(t, float64(1), decoded["suppressed"])
	assert.Equal(t, "0m", decoded["screen_time_today"])
	last := decoded["last_block"].(map[string]any)
	assert.Equal(t, "shorts", last["category"])
	assert.Equal(t, "com.android.chrome", last["app"])
}

// TestScreenTimeReporter_Report verifies the reminder goes through Notify.
func TestScreenTimeReporter_Report(t *testing.T) {
	clock := newFakeClock()
	st := usecase.NewScreenTime(clock)
	st.Add(95 * time.Minute)
	presenter := &mockPresenter{}

	r := NewScreenTimeReporter(st, presenter, time.Minute, zap.NewNop())
	r.Report(context.Background())

	require.Len(t, presenter.messages, 1)
	assert.Equal(t, "Screen time today: 1h 35m. Consider taking a break.", presenter.messages[0])
}

// TestScreenTimeReporter_Disabled verifies a zero interval returns at once.
func TestScreenTimeReporter_Disabled(t *testing.T) {
	r := NewScreenTimeReporter(usecase.NewScreenTime(newFakeClock()), &mockPresenter{}, 0, zap.NewNop())
	assert.NoError(t, r.Run(context.Background()))
}

// TestScreenTimeReporter_NotifyFailure verifies failures are only logged.
func TestScreenTimeReporter_NotifyFailure(t *testing.T) {
	presenter := &mockPresenter{notifyErr: errors.New("no display")}
	r := NewScreenTimeReporter(usecase.NewScreenTime(newFakeClock()), presenter, time.Minute, zap.NewNop())

	assert.NotPanics(t, func() { r.Report(context.Background()) })
	assert.Len(t, presenter.messages, 1)
}

// TestStatusHandler verifies the JSON endpoint.
func TestStatusHandler(t *testing.T) {
	h := NewHandle(nil)
	h.setRunning(true)
	h.observe(domain.BlockDecision{Target: "com.tumblr", Category: domain.CategoryApp, AppID: "com.tumblr"}, true, time.Now())

	rec := httptest.NewRecorder()
	StatusHandler(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var status Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Running)
	assert.Equal(t, int64(1), status.Accepted)
	require.NotNil(t, status.LastBlock)
	assert.Equal(t, "com.tumblr", status.LastBlock.Target)
}
