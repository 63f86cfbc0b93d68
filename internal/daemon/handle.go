package daemon

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
	"github.com/eliteGoblin/focusd/focus_mon/internal/usecase"
)

// Handle is the read side of a running monitoring subsystem.
// It is created once by New and passed to whoever needs to query it
// (status endpoint, CLI), so nothing has to reach for a global instance.
type Handle struct {
	screenTime *usecase.ScreenTime

	running    atomic.Bool
	accepted   atomic.Int64
	suppressed atomic.Int64

	mu   sync.RWMutex
	last *domain.BlockRecord
}

// Status is a point-in-time snapshot of the handle.
type Status struct {
	Running         bool       `json:"running"`
	Accepted        int64      `json:"accepted"`
	Suppressed      int64      `json:"suppressed"`
	ScreenTimeToday string     `json:"screen_time_today,omitempty"`
	LastBlock       *LastBlock `json:"last_block,omitempty"`
}

// LastBlock describes the most recently accepted decision.
type LastBlock struct {
	Target    string    `json:"target"`
	Category  string    `json:"category"`
	App       string    `json:"app"`
	Address   string    `json:"address,omitempty"`
	BlockedAt time.Time `json:"blocked_at"`
}

// NewHandle creates a handle. screenTime may be nil.
func NewHandle(screenTime *usecase.ScreenTime) *Handle {
	return &Handle{screenTime: screenTime}
}

// Running reports whether the monitors are currently running.
func (h *Handle) Running() bool {
	return h.running.Load()
}

// Accepted returns the number of decisions that passed the debounce gate.
func (h *Handle) Accepted() int64 {
	return h.accepted.Load()
}

// Suppressed returns the number of decisions rejected as duplicates.
func (h *Handle) Suppressed() int64 {
	return h.suppressed.Load()
}

// LastDecision returns the most recently accepted decision, if any.
func (h *Handle) LastDecision() (domain.BlockRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.last == nil {
		return domain.BlockRecord{}, false
	}
	return *h.last, true
}

// Status returns a snapshot suitable for JSON encoding.
func (h *Handle) Status() Status {
	s := Status{
		Running:    h.Running(),
		Accepted:   h.Accepted(),
		Suppressed: h.Suppressed(),
	}
	if h.screenTime != nil {
		s.ScreenTimeToday = usecase.FormatDuration(h.screenTime.Today())
	}
	if rec, ok := h.LastDecision(); ok {
		s.LastBlock = &LastBlock{
			Target:    rec.Target,
			Category:  string(rec.Category),
			App:       rec.AppID,
			Address:   rec.Address,
			BlockedAt: rec.BlockedAt,
		}
	}
	return s
}

// StatusHandler serves Status as JSON.
func StatusHandler(h *Handle) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(h.Status())
	})
}

func (h *Handle) setRunning(v bool) {
	h.running.Store(v)
}

func (h *Handle) observe(d domain.BlockDecision, accepted bool, at time.Time) {
	if !accepted {
		h.suppressed.Add(1)
		return
	}
	h.accepted.Add(1)

	rec := domain.BlockRecord{
		Target:    d.Target,
		Category:  d.Category,
		AppID:     d.AppID,
		Address:   d.Address,
		BlockedAt: at,
	}
	h.mu.Lock()
	h.last = &rec
	h.mu.Unlock()
}
