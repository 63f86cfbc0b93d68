package usecase

import (
	"fmt"
	"sync"
	"time"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
)

// ScreenTime accumulates foreground time for the current local day.
type ScreenTime struct {
	clock domain.Clock

	mu    sync.Mutex
	day   time.Time
	total time.Duration
}

// NewScreenTime creates an accumulator with the given clock.
func NewScreenTime(clock domain.Clock) *ScreenTime {
	return &ScreenTime{clock: clock, day: startOfDay(clock.Now())}
}

// Add credits d to today, starting over after local midnight.
func (s *ScreenTime) Add(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollover()
	s.total += d
}

// Today returns today's accumulated foreground time.
func (s *ScreenTime) Today() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollover()
	return s.total
}

func (s *ScreenTime) rollover() {
	today := startOfDay(s.clock.Now())
	if !today.Equal(s.day) {
		s.day = today
		s.total = 0
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatDuration renders d as "Xh Ym", or "Ym" under an hour.
func FormatDuration(d time.Duration) string {
	minutes := int64(d / time.Minute)
	hours := minutes / 60
	mins := minutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// ScreenTimeMessage returns the reminder text for today's usage.
func ScreenTimeMessage(d time.Duration) string {
	minutes := int64(d / time.Minute)
	prefix := "Screen time today: " + FormatDuration(d) + "."

	switch {
	case minutes < 30:
		return prefix + " Great job staying focused!"
	case minutes < 60:
		return prefix + " You're doing well."
	case minutes < 120:
		return prefix + " Consider taking a break."
	case minutes < 180:
		return prefix + " Time to put the phone down?"
	default:
		return prefix + " Your future self is watching."
	}
}
