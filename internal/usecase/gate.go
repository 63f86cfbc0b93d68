// Package usecase contains application business logic.
package usecase

import (
	"sync"
	"time"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
)

// DefaultCooldown is the minimum time between two accepted blocks of the same target.
const DefaultCooldown = time.Second

// Gate implements domain.DebounceGate.
// The check and the update of (lastTarget, lastAt) happen under one lock,
// so concurrent submissions of the same target yield exactly one acceptance.
type Gate struct {
	cooldown time.Duration
	clock    domain.Clock

	mu         sync.Mutex
	lastTarget string
	lastAt     time.Time
	hasLast    bool
}

// NewGate creates a debounce gate using the wall clock.
func NewGate(cooldown time.Duration) *Gate {
	return NewGateWithClock(cooldown, domain.SystemClock{})
}

// NewGateWithClock creates a debounce gate with a custom clock (for testing).
func NewGateWithClock(cooldown time.Duration, clock domain.Clock) *Gate {
	return &Gate{cooldown: cooldown, clock: clock}
}

// Submit accepts d unless it repeats the last accepted target within the
// cooldown. A rejection leaves the state untouched, so it never extends the window.
func (g *Gate) Submit(d domain.BlockDecision) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	if g.hasLast && d.Target == g.lastTarget && now.Sub(g.lastAt) < g.cooldown {
		return false
	}

	g.lastTarget = d.Target
	g.lastAt = now
	g.hasLast = true
	return true
}

// Cooldown returns the configured window.
func (g *Gate) Cooldown() time.Duration {
	return g.cooldown
}

// Ensure Gate implements domain.DebounceGate.
var _ domain.DebounceGate = (*Gate)(nil)
