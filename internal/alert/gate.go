package alert

import (
	"sync"
	"time"
)

// DefaultCooldown is the minimum time between two alerts for the same key.
const DefaultCooldown = 5 * time.Minute

// Key identifies an alert stream: one agent, one metric.
type Key struct {
	AgentID string
	Metric  string
}

// Gate rate-limits repeated alerts per key with a sliding cooldown window.
// Entries are kept for the lifetime of the gate and never evicted.
type Gate struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	last   map[Key]time.Time
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithClock replaces the time source. Used by tests.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		g.now = now
	}
}

// NewGate creates a gate with the given cooldown window.
// A non-positive window falls back to DefaultCooldown.
func NewGate(window time.Duration, opts ...GateOption) *Gate {
	if window <= 0 {
		window = DefaultCooldown
	}
	g := &Gate{
		window: window,
		now:    time.Now,
		last:   make(map[Key]time.Time),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Window returns the configured cooldown.
func (g *Gate) Window() time.Duration {
	return g.window
}

// CanAlert reports whether an alert for key may be emitted now.
// The first call for a key always succeeds. Later calls succeed only once
// more than the window has elapsed since the last successful call, and every
// success restarts the window.
func (g *Gate) CanAlert(key Key) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	last, seen := g.last[key]
	if seen && now.Sub(last) <= g.window {
		return false
	}
	g.last[key] = now
	return true
}

// LastAlert returns when key last passed the gate.
func (g *Gate) LastAlert(key Key) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.last[key]
	return t, ok
}

// Len returns the number of keys that have ever alerted.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.last)
}
