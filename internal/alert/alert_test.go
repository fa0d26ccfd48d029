package alert

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/ccdash/internal/health"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestNewGate_DefaultWindow(t *testing.T) {
	assert.Equal(t, DefaultCooldown, NewGate(0).Window())
	assert.Equal(t, DefaultCooldown, NewGate(-time.Second).Window())
	assert.Equal(t, time.Minute, NewGate(time.Minute).Window())
}

func TestGate_CanAlert(t *testing.T) {
	clock := newFakeClock()
	g := NewGate(5*time.Minute, WithClock(clock.Now))
	k := Key{AgentID: "a1", Metric: MetricCPU}

	assert.True(t, g.CanAlert(k), "first call should pass")
	assert.False(t, g.CanAlert(k), "immediate repeat should be blocked")

	clock.Advance(4 * time.Minute)
	assert.False(t, g.CanAlert(k), "still within window")

	clock.Advance(time.Minute)
	assert.False(t, g.CanAlert(k), "exactly the window does not exceed it")

	clock.Advance(time.Second)
	assert.True(t, g.CanAlert(k), "window elapsed")
}

func TestGate_SlidingWindow(t *testing.T) {
	clock := newFakeClock()
	g := NewGate(5*time.Minute, WithClock(clock.Now))
	k := Key{AgentID: "a1", Metric: MetricDisk}

	require.True(t, g.CanAlert(k))
	first, _ := g.LastAlert(k)

	clock.Advance(6 * time.Minute)
	require.True(t, g.CanAlert(k))
	second, _ := g.LastAlert(k)
	assert.Equal(t, first.Add(6*time.Minute), second, "success refreshes the instant")

	// Window is measured from the second success, not the first.
	clock.Advance(4 * time.Minute)
	assert.False(t, g.CanAlert(k))
}

func TestGate_BlockedCallsDoNotRefresh(t *testing.T) {
	clock := newFakeClock()
	g := NewGate(5*time.Minute, WithClock(clock.Now))
	k := Key{AgentID: "a1", Metric: MetricMemory}

	require.True(t, g.CanAlert(k))
	clock.Advance(3 * time.Minute)
	require.False(t, g.CanAlert(k))
	clock.Advance(2*time.Minute + time.Second)
	assert.True(t, g.CanAlert(k), "blocked attempt must not restart the window")
}

func TestGate_KeysAreIndependent(t *testing.T) {
	g := NewGate(time.Hour)

	assert.True(t, g.CanAlert(Key{"a1", MetricCPU}))
	assert.True(t, g.CanAlert(Key{"a1", MetricMemory}))
	assert.True(t, g.CanAlert(Key{"a2", MetricCPU}))
	assert.False(t, g.CanAlert(Key{"a1", MetricCPU}))
	assert.Equal(t, 3, g.Len())
}

func TestGate_Concurrent(t *testing.T) {
	g := NewGate(time.Hour)
	k := Key{AgentID: "a1", Metric: MetricCPU}

	var wg sync.WaitGroup
	var mu sync.Mutex
	passed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.CanAlert(k) {
				mu.Lock()
				passed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, passed)
}

func TestEvaluator_Evaluate(t *testing.T) {
	clock := newFakeClock()
	e := NewEvaluator(health.DefaultThresholds(), NewGate(5*time.Minute, WithClock(clock.Now)))

	alerts := e.Evaluate("a1", 90, 65, 10)
	require.Len(t, alerts, 2)

	assert.Equal(t, MetricCPU, alerts[0].Metric)
	assert.Equal(t, SeverityCritical, alerts[0].Severity)
	assert.Equal(t, 90.0, alerts[0].Value)
	assert.Equal(t, clock.Now(), alerts[0].At)

	assert.Equal(t, MetricMemory, alerts[1].Metric)
	assert.Equal(t, SeverityWarning, alerts[1].Severity)

	// Disk never crossed WARNING so it never consumed a key.
	_, ok := e.Gate().LastAlert(Key{"a1", MetricDisk})
	assert.False(t, ok)

	// Repeats inside the window are suppressed.
	assert.Empty(t, e.Evaluate("a1", 95, 70, 10))

	clock.Advance(5*time.Minute + time.Second)
	assert.Len(t, e.Evaluate("a1", 95, 70, 10), 2)
}

func TestEvaluator_BoundaryNotAlerted(t *testing.T) {
	e := NewEvaluator(health.DefaultThresholds(), NewGate(time.Minute))
	assert.Empty(t, e.Evaluate("a1", 60, 60, 60))
	assert.Equal(t, 0, e.Gate().Len())
}

func TestAlert_Message(t *testing.T) {
	a := Alert{AgentID: "web-1", Metric: MetricCPU, Value: 91.25, Severity: SeverityCritical}
	assert.Equal(t, "Critical CPU on web-1: 91.2%", a.Message())

	a = Alert{AgentID: "db", Metric: MetricDisk, Value: 65, Severity: SeverityWarning}
	assert.Equal(t, "High Disk on db: 65.0%", a.Message())

	assert.Equal(t, "critical", SeverityCritical.String())
	assert.Equal(t, "warning", SeverityWarning.String())
}
