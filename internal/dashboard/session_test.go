package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/ccdash/internal/alert"
	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/errors"
	"github.com/rileyhilliard/ccdash/internal/feed"
	"github.com/rileyhilliard/ccdash/internal/health"
	"github.com/rileyhilliard/ccdash/internal/logger"
	"github.com/rileyhilliard/ccdash/internal/poll"
)

var sessionEpoch = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestSession(t *testing.T) (*Session, *testClock, *logger.BufferLogger) {
	t.Helper()
	clock := &testClock{now: sessionEpoch}
	th := health.DefaultThresholds()
	gate := alert.NewGate(alert.DefaultCooldown, alert.WithClock(clock.Now))
	buf := logger.NewBufferLogger()
	s := NewSession(th, alert.NewEvaluator(th, gate), buf.Logger(),
		WithSessionClock(clock.Now),
		WithChart(feed.NewChartState(feed.WithLocation(time.UTC))))
	return s, clock, buf
}

func point(at time.Time, cpu, mem, disk float64) api.HistoryPoint {
	return api.HistoryPoint{Timestamp: at, CPUPercent: cpu, MemoryPercent: mem, DiskPercent: disk}
}

func TestSession_RosterLoaded(t *testing.T) {
	s, _, _ := newTestSession(t)
	assert.False(t, s.Loaded())

	toasts := s.Apply(poll.RosterLoaded{
		Agents: []api.AgentSnapshot{agent("ok", 10, 10, 10), agent("a1", 90, 0, 0)},
		At:     sessionEpoch,
	})

	assert.Empty(t, toasts)
	assert.True(t, s.Loaded())
	assert.Equal(t, sessionEpoch, s.LastUpdate())
	assert.Equal(t, []string{"a1", "ok"}, ids(s.Rows()))
	assert.NoError(t, s.RosterErr())
}

func TestSession_EmptyRosterIsNotAnError(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.Apply(poll.RosterLoaded{Agents: []api.AgentSnapshot{}, At: sessionEpoch})

	assert.True(t, s.Loaded())
	assert.Empty(t, s.Rows())
	assert.NoError(t, s.RosterErr())
}

func TestSession_RosterErrorToastsOnce(t *testing.T) {
	s, _, buf := newTestSession(t)
	s.Apply(poll.RosterLoaded{Agents: []api.AgentSnapshot{agent("a", 1, 1, 1)}, At: sessionEpoch})

	netErr := errors.NewNetwork("/api/agents", 502, nil)
	toasts := s.Apply(poll.RosterLoaded{Err: netErr})
	require.Len(t, toasts, 1)
	assert.Equal(t, ToastError, toasts[0].Kind)
	assert.Contains(t, toasts[0].Text, "Device list unavailable")
	assert.Equal(t, []string{"a"}, ids(s.Rows()), "last rows are kept")
	assert.True(t, buf.HasLevel("warn"))

	assert.Empty(t, s.Apply(poll.RosterLoaded{Err: netErr}), "repeated failures stay quiet")

	s.Apply(poll.RosterLoaded{Agents: nil, At: sessionEpoch.Add(time.Minute)})
	assert.NoError(t, s.RosterErr())
}

func TestSession_RosterKeepsSortOrder(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.CycleSort() // name
	s.Apply(poll.RosterLoaded{Agents: []api.AgentSnapshot{agent("b", 99, 0, 0), agent("a", 1, 0, 0)}})
	assert.Equal(t, []string{"a", "b"}, ids(s.Rows()))
	assert.Equal(t, SortByName, s.SortOrder())
}

func TestSession_AcceptedHistory(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.Apply(poll.RosterLoaded{Agents: []api.AgentSnapshot{agent("a1", 91, 0, 0)}})
	s.Apply(AgentSelected{AgentID: "a1", Generation: 1})

	t1, t2 := sessionEpoch, sessionEpoch.Add(10*time.Second)
	toasts := s.Apply(poll.HistoryLoaded{
		AgentID:    "a1",
		Generation: 1,
		Points:     []api.HistoryPoint{point(t2, 91, 20, 65), point(t1, 50, 20, 30)},
	})

	rs := s.Chart().Current()
	assert.Equal(t, feed.StateReady, rs.State)
	assert.Equal(t, []time.Time{t1, t2}, rs.Timestamps)

	entries := s.Chart().LiveFeed("a1")
	require.Len(t, entries, 1)
	assert.Equal(t, t2, entries[0].At)
	assert.Equal(t, health.Danger, entries[0].Tier)

	require.Len(t, toasts, 2)
	assert.Equal(t, ToastCritical, toasts[0].Kind)
	assert.Equal(t, "Critical CPU on a1: 91.0%", toasts[0].Text)
	assert.Equal(t, ToastWarning, toasts[1].Kind)
	assert.Equal(t, "High Disk on a1: 65.0%", toasts[1].Text)
	assert.Len(t, s.Toasts(), 2)
}

func TestSession_RepeatedLatestSampleIsNotReappended(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.Apply(AgentSelected{AgentID: "a1", Generation: 1})

	ev := poll.HistoryLoaded{AgentID: "a1", Generation: 1, Points: []api.HistoryPoint{point(sessionEpoch, 10, 10, 10)}}
	s.Apply(ev)
	s.Apply(ev)

	assert.Len(t, s.Chart().LiveFeed("a1"), 1)
}

func TestSession_CooldownSuppressesRepeatAlerts(t *testing.T) {
	s, clock, _ := newTestSession(t)
	s.Apply(AgentSelected{AgentID: "a1", Generation: 1})

	hot := func(at time.Time) poll.HistoryLoaded {
		return poll.HistoryLoaded{AgentID: "a1", Generation: 1, Points: []api.HistoryPoint{point(at, 95, 0, 0)}}
	}

	assert.Len(t, s.Apply(hot(sessionEpoch)), 1)

	clock.Advance(time.Minute)
	assert.Empty(t, s.Apply(hot(sessionEpoch.Add(time.Minute))))

	clock.Advance(5 * time.Minute)
	assert.Len(t, s.Apply(hot(sessionEpoch.Add(6*time.Minute))), 1)
}

func TestSession_StaleHistoryDiscarded(t *testing.T) {
	s, _, buf := newTestSession(t)
	s.Apply(AgentSelected{AgentID: "A", Generation: 1})
	s.Apply(AgentSelected{AgentID: "B", Generation: 2})

	late := poll.HistoryLoaded{AgentID: "A", Generation: 1, Points: []api.HistoryPoint{point(sessionEpoch, 99, 99, 99)}}
	assert.Empty(t, s.Apply(late))

	rs := s.Chart().Current()
	assert.Equal(t, feed.StateEmpty, rs.State)
	assert.Empty(t, rs.AgentID)
	assert.Empty(t, s.Chart().LiveFeed("A"))
	assert.Empty(t, s.Toasts())
	assert.True(t, buf.HasMessage("dropping stale history"))

	// Right agent, wrong generation.
	s.Apply(poll.HistoryLoaded{AgentID: "B", Generation: 1, Points: []api.HistoryPoint{point(sessionEpoch, 1, 1, 1)}})
	assert.Equal(t, feed.StateEmpty, s.Chart().Current().State)

	s.Apply(poll.HistoryLoaded{AgentID: "B", Generation: 2, Points: []api.HistoryPoint{point(sessionEpoch, 1, 1, 1)}})
	assert.Equal(t, "B", s.Chart().Current().AgentID)
}

func TestSession_HistoryAfterClearIsDiscarded(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.Apply(AgentSelected{AgentID: "A", Generation: 1})
	s.Apply(SelectionCleared{Generation: 2})

	s.Apply(poll.HistoryLoaded{AgentID: "A", Generation: 1, Points: []api.HistoryPoint{point(sessionEpoch, 1, 1, 1)}})
	assert.Equal(t, feed.StateEmpty, s.Chart().Current().State)

	sel, gen := s.Selected()
	assert.Empty(t, sel)
	assert.Equal(t, uint64(2), gen)
}

func TestSession_EmptyHistoryIsNoData(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.Apply(AgentSelected{AgentID: "A", Generation: 1})

	toasts := s.Apply(poll.HistoryLoaded{AgentID: "A", Generation: 1, Points: nil})
	assert.Empty(t, toasts)
	assert.Equal(t, feed.StateNoData, s.Chart().Current().State)
	assert.Empty(t, s.Chart().LiveFeed("A"))
}

func TestSession_HistoryError(t *testing.T) {
	s, _, buf := newTestSession(t)
	s.Apply(AgentSelected{AgentID: "A", Generation: 1})

	err := errors.NewNetwork("/api/reports/history/A", 500, nil)
	toasts := s.Apply(poll.HistoryLoaded{AgentID: "A", Generation: 1, Err: err})
	require.Len(t, toasts, 1)
	assert.Equal(t, ToastError, toasts[0].Kind)
	assert.Contains(t, toasts[0].Text, "History for A unavailable")
	assert.Equal(t, feed.StateError, s.Chart().Current().State)
	assert.True(t, buf.HasLevel("warn"))

	assert.Empty(t, s.Apply(poll.HistoryLoaded{AgentID: "A", Generation: 1, Err: err}))

	s.Apply(poll.HistoryLoaded{AgentID: "A", Generation: 1, Points: []api.HistoryPoint{point(sessionEpoch, 1, 1, 1)}})
	assert.Equal(t, feed.StateReady, s.Chart().Current().State)
}

func TestSession_SelectResetsChartButKeepsVisibility(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.Apply(AgentSelected{AgentID: "A", Generation: 1})
	s.Apply(poll.HistoryLoaded{AgentID: "A", Generation: 1, Points: []api.HistoryPoint{point(sessionEpoch, 1, 1, 1)}})
	assert.False(t, s.ToggleSeries(feed.SeriesMemory))

	s.Apply(AgentSelected{AgentID: "B", Generation: 2})
	assert.Equal(t, feed.StateEmpty, s.Chart().Current().State)
	assert.True(t, s.Chart().Visible("B", feed.SeriesMemory))

	s.Apply(AgentSelected{AgentID: "A", Generation: 3})
	s.Apply(poll.HistoryLoaded{AgentID: "A", Generation: 3, Points: []api.HistoryPoint{point(sessionEpoch, 1, 1, 1)}})
	line, ok := s.Chart().Current().Line(feed.SeriesMemory)
	require.True(t, ok)
	assert.False(t, line.Visible)
}

func TestSession_ToggleSeriesWithoutSelection(t *testing.T) {
	s, _, _ := newTestSession(t)
	assert.False(t, s.ToggleSeries(feed.SeriesCPU))
}

func TestSession_RefreshToggledAndTicks(t *testing.T) {
	s, _, _ := newTestSession(t)

	toasts := s.Apply(RefreshToggled{Paused: true})
	require.Len(t, toasts, 1)
	assert.Equal(t, "Auto refresh paused", toasts[0].Text)
	assert.True(t, s.Paused())

	s.Apply(poll.PollTick{Loop: poll.LoopRoster, Paused: false})
	assert.False(t, s.Paused())

	toasts = s.Apply(RefreshToggled{Paused: false})
	assert.Equal(t, "Auto refresh resumed", toasts[0].Text)
}

func TestSession_ServerInfo(t *testing.T) {
	s, _, _ := newTestSession(t)

	assert.Empty(t, s.Apply(poll.ServerInfoLoaded{Info: api.ServerInfo{"status": "ok"}}))
	info, err := s.Server()
	assert.NoError(t, err)
	assert.Equal(t, "ok", info["status"])

	toasts := s.Apply(poll.ServerInfoLoaded{Err: errors.NewNetwork("/api/server/info", 0, nil)})
	require.Len(t, toasts, 1)
	assert.Contains(t, toasts[0].Text, "Server unreachable")

	toasts = s.Apply(poll.ServerInfoLoaded{Info: api.ServerInfo{}})
	require.Len(t, toasts, 1)
	assert.Equal(t, "Server reachable again", toasts[0].Text)
}

func TestSession_Toasts(t *testing.T) {
	s, clock, _ := newTestSession(t)

	var last Toast
	for i := 0; i < maxToasts+2; i++ {
		clock.Advance(time.Second)
		last = s.Apply(RefreshToggled{Paused: i%2 == 0})[0]
	}

	toasts := s.Toasts()
	require.Len(t, toasts, maxToasts)
	assert.Equal(t, last.ID, toasts[len(toasts)-1].ID)
	assert.Equal(t, clock.Now(), last.At)

	s.DismissToast(last.ID)
	assert.Len(t, s.Toasts(), maxToasts-1)
	s.DismissToast(9999)
	assert.Len(t, s.Toasts(), maxToasts-1)
}

func TestSession_DismissLeavesEarlierSnapshotIntact(t *testing.T) {
	s, clock, _ := newTestSession(t)
	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		s.Apply(RefreshToggled{Paused: i%2 == 0})
	}

	before := s.Toasts()
	ids := []int{before[0].ID, before[1].ID, before[2].ID}

	s.DismissToast(ids[0])
	assert.Equal(t, ids, []int{before[0].ID, before[1].ID, before[2].ID})
	require.Len(t, s.Toasts(), 2)
	assert.Equal(t, ids[1], s.Toasts()[0].ID)
}

func TestSession_IgnoresUnknownEvents(t *testing.T) {
	s, _, _ := newTestSession(t)
	assert.Nil(t, s.Apply("something else"))
}

func TestSession_SelectedRow(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.Apply(poll.RosterLoaded{Agents: []api.AgentSnapshot{agent("a", 1, 1, 1)}})

	_, ok := s.SelectedRow()
	assert.False(t, ok)

	s.Apply(AgentSelected{AgentID: "gone", Generation: 1})
	_, ok = s.SelectedRow()
	assert.False(t, ok)

	s.Apply(AgentSelected{AgentID: "a", Generation: 2})
	row, ok := s.SelectedRow()
	require.True(t, ok)
	assert.Equal(t, "a", row.ID())
}
