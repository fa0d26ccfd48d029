package feed

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/health"
)

var base = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func point(offset time.Duration, cpu, mem, disk float64) api.HistoryPoint {
	return api.HistoryPoint{
		Timestamp:     base.Add(offset),
		CPUPercent:    cpu,
		MemoryPercent: mem,
		DiskPercent:   disk,
	}
}

func newState() *ChartState {
	return NewChartState(WithLocation(time.UTC))
}

func TestApplyHistory_Empty(t *testing.T) {
	c := newState()

	for _, in := range [][]api.HistoryPoint{nil, {}} {
		r := c.ApplyHistory("a1", in)
		assert.Equal(t, StateNoData, r.State)
		assert.NoError(t, r.Err)
		assert.Equal(t, "a1", r.AgentID)
		assert.Empty(t, r.Lines)

		_, ok := r.Latest()
		assert.False(t, ok)
	}
}

func TestApplyError_DistinctFromNoData(t *testing.T) {
	c := newState()
	boom := errors.New("boom")

	r := c.ApplyError("a1", boom)
	assert.Equal(t, StateError, r.State)
	assert.ErrorIs(t, r.Err, boom)
	assert.NotEqual(t, StateNoData, r.State)
	assert.Equal(t, r, c.Current())
}

func TestApplyHistory_ReversesToChronological(t *testing.T) {
	c := newState()
	t1, t2, t3 := point(0, 10, 20, 30), point(5*time.Second, 11, 21, 31), point(10*time.Second, 12, 22, 32)

	r := c.ApplyHistory("a1", []api.HistoryPoint{t3, t2, t1})
	require.Equal(t, StateReady, r.State)

	assert.Equal(t, []time.Time{t1.Timestamp, t2.Timestamp, t3.Timestamp}, r.Timestamps)
	assert.Equal(t, []string{"10:00:00", "10:00:05", "10:00:10"}, r.Labels)

	require.Len(t, r.Lines, 3)
	assert.Equal(t, "CPU Usage %", r.Lines[0].Name)
	assert.Equal(t, "Memory Usage %", r.Lines[1].Name)
	assert.Equal(t, "Disk Usage %", r.Lines[2].Name)
	assert.Equal(t, []float64{10, 11, 12}, r.Lines[0].Values)
	assert.Equal(t, []float64{20, 21, 22}, r.Lines[1].Values)
	assert.Equal(t, []float64{30, 31, 32}, r.Lines[2].Values)

	latest, ok := r.Latest()
	require.True(t, ok)
	assert.Equal(t, t3, latest)
}

func TestApplyHistory_MisorderedPayloadStillMonotonic(t *testing.T) {
	c := newState()
	in := []api.HistoryPoint{
		point(10*time.Second, 1, 1, 1),
		point(0, 2, 2, 2),
		point(20*time.Second, 3, 3, 3),
		point(5*time.Second, 4, 4, 4),
	}

	r := c.ApplyHistory("a1", in)
	for i := 1; i < len(r.Timestamps); i++ {
		assert.False(t, r.Timestamps[i].Before(r.Timestamps[i-1]), "axis must be non-decreasing at %d", i)
	}
}

func TestApplyHistory_DoesNotMutateInput(t *testing.T) {
	in := []api.HistoryPoint{point(time.Second, 2, 2, 2), point(0, 1, 1, 1)}
	newState().ApplyHistory("a1", in)
	assert.Equal(t, 2.0, in[0].CPUPercent)
}

func TestApplyHistory_LabelsUseLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	c := NewChartState(WithLocation(loc))
	r := c.ApplyHistory("a1", []api.HistoryPoint{point(0, 1, 1, 1)})
	assert.Equal(t, []string{"15:30:00"}, r.Labels)
}

func TestVisibility_PreservedAcrossRebuilds(t *testing.T) {
	c := newState()
	points := []api.HistoryPoint{point(time.Second, 5, 5, 5), point(0, 1, 1, 1)}

	assert.True(t, c.Visible("a1", SeriesMemory), "unseen agent starts all-visible")

	c.ApplyHistory("a1", points)
	assert.False(t, c.ToggleSeries("a1", SeriesMemory))

	// The current chart reflects the toggle immediately.
	line, ok := c.Current().Line(SeriesMemory)
	require.True(t, ok)
	assert.False(t, line.Visible)

	// Rebuild keeps the choice.
	r := c.ApplyHistory("a1", points)
	assert.True(t, r.Lines[SeriesCPU].Visible)
	assert.False(t, r.Lines[SeriesMemory].Visible)
	assert.True(t, r.Lines[SeriesDisk].Visible)

	// Other agents are unaffected.
	r = c.ApplyHistory("b2", points)
	assert.True(t, r.Lines[SeriesMemory].Visible)

	// Back to a1 after switching: still hidden.
	r = c.ApplyHistory("a1", points)
	assert.False(t, r.Lines[SeriesMemory].Visible)

	assert.True(t, c.ToggleSeries("a1", SeriesMemory))
	assert.True(t, c.Visible("a1", SeriesMemory))
}

func TestToggleSeries_OtherAgentLeavesCurrentAlone(t *testing.T) {
	c := newState()
	c.ApplyHistory("a1", []api.HistoryPoint{point(0, 1, 1, 1)})

	c.ToggleSeries("b2", SeriesCPU)
	line, _ := c.Current().Line(SeriesCPU)
	assert.True(t, line.Visible)
	assert.False(t, c.Visible("b2", SeriesCPU))
}

func TestToggleSeries_Invalid(t *testing.T) {
	c := newState()
	assert.False(t, c.ToggleSeries("a1", Series(7)))
	assert.False(t, c.Visible("a1", Series(-1)))
}

func TestReset_KeepsVisibility(t *testing.T) {
	c := newState()
	c.ApplyHistory("a1", []api.HistoryPoint{point(0, 1, 1, 1)})
	c.ToggleSeries("a1", SeriesDisk)

	c.Reset()
	assert.Equal(t, StateEmpty, c.Current().State)
	assert.False(t, c.Visible("a1", SeriesDisk))
}

func TestTrends(t *testing.T) {
	tests := []struct {
		name   string
		points []api.HistoryPoint
		want   [3]Trend
	}{
		{
			name:   "fewer than two points",
			points: []api.HistoryPoint{point(0, 50, 50, 50)},
			want:   [3]Trend{},
		},
		{
			name:   "latest minus previous",
			points: []api.HistoryPoint{point(0, 40, 70, 30), point(time.Second, 50, 60, 30.03)},
			want: [3]Trend{
				{Delta: 10, Direction: Up},
				{Delta: -10, Direction: Down},
				{Delta: 30.03 - 30, Direction: Flat},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Trends(tt.points)
			for i := range got {
				assert.InDelta(t, tt.want[i].Delta, got[i].Delta, 1e-9)
				assert.Equal(t, tt.want[i].Direction, got[i].Direction)
			}
		})
	}
}

func TestApplyHistory_TrendUsesChronologicalOrder(t *testing.T) {
	c := newState()
	// Served newest first: latest cpu 80, previous 20.
	r := c.ApplyHistory("a1", []api.HistoryPoint{point(time.Second, 80, 0, 0), point(0, 20, 0, 0)})
	assert.Equal(t, 60.0, r.Trends[SeriesCPU].Delta)
	assert.Equal(t, "↑", r.Trends[SeriesCPU].Direction.Arrow())
}

func TestDirection_Arrow(t *testing.T) {
	assert.Equal(t, "↑", Up.Arrow())
	assert.Equal(t, "↓", Down.Arrow())
	assert.Equal(t, "→", Flat.Arrow())
	assert.Equal(t, Down, NewTrend(-0.06).Direction)
}

func TestNewTrend_FlatBandIsInclusive(t *testing.T) {
	assert.Equal(t, Flat, NewTrend(FlatBand).Direction)
	assert.Equal(t, Flat, NewTrend(-FlatBand).Direction)
	assert.Equal(t, Up, NewTrend(FlatBand+0.01).Direction)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "no-data", StateNoData.String())
	assert.Equal(t, "error", StateError.String())
	assert.Equal(t, "ready", StateReady.String())
}

func TestLiveFeed_BoundedFIFO(t *testing.T) {
	c := newState()
	for i := 0; i < 6; i++ {
		c.UpdateLiveFeed("a1", Entry{AgentID: "a1", CPU: float64(i), At: base.Add(time.Duration(i) * time.Second)})
	}

	entries := c.LiveFeed("a1")
	require.Len(t, entries, DefaultFeedSize)
	for i, e := range entries {
		assert.Equal(t, float64(i+1), e.CPU, "oldest evicted first")
	}
	assert.Nil(t, c.LiveFeed("unknown"))
}

func TestLiveFeed_PerAgent(t *testing.T) {
	f := NewLiveFeed(2)
	f.Push("a", Entry{CPU: 1})
	f.Push("b", Entry{CPU: 2})
	f.Push("a", Entry{CPU: 3})
	f.Push("a", Entry{CPU: 4})

	assert.Equal(t, 2, f.Count("a"))
	assert.Equal(t, 1, f.Count("b"))
	assert.Equal(t, 0, f.Count("c"))
	assert.Equal(t, []Entry{{CPU: 3}, {CPU: 4}}, f.Entries("a"))

	f.Clear("a")
	assert.Nil(t, f.Entries("a"))
	assert.Equal(t, DefaultFeedSize, NewLiveFeed(0).Size())
}

func TestNewEntry(t *testing.T) {
	e := NewEntry("a1", point(0, 10, 85, 20), health.DefaultThresholds())
	assert.Equal(t, "a1", e.AgentID)
	assert.Equal(t, base, e.At)
	assert.Equal(t, 85.0, e.Memory)
	assert.Equal(t, health.Danger, e.Tier)
}

func TestWithFeedSize(t *testing.T) {
	c := NewChartState(WithFeedSize(3))
	for i := 0; i < 10; i++ {
		c.UpdateLiveFeed("a1", Entry{CPU: float64(i)})
	}
	assert.Len(t, c.LiveFeed("a1"), 3)
}
