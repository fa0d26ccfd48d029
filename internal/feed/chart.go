// Package feed turns fetched history into chart-ready series and keeps the
// per-agent live feed.
//
// ChartState is owned by a single goroutine (the dashboard update loop) and
// is not safe for concurrent use. LiveFeed is.
package feed

import (
	"math"
	"sort"
	"time"

	"github.com/rileyhilliard/ccdash/internal/api"
)

// LabelFormat is the time format used for chart x-axis labels.
const LabelFormat = "15:04:05"

// FlatBand is the largest absolute delta still reported as flat.
const FlatBand = 0.05

// State describes what a RenderableSeries holds.
type State int

const (
	// StateEmpty means nothing is selected.
	StateEmpty State = iota
	// StateNoData means the fetch succeeded with zero points.
	StateNoData
	// StateError means the last fetch failed.
	StateError
	// StateReady means series are populated.
	StateReady
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNoData:
		return "no-data"
	case StateError:
		return "error"
	case StateReady:
		return "ready"
	default:
		return "empty"
	}
}

// Series identifies one of the three charted metrics.
type Series int

const (
	SeriesCPU Series = iota
	SeriesMemory
	SeriesDisk
)

// AllSeries lists the series in display order.
var AllSeries = []Series{SeriesCPU, SeriesMemory, SeriesDisk}

// Name returns the series legend label.
func (s Series) Name() string {
	switch s {
	case SeriesCPU:
		return "CPU Usage %"
	case SeriesMemory:
		return "Memory Usage %"
	case SeriesDisk:
		return "Disk Usage %"
	default:
		return "Unknown"
	}
}

// Short returns a compact label for cards.
func (s Series) Short() string {
	switch s {
	case SeriesCPU:
		return "CPU"
	case SeriesMemory:
		return "Memory"
	case SeriesDisk:
		return "Disk"
	default:
		return "?"
	}
}

// Value picks this series out of a history point.
func (s Series) Value(p api.HistoryPoint) float64 {
	switch s {
	case SeriesCPU:
		return p.CPUPercent
	case SeriesMemory:
		return p.MemoryPercent
	default:
		return p.DiskPercent
	}
}

// Direction of a metric trend.
type Direction int

const (
	Flat Direction = iota
	Up
	Down
)

// Arrow returns a single-glyph indicator for the direction.
func (d Direction) Arrow() string {
	switch d {
	case Up:
		return "↑"
	case Down:
		return "↓"
	default:
		return "→"
	}
}

// Trend is the change between the two most recent samples of a metric.
type Trend struct {
	Delta     float64
	Direction Direction
}

// NewTrend classifies delta using FlatBand.
func NewTrend(delta float64) Trend {
	switch {
	case math.Abs(delta) <= FlatBand:
		return Trend{Delta: delta, Direction: Flat}
	case delta > 0:
		return Trend{Delta: delta, Direction: Up}
	default:
		return Trend{Delta: delta, Direction: Down}
	}
}

// Line is one charted series with its visibility.
type Line struct {
	Series  Series
	Name    string
	Values  []float64
	Visible bool
}

// RenderableSeries is the chart model for one agent.
type RenderableSeries struct {
	AgentID    string
	State      State
	Err        error
	Labels     []string
	Timestamps []time.Time
	Lines      []Line
	// Points is the history in chronological order.
	Points []api.HistoryPoint
	// Trends is indexed by Series.
	Trends [3]Trend
}

// Latest returns the newest point. ok is false unless State is StateReady.
func (r RenderableSeries) Latest() (p api.HistoryPoint, ok bool) {
	if r.State != StateReady || len(r.Points) == 0 {
		return api.HistoryPoint{}, false
	}
	return r.Points[len(r.Points)-1], true
}

// Line returns the line for s.
func (r RenderableSeries) Line(s Series) (Line, bool) {
	for _, l := range r.Lines {
		if l.Series == s {
			return l, true
		}
	}
	return Line{}, false
}

// Option configures a ChartState.
type Option func(*ChartState)

// WithLocation renders labels in loc instead of the local zone.
func WithLocation(loc *time.Location) Option {
	return func(c *ChartState) {
		c.loc = loc
	}
}

// WithFeedSize overrides the live feed capacity.
func WithFeedSize(n int) Option {
	return func(c *ChartState) {
		c.feed = NewLiveFeed(n)
	}
}

// ChartState holds the current chart plus per-agent visibility and live feeds.
type ChartState struct {
	loc        *time.Location
	current    RenderableSeries
	visibility map[string]*[3]bool
	feed       *LiveFeed
}

// NewChartState creates an empty chart state.
func NewChartState(opts ...Option) *ChartState {
	c := &ChartState{
		loc:        time.Local,
		visibility: make(map[string]*[3]bool),
		feed:       NewLiveFeed(DefaultFeedSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location is the zone labels are rendered in.
func (c *ChartState) Location() *time.Location {
	return c.loc
}

// Current returns the most recently built chart.
func (c *ChartState) Current() RenderableSeries {
	return c.current
}

// ApplyHistory rebuilds the chart for agentID from points served newest
// first. An empty input yields StateNoData, never an error.
func (c *ChartState) ApplyHistory(agentID string, points []api.HistoryPoint) RenderableSeries {
	if len(points) == 0 {
		c.current = RenderableSeries{AgentID: agentID, State: StateNoData}
		return c.current
	}

	chrono := Chronological(points)
	vis := c.visibilityFor(agentID)

	r := RenderableSeries{
		AgentID:    agentID,
		State:      StateReady,
		Labels:     make([]string, len(chrono)),
		Timestamps: make([]time.Time, len(chrono)),
		Points:     chrono,
		Trends:     Trends(chrono),
	}
	for i, p := range chrono {
		r.Timestamps[i] = p.Timestamp
		r.Labels[i] = p.Timestamp.In(c.loc).Format(LabelFormat)
	}
	for _, s := range AllSeries {
		values := make([]float64, len(chrono))
		for i, p := range chrono {
			values[i] = s.Value(p)
		}
		r.Lines = append(r.Lines, Line{
			Series:  s,
			Name:    s.Name(),
			Values:  values,
			Visible: vis[s],
		})
	}

	c.current = r
	return r
}

// ApplyError records a failed fetch for agentID.
func (c *ChartState) ApplyError(agentID string, err error) RenderableSeries {
	c.current = RenderableSeries{AgentID: agentID, State: StateError, Err: err}
	return c.current
}

// Reset clears the current chart. Visibility maps and feeds are kept.
func (c *ChartState) Reset() {
	c.current = RenderableSeries{}
}

// ToggleSeries flips s for agentID and returns the new visibility.
func (c *ChartState) ToggleSeries(agentID string, s Series) bool {
	if s < SeriesCPU || s > SeriesDisk {
		return false
	}
	vis := c.visibilityFor(agentID)
	vis[s] = !vis[s]

	if c.current.AgentID == agentID {
		for i := range c.current.Lines {
			if c.current.Lines[i].Series == s {
				c.current.Lines[i].Visible = vis[s]
			}
		}
	}
	return vis[s]
}

// Visible reports whether s is shown for agentID. Unseen agents show all.
func (c *ChartState) Visible(agentID string, s Series) bool {
	if s < SeriesCPU || s > SeriesDisk {
		return false
	}
	if vis, ok := c.visibility[agentID]; ok {
		return vis[s]
	}
	return true
}

// UpdateLiveFeed appends e to agentID's live feed.
func (c *ChartState) UpdateLiveFeed(agentID string, e Entry) {
	c.feed.Push(agentID, e)
}

// LiveFeed returns agentID's feed, oldest first.
func (c *ChartState) LiveFeed(agentID string) []Entry {
	return c.feed.Entries(agentID)
}

func (c *ChartState) visibilityFor(agentID string) *[3]bool {
	vis, ok := c.visibility[agentID]
	if !ok {
		vis = &[3]bool{true, true, true}
		c.visibility[agentID] = vis
	}
	return vis
}

// Chronological returns a copy of newest-first points in ascending time
// order. Equal timestamps keep their reversed relative order.
func Chronological(points []api.HistoryPoint) []api.HistoryPoint {
	out := make([]api.HistoryPoint, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Trends computes latest-minus-previous for each series over chronological
// points. Fewer than two points gives zero flat trends.
func Trends(chrono []api.HistoryPoint) [3]Trend {
	var out [3]Trend
	if len(chrono) < 2 {
		return out
	}
	latest, prev := chrono[len(chrono)-1], chrono[len(chrono)-2]
	for _, s := range AllSeries {
		out[s] = NewTrend(s.Value(latest) - s.Value(prev))
	}
	return out
}
