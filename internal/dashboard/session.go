package dashboard

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rileyhilliard/ccdash/internal/alert"
	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/errors"
	"github.com/rileyhilliard/ccdash/internal/feed"
	"github.com/rileyhilliard/ccdash/internal/health"
	"github.com/rileyhilliard/ccdash/internal/poll"
)

// AgentSelected records that the user picked an agent and the scheduler
// started history generation Generation for it.
type AgentSelected struct {
	AgentID    string
	Generation uint64
}

// SelectionCleared records that the selection was dropped.
type SelectionCleared struct {
	Generation uint64
}

// RefreshToggled records a pause/resume of auto refresh.
type RefreshToggled struct {
	Paused bool
}

// ToastKind classifies a toast for styling.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastWarning
	ToastCritical
	ToastError
)

// Toast is a transient notification.
type Toast struct {
	ID   int
	Kind ToastKind
	Text string
	At   time.Time
}

// maxToasts bounds the visible stack; older toasts are dropped first.
const maxToasts = 4

// Session is the dashboard's view-model. It is not safe for concurrent use;
// the Bubble Tea update loop is its only caller.
type Session struct {
	thresholds health.Thresholds
	chart      *feed.ChartState
	evaluator  *alert.Evaluator
	logger     zerolog.Logger
	now        func() time.Time

	selected   string
	generation uint64

	rows       []RosterRow
	order      SortOrder
	rosterErr  error
	loaded     bool
	lastUpdate time.Time

	serverInfo api.ServerInfo
	serverErr  error

	paused    bool
	toasts    []Toast
	nextToast int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionClock overrides the clock used to stamp toasts.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// WithChart replaces the default chart state.
func WithChart(c *feed.ChartState) SessionOption {
	return func(s *Session) {
		s.chart = c
	}
}

// NewSession creates a session classifying with th and gating alerts with evaluator.
func NewSession(th health.Thresholds, evaluator *alert.Evaluator, logger zerolog.Logger, opts ...SessionOption) *Session {
	s := &Session{
		thresholds: th,
		chart:      feed.NewChartState(),
		evaluator:  evaluator,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply folds one event into the session and returns any toasts it raised.
// Unknown events are ignored.
func (s *Session) Apply(ev any) []Toast {
	switch ev := ev.(type) {
	case AgentSelected:
		s.selected = ev.AgentID
		s.generation = ev.Generation
		s.chart.Reset()
		s.logger.Debug().Str("agent", ev.AgentID).Uint64("generation", ev.Generation).Msg("agent selected")
		return nil

	case SelectionCleared:
		s.selected = ""
		s.generation = ev.Generation
		s.chart.Reset()
		return nil

	case RefreshToggled:
		s.paused = ev.Paused
		if ev.Paused {
			return s.push(ToastInfo, "Auto refresh paused")
		}
		return s.push(ToastInfo, "Auto refresh resumed")

	case poll.PollTick:
		s.paused = ev.Paused
		return nil

	case poll.RosterLoaded:
		return s.applyRoster(ev)

	case poll.HistoryLoaded:
		return s.applyHistory(ev)

	case poll.ServerInfoLoaded:
		wasDown := s.serverErr != nil
		s.serverInfo, s.serverErr = ev.Info, ev.Err
		if ev.Err != nil {
			s.logger.Warn().Err(ev.Err).Msg("server check failed")
			return s.push(ToastError, "Server unreachable: "+errors.Summary(ev.Err))
		}
		if wasDown {
			return s.push(ToastInfo, "Server reachable again")
		}
		return nil
	}
	return nil
}

func (s *Session) applyRoster(ev poll.RosterLoaded) []Toast {
	if ev.Err != nil {
		first := s.rosterErr == nil
		s.rosterErr = ev.Err
		s.logger.Warn().Err(ev.Err).Msg("roster fetch failed")
		if first {
			return s.push(ToastError, "Device list unavailable: "+errors.Summary(ev.Err))
		}
		return nil
	}

	s.rosterErr = nil
	s.loaded = true
	s.lastUpdate = ev.At
	s.rows = BuildRoster(ev.Agents, s.thresholds)
	if s.order != SortByHealth {
		SortRows(s.rows, s.order)
	}
	return nil
}

func (s *Session) applyHistory(ev poll.HistoryLoaded) []Toast {
	if ev.AgentID != s.selected || ev.Generation != s.generation {
		s.logger.Debug().
			Str("agent", ev.AgentID).
			Uint64("generation", ev.Generation).
			Uint64("current", s.generation).
			Msg("dropping stale history")
		return nil
	}

	if ev.Err != nil {
		first := s.chart.Current().State != feed.StateError
		s.chart.ApplyError(ev.AgentID, ev.Err)
		s.logger.Warn().Err(ev.Err).Str("agent", ev.AgentID).Msg("history fetch failed")
		if first {
			return s.push(ToastError, fmt.Sprintf("History for %s unavailable: %s", ev.AgentID, errors.Summary(ev.Err)))
		}
		return nil
	}

	prev := s.chart.LiveFeed(ev.AgentID)
	rs := s.chart.ApplyHistory(ev.AgentID, ev.Points)
	latest, ok := rs.Latest()
	if !ok {
		return nil
	}

	// The same newest sample comes back until the agent reports again.
	if n := len(prev); n > 0 && prev[n-1].At.Equal(latest.Timestamp) {
		return nil
	}
	s.chart.UpdateLiveFeed(ev.AgentID, feed.NewEntry(ev.AgentID, latest, s.thresholds))

	var toasts []Toast
	for _, a := range s.evaluator.Evaluate(ev.AgentID, latest.CPUPercent, latest.MemoryPercent, latest.DiskPercent) {
		kind := ToastWarning
		if a.Severity == alert.SeverityCritical {
			kind = ToastCritical
		}
		s.logger.Info().Str("agent", a.AgentID).Str("metric", a.Metric).Float64("value", a.Value).Msg("alert raised")
		toasts = append(toasts, s.push(kind, a.Message())...)
	}
	return toasts
}

func (s *Session) push(kind ToastKind, text string) []Toast {
	s.nextToast++
	t := Toast{ID: s.nextToast, Kind: kind, Text: text, At: s.now()}
	s.toasts = append(s.toasts, t)
	if len(s.toasts) > maxToasts {
		s.toasts = s.toasts[len(s.toasts)-maxToasts:]
	}
	return []Toast{t}
}

// DismissToast removes the toast with id, if still present.
func (s *Session) DismissToast(id int) {
	kept := make([]Toast, 0, len(s.toasts))
	for _, t := range s.toasts {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.toasts = kept
}

// Toasts returns a copy of the visible toasts, oldest first.
func (s *Session) Toasts() []Toast {
	return append([]Toast(nil), s.toasts...)
}

// CycleSort advances the sort order and re-sorts the rows.
func (s *Session) CycleSort() SortOrder {
	s.order = s.order.Next()
	SortRows(s.rows, s.order)
	return s.order
}

// SortOrder returns the current sort order.
func (s *Session) SortOrder() SortOrder {
	return s.order
}

// ToggleSeries flips visibility of a series for the selected agent.
// It reports the new visibility; with no selection it does nothing.
func (s *Session) ToggleSeries(series feed.Series) bool {
	if s.selected == "" {
		return false
	}
	return s.chart.ToggleSeries(s.selected, series)
}

// Selected returns the selected agent id and its generation.
func (s *Session) Selected() (string, uint64) {
	return s.selected, s.generation
}

// SelectedRow returns the roster row of the selected agent.
func (s *Session) SelectedRow() (RosterRow, bool) {
	if s.selected == "" {
		return RosterRow{}, false
	}
	if i := IndexOf(s.rows, s.selected); i >= 0 {
		return s.rows[i], true
	}
	return RosterRow{}, false
}

// Rows returns the roster rows in display order.
func (s *Session) Rows() []RosterRow {
	return s.rows
}

// RosterErr returns the last roster fetch error, cleared on success.
func (s *Session) RosterErr() error {
	return s.rosterErr
}

// Loaded reports whether any roster has been received.
func (s *Session) Loaded() bool {
	return s.loaded
}

// LastUpdate is the time of the last successful roster fetch.
func (s *Session) LastUpdate() time.Time {
	return s.lastUpdate
}

// Server returns the last server check result.
func (s *Session) Server() (api.ServerInfo, error) {
	return s.serverInfo, s.serverErr
}

// Paused reports whether auto refresh is paused.
func (s *Session) Paused() bool {
	return s.paused
}

// Chart returns the chart state.
func (s *Session) Chart() *feed.ChartState {
	return s.chart
}

// Thresholds returns the classification thresholds.
func (s *Session) Thresholds() health.Thresholds {
	return s.thresholds
}
