// Package poll runs the dashboard's two polling loops.
//
// The roster loop runs for the scheduler's whole lifetime. The history loop
// exists only while an agent is selected; selecting another agent or clearing
// the selection cancels it before anything else happens. Every history loop
// has a generation number that is stamped on its events so consumers can drop
// late responses from a superseded loop.
//
// Each tick launches its fetch in its own goroutine. Results are handed to the
// Sink as they arrive; the scheduler itself never touches view state.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/errors"
)

// Default intervals.
const (
	DefaultRosterInterval  = 5 * time.Second
	DefaultHistoryInterval = 10 * time.Second
)

// Fetcher is the subset of the API client the scheduler needs.
type Fetcher interface {
	Agents(ctx context.Context) ([]api.AgentSnapshot, error)
	History(ctx context.Context, agentID, rng string) ([]api.HistoryPoint, error)
	ServerInfo(ctx context.Context) (api.ServerInfo, error)
}

// Config holds loop timing.
type Config struct {
	RosterInterval  time.Duration
	HistoryInterval time.Duration
	HistoryRange    string
}

// Scheduler owns the roster and history loops.
type Scheduler struct {
	fetcher Fetcher
	sink    Sink
	cfg     Config
	logger  zerolog.Logger
	now     func() time.Time

	rosterKick chan struct{}

	mu            sync.Mutex
	runCtx        context.Context
	cancelRun     context.CancelFunc
	running       bool
	closed        bool
	paused        bool
	selected      string
	generation    uint64
	historyCancel context.CancelFunc
	historyKick   chan struct{}

	loops    sync.WaitGroup // history loop goroutines
	inflight sync.WaitGroup // fetch goroutines
}

// New creates a scheduler. Zero intervals fall back to the defaults.
func New(fetcher Fetcher, sink Sink, cfg Config, logger zerolog.Logger) *Scheduler {
	if cfg.RosterInterval <= 0 {
		cfg.RosterInterval = DefaultRosterInterval
	}
	if cfg.HistoryInterval <= 0 {
		cfg.HistoryInterval = DefaultHistoryInterval
	}
	if cfg.HistoryRange == "" {
		cfg.HistoryRange = api.DefaultRange
	}
	if sink == nil {
		sink = func(Event) {}
	}
	return &Scheduler{
		fetcher:    fetcher,
		sink:       sink,
		cfg:        cfg,
		logger:     logger.With().Str("component", "poll").Logger(),
		now:        time.Now,
		rosterKick: make(chan struct{}, 1),
	}
}

// Config returns the effective loop timing.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Run starts the roster loop, plus the history loop if an agent was selected
// beforehand, and blocks until ctx is cancelled or Stop is called. It returns
// only after every loop and in-flight fetch has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if s.running {
		s.mu.Unlock()
		return errors.New(errors.ErrConfig, "Scheduler already started", "Create a new scheduler per dashboard session")
	}
	s.running = true
	s.runCtx = ctx
	s.cancelRun = cancel
	if s.selected != "" {
		s.startHistoryLocked()
	}
	s.mu.Unlock()

	s.logger.Debug().
		Dur("roster_interval", s.cfg.RosterInterval).
		Dur("history_interval", s.cfg.HistoryInterval).
		Str("range", s.cfg.HistoryRange).
		Msg("scheduler started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.runRosterLoop(gctx)
	})
	g.Go(func() error {
		_, _ = s.CheckServer(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.shutdown()
		return nil
	})

	err := g.Wait()
	s.loops.Wait()
	s.inflight.Wait()

	s.logger.Debug().Msg("scheduler stopped")
	return err
}

// Stop tears down all loops. Run returns once they have exited.
// Calling Stop before Run prevents Run from starting.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelRun != nil {
		s.cancelRun()
	}
	s.closed = true
}

func (s *Scheduler) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopHistoryLocked()
}

// Select makes agentID the selection. Any existing history loop is cancelled
// first; a new loop with the next generation starts and fetches immediately.
// It returns the new generation.
func (s *Scheduler) Select(agentID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopHistoryLocked()
	s.selected = agentID
	s.generation++
	if s.running && !s.closed {
		s.startHistoryLocked()
	}
	s.logger.Debug().Str("agent", agentID).Uint64("generation", s.generation).Msg("selection changed")
	return s.generation
}

// ClearSelection cancels the history loop and forgets the selection.
func (s *Scheduler) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopHistoryLocked()
	if s.selected != "" {
		s.generation++
	}
	s.selected = ""
}

// Selected returns the selected agent and current generation.
func (s *Scheduler) Selected() (string, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.generation
}

// Pause stops launching fetches on ticks. Ticks still emit PollTick.
func (s *Scheduler) Pause() {
	s.setPaused(true)
}

// Resume re-enables fetches on ticks.
func (s *Scheduler) Resume() {
	s.setPaused(false)
}

// TogglePause flips the paused flag and returns the new value.
func (s *Scheduler) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
	s.logger.Info().Bool("paused", s.paused).Msg("auto refresh toggled")
	return s.paused
}

// Paused reports whether tick fetches are suspended.
func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Scheduler) setPaused(p bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused != p {
		s.paused = p
		s.logger.Info().Bool("paused", p).Msg("auto refresh toggled")
	}
}

// RefreshNow asks both loops for an immediate fetch, even when paused.
// Requests coalesce while one is pending.
func (s *Scheduler) RefreshNow() {
	kick(s.rosterKick)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.historyKick != nil {
		kick(s.historyKick)
	}
}

func kick(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// CheckServer fetches /api/server/info once, logs the result and emits
// ServerInfoLoaded.
func (s *Scheduler) CheckServer(ctx context.Context) (api.ServerInfo, error) {
	info, err := s.fetcher.ServerInfo(ctx)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("server liveness check failed")
	} else {
		s.logger.Info().Str("info", info.Summary()).Msg("server is up")
	}
	s.sink(ServerInfoLoaded{Info: info, Err: err})
	return info, err
}

func (s *Scheduler) runRosterLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.RosterInterval)
	defer ticker.Stop()

	s.fetchRoster(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.rosterKick:
			s.fetchRoster(ctx)
		case <-ticker.C:
			paused := s.Paused()
			s.sink(PollTick{Loop: LoopRoster, At: s.now(), Paused: paused})
			if !paused {
				s.fetchRoster(ctx)
			}
		}
	}
}

func (s *Scheduler) fetchRoster(ctx context.Context) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		agents, err := s.fetcher.Agents(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("roster fetch failed")
		}
		s.sink(RosterLoaded{Agents: agents, Err: err, At: s.now()})
	}()
}

// startHistoryLocked launches a loop for the current selection and generation.
// Must be called with s.mu held.
func (s *Scheduler) startHistoryLocked() {
	ctx, cancel := context.WithCancel(s.runCtx)
	kickCh := make(chan struct{}, 1)
	s.historyCancel = cancel
	s.historyKick = kickCh

	s.loops.Add(1)
	go s.runHistoryLoop(ctx, s.selected, s.generation, kickCh)
}

// stopHistoryLocked cancels the running history loop, if any.
// Must be called with s.mu held.
func (s *Scheduler) stopHistoryLocked() {
	if s.historyCancel != nil {
		s.historyCancel()
		s.historyCancel = nil
		s.historyKick = nil
	}
}

func (s *Scheduler) runHistoryLoop(ctx context.Context, agentID string, gen uint64, kickCh <-chan struct{}) {
	defer s.loops.Done()

	ticker := time.NewTicker(s.cfg.HistoryInterval)
	defer ticker.Stop()

	s.fetchHistory(ctx, agentID, gen)

	for {
		select {
		case <-ctx.Done():
			return
		case <-kickCh:
			s.fetchHistory(ctx, agentID, gen)
		case <-ticker.C:
			paused := s.Paused()
			s.sink(PollTick{Loop: LoopHistory, At: s.now(), Paused: paused})
			if !paused {
				s.fetchHistory(ctx, agentID, gen)
			}
		}
	}
}

func (s *Scheduler) fetchHistory(ctx context.Context, agentID string, gen uint64) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		points, err := s.fetcher.History(ctx, agentID, s.cfg.HistoryRange)
		if ctx.Err() != nil {
			// Loop was superseded or torn down while the request was in flight.
			return
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("agent", agentID).Msg("history fetch failed")
		}
		s.sink(HistoryLoaded{
			AgentID:    agentID,
			Generation: gen,
			Points:     points,
			Err:        err,
			At:         s.now(),
		})
	}()
}
