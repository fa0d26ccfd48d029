package poll

import (
	"time"

	"github.com/rileyhilliard/ccdash/internal/api"
)

// Loop names a polling loop.
type Loop string

const (
	LoopRoster  Loop = "roster"
	LoopHistory Loop = "history"
)

// Event is delivered to the Sink. Events are immutable values.
type Event interface {
	pollEvent()
}

// Sink receives scheduler events. It is called from scheduler goroutines and
// must be safe for concurrent use; tea.Program.Send is.
type Sink func(Event)

// PollTick is emitted on every timer tick, whether or not a fetch follows.
type PollTick struct {
	Loop   Loop
	At     time.Time
	Paused bool
}

// RosterLoaded carries the result of a roster fetch.
type RosterLoaded struct {
	Agents []api.AgentSnapshot
	Err    error
	At     time.Time
}

// HistoryLoaded carries the result of a history fetch for one loop generation.
type HistoryLoaded struct {
	AgentID    string
	Generation uint64
	Points     []api.HistoryPoint
	Err        error
	At         time.Time
}

// ServerInfoLoaded carries the result of the liveness check.
type ServerInfoLoaded struct {
	Info api.ServerInfo
	Err  error
}

func (PollTick) pollEvent()         {}
func (RosterLoaded) pollEvent()     {}
func (HistoryLoaded) pollEvent()    {}
func (ServerInfoLoaded) pollEvent() {}
