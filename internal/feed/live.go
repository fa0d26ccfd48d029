package feed

import (
	"sync"
	"time"

	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/health"
)

// DefaultFeedSize is the number of live feed entries retained per agent.
const DefaultFeedSize = 5

// Entry is one line of an agent's live feed.
type Entry struct {
	At      time.Time
	AgentID string
	CPU     float64
	Memory  float64
	Disk    float64
	Tier    health.Tier
}

// NewEntry builds a feed entry from a history point, classified with th.
func NewEntry(agentID string, p api.HistoryPoint, th health.Thresholds) Entry {
	return Entry{
		At:      p.Timestamp,
		AgentID: agentID,
		CPU:     p.CPUPercent,
		Memory:  p.MemoryPercent,
		Disk:    p.DiskPercent,
		Tier:    th.Classify(p.CPUPercent, p.MemoryPercent, p.DiskPercent).Tier,
	}
}

// LiveFeed keeps a bounded FIFO of recent entries per agent.
// It is safe for concurrent use.
type LiveFeed struct {
	mu     sync.RWMutex
	size   int
	agents map[string]*ringBuffer[Entry]
}

// NewLiveFeed creates a feed holding at most size entries per agent.
func NewLiveFeed(size int) *LiveFeed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &LiveFeed{
		size:   size,
		agents: make(map[string]*ringBuffer[Entry]),
	}
}

// Push appends an entry for agentID, evicting the oldest when full.
func (f *LiveFeed) Push(agentID string, e Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	buf, ok := f.agents[agentID]
	if !ok {
		buf = newRingBuffer[Entry](f.size)
		f.agents[agentID] = buf
	}
	buf.push(e)
}

// Entries returns agentID's entries, oldest first.
func (f *LiveFeed) Entries(agentID string) []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()

	buf, ok := f.agents[agentID]
	if !ok {
		return nil
	}
	return buf.getAll()
}

// Count returns the number of entries held for agentID.
func (f *LiveFeed) Count(agentID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if buf, ok := f.agents[agentID]; ok {
		return buf.len()
	}
	return 0
}

// Size returns the per-agent capacity.
func (f *LiveFeed) Size() int {
	return f.size
}

// Clear drops the feed for agentID.
func (f *LiveFeed) Clear(agentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.agents, agentID)
}
