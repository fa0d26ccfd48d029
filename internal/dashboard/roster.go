package dashboard

import (
	"sort"
	"strings"

	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/health"
)

// EmptyRosterText is shown when the server reports no agents.
const EmptyRosterText = "No devices connected"

// SortOrder defines how roster rows are sorted.
type SortOrder int

const (
	SortByHealth SortOrder = iota // worst tier first
	SortByName
	SortByCPU
	SortByMemory
	SortByDisk
)

const sortOrderCount = 5

// String returns a human-readable label for the sort order.
func (s SortOrder) String() string {
	switch s {
	case SortByHealth:
		return "health"
	case SortByName:
		return "name"
	case SortByCPU:
		return "CPU"
	case SortByMemory:
		return "memory"
	case SortByDisk:
		return "disk"
	default:
		return "health"
	}
}

// Next cycles to the next sort order.
func (s SortOrder) Next() SortOrder {
	return SortOrder((int(s) + 1) % sortOrderCount)
}

// ParseSortOrder matches a sort name case-insensitively.
func ParseSortOrder(name string) (SortOrder, bool) {
	for o := SortOrder(0); o < sortOrderCount; o++ {
		if strings.EqualFold(o.String(), name) {
			return o, true
		}
	}
	return SortByHealth, false
}

// RosterRow is one agent annotated with its health.
type RosterRow struct {
	Agent  api.AgentSnapshot
	Result health.Result
	Score  int
}

// ID returns the agent id.
func (r RosterRow) ID() string {
	return r.Agent.AgentID
}

// Tier returns the row's health tier.
func (r RosterRow) Tier() health.Tier {
	return r.Result.Tier
}

// BuildRoster classifies every agent and sorts the rows by health: danger
// first, then by the worst metric descending, then by agent id.
func BuildRoster(agents []api.AgentSnapshot, th health.Thresholds) []RosterRow {
	rows := make([]RosterRow, 0, len(agents))
	for _, a := range agents {
		report := th.Check(a.CPU, a.Memory, a.Disk)
		rows = append(rows, RosterRow{
			Agent:  a,
			Result: report.Result,
			Score:  report.Score,
		})
	}
	SortRows(rows, SortByHealth)
	return rows
}

// SortRows sorts rows in place. Ties always fall back to agent id so the
// order is deterministic.
func SortRows(rows []RosterRow, order SortOrder) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch order {
		case SortByName:
			return lessID(a, b)
		case SortByCPU:
			if a.Agent.CPU != b.Agent.CPU {
				return a.Agent.CPU > b.Agent.CPU
			}
		case SortByMemory:
			if a.Agent.Memory != b.Agent.Memory {
				return a.Agent.Memory > b.Agent.Memory
			}
		case SortByDisk:
			if a.Agent.Disk != b.Agent.Disk {
				return a.Agent.Disk > b.Agent.Disk
			}
		default:
			if a.Result.Tier != b.Result.Tier {
				return a.Result.Tier > b.Result.Tier
			}
			if a.Result.Max != b.Result.Max {
				return a.Result.Max > b.Result.Max
			}
		}
		return lessID(a, b)
	})
}

func lessID(a, b RosterRow) bool {
	return strings.Compare(a.Agent.AgentID, b.Agent.AgentID) < 0
}

// IndexOf returns the position of agentID in rows, or -1.
func IndexOf(rows []RosterRow, agentID string) int {
	for i, r := range rows {
		if r.Agent.AgentID == agentID {
			return i
		}
	}
	return -1
}

// TierCounts returns how many rows fall in each tier, indexed by tier.
func TierCounts(rows []RosterRow) [3]int {
	var counts [3]int
	for _, r := range rows {
		if t := r.Result.Tier; t >= health.Good && t <= health.Danger {
			counts[t]++
		}
	}
	return counts
}
