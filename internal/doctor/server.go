package doctor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/errors"
)

// Prober is the part of the API client the server checks use.
type Prober interface {
	ServerInfo(ctx context.Context) (api.ServerInfo, error)
	Agents(ctx context.Context) ([]api.AgentSnapshot, error)
	History(ctx context.Context, agentID, rng string) ([]api.HistoryPoint, error)
}

const unreachableHint = "Check that the server is running, or point ccdash at it with --server or server.url"

// ServerInfoCheck verifies the server answers its info endpoint.
type ServerInfoCheck struct {
	Client Prober
	URL    string

	// Latency is the round trip of the last run.
	Latency time.Duration
}

func (c *ServerInfoCheck) Name() string     { return "server_info" }
func (c *ServerInfoCheck) Category() string { return CategoryServer }

func (c *ServerInfoCheck) Run(ctx context.Context) CheckResult {
	start := time.Now()
	info, err := c.Client.ServerInfo(ctx)
	c.Latency = time.Since(start)

	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Server %s unreachable: %s", c.URL, errors.Summary(err)),
			Suggestion: unreachableHint,
		}
	}

	msg := fmt.Sprintf("Server %s reachable (%s)", c.URL, FormatLatency(c.Latency))
	if s := info.Summary(); s != "" {
		msg += ": " + s
	}
	return CheckResult{Name: c.Name(), Status: StatusPass, Message: msg}
}

func (c *ServerInfoCheck) Fix() error { return nil }

// AgentsCheck verifies the device list endpoint and that devices report.
type AgentsCheck struct {
	Client Prober
}

func (c *AgentsCheck) Name() string     { return "server_agents" }
func (c *AgentsCheck) Category() string { return CategoryServer }

func (c *AgentsCheck) Run(ctx context.Context) CheckResult {
	agents, err := c.Client.Agents(ctx)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Device list failed: " + errors.Summary(err),
			Suggestion: unreachableHint,
		}
	}
	if len(agents) == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No devices are reporting",
			Suggestion: "Start the monitoring agent on at least one device",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%d device%s reporting", len(agents), pluralize(len(agents))),
	}
}

func (c *AgentsCheck) Fix() error { return nil }

// HistoryCheck fetches history for the first device by id.
type HistoryCheck struct {
	Client Prober
	Range  string
}

func (c *HistoryCheck) Name() string     { return "server_history" }
func (c *HistoryCheck) Category() string { return CategoryServer }

func (c *HistoryCheck) Run(ctx context.Context) CheckResult {
	agents, err := c.Client.Agents(ctx)
	if err != nil || len(agents) == 0 {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusWarn,
			Message: "History not checked: no device to query",
		}
	}

	ids := make([]string, len(agents))
	for i, a := range agents {
		ids[i] = a.AgentID
	}
	sort.Strings(ids)
	agent := ids[0]

	points, err := c.Client.History(ctx, agent, c.Range)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("History for %s failed: %s", agent, errors.Summary(err)),
			Suggestion: fmt.Sprintf("Check that the server accepts range %q", c.Range),
		}
	}
	if len(points) == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("No history for %s in the last %s", agent, c.Range),
			Suggestion: "Try a wider window with poll.history_range",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("History for %s: %d sample%s in the last %s", agent, len(points), pluralize(len(points)), c.Range),
	}
}

func (c *HistoryCheck) Fix() error { return nil }

// NewServerChecks returns the SERVER category.
func NewServerChecks(client Prober, url, rng string) []Check {
	return []Check{
		&ServerInfoCheck{Client: client, URL: url},
		&AgentsCheck{Client: client},
		&HistoryCheck{Client: client, Range: rng},
	}
}

// FormatLatency renders a round trip for humans.
func FormatLatency(d time.Duration) string {
	if d < time.Millisecond {
		return "<1ms"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
