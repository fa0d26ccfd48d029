package api

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// AgentSnapshot is the latest reported metrics for one agent.
type AgentSnapshot struct {
	AgentID   string    `json:"agent_id"`
	CPU       float64   `json:"cpu"`
	Memory    float64   `json:"memory"`
	Disk      float64   `json:"disk"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status,omitempty"`
}

// HistoryPoint is one historical sample for an agent.
type HistoryPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	DiskPercent   float64   `json:"disk_percent"`
}

// ServerInfo is the free-form payload of /api/server/info.
type ServerInfo map[string]any

// Summary renders the info as sorted "key=value" pairs on one line.
func (s ServerInfo) Summary() string {
	if len(s) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, s[k]))
	}
	return strings.Join(parts, " ")
}

// TransferRequest describes a host-to-client file push.
type TransferRequest struct {
	Files      []string
	Recipients []string
}

// TransferResponse is the server acknowledgement for a transfer.
type TransferResponse struct {
	Message string `json:"message"`
}

// timestampLayouts are tried in order. The server emits ISO-8601, with or
// without a UTC offset depending on version.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// UnmarshalJSON accepts timestamps with or without a zone offset.
func (a *AgentSnapshot) UnmarshalJSON(data []byte) error {
	type alias AgentSnapshot
	aux := struct {
		*alias
		Timestamp string `json:"timestamp"`
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := parseTimestamp(aux.Timestamp)
	if err != nil {
		return fmt.Errorf("agent %q: bad timestamp %q: %w", a.AgentID, aux.Timestamp, err)
	}
	a.Timestamp = t
	return nil
}

// UnmarshalJSON accepts timestamps with or without a zone offset.
func (p *HistoryPoint) UnmarshalJSON(data []byte) error {
	type alias HistoryPoint
	aux := struct {
		*alias
		Timestamp string `json:"timestamp"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := parseTimestamp(aux.Timestamp)
	if err != nil {
		return fmt.Errorf("bad history timestamp %q: %w", aux.Timestamp, err)
	}
	p.Timestamp = t
	return nil
}
