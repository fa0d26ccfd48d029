// Package alert decides which threshold crossings become user-visible alerts.
//
// The Gate enforces a per (agent, metric) cooldown; the Evaluator checks a
// metric triple against the health thresholds and consults the gate only for
// metrics that actually crossed WARNING.
package alert

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/ccdash/internal/health"
)

// Metric names used as the second half of an alert key.
const (
	MetricCPU    = "cpu"
	MetricMemory = "memory"
	MetricDisk   = "disk"
)

// Severity of an emitted alert.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityCritical
)

// String returns the severity name.
func (s Severity) String() string {
	if s == SeverityCritical {
		return "critical"
	}
	return "warning"
}

// Alert is an approved notification for one metric of one agent.
type Alert struct {
	AgentID  string
	Metric   string
	Value    float64
	Severity Severity
	At       time.Time
}

// Message renders the alert as a one-line notification.
func (a Alert) Message() string {
	label := map[string]string{
		MetricCPU:    "CPU",
		MetricMemory: "Memory",
		MetricDisk:   "Disk",
	}[a.Metric]
	if label == "" {
		label = a.Metric
	}
	level := "High"
	if a.Severity == SeverityCritical {
		level = "Critical"
	}
	return fmt.Sprintf("%s %s on %s: %.1f%%", level, label, a.AgentID, a.Value)
}

// Evaluator turns metric samples into gated alerts.
type Evaluator struct {
	thresholds health.Thresholds
	gate       *Gate
	now        func() time.Time
}

// NewEvaluator creates an evaluator backed by gate.
func NewEvaluator(thresholds health.Thresholds, gate *Gate) *Evaluator {
	return &Evaluator{
		thresholds: thresholds,
		gate:       gate,
		now:        gate.now,
	}
}

// Gate returns the underlying cooldown gate.
func (e *Evaluator) Gate() *Gate {
	return e.gate
}

// Evaluate checks cpu, memory and disk for agentID, in that order.
// Metrics at or below WARNING never consume a gate key.
func (e *Evaluator) Evaluate(agentID string, cpu, memory, disk float64) []Alert {
	samples := []struct {
		metric string
		value  float64
	}{
		{MetricCPU, cpu},
		{MetricMemory, memory},
		{MetricDisk, disk},
	}

	var alerts []Alert
	for _, s := range samples {
		tier := e.thresholds.MetricTier(s.value)
		if tier == health.Good {
			continue
		}
		if !e.gate.CanAlert(Key{AgentID: agentID, Metric: s.metric}) {
			continue
		}
		sev := SeverityWarning
		if tier == health.Danger {
			sev = SeverityCritical
		}
		alerts = append(alerts, Alert{
			AgentID:  agentID,
			Metric:   s.metric,
			Value:    s.value,
			Severity: sev,
			At:       e.now(),
		})
	}
	return alerts
}
