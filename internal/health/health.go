// Package health classifies agent resource usage into discrete health tiers
// and computes a weighted 0-100 health score.
package health

import (
	"fmt"
	"math"

	"github.com/rileyhilliard/ccdash/internal/errors"
)

// Tier is a discrete health classification. Tiers are totally ordered:
// Good < Moderate < Danger.
type Tier int

const (
	Good Tier = iota
	Moderate
	Danger
)

// Default thresholds. A metric strictly above Warning is moderate,
// strictly above Critical is danger.
const (
	DefaultWarning  = 60.0
	DefaultCritical = 80.0
)

// Score weights. They sum to 1.0.
const (
	cpuWeight    = 0.4
	memoryWeight = 0.3
	diskWeight   = 0.3
)

// String returns the lower-case tier name.
func (t Tier) String() string {
	switch t {
	case Good:
		return "good"
	case Moderate:
		return "moderate"
	case Danger:
		return "danger"
	default:
		return "unknown"
	}
}

// Label returns the display label for the tier.
func (t Tier) Label() string {
	switch t {
	case Good:
		return "Healthy"
	case Moderate:
		return "Warning"
	case Danger:
		return "Critical"
	default:
		return "Unknown"
	}
}

// ColorHint returns a renderer-neutral colour name for the tier.
func (t Tier) ColorHint() string {
	switch t {
	case Good:
		return "green"
	case Moderate:
		return "yellow"
	case Danger:
		return "red"
	default:
		return "gray"
	}
}

// Thresholds holds the WARNING and CRITICAL percentages.
type Thresholds struct {
	Warning  float64
	Critical float64
}

// DefaultThresholds returns WARNING=60, CRITICAL=80.
func DefaultThresholds() Thresholds {
	return Thresholds{Warning: DefaultWarning, Critical: DefaultCritical}
}

// Validate requires 0 <= Warning < Critical <= 100.
func (th Thresholds) Validate() error {
	if th.Warning < 0 || th.Critical > 100 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Thresholds out of range (warning %.1f, critical %.1f)", th.Warning, th.Critical),
			"Both thresholds must be between 0 and 100")
	}
	if th.Warning >= th.Critical {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Warning threshold (%.1f) must be below critical (%.1f)", th.Warning, th.Critical),
			"Lower thresholds.warning or raise thresholds.critical")
	}
	return nil
}

// Result is the outcome of classifying a metric triple.
type Result struct {
	Tier      Tier
	ColorHint string
	Max       float64
}

// Report is a classification plus its health score.
type Report struct {
	Result
	Score int
}

// MetricTier classifies a single metric value.
func (th Thresholds) MetricTier(value float64) Tier {
	switch {
	case value > th.Critical:
		return Danger
	case value > th.Warning:
		return Moderate
	default:
		return Good
	}
}

// Classify maps (cpu, memory, disk) to a tier using the worst of the three.
// Values outside [0,100] are compared as-is.
func (th Thresholds) Classify(cpu, memory, disk float64) Result {
	m := math.Max(cpu, math.Max(memory, disk))
	tier := th.MetricTier(m)
	return Result{Tier: tier, ColorHint: tier.ColorHint(), Max: m}
}

// Check classifies the triple and attaches its score.
func (th Thresholds) Check(cpu, memory, disk float64) Report {
	return Report{
		Result: th.Classify(cpu, memory, disk),
		Score:  Score(cpu, memory, disk),
	}
}

// Classify uses the default thresholds.
func Classify(cpu, memory, disk float64) Result {
	return DefaultThresholds().Classify(cpu, memory, disk)
}

// Check uses the default thresholds.
func Check(cpu, memory, disk float64) Report {
	return DefaultThresholds().Check(cpu, memory, disk)
}

// Score returns a 0-100 weighted inverse of the three metrics, rounded.
// Each headroom term is floored at zero.
func Score(cpu, memory, disk float64) int {
	s := headroom(cpu)*cpuWeight + headroom(memory)*memoryWeight + headroom(disk)*diskWeight
	return int(math.Round(s))
}

func headroom(v float64) float64 {
	return math.Max(0, 100-v)
}
