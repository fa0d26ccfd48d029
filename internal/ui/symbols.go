package ui

import "github.com/rileyhilliard/ccdash/internal/health"

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓"
	SymbolFail     = "✗"
	SymbolPending  = "○"
	SymbolProgress = "◐"
	SymbolComplete = "●"
	SymbolSkipped  = "⊘"
	SymbolWarning  = "⚠"
)

// TierSymbol is the roster indicator for a tier: a filled dot for healthy
// devices, a warning sign or cross otherwise.
func TierSymbol(t health.Tier) string {
	switch t {
	case health.Good:
		return SymbolComplete
	case health.Moderate:
		return SymbolWarning
	case health.Danger:
		return SymbolFail
	default:
		return SymbolPending
	}
}
