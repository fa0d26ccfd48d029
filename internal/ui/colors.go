package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/rileyhilliard/ccdash/internal/health"
)

// Neon palette shared with the dashboard.
const (
	ColorNeonPink   lipgloss.Color = "#FF2E97"
	ColorNeonCyan   lipgloss.Color = "#00FFFF"
	ColorNeonPurple lipgloss.Color = "#BD00FF"
	ColorNeonGreen  lipgloss.Color = "#39FF14"
	ColorNeonOrange lipgloss.Color = "#FF6B35"
	ColorNeonAmber  lipgloss.Color = "#FFAA00"

	ColorDeepVoid    lipgloss.Color = "#0D0221"
	ColorDarkSurface lipgloss.Color = "#1A1A2E"
	ColorGlassBorder lipgloss.Color = "#3D3D5C"
)

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "#39FF14"
	ColorError   lipgloss.Color = "#FF0055"
	ColorWarning lipgloss.Color = "#FFAA00"
	ColorInfo    lipgloss.Color = "#00FFFF"
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "#E0E0E0"
	ColorSecondary lipgloss.Color = "#8888AA"
	ColorMuted     lipgloss.Color = "#555577"
)

// GradientColors cycles the spinner glyph (pink -> purple -> cyan -> green).
var GradientColors = []lipgloss.Color{
	ColorNeonPink,
	ColorNeonPurple,
	ColorNeonCyan,
	ColorNeonGreen,
}

// TierColor maps a health tier to its status color.
func TierColor(t health.Tier) lipgloss.Color {
	switch t {
	case health.Good:
		return ColorSuccess
	case health.Moderate:
		return ColorWarning
	case health.Danger:
		return ColorError
	default:
		return ColorMuted
	}
}

// ThresholdColor colors a single metric value by the tier it falls in.
func ThresholdColor(percent float64, th health.Thresholds) lipgloss.Color {
	return TierColor(th.MetricTier(percent))
}

func SuccessStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorSuccess) }
func ErrorStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorError) }
func WarningStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorWarning) }
func InfoStyle() lipgloss.Style    { return lipgloss.NewStyle().Foreground(ColorInfo) }
func MutedStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorMuted) }

// TierStyle is a bold style in the tier's color.
func TierStyle(t health.Tier) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(TierColor(t)).Bold(true)
}

// PrintWarning writes a yellow warning line to stderr.
func PrintWarning(msg string) {
	fmt.Fprintln(os.Stderr, WarningStyle().Render(SymbolWarning+" "+msg))
}

// DisableColors switches lipgloss to plain ASCII output (--no-color, NO_COLOR,
// or output that isn't a terminal).
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
