package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/ccdash/internal/health"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func TestColorConstants(t *testing.T) {
	colors := []lipgloss.Color{
		ColorNeonPink,
		ColorNeonCyan,
		ColorNeonPurple,
		ColorNeonGreen,
		ColorNeonOrange,
		ColorNeonAmber,
		ColorDeepVoid,
		ColorDarkSurface,
		ColorGlassBorder,
		ColorSuccess,
		ColorError,
		ColorWarning,
		ColorInfo,
		ColorPrimary,
		ColorSecondary,
		ColorMuted,
	}

	for _, color := range colors {
		s := string(color)
		require.NotEmpty(t, s)
		assert.Equal(t, byte('#'), s[0], "color should start with #: %s", s)
		assert.Len(t, s, 7, "color should be #RRGGBB: %s", s)
	}
	assert.Len(t, GradientColors, 4)
}

func TestTierColor(t *testing.T) {
	assert.Equal(t, ColorSuccess, TierColor(health.Good))
	assert.Equal(t, ColorWarning, TierColor(health.Moderate))
	assert.Equal(t, ColorError, TierColor(health.Danger))
	assert.Equal(t, ColorMuted, TierColor(health.Tier(7)))

	th := health.DefaultThresholds()
	assert.Equal(t, ColorSuccess, ThresholdColor(60, th))
	assert.Equal(t, ColorWarning, ThresholdColor(80, th))
	assert.Equal(t, ColorError, ThresholdColor(80.5, th))
}

func TestTierSymbol(t *testing.T) {
	assert.Equal(t, SymbolComplete, TierSymbol(health.Good))
	assert.Equal(t, SymbolWarning, TierSymbol(health.Moderate))
	assert.Equal(t, SymbolFail, TierSymbol(health.Danger))
	assert.Equal(t, SymbolPending, TierSymbol(health.Tier(-1)))
}

func TestStylesAreFunctional(t *testing.T) {
	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Success", SuccessStyle()},
		{"Error", ErrorStyle()},
		{"Warning", WarningStyle()},
		{"Info", InfoStyle()},
		{"Muted", MutedStyle()},
		{"Tier", TierStyle(health.Danger)},
	}

	for _, tt := range styles {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "test text", tt.style.Render("test text"))
		})
	}
}

func TestDisableColors(t *testing.T) {
	assert.NotPanics(t, DisableColors)
	assert.Equal(t, "plain", SuccessStyle().Render("plain"))
}

func TestRenderProgressBar(t *testing.T) {
	th := health.DefaultThresholds()

	assert.Empty(t, RenderProgressBar(50, 0, th))
	assert.Equal(t, "[█████░░░░░]  50.0%", RenderProgressBar(50, 10, th))
	assert.Equal(t, "[░░░░░░░░░░]  -5.0%", RenderProgressBar(-5, 10, th))
	assert.Equal(t, "[██████████] 120.0%", RenderProgressBar(120, 10, th))
}

func TestRenderSparkline(t *testing.T) {
	th := health.DefaultThresholds()

	assert.Empty(t, RenderSparkline(nil, 5, th))
	assert.Empty(t, RenderSparkline([]float64{1}, 0, th))
	assert.Equal(t, "▁█", RenderSparkline([]float64{0, 100}, 5, th))
	assert.Equal(t, "▅▅▅", RenderSparkline([]float64{40, 40, 40}, 5, th), "flat series sits mid-height")
	assert.Equal(t, "▁█", RenderSparkline([]float64{90, 10, 20}, 2, th), "keeps the newest values")
	assert.Equal(t, "▁▄█", RenderSparkline([]float64{0, 50, 100}, 3, th))
}

func TestIsTerminal_RegularFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(f))
	assert.False(t, ColorsWanted(f))
}

func TestColorsWanted_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorsWanted(os.Stdout))
}
