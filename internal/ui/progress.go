package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/ccdash/internal/health"
)

// Progress bar block characters.
const (
	progressFilled = '█'
	progressEmpty  = '░'
)

// RenderProgressBar draws a metric gauge colored by the tier the value falls in.
// Output format: [████████░░░░]  67%
// Values outside 0-100 are clamped for the bar but printed as-is.
func RenderProgressBar(percent float64, width int, th health.Thresholds) string {
	if width <= 0 {
		return ""
	}

	filled := filledCells(percent, width)

	var sb strings.Builder
	sb.Grow(width + 2)
	sb.WriteRune('[')
	sb.WriteString(strings.Repeat(string(progressFilled), filled))
	sb.WriteString(strings.Repeat(string(progressEmpty), width-filled))
	sb.WriteRune(']')

	style := lipgloss.NewStyle().Foreground(ThresholdColor(percent, th))
	return style.Render(sb.String()) + fmt.Sprintf(" %5.1f%%", percent)
}

func filledCells(percent float64, width int) int {
	switch {
	case percent <= 0:
		return 0
	case percent >= 100:
		return width
	}
	return int((percent / 100.0) * float64(width))
}
