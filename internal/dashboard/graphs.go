package dashboard

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/ccdash/internal/health"
)

// Braille cells are 2 dots wide and 4 tall, so each character plots two
// samples at four levels. Cells are offsets from U+2800.
const brailleBase = '\u2800'

// dotBits[row][col] is the bit of one dot within a cell, row 0 at the top.
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

var sparklineBlocks = []rune("▁▂▃▄▅▆▇█")

// normalizePercent maps a percentage onto 0-1, clamped.
func normalizePercent(val float64) float64 {
	switch {
	case val <= 0:
		return 0
	case val >= 100:
		return 1
	default:
		return val / 100
	}
}

// GraphColor decides the color of one braille column from the highest value
// plotted in it.
type GraphColor func(colMax float64) lipgloss.Color

// ThresholdColors colors columns by tier.
func ThresholdColors(th health.Thresholds) GraphColor {
	return func(v float64) lipgloss.Color {
		return MetricColor(v, th)
	}
}

// SolidColor colors every column the same.
func SolidColor(c lipgloss.Color) GraphColor {
	return func(float64) lipgloss.Color {
		return c
	}
}

// RenderBrailleGraph renders percentage data as a braille area graph,
// height rows tall. Data wider than the graph keeps each bucket's peak; data
// narrower is right-aligned so the newest sample sits at the right edge.
func RenderBrailleGraph(data []float64, width, height int, color GraphColor) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	samples := downsample(data, width*2)
	offset := width*2 - len(samples)
	levels := height * 4

	lit := make([]int, width*2)
	peaks := make([]float64, width)
	for i, v := range samples {
		slot := offset + i
		lit[slot] = dotLevel(v, levels)
		peaks[slot/2] = math.Max(peaks[slot/2], v)
	}

	lines := make([]string, height)
	for row := range lines {
		floor := (height - 1 - row) * 4
		var sb strings.Builder
		for col := 0; col < width; col++ {
			cell := brailleBase
			for sub := 0; sub < 2; sub++ {
				for d := 0; d < lit[col*2+sub]-floor && d < 4; d++ {
					cell |= dotBits[3-d][sub]
				}
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(color(peaks[col])).Render(string(cell)))
		}
		lines[row] = sb.String()
	}
	return strings.Join(lines, "\n")
}

// dotLevel is how many of levels dots a value lights. Non-zero values always
// light at least one.
func dotLevel(v float64, levels int) int {
	n := int(math.Round(normalizePercent(v) * float64(levels)))
	if n == 0 && v > 0 {
		return 1
	}
	return n
}

// RenderMiniSparkline renders a single-row block sparkline on a fixed 0-100 scale.
func RenderMiniSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	top := len(sparklineBlocks) - 1
	var sb strings.Builder
	for _, v := range downsample(data, width) {
		sb.WriteRune(sparklineBlocks[int(math.Round(normalizePercent(v)*float64(top)))])
	}
	return sb.String()
}

// downsample shrinks data to at most n values, keeping the peak of each
// bucket so spikes survive. Shorter data is returned as is.
func downsample(data []float64, n int) []float64 {
	if n <= 0 || len(data) == 0 {
		return nil
	}
	if len(data) <= n {
		return data
	}

	out := make([]float64, n)
	for i := range out {
		lo, hi := i*len(data)/n, (i+1)*len(data)/n
		peak := data[lo]
		for _, v := range data[lo+1 : hi] {
			peak = math.Max(peak, v)
		}
		out[i] = peak
	}
	return out
}
