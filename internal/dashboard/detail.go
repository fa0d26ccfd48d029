package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/ccdash/internal/errors"
	"github.com/rileyhilliard/ccdash/internal/feed"
)

// Graph sizing
const (
	graphHeightCompact  = 2
	graphHeightStandard = 3
	summaryCardWidth    = 20
)

var summaryCardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder).
	Padding(0, 1).
	MarginRight(1)

// renderAgentPanel renders the selected agent's summary, charts and live
// feed. It returns "" when there is no room or the selected agent is not in
// the roster.
func (m Model) renderAgentPanel(width int) string {
	if width < 20 || m.height <= 0 {
		return ""
	}

	selected, _ := m.session.Selected()
	if selected == "" {
		if m.LayoutMode() < LayoutStandard {
			return ""
		}
		return PanelStyle.Width(width - 2).Render(
			MutedStyle.Render("Select a device and press Enter to view its history"))
	}

	row, ok := m.session.SelectedRow()
	if !ok {
		return ""
	}

	inner := width - 4
	rs := m.session.Chart().Current()

	var lines []string
	lines = append(lines, m.renderAgentTitle(row))
	lines = append(lines, "")
	lines = append(lines, m.renderSummaryCards(row, rs, inner))
	lines = append(lines, "")

	switch rs.State {
	case feed.StateEmpty:
		lines = append(lines, MutedStyle.Render("Loading history..."))
	case feed.StateNoData:
		lines = append(lines, MutedStyle.Render(fmt.Sprintf("No samples in the last %s", m.historyRange)))
	case feed.StateError:
		lines = append(lines, ErrorStyle.Render(truncate("History unavailable: "+errors.Summary(rs.Err), inner)))
	case feed.StateReady:
		lines = append(lines, m.renderCharts(rs, inner)...)
	}

	lines = append(lines, "")
	lines = append(lines, m.renderFeedSection(selected, inner)...)

	return PanelFocusedStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) renderAgentTitle(row RosterRow) string {
	name := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render(row.ID())
	tier := TierStyle(row.Tier()).Render(IndicatorOnline + " " + row.Tier().Label())
	meta := MutedStyle.Render(fmt.Sprintf("score %d | range %s", row.Score, m.historyRange))
	return fmt.Sprintf("%s  %s  %s", name, tier, meta)
}

// renderSummaryCards shows one card per metric. Values come from the newest
// history sample when the chart is ready, otherwise from the roster snapshot.
func (m Model) renderSummaryCards(row RosterRow, rs feed.RenderableSeries, width int) string {
	th := m.session.Thresholds()
	values := [3]float64{row.Agent.CPU, row.Agent.Memory, row.Agent.Disk}
	latest, ready := rs.Latest()
	if ready {
		values = [3]float64{latest.CPUPercent, latest.MemoryPercent, latest.DiskPercent}
	}

	cards := make([]string, 0, len(feed.AllSeries))
	for _, s := range feed.AllSeries {
		v := values[s]
		value := lipgloss.NewStyle().Foreground(MetricColor(v, th)).Bold(true).Render(fmt.Sprintf("%.1f%%", v))
		trend := ""
		if ready {
			t := rs.Trends[s]
			trend = " " + trendStyle(t).Render(fmt.Sprintf("%s %+.1f", t.Direction.Arrow(), t.Delta))
		}
		body := LabelStyle.Render(s.Short()) + "\n" + value + trend
		cards = append(cards, summaryCardStyle.Render(body))
	}

	joined := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	if lipgloss.Width(joined) <= width {
		return joined
	}

	// Too narrow for cards: one line per metric.
	var lines []string
	for _, s := range feed.AllSeries {
		lines = append(lines, metricText(s.Short(), values[s], th))
	}
	return strings.Join(lines, "  ")
}

func trendStyle(t feed.Trend) lipgloss.Style {
	switch t.Direction {
	case feed.Up:
		return lipgloss.NewStyle().Foreground(ColorWarning)
	case feed.Down:
		return lipgloss.NewStyle().Foreground(ColorHealthy)
	default:
		return MutedStyle
	}
}

func (m Model) graphHeight() int {
	switch {
	case m.LayoutMode() == LayoutMinimal:
		return 0
	case m.height < HeightStandard:
		return graphHeightCompact
	default:
		return graphHeightStandard
	}
}

// renderCharts renders one section per series. Hidden series collapse to a
// single hint line.
func (m Model) renderCharts(rs feed.RenderableSeries, width int) []string {
	th := m.session.Thresholds()
	height := m.graphHeight()
	graphWidth := width - 4

	var lines []string
	visible := 0
	for _, l := range rs.Lines {
		key := fmt.Sprintf("%d", int(l.Series)+1)
		if !l.Visible {
			lines = append(lines, MutedStyle.Render(fmt.Sprintf("%s hidden (press %s)", l.Name, key)))
			continue
		}
		visible++

		last := l.Values[len(l.Values)-1]
		if height == 0 {
			spark := lipgloss.NewStyle().Foreground(seriesColors[l.Series]).Render(RenderMiniSparkline(l.Values, graphWidth-12))
			lines = append(lines, fmt.Sprintf("%s %s %s", LabelStyle.Render(l.Series.Short()), spark, metricText("", last, th)))
			continue
		}

		lines = append(lines, SectionHeader(l.Name, fmt.Sprintf("%.1f%%", last), width))
		graph := RenderBrailleGraph(l.Values, graphWidth, height, ThresholdColors(th))
		for _, g := range strings.Split(graph, "\n") {
			lines = append(lines, SectionContentLine(g, width))
		}
		lines = append(lines, SectionContentLine(axisLabels(rs.Labels, graphWidth), width))
		lines = append(lines, SectionFooter(width))
	}

	if visible == 0 {
		lines = append(lines, MutedStyle.Render("All series hidden"))
	}
	return lines
}

// axisLabels places the first and last sample times at the graph edges.
func axisLabels(labels []string, width int) string {
	if len(labels) == 0 {
		return ""
	}
	first, last := labels[0], labels[len(labels)-1]
	if len(labels) == 1 || width < len(first)+len(last)+1 {
		return MutedStyle.Render(padLeft(last, width))
	}
	gap := width - len(first) - len(last)
	return MutedStyle.Render(first + strings.Repeat(" ", gap) + last)
}

func padLeft(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}

func (m Model) renderFeedSection(agentID string, width int) []string {
	entries := m.session.Chart().LiveFeed(agentID)
	lines := []string{SectionHeader("Live feed", fmt.Sprintf("%d", len(entries)), width)}
	if len(entries) == 0 {
		lines = append(lines, SectionContentLine(MutedStyle.Render("Waiting for samples..."), width))
	} else if m.viewportReady {
		for _, l := range strings.Split(m.feedViewport.View(), "\n") {
			lines = append(lines, SectionContentLine(l, width))
		}
	}
	lines = append(lines, SectionFooter(width))
	return lines
}

// renderFeedLines renders the selected agent's live feed, newest first.
func (m Model) renderFeedLines(width int) string {
	selected, _ := m.session.Selected()
	if selected == "" {
		return ""
	}
	th := m.session.Thresholds()
	loc := m.session.Chart().Location()
	entries := m.session.Chart().LiveFeed(selected)

	lines := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		line := fmt.Sprintf("%s  %s %s %s  %s",
			MutedStyle.Render(e.At.In(loc).Format(feed.LabelFormat)),
			metricText("CPU", e.CPU, th),
			metricText("MEM", e.Memory, th),
			metricText("DSK", e.Disk, th),
			TierStyle(e.Tier).Render(e.Tier.Label()))
		lines = append(lines, truncate(line, width))
	}
	return strings.Join(lines, "\n")
}
