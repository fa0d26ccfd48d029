package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/ccdash/internal/health"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a non-focused Bubbles table sized to fit every row.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+2), // header plus its border
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is focused, so the cursor row renders like any other.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string for CLI output.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	return strings.TrimRight(NewTable(columns, tableRows).View(), "\n ")
}

// RosterTableRow is one device in `ccdash status`.
type RosterTableRow struct {
	AgentID string
	Tier    health.Tier
	CPU     float64
	Memory  float64
	Disk    float64
	Score   int
	Seen    time.Time
}

const (
	rosterAgentWidth  = 20
	rosterStatusWidth = 12
	rosterMetricWidth = 9
)

// RenderRosterTable renders devices in the order given, with tier-colored
// status and metric cells.
func RenderRosterTable(rows []RosterTableRow, th health.Thresholds, loc *time.Location) string {
	if len(rows) == 0 {
		return "No devices connected"
	}
	if loc == nil {
		loc = time.Local
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted)

	header := "  " + padRight("DEVICE", rosterAgentWidth) +
		padRight("STATUS", rosterStatusWidth) +
		padLeft("CPU", rosterMetricWidth) +
		padLeft("MEMORY", rosterMetricWidth) +
		padLeft("DISK", rosterMetricWidth) +
		padLeft("SCORE", 7) + "  LAST SEEN"

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(header))
	sb.WriteString("\n")

	for _, row := range rows {
		tier := TierStyle(row.Tier)
		status := tier.Render(TierSymbol(row.Tier) + " " + row.Tier.Label())

		seen := "-"
		if !row.Seen.IsZero() {
			seen = row.Seen.In(loc).Format("15:04:05")
		}

		line := "  " + padRight(truncateCell(row.AgentID, rosterAgentWidth-1), rosterAgentWidth) +
			padRight(status, rosterStatusWidth) +
			metricCell(row.CPU, th) +
			metricCell(row.Memory, th) +
			metricCell(row.Disk, th) +
			padLeft(fmt.Sprintf("%d", row.Score), 7) +
			"  " + MutedStyle().Render(seen)
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

func metricCell(v float64, th health.Thresholds) string {
	style := lipgloss.NewStyle().Foreground(ThresholdColor(v, th))
	return padLeft(style.Render(fmt.Sprintf("%.1f%%", v)), rosterMetricWidth)
}

// HistoryColumns are the columns of `ccdash history`.
var HistoryColumns = []TableColumn{
	{Title: "TIME", Width: 10},
	{Title: "CPU %", Width: 8},
	{Title: "MEMORY %", Width: 9},
	{Title: "DISK %", Width: 8},
	{Title: "STATUS", Width: 9},
	{Title: "SCORE", Width: 6},
}

// padRight pads a string to the specified visible width.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func padLeft(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return strings.Repeat(" ", width-visible) + s
}

func truncateCell(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)) > width-1 {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
