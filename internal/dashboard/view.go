package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/ccdash/internal/errors"
	"github.com/rileyhilliard/ccdash/internal/health"
)

// Roster column widths
const (
	rosterWidthStandard = 50
	rosterWidthWide     = 62
	agentColumnWidth    = 14
)

// checkRenderTarget rejects a zero-sized terminal.
func checkRenderTarget(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New(errors.ErrRenderTarget,
			fmt.Sprintf("render target is %dx%d", width, height), "")
	}
	return nil
}

// renderDashboard renders the complete dashboard view. A zero-sized
// terminal renders nothing.
func (m Model) renderDashboard() string {
	if checkRenderTarget(m.width, m.height) != nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	toasts := m.renderToasts()
	rosterRows := m.rosterBudget(toasts)

	switch m.LayoutMode() {
	case LayoutStandard, LayoutWide:
		roster := m.renderRoster(m.rosterWidth(), rosterRows)
		panel := m.renderAgentPanel(m.detailWidth())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, roster, " ", panel))
	default:
		b.WriteString(m.renderRoster(m.width, rosterRows))
		if panel := m.renderAgentPanel(m.width); panel != "" {
			b.WriteString("\n")
			b.WriteString(panel)
		}
	}

	if toasts != "" {
		b.WriteString("\n")
		b.WriteString(toasts)
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the dashboard header with fleet stats.
func (m Model) renderHeader() string {
	rows := m.session.Rows()
	counts := TierCounts(rows)

	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("ccdash")

	parts := []string{
		fmt.Sprintf("%d devices", len(rows)),
		TierStyle(health.Danger).Render(fmt.Sprintf("%d critical", counts[health.Danger])),
		TierStyle(health.Moderate).Render(fmt.Sprintf("%d warning", counts[health.Moderate])),
		"updated " + m.updatedText(),
	}
	if _, err := m.session.Server(); err != nil {
		parts = append(parts, ErrorStyle.Render("server unreachable"))
	} else if m.serverURL != "" && m.LayoutMode() >= LayoutStandard {
		parts = append(parts, m.serverURL)
	}

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + strings.Join(parts, " | "))

	header := HeaderStyle.Render(title + stats)
	if m.session.Paused() {
		header += " " + PausedStyle.Render("PAUSED")
	}
	return truncate(header, m.width)
}

// updatedText describes the age of the last roster fetch.
func (m Model) updatedText() string {
	if !m.session.Loaded() {
		return "never"
	}
	return formatAgo(m.now().Sub(m.session.LastUpdate()))
}

// formatAgo renders a duration as "just now", "1s ago", "12s ago" or "3m ago".
func formatAgo(d time.Duration) string {
	secs := int(d.Seconds())
	switch {
	case secs <= 0:
		return "just now"
	case secs < 60:
		return fmt.Sprintf("%ds ago", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm ago", secs/60)
	default:
		return fmt.Sprintf("%dh ago", secs/3600)
	}
}

func (m Model) rosterWidth() int {
	switch m.LayoutMode() {
	case LayoutWide:
		return rosterWidthWide
	case LayoutStandard:
		return rosterWidthStandard
	default:
		return m.width
	}
}

func (m Model) detailWidth() int {
	switch m.LayoutMode() {
	case LayoutStandard, LayoutWide:
		return m.width - m.rosterWidth() - 1
	default:
		return m.width
	}
}

// feedWidth is the text width inside the live feed section.
func (m Model) feedWidth() int {
	w := m.detailWidth() - 8
	if w < 10 {
		w = 10
	}
	return w
}

// rosterBudget is how many roster rows fit on screen.
func (m Model) rosterBudget(toasts string) int {
	used := 2 + 1 + 3 // header, footer, panel borders and title
	if toasts != "" {
		used += lipgloss.Height(toasts)
	}
	avail := m.height - used
	if sel, _ := m.session.Selected(); sel != "" && m.LayoutMode() < LayoutStandard {
		// Stacked: leave room for the agent panel below.
		avail /= 3
	}
	if avail < 1 {
		avail = 1
	}
	return avail
}

// renderRoster renders the device list panel.
func (m Model) renderRoster(width, maxRows int) string {
	if width < 8 {
		return ""
	}
	inner := width - 4
	rows := m.session.Rows()

	var lines []string
	title := LabelStyle.Render("Devices") + MutedStyle.Render(" sort: "+m.session.SortOrder().String())
	lines = append(lines, title)

	err := m.session.RosterErr()
	switch {
	case !m.session.Loaded() && err == nil:
		lines = append(lines, MutedStyle.Render("Loading devices..."))
	case len(rows) == 0 && err != nil:
		lines = append(lines, ErrorStyle.Render(truncate("Device list unavailable: "+errors.Summary(err), inner)))
	case len(rows) == 0:
		lines = append(lines, MutedStyle.Render(EmptyRosterText))
	default:
		if err != nil {
			lines = append(lines, ErrorStyle.Render(truncate("Stale: "+errors.Summary(err), inner)))
		}
		start, end := visibleWindow(len(rows), m.cursor, maxRows)
		for i := start; i < end; i++ {
			lines = append(lines, truncate(m.renderRosterRow(i, rows[i]), inner))
		}
		if start > 0 || end < len(rows) {
			lines = append(lines, MutedStyle.Render(fmt.Sprintf("%d-%d of %d", start+1, end, len(rows))))
		}
	}

	return PanelStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// renderRosterRow renders one device line.
func (m Model) renderRosterRow(i int, r RosterRow) string {
	th := m.session.Thresholds()
	marker := "  "
	if i == m.cursor {
		marker = CursorStyle.Render(IndicatorSelected + " ")
	}
	indicator := TierStyle(r.Tier()).Render(IndicatorOnline)

	nameStyle := ValueStyle
	if selected, _ := m.session.Selected(); selected == r.ID() {
		nameStyle = AgentNameStyle.Foreground(ColorAccent)
	}

	if m.LayoutMode() == LayoutMinimal {
		return fmt.Sprintf("%s%s %s %s", marker, indicator, nameStyle.Render(r.ID()),
			TierStyle(r.Tier()).Render(fmt.Sprintf("%.0f%%", r.Result.Max)))
	}

	name := nameStyle.Render(padRight(truncate(r.ID(), agentColumnWidth), agentColumnWidth))
	line := fmt.Sprintf("%s%s %s %s %s %s", marker, indicator, name,
		metricText("CPU", r.Agent.CPU, th),
		metricText("MEM", r.Agent.Memory, th),
		metricText("DSK", r.Agent.Disk, th))
	if m.LayoutMode() == LayoutWide {
		line += MutedStyle.Render(fmt.Sprintf("  score %3d", r.Score))
	}
	return line
}

// metricText renders "CPU  45%" with the value colored by tier.
func metricText(label string, v float64, th health.Thresholds) string {
	value := lipgloss.NewStyle().Foreground(MetricColor(v, th)).Render(fmt.Sprintf("%3.0f%%", v))
	return LabelStyle.Render(label) + " " + value
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// visibleWindow returns the [start, end) slice of n rows that keeps cursor
// in view with at most size rows.
func visibleWindow(n, cursor, size int) (int, int) {
	if size <= 0 || n <= size {
		return 0, n
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > n {
		start = n - size
	}
	return start, start + size
}

// renderToasts renders visible toasts, newest last.
func (m Model) renderToasts() string {
	toasts := m.session.Toasts()
	if len(toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(toasts))
	for _, t := range toasts {
		style := toastStyle.BorderForeground(ToastColor(t.Kind))
		lines = append(lines, style.Render(truncate(t.Text, m.width-4)))
	}
	return strings.Join(lines, "\n")
}

// renderFooter renders the keyboard hint footer.
func (m Model) renderFooter() string {
	hints := []string{
		"q quit",
		"↑↓ move",
		"enter select",
		"esc clear",
		"1-3 series",
		"p pause",
		"r refresh",
		"s sort",
		"? help",
	}
	if m.LayoutMode() == LayoutMinimal {
		hints = []string{"q quit", "enter select", "? help"}
	}
	return FooterStyle.Render(truncate(strings.Join(hints, " | "), m.width-2))
}
