package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/feed"
	"github.com/rileyhilliard/ccdash/internal/health"
	"github.com/rileyhilliard/ccdash/internal/ui"
)

var (
	historyRangeFlag string
	historyLimitFlag int
)

// historyCmd prints one device's history
var historyCmd = &cobra.Command{
	Use:   "history <device>",
	Short: "Print a device's metric history",
	Long: `Fetch a device's CPU, memory and disk samples over a time range and print
them oldest first, with a trend line per metric.

Examples:
  ccdash history web-1
  ccdash history web-1 --range 24h --limit 50
  ccdash history web-1 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o := globalOverrides()
		o.HistoryRange = historyRangeFlag
		cc, err := newCommandContext(o)
		if err != nil {
			return err
		}
		return historyCommand(cmd.Context(), cc.client, cmd.OutOrStdout(), historyOptions{
			Agent:      args[0],
			Range:      cc.cfg.Poll.HistoryRange,
			Limit:      historyLimitFlag,
			JSON:       jsonOutputFlag,
			Thresholds: cc.cfg.HealthThresholds(),
			Progress:   progressWriter(),
		})
	},
}

// historyFetcher is the part of the API client history needs.
type historyFetcher interface {
	History(ctx context.Context, agentID, rng string) ([]api.HistoryPoint, error)
}

type historyOptions struct {
	Agent      string
	Range      string
	Limit      int // newest N samples; zero means all
	JSON       bool
	Thresholds health.Thresholds
	Loc        *time.Location
	Progress   io.Writer
}

type sampleJSON struct {
	Timestamp time.Time `json:"timestamp"`
	CPU       float64   `json:"cpu"`
	Memory    float64   `json:"memory"`
	Disk      float64   `json:"disk"`
	Status    string    `json:"status"`
	Score     int       `json:"score"`
}

type historyJSON struct {
	AgentID string       `json:"agent_id"`
	Range   string       `json:"range"`
	Samples []sampleJSON `json:"samples"`
}

const trendWidth = 40

func historyCommand(ctx context.Context, client historyFetcher, out io.Writer, opts historyOptions) error {
	if opts.Loc == nil {
		opts.Loc = time.Local
	}

	var points []api.HistoryPoint
	err := spin(opts.Progress, "Fetching history for "+opts.Agent, func() error {
		var err error
		points, err = client.History(ctx, opts.Agent, opts.Range)
		return err
	})
	if err != nil {
		return err
	}

	chrono := feed.Chronological(points)
	if opts.Limit > 0 && len(chrono) > opts.Limit {
		chrono = chrono[len(chrono)-opts.Limit:]
	}

	if opts.JSON {
		return WriteJSONSuccess(out, toHistoryJSON(opts.Agent, opts.Range, chrono, opts.Thresholds))
	}

	// No samples is a state, not a failure.
	if len(chrono) == 0 {
		fmt.Fprintf(out, "No samples for %s in the last %s\n", opts.Agent, opts.Range)
		return nil
	}

	rows := make([][]string, len(chrono))
	for i, p := range chrono {
		report := opts.Thresholds.Check(p.CPUPercent, p.MemoryPercent, p.DiskPercent)
		rows[i] = []string{
			p.Timestamp.In(opts.Loc).Format(feed.LabelFormat),
			fmt.Sprintf("%.1f", p.CPUPercent),
			fmt.Sprintf("%.1f", p.MemoryPercent),
			fmt.Sprintf("%.1f", p.DiskPercent),
			report.Tier.Label(),
			fmt.Sprintf("%d", report.Score),
		}
	}

	fmt.Fprintf(out, "%s  last %s  %d samples\n\n", opts.Agent, opts.Range, len(chrono))
	fmt.Fprintln(out, ui.RenderSimpleTable(ui.HistoryColumns, rows))
	fmt.Fprintln(out)
	fmt.Fprint(out, renderTrendLines(chrono, opts.Thresholds))
	return nil
}

// renderTrendLines prints one sparkline per series with its latest value and
// the change since the previous sample.
func renderTrendLines(chrono []api.HistoryPoint, th health.Thresholds) string {
	trends := feed.Trends(chrono)
	latest := chrono[len(chrono)-1]

	var sb strings.Builder
	for _, s := range feed.AllSeries {
		values := make([]float64, len(chrono))
		for i, p := range chrono {
			values[i] = s.Value(p)
		}
		tr := trends[s]
		sb.WriteString(fmt.Sprintf("  %-7s %s  %5.1f%%  %s %+.1f\n",
			s.Short(),
			ui.RenderSparkline(values, trendWidth, th),
			s.Value(latest),
			tr.Direction.Arrow(),
			tr.Delta))
	}
	return sb.String()
}

func toHistoryJSON(agent, rng string, chrono []api.HistoryPoint, th health.Thresholds) historyJSON {
	samples := make([]sampleJSON, len(chrono))
	for i, p := range chrono {
		report := th.Check(p.CPUPercent, p.MemoryPercent, p.DiskPercent)
		samples[i] = sampleJSON{
			Timestamp: p.Timestamp,
			CPU:       p.CPUPercent,
			Memory:    p.MemoryPercent,
			Disk:      p.DiskPercent,
			Status:    report.Tier.Label(),
			Score:     report.Score,
		}
	}
	return historyJSON{AgentID: agent, Range: rng, Samples: samples}
}
