package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/ccdash/internal/export"
	"github.com/rileyhilliard/ccdash/internal/health"
	"github.com/rileyhilliard/ccdash/internal/ui"
)

var (
	exportOutFlag   string
	exportRangeFlag string
)

// exportCmd writes a device's history to a spreadsheet
var exportCmd = &cobra.Command{
	Use:   "export <device>",
	Short: "Export a device's history to Excel",
	Long: `Fetch a device's history and write it to an .xlsx workbook with a summary
sheet (averages, peaks, latest status) and a History sheet with one row per
sample, colored by health tier.

Examples:
  ccdash export web-1
  ccdash export web-1 --range 24h --out reports/web-1.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o := globalOverrides()
		o.HistoryRange = exportRangeFlag
		cc, err := newCommandContext(o)
		if err != nil {
			return err
		}
		return exportCommand(cmd.Context(), cc.client, cmd.OutOrStdout(), exportOptions{
			Agent:      args[0],
			Range:      cc.cfg.Poll.HistoryRange,
			Out:        exportOutFlag,
			Thresholds: cc.cfg.HealthThresholds(),
			Progress:   progressWriter(),
		})
	},
}

type exportOptions struct {
	Agent      string
	Range      string
	Out        string
	Thresholds health.Thresholds
	Loc        *time.Location
	Now        func() time.Time
	Progress   io.Writer
}

func exportCommand(ctx context.Context, client historyFetcher, out io.Writer, opts exportOptions) error {
	if opts.Out == "" {
		opts.Out = defaultExportName(opts.Agent)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	report := export.Report{AgentID: opts.Agent, Range: opts.Range}
	err := spin(opts.Progress, "Fetching history for "+opts.Agent, func() error {
		var err error
		report.Points, err = client.History(ctx, opts.Agent, opts.Range)
		return err
	})
	if err != nil {
		return err
	}
	report.GeneratedAt = opts.Now()

	path, err := export.NewWriter(opts.Thresholds, opts.Loc).Write(report, opts.Out)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Wrote %d samples to %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), len(report.Points), path)
	return nil
}

// defaultExportName turns an agent id into a safe file name.
func defaultExportName(agent string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, agent)
	if safe == "" {
		safe = "device"
	}
	return safe + "-history.xlsx"
}
