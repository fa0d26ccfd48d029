package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/dashboard"
	"github.com/rileyhilliard/ccdash/internal/errors"
	"github.com/rileyhilliard/ccdash/internal/feed"
	"github.com/rileyhilliard/ccdash/internal/health"
	"github.com/rileyhilliard/ccdash/internal/ui"
)

var statusSortFlag string

// statusCmd prints the roster once
var statusCmd = &cobra.Command{
	Use:   "status [device]",
	Short: "Print device health once and exit",
	Long: `Fetch the device list, classify every device and print it ranked by health.
With a device id, show that device's metrics as gauges.

Examples:
  ccdash status
  ccdash status --sort cpu
  ccdash status web-1
  ccdash status --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, ok := dashboard.ParseSortOrder(statusSortFlag)
		if !ok {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown sort order %q", statusSortFlag),
				"Use one of: health, name, cpu, memory, disk")
		}

		cc, err := newCommandContext(globalOverrides())
		if err != nil {
			return err
		}

		opts := statusOptions{
			Sort:       order,
			JSON:       jsonOutputFlag,
			Thresholds: cc.cfg.HealthThresholds(),
			Progress:   progressWriter(),
		}
		if len(args) == 1 {
			opts.Agent = args[0]
		}
		return statusCommand(cmd.Context(), cc.client, cmd.OutOrStdout(), opts)
	},
}

// rosterFetcher is the part of the API client status needs.
type rosterFetcher interface {
	Agents(ctx context.Context) ([]api.AgentSnapshot, error)
	ServerInfo(ctx context.Context) (api.ServerInfo, error)
}

type statusOptions struct {
	Agent      string
	Sort       dashboard.SortOrder
	JSON       bool
	Thresholds health.Thresholds
	Loc        *time.Location
	// Progress receives the spinner; nil disables it.
	Progress io.Writer
}

// deviceJSON is one device in `status --json`.
type deviceJSON struct {
	AgentID   string    `json:"agent_id"`
	Status    string    `json:"status"`
	Tier      string    `json:"tier"`
	CPU       float64   `json:"cpu"`
	Memory    float64   `json:"memory"`
	Disk      float64   `json:"disk"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

type statusJSON struct {
	Server  string       `json:"server,omitempty"`
	Devices []deviceJSON `json:"devices"`
}

func statusCommand(ctx context.Context, client rosterFetcher, out io.Writer, opts statusOptions) error {
	if opts.Loc == nil {
		opts.Loc = time.Local
	}

	var agents []api.AgentSnapshot
	err := spin(opts.Progress, "Fetching devices", func() error {
		var err error
		agents, err = client.Agents(ctx)
		return err
	})
	if err != nil {
		return err
	}

	// Server info is decoration; a failure doesn't fail the command.
	serverLine := "unreachable"
	if info, err := client.ServerInfo(ctx); err == nil {
		serverLine = info.Summary()
	}

	rows := dashboard.BuildRoster(agents, opts.Thresholds)
	dashboard.SortRows(rows, opts.Sort)

	if opts.Agent != "" {
		idx := dashboard.IndexOf(rows, opts.Agent)
		if idx < 0 {
			return errors.New(errors.ErrEmptyResult,
				fmt.Sprintf("Device %q is not connected", opts.Agent),
				"Run 'ccdash status' to list connected devices")
		}
		rows = rows[idx : idx+1]
	}

	if opts.JSON {
		return WriteJSONSuccess(out, toStatusJSON(rows, serverLine))
	}

	if opts.Agent != "" {
		fmt.Fprint(out, renderDeviceDetail(rows[0], opts.Thresholds, opts.Loc))
		return nil
	}

	serverStyle := ui.InfoStyle()
	if serverLine == "unreachable" {
		serverStyle = ui.MutedStyle()
	}
	fmt.Fprintln(out, serverStyle.Render("Server: "+serverLine))
	fmt.Fprintln(out)
	fmt.Fprint(out, ui.RenderRosterTable(toTableRows(rows), opts.Thresholds, opts.Loc))
	if len(rows) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, rosterSummary(rows))
	} else {
		fmt.Fprintln(out)
	}
	return nil
}

func toTableRows(rows []dashboard.RosterRow) []ui.RosterTableRow {
	out := make([]ui.RosterTableRow, len(rows))
	for i, r := range rows {
		out[i] = ui.RosterTableRow{
			AgentID: r.ID(),
			Tier:    r.Tier(),
			CPU:     r.Agent.CPU,
			Memory:  r.Agent.Memory,
			Disk:    r.Agent.Disk,
			Score:   r.Score,
			Seen:    r.Agent.Timestamp,
		}
	}
	return out
}

func toStatusJSON(rows []dashboard.RosterRow, server string) statusJSON {
	devices := make([]deviceJSON, len(rows))
	for i, r := range rows {
		devices[i] = deviceJSON{
			AgentID:   r.ID(),
			Status:    r.Tier().Label(),
			Tier:      r.Tier().String(),
			CPU:       r.Agent.CPU,
			Memory:    r.Agent.Memory,
			Disk:      r.Agent.Disk,
			Score:     r.Score,
			Timestamp: r.Agent.Timestamp,
		}
	}
	return statusJSON{Server: server, Devices: devices}
}

// rosterSummary is the "3 devices · 1 critical · 1 warning" footer.
func rosterSummary(rows []dashboard.RosterRow) string {
	counts := dashboard.TierCounts(rows)
	parts := []string{fmt.Sprintf("%d devices", len(rows))}
	if n := counts[health.Danger]; n > 0 {
		parts = append(parts, ui.TierStyle(health.Danger).Render(fmt.Sprintf("%d critical", n)))
	}
	if n := counts[health.Moderate]; n > 0 {
		parts = append(parts, ui.TierStyle(health.Moderate).Render(fmt.Sprintf("%d warning", n)))
	}
	return strings.Join(parts, " · ")
}

const gaugeWidth = 24

func renderDeviceDetail(r dashboard.RosterRow, th health.Thresholds, loc *time.Location) string {
	var sb strings.Builder

	tier := r.Tier()
	sb.WriteString(fmt.Sprintf("%s  %s  score %d\n",
		r.ID(),
		ui.TierStyle(tier).Render(ui.TierSymbol(tier)+" "+tier.Label()),
		r.Score))

	values := [3]float64{r.Agent.CPU, r.Agent.Memory, r.Agent.Disk}
	for _, s := range feed.AllSeries {
		sb.WriteString(fmt.Sprintf("  %-7s %s\n", s.Short(), ui.RenderProgressBar(values[s], gaugeWidth, th)))
	}

	if !r.Agent.Timestamp.IsZero() {
		sb.WriteString(ui.MutedStyle().Render("  last seen "+r.Agent.Timestamp.In(loc).Format(time.DateTime)) + "\n")
	}
	return sb.String()
}

// progressWriter returns stderr for spinners, or nil when JSON output is on.
func progressWriter() io.Writer {
	if jsonOutputFlag {
		return nil
	}
	return os.Stderr
}

// spin runs fn behind a spinner on w. Animation only happens on a terminal.
func spin(w io.Writer, label string, fn func() error) error {
	if w == nil {
		return fn()
	}
	animate := false
	if f, ok := w.(*os.File); ok {
		animate = ui.IsTerminal(f)
	}
	return ui.NewSpinner(label, w, animate).Run(fn)
}
