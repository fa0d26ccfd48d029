package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/config"
	"github.com/rileyhilliard/ccdash/internal/doctor"
	"github.com/rileyhilliard/ccdash/internal/logger"
	"github.com/rileyhilliard/ccdash/internal/ui"
)

var doctorFix bool

// doctorCmd diagnoses config, server and log problems
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check config, server connectivity and logging",
	Long: `Run diagnostic checks: the config file loads and validates, the monitoring
server answers its info, device list and history endpoints, and the log file
is writable.

Examples:
  ccdash doctor
  ccdash doctor --fix
  ccdash doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(globalOverrides())
		if err != nil {
			// The config checks report this; probe the server with defaults.
			if !jsonOutputFlag {
				ui.PrintWarning("Config did not load, probing with defaults")
			}
			cfg = config.DefaultConfig()
			globalOverrides().apply(cfg)
		}
		client := api.NewClient(cfg.APIConfig(), logger.Nop())
		checks := collectChecks(cfgFile, filepath.Join(".", config.ConfigFileName), cfg, client)

		return doctorCommand(cmd.Context(), cmd.OutOrStdout(), checks, doctorOptions{
			Fix:  doctorFix,
			JSON: jsonOutputFlag,
		})
	},
}

type doctorOptions struct {
	Fix  bool
	JSON bool
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

// collectChecks gathers every diagnostic check for the loaded config.
func collectChecks(cfgPath, fixPath string, cfg *config.Config, client doctor.Prober) []doctor.Check {
	var checks []doctor.Check
	checks = append(checks, doctor.NewConfigChecks(cfgPath, fixPath)...)
	checks = append(checks, doctor.NewServerChecks(client, cfg.Server.URL, cfg.Poll.HistoryRange)...)
	checks = append(checks, &doctor.LogFileCheck{Path: cfg.Log.File})
	return checks
}

const doctorParallelism = 4

func doctorCommand(ctx context.Context, out io.Writer, checks []doctor.Check, opts doctorOptions) error {
	results := doctor.RunAllParallel(ctx, checks, doctorParallelism)

	if opts.Fix {
		results = doctor.Fix(ctx, checks, results)
	}

	if opts.JSON {
		return WriteJSONSuccess(out, toDoctorOutput(checks, results))
	}
	renderDoctorText(out, checks, results, opts.Fix)
	return nil
}

func toDoctorOutput(checks []doctor.Check, results []doctor.CheckResult) DoctorOutput {
	grouped := doctor.GroupByCategory(checks)

	output := DoctorOutput{Categories: make([]CategoryOutput, 0, len(doctor.CategoryOrder))}
	for _, cat := range doctor.CategoryOrder {
		indices := grouped[cat]
		if len(indices) == 0 {
			continue
		}
		co := CategoryOutput{Name: cat, Results: make([]doctor.CheckResult, len(indices))}
		for i, idx := range indices {
			co.Results[i] = results[idx]
		}
		output.Categories = append(output.Categories, co)
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		Fixable:  doctor.FixableCount(results),
		AllClear: !doctor.HasIssues(results),
	}
	return output
}

func renderDoctorText(out io.Writer, checks []doctor.Check, results []doctor.CheckResult, fixed bool) {
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("ccdash Diagnostic Report"))
	fmt.Fprintln(out)

	grouped := doctor.GroupByCategory(checks)
	for _, category := range doctor.CategoryOrder {
		indices := grouped[category]
		if len(indices) == 0 {
			continue
		}

		fmt.Fprintln(out, headerStyle.Render(category))
		for _, idx := range indices {
			renderCheckResult(out, results[idx])
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, strings.Repeat("━", 60))
	fmt.Fprintln(out)

	if !doctor.HasIssues(results) {
		fmt.Fprintf(out, "%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), doctor.Summary(results))
	} else {
		fmt.Fprintf(out, "%s %s\n", ui.ErrorStyle().Render(ui.SymbolFail), doctor.Summary(results))
		if doctor.FixableCount(results) > 0 && !fixed {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Run with %s to attempt automatic fixes where possible.\n",
				ui.MutedStyle().Render("--fix"))
		}
	}
	fmt.Fprintln(out)
}

func renderCheckResult(out io.Writer, result doctor.CheckResult) {
	var symbol string
	var style lipgloss.Style

	switch result.Status {
	case doctor.StatusPass:
		symbol, style = ui.SymbolComplete, ui.SuccessStyle()
	case doctor.StatusWarn:
		symbol, style = ui.SymbolWarning, ui.WarningStyle()
	default:
		symbol, style = ui.SymbolFail, ui.ErrorStyle()
	}

	fmt.Fprintf(out, "  %s %s\n", style.Render(symbol), result.Message)

	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		for _, line := range strings.Split(result.Suggestion, "\n") {
			fmt.Fprintf(out, "    %s\n", ui.MutedStyle().Render(line))
		}
	}
}
