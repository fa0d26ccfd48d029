package cli

import (
	"context"
	stderrors "errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/ccdash/internal/alert"
	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/config"
	"github.com/rileyhilliard/ccdash/internal/dashboard"
	"github.com/rileyhilliard/ccdash/internal/errors"
	"github.com/rileyhilliard/ccdash/internal/logger"
	"github.com/rileyhilliard/ccdash/internal/poll"
)

var (
	monitorIntervalFlag        string
	monitorHistoryIntervalFlag string
	monitorRangeFlag           string
)

// monitorCmd starts the TUI dashboard
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live health dashboard for every connected device",
	Long: `Open the full-screen dashboard.

The device list refreshes on its own interval and is ranked by health. Select
a device to chart its CPU, memory and disk history; the chart refreshes on the
history interval until you select another device or press Esc.

Keyboard shortcuts:
  up/k, down/j  Move through devices
  Enter         Show history for the highlighted device
  Esc           Close the history panel
  1 / 2 / 3     Toggle CPU / memory / disk series
  s             Cycle sort order (health/name/CPU/memory/disk)
  p             Pause or resume auto refresh
  r             Refresh now
  ?             Help
  q / Ctrl+C    Quit

Examples:
  ccdash monitor
  ccdash monitor --server http://10.0.0.5:5000
  ccdash monitor --interval 2s --history-interval 5s --range 1h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(cmd)
	},
}

func addMonitorFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&monitorIntervalFlag, "interval", "", "device list refresh interval (e.g. 5s)")
	cmd.Flags().StringVar(&monitorHistoryIntervalFlag, "history-interval", "", "selected device history refresh interval (e.g. 10s)")
	cmd.Flags().StringVar(&monitorRangeFlag, "range", "", "history window requested from the server (e.g. 30m, 24h)")
}

// monitorOverrides parses the dashboard flags on top of the global ones.
func monitorOverrides() (overrides, error) {
	o := globalOverrides()

	var err error
	if o.RosterInterval, err = ParseInterval("interval", monitorIntervalFlag); err != nil {
		return o, err
	}
	if o.HistoryInterval, err = ParseInterval("history-interval", monitorHistoryIntervalFlag); err != nil {
		return o, err
	}
	o.HistoryRange = monitorRangeFlag
	return o, nil
}

func runMonitor(cmd *cobra.Command) error {
	o, err := monitorOverrides()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	return monitorCommand(cmd.Context(), cfg)
}

// monitorCommand wires the scheduler to the dashboard and runs the TUI until
// the user quits. Logs go to a file because the TUI owns the terminal.
func monitorCommand(ctx context.Context, cfg *config.Config) error {
	logPath := cfg.Log.File
	if logPath == "" {
		logPath = logger.DefaultFile()
	}
	logFile, err := logger.OpenFile(config.ExpandTilde(logPath))
	if err != nil {
		return err
	}
	defer logFile.Close()

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Output: logFile})
	if err != nil {
		return err
	}

	th := cfg.HealthThresholds()
	client := api.NewClient(cfg.APIConfig(), logger.Component(log, "api"))

	// The scheduler needs a sink before the program exists.
	relay := &dashboard.Relay{}
	sched := poll.New(client, relay.Send, cfg.PollConfig(), log)

	evaluator := alert.NewEvaluator(th, alert.NewGate(cfg.Alerts.Cooldown))
	session := dashboard.NewSession(th, evaluator, logger.Component(log, "dashboard"))
	model := dashboard.NewModel(sched, session, dashboard.Options{
		ServerURL:     client.BaseURL(),
		HistoryRange:  cfg.Poll.HistoryRange,
		ToastDuration: cfg.Alerts.ToastDuration,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	relay.Attach(p)

	log.Info().Str("server", client.BaseURL()).Msg("dashboard starting")

	done := make(chan error, 1)
	go func() {
		done <- sched.Run(ctx)
	}()

	_, runErr := p.Run()

	// Graceful shutdown: stop every loop before returning.
	sched.Stop()
	if err := <-done; err != nil {
		log.Error().Err(err).Msg("scheduler exited with error")
	}
	log.Info().Msg("dashboard stopped")

	if runErr != nil && !stderrors.Is(runErr, tea.ErrProgramKilled) {
		return errors.WrapWithCode(runErr, errors.ErrConfig,
			"Dashboard exited unexpectedly",
			"Check the log file at "+logPath)
	}
	return nil
}
