package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/ccdash/internal/errors"
	"github.com/rileyhilliard/ccdash/internal/ui"
)

// Global flags
var (
	cfgFile      string
	serverFlag   string
	noColorFlag  bool
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "ccdash",
	Short: "Terminal dashboard for a fleet of monitored devices",
	Long: `ccdash shows live health for every device reporting to a monitoring
server: a device list ranked by health, CPU/memory/disk history charts for the
selected device, and alerts when a metric crosses its threshold.

Run with no arguments to open the dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColorFlag || !ui.ColorsWanted(os.Stdout) {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(cmd)
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if isUnknownCommandError(err) {
			msg := err.Error()
			if name := extractUnknownCommand(err); name != "" {
				msg = fmt.Sprintf("Unknown command %q", name)
			}
			err = errors.New(errors.ErrConfig, msg, "Run 'ccdash --help' to see available commands")
		}
		if jsonOutputFlag {
			_ = WriteJSONFromError(os.Stdout, err)
		} else {
			fmt.Fprint(os.Stderr, err.Error())
			if !strings.HasSuffix(err.Error(), "\n") {
				fmt.Fprintln(os.Stderr)
			}
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .ccdash.yaml or ~/.config/ccdash/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "monitoring server URL (overrides server.url)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")
	addMonitorFlags(rootCmd)
}

// isUnknownCommandError checks cobra's error text for an unknown command or flag.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls the command name out of
// `unknown command "foo" for "ccdash"`.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
