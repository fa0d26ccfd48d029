package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/ccdash/internal/errors"
)

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for ccdash.

Examples:
  # Bash
  ccdash completion bash > /etc/bash_completion.d/ccdash

  # Zsh
  ccdash completion zsh > "${fpath[1]}/_ccdash"

  # Fish
  ccdash completion fish > ~/.config/fish/completions/ccdash.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cmd.Root()
		switch args[0] {
		case "bash":
			return root.GenBashCompletion(os.Stdout)
		case "zsh":
			return root.GenZshCompletion(os.Stdout)
		case "fish":
			return root.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return root.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// monitor command flags
	addMonitorFlags(monitorCmd)

	// status command flags
	statusCmd.Flags().StringVar(&statusSortFlag, "sort", "health", "sort order: health, name, cpu, memory, disk")
	statusCmd.Flags().BoolVar(&jsonOutputFlag, "json", false, "print machine-readable JSON")

	// history command flags
	historyCmd.Flags().StringVar(&historyRangeFlag, "range", "", "time range to fetch (default: poll.history_range)")
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 0, "show only the newest N samples")
	historyCmd.Flags().BoolVar(&jsonOutputFlag, "json", false, "print machine-readable JSON")

	// export command flags
	exportCmd.Flags().StringVarP(&exportOutFlag, "out", "o", "", "output file (default: <device>-history.xlsx)")
	exportCmd.Flags().StringVar(&exportRangeFlag, "range", "", "time range to fetch (default: poll.history_range)")

	// transfer command flags
	transferCmd.Flags().StringVar(&transferToFlag, "to", "", "comma-separated recipient device ids")

	// init command flags
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "write ~/.config/ccdash/config.yaml instead")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "skip prompts and use defaults")

	// doctor command flags
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
	doctorCmd.Flags().BoolVar(&jsonOutputFlag, "json", false, "print machine-readable JSON")

	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")

	// Register all commands
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(transferCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}
