package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/ccdash/internal/config"
	"github.com/rileyhilliard/ccdash/internal/errors"
	"github.com/rileyhilliard/ccdash/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change the configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Update one dotted key in the active config file, keeping comments.
The result is validated and the change is rolled back if it doesn't load.

Examples:
  ccdash config set server.url http://10.0.0.5:5000
  ccdash config set thresholds.critical 90
  ccdash config set poll.history_range 1h`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(cfgFile)
		if err != nil {
			return err
		}
		if path == "" {
			return errors.New(errors.ErrConfig,
				"No config file found",
				"Run 'ccdash init' first")
		}
		return configSet(cmd.OutOrStdout(), path, args[0], args[1])
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(cfgFile)
		if err != nil {
			return err
		}
		if path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "(none, using defaults)")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// configSet writes key=value into path and validates the result, restoring
// the original file when the new value doesn't load.
func configSet(out io.Writer, path, key, value string) error {
	original, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file", "Check the file exists")
	}

	if err := config.SetValue(path, key, value); err != nil {
		return err
	}

	if _, err := config.Load(path); err != nil {
		if restoreErr := os.WriteFile(path, original, 0o644); restoreErr != nil {
			return errors.WrapWithCode(restoreErr, errors.ErrConfig,
				"Config is invalid and could not be restored",
				"Fix "+path+" by hand")
		}
		return err
	}

	fmt.Fprintf(out, "%s %s = %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), key, value)
	return nil
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}
