package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/ccdash/internal/config"
	"github.com/rileyhilliard/ccdash/internal/errors"
	"github.com/rileyhilliard/ccdash/internal/ui"
)

var (
	initForce          bool
	initGlobal         bool
	initNonInteractive bool
)

// initCmd writes a starter config
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .ccdash.yaml configuration",
	Long: `Write a commented config file with the default thresholds and intervals.

Creates .ccdash.yaml in the current directory, or ~/.config/ccdash/config.yaml
with --global. Prompts for the server URL unless --server is given.

Examples:
  ccdash init
  ccdash init --server http://10.0.0.5:5000
  ccdash init --global --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(".", config.ConfigFileName)
		if initGlobal {
			p, err := config.GlobalPath()
			if err != nil {
				return err
			}
			path = p
		}
		return Init(cmd.OutOrStdout(), InitOptions{
			Path:           path,
			Server:         serverFlag,
			Overwrite:      initForce,
			NonInteractive: initNonInteractive || !ui.IsTerminal(os.Stdin),
		})
	},
}

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string
	Server         string // pre-specified server URL
	Overwrite      bool   // overwrite existing config without asking
	NonInteractive bool   // skip prompts, use defaults
}

// Init creates a new config file.
func Init(out io.Writer, opts InitOptions) error {
	if _, err := os.Stat(opts.Path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", opts.Path),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", opts.Path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()

	server := opts.Server
	if server == "" && !opts.NonInteractive {
		server = cfg.Server.URL
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Monitoring server URL").
					Description("Base URL of the server your agents report to").
					Placeholder(cfg.Server.URL).
					Value(&server).
					Validate(validateServerURL),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or pass --server")
		}
	}
	if server != "" {
		if err := validateServerURL(server); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("'%s' isn't a usable server URL", server),
				"Use something like http://127.0.0.1:5000")
		}
		cfg.Server.URL = strings.TrimRight(server, "/")
	}

	// Overwrite was either requested or confirmed above.
	if err := config.WriteDefault(opts.Path, cfg, true); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Created %s\n\n", ui.SuccessStyle().Render(ui.SymbolSuccess), opts.Path)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  ccdash status    - Check the server and list devices")
	fmt.Fprintln(out, "  ccdash           - Open the dashboard")
	return nil
}

func validateServerURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	if u.Host == "" {
		return fmt.Errorf("URL needs a host")
	}
	return nil
}
