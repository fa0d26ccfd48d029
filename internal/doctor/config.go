package doctor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rileyhilliard/ccdash/internal/config"
	"github.com/rileyhilliard/ccdash/internal/errors"
)

// ConfigFileCheck verifies that a config file exists. Running without one
// works (defaults apply), so a missing file is a warning.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
	FixPath    string // Where --fix writes a default config
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(ctx context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Error finding config: " + errors.Summary(err),
			Suggestion: "Check the --config path, or run 'ccdash init' to create a config",
		}
	}

	if path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file found, using defaults",
			Suggestion: "Run 'ccdash init' to create a .ccdash.yaml config file",
			Fixable:    c.FixPath != "",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", filepath.Base(path)),
	}
}

// Fix writes a default config to FixPath.
func (c *ConfigFileCheck) Fix() error {
	if c.FixPath == "" {
		return nil
	}
	return config.WriteDefault(c.FixPath, config.DefaultConfig(), false)
}

// ConfigSchemaCheck verifies that the active config loads and validates.
type ConfigSchemaCheck struct {
	ConfigPath string
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return CategoryConfig }

func (c *ConfigSchemaCheck) Run(ctx context.Context) CheckResult {
	cfg, path, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Config is invalid: " + errors.Summary(err),
			Suggestion: "Fix the reported fields in your .ccdash.yaml or CCDASH_* environment",
		}
	}

	source := "defaults"
	if path != "" {
		source = filepath.Base(path)
	}
	return CheckResult{
		Name:   c.Name(),
		Status: StatusPass,
		Message: fmt.Sprintf("Config valid (%s): warning %.0f%%, critical %.0f%%",
			source, cfg.Thresholds.Warning, cfg.Thresholds.Critical),
	}
}

func (c *ConfigSchemaCheck) Fix() error {
	return nil // Schema issues require manual intervention
}

// NewConfigChecks returns the CONFIG category.
func NewConfigChecks(configPath, fixPath string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: configPath, FixPath: fixPath},
		&ConfigSchemaCheck{ConfigPath: configPath},
	}
}
