package cli

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/config"
	"github.com/rileyhilliard/ccdash/internal/logger"
)

// overrides are command-line values that win over the config file.
type overrides struct {
	Server          string
	LogLevel        string
	RosterInterval  time.Duration
	HistoryInterval time.Duration
	HistoryRange    string
}

func (o overrides) apply(cfg *config.Config) {
	if o.Server != "" {
		cfg.Server.URL = o.Server
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.RosterInterval > 0 {
		cfg.Poll.RosterInterval = o.RosterInterval
	}
	if o.HistoryInterval > 0 {
		cfg.Poll.HistoryInterval = o.HistoryInterval
	}
	if o.HistoryRange != "" {
		cfg.Poll.HistoryRange = o.HistoryRange
	}
}

// globalOverrides collects the persistent flags.
func globalOverrides() overrides {
	return overrides{Server: serverFlag, LogLevel: logLevelFlag}
}

// loadConfig finds and loads the config, applies flag overrides and
// re-validates the result.
func loadConfig(o overrides) (*config.Config, error) {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	o.apply(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// consoleLogger logs human-readable lines to w for one-shot commands.
func consoleLogger(cfg *config.Config, w io.Writer) (zerolog.Logger, error) {
	return logger.New(logger.Options{Level: cfg.Log.Level, Output: w, Console: true})
}

// commandContext loads config and builds a console logger and API client.
type commandContext struct {
	cfg    *config.Config
	log    zerolog.Logger
	client *api.Client
}

func newCommandContext(o overrides) (*commandContext, error) {
	cfg, err := loadConfig(o)
	if err != nil {
		return nil, err
	}
	log, err := consoleLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	return &commandContext{
		cfg:    cfg,
		log:    log,
		client: api.NewClient(cfg.APIConfig(), logger.Component(log, "api")),
	}, nil
}
