package config

import (
	"time"

	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/health"
	"github.com/rileyhilliard/ccdash/internal/poll"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .ccdash.yaml configuration file.
type Config struct {
	Version    int              `yaml:"version" mapstructure:"version" validate:"gte=0"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Poll       PollConfig       `yaml:"poll" mapstructure:"poll"`
	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
	Alerts     AlertsConfig     `yaml:"alerts" mapstructure:"alerts"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ServerConfig points at the monitoring backend.
type ServerConfig struct {
	// URL is the base URL of the HTTP API.
	URL string `yaml:"url" mapstructure:"url" validate:"required,url"`

	// Timeout bounds each request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`

	// Retries is the number of extra attempts on transport errors or 5xx.
	Retries int `yaml:"retries" mapstructure:"retries" validate:"gte=0,lte=5"`
}

// PollConfig controls the refresh loops.
type PollConfig struct {
	RosterInterval  time.Duration `yaml:"roster_interval" mapstructure:"roster_interval" validate:"gte=500ms"`
	HistoryInterval time.Duration `yaml:"history_interval" mapstructure:"history_interval" validate:"gte=500ms"`

	// HistoryRange is passed through to the server, e.g. "30m" or "24h".
	HistoryRange string `yaml:"history_range" mapstructure:"history_range" validate:"required,history_range"`
}

// ThresholdsConfig holds the health tier boundaries in percent.
type ThresholdsConfig struct {
	Warning  float64 `yaml:"warning" mapstructure:"warning" validate:"gte=0,lte=100"`
	Critical float64 `yaml:"critical" mapstructure:"critical" validate:"gte=0,lte=100"`
}

// AlertsConfig controls toast notifications.
type AlertsConfig struct {
	// Cooldown is the minimum gap between alerts for the same agent and metric.
	Cooldown time.Duration `yaml:"cooldown" mapstructure:"cooldown" validate:"gt=0"`

	// ToastDuration is how long a toast stays on screen.
	ToastDuration time.Duration `yaml:"toast_duration" mapstructure:"toast_duration" validate:"gt=0"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error"`

	// File is where logs go while the dashboard owns the terminal.
	// Empty means the user cache dir.
	File string `yaml:"file" mapstructure:"file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Server: ServerConfig{
			URL:     api.DefaultBaseURL,
			Timeout: api.DefaultTimeout,
			Retries: 1,
		},
		Poll: PollConfig{
			RosterInterval:  poll.DefaultRosterInterval,
			HistoryInterval: poll.DefaultHistoryInterval,
			HistoryRange:    api.DefaultRange,
		},
		Thresholds: ThresholdsConfig{
			Warning:  health.DefaultWarning,
			Critical: health.DefaultCritical,
		},
		Alerts: AlertsConfig{
			Cooldown:      5 * time.Minute,
			ToastDuration: 4 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// HealthThresholds converts the thresholds section.
func (c *Config) HealthThresholds() health.Thresholds {
	return health.Thresholds{
		Warning:  c.Thresholds.Warning,
		Critical: c.Thresholds.Critical,
	}
}

// APIConfig converts the server section.
func (c *Config) APIConfig() api.Config {
	return api.Config{
		BaseURL: c.Server.URL,
		Timeout: c.Server.Timeout,
		Retries: c.Server.Retries,
	}
}

// PollConfig converts the poll section.
func (c *Config) PollConfig() poll.Config {
	return poll.Config{
		RosterInterval:  c.Poll.RosterInterval,
		HistoryInterval: c.Poll.HistoryInterval,
		HistoryRange:    c.Poll.HistoryRange,
	}
}
