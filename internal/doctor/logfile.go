package doctor

import (
	"context"

	"github.com/rileyhilliard/ccdash/internal/errors"
	"github.com/rileyhilliard/ccdash/internal/logger"
)

// LogFileCheck verifies the dashboard can append to its log file.
type LogFileCheck struct {
	Path string
}

func (c *LogFileCheck) Name() string     { return "log_file" }
func (c *LogFileCheck) Category() string { return CategoryLog }

func (c *LogFileCheck) Run(ctx context.Context) CheckResult {
	path := c.Path
	if path == "" {
		path = logger.DefaultFile()
	}

	f, err := logger.OpenFile(path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    errors.Summary(err),
			Suggestion: "Set log.file in .ccdash.yaml to a writable location",
		}
	}
	_ = f.Close()

	return CheckResult{Name: c.Name(), Status: StatusPass, Message: "Log file: " + path}
}

func (c *LogFileCheck) Fix() error { return nil }
