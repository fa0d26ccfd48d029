// Package logger builds the zerolog loggers used by ccdash components.
// Components receive a zerolog.Logger and tag it with their own name, so
// the dashboard can route everything to a file while the TUI owns the terminal.
package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rileyhilliard/ccdash/internal/errors"
)

// DebugEnvVar forces debug level when set to any non-empty value.
const DebugEnvVar = "CCDASH_DEBUG"

// Options controls how a logger is built.
type Options struct {
	// Level is a zerolog level name: "debug", "info", "warn", "error".
	Level string
	// Output receives log lines. Defaults to stderr.
	Output io.Writer
	// Console renders human-readable lines instead of JSON.
	Console bool
}

// New creates a logger from the given options.
// An unknown level is a config error; an empty one means info.
func New(opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return zerolog.Nop(), errors.WrapWithCode(err, errors.ErrConfig,
				"Unknown log level: "+opts.Level,
				"Use one of: debug, info, warn, error")
		}
		level = parsed
	}
	if os.Getenv(DebugEnvVar) != "" {
		level = zerolog.DebugLevel
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// OpenFile opens (appending) the log file at path, creating parent directories.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create log directory: "+filepath.Dir(path),
			"Set log.file in .ccdash.yaml to a writable location")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot open log file: "+path,
			"Set log.file in .ccdash.yaml to a writable location")
	}
	return f, nil
}

// DefaultFile returns the default log file location under the user cache dir.
func DefaultFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "ccdash", "ccdash.log")
}

// Component returns a child logger tagged with a component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// Nop returns a logger that discards all messages.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]any
}

// BufferLogger captures JSON log lines for test assertions.
type BufferLogger struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewBufferLogger creates a capturing sink. Use Logger to obtain a zerolog.Logger writing to it.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{}
}

// Write implements io.Writer so zerolog can write into the buffer from any goroutine.
func (b *BufferLogger) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Logger returns a debug-level logger that writes into the buffer.
func (b *BufferLogger) Logger() zerolog.Logger {
	return zerolog.New(b).Level(zerolog.DebugLevel)
}

// Messages decodes the captured lines.
func (b *BufferLogger) Messages() []LogMessage {
	b.mu.Lock()
	raw := b.buf.String()
	b.mu.Unlock()

	var out []LogMessage
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := make(map[string]any)
		if err := json.Unmarshal([]byte(line), &fields); err != nil {
			continue
		}
		msg := LogMessage{Fields: fields}
		if lvl, ok := fields[zerolog.LevelFieldName].(string); ok {
			msg.Level = lvl
		}
		if m, ok := fields[zerolog.MessageFieldName].(string); ok {
			msg.Message = m
		}
		out = append(out, msg)
	}
	return out
}

// HasLevel returns true if any message was logged at the given level.
func (b *BufferLogger) HasLevel(level string) bool {
	for _, m := range b.Messages() {
		if m.Level == level {
			return true
		}
	}
	return false
}

// HasMessage returns true if any captured message contains substr.
func (b *BufferLogger) HasMessage(substr string) bool {
	for _, m := range b.Messages() {
		if strings.Contains(m.Message, substr) {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (b *BufferLogger) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}
