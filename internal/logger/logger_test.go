package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/ccdash/internal/errors"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		debugEnv  string
		expectDbg bool
	}{
		{name: "info by default", level: "", expectDbg: false},
		{name: "explicit debug", level: "debug", expectDbg: true},
		{name: "upper case level", level: "DEBUG", expectDbg: true},
		{name: "env forces debug", level: "warn", debugEnv: "1", expectDbg: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.debugEnv != "" {
				t.Setenv(DebugEnvVar, tt.debugEnv)
			} else {
				os.Unsetenv(DebugEnvVar)
			}

			var buf bytes.Buffer
			l, err := New(Options{Level: tt.level, Output: &buf})
			require.NoError(t, err)

			l.Debug().Msg("debug line")
			if tt.expectDbg {
				assert.Contains(t, buf.String(), "debug line")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "shouty"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestNew_Console(t *testing.T) {
	os.Unsetenv(DebugEnvVar)
	var buf bytes.Buffer
	l, err := New(Options{Output: &buf, Console: true})
	require.NoError(t, err)

	l.Info().Str("agent", "a1").Msg("roster loaded")
	assert.Contains(t, buf.String(), "roster loaded")
	assert.Contains(t, buf.String(), "agent=")
}

func TestComponent(t *testing.T) {
	b := NewBufferLogger()
	l := Component(b.Logger(), "poller")
	l.Info().Msg("tick")

	msgs := b.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "poller", msgs[0].Fields["component"])
	assert.Equal(t, "info", msgs[0].Level)
	assert.Equal(t, "tick", msgs[0].Message)
}

func TestBufferLogger(t *testing.T) {
	b := NewBufferLogger()
	l := b.Logger()

	assert.False(t, b.HasLevel("warn"))

	l.Debug().Msg("debug msg")
	l.Warn().Msg("roster fetch failed")

	assert.True(t, b.HasLevel("debug"))
	assert.True(t, b.HasLevel("warn"))
	assert.False(t, b.HasLevel("error"))
	assert.True(t, b.HasMessage("fetch failed"))

	b.Clear()
	assert.Empty(t, b.Messages())
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error().Msg("discarded")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ccdash.log")
	f, err := OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	l, err := New(Options{Output: f})
	require.NoError(t, err)
	l.Info().Msg("written")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}

func TestDefaultFile(t *testing.T) {
	assert.Equal(t, "ccdash.log", filepath.Base(DefaultFile()))
}
