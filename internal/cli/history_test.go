package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/errors"
	"github.com/rileyhilliard/ccdash/internal/health"
)

func historyOpts(agent string) historyOptions {
	return historyOptions{
		Agent:      agent,
		Range:      "30m",
		Thresholds: health.DefaultThresholds(),
		Loc:        time.UTC,
	}
}

func TestHistoryCommand_Chronological(t *testing.T) {
	f := fleet()
	var out bytes.Buffer
	require.NoError(t, historyCommand(context.Background(), f, &out, historyOpts("web-1")))

	s := out.String()
	assert.Equal(t, "30m", f.gotRange)
	assert.Contains(t, s, "web-1  last 30m  3 samples")
	assert.Contains(t, s, "TIME")

	first := strings.Index(s, "10:00:00")
	second := strings.Index(s, "10:00:10")
	third := strings.Index(s, "10:00:20")
	require.True(t, first >= 0 && second >= 0 && third >= 0)
	assert.True(t, first < second && second < third, "oldest first")

	assert.Contains(t, s, "Healthy")
	assert.Contains(t, s, "Warning")
	assert.Contains(t, s, "Critical")
}

func TestHistoryCommand_TrendLines(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, historyCommand(context.Background(), fleet(), &out, historyOpts("web-1")))

	s := out.String()
	assert.Contains(t, s, " 91.0%  ↑ +26.0")
	assert.Contains(t, s, " 40.0%  → +0.0")
}

func TestHistoryCommand_NoSamples(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, historyCommand(context.Background(), fleet(), &out, historyOpts("cache")))
	assert.Equal(t, "No samples for cache in the last 30m\n", out.String())
}

func TestHistoryCommand_Limit(t *testing.T) {
	opts := historyOpts("web-1")
	opts.Limit = 2

	var out bytes.Buffer
	require.NoError(t, historyCommand(context.Background(), fleet(), &out, opts))
	assert.Contains(t, out.String(), "2 samples")
	assert.NotContains(t, out.String(), "10:00:00 ")
}

func TestHistoryCommand_Error(t *testing.T) {
	f := fleet()
	f.historyErr = errors.NewNetwork(api.HistoryPath+"web-1", 500, nil)

	err := historyCommand(context.Background(), f, &bytes.Buffer{}, historyOpts("web-1"))
	assert.True(t, errors.IsCode(err, errors.ErrNetwork))
}

func TestHistoryCommand_JSON(t *testing.T) {
	opts := historyOpts("web-1")
	opts.JSON = true

	var out bytes.Buffer
	require.NoError(t, historyCommand(context.Background(), fleet(), &out, opts))

	var env struct {
		Success bool        `json:"success"`
		Data    historyJSON `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "web-1", env.Data.AgentID)
	require.Len(t, env.Data.Samples, 3)
	assert.True(t, env.Data.Samples[0].Timestamp.Equal(epoch))
	assert.Equal(t, "Critical", env.Data.Samples[2].Status)
}

func TestHistoryCommand_EmptyJSONHasSamplesArray(t *testing.T) {
	opts := historyOpts("cache")
	opts.JSON = true

	var out bytes.Buffer
	require.NoError(t, historyCommand(context.Background(), fleet(), &out, opts))
	assert.Contains(t, out.String(), `"samples": []`)
}
