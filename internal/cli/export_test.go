package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/ccdash/internal/errors"
	"github.com/rileyhilliard/ccdash/internal/health"
)

func TestExportCommand(t *testing.T) {
	f := fleet()
	target := filepath.Join(t.TempDir(), "web")

	var out bytes.Buffer
	err := exportCommand(context.Background(), f, &out, exportOptions{
		Agent:      "web-1",
		Range:      "1h",
		Out:        target,
		Thresholds: health.DefaultThresholds(),
		Loc:        time.UTC,
		Now:        func() time.Time { return epoch.Add(time.Minute) },
	})
	require.NoError(t, err)

	assert.Equal(t, "1h", f.gotRange)
	assert.FileExists(t, target+".xlsx")
	assert.Equal(t, "✓ Wrote 3 samples to "+target+".xlsx\n", out.String())
}

func TestExportCommand_NoHistory(t *testing.T) {
	dir := t.TempDir()
	err := exportCommand(context.Background(), fleet(), &bytes.Buffer{}, exportOptions{
		Agent:      "cache",
		Range:      "30m",
		Out:        filepath.Join(dir, "cache.xlsx"),
		Thresholds: health.DefaultThresholds(),
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrEmptyResult))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportCommand_FetchError(t *testing.T) {
	f := fleet()
	f.historyErr = errors.NewNetwork("/api/reports/history/web-1", 502, nil)

	err := exportCommand(context.Background(), f, &bytes.Buffer{}, exportOptions{
		Agent:      "web-1",
		Out:        filepath.Join(t.TempDir(), "x.xlsx"),
		Thresholds: health.DefaultThresholds(),
	})
	assert.True(t, errors.IsCode(err, errors.ErrNetwork))
}

func TestDefaultExportName(t *testing.T) {
	tests := []struct {
		agent string
		want  string
	}{
		{"web-1", "web-1-history.xlsx"},
		{"rack 4/node:2", "rack_4_node_2-history.xlsx"},
		{"", "device-history.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.agent, func(t *testing.T) {
			assert.Equal(t, tt.want, defaultExportName(tt.agent))
		})
	}
}
