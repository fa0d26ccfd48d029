package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/ccdash/internal/config"
	"github.com/rileyhilliard/ccdash/internal/errors"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		flag    string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"2s", 2 * time.Second, false},
		{"500ms", 500 * time.Millisecond, false},
		{"1m", time.Minute, false},
		{"100ms", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			got, err := ParseInterval("interval", tt.flag)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				assert.Contains(t, err.Error(), "--interval")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRecipients(t *testing.T) {
	assert.Nil(t, ParseRecipients(""))
	assert.Equal(t, []string{"web-1", "db-1"}, ParseRecipients("web-1, db-1"))
	assert.Equal(t, []string{"a"}, ParseRecipients(" ,a,, "))
}

func TestOverridesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	overrides{
		Server:          "http://other:5000",
		LogLevel:        "debug",
		RosterInterval:  2 * time.Second,
		HistoryInterval: 20 * time.Second,
		HistoryRange:    "6h",
	}.apply(cfg)

	assert.Equal(t, "http://other:5000", cfg.Server.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2*time.Second, cfg.Poll.RosterInterval)
	assert.Equal(t, 20*time.Second, cfg.Poll.HistoryInterval)
	assert.Equal(t, "6h", cfg.Poll.HistoryRange)
}

func TestOverridesApply_ZeroValuesKeepConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	want := *cfg
	overrides{}.apply(cfg)
	assert.Equal(t, want, *cfg)
}
