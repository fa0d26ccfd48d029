package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/ccdash/internal/config"
	"github.com/rileyhilliard/ccdash/internal/errors"
)

func TestInit_NonInteractive(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)

	var out bytes.Buffer
	err := Init(&out, InitOptions{Path: path, Server: "http://10.0.0.5:5000/", NonInteractive: true})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "✓ Created "+path)
	assert.Contains(t, out.String(), "Next steps:")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:5000", cfg.Server.URL)
	assert.Equal(t, config.DefaultConfig().Poll, cfg.Poll)
}

func TestInit_DefaultServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, Init(&bytes.Buffer{}, InitOptions{Path: path, NonInteractive: true}))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Server.URL, cfg.Server.URL)
}

func TestInit_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("server:\n  url: http://keep:5000\n"), 0o644))

	err := Init(&bytes.Buffer{}, InitOptions{Path: path, NonInteractive: true})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "http://keep:5000")
}

func TestInit_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("server:\n  url: http://old:5000\n"), 0o644))

	err := Init(&bytes.Buffer{}, InitOptions{Path: path, Server: "https://new.example", Overwrite: true, NonInteractive: true})
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://new.example", cfg.Server.URL)
}

func TestInit_BadServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)

	err := Init(&bytes.Buffer{}, InitOptions{Path: path, Server: "10.0.0.5:5000", NonInteractive: true})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.NoFileExists(t, path)
}

func TestValidateServerURL(t *testing.T) {
	assert.NoError(t, validateServerURL("http://127.0.0.1:5000"))
	assert.NoError(t, validateServerURL(" https://mon.example.com "))
	assert.Error(t, validateServerURL("ftp://host"))
	assert.Error(t, validateServerURL("http://"))
	assert.Error(t, validateServerURL("localhost"))
}
