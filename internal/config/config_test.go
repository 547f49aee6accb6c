package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Remote.BaseURL)
	assert.Equal(t, 60, cfg.Remote.TimeoutSeconds)
	assert.Equal(t, 30, cfg.Gateway.RequestsPerMinute)
	assert.Equal(t, 8385, cfg.Server.Port)
	assert.NoError(t, Validate(cfg))
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codesentry.toml")
	content := `
[remote]
base_url = "https://analysis.example.com"

[gateway]
requests_per_minute = 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://analysis.example.com", cfg.Remote.BaseURL)
	assert.Equal(t, 5, cfg.Gateway.RequestsPerMinute)
	// Untouched keys keep their defaults.
	assert.Equal(t, 60, cfg.Remote.TimeoutSeconds)
}

func TestInitConfigRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codesentry.toml")

	require.NoError(t, InitConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.NoError(t, Validate(cfg))

	assert.Error(t, InitConfig(path), "existing files are never clobbered")
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	cfg.Remote.BaseURL = "not a url"
	assert.Error(t, Validate(cfg))

	cfg, _ = LoadConfig("")
	cfg.Server.Port = 0
	assert.Error(t, Validate(cfg))

	cfg, _ = LoadConfig("")
	cfg.Remote.TimeoutSeconds = -1
	assert.Error(t, Validate(cfg))
}
