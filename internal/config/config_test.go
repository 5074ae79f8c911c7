package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3333", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.RequestTimeout())
	assert.Equal(t, 20*time.Second, cfg.Realtime.DialTimeout())
	assert.Equal(t, time.Second, cfg.Realtime.ReconnectDelay())
	assert.Equal(t, 5*time.Second, cfg.Realtime.ReconnectDelayMax())
	assert.NotEmpty(t, cfg.Session.TokenPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SUPPORTHUB_API_URL", "https://helpdesk.internal")
	t.Setenv("SUPPORTHUB_REQUEST_TIMEOUT_MS", "2500")
	t.Setenv("SUPPORTHUB_RECONNECT_DELAY_MS", "bogus")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://helpdesk.internal", cfg.API.BaseURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.API.RequestTimeout())
	// Unparseable values fall back to the default.
	assert.Equal(t, time.Second, cfg.Realtime.ReconnectDelay())
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supporthub.yaml")
	data := []byte("api:\n  base_url: https://yaml.internal\nrealtime:\n  reconnect_delay_max_ms: 7000\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://yaml.internal", cfg.API.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.Realtime.ReconnectDelayMax())
}

func TestLoadMissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: ["), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
