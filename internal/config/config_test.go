package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoadEmptyRoot(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadReadsYaml(t *testing.T) {
	dir := t.TempDir()
	content := "logLevel: debug\ncache:\n  enabled: false\n  path: /tmp/custom.db\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "/tmp/custom.db", cfg.CachePath(dir))
}

func TestLoadMalformedYaml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("logLevel: [oops"), 0644))

	cfg, err := Load(dir)
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestCachePathDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/ws", ".rhoscope", "index.db"), cfg.CachePath("/ws"))
}
