package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_DefaultsWhenNoFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewLoaderWith(viper.New()).Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "docx", cfg.Output.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Processing.Enhance)
	assert.InDelta(t, 30.0, cfg.Layout.ParagraphGap, 1e-9)
}

func TestLoader_ReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scandoc.yaml")
	content := `
log_level: debug
layout:
  paragraph_gap: 45
  row_tolerance: 15
processing:
  enhance: false
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewLoaderWith(viper.New()).LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.InDelta(t, 45.0, cfg.Layout.ParagraphGap, 1e-9)
	assert.InDelta(t, 15.0, cfg.Layout.RowTolerance, 1e-9)
	assert.False(t, cfg.Processing.Enhance)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Untouched keys keep their defaults.
	assert.Equal(t, "docx", cfg.Output.Format)
}

func TestLoader_MissingExplicitFile(t *testing.T) {
	_, err := NewLoaderWith(viper.New()).LoadWithFile("/nonexistent/scandoc.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoader_InvalidFileValuesRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scandoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: pdf\n"), 0o600))

	_, err := NewLoaderWith(viper.New()).LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoader_EnvironmentOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SCANDOC_LOG_LEVEL", "warn")
	t.Setenv("SCANDOC_SERVER_PORT", "3000")

	cfg, err := NewLoaderWith(viper.New()).Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestGetConfigSearchPaths(t *testing.T) {
	paths := GetConfigSearchPaths()
	assert.Contains(t, paths, ".")
	assert.Contains(t, paths, "/etc/scandoc")
}
