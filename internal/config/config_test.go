package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, 90, cfg.Analytics.ForecastDays)
	assert.Equal(t, 5, cfg.Analytics.Clusters)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  port: 9090
paths:
  data_dir: /tmp/retail/data
  processed_dir: /tmp/retail/processed
analytics:
  forecast_days: 30
`), 0644))

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/retail/data", cfg.Paths.DataDir)
	assert.Equal(t, 30, cfg.Analytics.ForecastDays)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server:\n  port: 9090\n"), 0644))

	t.Setenv("RETAILBI_SERVER_PORT", "7070")

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("RETAILBI_LOGGING_LEVEL", "loud")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestAsOfTime(t *testing.T) {
	t.Run("unset", func(t *testing.T) {
		cfg := &Config{}
		_, ok, err := cfg.AsOfTime()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("valid date", func(t *testing.T) {
		cfg := &Config{}
		cfg.Analytics.AsOf = "2024-06-01"
		asOf, ok, err := cfg.AsOfTime()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2024, asOf.Year())
	})

	t.Run("invalid date", func(t *testing.T) {
		cfg := &Config{}
		cfg.Analytics.AsOf = "junk"
		_, _, err := cfg.AsOfTime()
		assert.Error(t, err)
	})
}

func TestPaths(t *testing.T) {
	dir := t.TempDir()

	paths, err := NewPaths(PathsConfig{
		DataDir:      filepath.Join(dir, "data"),
		ProcessedDir: filepath.Join(dir, "data", "processed"),
		LogsDir:      filepath.Join(dir, "logs"),
	})
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	assert.DirExists(t, paths.DataDir)
	assert.DirExists(t, paths.ProcessedDir)
	assert.Equal(t, filepath.Join(paths.ProcessedDir, MonthlySalesFile), paths.ProcessedPath(MonthlySalesFile))
	assert.Equal(t, filepath.Join(paths.DataDir, FactSalesFile), paths.DataPath(FactSalesFile))
}
