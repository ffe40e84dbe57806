package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "demo.yaml", `
logging:
  level: debug
screen:
  refresh_ms: 50
slider:
  min: 10
  max: 20
  step: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 50*time.Millisecond, cfg.Screen.Refresh())
	assert.Equal(t, 10, cfg.Slider.Min)
	assert.Equal(t, 20, cfg.Slider.Max)
	assert.Equal(t, 2, cfg.Slider.Step)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "demo.json", `{"logging":{"level":"warn"},"slider":{"max":50}}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 50, cfg.Slider.Max)
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "demo.toml", `
[screen]
refresh_ms = 75
percent_script = "percent.js"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 75, cfg.Screen.RefreshMS)
	assert.Equal(t, "percent.js", cfg.Screen.PercentScript)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "empty.yaml", "")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 200, cfg.Screen.RefreshMS)
	assert.Equal(t, 100, cfg.Slider.Max)
	assert.Equal(t, 5, cfg.Slider.Step)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "demo.ini", "level=info")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config extension")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 0, cfg.Slider.Min)
	assert.Equal(t, 100, cfg.Slider.Max)
}
