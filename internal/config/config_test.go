package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Setenv("PAGEDRIVER_DEBUG", "")
	t.Setenv("PLAYWRIGHT_BROWSERS_PATH", "")
	t.Setenv("PLAYWRIGHT_DRIVER_PATH", "")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.Debug)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.Driver.Path)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
debug: true
timeout: 45s
driver:
  path: /opt/driver
  browsers_path: /opt/browsers
  version: 1.44.0
  skip_browser_install: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, "/opt/driver", cfg.Driver.Path)
	assert.Equal(t, "/opt/browsers", cfg.Driver.BrowsersPath)
	assert.Equal(t, "1.44.0", cfg.Driver.Version)
	assert.True(t, cfg.Driver.SkipBrowserInstall)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("driver: [broken"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PAGEDRIVER_DEBUG", "true")
	t.Setenv("PLAYWRIGHT_BROWSERS_PATH", "/env/browsers")
	t.Setenv("PLAYWRIGHT_DRIVER_PATH", "/env/driver")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/env/browsers", cfg.Driver.BrowsersPath)
	assert.Equal(t, "/env/driver", cfg.Driver.Path)
}

func TestFileDriverPathWinsOverEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PLAYWRIGHT_DRIVER_PATH", "/env/driver")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("driver:\n  path: /file/driver\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/file/driver", cfg.Driver.Path)
}

func TestInvalidDebugEnvIsIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAGEDRIVER_DEBUG", "not-a-bool")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Debug)
}
