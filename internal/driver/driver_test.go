package driver

import (
	"archive/zip"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveVersion(t *testing.T) {
	assert.Equal(t, Version, (&Config{}).EffectiveVersion())
	assert.Equal(t, Version, (*Config)(nil).EffectiveVersion())
	assert.Equal(t, "1.44.0", (&Config{Version: "1.44.0"}).EffectiveVersion())
}

func TestDirectoryResolution(t *testing.T) {
	explicit := &Config{DriverDirectory: "/opt/driver"}
	dir, err := explicit.Directory()
	require.NoError(t, err)
	assert.Equal(t, "/opt/driver", dir)

	t.Setenv("PLAYWRIGHT_DRIVER_PATH", "/env/driver")
	dir, err = (&Config{}).Directory()
	require.NoError(t, err)
	assert.Equal(t, "/env/driver", dir)

	t.Setenv("PLAYWRIGHT_DRIVER_PATH", "")
	dir, err = (&Config{}).Directory()
	require.NoError(t, err)
	assert.Contains(t, dir, "pagedriver")
	assert.Contains(t, dir, "driver-"+Version)
}

func TestExecutableName(t *testing.T) {
	cfg := &Config{DriverDirectory: "/opt/driver"}
	exe, err := cfg.Executable()
	require.NoError(t, err)
	if runtime.GOOS == "windows" {
		assert.Equal(t, filepath.Join("/opt/driver", "playwright.cmd"), exe)
	} else {
		assert.Equal(t, filepath.Join("/opt/driver", "playwright.sh"), exe)
	}
}

func TestIsInstalled(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{DriverDirectory: dir}
	assert.False(t, cfg.IsInstalled())

	exe, err := cfg.Executable()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	assert.True(t, cfg.IsInstalled())
}

func TestEnvIdentifiesClient(t *testing.T) {
	cfg := &Config{BrowsersPath: "/browsers"}
	env := cfg.Env()
	assert.Contains(t, env, "PW_LANG_NAME=go")
	assert.Contains(t, env, "PW_LANG_NAME_VERSION="+runtime.Version())
	assert.Contains(t, env, "PW_CLI_DISPLAY_VERSION="+Version)
	assert.Contains(t, env, "PLAYWRIGHT_BROWSERS_PATH=/browsers")

	env = (&Config{}).Env()
	for _, entry := range env {
		assert.NotContains(t, entry, "PLAYWRIGHT_BROWSERS_PATH=")
	}
}

func TestCommandRequiresInstalledDriver(t *testing.T) {
	cfg := &Config{DriverDirectory: t.TempDir()}
	_, err := cfg.Command("run-driver")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not installed")
}

func TestSanitizePathRejectsEscapes(t *testing.T) {
	dir := filepath.Join(os.TempDir(), "bundle")

	target, err := sanitizePath(dir, "package/cli.js")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "package", "cli.js"), target)

	_, err = sanitizePath(dir, "../outside")
	require.Error(t, err)
	_, err = sanitizePath(dir, "a/../../outside")
	require.Error(t, err)
}

func TestExtractZip(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "bundle.zip")
	f, err := os.Create(archive)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("package/cli.js")
	require.NoError(t, err)
	_, err = w.Write([]byte("console.log('hi')\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, extractZip(archive, dir))
	data, err := os.ReadFile(filepath.Join(dir, "package", "cli.js"))
	require.NoError(t, err)
	assert.Equal(t, "console.log('hi')\n", string(data))
}

func TestExtractZipRejectsTraversal(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "evil.zip")
	f, err := os.Create(archive)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("../evil.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("nope"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	err = extractZip(archive, filepath.Join(t.TempDir(), "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal archive path")
}

func TestBundlePlatform(t *testing.T) {
	platform, err := bundlePlatform()
	require.NoError(t, err)
	assert.NotEmpty(t, platform)
}
