// Package driver locates, installs and runs the external automation driver
// bundle that implements actual browser control. The client talks to it over
// the channel protocol; this package only manages the executable.
package driver

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Version is the driver bundle version this client is built against.
const Version = "1.50.1"

// Config controls where the driver lives and how it is launched.
type Config struct {
	// DriverDirectory overrides the default cache location of the bundle.
	DriverDirectory string
	// BrowsersPath overrides where the driver stores browser builds
	// (exported as PLAYWRIGHT_BROWSERS_PATH).
	BrowsersPath string
	// Version pins a bundle version; empty means the built-in Version.
	Version string
}

// EffectiveVersion returns the pinned or built-in bundle version.
func (c *Config) EffectiveVersion() string {
	if c != nil && c.Version != "" {
		return c.Version
	}
	return Version
}

// Directory resolves the bundle directory: explicit config, then the
// PLAYWRIGHT_DRIVER_PATH environment variable, then the user cache dir.
func (c *Config) Directory() (string, error) {
	if c != nil && c.DriverDirectory != "" {
		return c.DriverDirectory, nil
	}
	if dir := os.Getenv("PLAYWRIGHT_DRIVER_PATH"); dir != "" {
		return dir, nil
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("driver: resolve cache dir: %w", err)
	}
	return filepath.Join(cache, "pagedriver", fmt.Sprintf("driver-%s", c.EffectiveVersion())), nil
}

// Executable returns the path of the driver entrypoint inside the bundle.
func (c *Config) Executable() (string, error) {
	dir, err := c.Directory()
	if err != nil {
		return "", err
	}
	name := "playwright.sh"
	if runtime.GOOS == "windows" {
		name = "playwright.cmd"
	}
	return filepath.Join(dir, name), nil
}

// IsInstalled reports whether the driver entrypoint exists and is a file.
func (c *Config) IsInstalled() bool {
	exe, err := c.Executable()
	if err != nil {
		return false
	}
	info, err := os.Stat(exe)
	return err == nil && !info.IsDir()
}

// Env returns the process environment for the driver, identifying this
// client to it.
func (c *Config) Env() []string {
	env := os.Environ()
	env = append(env,
		"PW_LANG_NAME=go",
		fmt.Sprintf("PW_LANG_NAME_VERSION=%s", runtime.Version()),
		fmt.Sprintf("PW_CLI_DISPLAY_VERSION=%s", c.EffectiveVersion()),
	)
	if c != nil && c.BrowsersPath != "" {
		env = append(env, fmt.Sprintf("PLAYWRIGHT_BROWSERS_PATH=%s", c.BrowsersPath))
	}
	return env
}

// Command builds an exec.Cmd for a driver invocation with the right
// environment. The caller wires stdio before starting it.
func (c *Config) Command(args ...string) (*exec.Cmd, error) {
	exe, err := c.Executable()
	if err != nil {
		return nil, err
	}
	if !c.IsInstalled() {
		return nil, fmt.Errorf("driver: not installed at %s, run install first", exe)
	}
	cmd := exec.Command(exe, args...)
	cmd.Env = c.Env()
	return cmd, nil
}

// RunCommand proxies a driver subcommand attached to this process's stdio.
// Used by the CLI passthrough.
func (c *Config) RunCommand(args ...string) error {
	cmd, err := c.Command(args...)
	if err != nil {
		return err
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
