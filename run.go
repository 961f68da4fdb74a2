// Package pagedriver is a client for driver-based browser automation. Run
// starts the driver process and returns a Playwright object from which
// browsers, contexts and pages are obtained. The API blocks; events are
// delivered through callbacks registered with On/Once.
package pagedriver

import (
	"context"
	"io"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/pagedriver/pagedriver/internal/config"
	"github.com/pagedriver/pagedriver/internal/driver"
	"github.com/pagedriver/pagedriver/internal/transport"
)

// RunOptions tunes how the driver process is located and started.
type RunOptions struct {
	// DriverDirectory overrides the driver bundle location.
	DriverDirectory string
	// BrowsersPath overrides the browser build cache.
	BrowsersPath string
	// SkipInstallBrowsers installs only the driver, not the browsers.
	SkipInstallBrowsers bool
	// Browsers limits browser installation, e.g. []string{"chromium"}.
	Browsers []string
	// Verbose logs protocol frames.
	Verbose bool
	// Logger overrides the logger built from Verbose.
	Logger *zap.Logger
}

// Install downloads the driver bundle and browsers if missing. Run calls it
// implicitly; calling it ahead of time gives better control in CI.
func Install(options ...RunOptions) error {
	opts := firstOption(options)
	cfg, logger := resolveRunConfig(opts)
	defer func() { _ = logger.Sync() }()
	driverCfg := driverConfigFrom(cfg)
	installOpts := driver.InstallOptions{}
	if opts != nil {
		installOpts.Browsers = opts.Browsers
		installOpts.SkipBrowsers = opts.SkipInstallBrowsers
	}
	installOpts.SkipBrowsers = installOpts.SkipBrowsers || cfg.Driver.SkipBrowserInstall
	return driver.Install(context.Background(), driverCfg, installOpts, logger)
}

// Run starts the driver and performs the connection handshake. The returned
// Playwright must be released with Stop.
func Run(options ...RunOptions) (*Playwright, error) {
	opts := firstOption(options)
	cfg, logger := resolveRunConfig(opts)
	return runWithConfig(cfg, opts, logger)
}

// RunWithConfig is Run with an explicit configuration, bypassing the config
// file and environment resolution.
func RunWithConfig(cfg *config.Config, options ...RunOptions) (*Playwright, error) {
	opts := firstOption(options)
	logger := buildLogger(opts, cfg.Debug)
	return runWithConfig(cfg, opts, logger)
}

func runWithConfig(cfg *config.Config, opts *RunOptions, logger *zap.Logger) (*Playwright, error) {
	driverCfg := driverConfigFrom(cfg)
	if !driverCfg.IsInstalled() {
		installOpts := driver.InstallOptions{SkipBrowsers: cfg.Driver.SkipBrowserInstall}
		if opts != nil {
			installOpts.Browsers = opts.Browsers
			installOpts.SkipBrowsers = installOpts.SkipBrowsers || opts.SkipInstallBrowsers
		}
		if err := driver.Install(context.Background(), driverCfg, installOpts, logger); err != nil {
			return nil, err
		}
	}

	cmd, err := driverCfg.Command("run-driver")
	if err != nil {
		return nil, err
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	pipe := transport.NewPipe(stdin, stdout, logger)
	conn := newConnection(pipe, logger, func() error {
		return reapProcess(cmd, stdin)
	})
	pw, err := conn.Start()
	if err != nil {
		_ = conn.Stop()
		return nil, err
	}
	return pw, nil
}

func resolveRunConfig(opts *RunOptions) (*config.Config, *zap.Logger) {
	cfg, err := config.Load("")
	if err != nil {
		cfg = config.Default()
	}
	if opts != nil {
		if opts.DriverDirectory != "" {
			cfg.Driver.Path = opts.DriverDirectory
		}
		if opts.BrowsersPath != "" {
			cfg.Driver.BrowsersPath = opts.BrowsersPath
		}
	}
	return cfg, buildLogger(opts, cfg.Debug)
}

func buildLogger(opts *RunOptions, debug bool) *zap.Logger {
	if opts != nil && opts.Logger != nil {
		return opts.Logger
	}
	if debug || (opts != nil && opts.Verbose) {
		logger, err := zap.NewDevelopment()
		if err == nil {
			return logger
		}
	}
	return zap.NewNop()
}

func driverConfigFrom(cfg *config.Config) *driver.Config {
	return &driver.Config{
		DriverDirectory: cfg.Driver.Path,
		BrowsersPath:    cfg.Driver.BrowsersPath,
		Version:         cfg.Driver.Version,
	}
}

// reapProcess waits for the driver to exit after stdin closed; it kills the
// process if it lingers.
func reapProcess(cmd *exec.Cmd, stdin io.Closer) error {
	_ = stdin.Close()
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		_ = cmd.Process.Kill()
		return <-done
	}
}
