package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	pagedriver "github.com/pagedriver/pagedriver"
	"github.com/pagedriver/pagedriver/internal/config"
	"github.com/pagedriver/pagedriver/internal/driver"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pagedriver",
	Short: "pagedriver - browser automation driver manager",
	Long: `pagedriver manages the browser automation driver bundle used by the
pagedriver library: it installs the bundle and its browsers, and proxies
driver subcommands for debugging.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var (
	installBrowsers     []string
	installSkipBrowsers bool
	installWithDeps     bool
)

// installCmd downloads the driver bundle and browsers.
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Download the driver bundle and browser builds",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Minute)
		defer cancel()
		opts := driver.InstallOptions{
			Browsers:     installBrowsers,
			SkipBrowsers: installSkipBrowsers || cfg.Driver.SkipBrowserInstall,
			WithDeps:     installWithDeps,
		}
		if err := driver.Install(ctx, driverConfig(cfg), opts, logger); err != nil {
			return fmt.Errorf("install failed: %w", err)
		}
		logger.Info("driver installed", zap.String("version", driverConfig(cfg).EffectiveVersion()))
		return nil
	},
}

// execCmd proxies any driver subcommand, e.g. "pagedriver exec codegen".
var execCmd = &cobra.Command{
	Use:                "exec [driver args...]",
	Short:              "Run a driver subcommand attached to this terminal",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return driverConfig(cfg).RunCommand(args...)
	},
}

// runDriverCmd execs the driver protocol server on our stdio. Tools that
// speak the channel protocol themselves use this instead of the library.
var runDriverCmd = &cobra.Command{
	Use:   "run-driver",
	Short: "Run the driver protocol server on stdin/stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return driverConfig(cfg).RunCommand("run-driver")
	},
}

var screenshotOutput string

// screenshotCmd captures a page, exercising the full client stack.
var screenshotCmd = &cobra.Command{
	Use:   "screenshot <url>",
	Short: "Navigate to a URL headlessly and save a screenshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]
		if !strings.Contains(url, "://") {
			url = "https://" + url
		}
		pw, err := pagedriver.Run(pagedriver.RunOptions{Verbose: verbose, Logger: logger})
		if err != nil {
			return fmt.Errorf("start driver: %w", err)
		}
		defer func() { _ = pw.Stop() }()

		browser, err := pw.Chromium.Launch()
		if err != nil {
			return fmt.Errorf("launch browser: %w", err)
		}
		defer func() { _ = browser.Close() }()

		page, err := browser.NewPage()
		if err != nil {
			return err
		}
		if _, err := page.Goto(url); err != nil {
			return fmt.Errorf("navigate: %w", err)
		}
		if _, err := page.Screenshot(pagedriver.ScreenshotOptions{
			Path:     pagedriver.String(screenshotOutput),
			FullPage: pagedriver.Bool(true),
		}); err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
		logger.Info("screenshot saved", zap.String("url", url), zap.String("path", screenshotOutput))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print client and driver bundle versions",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pagedriver (driver bundle %s)\n", driver.Version)
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func driverConfig(cfg *config.Config) *driver.Config {
	return &driver.Config{
		DriverDirectory: cfg.Driver.Path,
		BrowsersPath:    cfg.Driver.BrowsersPath,
		Version:         cfg.Driver.Version,
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	installCmd.Flags().StringSliceVar(&installBrowsers, "browser", nil, "browsers to install (default all)")
	installCmd.Flags().BoolVar(&installSkipBrowsers, "skip-browsers", false, "install only the driver bundle")
	installCmd.Flags().BoolVar(&installWithDeps, "with-deps", false, "also install system dependencies")

	screenshotCmd.Flags().StringVarP(&screenshotOutput, "output", "o", "screenshot.png", "output image path")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(runDriverCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(screenshotCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
