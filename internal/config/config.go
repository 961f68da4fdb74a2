// Package config holds client configuration loaded from an optional YAML
// file with environment overrides layered on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all pagedriver configuration.
type Config struct {
	Driver DriverConfig `yaml:"driver"`

	// Debug enables protocol frame logging.
	Debug bool `yaml:"debug"`

	// Timeout is the default handshake/launch timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// DriverConfig configures the driver bundle.
type DriverConfig struct {
	Path               string `yaml:"path"`
	BrowsersPath       string `yaml:"browsers_path"`
	Version            string `yaml:"version"`
	SkipBrowserInstall bool   `yaml:"skip_browser_install"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

// Load reads the file at path over the defaults. A missing file is not an
// error; env overrides always apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PAGEDRIVER_DEBUG"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Debug = parsed
		}
	}
	if v := os.Getenv("PLAYWRIGHT_BROWSERS_PATH"); v != "" {
		c.Driver.BrowsersPath = v
	}
	if v := os.Getenv("PLAYWRIGHT_DRIVER_PATH"); v != "" && c.Driver.Path == "" {
		c.Driver.Path = v
	}
}
