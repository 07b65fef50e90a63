package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures how scss-lint is located and invoked.
type Config struct {
	Version int           `yaml:"version" validate:"gte=1"`
	Runner  RunnerConfig  `yaml:"runner"`
	Locator LocatorConfig `yaml:"locator"`
	Lint    LintConfig    `yaml:"lint"`
}

// RunnerConfig bounds every subprocess invocation.
type RunnerConfig struct {
	TimeoutSec        int   `yaml:"timeout_s" validate:"gte=1"`
	VersionTimeoutSec int   `yaml:"version_timeout_s" validate:"gte=1"`
	MaxOutputBytes    int64 `yaml:"max_output_bytes" validate:"gte=1"`
	GracePeriodMs     int   `yaml:"grace_period_ms" validate:"gte=0,lte=60000"`
}

// LocatorConfig tunes executable and config file discovery.
type LocatorConfig struct {
	ExtraDirs       []string `yaml:"extra_dirs" validate:"dive,required"`
	ConfigFileNames []string `yaml:"config_file_names" validate:"min=1,dive,required"`
	ConfigMaxDepth  int      `yaml:"config_max_depth" validate:"gte=0,lte=3"`
}

// LintConfig describes lint invocations.
type LintConfig struct {
	Format         string   `yaml:"format" validate:"required"`
	Concurrency    int      `yaml:"concurrency" validate:"gte=1,lte=64"`
	MinimumVersion string   `yaml:"minimum_version" validate:"omitempty,semver_loose"`
	Extensions     []string `yaml:"extensions" validate:"min=1,dive,startswith=."`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Runner: RunnerConfig{
			TimeoutSec:        30,
			VersionTimeoutSec: 10,
			MaxOutputBytes:    4 * 1024 * 1024,
			GracePeriodMs:     100,
		},
		Locator: LocatorConfig{
			ExtraDirs:       []string{},
			ConfigFileNames: []string{".scss-lint.yml"},
			ConfigMaxDepth:  1,
		},
		Lint: LintConfig{
			Format:         "JSON",
			Concurrency:    4,
			MinimumVersion: "0.38.0",
			Extensions:     []string{".scss"},
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyDefaults ensures fields fall back to sensible defaults when the YAML
// omits them or sets them to zero values.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Runner.TimeoutSec == 0 {
		c.Runner.TimeoutSec = defaults.Runner.TimeoutSec
	}
	if c.Runner.VersionTimeoutSec == 0 {
		c.Runner.VersionTimeoutSec = defaults.Runner.VersionTimeoutSec
	}
	if c.Runner.MaxOutputBytes == 0 {
		c.Runner.MaxOutputBytes = defaults.Runner.MaxOutputBytes
	}
	if c.Runner.GracePeriodMs == 0 {
		c.Runner.GracePeriodMs = defaults.Runner.GracePeriodMs
	}
	if c.Locator.ExtraDirs == nil {
		c.Locator.ExtraDirs = []string{}
	}
	if len(c.Locator.ConfigFileNames) == 0 {
		c.Locator.ConfigFileNames = defaults.Locator.ConfigFileNames
	}
	if c.Lint.Format == "" {
		c.Lint.Format = defaults.Lint.Format
	}
	if c.Lint.Concurrency == 0 {
		c.Lint.Concurrency = defaults.Lint.Concurrency
	}
	if len(c.Lint.Extensions) == 0 {
		c.Lint.Extensions = defaults.Lint.Extensions
	}
}

// Timeout is the default lint invocation timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Runner.TimeoutSec) * time.Second
}

// VersionTimeout bounds a version query.
func (c Config) VersionTimeout() time.Duration {
	return time.Duration(c.Runner.VersionTimeoutSec) * time.Second
}

// GracePeriod is how long an interrupted process gets before it is killed.
func (c Config) GracePeriod() time.Duration {
	return time.Duration(c.Runner.GracePeriodMs) * time.Millisecond
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}
