package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, 10*time.Second, cfg.VersionTimeout())
	assert.Equal(t, 100*time.Millisecond, cfg.GracePeriod())
}

func TestLoad_PartialOverride_MergesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectFileName)
	writeFile(t, path, `
runner:
  timeout_s: 90
locator:
  extra_dirs: [/opt/tools/bin]
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Runner.TimeoutSec)
	assert.Equal(t, []string{"/opt/tools/bin"}, cfg.Locator.ExtraDirs)
	assert.Equal(t, 10, cfg.Runner.VersionTimeoutSec)
	assert.Equal(t, []string{".scss-lint.yml"}, cfg.Locator.ConfigFileNames)
	assert.Equal(t, "JSON", cfg.Lint.Format)
}

func TestLoad_ZeroValues_FallBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectFileName)
	writeFile(t, path, `
runner:
  timeout_s: 0
lint:
  format: ""
  extensions: []
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Runner.TimeoutSec)
	assert.Equal(t, "JSON", cfg.Lint.Format)
	assert.Equal(t, []string{".scss"}, cfg.Lint.Extensions)
}

func TestLoad_MalformedYAML_ReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectFileName)
	writeFile(t, path, "runner: [unterminated")

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal config")
}

func TestLoad_InvalidValues_Rejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectFileName)
	writeFile(t, path, `
runner:
  timeout_s: -5
lint:
  concurrency: 500
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
	assert.Contains(t, err.Error(), "runner.timeout_s must be >= 1")
	assert.Contains(t, err.Error(), "lint.concurrency must be <= 64")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults pass", func(*Config) {}, ""},
		{"empty config name", func(c *Config) { c.Locator.ConfigFileNames = []string{""} }, "locator.config_file_names[0] is required"},
		{"no config names", func(c *Config) { c.Locator.ConfigFileNames = nil }, "locator.config_file_names must have at least 1 entries"},
		{"extension without dot", func(c *Config) { c.Lint.Extensions = []string{"scss"} }, `lint.extensions[0] must start with "."`},
		{"bad minimum version", func(c *Config) { c.Lint.MinimumVersion = "latest" }, "lint.minimum_version is not a version"},
		{"empty minimum version allowed", func(c *Config) { c.Lint.MinimumVersion = "" }, ""},
		{"depth too large", func(c *Config) { c.Locator.ConfigMaxDepth = 9 }, "locator.config_max_depth must be <= 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLocate_PrefersProjectFile(t *testing.T) {
	root := t.TempDir()
	projectFile := filepath.Join(root, ProjectFileName)
	writeFile(t, projectFile, "version: 1\n")

	assert.Equal(t, projectFile, Locate(root))
}

func TestLocate_FallsBackToUserFile(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "xdg"))
	t.Setenv("HOME", root)

	userFile, err := UserConfigFile()
	require.NoError(t, err)
	assert.Equal(t, userFile, Locate(root))
}

func TestMarshal_RoundTripsThroughLoad(t *testing.T) {
	cfg := Default()
	cfg.Runner.TimeoutSec = 45

	data, err := cfg.Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), ProjectFileName)
	writeFile(t, path, string(data))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
