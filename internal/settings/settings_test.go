package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMode(t *testing.T) {
	assert.Equal(t, ConfigModeSearch, Settings{}.ConfigMode())
	assert.Equal(t, ConfigModeSearch, Settings{ScssLintConfigFile: "  "}.ConfigMode())
	assert.Equal(t, ConfigModeExplicit, Settings{ScssLintConfigFile: ".scss-lint.yml"}.ConfigMode())
}

func TestEqual(t *testing.T) {
	a := Settings{PluginEnabled: true, ScssLintExecutable: "/bin/scss-lint"}
	assert.True(t, a.Equal(Settings{PluginEnabled: true, ScssLintExecutable: " /bin/scss-lint "}))
	assert.False(t, a.Equal(Settings{PluginEnabled: false, ScssLintExecutable: "/bin/scss-lint"}))
	assert.False(t, a.Equal(Settings{PluginEnabled: true, ScssLintExecutable: "/bin/scss-lint", TreatAllIssuesAsWarnings: true}))
	assert.False(t, a.Equal(Settings{PluginEnabled: true, ScssLintExecutable: "/bin/scss-lint", ScssLintConfigFile: "x.yml"}))
}

func TestLintSettings_ResolvesRelativePaths(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "proj")
	s := Settings{
		ScssLintExecutable:       "bin/scss-lint",
		ScssLintConfigFile:       ".scss-lint.yml",
		TreatAllIssuesAsWarnings: true,
	}
	ls := s.LintSettings(root)
	assert.Equal(t, filepath.Join(root, "bin", "scss-lint"), ls.ExecutablePath())
	assert.Equal(t, filepath.Join(root, ".scss-lint.yml"), ls.ConfigPath())
	assert.Equal(t, root, ls.WorkingDirectory())
	assert.True(t, ls.TreatAllIssuesAsWarnings())

	search := Settings{ScssLintExecutable: "/usr/bin/scss-lint"}.LintSettings(root)
	assert.Equal(t, "/usr/bin/scss-lint", search.ExecutablePath())
	assert.Empty(t, search.ConfigPath())
}

func TestStore_MissingFileReturnsDefault(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), ".scsslint", "settings.yaml"))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".scsslint", "settings.yaml")
	store := NewStore(path)
	want := Settings{
		PluginEnabled:            true,
		ScssLintExecutable:       "/usr/local/bin/scss-lint",
		ScssLintConfigFile:       "config/.scss-lint.yml",
		TreatAllIssuesAsWarnings: true,
	}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scss_lint_executable: /usr/local/bin/scss-lint")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestStore_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scss_lint_executable: /x\n"), 0o644))

	got, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.True(t, got.PluginEnabled)
	assert.Equal(t, "/x", got.ScssLintExecutable)
}

func TestStore_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plugin_enabled: [\n"), 0o644))

	_, err := NewStore(path).Load()
	assert.Error(t, err)
}
