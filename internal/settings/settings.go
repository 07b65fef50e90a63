package settings

import (
	"strings"

	"scsslint/internal/paths"
	"scsslint/internal/tools"
)

// Settings is the per-workspace scss-lint configuration edited by users.
type Settings struct {
	PluginEnabled            bool   `yaml:"plugin_enabled" json:"plugin_enabled"`
	ScssLintExecutable       string `yaml:"scss_lint_executable" json:"scss_lint_executable"`
	ScssLintConfigFile       string `yaml:"scss_lint_config_file" json:"scss_lint_config_file"`
	TreatAllIssuesAsWarnings bool   `yaml:"treat_all_issues_as_warnings" json:"treat_all_issues_as_warnings"`
}

// Default returns settings for a workspace that has never been configured.
func Default() Settings {
	return Settings{PluginEnabled: true}
}

// ConfigMode says whether scss-lint discovers its config or is given one.
type ConfigMode string

const (
	ConfigModeSearch   ConfigMode = "search"
	ConfigModeExplicit ConfigMode = "explicit"
)

// ConfigMode reports ConfigModeExplicit when a config file is set.
func (s Settings) ConfigMode() ConfigMode {
	if strings.TrimSpace(s.ScssLintConfigFile) == "" {
		return ConfigModeSearch
	}
	return ConfigModeExplicit
}

// Equal reports whether s and o hold the same values, ignoring surrounding
// whitespace in paths.
func (s Settings) Equal(o Settings) bool {
	return s.PluginEnabled == o.PluginEnabled &&
		s.TreatAllIssuesAsWarnings == o.TreatAllIssuesAsWarnings &&
		strings.TrimSpace(s.ScssLintExecutable) == strings.TrimSpace(o.ScssLintExecutable) &&
		strings.TrimSpace(s.ScssLintConfigFile) == strings.TrimSpace(o.ScssLintConfigFile)
}

// LintSettings resolves s against workspaceRoot. Relative paths are joined
// to the root; the root is the working directory.
func (s Settings) LintSettings(workspaceRoot string) tools.LintSettings {
	return tools.NewLintSettings(
		paths.ResolveIn(workspaceRoot, s.ScssLintExecutable),
		workspaceRoot,
		paths.ResolveIn(workspaceRoot, s.ScssLintConfigFile),
		s.TreatAllIssuesAsWarnings,
	)
}
