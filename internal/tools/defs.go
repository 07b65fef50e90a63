package tools

import "strings"

// HowToUseURL documents installing and configuring scss-lint for the plugin.
const HowToUseURL = "https://github.com/idok/scss-lint-plugin"

// ToolDefinition contains metadata required to locate and query a tool.
type ToolDefinition struct {
	Name           string
	MinimumVersion string
	VersionSwitch  string
	// BaseName is the executable name without platform extension.
	BaseName string
	// ConfigFileName is the tool's conventional config file.
	ConfigFileName string
}

// ScssLint describes the scss-lint Ruby gem.
var ScssLint = ToolDefinition{
	Name:           "scss-lint",
	MinimumVersion: "0.38.0",
	VersionSwitch:  "--version",
	BaseName:       "scss-lint",
	ConfigFileName: ".scss-lint.yml",
}

// ExecutableNames returns the file names probed for def on goos. RubyGems
// installs batch wrappers on Windows, so those come first there.
func (def ToolDefinition) ExecutableNames(goos string) []string {
	if goos == "windows" {
		return []string{def.BaseName + ".bat", def.BaseName + ".cmd", def.BaseName + ".exe", def.BaseName}
	}
	return []string{def.BaseName}
}

// WithMinimum returns a copy of def using minimum when it is non-empty.
func (def ToolDefinition) WithMinimum(minimum string) ToolDefinition {
	if m := strings.TrimSpace(minimum); m != "" {
		def.MinimumVersion = m
	}
	return def
}
