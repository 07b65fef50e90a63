package tools

// LintSettings is an immutable snapshot of how scss-lint should be invoked.
type LintSettings struct {
	executablePath           string
	workingDirectory         string
	configPath               string
	treatAllIssuesAsWarnings bool
}

// NewLintSettings builds a LintSettings value. An empty configPath means the
// tool discovers its own config.
func NewLintSettings(executablePath, workingDirectory, configPath string, treatAllIssuesAsWarnings bool) LintSettings {
	return LintSettings{
		executablePath:           executablePath,
		workingDirectory:         workingDirectory,
		configPath:               configPath,
		treatAllIssuesAsWarnings: treatAllIssuesAsWarnings,
	}
}

func (s LintSettings) ExecutablePath() string         { return s.executablePath }
func (s LintSettings) WorkingDirectory() string       { return s.workingDirectory }
func (s LintSettings) ConfigPath() string             { return s.configPath }
func (s LintSettings) TreatAllIssuesAsWarnings() bool { return s.treatAllIssuesAsWarnings }

// SettingsKey identifies settings that produce the same version output. The
// config path is not part of it: the version does not depend on config.
type SettingsKey struct {
	ExecutablePath   string
	WorkingDirectory string
}

func (k SettingsKey) String() string {
	return k.ExecutablePath + "\x00" + k.WorkingDirectory
}

// Key returns the version cache key for s.
func (s LintSettings) Key() SettingsKey {
	return SettingsKey{ExecutablePath: s.executablePath, WorkingDirectory: s.workingDirectory}
}

// WithConfigPath returns a copy of s using configPath.
func (s LintSettings) WithConfigPath(configPath string) LintSettings {
	s.configPath = configPath
	return s
}
