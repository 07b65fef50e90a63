package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ProjectFileName is the project-level config file, looked up in the project root.
	ProjectFileName = "scsslint.yaml"
	// userDirName is the directory under the user config dir.
	userDirName = "scsslint"
	// userFileName is the user-level config file name.
	userFileName = "config.yaml"
)

// UserConfigFile returns <UserConfigDir>/scsslint/config.yaml.
func UserConfigFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("detect user config dir: %w", err)
	}
	return filepath.Join(dir, userDirName, userFileName), nil
}

// Locate returns the config file that applies to projectRoot: the project
// file when present, otherwise the user file. The returned path may not
// exist, in which case Load yields defaults.
func Locate(projectRoot string) string {
	projectFile := filepath.Join(projectRoot, ProjectFileName)
	if info, err := os.Stat(projectFile); err == nil && info.Mode().IsRegular() {
		return projectFile
	}
	if userFile, err := UserConfigFile(); err == nil {
		return userFile
	}
	return projectFile
}

// LoadFor resolves and loads the effective configuration for projectRoot.
func LoadFor(projectRoot string) (Config, string, error) {
	path := Locate(projectRoot)
	cfg, err := Load(path)
	if err != nil {
		return Config{}, path, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, path, nil
}
