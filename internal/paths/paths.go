package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProjectPaths captures canonical locations for a linted workspace.
type ProjectPaths struct {
	Root         string
	ConfigFile   string
	MetaDir      string
	SettingsFile string
	LogsDir      string
}

// Resolve determines the workspace root using the optional --project flag or
// the current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(ExpandHome(projectFlag))
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	metaDir := filepath.Join(root, ".scsslint")
	return ProjectPaths{
		Root:         root,
		ConfigFile:   filepath.Join(root, "scsslint.yaml"),
		MetaDir:      metaDir,
		SettingsFile: filepath.Join(metaDir, "settings.yaml"),
		LogsDir:      filepath.Join(metaDir, "logs"),
	}
}

// ResolveIn returns value as a clean absolute path, joining relative values
// with root. Empty values stay empty.
func ResolveIn(root, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	value = ExpandHome(value)
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// ExpandHome replaces a leading "~/" with the user's home directory. The value
// is returned unchanged when the home directory cannot be determined.
func ExpandHome(value string) string {
	if value != "~" && !strings.HasPrefix(value, "~/") && !strings.HasPrefix(value, `~\`) {
		return value
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return value
	}
	return filepath.Join(home, value[1:])
}

// EnsureMetaDirs creates the hidden .scsslint directory and its logs folder.
func (p ProjectPaths) EnsureMetaDirs() error {
	dirs := []string{p.MetaDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
