package tools

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"scsslint/internal/config"
)

// Locator searches well-known places for scss-lint executables and config
// files. It holds no mutable state and is safe for concurrent use.
type Locator struct {
	def            ToolDefinition
	getenv         func(string) string
	home           string
	goos           string
	extraDirs      []string
	configNames    []string
	configMaxDepth int
}

// LocatorOption customises a Locator.
type LocatorOption func(*Locator)

// WithEnv replaces environment lookups (PATH, GEM_HOME, APPDATA, ...).
func WithEnv(getenv func(string) string) LocatorOption {
	return func(l *Locator) { l.getenv = getenv }
}

// WithHome sets the home directory used for per-user install locations.
func WithHome(home string) LocatorOption {
	return func(l *Locator) { l.home = home }
}

// WithGOOS selects the platform whose install locations are probed.
func WithGOOS(goos string) LocatorOption {
	return func(l *Locator) { l.goos = goos }
}

// WithLocatorConfig applies the locator section of application config.
func WithLocatorConfig(cfg config.LocatorConfig) LocatorOption {
	return func(l *Locator) {
		l.extraDirs = append([]string(nil), cfg.ExtraDirs...)
		if len(cfg.ConfigFileNames) > 0 {
			l.configNames = append([]string(nil), cfg.ConfigFileNames...)
		}
		l.configMaxDepth = cfg.ConfigMaxDepth
	}
}

// NewLocator returns a Locator bound to the real process environment unless
// overridden by opts.
func NewLocator(opts ...LocatorOption) *Locator {
	home, _ := os.UserHomeDir()
	defaults := config.Default().Locator
	l := &Locator{
		def:            ScssLint,
		getenv:         os.Getenv,
		home:           home,
		goos:           runtime.GOOS,
		configNames:    defaults.ConfigFileNames,
		configMaxDepth: defaults.ConfigMaxDepth,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FindExecutableCandidates returns absolute paths of valid scss-lint
// executables in probe priority order, without duplicates.
func (l *Locator) FindExecutableCandidates() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, dir := range l.searchDirs() {
		for _, name := range l.def.ExecutableNames(l.goos) {
			candidate, err := filepath.Abs(filepath.Join(dir, name))
			if err != nil {
				continue
			}
			if _, dup := seen[candidate]; dup {
				continue
			}
			if !ValidateExecutable(candidate) {
				continue
			}
			seen[candidate] = struct{}{}
			out = append(out, candidate)
		}
	}
	return out
}

// FindConfigCandidates returns readable config files in root and its
// subdirectories down to the configured depth, in lexical walk order.
// Hidden directories, node_modules and vendor are not entered.
func (l *Locator) FindConfigCandidates(root string) []string {
	if strings.TrimSpace(root) == "" {
		return nil
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil
	}

	names := make(map[string]struct{}, len(l.configNames))
	for _, n := range l.configNames {
		names[n] = struct{}{}
	}

	var out []string
	_ = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return filepath.SkipAll
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if skipConfigDir(d.Name()) || depth(absRoot, path) > l.configMaxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := names[d.Name()]; !ok {
			return nil
		}
		if ValidateConfig(path) {
			out = append(out, path)
		}
		return nil
	})
	return out
}

func skipConfigDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "node_modules", "vendor":
		return true
	}
	return false
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

// searchDirs lists the directories probed for executables, most likely
// first: configured extras, PATH, then per-platform install locations.
func (l *Locator) searchDirs() []string {
	var dirs []string
	dirs = append(dirs, l.extraDirs...)
	dirs = append(dirs, l.pathDirs()...)
	dirs = append(dirs, l.installDirs()...)

	out := dirs[:0]
	for _, d := range dirs {
		if strings.TrimSpace(d) != "" {
			out = append(out, d)
		}
	}
	return out
}

func (l *Locator) pathDirs() []string {
	raw := l.getenv("PATH")
	if raw == "" {
		return nil
	}
	sep := string(os.PathListSeparator)
	if l.goos == "windows" {
		sep = ";"
	}
	var dirs []string
	for _, entry := range strings.Split(raw, sep) {
		entry = strings.Trim(entry, `"`)
		if entry == "" {
			continue
		}
		dirs = append(dirs, entry)
	}
	return dirs
}

func (l *Locator) installDirs() []string {
	var dirs []string
	if gemHome := l.getenv("GEM_HOME"); gemHome != "" {
		dirs = append(dirs, filepath.Join(gemHome, "bin"))
	}

	if l.goos == "windows" {
		dirs = append(dirs, globNewestFirst(`C:\Ruby*\bin`)...)
		if appData := l.getenv("LOCALAPPDATA"); appData != "" {
			dirs = append(dirs, globNewestFirst(filepath.Join(appData, "Programs", "Ruby*", "bin"))...)
		}
		return dirs
	}

	if l.home != "" {
		dirs = append(dirs, globNewestFirst(filepath.Join(l.home, ".gem", "ruby", "*", "bin"))...)
		dirs = append(dirs, globNewestFirst(filepath.Join(l.home, ".local", "share", "gem", "ruby", "*", "bin"))...)
		dirs = append(dirs,
			filepath.Join(l.home, ".rbenv", "shims"),
			filepath.Join(l.home, ".rvm", "bin"),
		)
	}
	if l.goos == "darwin" {
		dirs = append(dirs, "/opt/homebrew/bin")
	}
	dirs = append(dirs, "/usr/local/bin", "/usr/bin")
	return dirs
}

// globNewestFirst expands pattern and orders matches so newer versioned
// directories (ruby/3.2.0 over ruby/2.7.0) are probed first.
func globNewestFirst(pattern string) []string {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	return matches
}
