package lint

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExpandFiles resolves args to the list of files to lint. Files are kept as
// given; directories are walked for files with one of exts, skipping hidden
// directories, node_modules and vendor. An empty args list walks dir.
func ExpandFiles(dir string, args []string, exts []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, arg := range args {
		abs := arg
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(dir, arg)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("lint target %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(abs))
			continue
		}
		var found []string
		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != abs {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != abs && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if hasExt(d.Name(), exts) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
		sort.Strings(found)
		for _, f := range found {
			add(f)
		}
	}
	return out, nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor"
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
