//go:build windows

package tools

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var defaultPathExt = []string{".com", ".exe", ".bat", ".cmd"}

// isExecutable matches the file extension against PATHEXT.
func isExecutable(path string, _ fs.FileInfo) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, candidate := range pathExt() {
		if ext == candidate {
			return true
		}
	}
	return false
}

func pathExt() []string {
	raw := os.Getenv("PATHEXT")
	if raw == "" {
		return defaultPathExt
	}
	var exts []string
	for _, e := range strings.Split(strings.ToLower(raw), ";") {
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return exts
}
