//go:build !windows

package tools

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// isExecutable asks the kernel whether the current user may execute path,
// which honours ownership, group membership and ACLs.
func isExecutable(path string, _ fs.FileInfo) bool {
	return unix.Access(path, unix.X_OK) == nil
}
