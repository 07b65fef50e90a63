//go:build windows

package runner

import (
	"errors"
	"os"
	"os/exec"
)

func prepare(cmd *exec.Cmd) {}

// interrupt is unsupported for console processes on Windows; the caller falls
// back to kill.
func interrupt(cmd *exec.Cmd) error {
	return errors.New("interrupt not supported on windows")
}

func kill(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return os.ErrProcessDone
	}
	return cmd.Process.Kill()
}
