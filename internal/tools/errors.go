package tools

import (
	"errors"
	"fmt"

	"scsslint/internal/runner"
)

// Sentinel causes carried by ValidationError and ToolUnavailableError.
var (
	ErrEmptyExecutable = runner.ErrEmptyExecutable
	ErrNotFound        = errors.New("no such file")
	ErrNotExecutable   = errors.New("not executable")
	ErrNotRegular      = errors.New("not a regular file")
	ErrUnreadable      = errors.New("not readable")
	ErrNoOutput        = errors.New("no version output")
)

// Field names used in ValidationError.
const (
	FieldExecutable = "executable"
	FieldConfig     = "config"
)

// ValidationError explains why a path was rejected.
type ValidationError struct {
	Field  string
	Path   string
	Reason error
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s: %v", e.Field, e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

// ToolUnavailableError reports that a version query could not produce a
// version. Cause is a *runner.SpawnError, a *runner.TimeoutError, an
// *ExitStatusError or ErrNoOutput.
type ToolUnavailableError struct {
	Path  string
	Cause error
}

func (e *ToolUnavailableError) Error() string {
	return fmt.Sprintf("scss-lint unavailable at %q: %v", e.Path, e.Cause)
}

func (e *ToolUnavailableError) Unwrap() error { return e.Cause }

// ExitStatusError records a version query that exited non-zero.
type ExitStatusError struct {
	ExitCode int
	Stderr   string
}

func (e *ExitStatusError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("exit status %d", e.ExitCode)
	}
	return fmt.Sprintf("exit status %d: %s", e.ExitCode, e.Stderr)
}
