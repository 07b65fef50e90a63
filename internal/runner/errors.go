package runner

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyExecutable is returned when no executable path was supplied.
var ErrEmptyExecutable = errors.New("executable path is empty")

// SpawnError reports that the process could not be started.
type SpawnError struct {
	Path  string
	Cause error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Path, e.Cause)
}

func (e *SpawnError) Unwrap() error { return e.Cause }

// TimeoutError reports that the process outlived its allotted time and was
// terminated. The partial Result is returned alongside it.
type TimeoutError struct {
	Path  string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Path, e.After)
}

// Timeout reports true so callers can test with an interface assertion.
func (e *TimeoutError) Timeout() bool { return true }
