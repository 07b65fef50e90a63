package lint

import (
	"fmt"
	"strings"
)

// scss-lint exit statuses. 0-2 mean the tool ran; the rest mean it could not
// lint.
const (
	ExitOK          = 0
	ExitWarnings    = 1
	ExitErrors      = 2
	ExitUsage       = 64
	ExitNoInput     = 66
	ExitUnavailable = 69
	ExitSoftware    = 70
	ExitConfig      = 78
	ExitNoFiles     = 80
)

var exitMeanings = map[int]string{
	ExitUsage:       "command line usage error",
	ExitNoInput:     "input file did not exist or was not readable",
	ExitUnavailable: "a required library or gem is missing",
	ExitSoftware:    "unexpected internal error",
	ExitConfig:      "configuration error",
	ExitNoFiles:     "file patterns did not match any files",
}

// ToolFailureError reports an exit status meaning scss-lint could not lint.
type ToolFailureError struct {
	ExitCode int
	Meaning  string
	Stderr   string
}

func (e *ToolFailureError) Error() string {
	msg := fmt.Sprintf("scss-lint exited %d (%s)", e.ExitCode, e.Meaning)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// InterpretExit maps an scss-lint exit status to nil when the tool ran,
// regardless of findings, and to a *ToolFailureError otherwise.
func InterpretExit(code int, stderr string) error {
	switch code {
	case ExitOK, ExitWarnings, ExitErrors:
		return nil
	}
	meaning, ok := exitMeanings[code]
	if !ok {
		meaning = "unknown failure"
	}
	return &ToolFailureError{ExitCode: code, Meaning: meaning, Stderr: firstLine(stderr)}
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
