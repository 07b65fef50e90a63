package tools

import (
	"context"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"
)

// readVersion runs the version switch of def for s. Every failure is
// reported as a *ToolUnavailableError.
func readVersion(ctx context.Context, invoker Invoker, def ToolDefinition, s LintSettings, timeout time.Duration) (string, error) {
	path := s.ExecutablePath()
	if path == "" {
		return "", &ToolUnavailableError{Path: path, Cause: ErrEmptyExecutable}
	}
	res, err := invoker.Invoke(ctx, s, []string{def.VersionSwitch}, timeout)
	if err != nil {
		return "", &ToolUnavailableError{Path: path, Cause: err}
	}
	if res.ExitCode != 0 {
		return "", &ToolUnavailableError{Path: path, Cause: &ExitStatusError{ExitCode: res.ExitCode, Stderr: firstLine(res.Stderr)}}
	}
	version := parseVersionOutput(res.Stdout, res.Stderr)
	if version == "" {
		return "", &ToolUnavailableError{Path: path, Cause: ErrNoOutput}
	}
	return version, nil
}

// parseVersionOutput returns the first non-empty line of stdout, falling back
// to stderr for tools that report their version there.
func parseVersionOutput(stdout, stderr string) string {
	if line := firstLine(stdout); line != "" {
		return line
	}
	return firstLine(stderr)
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// VersionNumber extracts the dotted version from a version line such as
// "scss-lint 0.59.0". The line is returned unchanged if no field parses.
func VersionNumber(line string) string {
	fields := strings.Fields(line)
	for i := len(fields) - 1; i >= 0; i-- {
		if _, err := goversion.NewVersion(fields[i]); err == nil {
			return fields[i]
		}
	}
	return line
}

// MeetsMinimum reports whether version (a number or a full version line) is
// at least minimum. An empty minimum is always met; an unparseable version
// never is.
func MeetsMinimum(version, minimum string) bool {
	if strings.TrimSpace(minimum) == "" {
		return true
	}
	want, err := goversion.NewVersion(minimum)
	if err != nil {
		return true
	}
	got, err := goversion.NewVersion(VersionNumber(version))
	if err != nil {
		return false
	}
	return got.GreaterThanOrEqual(want)
}
