package lint

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Severity is the level scss-lint assigns to a lint.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is a single scss-lint finding.
type Issue struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Length   int      `json:"length"`
	Severity Severity `json:"severity"`
	Reason   string   `json:"reason"`
	Linter   string   `json:"linter,omitempty"`
}

func (i Issue) String() string {
	linter := ""
	if i.Linter != "" {
		linter = " [" + i.Linter + "]"
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s%s", i.File, i.Line, i.Column, i.Severity, i.Reason, linter)
}

type rawIssue struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Length   int    `json:"length"`
	Severity string `json:"severity"`
	Reason   string `json:"reason"`
	Linter   string `json:"linter"`
}

// ParseJSON decodes scss-lint's JSON formatter output, a map of file path to
// lints. Issues are ordered by file, line and column. Empty input yields no
// issues.
func ParseJSON(data []byte) ([]Issue, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}

	var raw map[string][]rawIssue
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, fmt.Errorf("parse scss-lint output: %w", err)
	}

	var issues []Issue
	for file, lints := range raw {
		for _, r := range lints {
			issues = append(issues, Issue{
				File:     file,
				Line:     r.Line,
				Column:   r.Column,
				Length:   r.Length,
				Severity: normalizeSeverity(r.Severity),
				Reason:   r.Reason,
				Linter:   r.Linter,
			})
		}
	}
	sort.SliceStable(issues, func(a, b int) bool {
		if issues[a].File != issues[b].File {
			return issues[a].File < issues[b].File
		}
		if issues[a].Line != issues[b].Line {
			return issues[a].Line < issues[b].Line
		}
		return issues[a].Column < issues[b].Column
	})
	return issues, nil
}

func normalizeSeverity(s string) Severity {
	if strings.EqualFold(s, string(SeverityError)) {
		return SeverityError
	}
	return SeverityWarning
}

// DowngradeToWarnings returns issues with every severity set to warning.
func DowngradeToWarnings(issues []Issue) []Issue {
	out := make([]Issue, len(issues))
	for i, issue := range issues {
		issue.Severity = SeverityWarning
		out[i] = issue
	}
	return out
}

// Count returns the number of errors and warnings in issues.
func Count(issues []Issue) (errors, warnings int) {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}
