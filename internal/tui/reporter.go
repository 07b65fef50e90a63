package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"scsslint/internal/lint"
)

// LintReporter forwards lint results to a running program.
type LintReporter struct {
	send func(tea.Msg)
}

// NewLintReporter wraps send.
func NewLintReporter(send func(tea.Msg)) *LintReporter {
	return &LintReporter{send: send}
}

// Done is suitable as the onDone callback of lint.Runner.LintFiles.
func (r *LintReporter) Done(res lint.FileResult) {
	r.send(FileLintedMsg{Result: res})
}

// Finish posts the summary line.
func (r *LintReporter) Finish(results []lint.FileResult) {
	r.send(SummaryMsg{Text: SummaryLine(lint.Summarize(results))})
}

// SummaryLine renders totals for the footer and plain output.
func SummaryLine(sum lint.Summary) string {
	line := fmt.Sprintf("%d files, %d errors, %d warnings", sum.Files, sum.Errors, sum.Warnings)
	if sum.Failed > 0 {
		line += fmt.Sprintf(", %d failed", sum.Failed)
	}
	return line
}

// DisplayPath returns path relative to root when it lies beneath it.
func DisplayPath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
