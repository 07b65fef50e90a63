package tui

import "scsslint/internal/lint"

// FileLintedMsg reports that one file has finished, successfully or not.
type FileLintedMsg struct {
	Result lint.FileResult
}

// SummaryMsg replaces the footer shown once work is done.
type SummaryMsg struct {
	Text string
}

// WorkDoneMsg signals that all background work has completed.
type WorkDoneMsg struct{}

// ErrorMsg signals a fatal error; the TUI should quit.
type ErrorMsg struct {
	Err error
}
