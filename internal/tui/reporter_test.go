package tui

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"scsslint/internal/lint"
)

func TestResultRow(t *testing.T) {
	warningOnly := []lint.Issue{
		{Line: 3, Column: 1, Severity: lint.SeverityWarning, Reason: "Prefer single quotes"},
	}
	mixed := []lint.Issue{
		{Line: 1, Column: 2, Severity: lint.SeverityError, Reason: "Syntax"},
		{Line: 4, Column: 1, Severity: lint.SeverityWarning, Reason: "w"},
	}
	tests := []struct {
		name   string
		res    lint.FileResult
		status string
		errs   string
		warns  string
		detail string
	}{
		{
			name:   "clean",
			res:    lint.FileResult{File: "a.scss"},
			status: StatusClean,
			errs:   "0",
			warns:  "0",
		},
		{
			name:   "warnings",
			res:    lint.FileResult{File: "a.scss", Issues: warningOnly},
			status: StatusWarnings,
			errs:   "0",
			warns:  "1",
			detail: "3:1 Prefer single quotes",
		},
		{
			name:   "errors",
			res:    lint.FileResult{File: "a.scss", Issues: mixed},
			status: StatusErrors,
			errs:   "1",
			warns:  "1",
			detail: "1:2 Syntax",
		},
		{
			name:   "failed",
			res:    lint.FileResult{File: "a.scss", Err: errors.New("boom")},
			status: StatusFailed,
			errs:   "-",
			warns:  "-",
			detail: "boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := resultRow("a.scss", tt.res)
			errs, warns := row.counts()
			if row.status != tt.status || errs != tt.errs || warns != tt.warns || row.detail != tt.detail {
				t.Errorf("unexpected row %+v", row)
			}
		})
	}
}

func TestLintReporterForwardsResults(t *testing.T) {
	var msgs []tea.Msg
	r := NewLintReporter(func(m tea.Msg) { msgs = append(msgs, m) })
	results := []lint.FileResult{{File: "/p/a.scss"}, {File: "/p/b.scss", Err: errors.New("x")}}
	for _, res := range results {
		r.Done(res)
	}
	r.Finish(results)

	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if done, ok := msgs[0].(FileLintedMsg); !ok || done.Result.File != "/p/a.scss" {
		t.Errorf("unexpected first message %#v", msgs[0])
	}
	if sum, ok := msgs[2].(SummaryMsg); !ok || sum.Text != "2 files, 0 errors, 0 warnings, 1 failed" {
		t.Errorf("unexpected summary %#v", msgs[2])
	}
}

func TestNewLintModel(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "proj")
	m := NewLintModel("scss-lint", root, []string{filepath.Join(root, "styles", "a.scss")})
	if len(m.rows) != 1 {
		t.Fatalf("expected one row, got %d", len(m.rows))
	}
	if got := m.rows[0].display; got != filepath.Join("styles", "a.scss") {
		t.Errorf("expected relative display path, got %q", got)
	}
	if got := m.rows[0].status; got != StatusPending {
		t.Errorf("expected pending, got %q", got)
	}
}

func TestDisplayPath(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "proj")
	outside := filepath.Join(string(filepath.Separator), "elsewhere", "x.scss")
	if got := DisplayPath(root, outside); got != outside {
		t.Errorf("paths outside root stay absolute, got %q", got)
	}
	if got := DisplayPath("", "a.scss"); got != "a.scss" {
		t.Errorf("got %q", got)
	}
}

func TestDetectMode(t *testing.T) {
	var buf bytes.Buffer
	if DetectMode(&buf, false, true) != ModeJSON {
		t.Error("json flag wins")
	}
	if DetectMode(&buf, false, false) != ModePlain {
		t.Error("non-terminal writers are plain")
	}
	if IsTerminal(&buf) {
		t.Error("buffer is not a terminal")
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := map[time.Duration]string{
		250 * time.Millisecond:  "250ms",
		1500 * time.Millisecond: "1.5s",
		42 * time.Second:        "42s",
		125 * time.Second:       "2m05s",
	}
	for d, want := range tests {
		if got := formatElapsed(d); got != want {
			t.Errorf("formatElapsed(%s) = %q, want %q", d, got, want)
		}
	}
}

func TestWithStatusRunsFnOnNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	ran := false
	WithStatus(&buf, "querying", func() { ran = true })
	if !ran {
		t.Error("fn did not run")
	}
	if buf.Len() != 0 {
		t.Errorf("no spinner output expected on non-terminal, got %q", buf.String())
	}
}
