package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"scsslint/internal/lint"
)

const (
	tickInterval = 150 * time.Millisecond
	marqueeGap   = "   "
	columnGap    = "  "
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// tickMsg advances the spinner and scrolls over-long paths and details.
type tickMsg time.Time

type column struct {
	header string
	width  int
}

var (
	colFile     = column{"FILE", 40}
	colStatus   = column{"STATUS", 9}
	colErrors   = column{"ERRORS", 6}
	colWarnings = column{"WARNINGS", 8}
	colDetail   = column{"DETAIL", 40}

	lintColumns = []column{colFile, colStatus, colErrors, colWarnings, colDetail}
)

// fileRow is the table state of one file.
type fileRow struct {
	display  string
	status   string
	errors   int
	warnings int
	detail   string
}

// counts renders the ERRORS and WARNINGS cells. Pending files show nothing
// and files scss-lint could not check show a dash.
func (r fileRow) counts() (string, string) {
	switch r.status {
	case StatusPending:
		return "", ""
	case StatusFailed:
		return "-", "-"
	}
	return strconv.Itoa(r.errors), strconv.Itoa(r.warnings)
}

// resultRow describes a finished file. The detail is the first issue, or the
// failure message.
func resultRow(display string, res lint.FileResult) fileRow {
	row := fileRow{display: display}
	if res.Err != nil {
		row.status = StatusFailed
		row.detail = res.Error()
		return row
	}
	row.errors, row.warnings = lint.Count(res.Issues)
	switch {
	case row.errors > 0:
		row.status = StatusErrors
	case row.warnings > 0:
		row.status = StatusWarnings
	default:
		row.status = StatusClean
	}
	if len(res.Issues) > 0 {
		first := res.Issues[0]
		row.detail = fmt.Sprintf("%d:%d %s", first.Line, first.Column, first.Reason)
	}
	return row
}

// ProgressModel is the bubbletea model behind `scsslint lint`: one row per
// file, filled in as results arrive.
type ProgressModel struct {
	title string
	rows  []fileRow
	index map[string]int

	errors   int
	warnings int
	failed   int

	summary     string
	done        bool
	interrupted bool
	err         error
	onInterrupt func()

	tick int
}

// NewLintModel builds a model with one pending row per file. Paths are shown
// relative to root when they lie beneath it.
func NewLintModel(title, root string, files []string) ProgressModel {
	m := ProgressModel{
		title: title,
		rows:  make([]fileRow, 0, len(files)),
		index: make(map[string]int, len(files)),
	}
	for _, f := range files {
		if _, dup := m.index[f]; dup {
			continue
		}
		m.index[f] = len(m.rows)
		m.rows = append(m.rows, fileRow{display: DisplayPath(root, f), status: StatusPending})
	}
	return m
}

// OnInterrupt registers fn to run when the user presses ctrl+c or q while
// files are still being linted.
func (m *ProgressModel) OnInterrupt(fn func()) {
	m.onInterrupt = fn
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m ProgressModel) Init() tea.Cmd {
	return scheduleTick()
}

// Update satisfies the tea.Model interface.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, scheduleTick()

	case FileLintedMsg:
		m.applyResult(msg.Result)
		return m, nil

	case SummaryMsg:
		m.summary = msg.Text
		return m, nil

	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.done && m.onInterrupt != nil {
				m.onInterrupt()
			}
			m.interrupted = !m.done
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// applyResult fills in the row for res.File. Results for files that are not
// in the table, or that were already reported, are ignored.
func (m *ProgressModel) applyResult(res lint.FileResult) {
	idx, ok := m.index[res.File]
	if !ok || m.rows[idx].status != StatusPending {
		return
	}
	row := resultRow(m.rows[idx].display, res)
	m.rows[idx] = row
	m.errors += row.errors
	m.warnings += row.warnings
	if row.status == StatusFailed {
		m.failed++
	}
}

// View satisfies the tea.Model interface.
func (m ProgressModel) View() string {
	if m.done && m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	var b strings.Builder
	if m.title != "" {
		b.WriteString(TitleStyle.Render(m.title))
		b.WriteString("\n\n")
	}

	headers := make([]string, len(lintColumns))
	for i, col := range lintColumns {
		headers[i] = HeaderStyle.Render(pad(col.header, col.width))
	}
	b.WriteString(strings.Join(headers, columnGap))
	b.WriteByte('\n')

	for _, row := range m.rows {
		errs, warns := row.counts()
		cells := []string{
			m.fit(row.display, colFile.width),
			StatusStyle(row.status).Render(pad(row.status, colStatus.width)),
			pad(errs, colErrors.width),
			pad(warns, colWarnings.width),
			m.fit(row.detail, colDetail.width),
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, columnGap), " "))
		b.WriteByte('\n')
	}

	switch {
	case !m.done:
		processed, total := m.progressCounts()
		spinner := spinnerFrames[m.tick%len(spinnerFrames)]
		fmt.Fprintf(&b, "\n%s Linting %d/%d files... %d errors, %d warnings", spinner, processed, total, m.errors, m.warnings)
		if m.failed > 0 {
			fmt.Fprintf(&b, ", %d failed", m.failed)
		}
		b.WriteByte('\n')
	case m.interrupted:
		b.WriteString("\nInterrupted.\n")
	case m.summary != "":
		fmt.Fprintf(&b, "\n%s\n", m.summary)
	}
	return b.String()
}

// fit scrolls text that does not fit while linting is running and truncates
// it once the table is final.
func (m ProgressModel) fit(text string, width int) string {
	if !m.done && len(strings.TrimSpace(text)) > width {
		return marqueeText(text, width, m.tick)
	}
	return pad(truncate(text, width), width)
}

// progressCounts returns (processed, total).
func (m ProgressModel) progressCounts() (int, int) {
	processed := 0
	for _, row := range m.rows {
		if row.status != StatusPending {
			processed++
		}
	}
	return processed, len(m.rows)
}

// Done returns whether the model has finished (work done or error).
func (m ProgressModel) Done() bool {
	return m.done
}

// Interrupted reports whether the user quit before work finished.
func (m ProgressModel) Interrupted() bool {
	return m.interrupted
}

// Err returns any fatal error that occurred.
func (m ProgressModel) Err() error {
	return m.err
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// marqueeText shows a window of width bytes over text, shifted one byte per
// tick, with a gap before the text repeats.
func marqueeText(text string, width, tick int) string {
	text = strings.TrimSpace(text)
	if width <= 0 {
		return ""
	}
	if len(text) <= width {
		return text
	}
	cycle := text + marqueeGap
	offset := tick % len(cycle)
	var out strings.Builder
	out.Grow(width)
	for i := 0; i < width; i++ {
		out.WriteByte(cycle[(offset+i)%len(cycle)])
	}
	return out.String()
}

// truncate shortens value to max bytes, ending in "..." when there is room.
func truncate(value string, max int) string {
	if max <= 0 {
		return ""
	}
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
