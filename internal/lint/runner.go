package lint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"scsslint/internal/config"
	"scsslint/internal/logx"
	"scsslint/internal/tools"
)

// FileResult is the outcome of linting one file.
type FileResult struct {
	File      string        `json:"file"`
	Issues    []Issue       `json:"issues"`
	ExitCode  int           `json:"exit_code"`
	Truncated bool          `json:"truncated,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	Err       error         `json:"-"`
}

// Error returns the failure message, or "" when the file was linted.
func (r FileResult) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Runner lints SCSS files by invoking scss-lint once per file.
type Runner struct {
	invoker tools.Invoker
	cfg     config.LintConfig
	timeout time.Duration
	logger  *slog.Logger
}

// NewRunner creates a Runner. A non-positive timeout uses the invoker default.
func NewRunner(invoker tools.Invoker, cfg config.LintConfig, timeout time.Duration, logger *slog.Logger) *Runner {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Format == "" {
		cfg.Format = config.Default().Lint.Format
	}
	return &Runner{
		invoker: invoker,
		cfg:     cfg,
		timeout: timeout,
		logger:  logx.Or(logger).With("component", "lint"),
	}
}

// Args builds the scss-lint command line for files.
func (r *Runner) Args(s tools.LintSettings, files []string) []string {
	args := []string{"--format", r.cfg.Format}
	if cfg := s.ConfigPath(); cfg != "" {
		args = append(args, "--config", cfg)
	}
	return append(args, files...)
}

// LintFile runs scss-lint on a single file. Tool failures (spawn, timeout,
// crash exit statuses, unparseable output) are reported in FileResult.Err.
func (r *Runner) LintFile(ctx context.Context, s tools.LintSettings, file string) FileResult {
	out := FileResult{File: file}

	res, err := r.invoker.Invoke(ctx, s, r.Args(s, []string{file}), r.timeout)
	if res != nil {
		out.ExitCode = res.ExitCode
		out.Truncated = res.Truncated
		out.Duration = res.Duration
	}
	if err != nil {
		out.Err = err
		recordLintMetrics(ctx, out.Duration, 0, 0, false)
		return out
	}
	if err := InterpretExit(res.ExitCode, res.Stderr); err != nil {
		out.Err = err
		recordLintMetrics(ctx, out.Duration, 0, 0, false)
		return out
	}

	issues, err := ParseJSON([]byte(res.Stdout))
	if err != nil {
		if res.Truncated {
			err = fmt.Errorf("%w (output truncated)", err)
		}
		out.Err = err
		recordLintMetrics(ctx, out.Duration, 0, 0, false)
		return out
	}
	if s.TreatAllIssuesAsWarnings() {
		issues = DowngradeToWarnings(issues)
	}
	out.Issues = issues

	errCount, warnCount := Count(issues)
	recordLintMetrics(ctx, out.Duration, errCount, warnCount, true)
	r.logger.Debug("linted", "file", file, "errors", errCount, "warnings", warnCount, "exit_code", res.ExitCode)
	return out
}

// LintFiles lints files with at most lint.concurrency invocations in flight.
// Results keep the order of files. onDone, when non-nil, is called as each
// file completes, possibly from several goroutines at once. The returned
// error joins every per-file failure and any context error.
func (r *Runner) LintFiles(ctx context.Context, s tools.LintSettings, files []string, onDone func(FileResult)) ([]FileResult, error) {
	ctx, span := startLintSpan(ctx, len(files))
	defer span.End()

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{File: file, Err: err}
				return err
			}
			results[i] = r.LintFile(gctx, s, file)
			if onDone != nil {
				onDone(results[i])
			}
			return nil
		})
	}
	waitErr := g.Wait()

	var errs []error
	issues := 0
	for _, res := range results {
		issues += len(res.Issues)
		if res.Err != nil && !errors.Is(res.Err, context.Canceled) {
			errs = append(errs, fmt.Errorf("%s: %w", res.File, res.Err))
		}
	}
	if waitErr != nil {
		errs = append(errs, waitErr)
	} else if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}

	span.SetAttributes(attribute.Int("lint.issue_count", issues))
	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lint failed")
	}
	return results, err
}

// Summary totals a set of results.
type Summary struct {
	Files    int `json:"files"`
	Failed   int `json:"failed"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// Summarize totals results.
func Summarize(results []FileResult) Summary {
	sum := Summary{Files: len(results)}
	for _, r := range results {
		if r.Err != nil {
			sum.Failed++
			continue
		}
		e, w := Count(r.Issues)
		sum.Errors += e
		sum.Warnings += w
	}
	return sum
}
