package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"

	"scsslint/internal/config"
	"scsslint/internal/logx"
)

// Target names the executable to run and the directory to run it in.
// tools.LintSettings satisfies it.
type Target interface {
	ExecutablePath() string
	WorkingDirectory() string
}

// Result represents the outcome of a process invocation. It is owned by the
// caller and never modified after Invoke returns.
type Result struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	TimedOut  bool
	Truncated bool
	Duration  time.Duration
}

// Options bound every invocation made by an Invoker.
type Options struct {
	// Timeout applies when Invoke is called with a non-positive timeout.
	Timeout time.Duration
	// GracePeriod is the time between interrupt and kill once Timeout expires.
	GracePeriod time.Duration
	// MaxOutputBytes caps stdout and stderr independently.
	MaxOutputBytes int64
	// Env is passed to the process; nil inherits the current environment.
	Env    []string
	Logger *slog.Logger
}

// DefaultOptions mirrors config.Default().Runner.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig derives invoker options from application config.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Timeout:        cfg.Timeout(),
		GracePeriod:    cfg.GracePeriod(),
		MaxOutputBytes: cfg.Runner.MaxOutputBytes,
	}
}

// Invoker runs external processes with bounded output and a hard timeout.
type Invoker struct {
	opts   Options
	logger *slog.Logger
}

// minWaitDelay bounds how long Wait lingers on pipes held open by orphaned
// descendants when no grace period is configured.
const minWaitDelay = 100 * time.Millisecond

// NewInvoker creates an Invoker. Zero-valued options fall back to defaults.
func NewInvoker(opts Options) *Invoker {
	defaults := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.GracePeriod < 0 {
		opts.GracePeriod = 0
	}
	if opts.MaxOutputBytes <= 0 {
		opts.MaxOutputBytes = defaults.MaxOutputBytes
	}
	return &Invoker{
		opts:   opts,
		logger: logx.Or(opts.Logger).With("component", "runner"),
	}
}

// Invoke runs target's executable with args in target's working directory.
//
// A non-zero exit code is not an error. Start failures return a *SpawnError
// and a nil Result. When the timeout expires the process is interrupted, then
// killed after the grace period, and the partial Result is returned with a
// *TimeoutError. Cancelling ctx kills the process and returns the partial
// Result with ctx.Err() wrapped.
func (i *Invoker) Invoke(ctx context.Context, target Target, args []string, timeout time.Duration) (*Result, error) {
	path := target.ExecutablePath()
	dir := target.WorkingDirectory()
	if strings.TrimSpace(path) == "" {
		return nil, &SpawnError{Path: path, Cause: ErrEmptyExecutable}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("invoke %s: %w", path, err)
	}
	if timeout <= 0 {
		timeout = i.opts.Timeout
	}

	ctx, span := startInvokeSpan(ctx, path, dir, args)
	defer span.End()

	logger := i.logger.With("exe", path, "dir", dir)
	logger.Debug("invoke", "args", args, "timeout", timeout)

	stdout := newCollector(i.opts.MaxOutputBytes)
	stderr := newCollector(i.opts.MaxOutputBytes)

	cmd := exec.Command(path, args...)
	cmd.Dir = dir
	cmd.Env = i.opts.Env
	cmd.Stdin = nil
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = max(i.opts.GracePeriod, minWaitDelay)
	prepare(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		spawnErr := &SpawnError{Path: path, Cause: err}
		span.RecordError(spawnErr)
		span.SetStatus(codes.Error, "spawn failed")
		recordInvokeMetrics(ctx, outcomeSpawn, time.Since(start))
		logger.Debug("spawn failed", "error", err)
		return nil, spawnErr
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var (
		waitErr  error
		execErr  error
		timedOut bool
		outcome  = outcomeExited
	)
	select {
	case waitErr = <-done:
	case <-ctx.Done():
		_ = kill(cmd)
		waitErr = <-done
		execErr = fmt.Errorf("invoke %s: %w", path, ctx.Err())
		outcome = outcomeCanceled
	case <-timer.C:
		timedOut = true
		if err := interrupt(cmd); err != nil {
			_ = kill(cmd)
		}
		grace := time.NewTimer(i.opts.GracePeriod)
		select {
		case waitErr = <-done:
		case <-grace.C:
			_ = kill(cmd)
			waitErr = <-done
		}
		grace.Stop()
		execErr = &TimeoutError{Path: path, After: timeout}
		outcome = outcomeTimeout
	}

	res := &Result{
		ExitCode:  exitCode(cmd),
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		TimedOut:  timedOut,
		Truncated: stdout.Truncated() || stderr.Truncated(),
		Duration:  time.Since(start),
	}
	if timedOut {
		res.ExitCode = -1
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil, errors.As(waitErr, &exitErr):
	case errors.Is(waitErr, exec.ErrWaitDelay):
		logger.Debug("output pipes held open after exit", "error", waitErr)
	default:
		if execErr == nil {
			execErr = fmt.Errorf("wait %s: %w", path, waitErr)
		}
	}

	setInvokeSpanResult(span, res)
	if execErr != nil {
		span.RecordError(execErr)
		span.SetStatus(codes.Error, outcome)
	}
	recordInvokeMetrics(ctx, outcome, res.Duration)

	if timedOut {
		logger.Warn("process timed out", "timeout", timeout, "duration", res.Duration)
	} else {
		logger.Debug("invoke finished", "exit_code", res.ExitCode, "duration", res.Duration, "truncated", res.Truncated)
	}
	return res, execErr
}

func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}
