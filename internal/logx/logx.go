package logx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"scsslint/internal/paths"
)

// DebugEnv forces debug-level logging when set to "1".
const DebugEnv = "SCSSLINT_DEBUG"

// Options controls the process logger.
type Options struct {
	Verbose bool
	// Stderr receives the human-readable handler output. Defaults to os.Stderr.
	Stderr io.Writer
}

// Level resolves the stderr log level from the options and environment.
func (o Options) Level() slog.Level {
	if os.Getenv(DebugEnv) == "1" {
		return slog.LevelDebug
	}
	if o.Verbose {
		return slog.LevelInfo
	}
	return slog.LevelWarn
}

// NewStderr builds a text logger for interactive output.
func NewStderr(opts Options) *slog.Logger {
	w := opts.Stderr
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level()}))
}

// New creates a logger that writes JSON records to a timestamped file inside
// the project's logs directory, in addition to the stderr handler. The
// returned closer should be closed when logging is no longer needed.
func New(p paths.ProjectPaths, opts Options) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405") + ".log"
	filePath := filepath.Join(p.LogsDir, filename)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	w := opts.Stderr
	if w == nil {
		w = os.Stderr
	}
	handler := fanout{
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level()}),
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}
	return slog.New(handler), file, nil
}

// Or returns logger, or slog.Default() when logger is nil.
func Or(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// fanout dispatches each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
