package tools

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"scsslint/internal/logx"
	"scsslint/internal/runner"
)

// Invoker runs a process for a target. *runner.Invoker implements it.
type Invoker interface {
	Invoke(ctx context.Context, target runner.Target, args []string, timeout time.Duration) (*runner.Result, error)
}

// CachedVersion is the single entry held by a VersionCache.
type CachedVersion struct {
	Key     SettingsKey
	Version string
}

// VersionCache memoizes the most recent successful version query. It holds at
// most one entry; a query under a different key replaces it. Failures are
// never cached.
type VersionCache struct {
	invoker Invoker
	def     ToolDefinition
	timeout time.Duration
	logger  *slog.Logger

	flight singleflight.Group

	mu    sync.Mutex
	entry *CachedVersion
}

// VersionCacheOption customises a VersionCache.
type VersionCacheOption func(*VersionCache)

// WithVersionTimeout bounds each version query.
func WithVersionTimeout(d time.Duration) VersionCacheOption {
	return func(c *VersionCache) { c.timeout = d }
}

// WithVersionLogger sets the logger.
func WithVersionLogger(logger *slog.Logger) VersionCacheOption {
	return func(c *VersionCache) { c.logger = logger }
}

// WithDefinition overrides the tool definition (version switch).
func WithDefinition(def ToolDefinition) VersionCacheOption {
	return func(c *VersionCache) { c.def = def }
}

// NewVersionCache creates an empty cache backed by invoker.
func NewVersionCache(invoker Invoker, opts ...VersionCacheOption) *VersionCache {
	c := &VersionCache{invoker: invoker, def: ScssLint}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logx.Or(c.logger).With("component", "version_cache")
	return c
}

// GetVersion returns the version line reported by the executable in s. A
// cached value is returned when s has the same key as the cached entry.
// Concurrent calls with the same key share one invocation, which runs
// detached from any single caller's cancellation and is bounded by the
// version timeout. A caller whose ctx ends stops waiting without failing the
// others. Errors are always *ToolUnavailableError and leave the cache
// untouched.
func (c *VersionCache) GetVersion(ctx context.Context, s LintSettings) (string, error) {
	key := s.Key()
	if v, ok := c.lookup(key); ok {
		recordCacheHit(ctx)
		return v, nil
	}
	if s.ExecutablePath() == "" {
		return "", &ToolUnavailableError{Path: "", Cause: ErrEmptyExecutable}
	}
	if err := ctx.Err(); err != nil {
		return "", &ToolUnavailableError{Path: s.ExecutablePath(), Cause: err}
	}

	ch := c.flight.DoChan(key.String(), func() (any, error) {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		version, err := c.query(context.WithoutCancel(ctx), s)
		if err != nil {
			return "", err
		}
		c.store(key, version)
		return version, nil
	})
	select {
	case <-ctx.Done():
		return "", &ToolUnavailableError{Path: s.ExecutablePath(), Cause: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			c.logger.Debug("version query shared", "exe", key.ExecutablePath)
		}
		return res.Val.(string), nil
	}
}

func (c *VersionCache) query(ctx context.Context, s LintSettings) (string, error) {
	version, err := readVersion(ctx, c.invoker, c.def, s, c.timeout)
	if err != nil {
		c.logger.Debug("version query failed", "exe", s.ExecutablePath(), "error", err)
		return "", err
	}
	c.logger.Debug("version resolved", "exe", s.ExecutablePath(), "version", version)
	return version, nil
}

func (c *VersionCache) lookup(key SettingsKey) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil || c.entry.Key != key {
		return "", false
	}
	return c.entry.Version, true
}

func (c *VersionCache) store(key SettingsKey, version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = &CachedVersion{Key: key, Version: version}
}

// Cached reports the current entry, if any.
func (c *VersionCache) Cached() (CachedVersion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return CachedVersion{}, false
	}
	return *c.entry, true
}

// Invalidate clears the cached entry.
func (c *VersionCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}
