package tools

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scsslint/internal/runner"
)

// fakeInvoker returns a canned result and counts invocations.
type fakeInvoker struct {
	calls  atomic.Int32
	delay  time.Duration
	result *runner.Result
	err    error

	mu       sync.Mutex
	lastArgs []string
}

func (f *fakeInvoker) Invoke(ctx context.Context, target runner.Target, args []string, timeout time.Duration) (*runner.Result, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastArgs = args
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.result, f.err
}

func stubVersion(version string) *fakeInvoker {
	return &fakeInvoker{result: &runner.Result{Stdout: version + "\n"}}
}

func TestGetVersion_ServedFromCache(t *testing.T) {
	inv := stubVersion("scss-lint 0.59.0")
	cache := NewVersionCache(inv)
	s := NewLintSettings("/usr/local/bin/scss-lint", "/proj", "", false)

	v, err := cache.GetVersion(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "scss-lint 0.59.0", v)

	v, err = cache.GetVersion(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "scss-lint 0.59.0", v)
	assert.Equal(t, int32(1), inv.calls.Load())
	assert.Equal(t, []string{"--version"}, inv.lastArgs)
}

func TestGetVersion_ConfigPathNotPartOfKey(t *testing.T) {
	inv := stubVersion("scss-lint 0.59.0")
	cache := NewVersionCache(inv)
	base := NewLintSettings("/usr/local/bin/scss-lint", "/proj", "", false)

	_, err := cache.GetVersion(context.Background(), base)
	require.NoError(t, err)
	_, err = cache.GetVersion(context.Background(), base.WithConfigPath("/proj/.scss-lint.yml"))
	require.NoError(t, err)
	_, err = cache.GetVersion(context.Background(), NewLintSettings("/usr/local/bin/scss-lint", "/proj", "/other.yml", true))
	require.NoError(t, err)

	assert.Equal(t, int32(1), inv.calls.Load())
}

func TestGetVersion_NewKeyEvictsOldEntry(t *testing.T) {
	inv := stubVersion("scss-lint 0.59.0")
	cache := NewVersionCache(inv)
	a := NewLintSettings("/a/scss-lint", "/proj", "", false)
	b := NewLintSettings("/a/scss-lint", "/other", "", false)

	_, err := cache.GetVersion(context.Background(), a)
	require.NoError(t, err)
	_, err = cache.GetVersion(context.Background(), b)
	require.NoError(t, err)

	entry, ok := cache.Cached()
	require.True(t, ok)
	assert.Equal(t, b.Key(), entry.Key)

	_, err = cache.GetVersion(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, int32(3), inv.calls.Load())
}

func TestGetVersion_FailureNotCached(t *testing.T) {
	inv := &fakeInvoker{err: &runner.SpawnError{Path: "/nonexistent", Cause: fs.ErrNotExist}}
	cache := NewVersionCache(inv)
	s := NewLintSettings("/nonexistent", "/proj", "", false)

	_, err := cache.GetVersion(context.Background(), s)
	var unavailable *ToolUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "/nonexistent", unavailable.Path)
	var spawnErr *runner.SpawnError
	assert.ErrorAs(t, err, &spawnErr)

	_, ok := cache.Cached()
	assert.False(t, ok)

	_, err = cache.GetVersion(context.Background(), s)
	require.Error(t, err)
	assert.Equal(t, int32(2), inv.calls.Load(), "a failed query is retried")
}

func TestGetVersion_FailureKeepsPreviousEntry(t *testing.T) {
	inv := stubVersion("scss-lint 0.59.0")
	cache := NewVersionCache(inv)
	good := NewLintSettings("/good/scss-lint", "/proj", "", false)
	_, err := cache.GetVersion(context.Background(), good)
	require.NoError(t, err)

	inv.err = &runner.SpawnError{Path: "/bad", Cause: fs.ErrNotExist}
	_, err = cache.GetVersion(context.Background(), NewLintSettings("/bad", "/proj", "", false))
	require.Error(t, err)

	entry, ok := cache.Cached()
	require.True(t, ok)
	assert.Equal(t, good.Key(), entry.Key)
	assert.Equal(t, "scss-lint 0.59.0", entry.Version)
}

func TestGetVersion_FailureKinds(t *testing.T) {
	s := NewLintSettings("/bin/scss-lint", "/proj", "", false)
	tests := []struct {
		name  string
		inv   *fakeInvoker
		check func(t *testing.T, err error)
	}{
		{
			name: "non-zero exit",
			inv:  &fakeInvoker{result: &runner.Result{ExitCode: 70, Stderr: "boom\nstack"}},
			check: func(t *testing.T, err error) {
				var exitErr *ExitStatusError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, 70, exitErr.ExitCode)
				assert.Equal(t, "boom", exitErr.Stderr)
			},
		},
		{
			name:  "empty output",
			inv:   &fakeInvoker{result: &runner.Result{Stdout: "\n  \n"}},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNoOutput) },
		},
		{
			name: "timeout",
			inv:  &fakeInvoker{result: &runner.Result{TimedOut: true, ExitCode: -1}, err: &runner.TimeoutError{Path: "/bin/scss-lint", After: time.Second}},
			check: func(t *testing.T, err error) {
				var timeoutErr *runner.TimeoutError
				assert.ErrorAs(t, err, &timeoutErr)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewVersionCache(tt.inv)
			_, err := cache.GetVersion(context.Background(), s)
			var unavailable *ToolUnavailableError
			require.ErrorAs(t, err, &unavailable)
			tt.check(t, err)
			_, ok := cache.Cached()
			assert.False(t, ok)
		})
	}
}

func TestGetVersion_StderrFallback(t *testing.T) {
	inv := &fakeInvoker{result: &runner.Result{Stderr: "\nscss-lint 0.38.0\n"}}
	v, err := NewVersionCache(inv).GetVersion(context.Background(), NewLintSettings("/x", "/proj", "", false))
	require.NoError(t, err)
	assert.Equal(t, "scss-lint 0.38.0", v)
}

func TestGetVersion_EmptyExecutable(t *testing.T) {
	inv := stubVersion("scss-lint 0.59.0")
	_, err := NewVersionCache(inv).GetVersion(context.Background(), NewLintSettings("", "/proj", "", false))
	var unavailable *ToolUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.True(t, errors.Is(err, ErrEmptyExecutable))
	assert.Zero(t, inv.calls.Load())
}

func TestGetVersion_ConcurrentCallsShareInvocation(t *testing.T) {
	inv := stubVersion("scss-lint 0.59.0")
	inv.delay = 100 * time.Millisecond
	cache := NewVersionCache(inv)
	s := NewLintSettings("/usr/local/bin/scss-lint", "/proj", "", false)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = cache.GetVersion(context.Background(), s)
		}()
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "scss-lint 0.59.0", results[i])
	}
	assert.Equal(t, int32(1), inv.calls.Load())
}

func TestGetVersion_CanceledCallerDoesNotFailOthers(t *testing.T) {
	inv := stubVersion("scss-lint 0.59.0")
	inv.delay = 150 * time.Millisecond
	cache := NewVersionCache(inv)
	s := NewLintSettings("/usr/local/bin/scss-lint", "/proj", "", false)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	var wg sync.WaitGroup
	var firstErr, secondErr error
	var second string
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, firstErr = cache.GetVersion(firstCtx, s)
	}()
	go func() {
		defer wg.Done()
		time.Sleep(20 * time.Millisecond)
		second, secondErr = cache.GetVersion(context.Background(), s)
	}()
	time.AfterFunc(50*time.Millisecond, cancelFirst)
	wg.Wait()

	var unavailable *ToolUnavailableError
	require.ErrorAs(t, firstErr, &unavailable)
	assert.ErrorIs(t, firstErr, context.Canceled)

	require.NoError(t, secondErr)
	assert.Equal(t, "scss-lint 0.59.0", second)
	assert.Equal(t, int32(1), inv.calls.Load())

	entry, ok := cache.Cached()
	require.True(t, ok)
	assert.Equal(t, "scss-lint 0.59.0", entry.Version)
}

func TestGetVersion_CanceledContextFailsFast(t *testing.T) {
	inv := stubVersion("scss-lint 0.59.0")
	cache := NewVersionCache(inv)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cache.GetVersion(ctx, NewLintSettings("/x", "/proj", "", false))
	var unavailable *ToolUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), inv.calls.Load())
}

func TestInvalidate(t *testing.T) {
	inv := stubVersion("scss-lint 0.59.0")
	cache := NewVersionCache(inv)
	s := NewLintSettings("/x", "/proj", "", false)

	_, err := cache.GetVersion(context.Background(), s)
	require.NoError(t, err)
	cache.Invalidate()
	_, ok := cache.Cached()
	assert.False(t, ok)

	_, err = cache.GetVersion(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, int32(2), inv.calls.Load())
}
