package settings

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"scsslint/internal/logx"
)

// Watcher reloads settings when the settings file changes on disk and
// refreshes the service when the configured executable or config file does.
type Watcher struct {
	store    *Store
	service  *Service
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	done     chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	dirs    map[string]struct{}
	pending bool
	reload  bool
	timer   *time.Timer
}

// NewWatcher creates a Watcher. Call Start to begin watching.
func NewWatcher(store *Store, service *Service, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		store:    store,
		service:  service,
		watcher:  fw,
		debounce: debounce,
		logger:   logx.Or(logger).With("component", "settings_watcher"),
		done:     make(chan struct{}),
		dirs:     make(map[string]struct{}),
	}, nil
}

// Start watches the relevant directories until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(w.store.Path()), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	if err := w.syncDirs(); err != nil {
		return err
	}
	go w.loop(ctx)
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.watcher.Close()
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
}

// watchedFiles lists the files whose changes matter right now.
func (w *Watcher) watchedFiles() map[string]bool {
	ls := w.service.Settings().LintSettings(w.service.Root())
	files := map[string]bool{filepath.Clean(w.store.Path()): true}
	if p := ls.ExecutablePath(); p != "" {
		files[filepath.Clean(p)] = false
	}
	if p := ls.ConfigPath(); p != "" {
		files[filepath.Clean(p)] = false
	}
	return files
}

// syncDirs adds watches for the parent directory of every watched file.
// Directories that do not exist yet are skipped.
func (w *Watcher) syncDirs() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for file := range w.watchedFiles() {
		dir := filepath.Dir(file)
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			if filepath.Clean(file) == filepath.Clean(w.store.Path()) {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			w.logger.Debug("cannot watch directory", "dir", dir, "error", err)
			continue
		}
		w.dirs[dir] = struct{}{}
	}
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	isSettings, ok := w.watchedFiles()[filepath.Clean(event.Name)]
	if !ok {
		return
	}
	// chmod matters for the executable only.
	if isSettings && event.Op == fsnotify.Chmod {
		return
	}
	w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
	w.schedule(isSettings)
}

func (w *Watcher) schedule(reload bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = true
	w.reload = w.reload || reload
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if !w.pending {
		w.mu.Unlock()
		return
	}
	reload := w.reload
	w.pending, w.reload = false, false
	w.mu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}

	if reload {
		next, err := w.store.Load()
		if err != nil {
			w.logger.Warn("reload settings", "error", err)
			return
		}
		w.service.Replace(next)
		if err := w.syncDirs(); err != nil {
			w.logger.Warn("update watches", "error", err)
		}
		return
	}
	w.service.Refresh()
}
