package settings

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"scsslint/internal/logx"
	"scsslint/internal/tools"
)

// Status summarises a validation Result.
type Status string

const (
	// StatusDisabled means the plugin is off and nothing was checked.
	StatusDisabled Status = "disabled"
	// StatusInvalid means at least one field failed validation.
	StatusInvalid Status = "invalid"
	// StatusUnavailable means the fields are valid but no version could be read.
	StatusUnavailable Status = "unavailable"
	// StatusValid means the fields are valid and the version is known.
	StatusValid Status = "valid"
)

// FieldError is a validation message attached to one settings field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	FixIt   string `json:"fix_it,omitempty"`
}

// Result is the derived state of a Settings value.
type Result struct {
	Settings     Settings     `json:"settings"`
	Status       Status       `json:"status"`
	Errors       []FieldError `json:"errors,omitempty"`
	Version      string       `json:"version,omitempty"`
	VersionError string       `json:"version_error,omitempty"`
}

// Valid reports whether every field validated and the version is known.
func (r Result) Valid() bool { return r.Status == StatusValid }

// SettingsObserver is notified after each asynchronous re-validation.
type SettingsObserver interface {
	OnValidated(Result)
}

// ObserverFunc adapts a function to SettingsObserver.
type ObserverFunc func(Result)

func (f ObserverFunc) OnValidated(r Result) { f(r) }

// Messages shown for invalid fields.
const (
	msgInvalidExecutable = "Path to scss-lint exe is invalid"
	msgInvalidConfig     = "Path to scss-lint config is invalid"
)

// DefaultDebounce is the delay between the last edit and re-validation.
const DefaultDebounce = 250 * time.Millisecond

// Service holds one workspace's settings, validates edits and notifies
// observers. It is safe for concurrent use.
type Service struct {
	root     string
	cache    *tools.VersionCache
	locator  *tools.Locator
	debounce time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	current   Settings
	observers map[int]SettingsObserver
	nextID    int
	timer     *time.Timer
	gen       uint64
	ctx       context.Context
	cancel    context.CancelFunc
	closed    bool
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithDebounce sets the re-validation delay.
func WithDebounce(d time.Duration) ServiceOption {
	return func(s *Service) { s.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a Service for the workspace at root.
func NewService(root string, initial Settings, cache *tools.VersionCache, locator *tools.Locator, opts ...ServiceOption) *Service {
	s := &Service{
		root:      root,
		cache:     cache,
		locator:   locator,
		debounce:  DefaultDebounce,
		current:   initial,
		observers: make(map[int]SettingsObserver),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.logger = logx.Or(s.logger).With("component", "settings", "workspace", root)
	return s
}

// Root returns the workspace root.
func (s *Service) Root() string { return s.root }

// Settings returns the current settings.
func (s *Service) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers o and returns a function that removes it.
func (s *Service) Subscribe(o SettingsObserver) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = o
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// SetExecutable updates the executable path, returns its immediate field
// errors and schedules a full re-validation.
func (s *Service) SetExecutable(path string) []FieldError {
	s.update(func(st *Settings) { st.ScssLintExecutable = path })
	return s.fieldErrors(s.Settings(), false)
}

// SetConfigFile updates the config path ("" selects search mode), returns
// its immediate field errors and schedules a full re-validation.
func (s *Service) SetConfigFile(path string) []FieldError {
	s.update(func(st *Settings) { st.ScssLintConfigFile = path })
	return s.fieldErrors(s.Settings(), false)
}

// SetPluginEnabled toggles the plugin and schedules a re-validation.
func (s *Service) SetPluginEnabled(enabled bool) {
	s.update(func(st *Settings) { st.PluginEnabled = enabled })
}

// SetTreatAllIssuesAsWarnings toggles severity downgrading.
func (s *Service) SetTreatAllIssuesAsWarnings(v bool) {
	s.update(func(st *Settings) { st.TreatAllIssuesAsWarnings = v })
}

// Replace swaps in new settings, for example after the file changed on disk.
// Nothing is scheduled when the value is unchanged.
func (s *Service) Replace(next Settings) {
	s.mu.Lock()
	if s.current.Equal(next) {
		s.mu.Unlock()
		return
	}
	s.current = next
	s.mu.Unlock()
	s.Revalidate()
}

func (s *Service) update(fn func(*Settings)) {
	s.mu.Lock()
	fn(&s.current)
	s.mu.Unlock()
	s.Revalidate()
}

// Revalidate schedules an asynchronous validation after the debounce delay.
// A later call supersedes a pending one; only the latest run notifies
// observers.
func (s *Service) Revalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.run(gen) })
}

func (s *Service) run(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.mu.Unlock()

	// A superseded run is left to finish: it may share its version query
	// with the newer run.
	res := s.Validate(ctx)

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug("discarding stale validation")
		return
	}
	observers := make([]SettingsObserver, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.mu.Unlock()

	for _, o := range observers {
		o.OnValidated(res)
	}
}

// Validate checks the current settings synchronously. The version is only
// queried when every field is valid.
func (s *Service) Validate(ctx context.Context) Result {
	current := s.Settings()
	res := Result{Settings: current}
	if !current.PluginEnabled {
		res.Status = StatusDisabled
		return res
	}

	res.Errors = s.fieldErrors(current, true)
	if len(res.Errors) > 0 {
		res.Status = StatusInvalid
		return res
	}

	version, err := s.cache.GetVersion(ctx, current.LintSettings(s.root))
	if err != nil {
		res.Status = StatusUnavailable
		res.VersionError = err.Error()
		var unavailable *tools.ToolUnavailableError
		if !errors.As(err, &unavailable) {
			s.logger.Warn("version query failed", "error", err)
		}
		return res
	}
	res.Version = version
	res.Status = StatusValid
	return res
}

// fieldErrors validates each path. withFixIt searches for suggestions, which
// touches the filesystem beyond the configured paths.
func (s *Service) fieldErrors(current Settings, withFixIt bool) []FieldError {
	var errs []FieldError
	if tools.CheckExecutableIn(s.root, current.ScssLintExecutable) != nil {
		fe := FieldError{Field: tools.FieldExecutable, Message: msgInvalidExecutable}
		if withFixIt {
			fe.FixIt = fixIt(s.ExecutableSuggestions())
		}
		errs = append(errs, fe)
	}
	if tools.CheckConfigIn(s.root, current.ScssLintConfigFile) != nil {
		fe := FieldError{Field: tools.FieldConfig, Message: msgInvalidConfig}
		if withFixIt {
			fe.FixIt = fixIt(s.ConfigSuggestions())
		}
		errs = append(errs, fe)
	}
	return errs
}

func fixIt(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}
	return "Fix it: use " + suggestions[0]
}

// ExecutableSuggestions lists executable candidates. It searches on every
// call.
func (s *Service) ExecutableSuggestions() []string {
	if s.locator == nil {
		return nil
	}
	return s.locator.FindExecutableCandidates()
}

// ConfigSuggestions lists config files found in the workspace.
func (s *Service) ConfigSuggestions() []string {
	if s.locator == nil {
		return nil
	}
	return s.locator.FindConfigCandidates(s.root)
}

// Close cancels pending and running validations. Observers are not called
// afterwards.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.cancel()
}

// Refresh drops the cached version and schedules a re-validation. Use it when
// the executable may have been replaced in place.
func (s *Service) Refresh() {
	s.cache.Invalidate()
	s.Revalidate()
}
