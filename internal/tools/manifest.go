package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	manifestDirName  = "scsslint"
	manifestFileName = "manifest.json"
	// ManifestTTL bounds how long a recorded probe is trusted.
	ManifestTTL = 24 * time.Hour
)

// ManifestEntry records the version an executable reported, together with
// the file fingerprint it was read from.
type ManifestEntry struct {
	Path      string    `json:"path"`
	Version   string    `json:"version"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
	CheckedAt time.Time `json:"checked_at"`
}

// Manifest is the on-disk record of candidate probes, keyed by absolute
// executable path.
type Manifest struct {
	Entries map[string]ManifestEntry `json:"entries"`
}

// ManifestStore persists probe results across runs so listing candidates
// does not restart every scss-lint install each time. An entry is used only
// while the executable's size and modification time are unchanged.
type ManifestStore struct {
	path string
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	manifest Manifest
	loaded   bool
	dirty    bool
}

// DefaultManifestPath returns <UserCacheDir>/scsslint/manifest.json.
func DefaultManifestPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("detect user cache dir: %w", err)
	}
	return filepath.Join(dir, manifestDirName, manifestFileName), nil
}

// NewManifestStore creates a store backed by path. A non-positive ttl uses
// ManifestTTL.
func NewManifestStore(path string, ttl time.Duration) *ManifestStore {
	if ttl <= 0 {
		ttl = ManifestTTL
	}
	return &ManifestStore{path: path, ttl: ttl, now: time.Now}
}

// Path returns the backing file.
func (s *ManifestStore) Path() string { return s.path }

// Lookup returns the recorded version for exe when the file still matches
// the recorded fingerprint and the entry has not expired.
func (s *ManifestStore) Lookup(exe string) (string, bool) {
	info, err := os.Stat(exe)
	if err != nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	entry, ok := s.manifest.Entries[exe]
	if !ok {
		return "", false
	}
	if entry.Size != info.Size() || !entry.ModTime.Equal(info.ModTime()) {
		return "", false
	}
	if s.now().Sub(entry.CheckedAt) > s.ttl {
		return "", false
	}
	return entry.Version, true
}

// Record stores a successful probe. Failures are never recorded.
func (s *ManifestStore) Record(exe, version string) {
	info, err := os.Stat(exe)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	s.manifest.Entries[exe] = ManifestEntry{
		Path:      exe,
		Version:   version,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		CheckedAt: s.now(),
	}
	s.dirty = true
}

// Forget drops every recorded probe.
func (s *ManifestStore) Forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest = Manifest{Entries: map[string]ManifestEntry{}}
	s.loaded = true
	s.dirty = true
}

// Save writes the manifest if anything changed since it was loaded.
func (s *ManifestStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	if err := saveManifest(s.path, s.manifest); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// loadLocked reads the manifest once. A missing or corrupt file starts an
// empty manifest.
func (s *ManifestStore) loadLocked() {
	if s.loaded {
		return
	}
	s.loaded = true
	m, err := loadManifest(s.path)
	if err != nil {
		m = Manifest{Entries: map[string]ManifestEntry{}}
	}
	s.manifest = m
}

func loadManifest(path string) (Manifest, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Manifest{Entries: map[string]ManifestEntry{}}, nil
		}
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(contents, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("unmarshal manifest: %w", err)
	}
	if manifest.Entries == nil {
		manifest.Entries = map[string]ManifestEntry{}
	}
	return manifest, nil
}

func saveManifest(path string, m Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare manifest directory: %w", err)
	}

	buf, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "manifest-*.json")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("write manifest temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close manifest temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}
