package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"stacked.dev/st/internal/utils"
)

// State files live in .git/st so they are never committed
const (
	StateDirName = "st"
	ForestFile   = "forest.json"
	PlanFile     = "plan.json"
	LockFile     = "lock"
)

// ErrNotInitialized is returned when st has not been initialized in the repository
var ErrNotInitialized = errors.New("st is not initialized in this repository, run `st init`")

// StateDir returns the directory holding st's files for the given git dir
func StateDir(gitDir string) string {
	return filepath.Join(gitDir, StateDirName)
}

// Store holds the current forest and replaces it as a whole on every change.
// Readers always see a complete, validated snapshot.
type Store struct {
	mu      sync.Mutex
	path    string
	current *Forest
}

// OpenStore loads forest.json from dir. A missing file yields an
// uninitialized store.
func OpenStore(dir string) (*Store, error) {
	s := &Store{path: filepath.Join(dir, ForestFile)}
	forest, err := s.load()
	if err != nil {
		return nil, err
	}
	s.current = forest
	return s, nil
}

// Reload replaces the in-memory forest with the one on disk. A memory store
// has nothing to reload.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	forest, err := s.load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = forest
	return nil
}

func (s *Store) load() (*Forest, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var forest Forest
	if err := json.Unmarshal(data, &forest); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if forest.Branches == nil {
		forest.Branches = make(map[string]*Branch)
	}
	if forest.Archive == nil {
		forest.Archive = make(map[string]*RemoteLink)
	}
	if err := forest.Validate(); err != nil {
		return nil, fmt.Errorf("corrupt %s: %w", s.path, err)
	}
	return &forest, nil
}

// NewMemoryStore returns a store that never touches disk
func NewMemoryStore(forest *Forest) *Store {
	return &Store{current: forest}
}

// Initialized reports whether a forest exists
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Snapshot returns a private copy of the current forest
func (s *Store) Snapshot() (*Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNotInitialized
	}
	return s.current.Clone(), nil
}

// Init creates a fresh forest with the given trunks, replacing any existing one
func (s *Store) Init(trunks ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swap(NewForest(trunks...))
}

// Update applies fn to a copy of the current forest. The copy replaces the
// current forest only if fn succeeds, the result validates and it was
// persisted. On any error the store is left exactly as it was.
func (s *Store) Update(fn func(*Forest) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNotInitialized
	}

	next := s.current.Clone()
	if err := fn(next); err != nil {
		return err
	}
	return s.swap(next)
}

// Replace installs forest as the current state, e.g. to restore a snapshot
func (s *Store) Replace(forest *Forest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swap(forest.Clone())
}

func (s *Store) swap(next *Forest) error {
	if err := next.Validate(); err != nil {
		return err
	}
	if s.path != "" {
		data, err := json.MarshalIndent(next, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode forest: %w", err)
		}
		if err := utils.WriteFileAtomic(s.path, data, 0o644); err != nil {
			return err
		}
	}
	s.current = next
	return nil
}
