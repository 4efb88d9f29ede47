package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// ViewState is the remembered position of the history view between runs.
type ViewState struct {
	// Database is the store the position refers to.
	Database string `yaml:"database,omitempty"`
	// AnchorID is the message id at the top of the viewport.
	AnchorID int64 `yaml:"anchor_id,omitempty"`
	// AnchorOffset is how far the viewport top sits below the anchor's top.
	AnchorOffset int `yaml:"anchor_offset,omitempty"`
	// UpdatedAt is when the state was last saved.
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// IsEmpty returns true if no position is remembered.
func (s *ViewState) IsEmpty() bool {
	return s.AnchorID == 0
}

// Matches reports whether the state belongs to the given database path.
func (s *ViewState) Matches(database string) bool {
	return !s.IsEmpty() && s.Database == database
}

// SetAnchor records the top-of-viewport anchor.
func (s *ViewState) SetAnchor(database string, id int64, offset int) {
	s.Database = database
	s.AnchorID = id
	s.AnchorOffset = offset
	s.UpdatedAt = time.Now()
}

// StateStore manages loading and saving view state.
type StateStore struct {
	path string
	mu   sync.RWMutex
}

// NewStateStore creates a new state store.
// If path is empty, uses the default path (~/.config/scrollback/state.yaml).
func NewStateStore(path string) *StateStore {
	if path == "" {
		homeDir, _ := os.UserHomeDir()
		path = filepath.Join(homeDir, ".config", "scrollback", "state.yaml")
	}
	return &StateStore{path: path}
}

// StateStoreFor returns the state store inside the configured config directory.
func StateStoreFor(cfg *Config) *StateStore {
	return NewStateStore(filepath.Join(cfg.Global.ConfigDir, "state.yaml"))
}

// Path returns the state file path.
func (s *StateStore) Path() string {
	return s.path
}

// Load reads the state from disk.
// Returns an empty state if the file doesn't exist.
func (s *StateStore) Load() (*ViewState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := &ViewState{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if err := yaml.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	return state, nil
}

// Save writes the state to disk.
func (s *StateStore) Save(state *ViewState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// Clear removes the state file.
func (s *StateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}
