package adapter

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "avitrace.dev/pkg/avitrace/internal/model"
)

// StateStore persists the compliance lifecycle between CLI invocations.
type StateStore interface {
	// LoadState reads the persisted state. A store that was never written
	// yields an empty state, not an error.
	LoadState() (m.ComplianceState, error)

	// SaveState writes the state, replacing any previous version.
	SaveState(state m.ComplianceState) error
}

// YAMLStateStore keeps the compliance state in a single YAML file.
type YAMLStateStore struct {
	path m.Path
}

// NewYAMLStateStore constructs a store backed by the file at path.
func NewYAMLStateStore(path m.Path) *YAMLStateStore {
	return &YAMLStateStore{path: path}
}

// LoadState reads and decodes the state file.
func (s *YAMLStateStore) LoadState() (m.ComplianceState, error) {
	state := m.ComplianceState{
		DisabledSnapshots: map[m.ComplianceMode]m.ComplianceSnapshot{},
	}

	data, err := os.ReadFile(string(s.path))
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}

		return state, fmt.Errorf("read compliance state: %w", err)
	}

	if err := yaml.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("decode compliance state: %w", err)
	}

	if state.DisabledSnapshots == nil {
		state.DisabledSnapshots = map[m.ComplianceMode]m.ComplianceSnapshot{}
	}

	return state, nil
}

// SaveState encodes and writes the state file.
func (s *YAMLStateStore) SaveState(state m.ComplianceState) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode compliance state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(string(s.path)), 0o750); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	if err := os.WriteFile(string(s.path), data, 0o640); err != nil {
		return fmt.Errorf("write compliance state: %w", err)
	}

	return nil
}
