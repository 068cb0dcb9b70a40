// Package store persists design state as JSON between iterations so a run
// can be inspected while in flight and after the process exits.
package store

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/voltlab/boostgen/internal/design"
	"github.com/voltlab/boostgen/internal/errors"
)

// floatScale fixes serialized floats at nine decimal places so repeated
// runs produce byte-identical files for identical designs.
const floatScale = 1e9

const stateFile = "design_state.json"

// Store writes the design state to a single JSON file in the output
// directory, atomically via rename.
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a store rooted at dir.
func New(dir string) *Store {
	return &Store{path: filepath.Join(dir, stateFile)}
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// Save serializes the state with rounded floats and replaces the state
// file.
func (s *Store) Save(state *design.DesignState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "encoding design state").
			WithComponent("store").WithOperation("Save")
	}

	var tree interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return errors.Wrap(err, "re-reading design state").
			WithComponent("store").WithOperation("Save")
	}
	rounded, err := json.MarshalIndent(roundFloats(tree), "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding rounded design state").
			WithComponent("store").WithOperation("Save")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, rounded, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", tmp).
			WithComponent("store").WithOperation("Save")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrapf(err, "replacing %s", s.path).
			WithComponent("store").WithOperation("Save")
	}
	return nil
}

// Load reads the persisted state back. A missing file returns os.ErrNotExist
// through the wrap chain.
func (s *Store) Load() (*design.DesignState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", s.path).
			WithComponent("store").WithOperation("Load")
	}

	var state design.DesignState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", s.path).
			WithComponent("store").WithOperation("Load")
	}
	return &state, nil
}

// roundFloats rounds every numeric leaf of a decoded JSON tree in place.
func roundFloats(v interface{}) interface{} {
	switch t := v.(type) {
	case float64:
		return math.Round(t*floatScale) / floatScale
	case map[string]interface{}:
		for k, e := range t {
			t[k] = roundFloats(e)
		}
		return t
	case []interface{}:
		for i, e := range t {
			t[i] = roundFloats(e)
		}
		return t
	default:
		return v
	}
}
