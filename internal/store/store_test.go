package store

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlab/boostgen/internal/design"
	"github.com/voltlab/boostgen/internal/opmap"
)

func testState() *design.DesignState {
	return &design.DesignState{
		Phase:     design.PhaseIterating,
		Iteration: 3,
		UpdatedAt: time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC),
		Bounds: opmap.Bounds{
			VI: opmap.Range{Min: 10, Max: 80.123456789123},
		},
		PowerBudget: 4.000000000999,
		BestLoss:    7.25,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())

	require.NoError(t, s.Save(testState()))

	got, err := s.Load()
	require.NoError(t, err)

	assert.Equal(t, design.PhaseIterating, got.Phase)
	assert.Equal(t, 3, got.Iteration)
	assert.Equal(t, 7.25, got.BestLoss)
}

func TestSaveRoundsFloats(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Save(testState()))

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	var tree map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &tree))

	// Nine decimal places survive, the tenth is rounded away.
	assert.Equal(t, 80.123456789, tree["bounds"].(map[string]interface{})["vi"].(map[string]interface{})["max"])
	assert.Equal(t, 4.000000001, tree["power_budget_w"])
}

func TestSaveOverwrites(t *testing.T) {
	s := New(t.TempDir())

	first := testState()
	require.NoError(t, s.Save(first))

	second := testState()
	second.Iteration = 4
	require.NoError(t, s.Save(second))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 4, got.Iteration)
}

func TestLoadMissingFile(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
