package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlab/boostgen/internal/errors"
)

func TestJunctionToAmbientShrinksWithArea(t *testing.T) {
	prev := JunctionToAmbient(0.5, 0.9, 1e-6, 1e-6, 100)
	for _, area := range []float64{1e-5, 1e-4, 1e-3} {
		r := JunctionToAmbient(0.5, 0.9, area, area, 100)
		assert.Less(t, r, prev, "area=%v", area)
		prev = r
	}

	// The junction-to-case resistance is an irreducible floor.
	assert.Greater(t, prev, 0.5)
}

func TestJunctionToAmbientMoreViasHelp(t *testing.T) {
	few := JunctionToAmbient(0.5, 0.9, 1e-4, 1e-4, 10)
	many := JunctionToAmbient(0.5, 0.9, 1e-4, 1e-4, 400)
	assert.Less(t, many, few)
}

func TestMinimumPadArea(t *testing.T) {
	area, err := MinimumPadArea(298.15, 448.15, 8, 0.9, 0.5, 100)
	require.NoError(t, err)
	assert.Greater(t, area, 0.0)

	// The returned area must actually satisfy the temperature rise.
	rise := JunctionToAmbient(0.5, 0.9, area, area, 100) * 8
	assert.LessOrEqual(t, rise, 448.15-298.15)
}

func TestMinimumPadAreaErrors(t *testing.T) {
	_, err := MinimumPadArea(298.15, 448.15, 0, 0.9, 0.5, 100)
	require.Error(t, err)
	assert.Equal(t, errors.KindDomain, errors.KindOf(err))

	_, err = MinimumPadArea(448.15, 298.15, 8, 0.9, 0.5, 100)
	require.Error(t, err)
	assert.Equal(t, errors.KindDomain, errors.KindOf(err))
}
