package solar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlab/boostgen/internal/errors"
)

func TestSolveCurrentEndpoints(t *testing.T) {
	cell := DefaultCell()

	// At zero bias the cell delivers roughly its short-circuit current.
	iShort, err := cell.SolveCurrent(cell.GRef, cell.TRef, 0.012, 100, 0.001, nil)
	require.NoError(t, err)
	assert.InDelta(t, cell.IscRef, iShort, 0.05)

	// At open circuit the current collapses to roughly zero.
	iOpen, err := cell.SolveCurrent(cell.GRef, cell.TRef, 0.012, 100, cell.VocRef, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0, iOpen, 0.1)
}

func TestSolveCurrentMonotone(t *testing.T) {
	cell := DefaultCell()

	prev := math.Inf(1)
	for v := 0.001; v <= cell.VocRef; v += 0.02 {
		current, err := cell.SolveCurrent(cell.GRef, cell.TRef, 0.012, 100, v, nil)
		require.NoError(t, err, "v=%v", v)
		// The step search stops within its stagnation margin, so allow a
		// small upward wobble between adjacent points.
		assert.LessOrEqual(t, current, prev+0.01, "current must not rise with voltage at v=%v", v)
		prev = current
	}
}

func TestSolveCurrentSeeded(t *testing.T) {
	cell := DefaultCell()

	cold, err := cell.SolveCurrent(cell.GRef, cell.TRef, 0.012, 100, 0.5, nil)
	require.NoError(t, err)

	// Seeding with the converged value must reproduce it.
	seeded, err := cell.SolveCurrent(cell.GRef, cell.TRef, 0.012, 100, 0.5, &cold)
	require.NoError(t, err)
	assert.InDelta(t, cold, seeded, 2*cell.Step)
}

func TestSolveCurrentSeededConvergesFaster(t *testing.T) {
	cell := DefaultCell()

	// A cold start travels from zero up to the ~6 A plateau.
	cold, coldSteps, err := cell.solve(cell.GRef, cell.TRef, 0.012, 100, 0.5, nil)
	require.NoError(t, err)
	require.Greater(t, coldSteps, 100)

	// Seeding near the root leaves only the local settle.
	seed := cold - 5*cell.Step
	_, seededSteps, err := cell.solve(cell.GRef, cell.TRef, 0.012, 100, 0.5, &seed)
	require.NoError(t, err)
	assert.Less(t, seededSteps, coldSteps)
	assert.Less(t, seededSteps, 50)
}

func TestSolveCurrentMany(t *testing.T) {
	cell := DefaultCell()

	vs := []float64{0.1, 0.3, 0.5, 0.65}
	many, err := cell.SolveCurrentMany(cell.GRef, cell.TRef, 0.012, 100, vs, nil)
	require.NoError(t, err)
	require.Len(t, many, len(vs))

	for i, v := range vs {
		single, err := cell.SolveCurrent(cell.GRef, cell.TRef, 0.012, 100, v, nil)
		require.NoError(t, err)
		assert.InDelta(t, single, many[i], 2*cell.Step, "v=%v", v)
	}
}

func TestShortCircuitCurrentScalesWithIrradiance(t *testing.T) {
	cell := DefaultCell()

	full := cell.ShortCircuitCurrent(cell.GRef, cell.TRef)
	half := cell.ShortCircuitCurrent(cell.GRef/2, cell.TRef)
	assert.InDelta(t, full/2, half, 1e-9)
}

func TestArraySample(t *testing.T) {
	arr := NewArray(111, 0.012, 100)

	vs, is, err := arr.Sample()
	require.NoError(t, err)
	require.Len(t, vs, 60)
	require.Len(t, is, 60)

	// Voltages ascend across the string; first point sits near zero bias.
	assert.InDelta(t, 0.001*111, vs[0], 1e-9)
	assert.InDelta(t, 0.721*111, vs[len(vs)-1], 1e-9)
	for i := 1; i < len(vs); i++ {
		assert.Greater(t, vs[i], vs[i-1])
	}

	// First sample carries close to the short-circuit current.
	assert.InDelta(t, 6.15, is[0], 0.1)
}

func TestArraySampleRejectsBadInputs(t *testing.T) {
	tests := []struct {
		name string
		arr  *Array
	}{
		{name: "no cells", arr: NewArray(0, 0.012, 100)},
		{name: "non-positive shunt", arr: NewArray(111, 0.012, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.arr.Sample()
			require.Error(t, err)
			assert.Equal(t, errors.KindDomain, errors.KindOf(err))
		})
	}
}
