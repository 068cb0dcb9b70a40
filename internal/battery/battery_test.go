package battery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlab/boostgen/internal/errors"
)

func TestBankSample(t *testing.T) {
	bank := NewBank(32)

	vs, is, err := bank.Sample()
	require.NoError(t, err)
	require.Len(t, vs, 50)
	require.Len(t, is, 50)

	assert.InDelta(t, 32*2.5, vs[0], 1e-9)
	assert.InDelta(t, 32*4.2, vs[len(vs)-1], 1e-9)

	// Infinite-capacity cells accept the full charge current everywhere.
	for i, current := range is {
		assert.Equal(t, 10.0, current, "sample %d", i)
	}
}

func TestBankSampleRejectsBadInputs(t *testing.T) {
	tests := []struct {
		name string
		bank *Bank
	}{
		{name: "no cells", bank: NewBank(0)},
		{name: "empty window", bank: &Bank{NumCells: 4, CellVMin: 4.2, CellVMax: 4.2, ChargeCurrent: 10, Samples: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.bank.Sample()
			require.Error(t, err)
			assert.Equal(t, errors.KindDomain, errors.KindOf(err))
		})
	}
}
