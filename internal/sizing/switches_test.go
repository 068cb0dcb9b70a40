package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlab/boostgen/internal/catalog"
	"github.com/voltlab/boostgen/internal/errors"
	"github.com/voltlab/boostgen/internal/opmap"
)

func TestSwitchRequirements(t *testing.T) {
	req := SwitchRequirements(134.4, 6.15, 400, 1.5, 0.01)

	assert.InDelta(t, 201.6, req.VDSMin, 1e-9)
	assert.InDelta(t, 9.225, req.IDMin, 1e-9)
	assert.InDelta(t, 6.0, req.PDMin, 1e-9)
	assert.InDelta(t, 4.0, req.PowerBudget, 1e-9)
}

func TestSwitchLossesReference(t *testing.T) {
	// 40 V in, 100 V out, 10 A, 50 kHz, 10 mOhm, 300 pF, 20 % ripple.
	loss, err := SwitchLosses(40, 10, 100, 50e3, 10e-3, 300e-12, 0.2)
	require.NoError(t, err)

	assert.InDelta(t, 1.637, loss.Conduction, 1e-3)
	assert.InDelta(t, 0.300, loss.Switching, 1e-6)
	assert.InDelta(t, 1.937, loss.Total, 1e-3)
}

func TestSwitchLossesRejectsBuck(t *testing.T) {
	_, err := SwitchLosses(100, 10, 40, 50e3, 10e-3, 300e-12, 0.2)
	require.Error(t, err)
	assert.Equal(t, errors.KindDomain, errors.KindOf(err))
}

func TestMaximizeFrequencyMonotoneInBudget(t *testing.T) {
	pt := opmap.Point{VI: 40, II: 10, VO: 100, Duty: 0.6}

	fLow, lossLow, err := MaximizeFrequency(pt, 10e-3, 300e-12, 2.5, 0.2)
	require.NoError(t, err)
	fHigh, lossHigh, err := MaximizeFrequency(pt, 10e-3, 300e-12, 5.0, 0.2)
	require.NoError(t, err)

	assert.Greater(t, fHigh, fLow)
	assert.LessOrEqual(t, lossLow.Total, 2.5)
	assert.LessOrEqual(t, lossHigh.Total, 5.0)
}

func TestMaximizeFrequencyInfeasibleBudget(t *testing.T) {
	pt := opmap.Point{VI: 40, II: 10, VO: 100, Duty: 0.6}

	// Conduction loss alone exceeds the budget regardless of frequency.
	_, _, err := MaximizeFrequency(pt, 10e-3, 300e-12, 0.5, 0.2)
	require.Error(t, err)
	assert.Equal(t, errors.KindInfeasible, errors.KindOf(err))

	// The diagnostic names the loss that broke the budget, not zero.
	assert.ErrorContains(t, err, "1.637")
}

func TestMaximizeFrequencyRejectsFloorOnlyBand(t *testing.T) {
	pt := opmap.Point{VI: 40, II: 10, VO: 100, Duty: 0.6}

	atFloor, err := SwitchLosses(pt.VI, pt.II, pt.VO, freqFloor, 10e-3, 300e-12, 0.2)
	require.NoError(t, err)
	oneStep, err := SwitchLosses(pt.VI, pt.II, pt.VO, freqFloor*freqGrowth, 10e-3, 300e-12, 0.2)
	require.NoError(t, err)
	require.Greater(t, oneStep.Total, atFloor.Total)

	// A budget that admits the floor but not one growth step above it
	// leaves no usable frequency band.
	budget := (atFloor.Total + oneStep.Total) / 2
	_, _, err = MaximizeFrequency(pt, 10e-3, 300e-12, budget, 0.2)
	require.Error(t, err)
	assert.Equal(t, errors.KindInfeasible, errors.KindOf(err))
}

func testSwitches() []catalog.Switch {
	return []catalog.Switch{
		{PartNumber: "SLOW", VDS: 250, ID: 40, PD: 150, RDSOn: 55e-3, COss: 340e-12, RJB: 0.9, RJC: 0.5, TJMax: 448.15},
		{PartNumber: "FAST", VDS: 250, ID: 64, PD: 300, RDSOn: 20e-3, COss: 300e-12, RJB: 0.7, RJC: 0.4, TJMax: 448.15},
		{PartNumber: "WEAK", VDS: 30, ID: 5, PD: 10, RDSOn: 5e-3, COss: 100e-12, RJB: 1.0, RJC: 0.6, TJMax: 448.15},
	}
}

func TestSelectSwitchPicksHighestFrequency(t *testing.T) {
	worst := opmap.Point{VI: 40, II: 10, VO: 100, Duty: 0.6}
	best := opmap.Point{VI: 60, II: 5, VO: 100, Duty: 0.4}
	req := SwitchRequirement{VDSMin: 150, IDMin: 9.2, PDMin: 6, PowerBudget: 8}

	sel, err := SelectSwitch(testSwitches(), req, worst, best, 0.2, 1e6, 298.15)
	require.NoError(t, err)

	// Lower FOM reaches a higher frequency inside the same budget.
	assert.Equal(t, "FAST", sel.Switch.PartNumber)
	assert.Greater(t, sel.Frequency, 0.0)
	assert.LessOrEqual(t, sel.Frequency, 1e6)
	assert.LessOrEqual(t, sel.WorstCase.Total, 8.0)
	assert.Less(t, sel.BestCase.Total, sel.WorstCase.Total)
	assert.Greater(t, sel.PadArea, 0.0)
}

func TestSelectSwitchRespectsFrequencyCap(t *testing.T) {
	worst := opmap.Point{VI: 40, II: 10, VO: 100, Duty: 0.6}
	best := opmap.Point{VI: 60, II: 5, VO: 100, Duty: 0.4}
	req := SwitchRequirement{VDSMin: 150, IDMin: 9.2, PDMin: 6, PowerBudget: 8}

	sel, err := SelectSwitch(testSwitches(), req, worst, best, 0.2, 25e3, 298.15)
	require.NoError(t, err)
	assert.Equal(t, 25e3, sel.Frequency)
}

func TestSelectSwitchInfeasibleRatings(t *testing.T) {
	worst := opmap.Point{VI: 40, II: 10, VO: 100, Duty: 0.6}
	best := worst

	// No catalog part tolerates 400 V drain-source.
	req := SwitchRequirement{VDSMin: 400, IDMin: 9.2, PDMin: 6, PowerBudget: 8}
	_, err := SelectSwitch(testSwitches(), req, worst, best, 0.2, 1e6, 298.15)
	require.Error(t, err)
	assert.Equal(t, errors.KindInfeasible, errors.KindOf(err))
}
