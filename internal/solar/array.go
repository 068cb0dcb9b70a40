package solar

import (
	"github.com/voltlab/boostgen/internal/errors"
)

// Array is a series string of identical cells acting as the converter's
// input source.
type Array struct {
	Cell     Cell
	NumCells int
	// Series and shunt resistance of one cell (Ohm).
	RSeries float64
	RShunt  float64
	// Operating conditions: irradiance (W/m^2) and temperature (K).
	Irradiance  float64
	Temperature float64
	// Number of I-V samples across the cell voltage range.
	Samples int
}

// NewArray returns an array at standard test conditions.
func NewArray(numCells int, rSeries, rShunt float64) *Array {
	cell := DefaultCell()
	return &Array{
		Cell:        cell,
		NumCells:    numCells,
		RSeries:     rSeries,
		RShunt:      rShunt,
		Irradiance:  cell.GRef,
		Temperature: cell.TRef,
		Samples:     60,
	}
}

// Sample returns paired (voltage, current) samples covering the array's
// operating range. Cell voltages span just above zero to the reference
// open-circuit voltage; array voltage is the cell voltage scaled by the
// string length. Each solve is seeded with the previous point's current,
// walking down the I-V curve.
func (a *Array) Sample() ([]float64, []float64, error) {
	if a.NumCells <= 0 {
		return nil, nil, errors.Domainf("array must have at least one cell, got %d", a.NumCells).
			WithComponent("solar").WithOperation("Sample")
	}
	if a.RShunt <= 0 {
		return nil, nil, errors.Domainf("shunt resistance must be positive, got %v", a.RShunt).
			WithComponent("solar").WithOperation("Sample")
	}

	n := a.Samples
	if n < 2 {
		n = 60
	}

	vLo, vHi := 0.001, a.Cell.VocRef
	vs := make([]float64, n)
	is := make([]float64, n)

	var seed *float64
	for i := 0; i < n; i++ {
		vCell := vLo + (vHi-vLo)*float64(i)/float64(n-1)
		current, err := a.Cell.SolveCurrent(a.Irradiance, a.Temperature, a.RSeries, a.RShunt, vCell, seed)
		if err != nil {
			return nil, nil, err
		}
		vs[i] = vCell * float64(a.NumCells)
		is[i] = current
		s := current
		seed = &s
	}

	return vs, is, nil
}
