// Package battery models the converter's output sink as a series string of
// battery cells with a flat maximum charge current.
package battery

import (
	"github.com/voltlab/boostgen/internal/errors"
)

// Bank is a series battery string. The infinite-capacity cell model accepts
// its maximum charge current at any state of charge, so the I-V curve is a
// constant-current line across the cell voltage window.
type Bank struct {
	NumCells int
	// Per-cell voltage window (V).
	CellVMin float64
	CellVMax float64
	// Maximum charge current (A).
	ChargeCurrent float64
	// Number of I-V samples across the voltage window.
	Samples int
}

// NewBank returns a bank with a standard Li-ion cell window and charge
// limit.
func NewBank(numCells int) *Bank {
	return &Bank{
		NumCells:      numCells,
		CellVMin:      2.5,
		CellVMax:      4.2,
		ChargeCurrent: 10.0,
		Samples:       50,
	}
}

// Sample returns paired (voltage, current) samples covering the bank's
// charge window.
func (b *Bank) Sample() ([]float64, []float64, error) {
	if b.NumCells <= 0 {
		return nil, nil, errors.Domainf("bank must have at least one cell, got %d", b.NumCells).
			WithComponent("battery").WithOperation("Sample")
	}
	if b.CellVMax <= b.CellVMin {
		return nil, nil, errors.Domainf("cell voltage window [%v, %v] is empty", b.CellVMin, b.CellVMax).
			WithComponent("battery").WithOperation("Sample")
	}

	n := b.Samples
	if n < 2 {
		n = 50
	}

	vs := make([]float64, n)
	is := make([]float64, n)
	for i := 0; i < n; i++ {
		vCell := b.CellVMin + (b.CellVMax-b.CellVMin)*float64(i)/float64(n-1)
		vs[i] = vCell * float64(b.NumCells)
		is[i] = b.ChargeCurrent
	}

	return vs, is, nil
}
