package sizing

import (
	"github.com/voltlab/boostgen/internal/errors"
)

// Board thermal network constants: copper spreading resistance scale
// (C*m^2/W per pad face), thermal resistance of one filled via bank
// normalizer, and the convection coupling weight between pad faces and
// ambient.
const (
	copperSpreadScale = 0.081
	viaBankResistance = 83.3
	padCoupling       = 10.0

	defaultViaCount = 100

	padAreaFloor  = 1e-6 // 1 mm^2
	padAreaGrowth = 1.05
	padAreaSteps  = 500
)

// JunctionToAmbient models the junction-to-ambient thermal resistance of a
// switch soldered to front and back copper pads (areas in m^2) joined by a
// via field. The board path is a two-face spreading network in series with
// the package's junction-to-case resistance.
func JunctionToAmbient(rJC, rJB, frontArea, backArea float64, vias int) float64 {
	a := copperSpreadScale / frontArea
	b := copperSpreadScale / backArea
	c := viaBankResistance/float64(vias) + rJB

	num := a*b*c + padCoupling*a*b + padCoupling*a*c
	denom := padCoupling*a + padCoupling*b + padCoupling*c + a*c + b*c

	return rJC + num/denom
}

// MinimumPadArea finds the smallest symmetric copper pad area (m^2) that
// holds the junction at or below tJMax while dissipating p watts into
// tAmbient. The network resistance is monotone decreasing in area, so a
// bounded geometric sweep from the floor suffices; an undissipatable
// budget is an infeasible selection.
func MinimumPadArea(tAmbient, tJMax, p, rJB, rJC float64, vias int) (float64, error) {
	if p <= 0 {
		return 0, errors.Domainf("dissipated power must be positive, got %v W", p).
			WithComponent("sizing").WithOperation("MinimumPadArea")
	}
	if tJMax <= tAmbient {
		return 0, errors.Domainf("junction limit %v K does not exceed ambient %v K", tJMax, tAmbient).
			WithComponent("sizing").WithOperation("MinimumPadArea")
	}

	required := (tJMax - tAmbient) / p

	area := padAreaFloor
	for step := 0; step < padAreaSteps; step++ {
		if JunctionToAmbient(rJC, rJB, area, area, vias) <= required {
			return area, nil
		}
		area *= padAreaGrowth
	}

	return 0, errors.Infeasiblef(
		"no pad area dissipates %0.2f W from %0.0f K junction to %0.0f K ambient", p, tJMax, tAmbient).
		WithComponent("sizing").WithOperation("MinimumPadArea")
}
