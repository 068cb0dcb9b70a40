// Package solar models a photovoltaic cell as a nonideal current source
// and recovers its load current from voltage by iterative solving of the
// single-diode equation.
package solar

import (
	"math"

	"github.com/voltlab/boostgen/internal/errors"
)

// Boltzmann constant (J/K) and elementary charge (C).
const (
	boltzmann        = 1.380649e-23
	elementaryCharge = 1.602176634e-19
)

// solveMaxSteps bounds the coordinate search. The step constants below are
// tuned for currents in the 0-10 A range, so a healthy solve stabilizes in
// a few thousand steps at most.
const solveMaxSteps = 200000

// Cell holds the reference parameters of a single photovoltaic cell and the
// tuning constants of the current solver.
type Cell struct {
	// Short-circuit current (A) and open-circuit voltage (V) at reference
	// conditions.
	IscRef float64
	VocRef float64
	// Reference irradiance (W/m^2) and temperature (K).
	GRef float64
	TRef float64
	// Temperature coefficients for Isc and Voc (1/K).
	TempCoeffIsc float64
	TempCoeffVoc float64
	// Diode ideality factor.
	Ideality float64
	// Solver travel step (A) and stagnation margin (A).
	Step   float64
	Margin float64
}

// DefaultCell returns the reference cell characterized at standard test
// conditions.
func DefaultCell() Cell {
	return Cell{
		IscRef:       6.15,
		VocRef:       0.721,
		GRef:         1000,
		TRef:         298.15,
		TempCoeffIsc: 0.005,
		TempCoeffVoc: -0.0022,
		Ideality:     1.0,
		Step:         0.0025,
		Margin:       0.0005,
	}
}

// ThermalVoltage returns kT/q for the given cell temperature (K).
func (c Cell) ThermalVoltage(t float64) float64 {
	return boltzmann * t / elementaryCharge
}

// ShortCircuitCurrent returns Isc (A) corrected for irradiance and
// temperature.
func (c Cell) ShortCircuitCurrent(g, t float64) float64 {
	return c.IscRef * (g / c.GRef) * (1 - c.TempCoeffIsc*(c.TRef-t))
}

// OpenCircuitVoltage returns Voc (V) corrected for irradiance and
// temperature.
func (c Cell) OpenCircuitVoltage(g, t float64) float64 {
	vt := c.ThermalVoltage(t)
	return c.VocRef*(1-c.TempCoeffVoc*(c.TRef-t)) + c.Ideality*vt*math.Log(g/c.GRef)
}

// SaturationCurrent returns the diode reverse saturation current I0 (A).
func (c Cell) SaturationCurrent(g, t float64) float64 {
	vt := c.ThermalVoltage(t)
	return c.ShortCircuitCurrent(g, t) / (math.Exp(c.OpenCircuitVoltage(g, t)/vt) - 1)
}

// residualTerms captures the fixed parts of the implicit I-V equation
//
//	I = Isc(Rsh+Rs)/Rsh - I0(exp((V+I*Rs)/Vt)-1) - (V+I*Rs)/Rsh
//
// so the solver only re-evaluates the current-dependent terms per step.
type residualTerms struct {
	vt, i0, term1, rs, rsh float64
}

func (c Cell) terms(g, t, rs, rsh float64) residualTerms {
	return residualTerms{
		vt:    c.ThermalVoltage(t),
		i0:    c.SaturationCurrent(g, t),
		term1: c.ShortCircuitCurrent(g, t) * (rsh + rs) / rsh,
		rs:    rs,
		rsh:   rsh,
	}
}

// residual returns the L1 distance between the predicted current and the
// right-hand side of the implicit equation.
func (rt residualTerms) residual(v, prediction float64) float64 {
	right := rt.term1 -
		rt.i0*(math.Exp((v+prediction*rt.rs)/rt.vt)-1) -
		(v+prediction*rt.rs)/rt.rsh
	return math.Abs(right - prediction)
}

// SolveCurrent recovers the cell current (A) for a load voltage v (V) under
// irradiance g (W/m^2) and temperature t (K), with series resistance rs and
// shunt resistance rsh (Ohm).
//
// The solver is an adaptive-step coordinate search: step in a fixed
// increment, keep going while the residual shrinks, reverse when it grows,
// stop when it stagnates within the margin. A seed (usually the solution of
// a neighboring voltage point) chooses the starting prediction and travel
// direction. The search is capped; exceeding the cap returns a convergence
// error.
func (c Cell) SolveCurrent(g, t, rs, rsh, v float64, seed *float64) (float64, error) {
	current, _, err := c.solve(g, t, rs, rsh, v, seed)
	return current, err
}

// solve runs the coordinate search and also reports how many steps the
// prediction traveled before stabilizing.
func (c Cell) solve(g, t, rs, rsh, v float64, seed *float64) (float64, int, error) {
	rt := c.terms(g, t, rs, rsh)

	prediction := 0.0
	travel := c.Step
	if seed != nil {
		prediction = *seed
	}
	loss := rt.residual(v, prediction)

	// With a seed, probe one step forward to pick the travel direction.
	if seed != nil {
		prediction += travel
		probeLoss := rt.residual(v, prediction)
		if loss < probeLoss {
			prediction -= travel
			travel = -travel
		} else {
			loss = probeLoss
		}
	}

	for step := 0; step < solveMaxSteps; step++ {
		prediction += travel
		newLoss := rt.residual(v, prediction)

		switch {
		case newLoss+c.Margin < loss:
			// Right direction, keep going.
			loss = newLoss
		case newLoss > loss+c.Margin:
			// Wrong direction, back up.
			travel = -travel
		default:
			// Stagnant within margin: stable.
			return prediction, step, nil
		}
	}

	return 0, solveMaxSteps, errors.Convergencef(
		"cell current did not stabilize within %d steps at v=%.4f", solveMaxSteps, v).
		WithComponent("solar").WithOperation("SolveCurrent")
}

// SolveCurrentMany solves every voltage in vs independently with per-point
// step state, advancing all unstable points each pass. The convergence
// criterion is element-wise identical to SolveCurrent. seeds may be nil.
func (c Cell) SolveCurrentMany(g, t, rs, rsh float64, vs []float64, seeds []float64) ([]float64, error) {
	rt := c.terms(g, t, rs, rsh)
	n := len(vs)

	predictions := make([]float64, n)
	travels := make([]float64, n)
	losses := make([]float64, n)
	for i := range vs {
		travels[i] = c.Step
		if seeds != nil {
			predictions[i] = seeds[i]
		}
		losses[i] = rt.residual(vs[i], predictions[i])
	}

	if seeds != nil {
		for i := range vs {
			predictions[i] += travels[i]
			probeLoss := rt.residual(vs[i], predictions[i])
			if losses[i] < probeLoss {
				predictions[i] -= travels[i]
				travels[i] = -travels[i]
			} else {
				losses[i] = probeLoss
			}
		}
	}

	for step := 0; step < solveMaxSteps; step++ {
		stable := true
		for i := range vs {
			if travels[i] == 0 {
				continue
			}
			predictions[i] += travels[i]
			newLoss := rt.residual(vs[i], predictions[i])

			switch {
			case newLoss+c.Margin < losses[i]:
				losses[i] = newLoss
				stable = false
			case newLoss > losses[i]+c.Margin:
				travels[i] = -travels[i]
				stable = false
			default:
				travels[i] = 0
			}
		}
		if stable {
			return predictions, nil
		}
	}

	return nil, errors.Convergencef(
		"cell currents did not stabilize within %d steps for %d points", solveMaxSteps, n).
		WithComponent("solar").WithOperation("SolveCurrentMany")
}
