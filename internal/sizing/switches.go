// Package sizing derives component requirements from the operating-point
// map and searches the part catalogs for switches, capacitor banks, and
// inductors that satisfy them at minimum predicted loss.
package sizing

import (
	"math"

	"github.com/voltlab/boostgen/internal/catalog"
	"github.com/voltlab/boostgen/internal/errors"
	"github.com/voltlab/boostgen/internal/opmap"
)

// Frequency search constants: geometric sweep from the floor until the
// predicted loss exceeds the budget. 1.01^4000 reaches ~2e17x the floor, so
// the cap only triggers on a degenerate loss model.
const (
	freqFloor       = 1.0
	freqGrowth      = 1.01
	freqSearchSteps = 4000
)

// SwitchRequirement is the electrical floor a candidate switch must clear.
type SwitchRequirement struct {
	// Minimum acceptable ratings, safety factor already applied.
	VDSMin float64 `json:"v_ds_min"`
	IDMin  float64 `json:"i_d_min"`
	PDMin  float64 `json:"p_d_min"`
	// Loss budget for the switch pair (W).
	PowerBudget float64 `json:"power_budget"`
}

// SwitchRequirements derives the requirement floor from the map's worst
// output voltage, input current, and transferred power. effDist is the
// fraction of input power budgeted as switch dissipation.
func SwitchRequirements(maxVO, maxII, maxP, sf, effDist float64) SwitchRequirement {
	return SwitchRequirement{
		VDSMin:      maxVO * sf,
		IDMin:       maxII * sf,
		PDMin:       maxP * effDist * sf,
		PowerBudget: maxP * effDist,
	}
}

// LossBreakdown splits predicted switch loss into its two mechanisms.
type LossBreakdown struct {
	Conduction float64 `json:"conduction_w"`
	Switching  float64 `json:"switching_w"`
	Total      float64 `json:"total_w"`
}

// SwitchLosses predicts the loss of the boost switch pair at one operating
// point. Conduction loss integrates the piecewise-linear inductor current
// through each switch over its conducting interval; switching loss is the
// output-capacitance law 2*VO^2*f*tau/RDSOn with tau = RDSOn*COss.
// rippleRatio is the inductor current ripple ratio.
func SwitchLosses(vi, ii, vo, fsw, rdsOn, cOss, rippleRatio float64) (LossBreakdown, error) {
	if vo <= vi || vi <= 0 {
		return LossBreakdown{}, errors.Domainf("switch loss needs VO > VI > 0, got vi=%v vo=%v", vi, vo).
			WithComponent("sizing").WithOperation("SwitchLosses")
	}

	duty := 1 - vi/vo
	tau := cOss * rdsOn

	sw1A := (2 * ii * rippleRatio * fsw) / duty
	sw1B := ii * (1 - rippleRatio)

	sw2A := -(2 * ii * rippleRatio * fsw) / (1 - duty)
	sw2B := ii * (1 + (2/(1-duty))*rippleRatio - rippleRatio)

	iSw1Sq := (sw1A*sw1A*duty*duty*duty)/(3*fsw*fsw) +
		(sw1A*sw1B*duty*duty)/fsw +
		sw1B*sw1B*duty
	offDuty := 1 - duty
	iSw2Sq := (sw2A*sw2A*offDuty*offDuty*offDuty)/(3*fsw*fsw) +
		(sw2A*sw2B*offDuty*offDuty)/fsw +
		sw2B*sw2B*offDuty

	breakdown := LossBreakdown{
		Conduction: (iSw1Sq + iSw2Sq) * rdsOn,
		Switching:  (2 * vo * vo * fsw * tau) / rdsOn,
	}
	breakdown.Total = breakdown.Conduction + breakdown.Switching

	if !finite(breakdown.Conduction, breakdown.Switching, breakdown.Total) ||
		breakdown.Conduction < 0 || breakdown.Switching < 0 {
		return LossBreakdown{}, errors.Domainf(
			"switch loss is not finite and non-negative at vi=%v vo=%v f=%v", vi, vo, fsw).
			WithComponent("sizing").WithOperation("SwitchLosses")
	}

	return breakdown, nil
}

// MaximizeFrequency finds the highest switching frequency at which the
// predicted loss for the pair stays within budget at the given point. The
// sweep is geometric and the loss model is monotone increasing in
// frequency, so the last feasible probe is the answer. A candidate that
// cannot clear the floor frequency by at least one growth step has no
// usable frequency band and is infeasible.
func MaximizeFrequency(pt opmap.Point, rdsOn, cOss, budget, rippleRatio float64) (float64, LossBreakdown, error) {
	best := 0.0
	var bestLoss, failLoss LossBreakdown

	f := freqFloor
	for step := 0; step < freqSearchSteps; step++ {
		loss, err := SwitchLosses(pt.VI, pt.II, pt.VO, f, rdsOn, cOss, rippleRatio)
		if err != nil {
			return 0, LossBreakdown{}, err
		}
		if loss.Total > budget {
			failLoss = loss
			break
		}
		best = f
		bestLoss = loss
		f *= freqGrowth
	}

	if best <= freqFloor {
		return 0, LossBreakdown{}, errors.Infeasiblef(
			"loss %0.3f W exceeds budget %0.3f W within one step of the floor frequency",
			failLoss.Total, budget).
			WithComponent("sizing").WithOperation("MaximizeFrequency")
	}

	return best, bestLoss, nil
}

// SwitchSelection is the outcome of a switch search.
type SwitchSelection struct {
	Switch    catalog.Switch `json:"switch"`
	Frequency float64        `json:"frequency_hz"`
	// Loss breakdowns at the highest- and lowest-stress operating points,
	// evaluated at the selected frequency.
	WorstCase LossBreakdown `json:"worst_case"`
	BestCase  LossBreakdown `json:"best_case"`
	// Minimum copper pad area per switch (m^2) to hold the junction
	// within its rating at the budgeted dissipation.
	PadArea float64 `json:"pad_area_m2"`
}

// SelectSwitch filters the catalog against req, maximizes the achievable
// switching frequency per surviving candidate at the worst-stress point,
// and returns the candidate with the highest achieved frequency, clamped
// to maxFrequency. Ties keep the earliest catalog row.
func SelectSwitch(
	switches []catalog.Switch,
	req SwitchRequirement,
	worst, best opmap.Point,
	rippleRatio, maxFrequency, tAmbient float64,
) (SwitchSelection, error) {
	var (
		found   bool
		sel     catalog.Switch
		selFreq float64
	)

	for _, sw := range switches {
		if sw.VDS <= req.VDSMin || sw.ID <= req.IDMin || sw.PD <= req.PDMin {
			continue
		}

		freq, _, err := MaximizeFrequency(worst, sw.RDSOn, sw.COss, req.PowerBudget, rippleRatio)
		if err != nil {
			if errors.KindOf(err) == errors.KindInfeasible {
				continue
			}
			return SwitchSelection{}, err
		}

		if !found || freq > selFreq {
			found = true
			sel = sw
			selFreq = freq
		}
	}

	if !found {
		return SwitchSelection{}, errors.Infeasiblef(
			"no switch satisfies V_DS > %0.1f V, I_D > %0.1f A, P_D > %0.2f W within budget %0.2f W",
			req.VDSMin, req.IDMin, req.PDMin, req.PowerBudget).
			WithComponent("sizing").WithOperation("SelectSwitch")
	}

	if selFreq > maxFrequency {
		selFreq = maxFrequency
	}

	worstLoss, err := SwitchLosses(worst.VI, worst.II, worst.VO, selFreq, sel.RDSOn, sel.COss, rippleRatio)
	if err != nil {
		return SwitchSelection{}, err
	}
	bestLoss, err := SwitchLosses(best.VI, best.II, best.VO, selFreq, sel.RDSOn, sel.COss, rippleRatio)
	if err != nil {
		return SwitchSelection{}, err
	}

	area, err := MinimumPadArea(tAmbient, sel.TJMax, req.PowerBudget, sel.RJB, sel.RJC, defaultViaCount)
	if err != nil {
		return SwitchSelection{}, err
	}

	return SwitchSelection{
		Switch:    sel,
		Frequency: selFreq,
		WorstCase: worstLoss,
		BestCase:  bestLoss,
		PadArea:   area,
	}, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
