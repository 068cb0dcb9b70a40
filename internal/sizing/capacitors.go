package sizing

import (
	"github.com/voltlab/boostgen/internal/catalog"
	"github.com/voltlab/boostgen/internal/errors"
)

// bankMaxParts caps the greedy cover. A bank needing more parts than this
// indicates a pathological catalog rather than a buildable design.
const bankMaxParts = 64

// BankPart is one selected capacitor with its predicted dissipation.
type BankPart struct {
	Capacitor catalog.Capacitor `json:"capacitor"`
	// Share of the bank's RMS ripple current carried by this part (A) and
	// the resulting dissipation (W).
	RippleShare float64 `json:"ripple_share_a"`
	Dissipation float64 `json:"dissipation_w"`
}

// BankSelection is a parallel capacitor bank covering a bulk-capacitance
// and ripple-current requirement.
type BankSelection struct {
	Parts            []BankPart `json:"parts"`
	TotalCapacitance float64    `json:"total_capacitance_f"`
	TotalRipple      float64    `json:"total_ripple_a"`
	TotalCost        float64    `json:"total_cost"`
	Loss             float64    `json:"loss_w"`
}

// capacitorFOM ranks a candidate: more rated voltage, capacitance, and
// ripple capability per unit of ESR, leakage, and cost.
func capacitorFOM(c catalog.Capacitor) float64 {
	denom := c.ESR * c.Leakage * c.Cost
	if denom <= 0 {
		// Free or lossless parts are ranked by their numerator alone.
		denom = 1e-12
	}
	return c.VRated * c.Capacitance * c.Ripple / denom
}

// SelectCapacitorBank greedily covers the (capacitance, ripple current)
// requirement: filter to parts rated above vMin, repeatedly take the
// highest-FOM part, subtract its contribution, and stop when both
// remainders are covered. This is an approximate multi-objective knapsack
// cover, not an exact optimum. A part contributing nothing to either
// remainder would loop forever, so the cover fails instead.
func SelectCapacitorBank(caps []catalog.Capacitor, vMin, cMin, iRMSMin float64) (BankSelection, error) {
	var survivors []catalog.Capacitor
	for _, c := range caps {
		if c.VRated >= vMin {
			survivors = append(survivors, c)
		}
	}
	if len(survivors) == 0 {
		return BankSelection{}, errors.Infeasiblef(
			"no capacitor is rated for %0.1f V", vMin).
			WithComponent("sizing").WithOperation("SelectCapacitorBank")
	}

	// Highest FOM first; the catalog is tiny so a single scan per pick is
	// simpler than sorting a mutating remainder.
	best := survivors[0]
	for _, c := range survivors[1:] {
		if capacitorFOM(c) > capacitorFOM(best) {
			best = c
		}
	}

	var bank BankSelection
	remainingC := cMin
	remainingI := iRMSMin

	for len(bank.Parts) < bankMaxParts {
		if remainingC <= 0 && remainingI <= 0 {
			break
		}
		if best.Capacitance <= 0 && best.Ripple <= 0 {
			return BankSelection{}, errors.Infeasiblef(
				"capacitor %q contributes no coverage; cover cannot terminate", best.PartNumber).
				WithComponent("sizing").WithOperation("SelectCapacitorBank")
		}

		bank.Parts = append(bank.Parts, BankPart{Capacitor: best})
		bank.TotalCapacitance += best.Capacitance
		bank.TotalRipple += best.Ripple
		bank.TotalCost += best.Cost
		remainingC -= best.Capacitance
		remainingI -= best.Ripple
	}

	if remainingC > 0 || remainingI > 0 {
		return BankSelection{}, errors.Infeasiblef(
			"capacitor bank cover did not terminate within %d parts (%0.1f uF and %0.2f A uncovered)",
			bankMaxParts, remainingC*1e6, remainingI).
			WithComponent("sizing").WithOperation("SelectCapacitorBank")
	}

	// Ripple current divides across the bank in proportion to each part's
	// rating; dissipation follows from ESR and leakage at rated voltage.
	for i := range bank.Parts {
		p := &bank.Parts[i]
		share := iRMSMin * p.Capacitor.Ripple / bank.TotalRipple
		p.RippleShare = share
		p.Dissipation = share*share*p.Capacitor.ESR + p.Capacitor.Leakage*vMin
		bank.Loss += p.Dissipation
	}

	return bank, nil
}
