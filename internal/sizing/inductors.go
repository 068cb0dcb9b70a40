package sizing

import (
	"math"

	"github.com/voltlab/boostgen/internal/catalog"
	"github.com/voltlab/boostgen/internal/errors"
)

const (
	// Peak flux is held below saturation with margin; the winding window
	// fill factor accounts for wire packing and bobbin overhead.
	fluxDerating  = 0.75
	windowFill    = 0.3
	copperRho     = 2e-8
	vacuumPerm    = 4 * math.Pi * 1e-7
	ratedHeadroom = 1.05
)

// InductorDesign is a wound inductor sized for a specific inductance,
// peak current, and switching frequency.
type InductorDesign struct {
	Inductor catalog.Inductor     `json:"inductor"`
	Shape    catalog.CoreShape    `json:"shape"`
	Material catalog.CoreMaterial `json:"material"`
	Wire     catalog.Wire         `json:"wire"`

	Inductance  float64 `json:"inductance_h"`
	Turns       int     `json:"turns"`
	GapLength   float64 `json:"gap_length_m"`
	PeakFlux    float64 `json:"peak_flux_t"`
	WindingArea float64 `json:"winding_area_per_turn_m2"`
	Resistance  float64 `json:"winding_resistance_ohm"`

	ConductionLoss float64 `json:"conduction_loss_w"`
	CoreLoss       float64 `json:"core_loss_w"`
	TotalLoss      float64 `json:"total_loss_w"`
	Cost           float64 `json:"cost"`
}

// windInductor sizes a winding on one core for the requirement. A nil
// return means the core cannot hold the winding or the material is out
// of its frequency band.
func windInductor(ind catalog.Inductor, cats catalog.Catalogs, req PassiveRequirement, fsw, rippleRatio, temperature float64) *InductorDesign {
	shape, ok := cats.Shapes[ind.Shape]
	if !ok {
		return nil
	}
	mat, ok := cats.Materials[ind.Material]
	if !ok {
		return nil
	}
	if fsw < mat.FMin || fsw > mat.FMax {
		return nil
	}

	bPk := fluxDerating * mat.BSat
	iMax := req.LIRated
	turns := int(math.Ceil(req.LMin * iMax / (bPk * shape.CoreArea)))
	if turns < 1 {
		turns = 1
	}

	// Window area available per turn determines the largest wire that fits.
	perTurn := shape.WindingArea * windowFill / float64(turns)
	var wire *catalog.Wire
	for i := range cats.Wires {
		w := cats.Wires[i]
		if w.Area > perTurn {
			continue
		}
		if wire == nil || w.Area > wire.Area {
			wire = &cats.Wires[i]
		}
	}
	if wire == nil {
		return nil
	}

	length := shape.TurnLength * float64(turns)
	resistance := copperRho * length / wire.Area
	iRMS := iMax / math.Sqrt2
	pCond := iRMS * iRMS * resistance

	// AC flux swing follows the current ripple fraction of the peak; core
	// loss uses the Steinmetz fit with its quadratic temperature factor.
	// The ct coefficients are datasheet fits over core temperature in
	// Celsius, so the Kelvin ambient is converted before evaluating.
	bAC := bPk * rippleRatio / (1 + rippleRatio)
	tC := temperature - 273.15
	tempFactor := mat.CT0 - mat.CT1*tC + mat.CT2*tC*tC
	pCore := mat.K * math.Pow(fsw, mat.Alpha) * math.Pow(bAC, mat.Beta) * tempFactor * shape.Volume

	gap := vacuumPerm * float64(turns) * float64(turns) * shape.CoreArea / req.LMin

	return &InductorDesign{
		Inductor:       ind,
		Shape:          shape,
		Material:       mat,
		Wire:           *wire,
		Inductance:     req.LMin,
		Turns:          turns,
		GapLength:      gap,
		PeakFlux:       bPk,
		WindingArea:    perTurn,
		Resistance:     resistance,
		ConductionLoss: pCond,
		CoreLoss:       pCore,
		TotalLoss:      pCond + pCore,
		Cost:           ind.Cost,
	}
}

// SelectInductor winds every catalog inductor for the requirement and
// returns the lowest-loss design. Cost breaks loss ties so two equal cores
// resolve deterministically.
func SelectInductor(inductors []catalog.Inductor, cats catalog.Catalogs, req PassiveRequirement, fsw, rippleRatio, temperature float64) (InductorDesign, error) {
	var best *InductorDesign
	for _, ind := range inductors {
		d := windInductor(ind, cats, req, fsw, rippleRatio, temperature)
		if d == nil {
			continue
		}
		if best == nil || d.TotalLoss < best.TotalLoss ||
			(d.TotalLoss == best.TotalLoss && d.Cost < best.Cost) {
			best = d
		}
	}
	if best == nil {
		return InductorDesign{}, errors.Infeasiblef(
			"no catalog core can be wound for %0.1f uH at %0.0f Hz", req.LMin*1e6, fsw).
			WithComponent("sizing").WithOperation("SelectInductor")
	}
	return *best, nil
}
