package sizing

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/voltlab/boostgen/internal/errors"
	"github.com/voltlab/boostgen/internal/opmap"
)

// PassiveRequirement is the floor the capacitor banks and inductor must
// clear, derived from the worst operating point under the ripple budgets.
type PassiveRequirement struct {
	// Minimum bulk capacitance (F) and rated voltage (V) for the input
	// capacitor bank, plus its RMS ripple current requirement (A).
	CIMin    float64 `json:"ci_min_f"`
	CIVRated float64 `json:"ci_v_rated"`
	CIRMSMin float64 `json:"ci_rms_min_a"`
	// Same for the output bank.
	COMin    float64 `json:"co_min_f"`
	COVRated float64 `json:"co_v_rated"`
	CORMSMin float64 `json:"co_rms_min_a"`
	// Minimum inductance (H), rated current (A), and worst peak-to-peak
	// ripple current (A) for the inductor.
	LMin    float64 `json:"l_min_h"`
	LIRated float64 `json:"l_i_rated"`
	LIPkPk  float64 `json:"l_i_pkpk_a"`
}

// PassiveRequirements evaluates the closed-form ripple equations at every
// operating point and keeps the worst case of each column. rCiV and rCoV
// are the allowed peak-to-peak capacitor voltage ripples (V); rLA is the
// allowed peak-to-peak inductor current ripple (A); eff enters the duty
// computation because the converter must also deliver the dissipated
// energy.
func PassiveRequirements(points []opmap.Point, fsw, rCiV, rCoV, rLA, eff, sf float64) (PassiveRequirement, error) {
	if len(points) == 0 {
		return PassiveRequirement{}, errors.Infeasiblef("operating map is empty after constraining").
			WithComponent("sizing").WithOperation("PassiveRequirements")
	}
	if fsw <= 0 || rCiV <= 0 || rCoV <= 0 || rLA <= 0 {
		return PassiveRequirement{}, errors.Domainf(
			"frequency and ripple budgets must be positive: f=%v rci=%v rco=%v rl=%v", fsw, rCiV, rCoV, rLA).
			WithComponent("sizing").WithOperation("PassiveRequirements")
	}

	n := len(points)
	ciMin := make([]float64, 0, n)
	coMin := make([]float64, 0, n)
	lMin := make([]float64, 0, n)
	iLMax := make([]float64, 0, n)
	iLPkPk := make([]float64, 0, n)
	vCiMax := make([]float64, 0, n)
	vCoMax := make([]float64, 0, n)
	iCiRMS := make([]float64, 0, n)
	iCoRMS := make([]float64, 0, n)

	for _, pt := range points {
		pIn := pt.VI * pt.II
		iOut := pIn / pt.VO

		duty := 1 - pt.VI*eff/pt.VO

		// Inductance from the ripple current target, then the ripple this
		// inductance actually produces at this point.
		l := pt.VI * (pt.VO - pt.VI) / (rLA * fsw * pt.VO)
		rLAOp := pt.VI * duty / (fsw * l)

		ci := rLAOp / (8 * fsw * rCiV)

		co := (pIn / pt.VO * duty) / (fsw * rCoV)
		rCoVOp := (pt.VO - pt.VI) * iOut / (pt.VO * fsw * co)

		if !finite(l, rLAOp, ci, co, rCoVOp) || l <= 0 || ci <= 0 || co <= 0 {
			return PassiveRequirement{}, errors.Domainf(
				"passive sizing diverged at vi=%v vo=%v", pt.VI, pt.VO).
				WithComponent("sizing").WithOperation("PassiveRequirements")
		}

		ciMin = append(ciMin, ci)
		coMin = append(coMin, co)
		lMin = append(lMin, l)
		iLMax = append(iLMax, pt.II+rLAOp)
		iLPkPk = append(iLPkPk, rLAOp)
		vCiMax = append(vCiMax, pt.VI+rCiV)
		vCoMax = append(vCoMax, pt.VO+rCoVOp)

		// Triangular ripple through the input bank; output bank carries the
		// discontinuous diode current.
		iCiRMS = append(iCiRMS, rLAOp/(2*math.Sqrt(3)))
		iCoRMS = append(iCoRMS, iOut*math.Sqrt(duty/(1-duty)))
	}

	return PassiveRequirement{
		CIMin:    floats.Max(ciMin),
		CIVRated: floats.Max(vCiMax) * sf,
		CIRMSMin: floats.Max(iCiRMS),
		COMin:    floats.Max(coMin),
		COVRated: floats.Max(vCoMax) * sf,
		CORMSMin: floats.Max(iCoRMS),
		LMin:     floats.Max(lMin),
		LIRated:  floats.Max(iLMax) * 1.05,
		LIPkPk:   floats.Max(iLPkPk),
	}, nil
}
