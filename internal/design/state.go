package design

import (
	"time"

	"github.com/voltlab/boostgen/internal/opmap"
	"github.com/voltlab/boostgen/internal/sizing"
)

// Phase is the optimizer's lifecycle state.
type Phase string

const (
	PhaseInitializing Phase = "initializing"
	PhaseIterating    Phase = "iterating"
	PhaseConverged    Phase = "converged"
	PhaseFailed       Phase = "failed"
)

// RippleBudget holds the per-element ripple targets both as absolute
// peak-to-peak values and as ratios of the map extremes.
type RippleBudget struct {
	InputVolts   float64 `json:"input_volts"`
	InputRatio   float64 `json:"input_ratio"`
	OutputVolts  float64 `json:"output_volts"`
	OutputRatio  float64 `json:"output_ratio"`
	InductorAmps float64 `json:"inductor_amps"`
	// InductorRatio is the outer optimizer's first decision variable.
	InductorRatio float64 `json:"inductor_ratio"`
}

// LossSummary is the predicted dissipation of the selected components at
// the worst-stress operating point.
type LossSummary struct {
	Switches   float64 `json:"switches_w"`
	InputBank  float64 `json:"input_bank_w"`
	OutputBank float64 `json:"output_bank_w"`
	Inductor   float64 `json:"inductor_w"`
	Total      float64 `json:"total_w"`
}

// DesignState is the full pipeline state, persisted after every iteration
// and served by the monitor.
type DesignState struct {
	Phase     Phase     `json:"phase"`
	Iteration int       `json:"iteration"`
	UpdatedAt time.Time `json:"updated_at"`

	Spec   Spec          `json:"spec"`
	Bounds opmap.Bounds  `json:"bounds"`
	Points []opmap.Point `json:"points,omitempty"`

	Ripple      RippleBudget `json:"ripple"`
	PowerBudget float64      `json:"power_budget_w"`

	Switch     *sizing.SwitchSelection    `json:"switch,omitempty"`
	Passives   *sizing.PassiveRequirement `json:"passives,omitempty"`
	InputBank  *sizing.BankSelection      `json:"input_bank,omitempty"`
	OutputBank *sizing.BankSelection      `json:"output_bank,omitempty"`
	Inductor   *sizing.InductorDesign     `json:"inductor,omitempty"`

	Loss     LossSummary `json:"loss"`
	BestLoss float64     `json:"best_loss_w"`

	Penalties   int    `json:"penalties"`
	LastFailure string `json:"last_failure,omitempty"`
}

// Clone returns a deep enough copy for concurrent readers: component
// pointers are duplicated, slices are shared read-only.
func (s *DesignState) Clone() *DesignState {
	cp := *s
	if s.Switch != nil {
		sw := *s.Switch
		cp.Switch = &sw
	}
	if s.Passives != nil {
		p := *s.Passives
		cp.Passives = &p
	}
	if s.InputBank != nil {
		b := *s.InputBank
		cp.InputBank = &b
	}
	if s.OutputBank != nil {
		b := *s.OutputBank
		cp.OutputBank = &b
	}
	if s.Inductor != nil {
		ind := *s.Inductor
		cp.Inductor = &ind
	}
	return &cp
}
