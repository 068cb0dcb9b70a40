package design

import (
	"encoding/json"
	"os"

	"github.com/voltlab/boostgen/internal/errors"
)

// PortSpec identifies one converter port and its model parameters. Kind
// selects the model; fields not used by the kind are ignored.
type PortSpec struct {
	Kind     string `json:"kind"`
	NumCells int    `json:"num_cells"`
	// Solar cell parasitics (Ohm).
	RSeries float64 `json:"r_series_ohm,omitempty"`
	RShunt  float64 `json:"r_shunt_ohm,omitempty"`
	// Solar operating conditions; zero means standard test conditions.
	Irradiance  float64 `json:"irradiance_w_m2,omitempty"`
	Temperature float64 `json:"temperature_k,omitempty"`
}

// Spec is the user's electrical design input, loaded from a JSON file.
type Spec struct {
	Source PortSpec `json:"source"`
	Sink   PortSpec `json:"sink"`

	// Target conversion efficiency; the residual is the loss budget.
	Efficiency float64 `json:"efficiency"`
	// Fraction of the loss budget assigned to the switch pair.
	SwitchLossShare float64 `json:"switch_loss_share"`
	// Ratings multiplier applied to every selected part.
	SafetyFactor float64 `json:"safety_factor"`

	// Absolute peak-to-peak ripple targets at the three storage elements.
	InputRippleVolts   float64 `json:"input_ripple_v"`
	OutputRippleVolts  float64 `json:"output_ripple_v"`
	InductorRippleAmps float64 `json:"inductor_ripple_a"`

	// Operating-map constraints.
	DutyMin  float64 `json:"duty_min"`
	DutyMax  float64 `json:"duty_max"`
	MinPower float64 `json:"min_power_w"`

	// Board ambient for thermal sizing (K).
	AmbientTemperature float64 `json:"ambient_temperature_k"`
}

// applyDefaults fills zero-valued tuning fields so a minimal spec file only
// needs the two port definitions.
func (s *Spec) applyDefaults() {
	if s.Efficiency == 0 {
		s.Efficiency = 0.99
	}
	if s.SwitchLossShare == 0 {
		s.SwitchLossShare = 1 - s.Efficiency
	}
	if s.SafetyFactor == 0 {
		s.SafetyFactor = 1.5
	}
	if s.InputRippleVolts == 0 {
		s.InputRippleVolts = 1.0
	}
	if s.OutputRippleVolts == 0 {
		s.OutputRippleVolts = 0.1
	}
	if s.InductorRippleAmps == 0 {
		s.InductorRippleAmps = 1.5
	}
	if s.DutyMax == 0 {
		s.DutyMax = 1.0
	}
	if s.AmbientTemperature == 0 {
		s.AmbientTemperature = 298.15
	}
}

// Validate rejects specs the pipeline cannot evaluate.
func (s *Spec) Validate() error {
	if s.Source.Kind == "" || s.Sink.Kind == "" {
		return errors.Domainf("spec must name a source and a sink model").
			WithComponent("design").WithOperation("Validate")
	}
	if s.Efficiency <= 0 || s.Efficiency >= 1 {
		return errors.Domainf("efficiency must be in (0, 1), got %v", s.Efficiency).
			WithComponent("design").WithOperation("Validate")
	}
	if s.SafetyFactor < 1 {
		return errors.Domainf("safety factor must be at least 1, got %v", s.SafetyFactor).
			WithComponent("design").WithOperation("Validate")
	}
	if s.DutyMin < 0 || s.DutyMax > 1 || s.DutyMin >= s.DutyMax {
		return errors.Domainf("duty window [%v, %v] is invalid", s.DutyMin, s.DutyMax).
			WithComponent("design").WithOperation("Validate")
	}
	if s.InputRippleVolts <= 0 || s.OutputRippleVolts <= 0 || s.InductorRippleAmps <= 0 {
		return errors.Domainf("ripple targets must be positive").
			WithComponent("design").WithOperation("Validate")
	}
	return nil
}

// LoadSpec reads a design spec file, applies defaults, and validates it.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading design spec %s", path).
			WithComponent("design").WithOperation("LoadSpec")
	}

	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, errors.Wrapf(err, "parsing design spec %s", path).
			WithKind(errors.KindDomain).
			WithComponent("design").WithOperation("LoadSpec")
	}

	spec.applyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}
