package design

import (
	"github.com/voltlab/boostgen/internal/battery"
	"github.com/voltlab/boostgen/internal/errors"
	"github.com/voltlab/boostgen/internal/solar"
)

// PortModel produces paired I-V samples for one converter port.
type PortModel interface {
	Sample() (v []float64, i []float64, err error)
}

// Port model kinds accepted in a spec file.
const (
	KindSolarCell = "solar_cell"
	KindBattery   = "battery"
)

// buildPort resolves a port spec to its model. The set of kinds is closed;
// an unknown kind is a spec error, not an extension point.
func buildPort(p PortSpec) (PortModel, error) {
	switch p.Kind {
	case KindSolarCell:
		arr := solar.NewArray(p.NumCells, p.RSeries, p.RShunt)
		if p.Irradiance > 0 {
			arr.Irradiance = p.Irradiance
		}
		if p.Temperature > 0 {
			arr.Temperature = p.Temperature
		}
		return arr, nil
	case KindBattery:
		return battery.NewBank(p.NumCells), nil
	default:
		return nil, errors.Domainf("unknown port model kind %q", p.Kind).
			WithComponent("design").WithOperation("buildPort")
	}
}
