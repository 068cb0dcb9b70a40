package design

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlab/boostgen/internal/errors"
)

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "design_spec.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSpecDefaults(t *testing.T) {
	path := writeSpec(t, `{
		"source": {"kind": "solar_cell", "num_cells": 111, "r_series_ohm": 0.012, "r_shunt_ohm": 100},
		"sink": {"kind": "battery", "num_cells": 32}
	}`)

	spec, err := LoadSpec(path)
	require.NoError(t, err)

	assert.Equal(t, 0.99, spec.Efficiency)
	assert.Equal(t, 1.5, spec.SafetyFactor)
	assert.Equal(t, 1.0, spec.InputRippleVolts)
	assert.Equal(t, 0.1, spec.OutputRippleVolts)
	assert.Equal(t, 1.5, spec.InductorRippleAmps)
	assert.Equal(t, 1.0, spec.DutyMax)
	assert.InDelta(t, 298.15, spec.AmbientTemperature, 1e-9)
	assert.InDelta(t, 0.01, spec.SwitchLossShare, 1e-12)
}

func TestLoadSpecOverrides(t *testing.T) {
	path := writeSpec(t, `{
		"source": {"kind": "solar_cell", "num_cells": 111, "r_shunt_ohm": 100},
		"sink": {"kind": "battery", "num_cells": 32},
		"efficiency": 0.97,
		"duty_min": 0.1,
		"duty_max": 0.9,
		"min_power_w": 10
	}`)

	spec, err := LoadSpec(path)
	require.NoError(t, err)

	assert.Equal(t, 0.97, spec.Efficiency)
	assert.Equal(t, 0.1, spec.DutyMin)
	assert.Equal(t, 0.9, spec.DutyMax)
	assert.Equal(t, 10.0, spec.MinPower)
}

func TestLoadSpecErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: `duty: 0.5`},
		{name: "missing ports", content: `{"efficiency": 0.99}`},
		{name: "bad efficiency", content: `{"source": {"kind": "solar_cell"}, "sink": {"kind": "battery"}, "efficiency": 1.5}`},
		{name: "inverted duty window", content: `{"source": {"kind": "solar_cell"}, "sink": {"kind": "battery"}, "duty_min": 0.9, "duty_max": 0.2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSpec(writeSpec(t, tt.content))
			require.Error(t, err)
			assert.Equal(t, errors.KindDomain, errors.KindOf(err))
		})
	}
}

func TestLoadSpecMissingFile(t *testing.T) {
	_, err := LoadSpec(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
