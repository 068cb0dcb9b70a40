// Package catalog defines the read-only part tables the selection
// subsystem searches: switches, capacitors, inductors, inductor core
// shapes, core materials, and wire gauges.
//
// Rows are immutable for the duration of one selection call; loaders hand
// out fresh slices and selectors never write to them.
package catalog

// Switch is one MOSFET row. Ratings are datasheet maxima; RDSOn and COss
// drive the conduction and switching loss models.
type Switch struct {
	PartNumber string
	// Drain-source voltage rating (V), continuous drain current (A),
	// package power dissipation (W).
	VDS float64
	ID  float64
	PD  float64
	// On-resistance (Ohm) and output capacitance (F).
	RDSOn float64
	COss  float64
	// Junction-to-board and junction-to-case thermal resistance (K/W),
	// maximum junction temperature (K).
	RJB   float64
	RJC   float64
	TJMax float64
}

// FOM returns the switching figure of merit tau = RDSOn * COss (s).
func (s Switch) FOM() float64 {
	return s.RDSOn * s.COss
}

// Capacitor is one capacitor row.
type Capacitor struct {
	PartNumber string
	// Dielectric family, e.g. "Electrolytic" or "MLCC".
	Type string
	// Capacitance (F), rated DC voltage (V).
	Capacitance float64
	VRated      float64
	// Equivalent series resistance (Ohm), leakage current (A), ripple
	// current rating (A RMS).
	ESR     float64
	Leakage float64
	Ripple  float64
	// Unit cost, arbitrary currency.
	Cost float64
}

// Inductor is one inductor catalog row: a buildable part defined by its
// core shape and material keys.
type Inductor struct {
	PartNumber string
	Shape      string
	Material   string
	Cost       float64
}

// CoreShape holds the geometry of one core form factor.
type CoreShape struct {
	Name string
	// Core cross-sectional area (m^2), winding window area (m^2), mean
	// length per turn (m), core volume (m^3).
	CoreArea    float64
	WindingArea float64
	TurnLength  float64
	Volume      float64
}

// CoreMaterial holds one ferrite material's saturation and loss law.
// Core loss follows a Steinmetz power law in frequency and peak AC flux,
// with a quadratic temperature correction:
//
//	Pv = K * f^Alpha * B^Beta * (CT0 - CT1*T + CT2*T^2)
type CoreMaterial struct {
	Name string
	// Saturation flux density (T).
	BSat float64
	// Usable frequency band (Hz).
	FMin float64
	FMax float64
	// Steinmetz coefficients.
	K     float64
	Alpha float64
	Beta  float64
	CT0   float64
	CT1   float64
	CT2   float64
}

// Wire is one wire-gauge row.
type Wire struct {
	Gauge string
	// Bare conductor cross-sectional area (m^2).
	Area float64
}

// Catalogs bundles every part table one design run searches.
type Catalogs struct {
	Switches   []Switch
	Capacitors []Capacitor
	Inductors  []Inductor
	Shapes     map[string]CoreShape
	Materials  map[string]CoreMaterial
	Wires      []Wire
}
