// Package opmap builds the converter's operating-point map: the cross
// product of source and sink I-V samples, with derived duty cycle, output
// current, and transferred power per point.
package opmap

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/voltlab/boostgen/internal/errors"
)

// Point is one feasible (input, output) combination of the converter.
// Duty = 1 - VI/VO and IO = VI*II/VO, assuming a lossless boost mapping.
type Point struct {
	VI   float64 `json:"vi"`
	II   float64 `json:"ii"`
	VO   float64 `json:"vo"`
	IO   float64 `json:"io"`
	P    float64 `json:"p"`
	Duty float64 `json:"duty"`
}

// Range is a closed [Min, Max] interval over one map column.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Bounds aggregates the column extrema of a map. Recomputed on every build
// and constrain; zero-valued for an empty map.
type Bounds struct {
	VI   Range `json:"vi"`
	II   Range `json:"ii"`
	VO   Range `json:"vo"`
	IO   Range `json:"io"`
	P    Range `json:"p"`
	Duty Range `json:"duty"`
}

// Map owns an ordered collection of operating points plus cached column
// bounds. Maps are only mutated by full regeneration: Constrain returns a
// new filtered map and leaves the receiver untouched.
type Map struct {
	points []Point
	bounds Bounds
}

// Build crosses every source sample with every sink sample. Pairs that
// violate the boost assumption (VO > VI) are dropped; non-positive voltages
// and an all-violating cross product are domain errors.
func Build(sourceV, sourceI, sinkV, sinkI []float64) (*Map, error) {
	if len(sourceV) != len(sourceI) {
		return nil, errors.Domainf("source sample length mismatch: %d voltages, %d currents",
			len(sourceV), len(sourceI)).WithComponent("opmap").WithOperation("Build")
	}
	if len(sinkV) != len(sinkI) {
		return nil, errors.Domainf("sink sample length mismatch: %d voltages, %d currents",
			len(sinkV), len(sinkI)).WithComponent("opmap").WithOperation("Build")
	}

	points := make([]Point, 0, len(sourceV)*len(sinkV))
	for i, vi := range sourceV {
		ii := sourceI[i]
		if vi <= 0 {
			return nil, errors.Domainf("source voltage must be positive, got %v", vi).
				WithComponent("opmap").WithOperation("Build")
		}
		for _, vo := range sinkV {
			if vo <= 0 {
				return nil, errors.Domainf("sink voltage must be positive, got %v", vo).
					WithComponent("opmap").WithOperation("Build")
			}
			if vo <= vi {
				// Boost topology cannot reach this pair.
				continue
			}
			points = append(points, Point{
				VI:   vi,
				II:   ii,
				VO:   vo,
				IO:   vi * ii / vo,
				P:    vi * ii,
				Duty: 1 - vi/vo,
			})
		}
	}

	if len(points) == 0 {
		return nil, errors.Domainf("no operating point satisfies VO > VI; not a boost design").
			WithComponent("opmap").WithOperation("Build")
	}

	m := &Map{points: points}
	m.bounds = computeBounds(points)
	return m, nil
}

// Constrain returns a new map holding only points with
// dutyLo <= Duty <= dutyHi and P >= minPower. The receiver is unchanged.
// An empty result is legal and signals an infeasible iteration upstream.
func (m *Map) Constrain(dutyLo, dutyHi, minPower float64) *Map {
	filtered := make([]Point, 0, len(m.points))
	for _, p := range m.points {
		if p.Duty < dutyLo || p.Duty > dutyHi {
			continue
		}
		if p.P < minPower {
			continue
		}
		filtered = append(filtered, p)
	}

	out := &Map{points: filtered}
	out.bounds = computeBounds(filtered)
	return out
}

// Points returns the map rows. Callers must not mutate the slice.
func (m *Map) Points() []Point {
	return m.points
}

// Len returns the number of operating points.
func (m *Map) Len() int {
	return len(m.points)
}

// Bounds returns the cached column extrema.
func (m *Map) Bounds() Bounds {
	return m.bounds
}

// WorstStress returns the point with the highest duty cycle, which bounds
// switch and passive stress. ok is false for an empty map.
func (m *Map) WorstStress() (Point, bool) {
	return m.argDuty(func(a, b float64) bool { return a > b })
}

// BestStress returns the point with the lowest duty cycle.
func (m *Map) BestStress() (Point, bool) {
	return m.argDuty(func(a, b float64) bool { return a < b })
}

func (m *Map) argDuty(better func(a, b float64) bool) (Point, bool) {
	if len(m.points) == 0 {
		return Point{}, false
	}
	best := m.points[0]
	for _, p := range m.points[1:] {
		if better(p.Duty, best.Duty) {
			best = p
		}
	}
	return best, true
}

func computeBounds(points []Point) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}

	n := len(points)
	vi := make([]float64, n)
	ii := make([]float64, n)
	vo := make([]float64, n)
	io := make([]float64, n)
	pw := make([]float64, n)
	du := make([]float64, n)
	for i, p := range points {
		vi[i] = p.VI
		ii[i] = p.II
		vo[i] = p.VO
		io[i] = p.IO
		pw[i] = p.P
		du[i] = p.Duty
	}

	return Bounds{
		VI:   Range{Min: floats.Min(vi), Max: floats.Max(vi)},
		II:   Range{Min: floats.Min(ii), Max: floats.Max(ii)},
		VO:   Range{Min: floats.Min(vo), Max: floats.Max(vo)},
		IO:   Range{Min: floats.Min(io), Max: floats.Max(io)},
		P:    Range{Min: floats.Min(pw), Max: floats.Max(pw)},
		Duty: Range{Min: floats.Min(du), Max: floats.Max(du)},
	}
}

// Finite reports whether every derived quantity in the map is finite.
// NaN or infinite columns mark the map as an infeasible candidate.
func (m *Map) Finite() bool {
	for _, p := range m.points {
		for _, v := range [...]float64{p.VI, p.II, p.VO, p.IO, p.P, p.Duty} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
