package catalog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/voltlab/boostgen/internal/errors"
)

// Catalog file names expected under the catalog directory.
const (
	switchesFile   = "switches.csv"
	capacitorsFile = "capacitors.csv"
	inductorsFile  = "inductors.csv"
	shapesFile     = "core_shapes.csv"
	materialsFile  = "core_materials.csv"
	wiresFile      = "wire_gauges.csv"
)

// Load reads every catalog table from dir. Missing or malformed tables are
// domain errors naming the offending file.
func Load(dir string) (*Catalogs, error) {
	cats := &Catalogs{
		Shapes:    make(map[string]CoreShape),
		Materials: make(map[string]CoreMaterial),
	}

	if err := loadTable(filepath.Join(dir, switchesFile), func(r row) error {
		sw := Switch{
			PartNumber: r.str("part_number"),
			VDS:        r.num("v_ds_v"),
			ID:         r.num("i_d_a"),
			PD:         r.num("p_d_w"),
			RDSOn:      r.num("r_ds_on_mohm") * 1e-3,
			COss:       r.num("c_oss_pf") * 1e-12,
			RJB:        r.num("r_jb_c_w"),
			RJC:        r.num("r_jc_c_w"),
			TJMax:      r.num("t_j_max_c") + 273.15,
		}
		if err := r.err(); err != nil {
			return err
		}
		if sw.VDS <= 0 || sw.ID <= 0 || sw.PD <= 0 || sw.RDSOn <= 0 || sw.COss <= 0 {
			return errors.Domainf("switch %q has a non-positive rating", sw.PartNumber)
		}
		cats.Switches = append(cats.Switches, sw)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadTable(filepath.Join(dir, capacitorsFile), func(r row) error {
		c := Capacitor{
			PartNumber:  r.str("part_number"),
			Type:        r.str("type"),
			Capacitance: r.num("capacitance_uf") * 1e-6,
			VRated:      r.num("v_rated_v"),
			ESR:         r.num("esr_mohm") * 1e-3,
			Leakage:     r.num("leakage_ua") * 1e-6,
			Ripple:      r.num("ripple_a"),
			Cost:        r.num("cost"),
		}
		if err := r.err(); err != nil {
			return err
		}
		if c.Capacitance <= 0 || c.VRated <= 0 || c.ESR <= 0 || c.Ripple <= 0 {
			return errors.Domainf("capacitor %q has a non-positive rating", c.PartNumber)
		}
		cats.Capacitors = append(cats.Capacitors, c)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadTable(filepath.Join(dir, inductorsFile), func(r row) error {
		ind := Inductor{
			PartNumber: r.str("part_number"),
			Shape:      r.str("shape"),
			Material:   r.str("material"),
			Cost:       r.num("cost"),
		}
		if err := r.err(); err != nil {
			return err
		}
		cats.Inductors = append(cats.Inductors, ind)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadTable(filepath.Join(dir, shapesFile), func(r row) error {
		s := CoreShape{
			Name:        r.str("name"),
			CoreArea:    r.num("core_area_mm2") * 1e-6,
			WindingArea: r.num("winding_area_mm2") * 1e-6,
			TurnLength:  r.num("turn_length_mm") * 1e-3,
			Volume:      r.num("volume_mm3") * 1e-9,
		}
		if err := r.err(); err != nil {
			return err
		}
		if s.CoreArea <= 0 || s.WindingArea <= 0 || s.TurnLength <= 0 || s.Volume <= 0 {
			return errors.Domainf("core shape %q has a non-positive dimension", s.Name)
		}
		cats.Shapes[s.Name] = s
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadTable(filepath.Join(dir, materialsFile), func(r row) error {
		m := CoreMaterial{
			Name:  r.str("name"),
			BSat:  r.num("b_sat_mt") * 1e-3,
			FMin:  r.num("f_min_hz"),
			FMax:  r.num("f_max_hz"),
			K:     r.num("k"),
			Alpha: r.num("alpha"),
			Beta:  r.num("beta"),
			CT0:   r.num("ct0"),
			CT1:   r.num("ct1"),
			CT2:   r.num("ct2"),
		}
		if err := r.err(); err != nil {
			return err
		}
		if m.BSat <= 0 || m.FMax <= m.FMin {
			return errors.Domainf("core material %q has an invalid rating", m.Name)
		}
		cats.Materials[m.Name] = m
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadTable(filepath.Join(dir, wiresFile), func(r row) error {
		w := Wire{
			Gauge: r.str("gauge"),
			Area:  r.num("area_mm2") * 1e-6,
		}
		if err := r.err(); err != nil {
			return err
		}
		if w.Area <= 0 {
			return errors.Domainf("wire gauge %q has a non-positive area", w.Gauge)
		}
		cats.Wires = append(cats.Wires, w)
		return nil
	}); err != nil {
		return nil, err
	}

	return cats, nil
}

// row exposes one CSV record by header name, collecting the first parse
// failure instead of failing per field.
type row struct {
	header  map[string]int
	record  []string
	line    int
	file    string
	firstEr error
}

func (r *row) str(name string) string {
	idx, ok := r.header[name]
	if !ok || idx >= len(r.record) {
		r.fail(errors.Domainf("%s:%d: missing column %q", r.file, r.line, name))
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func (r *row) num(name string) float64 {
	raw := r.str(name)
	if r.firstEr != nil {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.fail(errors.Domainf("%s:%d: column %q: %q is not a number", r.file, r.line, name, raw))
		return 0
	}
	return v
}

func (r *row) fail(err error) {
	if r.firstEr == nil {
		r.firstEr = err
	}
}

func (r *row) err() error {
	return r.firstEr
}

// loadTable streams a header-first CSV file through visit, one row at a
// time.
func loadTable(path string, visit func(row) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening catalog table %s", path).
			WithKind(errors.KindDomain).WithComponent("catalog")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return errors.Wrapf(err, "reading catalog table %s", path).
			WithKind(errors.KindDomain).WithComponent("catalog")
	}
	if len(records) == 0 {
		return errors.Domainf("catalog table %s is empty", path).WithComponent("catalog")
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for i, record := range records[1:] {
		r := row{header: header, record: record, line: i + 2, file: filepath.Base(path)}
		if err := visit(r); err != nil {
			return errors.Wrapf(err, "catalog table %s", filepath.Base(path)).
				WithKind(errors.KindOf(err)).WithComponent("catalog")
		}
	}

	return nil
}
