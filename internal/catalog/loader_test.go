package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlab/boostgen/internal/errors"
)

func writeCatalogDir(t *testing.T, overrides map[string]string) string {
	t.Helper()

	files := map[string]string{
		"switches.csv": "part_number,v_ds_v,i_d_a,p_d_w,r_ds_on_mohm,c_oss_pf,r_jb_c_w,r_jc_c_w,t_j_max_c\n" +
			"SW1,250,64,300,20,780,0.7,0.4,175\n",
		"capacitors.csv": "part_number,type,capacitance_uf,v_rated_v,esr_mohm,leakage_ua,ripple_a,cost\n" +
			"C1,Electrolytic,47,250,280,150,1.45,0.52\n",
		"inductors.csv": "part_number,shape,material,cost\n" +
			"L1,PQ3230,N97,1.80\n",
		"core_shapes.csv": "name,core_area_mm2,winding_area_mm2,turn_length_mm,volume_mm3\n" +
			"PQ3230,161,94,66.7,12500\n",
		"core_materials.csv": "name,b_sat_mt,f_min_hz,f_max_hz,k,alpha,beta,ct0,ct1,ct2\n" +
			"N97,410,25000,500000,7.56e-5,1.63,2.62,2.08,0.0072,6.53e-6\n",
		"wire_gauges.csv": "gauge,area_mm2\n" +
			"AWG20,0.518\n",
	}
	for name, content := range overrides {
		files[name] = content
	}

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoadScalesUnits(t *testing.T) {
	cats, err := Load(writeCatalogDir(t, nil))
	require.NoError(t, err)

	require.Len(t, cats.Switches, 1)
	sw := cats.Switches[0]
	assert.Equal(t, "SW1", sw.PartNumber)
	assert.InDelta(t, 0.020, sw.RDSOn, 1e-12)
	assert.InDelta(t, 780e-12, sw.COss, 1e-18)
	assert.InDelta(t, 175+273.15, sw.TJMax, 1e-9)
	assert.InDelta(t, sw.RDSOn*sw.COss, sw.FOM(), 1e-18)

	require.Len(t, cats.Capacitors, 1)
	c := cats.Capacitors[0]
	assert.InDelta(t, 47e-6, c.Capacitance, 1e-12)
	assert.InDelta(t, 0.280, c.ESR, 1e-12)
	assert.InDelta(t, 150e-6, c.Leakage, 1e-12)

	shape, ok := cats.Shapes["PQ3230"]
	require.True(t, ok)
	assert.InDelta(t, 161e-6, shape.CoreArea, 1e-12)
	assert.InDelta(t, 66.7e-3, shape.TurnLength, 1e-9)
	assert.InDelta(t, 12500e-9, shape.Volume, 1e-12)

	mat, ok := cats.Materials["N97"]
	require.True(t, ok)
	assert.InDelta(t, 0.410, mat.BSat, 1e-12)

	require.Len(t, cats.Wires, 1)
	assert.InDelta(t, 0.518e-6, cats.Wires[0].Area, 1e-12)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
	}{
		{
			name: "missing column",
			overrides: map[string]string{
				"switches.csv": "part_number,v_ds_v\nSW1,250\n",
			},
		},
		{
			name: "bad number",
			overrides: map[string]string{
				"capacitors.csv": "part_number,type,capacitance_uf,v_rated_v,esr_mohm,leakage_ua,ripple_a,cost\n" +
					"C1,Electrolytic,forty-seven,250,280,150,1.45,0.52\n",
			},
		},
		{
			name: "non-positive rating",
			overrides: map[string]string{
				"wire_gauges.csv": "gauge,area_mm2\nAWG20,0\n",
			},
		},
		{
			name: "empty table",
			overrides: map[string]string{
				"core_shapes.csv": "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeCatalogDir(t, tt.overrides))
			require.Error(t, err)
			assert.Equal(t, errors.KindDomain, errors.KindOf(err))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := writeCatalogDir(t, nil)
	require.NoError(t, os.Remove(filepath.Join(dir, "inductors.csv")))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Equal(t, errors.KindDomain, errors.KindOf(err))
}
