package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlab/boostgen/internal/design"
	"github.com/voltlab/boostgen/internal/logging"
)

// stubSource serves a fixed state snapshot.
type stubSource struct {
	state *design.DesignState
}

func (s *stubSource) State() *design.DesignState { return s.state }

func newTestRouter(src StateSource) chi.Router {
	logger := logging.New(logging.ErrorLevel, io.Discard)
	r := chi.NewRouter()
	NewServer(src, logger).RegisterRoutes(r)
	return r
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(&stubSource{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestDesignEndpoint(t *testing.T) {
	src := &stubSource{state: &design.DesignState{
		Phase:     design.PhaseConverged,
		Iteration: 12,
		BestLoss:  6.5,
	}}
	r := newTestRouter(src)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/design", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got design.DesignState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, design.PhaseConverged, got.Phase)
	assert.Equal(t, 12, got.Iteration)
	assert.Equal(t, 6.5, got.BestLoss)
}

func TestDesignEndpointBeforeInit(t *testing.T) {
	r := newTestRouter(&stubSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/design", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.Iteration(false)
	m.Iteration(true)
	m.BestLoss(6.5)

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		values[mf.GetName()] = mf.GetMetric()[0].GetCounter().GetValue() + mf.GetMetric()[0].GetGauge().GetValue()
	}

	assert.Equal(t, 2.0, values["boostgen_iterations_total"])
	assert.Equal(t, 1.0, values["boostgen_penalties_total"])
	assert.Equal(t, 6.5, values["boostgen_best_loss_watts"])
}

func TestMetricsEndpointServes(t *testing.T) {
	r := newTestRouter(&stubSource{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}
