package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports optimizer progress to Prometheus. It implements
// design.Recorder.
type Metrics struct {
	iterations prometheus.Counter
	penalties  prometheus.Counter
	bestLoss   prometheus.Gauge
}

// NewMetrics registers the optimizer metrics with reg. Pass
// prometheus.DefaultRegisterer to serve them via the /metrics endpoint.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boostgen_iterations_total",
			Help: "Design iterations evaluated, including penalized ones.",
		}),
		penalties: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boostgen_penalties_total",
			Help: "Design iterations that violated a requirement.",
		}),
		bestLoss: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "boostgen_best_loss_watts",
			Help: "Lowest predicted total loss found so far.",
		}),
	}
	reg.MustRegister(m.iterations, m.penalties, m.bestLoss)
	return m
}

// Iteration counts one objective evaluation.
func (m *Metrics) Iteration(penalty bool) {
	m.iterations.Inc()
	if penalty {
		m.penalties.Inc()
	}
}

// BestLoss records a new incumbent.
func (m *Metrics) BestLoss(loss float64) {
	m.bestLoss.Set(loss)
}
