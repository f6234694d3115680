package tapesoup

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Telemetry exports run progress. All metrics live on their own registry so
// several runs in one process don't collide.
type Telemetry struct {
	Registry *prometheus.Registry

	Epochs         prometheus.Counter
	Pairings       prometheus.Counter
	Skipped        prometheus.Counter
	NoiseMutations prometheus.Counter
	Rewinds        prometheus.Counter
	UniqueCells    prometheus.Gauge
	Epoch          prometheus.Gauge
	StepDuration   prometheus.Histogram
}

func NewTelemetry() *Telemetry {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Telemetry{
		Registry: registry,
		Epochs: factory.NewCounter(prometheus.CounterOpts{
			Name: "tapesoup_epochs_total",
			Help: "Evolution steps applied",
		}),
		Pairings: factory.NewCounter(prometheus.CounterOpts{
			Name: "tapesoup_pairings_total",
			Help: "Cross reactions run",
		}),
		Skipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "tapesoup_skipped_pairings_total",
			Help: "Cells whose drawn partner had already reacted",
		}),
		NoiseMutations: factory.NewCounter(prometheus.CounterOpts{
			Name: "tapesoup_noise_mutations_total",
			Help: "Cells or instructions overwritten by noise",
		}),
		Rewinds: factory.NewCounter(prometheus.CounterOpts{
			Name: "tapesoup_rewinds_total",
			Help: "Backward steps taken",
		}),
		UniqueCells: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tapesoup_unique_cells",
			Help: "Distinct programs on the grid",
		}),
		Epoch: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tapesoup_epoch",
			Help: "Current epoch",
		}),
		StepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tapesoup_step_duration_seconds",
			Help:    "Time to apply one evolution step",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
		}),
	}
}

func (t *Telemetry) ObserveStep(state *RunState, report StepReport, elapsed time.Duration) {
	t.Epochs.Inc()
	t.Pairings.Add(float64(len(report.Pairs)))
	t.Skipped.Add(float64(report.Skipped))
	t.NoiseMutations.Add(float64(report.Mutations))
	t.UniqueCells.Set(float64(state.UniqueCells))
	t.Epoch.Set(float64(state.Epoch))
	t.StepDuration.Observe(elapsed.Seconds())
}

func (t *Telemetry) ObserveRewind(state *RunState) {
	t.Rewinds.Inc()
	t.UniqueCells.Set(float64(state.UniqueCells))
	t.Epoch.Set(float64(state.Epoch))
}

func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.Registry, promhttp.HandlerOpts{})
}
