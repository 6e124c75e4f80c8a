package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gi_pumptest"

// Reasons a well is skipped in the drawdown phase.
const (
	SkipMalformed = "malformed"
	SkipEmpty     = "empty"
	SkipRender    = "render"
)

// Metrics holds the Prometheus counters and gauges for one figure run.
// Each instance owns its registry so a run can be dumped to a textfile
// without the process-wide collectors.
type Metrics struct {
	Registry *prometheus.Registry

	WellsLoaded        prometheus.Counter
	WellsSkipped       *prometheus.CounterVec // labels: reason={malformed,empty,render}
	DerivativeFailures prometheus.Counter
	FiguresWritten     *prometheus.CounterVec // labels: kind={well,aggregate,contour,screen,workbook}
	PhaseDuration      *prometheus.GaugeVec   // labels: phase={drawdown,contour,screen,export}
	RunSucceeded       prometheus.Gauge
}

// NewMetrics creates all run metrics and registers them with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		WellsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wells_loaded_total",
			Help:      "Observation files parsed successfully.",
		}),
		WellsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wells_skipped_total",
			Help:      "Observation files skipped, by reason.",
		}, []string{"reason"}),
		DerivativeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "derivative_failures_total",
			Help:      "Wells plotted without a derivative because the spline fit failed.",
		}),
		FiguresWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "figures_written_total",
			Help:      "Output files written, by kind.",
		}, []string{"kind"}),
		PhaseDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Wall time of each phase of the last run.",
		}, []string{"phase"}),
		RunSucceeded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_succeeded",
			Help:      "1 when every enabled phase completed, 0 otherwise.",
		}),
	}

	m.Registry.MustRegister(
		m.WellsLoaded,
		m.WellsSkipped,
		m.DerivativeFailures,
		m.FiguresWritten,
		m.PhaseDuration,
		m.RunSucceeded,
	)

	return m
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
