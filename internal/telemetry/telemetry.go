// Package telemetry registers the research pipeline's Prometheus
// metrics against a private registry, exposing Handler() for an
// external HTTP surface to mount. The core itself never listens on a
// socket; this package only instruments it.
//
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the pipeline's small set of counters/histograms.
type Metrics struct {
	registry *prometheus.Registry

	GenomesEvaluated prometheus.Counter
	GenerationsRun   prometheus.Counter
	PipelineDuration prometheus.Histogram
	CompositeScore   prometheus.Gauge
}

// New builds a Metrics set registered against a fresh, private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		GenomesEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stratcore_genomes_evaluated_total",
			Help: "Total number of genomes evaluated by the genetic optimizer.",
		}),
		GenerationsRun: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stratcore_generations_run_total",
			Help: "Total number of evolution generations completed.",
		}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stratcore_pipeline_duration_seconds",
			Help:    "Wall-clock duration of a full research pipeline run.",
			Buckets: prometheus.DefBuckets,
		}),
		CompositeScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stratcore_top_composite_score",
			Help: "Composite ranking score of the top-ranked strategy in the last pipeline run.",
		}),
	}

	reg.MustRegister(m.GenomesEvaluated, m.GenerationsRun, m.PipelineDuration, m.CompositeScore)
	return m
}

// Handler returns the HTTP handler an external surface can mount to
// expose these metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
