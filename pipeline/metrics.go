package pipeline

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes batch progress counters on a Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	SubjectsProcessed prometheus.Counter
	SubjectsSkipped   prometheus.Counter
	SequencesWritten  prometheus.Counter
}

// NewMetrics creates and registers the batch counters.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SubjectsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sleepkit",
			Name:      "subjects_processed_total",
			Help:      "Subjects processed to completion.",
		}),
		SubjectsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sleepkit",
			Name:      "subjects_skipped_total",
			Help:      "Subjects skipped for missing channels, empty annotations, or alignment shortfalls.",
		}),
		SequencesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sleepkit",
			Name:      "sequences_written_total",
			Help:      "Packaged sequences written to disk.",
		}),
	}
	m.registry.MustRegister(m.SubjectsProcessed, m.SubjectsSkipped, m.SequencesWritten)
	return m
}

// Handler serves the metrics in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
