// Package metrics registers fxwire's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"fxwire/internal/pipeline"
)

type Metrics struct {
	registry *prometheus.Registry

	itemsDelivered *prometheus.CounterVec
	itemsSkipped   *prometheus.CounterVec
	itemsFailed    *prometheus.CounterVec
	jobRuns        *prometheus.CounterVec
	jobDuration    *prometheus.SummaryVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.itemsDelivered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fxwire",
		Name:      "items_delivered_total",
		Help:      "Items delivered and recorded, by source",
	}, []string{"source"})
	m.itemsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fxwire",
		Name:      "items_skipped_total",
		Help:      "Items skipped because the ledger already had them, by source",
	}, []string{"source"})
	m.itemsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fxwire",
		Name:      "items_failed_total",
		Help:      "Items whose delivery or recording failed, by source",
	}, []string{"source"})
	m.jobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fxwire",
		Name:      "job_runs_total",
		Help:      "Scheduled job invocations, by job",
	}, []string{"job"})
	m.jobDuration = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: "fxwire",
		Name:      "job_duration_seconds",
		Help:      "Time spent per scheduled job run",
	}, []string{"job"})

	m.registry.MustRegister(
		m.itemsDelivered,
		m.itemsSkipped,
		m.itemsFailed,
		m.jobRuns,
		m.jobDuration,
	)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveJob records one job invocation.
func (m *Metrics) ObserveJob(job string, seconds float64) {
	m.jobRuns.WithLabelValues(job).Inc()
	m.jobDuration.WithLabelValues(job).Observe(seconds)
}

// ObserveReport folds a pipeline report into the item counters.
func (m *Metrics) ObserveReport(r pipeline.Report) {
	src := string(r.Source)
	m.itemsDelivered.WithLabelValues(src).Add(float64(r.Delivered))
	m.itemsSkipped.WithLabelValues(src).Add(float64(r.Skipped))
	m.itemsFailed.WithLabelValues(src).Add(float64(r.Failed))
}
