package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// Store lifecycle metrics
	initAttempts  *prometheus.CounterVec
	probeDuration prometheus.Histogram

	// State persistence metrics
	storeOps     *prometheus.CounterVec
	archivedDocs *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		initAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aatm_store_init_attempts_total",
				Help: "Total number of store initialization attempts by outcome",
			},
			[]string{"outcome"},
		),

		probeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "aatm_store_probe_duration_seconds",
				Help:    "Connectivity probe duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),

		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aatm_store_operations_total",
				Help: "Total number of document store operations",
			},
			[]string{"collection", "op", "status"},
		),

		archivedDocs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aatm_archived_documents_total",
				Help: "Total number of documents exported to cold archive",
			},
			[]string{"collection"},
		),
	}

	reg.MustRegister(r.initAttempts)
	reg.MustRegister(r.probeDuration)
	reg.MustRegister(r.storeOps)
	reg.MustRegister(r.archivedDocs)

	return r
}

// RecordInitAttempt records a store initialization attempt outcome.
func (r *Registry) RecordInitAttempt(outcome string) {
	r.initAttempts.WithLabelValues(outcome).Inc()
}

// ObserveProbe records a connectivity probe duration.
func (r *Registry) ObserveProbe(seconds float64) {
	r.probeDuration.Observe(seconds)
}

// RecordStoreOp records a document store operation.
func (r *Registry) RecordStoreOp(collection, op, status string) {
	r.storeOps.WithLabelValues(collection, op, status).Inc()
}

// RecordArchived records documents exported to the archive.
func (r *Registry) RecordArchived(collection string, count int) {
	r.archivedDocs.WithLabelValues(collection).Add(float64(count))
}
