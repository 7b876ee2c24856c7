package brackets

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records cache efficiency and operation timing.  A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// OperationDuration tracks wall time of governed operations.
	// Labels: op (scan, selection)
	OperationDuration *prometheus.HistogramVec

	// OperationOverruns counts governed operations slower than their budget.
	// Labels: op
	OperationOverruns *prometheus.CounterVec

	// OperationPanics counts governed operations that panicked.
	// Labels: op
	OperationPanics *prometheus.CounterVec

	// CacheRequests counts cache lookups.
	// Labels: result (hit, miss)
	CacheRequests *prometheus.CounterVec

	// CacheEntries is the number of documents currently cached.
	CacheEntries prometheus.Gauge

	// DocumentsSkipped counts documents refused by the size gate.
	DocumentsSkipped prometheus.Counter
}

// NewMetrics creates the metrics and registers them with reg.  A nil reg
// creates unregistered collectors, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OperationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "acme_brackets",
				Name:      "operation_duration_seconds",
				Help:      "Duration of bracket scan and selection operations in seconds",
				Buckets:   []float64{.0001, .0005, .001, .002, .005, .01, .025, .05, .1, .5},
			},
			[]string{"op"},
		),
		OperationOverruns: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "acme_brackets",
				Name:      "operation_overruns_total",
				Help:      "Total number of operations that exceeded their time budget",
			},
			[]string{"op"},
		),
		OperationPanics: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "acme_brackets",
				Name:      "operation_panics_total",
				Help:      "Total number of operations that panicked and were recovered",
			},
			[]string{"op"},
		),
		CacheRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "acme_brackets",
				Name:      "cache_requests_total",
				Help:      "Total number of document cache lookups by result",
			},
			[]string{"result"},
		),
		CacheEntries: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "acme_brackets",
				Name:      "cache_entries",
				Help:      "Number of documents with cached bracket marks",
			},
		),
		DocumentsSkipped: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "acme_brackets",
				Name:      "documents_skipped_total",
				Help:      "Total number of documents skipped for exceeding the size limit",
			},
		),
	}
}

func (m *Metrics) cacheHit() {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues("hit").Inc()
}

func (m *Metrics) cacheMiss() {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues("miss").Inc()
}

func (m *Metrics) setEntries(n int) {
	if m == nil {
		return
	}
	m.CacheEntries.Set(float64(n))
}

func (m *Metrics) skipped() {
	if m == nil {
		return
	}
	m.DocumentsSkipped.Inc()
}

func (m *Metrics) observe(op Op, seconds float64, overrun bool) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(op.String()).Observe(seconds)
	if overrun {
		m.OperationOverruns.WithLabelValues(op.String()).Inc()
	}
}

func (m *Metrics) panicked(op Op) {
	if m == nil {
		return
	}
	m.OperationPanics.WithLabelValues(op.String()).Inc()
}
