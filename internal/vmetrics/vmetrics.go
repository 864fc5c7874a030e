// Package vmetrics exposes the Prometheus metrics the core emits:
// counters for seal/unseal/query-compose calls and a histogram for
// key-service round-trip latency. Adapted from the teacher's
// pkg/metrics, renamed to this library's domain.
package vmetrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SealsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vaultindex_seals_total",
			Help: "Total number of records sealed",
		},
	)

	UnsealsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vaultindex_unseals_total",
			Help: "Total number of records unsealed",
		},
	)

	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaultindex_queries_total",
			Help: "Total number of queries composed, by outcome",
		},
		[]string{"outcome"},
	)

	TermsEmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vaultindex_terms_emitted_total",
			Help: "Total number of index terms emitted across all seals",
		},
	)

	KeyServiceLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vaultindex_keyservice_latency_seconds",
			Help:    "Key-service round-trip latency in seconds, by operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(SealsTotal)
	prometheus.MustRegister(UnsealsTotal)
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(TermsEmitted)
	prometheus.MustRegister(KeyServiceLatency)
}
