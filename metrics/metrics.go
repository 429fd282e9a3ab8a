// Package metrics exposes the driver loop's Prometheus instrumentation:
// edges processed, anomalies emitted, cluster migrations, cache
// evictions, and per-edge processing latency.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the process-wide instrumentation set.
type Metrics struct {
	EdgesProcessedTotal    prometheus.Counter
	BadInputTotal          prometheus.Counter
	AnomaliesTotal         prometheus.Counter
	ClusterMigrationsTotal prometheus.Counter
	CacheEvictionsTotal    prometheus.Counter
	EdgeProcessingDuration prometheus.Histogram
	ClusterSize            *prometheus.GaugeVec
	ClusterMeanScore       *prometheus.GaugeVec
}

// New registers and returns a fresh Metrics set under namespace/subsystem.
func New(namespace, subsystem string) *Metrics {
	return &Metrics{
		EdgesProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "edges_processed_total",
			Help:      "Total number of edges successfully processed.",
		}),
		BadInputTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "bad_input_total",
			Help:      "Total number of malformed input lines skipped (bad_input_policy=skip).",
		}),
		AnomaliesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "anomalies_total",
			Help:      "Total number of edges whose graph was classified as anomalous.",
		}),
		ClusterMigrationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cluster_migrations_total",
			Help:      "Total number of graphs reassigned to a different cluster.",
		}),
		CacheEvictionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_evictions_total",
			Help:      "Total number of edges evicted from the bounded edge cache.",
		}),
		EdgeProcessingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "edge_processing_duration_seconds",
			Help:      "Wall time to process one edge end to end.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
		ClusterSize: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cluster_size",
			Help:      "Current member count of a reference cluster.",
		}, []string{"cluster_id"}),
		ClusterMeanScore: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cluster_mean_anomaly_score",
			Help:      "Mean anomaly score of a reference cluster's current members, as of the last snapshot.",
		}, []string{"cluster_id"}),
	}
}

// ObserveEdge records one processed edge's latency.
func (m *Metrics) ObserveEdge(d time.Duration) {
	m.EdgeProcessingDuration.Observe(d.Seconds())
}

// Handler returns the HTTP handler serving the Prometheus exposition
// format.
func Handler() http.Handler {
	return promhttp.Handler()
}
