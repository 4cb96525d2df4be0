package metrics

import "github.com/prometheus/client_golang/prometheus"

// Materialization Prometheus metrics.
var (
	NodesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitegraph",
			Name:      "nodes_total",
			Help:      "Total nodes inserted into the graph store",
		},
		[]string{"kind"}, // "content", "taxonomy_term", "asset", "item_link"
	)

	DedupHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitegraph",
			Name:      "dedup_hits_total",
			Help:      "Insertions skipped because the id already existed",
		},
		[]string{"kind"}, // "content", "asset"
	)

	ReferencesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sitegraph",
			Name:      "references_total",
			Help:      "Collection reference declarations made",
		},
	)

	LoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sitegraph",
			Name:      "load_duration_seconds",
			Help:      "Duration of a full graph materialization",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)

// RegisterMaterializeMetrics registers the materialization metrics with the
// default registry. Called explicitly from the composition root, no init().
func RegisterMaterializeMetrics() {
	prometheus.MustRegister(
		NodesTotal,
		DedupHitsTotal,
		ReferencesTotal,
		LoadDuration,
	)
}
