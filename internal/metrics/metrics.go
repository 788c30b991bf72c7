package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "searchdsl"

// Cluster transport metrics.
var (
	ClusterRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_requests_total",
			Help:      "Requests sent to the search cluster by endpoint and outcome",
		},
		[]string{"endpoint", "status"},
	)

	ClusterRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cluster_request_duration_seconds",
			Help:      "Search cluster round trip duration in seconds, retries included",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	ClusterRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_retries_total",
			Help:      "Retried search cluster requests",
		},
		[]string{"endpoint"},
	)
)

// Response cache metrics.
var CacheTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "response_cache_total",
		Help:      "Response cache hits and misses",
	},
	[]string{"result"}, // "hit" / "miss"
)

// EmbeddingCacheTotal counts query embedding cache lookups.
var EmbeddingCacheTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "embedding_cache_total",
		Help:      "Query embedding cache hits and misses",
	},
	[]string{"result"}, // "hit" / "miss"
)

// DecodeFailuresTotal counts rejected query and aggregation documents.
var DecodeFailuresTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decode_failures_total",
		Help:      "Documents rejected by the query and aggregation decoders",
	},
	[]string{"target", "kind"},
)

// Embedding metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)
)

var registerOnce sync.Once

// Register registers the service metrics on the default registry. Safe to
// call more than once; main and tests both call it.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			ClusterRequestsTotal,
			ClusterRequestDuration,
			ClusterRetriesTotal,
			CacheTotal,
			EmbeddingCacheTotal,
			DecodeFailuresTotal,
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
		)
	})
}
