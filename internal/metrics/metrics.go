package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RPCCallsTotal tracks upstream JSON-RPC calls by method.
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketscope_rpc_calls_total",
			Help: "Total number of upstream RPC calls",
		},
		[]string{"method"},
	)

	// RPCErrorsTotal tracks failed upstream JSON-RPC calls by method.
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketscope_rpc_errors_total",
			Help: "Total number of failed upstream RPC calls",
		},
		[]string{"method"},
	)

	// RPCLatency tracks upstream call latency.
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketscope_rpc_latency_seconds",
			Help:    "Upstream RPC call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// HTTPRequestsTotal tracks API requests by route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketscope_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPLatency tracks API request latency by route.
	HTTPLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketscope_http_latency_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// CacheLookupsTotal tracks cache hits and misses by cache name.
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketscope_cache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"cache", "result"},
	)

	// FallbacksTotal counts synthetic or mock payloads served instead of real data.
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketscope_fallbacks_total",
			Help: "Total number of fallback payloads served",
		},
		[]string{"component"},
	)

	// MarketsScannedTotal counts markets inspected by the withdrawal scanner.
	MarketsScannedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketscope_markets_scanned_total",
			Help: "Total number of markets inspected by the withdrawal scanner",
		},
		[]string{"result"},
	)

	// EventsIndexedTotal counts rows written by the indexer by event type.
	EventsIndexedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketscope_events_indexed_total",
			Help: "Total number of event rows written by the indexer",
		},
		[]string{"event"},
	)

	// IndexerRetriesTotal counts retried indexer RPC calls by operation and outcome.
	IndexerRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketscope_indexer_retries_total",
			Help: "Total number of indexer RPC retries by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	// IndexerLatestBlock tracks the last block the indexer checkpointed.
	IndexerLatestBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketscope_indexer_latest_block",
			Help: "Last block checkpointed by the indexer",
		},
	)
)
