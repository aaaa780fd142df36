package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Block store metrics
	BlocksWrittenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cairn_blocks_written_total",
			Help: "Total number of blocks written to disk; idempotent no-op writes are not counted",
		},
	)

	BlocksReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cairn_blocks_read_total",
			Help: "Total number of read_block calls by outcome",
		},
		[]string{"outcome"}, // ok, not_found, corrupt
	)

	BlockWriteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cairn_block_write_duration_seconds",
			Help:    "Time taken to write a block to disk",
			Buckets: prometheus.DefBuckets,
		},
	)

	BlockReadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cairn_block_read_duration_seconds",
			Help:    "Time taken to read and verify a block from disk",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Reference-count metrics
	BlockIncrefTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cairn_block_incref_total",
			Help: "Total number of block_incref calls",
		},
	)

	BlockDecrefTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cairn_block_decref_total",
			Help: "Total number of block_decref calls",
		},
	)

	// Resync queue and worker metrics
	ResyncQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cairn_resync_queue_depth",
			Help: "Approximate number of pending resync queue entries",
		},
	)

	ResyncIterationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cairn_resync_iterations_total",
			Help: "Total number of resync_iter runs by outcome",
		},
		[]string{"outcome"}, // noop, fetched, deleted, quorum_failed, error
	)

	ResyncIterationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cairn_resync_iteration_duration_seconds",
			Help:    "Time taken for one resync_iter call",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Peer RPC metrics
	RPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cairn_rpc_requests_total",
			Help: "Total number of peer RPC calls by method and status",
		},
		[]string{"method", "status"},
	)

	RPCRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cairn_rpc_request_duration_seconds",
			Help:    "Peer RPC call duration in seconds by method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Version table metrics
	VersionMergesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cairn_version_merges_total",
			Help: "Total number of Version CRDT merges applied",
		},
	)

	BlockRefCascadeDeletesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cairn_block_ref_cascade_deletes_total",
			Help: "Total number of BlockRef tombstones synthesized by version deletion",
		},
	)

	// Anti-entropy metrics
	AntiEntropyCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cairn_anti_entropy_cycles_total",
			Help: "Total number of anti-entropy sweeps completed",
		},
	)

	AntiEntropyCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cairn_anti_entropy_cycle_duration_seconds",
			Help:    "Time taken for one anti-entropy sweep across all partitions",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		BlocksWrittenTotal,
		BlocksReadTotal,
		BlockWriteDuration,
		BlockReadDuration,
		BlockIncrefTotal,
		BlockDecrefTotal,
		ResyncQueueDepth,
		ResyncIterationsTotal,
		ResyncIterationDuration,
		RPCRequestsTotal,
		RPCRequestDuration,
		VersionMergesTotal,
		BlockRefCascadeDeletesTotal,
		AntiEntropyCyclesTotal,
		AntiEntropyCycleDuration,
	)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
