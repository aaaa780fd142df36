// Package metrics defines and registers the Prometheus metrics exposed by
// cairn: block write/read counters and latencies, reference-count
// operations, resync queue depth and iteration outcomes, peer RPC call
// counts and latencies, version-table merges, and anti-entropy cycles.
//
// All metrics are registered at package init via prometheus.MustRegister
// and served from Handler, typically mounted at /metrics.
package metrics
