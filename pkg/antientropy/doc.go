// Package antientropy walks the replication partitions on a ticker,
// the way pkg/reconciler walks cluster state, dispatching one
// CompareAndPull call per (partition, node) pair. The actual Merkle
// comparison and pull logic is out of scope here; Walker only owns the
// schedule and the dispatch loop.
package antientropy
