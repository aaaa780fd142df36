// Package blocks implements the node-local content-addressed block
// store: on-disk block storage sharded by hash prefix, a reference
// count tree merged through an atomic CRDT operator, and a resync
// queue worked by a small pool of background goroutines that bring
// on-disk state back in line with the reference counts, including the
// quorum-gated protocol for deleting blocks no longer needed locally.
package blocks
