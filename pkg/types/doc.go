/*
Package types defines the core data structures shared across cairn.

This package contains the fundamental value types that every other
package builds on: the content hash that keys every block, the
big-endian integer codecs used by the on-disk key encodings, and the
monotonic wall-clock source the resync queue is ordered by.

None of the types here know about storage, RPC, or replication; they
are pure data plus the encode/decode helpers that make them usable as
ordered keys in the embedded KV store.
*/
package types
