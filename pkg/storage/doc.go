/*
Package storage provides the crash-safe, ordered embedded key-value
primitive cairn is built on.

Every other package in this module treats storage as a primitive: a
set of named, ordered "trees" inside one on-disk database, each
supporting plain get/put/delete, an atomic merge operator (for the
block reference count, so concurrent increments and decrements
commute without an external lock), an ordered range scan, and
PopMin (so the resync queue can be drained in due-time order).

The database itself is go.etcd.io/bbolt: a single-file B+tree with
ACID transactions, the same engine Warren used for cluster state. Here
it backs a narrower, lower-level abstraction than a cluster-state CRUD
store, because the Block Manager and resync queue need ordered byte
keys and an atomic increment/decrement, not a typed object store.
*/
package storage
