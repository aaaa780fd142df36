// Package replication implements the sharded replication policy: a
// fixed replication factor of consecutive nodes on a ring assigns each
// hash its replica set, and read/write quorum sizes bound how many of
// those replicas must answer for an operation to be considered
// durable. LayoutSnapshot holds the latest cluster layout behind a
// lock-free atomic pointer; building and gossiping that layout
// cluster-wide is out of scope here — this package only stores and
// serves whatever layout it is handed.
package replication
