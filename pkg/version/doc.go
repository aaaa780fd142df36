// Package version implements the replicated Version table and its
// BlockRef side table. A Version is a CRDT: merging two copies unions
// their offset-keyed block lists (first write wins on a conflicting
// offset) and makes deletion absorbing. Version deletion cascades into
// BlockRef tombstones, and BlockRef tombstones cascade into reference
// count decrements on the local Block Manager — the only path from a
// logical delete to physical block reclamation.
package version
