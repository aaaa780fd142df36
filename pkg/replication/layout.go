package replication

import (
	"sort"
	"sync/atomic"

	"github.com/cuemby/cairn/pkg/types"
)

// RingEntry assigns one ring token to the node that owns it. Ring must
// be kept sorted by Token for NodesOf's walk to work.
type RingEntry struct {
	Token types.Hash
	Node  string
}

// Layout is one cluster-wide assignment of ring tokens to nodes, plus
// the partition granularity used to group hashes for anti-entropy.
// Building and gossiping a Layout cluster-wide is the membership
// service's job; this type only represents one snapshot of it.
type Layout struct {
	// PartitionBits determines the partition count (1<<PartitionBits)
	// and is read off the top bits of a hash's first byte.
	PartitionBits uint
	Ring          []RingEntry
}

// NodesOf walks the ring clockwise from hash, returning up to rf
// distinct node IDs — the replica set responsible for hash.
func (l *Layout) NodesOf(hash types.Hash, rf int) []string {
	if len(l.Ring) == 0 {
		return nil
	}

	start := sort.Search(len(l.Ring), func(i int) bool {
		return !l.Ring[i].Token.Less(hash)
	})

	seen := make(map[string]bool, rf)
	nodes := make([]string, 0, rf)
	for i := 0; i < len(l.Ring) && len(nodes) < rf; i++ {
		e := l.Ring[(start+i)%len(l.Ring)]
		if seen[e.Node] {
			continue
		}
		seen[e.Node] = true
		nodes = append(nodes, e.Node)
	}
	return nodes
}

// PartitionCount returns 1<<PartitionBits.
func (l *Layout) PartitionCount() int {
	return 1 << l.PartitionBits
}

// PartitionOf returns the index of the partition hash falls into.
func (l *Layout) PartitionOf(hash types.Hash) int {
	shift := 8 - l.PartitionBits
	return int(hash[0] >> shift)
}

// partitionFirstHash returns the smallest hash belonging to partition p.
func (l *Layout) partitionFirstHash(p int) types.Hash {
	var h types.Hash
	h[0] = byte(p) << (8 - l.PartitionBits)
	return h
}

// LayoutSnapshot holds the latest acknowledged Layout behind a
// lock-free pointer (the Go analog of an ArcSwap): readers take a
// local reference via Load and never observe a torn layout mid-update.
type LayoutSnapshot struct {
	ptr atomic.Pointer[Layout]
}

// NewLayoutSnapshot returns a snapshot initialized to layout.
func NewLayoutSnapshot(layout *Layout) *LayoutSnapshot {
	s := &LayoutSnapshot{}
	s.ptr.Store(layout)
	return s
}

// Load returns the current Layout. Safe for concurrent use with Store.
func (s *LayoutSnapshot) Load() *Layout {
	return s.ptr.Load()
}

// Store installs a new Layout, atomically visible to subsequent Loads.
func (s *LayoutSnapshot) Store(layout *Layout) {
	s.ptr.Store(layout)
}
