package replication

import (
	"testing"

	"github.com/cuemby/cairn/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenHash(b byte) types.Hash {
	var h types.Hash
	h[0] = b
	return h
}

func threeNodeLayout() *Layout {
	return &Layout{
		PartitionBits: 4,
		Ring: []RingEntry{
			{Token: tokenHash(0x10), Node: "node-a"},
			{Token: tokenHash(0x50), Node: "node-b"},
			{Token: tokenHash(0x90), Node: "node-c"},
			{Token: tokenHash(0xD0), Node: "node-a"},
		},
	}
}

func TestNodesOfReturnsDistinctConsecutiveOwners(t *testing.T) {
	layout := threeNodeLayout()
	nodes := layout.NodesOf(tokenHash(0x00), 3)
	assert.Equal(t, []string{"node-a", "node-b", "node-c"}, nodes)
}

func TestNodesOfWrapsAroundRing(t *testing.T) {
	layout := threeNodeLayout()
	nodes := layout.NodesOf(tokenHash(0xE0), 3)
	assert.Equal(t, []string{"node-a", "node-b", "node-c"}, nodes, "must wrap past the end of the ring")
}

func TestShardedReadAndWriteNodesAgree(t *testing.T) {
	snap := NewLayoutSnapshot(threeNodeLayout())
	s := &Sharded{RF: 2, ReadQuorumN: 1, WriteQuorumN: 2, Layout: snap}

	hash := tokenHash(0x20)
	assert.Equal(t, s.ReadNodes(hash), s.WriteNodes(hash))
}

func TestMaxWriteErrors(t *testing.T) {
	snap := NewLayoutSnapshot(threeNodeLayout())
	s := &Sharded{RF: 3, ReadQuorumN: 2, WriteQuorumN: 2, Layout: snap}
	assert.Equal(t, 1, s.MaxWriteErrors())
}

func TestSyncPartitionsChainedBounds(t *testing.T) {
	snap := NewLayoutSnapshot(threeNodeLayout())
	s := &Sharded{RF: 2, ReadQuorumN: 1, WriteQuorumN: 2, Layout: snap}

	partitions := s.SyncPartitions()
	require.Len(t, partitions, 16) // 1<<4 partition bits

	for i := 0; i+1 < len(partitions); i++ {
		assert.Equal(t, partitions[i+1].FirstHash, partitions[i].LastHash)
	}
	assert.Equal(t, types.MaxHash, partitions[len(partitions)-1].LastHash)
	assert.Equal(t, types.ZeroHash, partitions[0].FirstHash)
}

func TestPartitionOfMatchesTopBits(t *testing.T) {
	snap := NewLayoutSnapshot(threeNodeLayout())
	s := &Sharded{RF: 2, ReadQuorumN: 1, WriteQuorumN: 1, Layout: snap}

	var hash types.Hash
	hash[0] = 0x35 // top 4 bits = 0x3
	assert.Equal(t, 3, s.PartitionOf(hash))
}

func TestLayoutSnapshotStoreIsVisibleToLoad(t *testing.T) {
	snap := NewLayoutSnapshot(threeNodeLayout())
	newLayout := &Layout{PartitionBits: 1, Ring: []RingEntry{{Token: types.ZeroHash, Node: "solo"}}}
	snap.Store(newLayout)
	assert.Same(t, newLayout, snap.Load())
}
