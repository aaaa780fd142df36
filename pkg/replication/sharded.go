package replication

import (
	"sort"

	"github.com/cuemby/cairn/pkg/types"
)

// SyncPartition names one anti-entropy unit: the half-open hash range
// [FirstHash, LastHash) and the nodes that currently store it.
type SyncPartition struct {
	Partition    int
	FirstHash    types.Hash
	LastHash     types.Hash
	StorageNodes []string
}

// Sharded is the replication policy: RF consecutive ring nodes hold
// every hash, with configured read/write quorum sizes. Reads and
// writes target the same node set.
type Sharded struct {
	RF           int
	ReadQuorumN  int
	WriteQuorumN int
	Layout       *LayoutSnapshot
}

// ReadNodes returns the replica set for hash.
func (s *Sharded) ReadNodes(hash types.Hash) []string {
	return s.Layout.Load().NodesOf(hash, s.RF)
}

// WriteNodes returns the replica set for hash (identical to ReadNodes
// under sharded replication: the same nodes serve both directions).
func (s *Sharded) WriteNodes(hash types.Hash) []string {
	return s.Layout.Load().NodesOf(hash, s.RF)
}

// ReplicationFactor returns RF, satisfying blocks.Topology.
func (s *Sharded) ReplicationFactor() int {
	return s.RF
}

// ReadQuorum returns the number of replicas that must answer a read.
func (s *Sharded) ReadQuorum() int {
	return s.ReadQuorumN
}

// WriteQuorum returns the number of replicas that must acknowledge a write.
func (s *Sharded) WriteQuorum() int {
	return s.WriteQuorumN
}

// MaxWriteErrors is how many write errors can be tolerated while still
// reaching write quorum.
func (s *Sharded) MaxWriteErrors() int {
	return s.RF - s.WriteQuorumN
}

// PartitionOf returns the partition hash belongs to.
func (s *Sharded) PartitionOf(hash types.Hash) int {
	return s.Layout.Load().PartitionOf(hash)
}

// SyncPartitions enumerates every partition with the node set
// currently responsible for storing it, for anti-entropy to walk. Each
// partition's LastHash equals the next partition's FirstHash, with the
// final partition closed at the all-0xFF hash.
func (s *Sharded) SyncPartitions() []SyncPartition {
	layout := s.Layout.Load()
	count := layout.PartitionCount()

	partitions := make([]SyncPartition, count)
	for p := 0; p < count; p++ {
		firstHash := layout.partitionFirstHash(p)
		nodes := append([]string(nil), layout.NodesOf(firstHash, s.RF)...)
		sort.Strings(nodes)
		partitions[p] = SyncPartition{
			Partition:    p,
			FirstHash:    firstHash,
			StorageNodes: nodes,
		}
	}

	for i := range partitions {
		if i+1 < len(partitions) {
			partitions[i].LastHash = partitions[i+1].FirstHash
		} else {
			partitions[i].LastHash = types.MaxHash
		}
	}

	return partitions
}
