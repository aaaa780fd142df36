package node

import (
	"testing"

	"github.com/cuemby/cairn/pkg/replication"
	"github.com/cuemby/cairn/pkg/storage"
	"github.com/cuemby/cairn/pkg/types"
	"github.com/cuemby/cairn/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func soloLayout() *replication.Layout {
	return &replication.Layout{
		PartitionBits: 1,
		Ring:          []replication.RingEntry{{Token: types.ZeroHash, Node: "solo"}},
	}
}

func newTestNode(t *testing.T) *Node {
	t.Helper()
	n, err := New(Config{
		DataDir:           t.TempDir(),
		ReplicationFactor: 1,
		ReadQuorum:        1,
		WriteQuorum:       1,
		Layout:            soloLayout(),
	}, storage.NewMemStore())
	require.NoError(t, err)
	return n
}

func TestNewWiresHandleSoBlockManagerCanQueryRefs(t *testing.T) {
	n := newTestNode(t)

	hash := types.HashBytes([]byte("payload"))
	require.NoError(t, n.Blocks.WriteBlock(hash, []byte("payload")))
	require.NoError(t, n.Blocks.BlockIncref(hash))

	uuid := types.HashBytes([]byte("version-1"))
	v, err := version.NewVersion(uuid, "bucket", "key", false, []version.VersionBlock{{Offset: 0, Hash: hash}})
	require.NoError(t, err)
	require.NoError(t, n.Versions.Merge(v))

	has, err := n.BlockRefs.HasActiveRefs(hash)
	require.NoError(t, err)
	assert.False(t, has, "version table never inserted a BlockRef until deletion")
}

func TestDeletingVersionCascadesToDecref(t *testing.T) {
	n := newTestNode(t)

	hash := types.HashBytes([]byte("payload-2"))
	require.NoError(t, n.Blocks.WriteBlock(hash, []byte("payload-2")))
	require.NoError(t, n.Blocks.BlockIncref(hash))

	uuid := types.HashBytes([]byte("version-2"))
	v, err := version.NewVersion(uuid, "bucket", "key", false, []version.VersionBlock{{Offset: 0, Hash: hash}})
	require.NoError(t, err)
	require.NoError(t, n.Versions.Merge(v))

	deleted, err := version.NewVersion(uuid, "bucket", "key", true, nil)
	require.NoError(t, err)
	require.NoError(t, n.Versions.Merge(deleted))

	needed, err := n.Blocks.NeedBlock(hash)
	require.NoError(t, err)
	assert.False(t, needed, "decref dropped the block's reference count to zero")
}

func TestStartAndStop(t *testing.T) {
	n := newTestNode(t)
	n.Start()
	n.Stop()
}
