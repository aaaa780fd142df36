package version

import (
	"testing"

	"github.com/cuemby/cairn/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func h(b byte) types.Hash {
	var hash types.Hash
	hash[0] = b
	return hash
}

func TestNewVersionRejectsDuplicateOffset(t *testing.T) {
	_, err := NewVersion(h(1), "bucket", "key", false, []VersionBlock{
		{Offset: 0, Hash: h(10)},
		{Offset: 0, Hash: h(11)},
	})
	require.Error(t, err)
}

func TestAddBlockKeepsOffsetOrder(t *testing.T) {
	v, err := NewVersion(h(1), "bucket", "key", false, []VersionBlock{
		{Offset: 10, Hash: h(10)},
		{Offset: 0, Hash: h(0)},
		{Offset: 5, Hash: h(5)},
	})
	require.NoError(t, err)
	offsets := []uint64{}
	for _, b := range v.Blocks {
		offsets = append(offsets, b.Offset)
	}
	assert.Equal(t, []uint64{0, 5, 10}, offsets)
}

func TestMergeUnionsBlocksFirstWriteWins(t *testing.T) {
	v, err := NewVersion(h(1), "b", "k", false, []VersionBlock{{Offset: 0, Hash: h(1)}})
	require.NoError(t, err)

	other, err := NewVersion(h(1), "b", "k", false, []VersionBlock{
		{Offset: 0, Hash: h(99)}, // conflicting offset, should be ignored
		{Offset: 1, Hash: h(2)},
	})
	require.NoError(t, err)

	v.Merge(other)

	require.Len(t, v.Blocks, 2)
	assert.Equal(t, h(1), v.Blocks[0].Hash, "first write at offset 0 wins")
	assert.Equal(t, h(2), v.Blocks[1].Hash)
}

func TestMergeDeletionIsAbsorbing(t *testing.T) {
	v, err := NewVersion(h(1), "b", "k", false, []VersionBlock{{Offset: 0, Hash: h(1)}})
	require.NoError(t, err)

	tombstone, err := NewVersion(h(1), "b", "k", true, nil)
	require.NoError(t, err)

	v.Merge(tombstone)
	assert.True(t, v.Deleted)
	assert.Empty(t, v.Blocks)
}

func TestMergeDeletedVersionIgnoresNewBlocks(t *testing.T) {
	v, err := NewVersion(h(1), "b", "k", true, nil)
	require.NoError(t, err)

	other, err := NewVersion(h(1), "b", "k", false, []VersionBlock{{Offset: 0, Hash: h(5)}})
	require.NoError(t, err)

	v.Merge(other)
	assert.True(t, v.Deleted, "tombstone must not un-delete")
	assert.Empty(t, v.Blocks, "a deleted version never gains new blocks")
}
