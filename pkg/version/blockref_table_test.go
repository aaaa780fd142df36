package version

import (
	"testing"

	"github.com/cuemby/cairn/pkg/storage"
	"github.com/cuemby/cairn/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDecrefer struct {
	calls []types.Hash
}

func (f *fakeDecrefer) BlockDecref(hash types.Hash) error {
	f.calls = append(f.calls, hash)
	return nil
}

func TestBlockRefInsertCascadesDecrefOnlyOnce(t *testing.T) {
	store := storage.NewMemStore()
	decref := &fakeDecrefer{}
	table, err := NewBlockRefTable(store, decref)
	require.NoError(t, err)

	block := h(1)
	vid := h(2)

	require.NoError(t, table.Insert(BlockRef{Block: block, Version: vid, Deleted: false}))
	assert.Empty(t, decref.calls, "a live ref must not trigger a decref")

	require.NoError(t, table.Insert(BlockRef{Block: block, Version: vid, Deleted: true}))
	assert.Equal(t, []types.Hash{block}, decref.calls)

	// Re-inserting the tombstone must not cascade a second decref.
	require.NoError(t, table.Insert(BlockRef{Block: block, Version: vid, Deleted: true}))
	assert.Equal(t, []types.Hash{block}, decref.calls)
}

func TestHasActiveRefsOnlyTrueWhileALiveRefExists(t *testing.T) {
	store := storage.NewMemStore()
	decref := &fakeDecrefer{}
	table, err := NewBlockRefTable(store, decref)
	require.NoError(t, err)

	block := h(3)

	active, err := table.HasActiveRefs(block)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, table.Insert(BlockRef{Block: block, Version: h(10), Deleted: false}))
	active, err = table.HasActiveRefs(block)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, table.Insert(BlockRef{Block: block, Version: h(10), Deleted: true}))
	active, err = table.HasActiveRefs(block)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestHasActiveRefsDoesNotCrossBlockBoundary(t *testing.T) {
	store := storage.NewMemStore()
	decref := &fakeDecrefer{}
	table, err := NewBlockRefTable(store, decref)
	require.NoError(t, err)

	blockA := h(5)
	blockB := h(6)

	require.NoError(t, table.Insert(BlockRef{Block: blockB, Version: h(1), Deleted: false}))

	active, err := table.HasActiveRefs(blockA)
	require.NoError(t, err)
	assert.False(t, active, "a ref on a different block must not count")
}

func TestInsertManyAppliesAllRefs(t *testing.T) {
	store := storage.NewMemStore()
	decref := &fakeDecrefer{}
	table, err := NewBlockRefTable(store, decref)
	require.NoError(t, err)

	refs := []BlockRef{
		{Block: h(1), Version: h(100), Deleted: true},
		{Block: h(2), Version: h(100), Deleted: true},
	}
	require.NoError(t, table.InsertMany(refs))
	assert.ElementsMatch(t, []types.Hash{h(1), h(2)}, decref.calls)
}
