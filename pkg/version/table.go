package version

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/cairn/pkg/log"
	"github.com/cuemby/cairn/pkg/metrics"
	"github.com/cuemby/cairn/pkg/storage"
	"github.com/cuemby/cairn/pkg/types"
	"github.com/rs/zerolog"
)

const versionTreeName = "version_table"

// Table is the replicated Version table. Every write merges the
// incoming entry into whatever is already stored for that UUID (or
// stores it outright if the UUID is new), then runs the updated hook
// that propagates a live→deleted transition down into BlockRef
// tombstones.
type Table struct {
	tree     storage.Tree
	blockRef *BlockRefTable
	logger   zerolog.Logger
}

// NewTable opens the version_table tree in store. blockRef receives
// the BlockRef tombstones synthesized by cascading deletes.
func NewTable(store storage.Store, blockRef *BlockRefTable) (*Table, error) {
	tree, err := store.Tree(versionTreeName)
	if err != nil {
		return nil, fmt.Errorf("version: open version_table: %w", err)
	}
	return &Table{
		tree:     tree,
		blockRef: blockRef,
		logger:   log.WithComponent("version"),
	}, nil
}

// Get returns the Version stored for uuid, or ok=false if none exists.
func (t *Table) Get(uuid types.Hash) (*Version, bool, error) {
	data, ok, err := t.tree.Get(uuid.Bytes())
	if err != nil {
		return nil, false, fmt.Errorf("version: read %s: %w", uuid, err)
	}
	if !ok {
		return nil, false, nil
	}
	var v Version
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false, fmt.Errorf("version: decode %s: %w", uuid, err)
	}
	return &v, true, nil
}

// Merge applies incoming onto whatever Version is stored for
// incoming.UUID (merging per the Version CRDT, or storing it outright
// if the UUID is new), then runs the updated hook.
func (t *Table) Merge(incoming *Version) error {
	old, hadOld, err := t.Get(incoming.UUID)
	if err != nil {
		return err
	}

	var oldForHook *Version
	merged := incoming
	if hadOld {
		snapshot := *old
		snapshot.Blocks = append([]VersionBlock(nil), old.Blocks...)
		oldForHook = &snapshot
		merged = old
		merged.Merge(incoming)
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("version: encode %s: %w", incoming.UUID, err)
	}
	if err := t.tree.Put(incoming.UUID.Bytes(), data); err != nil {
		return fmt.Errorf("version: write %s: %w", incoming.UUID, err)
	}
	metrics.VersionMergesTotal.Inc()

	return t.updated(oldForHook, merged)
}

// updated propagates a live→deleted transition into BlockRef
// tombstones for every block the version held just before it was
// deleted. It is the only path by which a logical delete reaches
// physical block reclamation.
func (t *Table) updated(old, new *Version) error {
	if old == nil || new == nil {
		return nil
	}
	if !(new.Deleted && !old.Deleted) {
		return nil
	}

	refs := make([]BlockRef, 0, len(old.Blocks))
	for _, b := range old.Blocks {
		refs = append(refs, BlockRef{Block: b.Hash, Version: old.UUID, Deleted: true})
	}
	if len(refs) == 0 {
		return nil
	}
	if err := t.blockRef.InsertMany(refs); err != nil {
		return fmt.Errorf("version: propagate deletion of %s: %w", old.UUID, err)
	}
	t.logger.Debug().Str("uuid", old.UUID.String()).Int("blocks", len(refs)).Msg("propagated version deletion to block refs")
	return nil
}

// MatchesLiveFilter reports whether entry is a live (non-tombstone)
// Version, the default scan filter for listing a bucket's contents.
func MatchesLiveFilter(entry *Version) bool {
	return !entry.Deleted
}
