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

const blockRefTreeName = "block_ref_table"

// Decrefer is the narrow interface BlockRefTable needs back into the
// block manager: one BlockRef tombstone insertion decrefs exactly one
// hash. Implemented by blocks.Manager.
type Decrefer interface {
	BlockDecref(hash types.Hash) error
}

// BlockRefTable is the replicated side table recording which versions
// reference which blocks. Its own updated hook is what converts a
// BlockRef's live→deleted transition into a block_decref call, closing
// the loop from version deletion down to block reclamation.
type BlockRefTable struct {
	tree   storage.Tree
	decref Decrefer
	logger zerolog.Logger
}

// NewBlockRefTable opens the block_ref_table tree in store. decref is
// called whenever a BlockRef transitions into the deleted state.
func NewBlockRefTable(store storage.Store, decref Decrefer) (*BlockRefTable, error) {
	tree, err := store.Tree(blockRefTreeName)
	if err != nil {
		return nil, fmt.Errorf("version: open block_ref_table: %w", err)
	}
	return &BlockRefTable{
		tree:   tree,
		decref: decref,
		logger: log.WithComponent("version"),
	}, nil
}

// Insert merges ref into the table, invoking the decref cascade if
// this merge is what first marks the (block, version) edge deleted.
func (t *BlockRefTable) Insert(ref BlockRef) error {
	key := blockRefKey(ref.Block, ref.Version)

	existing, ok, err := t.tree.Get(key)
	if err != nil {
		return fmt.Errorf("version: read block ref: %w", err)
	}

	merged := ref
	wasDeleted := false
	if ok {
		var old BlockRef
		if err := json.Unmarshal(existing, &old); err != nil {
			return fmt.Errorf("version: decode block ref: %w", err)
		}
		wasDeleted = old.Deleted
		merged = old
		merged.Merge(&ref)
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("version: encode block ref: %w", err)
	}
	if err := t.tree.Put(key, data); err != nil {
		return fmt.Errorf("version: write block ref: %w", err)
	}

	if merged.Deleted && !wasDeleted {
		metrics.BlockRefCascadeDeletesTotal.Inc()
		if err := t.decref.BlockDecref(merged.Block); err != nil {
			return fmt.Errorf("version: cascade decref for %s: %w", merged.Block, err)
		}
	}
	return nil
}

// InsertMany inserts refs one at a time. A failure partway through
// leaves earlier insertions applied; callers retry the whole batch,
// which is safe since both the merge and the decref it may trigger are
// idempotent.
func (t *BlockRefTable) InsertMany(refs []BlockRef) error {
	for _, ref := range refs {
		if err := t.Insert(ref); err != nil {
			return err
		}
	}
	return nil
}

// HasActiveRefs reports whether any non-deleted BlockRef names hash,
// regardless of which version it belongs to. This is what lets
// resyncIter distinguish "nobody needs this block" from "only I
// stopped needing it".
func (t *BlockRefTable) HasActiveRefs(hash types.Hash) (bool, error) {
	start := hash.Bytes()
	end := nextPrefix(hash)

	active := false
	err := t.tree.Scan(start, end, func(_, v []byte) error {
		var ref BlockRef
		if err := json.Unmarshal(v, &ref); err != nil {
			return fmt.Errorf("version: decode block ref: %w", err)
		}
		if !ref.Deleted {
			active = true
		}
		return nil
	})
	return active, err
}

// nextPrefix increments hash as a big-endian integer and truncates the
// result after the byte where the carry stopped, giving the shortest
// key above every key that begins with hash, for use as an exclusive
// Scan upper bound. Returns nil (meaning "scan to
// the end of the tree") if hash is already the maximum value.
func nextPrefix(hash types.Hash) []byte {
	b := hash.Bytes()
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0xFF {
			b[i]++
			return b[:i+1]
		}
		b[i] = 0x00
	}
	return nil
}
