package version

import "github.com/cuemby/cairn/pkg/types"

// BlockRef is the edge "this version contains this block": the row
// whose live/tombstone state drives the local reference count. Its
// primary key is the (Block, Version) pair.
type BlockRef struct {
	Block   types.Hash `json:"block"`
	Version types.Hash `json:"version"`
	Deleted bool       `json:"deleted"`
}

// Merge makes Deleted monotonic: once either side has seen the
// tombstone, it stays deleted. Tombstones dominate so a stale
// live copy arriving after a delete can never resurrect the edge.
func (r *BlockRef) Merge(other *BlockRef) {
	if other.Deleted {
		r.Deleted = true
	}
}

func blockRefKey(block, version types.Hash) []byte {
	key := make([]byte, 0, types.HashSize*2)
	key = append(key, block.Bytes()...)
	key = append(key, version.Bytes()...)
	return key
}
