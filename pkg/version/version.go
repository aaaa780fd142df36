package version

import (
	"fmt"
	"sort"

	"github.com/cuemby/cairn/pkg/types"
)

// VersionBlock names the block occupying one byte-offset slot of a Version.
type VersionBlock struct {
	Offset uint64     `json:"offset"`
	Hash   types.Hash `json:"hash"`
}

// Version is one logical object version: an ordered, offset-keyed list
// of the blocks composing it, plus the tombstone bit that marks it
// deleted. Version is a CRDT — see Merge. Blocks must only be mutated
// through AddBlock so the offset-sorted invariant holds; it is
// exported so the type round-trips through JSON without a custom
// marshaler.
type Version struct {
	UUID    types.Hash     `json:"uuid"`
	Bucket  string         `json:"bucket"`
	Key     string         `json:"key"`
	Deleted bool           `json:"deleted"`
	Blocks  []VersionBlock `json:"blocks"`
}

// NewVersion constructs a Version from an unordered block list,
// rejecting duplicate offsets with an error (unlike Merge, which keeps
// the first block at a conflicting offset and skips the rest).
func NewVersion(uuid types.Hash, bucket, key string, deleted bool, blocks []VersionBlock) (*Version, error) {
	v := &Version{UUID: uuid, Bucket: bucket, Key: key, Deleted: deleted}
	for _, b := range blocks {
		if err := v.AddBlock(b); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// AddBlock inserts b into the offset-sorted block list, returning an
// error if a block already occupies that offset.
func (v *Version) AddBlock(b VersionBlock) error {
	i := sort.Search(len(v.Blocks), func(i int) bool { return v.Blocks[i].Offset >= b.Offset })
	if i < len(v.Blocks) && v.Blocks[i].Offset == b.Offset {
		return fmt.Errorf("version: duplicate block at offset %d", b.Offset)
	}
	v.Blocks = append(v.Blocks, VersionBlock{})
	copy(v.Blocks[i+1:], v.Blocks[i:])
	v.Blocks[i] = b
	return nil
}

// Merge applies other onto v in place, implementing the Version CRDT:
//
//   - a tombstone is absorbing: once other.Deleted, v.Deleted becomes
//     true and its block list is cleared, regardless of what v held.
//   - otherwise, for each of other's blocks, insert it into v's list
//     only if v has no block at that offset yet (first write wins on a
//     conflicting offset). A v that is already deleted ignores new
//     blocks entirely — tombstones never resurrect content.
func (v *Version) Merge(other *Version) {
	if other.Deleted {
		v.Deleted = true
		v.Blocks = nil
		return
	}
	if v.Deleted {
		return
	}
	for _, b := range other.Blocks {
		i := sort.Search(len(v.Blocks), func(i int) bool { return v.Blocks[i].Offset >= b.Offset })
		if i < len(v.Blocks) && v.Blocks[i].Offset == b.Offset {
			continue
		}
		v.Blocks = append(v.Blocks, VersionBlock{})
		copy(v.Blocks[i+1:], v.Blocks[i:])
		v.Blocks[i] = b
	}
}
