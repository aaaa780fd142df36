package blocks

import "github.com/cuemby/cairn/pkg/types"

// CorruptDataError is returned by ReadBlock when the bytes on disk do
// not hash to the name under which they were stored. The corrupt file
// has been deleted and the hash enqueued for resync by the time this
// error is returned.
type CorruptDataError struct {
	Hash types.Hash
}

func (e *CorruptDataError) Error() string {
	return "block " + e.Hash.String() + " is corrupted on disk"
}

// NotFoundError is returned by ReadBlock when no file exists for hash.
type NotFoundError struct {
	Hash types.Hash
}

func (e *NotFoundError) Error() string {
	return "block " + e.Hash.String() + " not found locally"
}
