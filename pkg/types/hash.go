package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashSize is the fixed width of a content hash in bytes.
const HashSize = 32

// Hash is a 32-byte content digest. Equality and ordering are
// byte-lexicographic. A Hash doubles as a filesystem path component
// (hex-encoded) and as the partition key for every table in this
// package's callers.
type Hash [HashSize]byte

// ZeroHash is the all-zero hash, used as a range-scan lower bound.
var ZeroHash Hash

// MaxHash is the all-0xFF hash, used to close the final replication
// partition in Sharded.SyncPartitions.
var MaxHash = func() Hash {
	var h Hash
	for i := range h {
		h[i] = 0xFF
	}
	return h
}()

// HashBytes computes the content hash of data.
func HashBytes(data []byte) Hash {
	return Hash(sha256.Sum256(data))
}

// String returns the hex encoding of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns the hash as a byte slice backed by a copy, safe to
// retain past the lifetime of any buffer h was read from.
func (h Hash) Bytes() []byte {
	out := make([]byte, HashSize)
	copy(out, h[:])
	return out
}

// Less reports whether h sorts strictly before other, lexicographically.
func (h Hash) Less(other Hash) bool {
	for i := range h {
		if h[i] != other[i] {
			return h[i] < other[i]
		}
	}
	return false
}

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// HashFromBytes copies b into a Hash. b must be exactly HashSize bytes.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("types: invalid hash length %d, want %d", len(b), HashSize)
	}
	copy(h[:], b)
	return h, nil
}

// HashFromHex decodes a hex-encoded hash, as produced by String.
func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("types: invalid hash hex %q: %w", s, err)
	}
	return HashFromBytes(b)
}

// DirPrefix returns the two hex-encoded path components used to shard
// the on-disk block directory: <hex(h[0])>/<hex(h[1])>.
func (h Hash) DirPrefix() (string, string) {
	return hex.EncodeToString(h[0:1]), hex.EncodeToString(h[1:2])
}
