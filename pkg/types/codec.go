package types

import "encoding/binary"

// PutUint64 appends the big-endian encoding of v to dst, returning the
// extended slice. Big-endian is used throughout cairn's key encodings
// so that byte-lexicographic ordering (what the KV store sorts on)
// matches numeric ordering.
func PutUint64(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}

// Uint64 decodes a big-endian uint64 from the first 8 bytes of b.
func Uint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b[:8])
}

// EncodeUint64 returns the big-endian encoding of v as a new slice.
func EncodeUint64(v uint64) []byte {
	return PutUint64(make([]byte, 0, 8), v)
}
