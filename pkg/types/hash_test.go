package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashBytesRoundTrip(t *testing.T) {
	h := HashBytes([]byte("hello world"))
	require.NotEqual(t, ZeroHash, h)

	back, err := HashFromHex(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, back)
}

func TestHashEmptyAllowed(t *testing.T) {
	h := HashBytes([]byte{})
	assert.NotEqual(t, ZeroHash, h, "hash of empty bytes is a well-defined, non-zero value")
}

func TestHashLess(t *testing.T) {
	a := Hash{0x01}
	b := Hash{0x02}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.False(t, a.Less(a))
}

func TestHashFromBytesWrongLength(t *testing.T) {
	_, err := HashFromBytes([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDirPrefix(t *testing.T) {
	h, err := HashFromHex("aabbccdd00000000000000000000000000000000000000000000000000000000"[:64])
	require.NoError(t, err)
	p0, p1 := h.DirPrefix()
	assert.Equal(t, "aa", p0)
	assert.Equal(t, "bb", p1)
}

func TestUint64Codec(t *testing.T) {
	v := uint64(1 << 40)
	enc := EncodeUint64(v)
	assert.Len(t, enc, 8)
	assert.Equal(t, v, Uint64(enc))
}

func TestClockMonotonic(t *testing.T) {
	c := NewClock()
	prev := c.NowMsec()
	for i := 0; i < 1000; i++ {
		next := c.NowMsec()
		assert.GreaterOrEqual(t, next, prev)
		prev = next
	}
}
