package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rcMergeOperator(existing []byte, operand []byte) ([]byte, bool) {
	old := uint64(0)
	if existing != nil {
		old = beUint64(existing)
	}
	var next uint64
	switch operand[0] {
	case 0:
		if old > 0 {
			next = old - 1
		}
	case 1:
		next = old + 1
	}
	if next == 0 {
		return nil, true
	}
	return beBytes(next), false
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func beBytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

func testStores(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		"mem": func() Store { return NewMemStore() },
		"bolt": func() Store {
			s, err := NewBoltStore(t.TempDir())
			require.NoError(t, err)
			return s
		},
	}
}

func TestTreeMergeIncrefDecref(t *testing.T) {
	for name, newStore := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			defer store.Close()

			tree, err := store.Tree("rc")
			require.NoError(t, err)
			tree.SetMergeOperator(rcMergeOperator)

			key := []byte("hash-a")
			v, err := tree.Merge(key, []byte{1})
			require.NoError(t, err)
			assert.Equal(t, uint64(1), beUint64(v))

			v, err = tree.Merge(key, []byte{1})
			require.NoError(t, err)
			assert.Equal(t, uint64(2), beUint64(v))

			v, err = tree.Merge(key, []byte{0})
			require.NoError(t, err)
			assert.Equal(t, uint64(1), beUint64(v))

			v, err = tree.Merge(key, []byte{0})
			require.NoError(t, err)
			assert.Nil(t, v)

			_, ok, err := tree.Get(key)
			require.NoError(t, err)
			assert.False(t, ok, "RC=0 must be represented as an absent key")
		})
	}
}

func TestTreeMergeSaturatesAtZero(t *testing.T) {
	store := NewMemStore()
	tree, _ := store.Tree("rc")
	tree.SetMergeOperator(rcMergeOperator)

	_, err := tree.Merge([]byte("h"), []byte{0})
	require.NoError(t, err)
	_, ok, _ := tree.Get([]byte("h"))
	assert.False(t, ok)
}

func TestPopMinOrdering(t *testing.T) {
	for name, newStore := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			defer store.Close()

			tree, err := store.Tree("queue")
			require.NoError(t, err)

			require.NoError(t, tree.Put([]byte{0, 0, 0, 0, 0, 0, 0, 30}, []byte("c")))
			require.NoError(t, tree.Put([]byte{0, 0, 0, 0, 0, 0, 0, 10}, []byte("a")))
			require.NoError(t, tree.Put([]byte{0, 0, 0, 0, 0, 0, 0, 20}, []byte("b")))

			_, v, ok, err := tree.PopMin()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "a", string(v))

			_, v, ok, err = tree.PopMin()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "b", string(v))
		})
	}
}

func TestPopMinEmpty(t *testing.T) {
	store := NewMemStore()
	tree, _ := store.Tree("queue")
	_, _, ok, err := tree.PopMin()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScanRange(t *testing.T) {
	store := NewMemStore()
	tree, _ := store.Tree("t")
	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, tree.Put([]byte(k), []byte(k)))
	}

	var got []string
	err := tree.Scan([]byte("b"), []byte("d"), func(k, v []byte) error {
		got = append(got, string(k))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, got)
}
