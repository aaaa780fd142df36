package storage

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltStore implements Store on top of a single go.etcd.io/bbolt
// database file, one bucket per named tree.
type BoltStore struct {
	db *bolt.DB

	mu    sync.Mutex
	trees map[string]*boltTree
}

// NewBoltStore opens (creating if necessary) the database file
// <dataDir>/cairn.db.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "cairn.db")

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", dbPath, err)
	}

	return &BoltStore{db: db, trees: make(map[string]*boltTree)}, nil
}

// Close implements Store.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Tree implements Store.
func (s *BoltStore) Tree(name string) (Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.trees[name]; ok {
		return t, nil
	}

	bucket := []byte(name)
	err := s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create bucket %s: %w", name, err)
	}

	t := &boltTree{db: s.db, bucket: bucket}
	s.trees[name] = t
	return t, nil
}

// boltTree implements Tree over one bbolt bucket.
type boltTree struct {
	db     *bolt.DB
	bucket []byte

	mergeMu sync.RWMutex
	merge   MergeOperator
}

func (t *boltTree) Get(key []byte) ([]byte, bool, error) {
	var out []byte
	err := t.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(t.bucket).Get(key)
		if v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

func (t *boltTree) Put(key, value []byte) error {
	return t.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(t.bucket).Put(key, value)
	})
}

func (t *boltTree) Delete(key []byte) error {
	return t.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(t.bucket).Delete(key)
	})
}

func (t *boltTree) SetMergeOperator(op MergeOperator) {
	t.mergeMu.Lock()
	defer t.mergeMu.Unlock()
	t.merge = op
}

// Merge applies the tree's merge operator inside a single bbolt write
// transaction, so concurrent Merge calls on any key in this tree are
// linearized by bbolt's single-writer transaction lock — the
// "atomic merge operator" spec §3/§9 requires.
func (t *boltTree) Merge(key, operand []byte) ([]byte, error) {
	t.mergeMu.RLock()
	op := t.merge
	t.mergeMu.RUnlock()
	if op == nil {
		return nil, fmt.Errorf("storage: no merge operator set on tree %s", t.bucket)
	}

	var result []byte
	err := t.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.bucket)
		existing := b.Get(key)

		newVal, remove := op(existing, operand)
		if remove {
			result = nil
			return b.Delete(key)
		}
		result = append([]byte(nil), newVal...)
		return b.Put(key, newVal)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (t *boltTree) Scan(start, end []byte, fn func(key, value []byte) error) error {
	return t.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(t.bucket).Cursor()
		var k, v []byte
		if start == nil {
			k, v = c.First()
		} else {
			k, v = c.Seek(start)
		}
		for ; k != nil; k, v = c.Next() {
			if end != nil && compareBytes(k, end) >= 0 {
				break
			}
			if err := fn(k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (t *boltTree) PopMin() (key, value []byte, ok bool, err error) {
	err = t.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.bucket)
		c := b.Cursor()
		k, v := c.First()
		if k == nil {
			return nil
		}
		key = append([]byte(nil), k...)
		value = append([]byte(nil), v...)
		ok = true
		return b.Delete(k)
	})
	return key, value, ok, err
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}
