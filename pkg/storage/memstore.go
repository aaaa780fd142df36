package storage

import (
	"sort"
	"sync"
)

// MemStore is an in-memory Store used by unit tests that exercise
// tree semantics without touching disk. It implements the same
// ordering and merge-atomicity guarantees as BoltStore, backed by a
// map whose keys are sorted on each Scan and PopMin, instead of a
// B+tree.
type MemStore struct {
	mu    sync.Mutex
	trees map[string]*memTree
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{trees: make(map[string]*memTree)}
}

func (s *MemStore) Close() error { return nil }

func (s *MemStore) Tree(name string) (Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.trees[name]; ok {
		return t, nil
	}
	t := &memTree{data: make(map[string][]byte)}
	s.trees[name] = t
	return t, nil
}

type memTree struct {
	mu    sync.Mutex
	data  map[string][]byte
	merge MergeOperator
}

func (t *memTree) sortedKeys() []string {
	keys := make([]string, 0, len(t.data))
	for k := range t.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t *memTree) Get(key []byte) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (t *memTree) Put(key, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (t *memTree) Delete(key []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.data, string(key))
	return nil
}

func (t *memTree) SetMergeOperator(op MergeOperator) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.merge = op
}

func (t *memTree) Merge(key, operand []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing := t.data[string(key)]
	var existingArg []byte
	if existing != nil {
		existingArg = existing
	}
	newVal, remove := t.merge(existingArg, operand)
	if remove {
		delete(t.data, string(key))
		return nil, nil
	}
	t.data[string(key)] = append([]byte(nil), newVal...)
	return append([]byte(nil), newVal...), nil
}

func (t *memTree) Scan(start, end []byte, fn func(key, value []byte) error) error {
	t.mu.Lock()
	keys := t.sortedKeys()
	snapshot := make(map[string][]byte, len(t.data))
	for k, v := range t.data {
		snapshot[k] = v
	}
	t.mu.Unlock()

	for _, k := range keys {
		if start != nil && k < string(start) {
			continue
		}
		if end != nil && k >= string(end) {
			break
		}
		if err := fn([]byte(k), snapshot[k]); err != nil {
			return err
		}
	}
	return nil
}

func (t *memTree) PopMin() (key, value []byte, ok bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	keys := t.sortedKeys()
	if len(keys) == 0 {
		return nil, nil, false, nil
	}
	min := keys[0]
	v := t.data[min]
	delete(t.data, min)
	return []byte(min), append([]byte(nil), v...), true, nil
}
