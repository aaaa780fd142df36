package storage

// MergeOperator combines an existing value (nil if the key is absent)
// with an operand into a new value. Returning (nil, true) deletes the
// key — this is how the block reference count tree represents RC=0:
// as an absent key rather than a stored zero (spec §3).
//
// A MergeOperator must be pure and commutative/associative over the
// operand sequence it will see, since Merge calls may be interleaved
// arbitrarily across concurrent callers.
type MergeOperator func(existing []byte, operand []byte) (result []byte, remove bool)

// Tree is one ordered, named key-value collection inside a Store. Keys
// sort byte-lexicographically, which is what lets the resync queue use
// a big-endian timestamp prefix to get due-time ordering for free.
type Tree interface {
	// Get returns the value for key, or (nil, false) if absent.
	Get(key []byte) ([]byte, bool, error)

	// Put stores value under key, replacing any existing value.
	Put(key, value []byte) error

	// Delete removes key. It is not an error if key is absent.
	Delete(key []byte) error

	// SetMergeOperator installs the merge operator used by Merge.
	// Must be called once before any Merge call; it is not
	// goroutine-safe to change concurrently with in-flight merges.
	SetMergeOperator(op MergeOperator)

	// Merge atomically applies the tree's merge operator to the
	// existing value for key (nil if absent) and operand, stores the
	// result (or deletes key, if the operator asked to remove it),
	// and returns the resulting value (nil if removed).
	Merge(key, operand []byte) ([]byte, error)

	// Scan calls fn for every key in [start, end) in ascending order.
	// A nil end means "to the end of the tree". fn's returned error
	// aborts the scan and is returned from Scan.
	Scan(start, end []byte, fn func(key, value []byte) error) error

	// PopMin atomically removes and returns the lowest key in the
	// tree. ok is false if the tree is empty.
	PopMin() (key, value []byte, ok bool, err error)
}

// Store opens named Trees within one crash-safe embedded database.
type Store interface {
	// Tree returns the named tree, creating it if it does not yet
	// exist. The same name always returns a tree over the same
	// underlying data.
	Tree(name string) (Tree, error)

	// Close releases the underlying database handle.
	Close() error
}
