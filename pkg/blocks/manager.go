package blocks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cuemby/cairn/pkg/log"
	"github.com/cuemby/cairn/pkg/metrics"
	"github.com/cuemby/cairn/pkg/storage"
	"github.com/cuemby/cairn/pkg/types"
	"github.com/rs/zerolog"
)

const (
	// blockRWTimeout bounds a single peer read or write RPC, and is
	// also the delay used when scheduling resync after a decref drops
	// a block's reference count to zero.
	blockRWTimeout = 30 * time.Second

	// needBlockQueryTimeout bounds the NeedBlockQuery fanout used to
	// decide whether a locally unneeded block can be safely deleted.
	needBlockQueryTimeout = 5 * time.Second

	// resyncRetryTimeout is the backoff applied when a resync
	// iteration fails and must be retried.
	resyncRetryTimeout = 10 * time.Second

	// readMissRateLimitWindow bounds how often a read miss on the same
	// hash re-enqueues a resync entry, so a hot missing block cannot
	// flood the queue with duplicate immediate-resync entries.
	readMissRateLimitWindow = 30 * time.Second

	rcTreeName     = "block_local_rc"
	resyncTreeName = "block_local_resync_queue"
)

// Peer is the set of block-transfer RPCs the manager needs to perform
// against a remote node during resync. Implementations live in pkg/rpc.
type Peer interface {
	NeedBlockQuery(ctx context.Context, addr string, hash types.Hash) (bool, error)
	GetBlock(ctx context.Context, addr string, hash types.Hash) ([]byte, error)
	PutBlock(ctx context.Context, addr string, hash types.Hash, data []byte) error
}

// Topology resolves the replica set and replication factor that cover
// a given hash. Implementations live in pkg/replication.
type Topology interface {
	ReadNodes(hash types.Hash) []string
	ReplicationFactor() int
}

// RefChecker reports whether any BlockRef still references a hash.
// Implemented by pkg/version.BlockRefTable.
type RefChecker interface {
	HasActiveRefs(hash types.Hash) (bool, error)
}

// Handle bundles the collaborators the Manager needs but cannot be
// constructed with, because they are themselves constructed from a
// Manager (version.BlockRefTable calls back into BlockDecref). It is
// installed after both sides exist via SetHandle.
type Handle struct {
	Topology   Topology
	RefChecker RefChecker
	Peer       Peer
}

// Manager is the node-local content-addressed block store: on-disk
// blocks sharded by hash prefix, a reference count tree, and a resync
// queue reconciling the two.
type Manager struct {
	dataDir string
	rc      storage.Tree
	resync  storage.Tree

	writeMu sync.Mutex
	clock   *types.Clock
	logger  zerolog.Logger

	handle atomic.Pointer[Handle]

	readMissMu   sync.Mutex
	readMissSeen map[types.Hash]uint64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewManager opens (or creates) the rc and resync trees in store and
// returns a Manager rooted at dataDir. Call SetHandle before starting
// background workers that need to talk to peers.
func NewManager(dataDir string, store storage.Store) (*Manager, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("blocks: create data dir: %w", err)
	}

	rc, err := store.Tree(rcTreeName)
	if err != nil {
		return nil, fmt.Errorf("blocks: open rc tree: %w", err)
	}
	rc.SetMergeOperator(rcMergeOperator)

	resync, err := store.Tree(resyncTreeName)
	if err != nil {
		return nil, fmt.Errorf("blocks: open resync tree: %w", err)
	}

	return &Manager{
		dataDir:      dataDir,
		rc:           rc,
		resync:       resync,
		clock:        types.NewClock(),
		logger:       log.WithComponent("blocks"),
		readMissSeen: make(map[types.Hash]uint64),
		stopCh:       make(chan struct{}),
	}, nil
}

// SetHandle installs the peer/topology/ref-checker collaborators. It
// may be called exactly once, after both the Manager and its
// collaborators exist, to break their construction-order cycle.
func (m *Manager) SetHandle(h *Handle) {
	m.handle.Store(h)
}

func (m *Manager) currentHandle() *Handle {
	return m.handle.Load()
}

// blockDir returns the two-level hex-prefix shard directory for hash.
func (m *Manager) blockDir(hash types.Hash) string {
	a, b := hash.DirPrefix()
	return filepath.Join(m.dataDir, a, b)
}

func (m *Manager) blockPath(hash types.Hash) string {
	return filepath.Join(m.blockDir(hash), hash.String())
}

// WriteBlock stores data under hash, creating the shard directory as
// needed. Writing a hash that already exists on disk is a no-op; the
// caller is not required to verify data matches hash before calling,
// but resync and peer-fetch paths always do.
func (m *Manager) WriteBlock(hash types.Hash, data []byte) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.BlockWriteDuration)

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	dir := m.blockDir(hash)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("blocks: create shard dir: %w", err)
	}

	path := m.blockPath(hash)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("blocks: write block %s: %w", hash, err)
	}
	metrics.BlocksWrittenTotal.Inc()
	return nil
}

// ReadBlock reads and hash-verifies the block named by hash. A missing
// file schedules an immediate resync (rate-limited per hash) and
// returns a *NotFoundError. A hash mismatch deletes the corrupt file,
// schedules an immediate resync, and returns a *CorruptDataError.
func (m *Manager) ReadBlock(hash types.Hash) ([]byte, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.BlockReadDuration)

	path := m.blockPath(hash)
	data, err := os.ReadFile(path)
	if err != nil {
		m.enqueueReadMissResync(hash)
		metrics.BlocksReadTotal.WithLabelValues("not_found").Inc()
		return nil, &NotFoundError{Hash: hash}
	}

	if types.HashBytes(data) != hash {
		m.writeMu.Lock()
		_ = os.Remove(path)
		m.writeMu.Unlock()
		log.WithHash(m.logger, hash).Warn().Msg("corrupt block deleted, scheduling resync")
		if err := m.putToResync(hash, 0); err != nil {
			m.logger.Error().Err(err).Msg("failed to enqueue resync after corruption")
		}
		metrics.BlocksReadTotal.WithLabelValues("corrupt").Inc()
		return nil, &CorruptDataError{Hash: hash}
	}

	metrics.BlocksReadTotal.WithLabelValues("ok").Inc()
	return data, nil
}

// enqueueReadMissResync schedules an immediate resync for hash unless
// one was already scheduled for this hash within readMissRateLimitWindow.
func (m *Manager) enqueueReadMissResync(hash types.Hash) {
	now := m.clock.NowMsec()

	m.readMissMu.Lock()
	last, seen := m.readMissSeen[hash]
	if seen && now-last < uint64(readMissRateLimitWindow.Milliseconds()) {
		m.readMissMu.Unlock()
		return
	}
	m.readMissSeen[hash] = now
	m.readMissMu.Unlock()

	if err := m.putToResync(hash, 0); err != nil {
		m.logger.Error().Err(err).Msg("failed to enqueue resync after read miss")
	}
}

// NeedBlock reports whether hash has a positive local reference count
// but no file on disk, i.e. whether this node needs to fetch it.
func (m *Manager) NeedBlock(hash types.Hash) (bool, error) {
	needed, err := m.hasPositiveRC(hash)
	if err != nil {
		return false, err
	}
	if !needed {
		return false, nil
	}
	_, err = os.Stat(m.blockPath(hash))
	return os.IsNotExist(err), nil
}

func (m *Manager) hasPositiveRC(hash types.Hash) (bool, error) {
	v, ok, err := m.rc.Get(hash.Bytes())
	if err != nil {
		return false, fmt.Errorf("blocks: read rc for %s: %w", hash, err)
	}
	return ok && types.Uint64(v) > 0, nil
}

// BlockIncref increments the local reference count for hash. The
// first increment off of zero schedules a resync at 2x the normal
// block RW timeout, giving the write that is presumably in flight time
// to land before resync checks whether the block is actually present.
func (m *Manager) BlockIncref(hash types.Hash) error {
	old, _, err := m.rc.Get(hash.Bytes())
	if err != nil {
		return fmt.Errorf("blocks: read rc for %s: %w", hash, err)
	}
	if _, err := m.rc.Merge(hash.Bytes(), []byte{1}); err != nil {
		return fmt.Errorf("blocks: incref %s: %w", hash, err)
	}
	metrics.BlockIncrefTotal.Inc()

	wasZero := old == nil || types.Uint64(old) == 0
	if wasZero {
		return m.putToResync(hash, uint64(2*blockRWTimeout.Milliseconds()))
	}
	return nil
}

// BlockDecref decrements the local reference count for hash. Reaching
// zero schedules a resync at the normal block RW timeout, giving
// readers in flight time to finish before the block may be deleted.
func (m *Manager) BlockDecref(hash types.Hash) error {
	newVal, err := m.rc.Merge(hash.Bytes(), []byte{0})
	if err != nil {
		return fmt.Errorf("blocks: decref %s: %w", hash, err)
	}
	metrics.BlockDecrefTotal.Inc()

	if newVal == nil {
		return m.putToResync(hash, uint64(blockRWTimeout.Milliseconds()))
	}
	return nil
}

func rcMergeOperator(existing []byte, operand []byte) (result []byte, remove bool) {
	old := uint64(0)
	if existing != nil {
		old = types.Uint64(existing)
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
	return types.EncodeUint64(next), false
}

// putToResync enqueues hash to be examined by a resync worker no
// earlier than delayMillis from now.
func (m *Manager) putToResync(hash types.Hash, delayMillis uint64) error {
	when := m.clock.NowMsec() + delayMillis
	key := types.PutUint64(nil, when)
	key = append(key, hash.Bytes()...)
	if err := m.resync.Put(key, hash.Bytes()); err != nil {
		return fmt.Errorf("blocks: enqueue resync for %s: %w", hash, err)
	}
	return nil
}

// ResyncQueueDepth returns the approximate number of pending resync
// entries, for periodic metrics collection.
func (m *Manager) ResyncQueueDepth() (int, error) {
	n := 0
	err := m.resync.Scan(nil, nil, func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}
