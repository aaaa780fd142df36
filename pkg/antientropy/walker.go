package antientropy

import (
	"context"
	"sync"
	"time"

	"github.com/cuemby/cairn/pkg/log"
	"github.com/cuemby/cairn/pkg/metrics"
	"github.com/cuemby/cairn/pkg/replication"
	"github.com/rs/zerolog"
)

const tickInterval = 10 * time.Second

// Comparer runs the Merkle comparison and pull against one storage
// node for one partition. Its algorithm is out of scope; Walker only
// guarantees it is called once per (partition, node) pair per cycle.
type Comparer interface {
	CompareAndPull(ctx context.Context, partition replication.SyncPartition, node string) error
}

// Walker periodically calls Comparer once for every (partition, node)
// pair named by the current replication layout.
type Walker struct {
	sharded  *replication.Sharded
	comparer Comparer
	logger   zerolog.Logger

	mu     sync.Mutex
	stopCh chan struct{}
}

// NewWalker builds a Walker over sharded's current and future layout
// snapshots, dispatching to comparer.
func NewWalker(sharded *replication.Sharded, comparer Comparer) *Walker {
	return &Walker{
		sharded:  sharded,
		comparer: comparer,
		logger:   log.WithComponent("antientropy"),
		stopCh:   make(chan struct{}),
	}
}

// Start begins the ticking walk in a background goroutine.
func (w *Walker) Start() {
	go w.run()
}

// Stop ends the walk.
func (w *Walker) Stop() {
	close(w.stopCh)
}

func (w *Walker) run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	w.logger.Info().Msg("anti-entropy walker started")

	for {
		select {
		case <-ticker.C:
			w.cycle()
		case <-w.stopCh:
			w.logger.Info().Msg("anti-entropy walker stopped")
			return
		}
	}
}

func (w *Walker) cycle() {
	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDuration(metrics.AntiEntropyCycleDuration)
		metrics.AntiEntropyCyclesTotal.Inc()
	}()

	for _, partition := range w.sharded.SyncPartitions() {
		for _, node := range partition.StorageNodes {
			ctx, cancel := context.WithTimeout(context.Background(), tickInterval)
			err := w.comparer.CompareAndPull(ctx, partition, node)
			cancel()
			if err != nil {
				w.logger.Error().Err(err).
					Int("partition", partition.Partition).
					Str("node", node).
					Msg("anti-entropy compare-and-pull failed")
			}
		}
	}
}
