package blocks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cuemby/cairn/pkg/log"
	"github.com/cuemby/cairn/pkg/metrics"
	"github.com/cuemby/cairn/pkg/types"
)

const resyncWorkerCount = 2

// StartWorkers launches the background resync worker pool. It is safe
// to call only once per Manager; call Stop to shut the pool down.
func (m *Manager) StartWorkers() {
	for i := 0; i < resyncWorkerCount; i++ {
		m.wg.Add(1)
		go m.resyncLoop()
	}
}

// Stop signals the resync workers to exit and waits for them to do so.
func (m *Manager) Stop() {
	close(m.stopCh)
	m.wg.Wait()
}

func (m *Manager) resyncLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.stopCh:
			return
		default:
		}

		key, val, ok, err := m.resync.PopMin()
		if err != nil {
			m.logger.Error().Err(err).Msg("failed to pop resync queue")
			m.sleepOrStop(time.Second)
			continue
		}
		if !ok {
			m.sleepOrStop(time.Second)
			continue
		}

		dueMsec := types.Uint64(key[:8])
		hash, err := types.HashFromBytes(val)
		if err != nil {
			m.logger.Error().Err(err).Msg("malformed resync queue entry, dropping")
			continue
		}

		if m.clock.NowMsec() < dueMsec {
			// Not due yet; put it back unchanged and wait.
			if err := m.resync.Put(key, val); err != nil {
				m.logger.Error().Err(err).Msg("failed to reinsert not-yet-due resync entry")
			}
			m.sleepOrStop(time.Second)
			continue
		}

		timer := metrics.NewTimer()
		outcome, err := m.resyncIter(hash)
		timer.ObserveDuration(metrics.ResyncIterationDuration)
		metrics.ResyncIterationsTotal.WithLabelValues(outcome).Inc()
		if err != nil {
			log.WithHash(m.logger, hash).Warn().Err(err).Msg("resync iteration failed, retrying later")
			if err := m.putToResync(hash, uint64(resyncRetryTimeout.Milliseconds())); err != nil {
				m.logger.Error().Err(err).Msg("failed to reschedule failed resync")
			}
		}
	}
}

func (m *Manager) sleepOrStop(d time.Duration) {
	select {
	case <-time.After(d):
	case <-m.stopCh:
	}
}

// resyncIter reconciles on-disk presence against the reference count
// for hash, returning a short outcome label for metrics:
//
//	exists && !needed: block is locally unneeded; if no other replica
//	  still references it, delete it outright. If others do, confirm
//	  via quorum that they actually have a copy before deleting, and
//	  push it to any that say they don't.
//	needed && !exists: fetch the block from a peer and write it.
//	otherwise: nothing to do.
func (m *Manager) resyncIter(hash types.Hash) (outcome string, err error) {
	path := m.blockPath(hash)
	_, statErr := os.Stat(path)
	exists := statErr == nil

	needed, err := m.hasPositiveRC(hash)
	if err != nil {
		return "error", err
	}

	log.WithHash(m.logger, hash).Debug().Bool("exists", exists).Bool("needed", needed).Msg("resync")

	if exists && !needed {
		if err := m.resyncDelete(hash, path); err != nil {
			if errors.Is(err, errQuorumUnreachable) {
				return "quorum_failed", err
			}
			return "error", err
		}
		return "deleted", nil
	}

	if needed && !exists {
		if err := m.resyncFetch(hash); err != nil {
			return "error", err
		}
		return "fetched", nil
	}

	return "noop", nil
}

// errQuorumUnreachable is returned by resyncDelete when too many
// replicas failed to answer NeedBlockQuery to be confident the block
// would survive deletion; resyncLoop reschedules on any error, so this
// aborts the delete and requeues the hash rather than dropping it.
var errQuorumUnreachable = errors.New("blocks: quorum unreachable, aborting deletion")

// resyncDelete implements the quorum-gated deletion protocol: if no
// other node's BlockRef table still mentions hash, delete unconditionally.
// Otherwise, before deleting, confirm via NeedBlockQuery that enough of
// the replica set actually holds a copy, pushing this node's copy to
// any replica that says it does not, and abort the deletion if too many
// replicas failed to respond to be confident the block survives.
func (m *Manager) resyncDelete(hash types.Hash, path string) error {
	handle := m.currentHandle()
	if handle == nil {
		return fmt.Errorf("blocks: peer handle not yet installed")
	}

	neededByOthers, err := handle.RefChecker.HasActiveRefs(hash)
	if err != nil {
		return fmt.Errorf("blocks: check active refs for %s: %w", hash, err)
	}

	if neededByOthers {
		replicas := handle.Topology.ReadNodes(hash)
		rf := handle.Topology.ReplicationFactor()

		needNodes := make([]string, 0, len(replicas))
		errCount := 0
		for _, addr := range replicas {
			ctx, cancel := context.WithTimeout(context.Background(), needBlockQueryTimeout)
			has, err := handle.Peer.NeedBlockQuery(ctx, addr, hash)
			cancel()
			if err != nil {
				errCount++
				metrics.RPCRequestsTotal.WithLabelValues("NeedBlockQuery", "error").Inc()
				continue
			}
			metrics.RPCRequestsTotal.WithLabelValues("NeedBlockQuery", "ok").Inc()
			if has {
				needNodes = append(needNodes, addr)
			}
		}

		if errCount > (rf-1)/2 {
			return errQuorumUnreachable
		}

		if len(needNodes) > 0 {
			data, err := m.ReadBlock(hash)
			if err != nil {
				return fmt.Errorf("blocks: read block %s before pushing to peers: %w", hash, err)
			}
			for _, addr := range needNodes {
				ctx, cancel := context.WithTimeout(context.Background(), blockRWTimeout)
				err := handle.Peer.PutBlock(ctx, addr, hash, data)
				cancel()
				if err != nil {
					metrics.RPCRequestsTotal.WithLabelValues("PutBlock", "error").Inc()
					return fmt.Errorf("blocks: push block %s to %s: %w", hash, addr, err)
				}
				metrics.RPCRequestsTotal.WithLabelValues("PutBlock", "ok").Inc()
			}
		}
	}

	m.writeMu.Lock()
	err = os.Remove(path)
	m.writeMu.Unlock()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blocks: delete block %s: %w", hash, err)
	}
	if err := m.resync.Delete(hash.Bytes()); err != nil {
		log.WithHash(m.logger, hash).Warn().Err(err).Msg("failed to clear resync marker after delete")
	}
	return nil
}

// resyncFetch races GetBlock against the replica set and writes the
// first hash-verified reply.
func (m *Manager) resyncFetch(hash types.Hash) error {
	handle := m.currentHandle()
	if handle == nil {
		return fmt.Errorf("blocks: peer handle not yet installed")
	}

	replicas := handle.Topology.ReadNodes(hash)

	type result struct {
		data []byte
		err  error
	}
	results := make(chan result, len(replicas))
	for _, addr := range replicas {
		addr := addr
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), blockRWTimeout)
			defer cancel()
			data, err := handle.Peer.GetBlock(ctx, addr, hash)
			results <- result{data: data, err: err}
		}()
	}

	var lastErr error
	for range replicas {
		r := <-results
		if r.err != nil {
			lastErr = r.err
			metrics.RPCRequestsTotal.WithLabelValues("GetBlock", "error").Inc()
			continue
		}
		metrics.RPCRequestsTotal.WithLabelValues("GetBlock", "ok").Inc()
		if types.HashBytes(r.data) != hash {
			continue
		}
		return m.WriteBlock(hash, r.data)
	}

	if lastErr != nil {
		return fmt.Errorf("blocks: fetch block %s: %w", hash, lastErr)
	}
	return fmt.Errorf("blocks: fetch block %s: no replica returned a valid copy", hash)
}
