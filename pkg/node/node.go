package node

import (
	"fmt"

	"github.com/cuemby/cairn/pkg/blocks"
	"github.com/cuemby/cairn/pkg/log"
	"github.com/cuemby/cairn/pkg/replication"
	"github.com/cuemby/cairn/pkg/rpc"
	"github.com/cuemby/cairn/pkg/storage"
	"github.com/cuemby/cairn/pkg/version"
	"github.com/rs/zerolog"
)

// Node owns the node-local storage stack and the connections between
// its parts.
type Node struct {
	Blocks      *blocks.Manager
	Versions    *version.Table
	BlockRefs   *version.BlockRefTable
	Replication *replication.Sharded
	RPCClient   *rpc.Client
	RPCHandler  *rpc.Handler

	logger zerolog.Logger
}

// Config names the on-disk location and replication policy a Node
// is built with. Layout is expected to already be populated by the
// cluster's membership/ring service, an out-of-scope collaborator.
type Config struct {
	DataDir           string
	ReplicationFactor int
	ReadQuorum        int
	WriteQuorum       int
	Layout            *replication.Layout
}

// New constructs a fully wired Node: it opens the block and resync
// stores, builds the version table and BlockRef table, then installs
// the late-bound blocks.Handle so the block manager can resolve
// replica sets, check for active references, and reach peers.
func New(cfg Config, store storage.Store) (*Node, error) {
	mgr, err := blocks.NewManager(cfg.DataDir, store)
	if err != nil {
		return nil, fmt.Errorf("node: construct block manager: %w", err)
	}

	rpcClient := rpc.NewClient()

	blockRefs, err := version.NewBlockRefTable(store, mgr)
	if err != nil {
		return nil, fmt.Errorf("node: construct block ref table: %w", err)
	}

	versions, err := version.NewTable(store, blockRefs)
	if err != nil {
		return nil, fmt.Errorf("node: construct version table: %w", err)
	}

	sharded := &replication.Sharded{
		RF:           cfg.ReplicationFactor,
		ReadQuorumN:  cfg.ReadQuorum,
		WriteQuorumN: cfg.WriteQuorum,
		Layout:       replication.NewLayoutSnapshot(cfg.Layout),
	}

	mgr.SetHandle(&blocks.Handle{
		Topology:   sharded,
		RefChecker: blockRefs,
		Peer:       rpcClient,
	})

	n := &Node{
		Blocks:      mgr,
		Versions:    versions,
		BlockRefs:   blockRefs,
		Replication: sharded,
		RPCClient:   rpcClient,
		RPCHandler:  rpc.NewHandler(mgr),
		logger:      log.WithComponent("node"),
	}
	return n, nil
}

// Start launches the block manager's resync worker pool.
func (n *Node) Start() {
	n.logger.Info().Msg("starting resync workers")
	n.Blocks.StartWorkers()
}

// Stop waits for the resync worker pool to drain and closes peer
// connections.
func (n *Node) Stop() {
	n.Blocks.Stop()
	if err := n.RPCClient.Close(); err != nil {
		n.logger.Warn().Err(err).Msg("error closing peer connections")
	}
}
