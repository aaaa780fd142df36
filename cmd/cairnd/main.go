package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/cuemby/cairn/pkg/antientropy"
	"github.com/cuemby/cairn/pkg/config"
	"github.com/cuemby/cairn/pkg/log"
	"github.com/cuemby/cairn/pkg/metrics"
	"github.com/cuemby/cairn/pkg/node"
	"github.com/cuemby/cairn/pkg/replication"
	"github.com/cuemby/cairn/pkg/rpc"
	"github.com/cuemby/cairn/pkg/storage"
	"github.com/cuemby/cairn/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "cairnd",
	Short:   "cairnd - node-local content-addressed block store",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"cairnd version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime,
	))
	config.BindFlags(rootCmd)
	rootCmd.PersistentFlags().Bool("enable-pprof", false, "Enable pprof profiling endpoints on the metrics server")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a node: block manager, version table, peer RPC server, anti-entropy walker",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	cfg = config.ApplyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Init(log.Config{Level: log.Level(cfg.LogLevel), JSONOutput: cfg.LogJSON})
	logger := log.WithComponent("cairnd")

	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("cairnd: open storage: %w", err)
	}
	defer store.Close()

	n, err := node.New(node.Config{
		DataDir:           cfg.DataDir,
		ReplicationFactor: cfg.ReplicationFactor,
		ReadQuorum:        cfg.ReadQuorum,
		WriteQuorum:       cfg.WriteQuorum,
		Layout:            layoutFromPeers(cfg.Peers),
	}, store)
	if err != nil {
		return fmt.Errorf("cairnd: construct node: %w", err)
	}

	metrics.SetVersion(Version)
	metrics.RegisterComponent("storage", true, "bootstrapped")
	metrics.RegisterComponent("blocks", false, "starting")
	metrics.RegisterComponent("rpc", false, "starting")

	n.Start()
	metrics.RegisterComponent("blocks", true, "ready")
	logger.Info().Msg("resync workers started")

	metricsCollector := metrics.NewCollector(n.Blocks)
	metricsCollector.Start()

	walker := antientropy.NewWalker(n.Replication, &logOnlyComparer{logger: log.WithComponent("antientropy")})
	walker.Start()

	grpcServer := grpc.NewServer()
	rpc.RegisterPeerBlocksServer(grpcServer, n.RPCHandler)

	lis, err := net.Listen("tcp", cfg.BindAddr)
	if err != nil {
		return fmt.Errorf("cairnd: listen on %s: %w", cfg.BindAddr, err)
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.BindAddr).Msg("peer RPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("cairnd: grpc serve: %w", err)
		}
	}()
	metrics.RegisterComponent("rpc", true, "ready")

	pprofEnabled, _ := cmd.Flags().GetBool("enable-pprof")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())
		if pprofEnabled {
			// net/http/pprof registers its handlers on the default mux.
			mux.Handle("/debug/pprof/", http.DefaultServeMux)
		}
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
	logger.Info().Str("addr", cfg.MetricsAddr).Bool("pprof", pprofEnabled).Msg("metrics server listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		logger.Error().Err(err).Msg("fatal server error")
	}

	walker.Stop()
	metricsCollector.Stop()
	n.Stop()
	grpcServer.GracefulStop()
	logger.Info().Msg("shutdown complete")
	return nil
}

// layoutFromPeers builds a single-version ring layout from a static
// node-id -> address map, assigning each node one ring token derived
// from the hash of its id. Ring entries carry the node's address, since
// the block manager dials replicas by the names the ring returns. Real layouts are built and gossiped by the
// cluster's membership service; this is the seed a standalone node
// uses until that service hands it a replacement via
// replication.LayoutSnapshot.Store.
func layoutFromPeers(peers map[string]string) *replication.Layout {
	ring := make([]replication.RingEntry, 0, len(peers))
	for nodeID, addr := range peers {
		ring = append(ring, replication.RingEntry{
			Token: types.HashBytes([]byte(nodeID)),
			Node:  addr,
		})
	}
	sort.Slice(ring, func(i, j int) bool { return ring[i].Token.Less(ring[j].Token) })
	if len(ring) == 0 {
		ring = append(ring, replication.RingEntry{Token: types.ZeroHash, Node: "self"})
	}
	return &replication.Layout{PartitionBits: 4, Ring: ring}
}

// logOnlyComparer stands in for the Merkle-tree anti-entropy
// comparison, which is out of scope here: it only logs that a
// (partition, node) pair was due for a walk.
type logOnlyComparer struct {
	logger zerolog.Logger
}

func (c *logOnlyComparer) CompareAndPull(ctx context.Context, partition replication.SyncPartition, addr string) error {
	c.logger.Debug().
		Int("partition", partition.Partition).
		Str("peer", addr).
		Msg("anti-entropy walk due (comparison unimplemented)")
	return nil
}
