// Command smoldb runs a single smoldb cluster peer: an HTTP API
// surface, an internal gRPC surface for replica writes/reads and the
// membership raft group, and the on-disk collection catalog, all
// wired together here because the catalog.Builder it hands to
// catalog.New needs the peer registry and transport pool that only
// this package owns.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	smolhttp "github.com/smoldb/smoldb/internal/api/http"
	"github.com/smoldb/smoldb/internal/catalog"
	"github.com/smoldb/smoldb/internal/config"
	"github.com/smoldb/smoldb/internal/consensus"
	"github.com/smoldb/smoldb/internal/distributed/p2p"
	"github.com/smoldb/smoldb/internal/log"
	"github.com/smoldb/smoldb/internal/peers"
	"github.com/smoldb/smoldb/internal/replica"
	"github.com/smoldb/smoldb/internal/transport"
	"github.com/smoldb/smoldb/internal/types"
)

func main() {
	os.Exit(run())
}

// run builds and serves one peer, returning a process exit code: 0 on
// a clean shutdown, non-zero if any component failed to start.
func run() int {
	fs := pflag.NewFlagSet("smoldb", pflag.ContinueOnError)
	config.BindFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(fs)
	if err != nil {
		zap.S().Errorf("smoldb: loading config: %v", err)
		return 1
	}

	if err := log.Init(cfg.Log); err != nil {
		zap.S().Errorf("smoldb: initializing logger: %v", err)
		return 1
	}
	defer log.Sync() //nolint:errcheck

	log.Info("smoldb: starting",
		zap.Uint64("peer_id", uint64(cfg.PeerID)),
		zap.String("listen_url", cfg.ListenURL),
		zap.String("p2p_url", cfg.P2PURL),
	)

	registry := peers.NewRegistry(cfg.PeerID, cfg.P2PURL)
	pool := transport.NewChannelPool(cfg.ConnectTimeout)
	defer pool.CloseAll()

	builder := &collectionBuilder{
		registry:               registry,
		pool:                   pool,
		callTimeout:            cfg.CallTimeout,
		writeConsistencyFactor: cfg.WriteConsistencyFactor,
	}
	toc := catalog.New(cfg.StorageRoot, builder.build)
	if err := toc.Load(context.Background()); err != nil {
		log.Error("smoldb: loading catalog", zap.Error(err))
		return 1
	}

	clientTransport := p2p.NewClientTransport(pool, registry)
	driver := consensus.New(consensus.Config{
		SelfID:       cfg.PeerID,
		SelfURI:      cfg.P2PURL,
		TickInterval: cfg.RaftTickInterval,
		Mutator: &registryMutator{
			registry:    registry,
			toc:         toc,
			pool:        pool,
			callTimeout: cfg.CallTimeout,
		},
		Registry:     registry,
		Transport:    clientTransport,
		BootstrapURI: cfg.BootstrapURL,
	})
	driver.Run()
	defer driver.Stop()

	raftHandler := p2p.NewRaftServiceHandler(driver, makeJoinHandler(driver, registry))
	pointsHandler := p2p.NewPointsServiceHandler(toc)
	p2pServer := p2p.NewServer(cfg.P2PURL, raftHandler, pointsHandler)
	if err := p2pServer.Start(); err != nil {
		log.Error("smoldb: starting p2p server", zap.Error(err))
		return 1
	}
	defer p2pServer.Stop()

	if cfg.BootstrapURL != "" {
		bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
		err = driver.Bootstrap(bootstrapCtx, cfg.BootstrapURL)
		cancelBootstrap()
		if err != nil {
			log.Error("smoldb: bootstrap handshake failed", zap.Error(err))
			return 1
		}
	}
	driver.Run()

	apiServer := smolhttp.NewServer(toc, registry, driver, cfg.PeerID)
	httpServer := &http.Server{
		Addr:    cfg.ListenURL,
		Handler: apiServer.Engine(),
	}

	httpErrCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			httpErrCh <- err
			return
		}
		httpErrCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("smoldb: shutdown signal received")
	case err := <-httpErrCh:
		if err != nil {
			log.Error("smoldb: http server failed", zap.Error(err))
			return 1
		}
	case <-driver.Done():
		log.Error("smoldb: consensus driver exited unexpectedly")
		return 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("smoldb: http server shutdown", zap.Error(err))
	}

	return 0
}

// registryMutator keeps the shared peer registry in sync with every
// ConfChange the consensus driver applies, and additionally fans a
// newly-added peer out as a RemoteShard across every collection's
// every shard, per spec.md §4.8(b): a peer that joins at runtime must
// start counting toward write quorum without the collection being
// rebuilt. The ring itself never changes shape at runtime (spec.md §9);
// only each shard's ReplicaSet gains a replica.
type registryMutator struct {
	registry    *peers.Registry
	toc         *catalog.TableOfContent
	pool        *transport.ChannelPool
	callTimeout time.Duration
}

func (m *registryMutator) OnPeerAdded(id types.PeerID, uri string) {
	m.registry.Put(id, uri)

	for _, name := range m.toc.ListCollections() {
		coll, err := m.toc.Get(name)
		if err != nil {
			continue
		}
		for _, set := range coll.Holder.Shards() {
			remote := replica.NewRemoteShard(id, coll.Name, set.ShardID, m.registry, m.pool, m.callTimeout)
			if set.AddRemote(remote) {
				log.Info("smoldb: added remote replica for joined peer",
					zap.Uint64("peer_id", uint64(id)),
					zap.String("collection", coll.Name),
					zap.Int64("shard_id", int64(set.ShardID)),
				)
			}
		}
	}
}

func (m *registryMutator) OnPeerRemoved(id types.PeerID) {
	m.registry.Remove(id)
}

// makeJoinHandler adapts the consensus driver and peer registry into a
// p2p.JoinHandler: a joining peer's AddPeerToKnown call proposes an
// OpAddPeer through raft and, once it commits, replies with the full
// known peer table.
func makeJoinHandler(driver *consensus.Driver, registry *peers.Registry) p2p.JoinHandler {
	return func(ctx context.Context, peerID uint64, uri string) (map[uint64]string, error) {
		resultCh := make(chan error, 1)
		driver.Propose(ctx, consensus.OpAddPeer{PeerID: types.PeerID(peerID), URI: uri}, func(err error) {
			resultCh <- err
		})

		select {
		case err := <-resultCh:
			if err != nil {
				return nil, err
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		known := make(map[uint64]string, registry.Len())
		for id, u := range registry.All() {
			known[uint64(id)] = u
		}
		return known, nil
	}
}
