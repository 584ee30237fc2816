// Package replica implements the cluster-facing side of a shard: a
// RemoteShard that calls a peer's PointsInternalService over gRPC, and
// a ReplicaSet that fans an operation out to a local replica plus zero
// or more RemoteShards, per spec.md §4.3/§4.4.
package replica

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/smoldb/smoldb/internal/errs"
	"github.com/smoldb/smoldb/internal/log"
	"github.com/smoldb/smoldb/internal/peers"
	"github.com/smoldb/smoldb/internal/rpc/smoldbpb"
	"github.com/smoldb/smoldb/internal/transport"
	"github.com/smoldb/smoldb/internal/types"
)

// RemoteShard is a handle to one replica of a shard living on another
// peer. It holds no direct connection: the peer's URI is resolved
// from the shared peers.Registry at call time, since the URI can
// change if the peer rejoins under a new address.
type RemoteShard struct {
	PeerID     types.PeerID
	Collection string
	ShardID    types.ShardID

	peers   *peers.Registry
	pool    *transport.ChannelPool
	timeout time.Duration
}

// NewRemoteShard builds a RemoteShard for a single peer+shard pair.
func NewRemoteShard(peerID types.PeerID, collection string, shardID types.ShardID, registry *peers.Registry, pool *transport.ChannelPool, callTimeout time.Duration) *RemoteShard {
	return &RemoteShard{
		PeerID:     peerID,
		Collection: collection,
		ShardID:    shardID,
		peers:      registry,
		pool:       pool,
		timeout:    callTimeout,
	}
}

// client resolves the peer's current URI, gets or dials its channel,
// and returns a PointsInternalService client bound to it. Per
// spec.md §4.3 this 3-step resolution happens fresh on every call.
func (r *RemoteShard) client(ctx context.Context) (smoldbpb.PointsInternalServiceClient, string, error) {
	uri, err := r.peers.Resolve(r.PeerID)
	if err != nil {
		return nil, "", errs.Wrap(errs.TransportError, err, "replica: resolving remote shard peer")
	}
	conn, err := r.pool.GetOrCreate(ctx, uri)
	if err != nil {
		return nil, uri, err
	}
	return smoldbpb.NewPointsInternalServiceClient(conn), uri, nil
}

// UpsertPoints sends points to the remote replica. UUID-keyed points
// are dropped before the call: the internal wire schema only carries
// uint64 ids (spec.md §9's known, preserved gap), so they can never
// reach a remote replica via this path.
func (r *RemoteShard) UpsertPoints(ctx context.Context, points []types.Point) error {
	wire, dropped := projectToWire(points)
	if dropped > 0 {
		log.Warn("replica: dropping uuid-keyed points from remote fan-out",
			zap.String("collection", r.Collection), zap.Int64("shard_id", int64(r.ShardID)), zap.Int("dropped", dropped))
	}
	if len(wire) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cli, uri, err := r.client(ctx)
	if err != nil {
		return err
	}

	_, err = cli.UpsertPoints(ctx, &smoldbpb.UpsertPointsRequest{
		Collection: r.Collection,
		ShardId:    int64(r.ShardID),
		Points:     wire,
	})
	if err != nil {
		r.pool.Evict(uri)
		return errs.Wrapf(errs.RPCStatusError, err, "replica: upsert to peer %d", r.PeerID)
	}
	return nil
}

// GetPoints reads points from the remote replica. Only int-keyed ids
// can be requested over the wire; callers that need UUID-keyed points
// must rely on a local replica instead.
func (r *RemoteShard) GetPoints(ctx context.Context, ids []types.PointID) ([]types.Point, error) {
	wireIDs, dropped := projectIDsToWire(ids)
	if dropped > 0 {
		log.Warn("replica: dropping uuid-keyed ids from remote read",
			zap.String("collection", r.Collection), zap.Int64("shard_id", int64(r.ShardID)), zap.Int("dropped", dropped))
	}
	if len(wireIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cli, uri, err := r.client(ctx)
	if err != nil {
		return nil, err
	}

	reply, err := cli.GetPoints(ctx, &smoldbpb.GetPointsRequest{
		Collection: r.Collection,
		ShardId:    int64(r.ShardID),
		Ids:        wireIDs,
	})
	if err != nil {
		r.pool.Evict(uri)
		return nil, errs.Wrapf(errs.RPCStatusError, err, "replica: get from peer %d", r.PeerID)
	}

	return lo.Map(reply.GetPoints(), func(p *smoldbpb.PointPayload, _ int) types.Point {
		return types.Point{ID: types.NewIntID(p.GetId()), Payload: p.GetPayload()}
	}), nil
}

func projectToWire(points []types.Point) ([]*smoldbpb.PointPayload, int) {
	dropped := 0
	wire := make([]*smoldbpb.PointPayload, 0, len(points))
	for _, p := range points {
		if p.ID.Kind != types.IntKind {
			dropped++
			continue
		}
		wire = append(wire, &smoldbpb.PointPayload{Id: p.ID.Int, Payload: p.Payload})
	}
	return wire, dropped
}

func projectIDsToWire(ids []types.PointID) ([]uint64, int) {
	dropped := 0
	wire := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id.Kind != types.IntKind {
			dropped++
			continue
		}
		wire = append(wire, id.Int)
	}
	return wire, dropped
}
