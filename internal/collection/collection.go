package collection

import (
	"context"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/smoldb/smoldb/internal/errs"
	"github.com/smoldb/smoldb/internal/types"
)

// Collection is the unit of data ownership named in the external API:
// a name, a ReplicaHolder over its shards, and the write consistency
// factor writes are checked against, per spec.md §3/§4.5.
type Collection struct {
	Name                   string
	Holder                 *ReplicaHolder
	WriteConsistencyFactor int
}

// New builds a Collection bound to an already-populated ReplicaHolder.
func New(name string, holder *ReplicaHolder, writeConsistencyFactor int) *Collection {
	if writeConsistencyFactor < 1 {
		writeConsistencyFactor = 1
	}
	return &Collection{Name: name, Holder: holder, WriteConsistencyFactor: writeConsistencyFactor}
}

// UpsertPoints groups points by shard and writes each shard's group
// to its ReplicaSet concurrently. A write is considered committed
// only if every shard it touched reached its required quorum;
// otherwise the call returns a ServiceError naming which shard fell
// short, per spec.md §4.5 and its S4/S5 quorum scenarios.
func (c *Collection) UpsertPoints(ctx context.Context, points []types.Point, localOnly bool) error {
	groups := c.Holder.GroupByShard(points)

	shardIDs := lo.Keys(groups)
	group, gctx := errgroup.WithContext(ctx)
	for _, shardID := range shardIDs {
		shardID := shardID
		group.Go(func() error {
			set, err := c.Holder.ByShardID(shardID)
			if err != nil {
				return err
			}
			accepted, err := set.UpsertPoints(gctx, groups[shardID], localOnly)
			if err != nil {
				return err
			}
			required := requiredAccepts(localOnly, set.RemoteCount(), c.WriteConsistencyFactor)
			if accepted < required {
				return errs.Newf(errs.ServiceError,
					"collection: shard %d only reached %d/%d replicas, below write consistency factor",
					shardID, accepted, required)
			}
			return nil
		})
	}
	return group.Wait()
}

// requiredAccepts computes the minimum number of accepting replicas a
// shard's write must reach, per spec.md §4.5 step 4: a local-only
// write only ever needs its own local replica, and a non-local write
// needs min(N, WriteConsistencyFactor) where N is the shard's total
// replica count (the local replica plus its remotes) — never more
// than the shard actually has.
func requiredAccepts(localOnly bool, remoteCount int, writeConsistencyFactor int) int {
	if localOnly {
		return 1
	}
	n := remoteCount + 1
	if writeConsistencyFactor < n {
		return writeConsistencyFactor
	}
	return n
}

// GetPoints groups ids by shard, reads each shard's group concurrently
// from its ReplicaSet, and concatenates the results. Ids that are not
// found anywhere are simply absent from the result; an id that routes
// to a shard the holder does not know fails the whole call.
func (c *Collection) GetPoints(ctx context.Context, ids []types.PointID, localOnly bool) ([]types.Point, error) {
	groups := c.Holder.GroupIDsByShard(ids)

	shardIDs := lo.Keys(groups)
	results := make([][]types.Point, len(shardIDs))
	group, gctx := errgroup.WithContext(ctx)
	for i, shardID := range shardIDs {
		i, shardID := i, shardID
		group.Go(func() error {
			set, err := c.Holder.ByShardID(shardID)
			if err != nil {
				return err
			}
			points, err := set.GetPoints(gctx, groups[shardID], localOnly)
			if err != nil {
				return err
			}
			results[i] = points
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var out []types.Point
	for _, points := range results {
		out = append(out, points...)
	}
	return out, nil
}

// AllPoints returns every point stored across the collection's
// shards, local replicas only: it backs the HTTP read path's "absent
// ids means all points" behavior (spec.md §4.9/§6.1), which is an
// administrative scan rather than a quorum read.
func (c *Collection) AllPoints() ([]types.Point, error) {
	var out []types.Point
	for _, set := range c.Holder.Shards() {
		points, err := set.AllPoints()
		if err != nil {
			return nil, err
		}
		out = append(out, points...)
	}
	return out, nil
}

// ShardView reports one shard's local point count and the peer ids
// of its known remote replicas, for operational visibility into
// replication health (supplemented from the original's per-collection
// cluster view, spec.md §4.9).
type ShardView struct {
	ShardID       types.ShardID
	LocalCount    int
	RemotePeerIDs []types.PeerID
}

// ClusterView returns a ShardView for every shard in the collection.
func (c *Collection) ClusterView() ([]ShardView, error) {
	shards := c.Holder.Shards()
	views := make([]ShardView, 0, len(shards))
	for _, set := range shards {
		n, err := set.Local.CountPoints()
		if err != nil {
			return nil, err
		}
		views = append(views, ShardView{ShardID: set.ShardID, LocalCount: n, RemotePeerIDs: set.RemotePeerIDs()})
	}
	return views, nil
}

// CountPoints sums point counts across every shard's local replica.
// It deliberately counts only the local replica of each shard: a
// remote replica's count may lag behind after a partial write, and
// this is meant as a local, fast-path figure, not a cluster-wide one.
func (c *Collection) CountPoints() (int, error) {
	total := 0
	for _, set := range c.Holder.Shards() {
		n, err := set.Local.CountPoints()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
