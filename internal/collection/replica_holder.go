// Package collection implements the per-collection routing and quorum
// logic: ReplicaHolder maps a point to its shard's ReplicaSet via a
// frozen hash ring, and Collection wraps a ReplicaHolder with the
// write-consistency-factor bookkeeping described in spec.md §4.5.
package collection

import (
	"github.com/smoldb/smoldb/internal/errs"
	"github.com/smoldb/smoldb/internal/hashring"
	"github.com/smoldb/smoldb/internal/replica"
	"github.com/smoldb/smoldb/internal/types"
)

// ReplicaHolder owns a frozen hash ring and the ReplicaSet for every
// shard it names, and routes a PointID to the ReplicaSet responsible
// for it, per spec.md §4.6.
type ReplicaHolder struct {
	ring *hashring.Ring
	sets map[types.ShardID]*replica.ReplicaSet
}

// NewReplicaHolder builds a ReplicaHolder over an already-constructed
// ring and the ReplicaSet for each of the ring's shards. sets must
// contain exactly the ring's shard ids; callers build the ring and
// the ReplicaSets together at collection creation/load time.
func NewReplicaHolder(ring *hashring.Ring, sets map[types.ShardID]*replica.ReplicaSet) *ReplicaHolder {
	return &ReplicaHolder{ring: ring, sets: sets}
}

// Route returns the ReplicaSet responsible for a point id.
func (h *ReplicaHolder) Route(id types.PointID) (*replica.ReplicaSet, error) {
	shardID := h.ring.Route(id)
	set, ok := h.sets[shardID]
	if !ok {
		return nil, errs.Newf(errs.ServiceError, "collection: ring routed to unknown shard %d", shardID)
	}
	return set, nil
}

// ByShardID returns the ReplicaSet for a specific shard id, used by
// the p2p server to dispatch an inbound PointsInternalService call
// (which names its shard explicitly) without re-deriving it from a
// point id.
func (h *ReplicaHolder) ByShardID(id types.ShardID) (*replica.ReplicaSet, error) {
	set, ok := h.sets[id]
	if !ok {
		return nil, errs.Newf(errs.NotFound, "collection: unknown shard %d", id)
	}
	return set, nil
}

// Shards returns the ReplicaSet for every shard in the collection.
func (h *ReplicaHolder) Shards() []*replica.ReplicaSet {
	out := make([]*replica.ReplicaSet, 0, len(h.sets))
	for _, set := range h.sets {
		out = append(out, set)
	}
	return out
}

// GroupByShard partitions a batch of points by the shard that owns
// each one, so a multi-point write only touches the ReplicaSets it
// actually needs.
func (h *ReplicaHolder) GroupByShard(points []types.Point) map[types.ShardID][]types.Point {
	groups := make(map[types.ShardID][]types.Point)
	for _, p := range points {
		shardID := h.ring.Route(p.ID)
		groups[shardID] = append(groups[shardID], p)
	}
	return groups
}

// GroupIDsByShard partitions a batch of point ids by owning shard.
func (h *ReplicaHolder) GroupIDsByShard(ids []types.PointID) map[types.ShardID][]types.PointID {
	groups := make(map[types.ShardID][]types.PointID)
	for _, id := range ids {
		shardID := h.ring.Route(id)
		groups[shardID] = append(groups[shardID], id)
	}
	return groups
}
