// Package hashring implements the consistent hash ring that routes a
// PointID to a ShardID. The teacher's go.mod pulls in
// github.com/stathat/consistent only transitively (nothing in the
// retrieved pack actually imports it — see DESIGN.md), so this ring is
// built directly on the xxHash already used for PointID.Hash, per
// spec.md §4.6's suggestion of "a named hash (e.g. xxHash or MD5)".
package hashring

import (
	"sort"
	"sync"

	"github.com/smoldb/smoldb/internal/types"
)

// Ring assigns points to shards by consistent hashing over a frozen
// set of virtual nodes. Per spec.md §9's Open Question resolution, a
// Ring is built once at collection creation/load and never gains or
// loses shards afterward.
type Ring struct {
	mu sync.RWMutex

	// vnodes maps a virtual node's hash to the shard it belongs to.
	// vnodeHashes is the same keys, sorted, for binary search.
	vnodes      map[uint64]types.ShardID
	vnodeHashes []uint64

	replicationFactor int
}

// DefaultVirtualNodesPerShard controls how many virtual nodes each
// shard gets on the ring; higher spreads load more evenly at the cost
// of a larger sorted-hash table.
const DefaultVirtualNodesPerShard = 64

// New builds a Ring over shardIDs with the default virtual node
// count. The shard set is frozen: New is only ever called once per
// Collection, at creation or load time.
func New(shardIDs []types.ShardID) *Ring {
	return NewWithVirtualNodes(shardIDs, DefaultVirtualNodesPerShard)
}

// NewWithVirtualNodes is New with an explicit virtual-node count, kept
// for tests that want a small, easy-to-reason-about ring.
func NewWithVirtualNodes(shardIDs []types.ShardID, vnodesPerShard int) *Ring {
	r := &Ring{
		vnodes:            make(map[uint64]types.ShardID, len(shardIDs)*vnodesPerShard),
		replicationFactor: vnodesPerShard,
	}
	for _, shard := range shardIDs {
		r.addShardLocked(shard)
	}
	r.rebuildIndexLocked()
	return r
}

func (r *Ring) addShardLocked(shard types.ShardID) {
	for vnode := 0; vnode < r.replicationFactor; vnode++ {
		h := vnodeHash(shard, vnode)
		r.vnodes[h] = shard
	}
}

func (r *Ring) rebuildIndexLocked() {
	hashes := make([]uint64, 0, len(r.vnodes))
	for h := range r.vnodes {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	r.vnodeHashes = hashes
}

func vnodeHash(shard types.ShardID, vnode int) uint64 {
	id := types.NewIntID(uint64(vnode))
	// Fold the shard id into the vnode's hash so each shard's virtual
	// nodes land at independent points on the ring.
	return id.Hash() ^ (uint64(shard)*0x9E3779B97F4A7C15 + 1)
}

// Route returns the ShardID that owns point, by walking clockwise from
// its hash to the nearest virtual node.
func (r *Ring) Route(point types.PointID) types.ShardID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h := point.Hash()
	idx := sort.Search(len(r.vnodeHashes), func(i int) bool {
		return r.vnodeHashes[i] >= h
	})
	if idx == len(r.vnodeHashes) {
		idx = 0
	}
	return r.vnodes[r.vnodeHashes[idx]]
}

// Shards returns the distinct shard ids present on the ring, sorted.
func (r *Ring) Shards() []types.ShardID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[types.ShardID]struct{})
	for _, shard := range r.vnodes {
		seen[shard] = struct{}{}
	}
	out := make([]types.ShardID, 0, len(seen))
	for shard := range seen {
		out = append(out, shard)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
