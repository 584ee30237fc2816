package replica

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smoldb/smoldb/internal/errs"
	"github.com/smoldb/smoldb/internal/log"
	"github.com/smoldb/smoldb/internal/storage"
	"github.com/smoldb/smoldb/internal/types"
)

// LocalReplica is the subset of *storage.LocalShard that ReplicaSet
// needs, narrowed to an interface so tests can substitute a fake.
type LocalReplica interface {
	UpsertPoints(points []types.Point) error
	GetPoints(ids []types.PointID) ([]types.Point, error)
	AllPoints() ([]types.Point, error)
	CountPoints() (int, error)
}

var _ LocalReplica = (*storage.LocalShard)(nil)

// ReplicaSet owns every replica of one shard: exactly one mandatory
// local replica plus zero or more RemoteShards, per spec.md §4.4. The
// remote list can grow after construction when a peer joins the
// cluster at runtime (spec.md §4.8(b)), so it is guarded by a mutex
// rather than exposed as a bare slice: UpsertPoints/GetPoints may be
// running concurrently with an AddRemote call.
type ReplicaSet struct {
	ShardID types.ShardID
	Local   LocalReplica

	mu      sync.RWMutex
	remotes []*RemoteShard
}

// NewReplicaSet builds a ReplicaSet over a local replica and any
// number of remote ones.
func NewReplicaSet(shardID types.ShardID, local LocalReplica, remotes []*RemoteShard) *ReplicaSet {
	return &ReplicaSet{ShardID: shardID, Local: local, remotes: remotes}
}

// RemoteCount returns the number of remote replicas currently known,
// used by Collection to size its per-shard write consistency
// threshold (spec.md §4.5).
func (rs *ReplicaSet) RemoteCount() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.remotes)
}

// RemotePeerIDs returns the peer id of every known remote replica, for
// operational visibility (Collection.ClusterView).
func (rs *ReplicaSet) RemotePeerIDs() []types.PeerID {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	ids := make([]types.PeerID, 0, len(rs.remotes))
	for _, r := range rs.remotes {
		ids = append(ids, r.PeerID)
	}
	return ids
}

// AddRemote adds remote to the set unless a remote with the same
// PeerID is already present, in which case it is a no-op. It reports
// whether the remote was actually added, so a caller fanning this out
// across many shards can log only the shards that actually changed.
// Idempotent under repeat, per spec.md §4.8(b)'s testable invariant
// that a peer joining twice never duplicates its replica.
func (rs *ReplicaSet) AddRemote(remote *RemoteShard) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for _, r := range rs.remotes {
		if r.PeerID == remote.PeerID {
			return false
		}
	}
	rs.remotes = append(rs.remotes, remote)
	return true
}

// remotesSnapshot returns the current remote list under the read
// lock, so UpsertPoints/GetPoints can fan out over a stable copy
// while AddRemote may be appending to the live slice concurrently.
func (rs *ReplicaSet) remotesSnapshot() []*RemoteShard {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out := make([]*RemoteShard, len(rs.remotes))
	copy(out, rs.remotes)
	return out
}

// UpsertPoints executes a write across the replica set: the local
// replica must succeed or the whole operation fails; remote replicas
// are then written to concurrently, best-effort, with failures
// logged and dropped rather than propagated. It returns the number of
// replicas (including local) that accepted the write, for the caller
// to compare against its write consistency factor, per spec.md §4.5.
// spec.md §4.4 describes the remote fan-out as sequential; it is done
// concurrently here via errgroup instead, which is safe because
// §4.5.5 never makes the order of remote writes observable — only the
// accepted count matters.
func (rs *ReplicaSet) UpsertPoints(ctx context.Context, points []types.Point, localOnly bool) (int, error) {
	if err := rs.Local.UpsertPoints(points); err != nil {
		return 0, errs.Wrap(errs.ServiceError, err, "replica: local upsert failed")
	}
	accepted := 1

	remotes := rs.remotesSnapshot()
	if localOnly || len(remotes) == 0 {
		return accepted, nil
	}

	group, gctx := errgroup.WithContext(ctx)
	results := make([]bool, len(remotes))
	for i, remote := range remotes {
		i, remote := i, remote
		group.Go(func() error {
			if err := remote.UpsertPoints(gctx, points); err != nil {
				log.Warn("replica: remote upsert failed, dropping",
					zap.Int64("shard_id", int64(rs.ShardID)), zap.Uint64("peer_id", uint64(remote.PeerID)), zap.Error(err))
				return nil
			}
			results[i] = true
			return nil
		})
	}
	// errgroup.Wait only returns non-nil if a goroutine returns an
	// error, which none of these do: remote failures are swallowed
	// above so one slow/broken peer never fails the whole write.
	_ = group.Wait()

	for _, ok := range results {
		if ok {
			accepted++
		}
	}
	return accepted, nil
}

// GetPoints executes a read across the replica set: the local replica
// is tried first and its hits are kept; any ids still missing are
// then requested from remote replicas in order, stopping as soon as
// every id has been found. On a tie the local replica's copy wins,
// per spec.md §4.5's local-wins merge rule.
func (rs *ReplicaSet) GetPoints(ctx context.Context, ids []types.PointID, localOnly bool) ([]types.Point, error) {
	found := make(map[string]types.Point, len(ids))

	local, err := rs.Local.GetPoints(ids)
	if err != nil {
		return nil, errs.Wrap(errs.ServiceError, err, "replica: local read failed")
	}
	for _, p := range local {
		found[p.ID.StringForm()] = p
	}

	if localOnly {
		return valuesInOrder(ids, found), nil
	}

	remaining := missing(ids, found)
	for _, remote := range rs.remotesSnapshot() {
		if len(remaining) == 0 {
			break
		}
		points, err := remote.GetPoints(ctx, remaining)
		if err != nil {
			log.Warn("replica: remote read failed, skipping",
				zap.Int64("shard_id", int64(rs.ShardID)), zap.Uint64("peer_id", uint64(remote.PeerID)), zap.Error(err))
			continue
		}
		for _, p := range points {
			if _, already := found[p.ID.StringForm()]; !already {
				found[p.ID.StringForm()] = p
			}
		}
		remaining = missing(ids, found)
	}

	return valuesInOrder(ids, found), nil
}

func valuesInOrder(ids []types.PointID, found map[string]types.Point) []types.Point {
	out := make([]types.Point, 0, len(found))
	for _, id := range ids {
		if p, ok := found[id.StringForm()]; ok {
			out = append(out, p)
		}
	}
	return out
}

// AllPoints returns every point in the shard's local replica. Unlike
// GetPoints it never fans out to remotes: "all points" is a local,
// best-effort administrative view, not a quorum read.
func (rs *ReplicaSet) AllPoints() ([]types.Point, error) {
	points, err := rs.Local.AllPoints()
	if err != nil {
		return nil, errs.Wrap(errs.ServiceError, err, "replica: local scan failed")
	}
	return points, nil
}

func missing(ids []types.PointID, found map[string]types.Point) []types.PointID {
	var out []types.PointID
	for _, id := range ids {
		if _, ok := found[id.StringForm()]; !ok {
			out = append(out, id)
		}
	}
	return out
}
