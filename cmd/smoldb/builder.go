package main

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smoldb/smoldb/internal/collection"
	"github.com/smoldb/smoldb/internal/errs"
	"github.com/smoldb/smoldb/internal/hashring"
	"github.com/smoldb/smoldb/internal/peers"
	"github.com/smoldb/smoldb/internal/replica"
	"github.com/smoldb/smoldb/internal/storage"
	"github.com/smoldb/smoldb/internal/transport"
	"github.com/smoldb/smoldb/internal/types"
)

// defaultShardCount is used when a collection's params omit "shards".
const defaultShardCount = 4

// collectionBuilder closes over the process-wide peer registry and
// transport pool so catalog.TableOfContent can stay agnostic to how a
// Collection's shards and replicas are assembled, per
// catalog.Builder's doc comment.
type collectionBuilder struct {
	registry               *peers.Registry
	pool                   *transport.ChannelPool
	callTimeout            time.Duration
	writeConsistencyFactor int
}

// build turns an on-disk collection directory into a live
// *collection.Collection: a frozen hashring.Ring sized by the
// collection's "shards" param (per spec.md §9's Open Question
// resolution that a ring never gains or loses shards after creation),
// a storage.LocalShard per shard, and a replica.RemoteShard per peer
// named in the "replicas" param.
func (b *collectionBuilder) build(_ context.Context, dir, name string, params map[string]string) (*collection.Collection, error) {
	shardCount, replicaPeers, err := parseCollectionParams(params["params"])
	if err != nil {
		return nil, err
	}
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}

	shardIDs := make([]types.ShardID, shardCount)
	for i := range shardIDs {
		shardIDs[i] = types.ShardID(i)
	}
	ring := hashring.New(shardIDs)

	sets := make(map[types.ShardID]*replica.ReplicaSet, shardCount)
	for _, id := range shardIDs {
		local, err := loadOrInitShard(dir, id)
		if err != nil {
			return nil, err
		}

		remotes := make([]*replica.RemoteShard, 0, len(replicaPeers))
		for _, peerID := range replicaPeers {
			remotes = append(remotes, replica.NewRemoteShard(peerID, name, id, b.registry, b.pool, b.callTimeout))
		}
		sets[id] = replica.NewReplicaSet(id, local, remotes)
	}

	holder := collection.NewReplicaHolder(ring, sets)
	return collection.New(name, holder, b.writeConsistencyFactor), nil
}

// loadOrInitShard loads a shard's existing segments if its directory
// is already populated, or initializes a fresh one otherwise. A
// collection freshly created by catalog.TableOfContent.CreateCollection
// has no shard directories yet; one reloaded by Load does.
func loadOrInitShard(collectionDir string, id types.ShardID) (*storage.LocalShard, error) {
	if shard, err := storage.LoadLocalShard(collectionDir, id); err == nil {
		return shard, nil
	}
	return storage.InitLocalShard(collectionDir, id)
}

// parseCollectionParams decodes a collection's opaque params string as
// a URL query: "shards=<n>&replicas=<peer-id>,<peer-id>,...". An empty
// string yields a shard count of 0 and no replicas; build then uses
// defaultShardCount shards.
func parseCollectionParams(raw string) (int, []types.PeerID, error) {
	if raw == "" {
		return 0, nil, nil
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return 0, nil, errs.Wrap(errs.BadInput, err, "smoldb: parsing collection params")
	}

	shardCount := 0
	if s := values.Get("shards"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, nil, errs.Wrapf(errs.BadInput, err, "smoldb: parsing shards param %q", s)
		}
		shardCount = n
	}

	var replicaPeers []types.PeerID
	if s := values.Get("replicas"); s != "" {
		for _, part := range strings.Split(s, ",") {
			n, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return 0, nil, errs.Wrapf(errs.BadInput, err, "smoldb: parsing replica peer id %q", part)
			}
			replicaPeers = append(replicaPeers, types.PeerID(n))
		}
	}

	return shardCount, replicaPeers, nil
}
