package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smoldb/smoldb/internal/catalog"
	"github.com/smoldb/smoldb/internal/peers"
	"github.com/smoldb/smoldb/internal/transport"
	"github.com/smoldb/smoldb/internal/types"
)

// TestRegistryMutator_OnPeerAddedAddsRemoteToEveryShard covers scenario
// S6 / testable invariant #4: a peer joining the cluster after a
// collection already exists must become a write replica of every one
// of that collection's shards, without the collection being rebuilt.
func TestRegistryMutator_OnPeerAddedAddsRemoteToEveryShard(t *testing.T) {
	registry := peers.NewRegistry(1, "http://localhost:9920")
	pool := transport.NewChannelPool(time.Second)
	defer pool.CloseAll()

	builder := &collectionBuilder{
		registry:               registry,
		pool:                   pool,
		callTimeout:            time.Second,
		writeConsistencyFactor: 2,
	}
	toc := catalog.New(t.TempDir(), builder.build)
	require.NoError(t, toc.Load(context.Background()))
	require.NoError(t, toc.CreateCollection(context.Background(), "widgets", map[string]string{"params": "shards=2"}))

	mutator := &registryMutator{registry: registry, toc: toc, pool: pool, callTimeout: time.Second}

	mutator.OnPeerAdded(2, "http://localhost:9921")

	coll, err := toc.Get("widgets")
	require.NoError(t, err)
	for _, set := range coll.Holder.Shards() {
		assert.Equal(t, []types.PeerID{2}, set.RemotePeerIDs(), "shard %d should gain the joined peer as a remote", set.ShardID)
	}
	assert.Equal(t, "http://localhost:9921", mustResolve(t, registry, 2))

	// A repeat join (e.g. a retried ConfChange apply) must not
	// duplicate the remote.
	mutator.OnPeerAdded(2, "http://localhost:9921")
	for _, set := range coll.Holder.Shards() {
		assert.Len(t, set.RemotePeerIDs(), 1, "re-adding the same peer must be idempotent")
	}
}

func mustResolve(t *testing.T, registry *peers.Registry, id types.PeerID) string {
	t.Helper()
	uri, err := registry.Resolve(id)
	require.NoError(t, err)
	return uri
}
