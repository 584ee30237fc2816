package collection

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smoldb/smoldb/internal/hashring"
	"github.com/smoldb/smoldb/internal/replica"
	"github.com/smoldb/smoldb/internal/types"
)

type memLocal struct {
	data map[string]types.Point
}

func newMemLocal() *memLocal { return &memLocal{data: make(map[string]types.Point)} }

func (m *memLocal) UpsertPoints(points []types.Point) error {
	for _, p := range points {
		m.data[p.ID.StringForm()] = p
	}
	return nil
}

func (m *memLocal) GetPoints(ids []types.PointID) ([]types.Point, error) {
	var out []types.Point
	for _, id := range ids {
		if p, ok := m.data[id.StringForm()]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memLocal) AllPoints() ([]types.Point, error) {
	out := make([]types.Point, 0, len(m.data))
	for _, p := range m.data {
		out = append(out, p)
	}
	return out, nil
}

func (m *memLocal) CountPoints() (int, error) { return len(m.data), nil }

func buildTestCollection(t *testing.T, shardIDs []types.ShardID, writeFactor int) *Collection {
	t.Helper()
	ring := hashring.New(shardIDs)
	sets := make(map[types.ShardID]*replica.ReplicaSet, len(shardIDs))
	for _, id := range shardIDs {
		sets[id] = replica.NewReplicaSet(id, newMemLocal(), nil)
	}
	holder := NewReplicaHolder(ring, sets)
	return New("test", holder, writeFactor)
}

func TestCollection_UpsertAndGetRoundTrip(t *testing.T) {
	c := buildTestCollection(t, []types.ShardID{0, 1}, 1)

	points := []types.Point{
		{ID: types.NewIntID(1), Payload: json.RawMessage(`{"a":1}`)},
		{ID: types.NewIntID(2), Payload: json.RawMessage(`{"a":2}`)},
		{ID: types.NewUUIDID("dummy-uuid"), Payload: json.RawMessage(`{"a":3}`)},
	}
	require.NoError(t, c.UpsertPoints(context.Background(), points, false))

	got, err := c.GetPoints(context.Background(), []types.PointID{
		types.NewIntID(1), types.NewIntID(2), types.NewUUIDID("dummy-uuid"), types.NewIntID(999),
	}, false)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	n, err := c.CountPoints()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCollection_WriteConsistencyFactorAboveReplicaCountStillSucceeds(t *testing.T) {
	// min(N, WriteConsistencyFactor) caps the requirement at the
	// shard's actual replica count: a shard with no remotes only ever
	// needs its own local replica, even with a factor of 2.
	c := buildTestCollection(t, []types.ShardID{0}, 2)

	err := c.UpsertPoints(context.Background(), []types.Point{
		{ID: types.NewIntID(1), Payload: json.RawMessage(`{}`)},
	}, false)
	assert.NoError(t, err, "min(1, 2) = 1: the local write alone satisfies quorum on a lone shard")
}

func TestCollection_LocalOnlyAlwaysSatisfiesQuorum(t *testing.T) {
	// localOnly forces the threshold to 1 regardless of
	// WriteConsistencyFactor, per spec.md §4.5 step 4.
	c := buildTestCollection(t, []types.ShardID{0}, 5)

	err := c.UpsertPoints(context.Background(), []types.Point{
		{ID: types.NewIntID(1), Payload: json.RawMessage(`{}`)},
	}, true)
	assert.NoError(t, err)
}

func TestRequiredAccepts(t *testing.T) {
	cases := []struct {
		name        string
		localOnly   bool
		remoteCount int
		wcf         int
		want        int
	}{
		{"local only ignores factor", true, 0, 5, 1},
		{"no remotes caps at one", false, 0, 2, 1},
		{"factor caps below replica count", false, 3, 2, 2},
		{"factor above replica count caps at replica count", false, 1, 5, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, requiredAccepts(tc.localOnly, tc.remoteCount, tc.wcf))
		})
	}
}

func TestReplicaHolder_DynamicallyAddedRemoteCountsTowardQuorum(t *testing.T) {
	// Simulates scenario S6: a peer joins after the collection already
	// exists, and spec.md §4.8(b) requires it to start counting toward
	// write quorum immediately, without rebuilding the ReplicaSet.
	c := buildTestCollection(t, []types.ShardID{0}, 2)
	set, err := c.Holder.ByShardID(0)
	require.NoError(t, err)

	assert.Equal(t, 0, set.RemoteCount())
	added := set.AddRemote(replica.NewRemoteShard(99, "test", 0, nil, nil, 0))
	assert.True(t, added, "first join adds the remote")
	assert.Equal(t, 1, set.RemoteCount())

	addedAgain := set.AddRemote(replica.NewRemoteShard(99, "test", 0, nil, nil, 0))
	assert.False(t, addedAgain, "re-adding the same peer id is a no-op")
	assert.Equal(t, 1, set.RemoteCount())

	assert.Equal(t, []types.PeerID{99}, set.RemotePeerIDs())
}
