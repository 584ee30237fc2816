package replica

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smoldb/smoldb/internal/types"
)

// fakeLocal is a trivial in-memory LocalReplica used to exercise
// ReplicaSet without a real bbolt-backed storage.LocalShard.
type fakeLocal struct {
	data map[string]types.Point
	fail bool
}

func newFakeLocal() *fakeLocal { return &fakeLocal{data: make(map[string]types.Point)} }

func (f *fakeLocal) UpsertPoints(points []types.Point) error {
	if f.fail {
		return assert.AnError
	}
	for _, p := range points {
		f.data[p.ID.StringForm()] = p
	}
	return nil
}

func (f *fakeLocal) GetPoints(ids []types.PointID) ([]types.Point, error) {
	var out []types.Point
	for _, id := range ids {
		if p, ok := f.data[id.StringForm()]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeLocal) AllPoints() ([]types.Point, error) {
	out := make([]types.Point, 0, len(f.data))
	for _, p := range f.data {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeLocal) CountPoints() (int, error) {
	return len(f.data), nil
}

func TestReplicaSet_UpsertLocalOnlyCountsOne(t *testing.T) {
	local := newFakeLocal()
	rs := NewReplicaSet(0, local, nil)

	accepted, err := rs.UpsertPoints(context.Background(), []types.Point{
		{ID: types.NewIntID(1), Payload: json.RawMessage(`{}`)},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, accepted)
}

func TestReplicaSet_UpsertFailsWhenLocalFails(t *testing.T) {
	local := newFakeLocal()
	local.fail = true
	rs := NewReplicaSet(0, local, nil)

	_, err := rs.UpsertPoints(context.Background(), []types.Point{
		{ID: types.NewIntID(1), Payload: json.RawMessage(`{}`)},
	}, false)
	assert.Error(t, err)
}

func TestReplicaSet_GetPointsReturnsLocalCopy(t *testing.T) {
	local := newFakeLocal()
	staleLocal := types.Point{ID: types.NewIntID(1), Payload: json.RawMessage(`{"v":"local"}`)}
	require.NoError(t, local.UpsertPoints([]types.Point{staleLocal}))

	rs := NewReplicaSet(0, local, nil)

	got, err := rs.GetPoints(context.Background(), []types.PointID{types.NewIntID(1)}, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.JSONEq(t, `{"v":"local"}`, string(got[0].Payload))
}

func TestReplicaSet_GetPointsSkipsMissingIDs(t *testing.T) {
	local := newFakeLocal()
	rs := NewReplicaSet(0, local, nil)

	got, err := rs.GetPoints(context.Background(), []types.PointID{types.NewIntID(42)}, false)
	require.NoError(t, err)
	assert.Empty(t, got)
}
