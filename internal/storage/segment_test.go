package storage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smoldb/smoldb/internal/types"
)

func TestSegment_UpsertAndGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	seg, err := CreateSegment(dir, 0)
	require.NoError(t, err)
	defer seg.Close()

	p1 := types.Point{ID: types.NewIntID(1), Payload: json.RawMessage(`{"a":1}`)}
	p2 := types.Point{ID: types.NewUUIDID("dummy-uuid"), Payload: json.RawMessage(`{"b":2}`)}

	require.NoError(t, seg.UpsertPoints([]types.Point{p1, p2}))

	got, err := seg.GetPoints([]types.PointID{p1.ID, p2.ID, types.NewIntID(999)})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	n, err := seg.CountPoints()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSegment_IntAndUUIDKeysDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	seg, err := CreateSegment(dir, 0)
	require.NoError(t, err)
	defer seg.Close()

	intPoint := types.Point{ID: types.NewIntID(5), Payload: json.RawMessage(`{"v":"int"}`)}
	uuidPoint := types.Point{ID: types.NewUUIDID("5"), Payload: json.RawMessage(`{"v":"uuid"}`)}

	require.NoError(t, seg.UpsertPoints([]types.Point{intPoint, uuidPoint}))

	n, err := seg.CountPoints()
	require.NoError(t, err)
	assert.Equal(t, 2, n, "Id(5) and Uuid(\"5\") must be stored as distinct keys")
}

func TestSegment_DeletePoints(t *testing.T) {
	dir := t.TempDir()
	seg, err := CreateSegment(dir, 0)
	require.NoError(t, err)
	defer seg.Close()

	p := types.Point{ID: types.NewIntID(1), Payload: json.RawMessage(`{}`)}
	require.NoError(t, seg.UpsertPoints([]types.Point{p}))
	require.NoError(t, seg.DeletePoints([]types.PointID{p.ID}))

	got, err := seg.GetPoints([]types.PointID{p.ID})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLocalShard_RoundTripAndCount(t *testing.T) {
	dir := t.TempDir()
	shard, err := InitLocalShard(dir, 0)
	require.NoError(t, err)
	defer shard.Close()

	points := []types.Point{
		{ID: types.NewIntID(1), Payload: json.RawMessage(`{}`)},
		{ID: types.NewIntID(2), Payload: json.RawMessage(`{}`)},
	}
	require.NoError(t, shard.UpsertPoints(points))

	got, err := shard.GetPoints([]types.PointID{types.NewIntID(1), types.NewIntID(2), types.NewIntID(3)})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	n, err := shard.CountPoints()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
