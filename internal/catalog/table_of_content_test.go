package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smoldb/smoldb/internal/collection"
	"github.com/smoldb/smoldb/internal/hashring"
	"github.com/smoldb/smoldb/internal/replica"
	"github.com/smoldb/smoldb/internal/types"
)

type memLocal struct{ data map[string]types.Point }

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

func fakeBuilder(ctx context.Context, dir, name string, params map[string]string) (*collection.Collection, error) {
	ring := hashring.New([]types.ShardID{0})
	sets := map[types.ShardID]*replica.ReplicaSet{
		0: replica.NewReplicaSet(0, &memLocal{data: make(map[string]types.Point)}, nil),
	}
	holder := collection.NewReplicaHolder(ring, sets)
	return collection.New(name, holder, 1), nil
}

func TestTableOfContent_CreateDuplicateFails(t *testing.T) {
	toc := New(t.TempDir(), fakeBuilder)
	require.NoError(t, toc.Load(context.Background()))

	require.NoError(t, toc.CreateCollection(context.Background(), "widgets", nil))
	err := toc.CreateCollection(context.Background(), "widgets", nil)
	assert.Error(t, err)
}

func TestTableOfContent_RejectsPathSeparatorNames(t *testing.T) {
	toc := New(t.TempDir(), fakeBuilder)
	err := toc.CreateCollection(context.Background(), "a/b", nil)
	assert.Error(t, err)
}

func TestTableOfContent_DeleteUnknownFails(t *testing.T) {
	toc := New(t.TempDir(), fakeBuilder)
	err := toc.DeleteCollection("missing")
	assert.Error(t, err)
}

func TestTableOfContent_CreateDeleteListRoundTrip(t *testing.T) {
	toc := New(t.TempDir(), fakeBuilder)
	require.NoError(t, toc.CreateCollection(context.Background(), "widgets", nil))
	assert.Equal(t, []string{"widgets"}, toc.ListCollections())

	require.NoError(t, toc.DeleteCollection("widgets"))
	assert.Empty(t, toc.ListCollections())
}

func TestTableOfContent_UpsertAndRetrievePointsRoundTrip(t *testing.T) {
	toc := New(t.TempDir(), fakeBuilder)
	require.NoError(t, toc.CreateCollection(context.Background(), "widgets", nil))

	points := []types.Point{{ID: types.NewIntID(1), Payload: json.RawMessage(`{"a":1}`)}}
	require.NoError(t, toc.UpsertPoints(context.Background(), "widgets", points, false))

	got, err := toc.RetrievePoints(context.Background(), "widgets", []types.PointID{types.NewIntID(1)}, false)
	require.NoError(t, err)
	require.Len(t, got, 1)

	all, err := toc.RetrievePoints(context.Background(), "widgets", nil, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTableOfContent_LoadScansExistingDirectories(t *testing.T) {
	root := t.TempDir()
	toc := New(root, fakeBuilder)
	require.NoError(t, toc.CreateCollection(context.Background(), "widgets", nil))

	reloaded := New(root, fakeBuilder)
	require.NoError(t, reloaded.Load(context.Background()))
	assert.Equal(t, []string{"widgets"}, reloaded.ListCollections())
}
