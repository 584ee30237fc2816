package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smoldb/smoldb/internal/catalog"
	"github.com/smoldb/smoldb/internal/collection"
	"github.com/smoldb/smoldb/internal/consensus"
	"github.com/smoldb/smoldb/internal/hashring"
	"github.com/smoldb/smoldb/internal/peers"
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
	return collection.New(name, collection.NewReplicaHolder(ring, sets), 1), nil
}

type noopMutator struct{}

func (noopMutator) OnPeerAdded(types.PeerID, string) {}
func (noopMutator) OnPeerRemoved(types.PeerID)       {}

type noopTransport struct{}

func (noopTransport) SendRaftMessage(context.Context, types.PeerID, []byte) error { return nil }
func (noopTransport) AddPeerToKnown(context.Context, string, types.PeerID, string) (map[types.PeerID]string, error) {
	return nil, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	toc := catalog.New(t.TempDir(), fakeBuilder)
	require.NoError(t, toc.Load(context.Background()))
	require.NoError(t, toc.CreateCollection(context.Background(), "widgets", nil))

	registry := peers.NewRegistry(1, "http://localhost:9920")
	driver := consensus.New(consensus.Config{
		SelfID:       1,
		SelfURI:      "http://localhost:9920",
		TickInterval: time.Millisecond,
		Mutator:      noopMutator{},
		Registry:     registry,
		Transport:    noopTransport{},
	})

	return NewServer(toc, registry, driver, 1)
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func TestServer_RootReturnsIdentity(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, "GET", "/", "")
	assert.Equal(t, 200, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	result := body["result"].(map[string]interface{})
	assert.Equal(t, "smoldb", result["name"])
}

func TestServer_CollectionLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, "GET", "/collections", "")
	assert.Equal(t, 200, rec.Code)

	rec = doRequest(s, "PUT", "/collections/gadgets", `{"params":""}`)
	assert.Equal(t, 200, rec.Code)

	rec = doRequest(s, "DELETE", "/collections/gadgets", "")
	assert.Equal(t, 200, rec.Code)

	rec = doRequest(s, "DELETE", "/collections/gadgets", "")
	assert.NotEqual(t, 200, rec.Code, "deleting an already-deleted collection should fail")
}

func TestServer_UpsertAndGetPointsRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, "PUT", "/collections/widgets/points", `{"points":[{"id":1,"payload":{"a":1}}]}`)
	require.Equal(t, 200, rec.Code, rec.Body.String())

	rec = doRequest(s, "GET", "/collections/widgets/points/1", "")
	assert.Equal(t, 200, rec.Code)

	rec = doRequest(s, "GET", "/collections/widgets/points/999", "")
	assert.Equal(t, 404, rec.Code)

	rec = doRequest(s, "GET", "/collections/widgets", "")
	assert.Equal(t, 200, rec.Code)
}

func TestServer_GetPointsByShardID(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, "PUT", "/collections/widgets/points", `{"points":[{"id":1,"payload":{"a":1}}]}`)
	require.Equal(t, 200, rec.Code, rec.Body.String())

	rec = doRequest(s, "GET", "/collections/widgets/points?shard_id=0", "")
	require.Equal(t, 200, rec.Code, rec.Body.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	result := body["result"].([]interface{})
	assert.Len(t, result, 1)

	rec = doRequest(s, "GET", "/collections/widgets/points?shard_id=not-a-number", "")
	assert.Equal(t, 400, rec.Code)
}

func TestServer_AddPeerRequiresBothParams(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, "GET", "/cluster/peer/add?peer_id=2", "")
	assert.Equal(t, 400, rec.Code)

	rec = doRequest(s, "GET", "/cluster/peer/add?peer_id=2&uri=http://localhost:9921", "")
	assert.Equal(t, 200, rec.Code)
}

func TestServer_ClusterView(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, "GET", "/cluster", "")
	assert.Equal(t, 200, rec.Code)
}
