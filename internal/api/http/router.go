package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/smoldb/smoldb/internal/catalog"
	"github.com/smoldb/smoldb/internal/consensus"
	"github.com/smoldb/smoldb/internal/errs"
	"github.com/smoldb/smoldb/internal/peers"
	"github.com/smoldb/smoldb/internal/types"
)

// localOnlyQuery parses the local_only query param via cast.ToBool,
// so operators can pass "1"/"t"/"true"/"TRUE" interchangeably instead
// of smoldb rejecting anything but the literal string "true". Values
// strconv.ParseBool does not accept (such as "yes") read as false.
func localOnlyQuery(c *gin.Context) bool {
	v := c.Query("local_only")
	if v == "" {
		return false
	}
	return cast.ToBool(v)
}

// Version is smoldb's reported build version. It has no build-time
// injection today; a future release pipeline can overwrite it via
// -ldflags, as the teacher's cmd binaries do for their own version
// strings.
const Version = "0.1.0"

// Server wires the gin.Engine's handlers onto the core packages: the
// collection registry, the shared peer table, and the consensus
// driver's state, in the style of the teacher's distributed/*/service.go
// Server structs that hold references rather than owning the data.
type Server struct {
	toc    *catalog.TableOfContent
	peers  *peers.Registry
	driver *consensus.Driver
	selfID types.PeerID
	engine *gin.Engine
}

// NewServer builds a Server and its gin.Engine, with routes registered
// but not yet serving.
func NewServer(toc *catalog.TableOfContent, registry *peers.Registry, driver *consensus.Driver, selfID types.PeerID) *Server {
	s := &Server{toc: toc, peers: registry, driver: driver, selfID: selfID}
	s.engine = s.buildRouter()
	return s
}

// Engine returns the underlying gin.Engine, e.g. for cmd/smoldb to
// hand to an http.Server for graceful shutdown.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.handleRoot)
	router.GET("/cluster", s.handleClusterView)
	router.GET("/cluster/peer/add", s.handleAddPeer)
	router.GET("/collections", s.handleListCollections)
	router.PUT("/collections/:name", s.handleCreateCollection)
	router.DELETE("/collections/:name", s.handleDeleteCollection)
	router.GET("/collections/:name", s.handleGetCollection)
	router.GET("/collections/:name/cluster", s.handleCollectionClusterView)
	router.PUT("/collections/:name/points", s.handleUpsertPoints)
	router.GET("/collections/:name/points", s.handleGetPoints)
	router.GET("/collections/:name/points/:id", s.handleGetPoint)

	return router
}

func (s *Server) handleRoot(c *gin.Context) {
	respondOK(c, http.StatusOK, gin.H{"name": "smoldb", "version": Version})
}

func (s *Server) handleClusterView(c *gin.Context) {
	respondOK(c, http.StatusOK, gin.H{
		"self_id": s.selfID,
		"state":   s.driver.State().String(),
		"peers":   s.peers.All(),
	})
}

func (s *Server) handleAddPeer(c *gin.Context) {
	peerIDStr := c.Query("peer_id")
	uri := c.Query("uri")
	if peerIDStr == "" || uri == "" {
		respondErr(c, errs.New(errs.BadInput, "http: peer_id and uri query params are required"))
		return
	}
	peerID, err := strconv.ParseUint(peerIDStr, 10, 64)
	if err != nil {
		respondErr(c, errs.Wrap(errs.BadInput, err, "http: parsing peer_id"))
		return
	}
	s.peers.Put(types.PeerID(peerID), uri)
	respondOK(c, http.StatusOK, gin.H{"added": true})
}

func (s *Server) handleListCollections(c *gin.Context) {
	respondOK(c, http.StatusOK, s.toc.ListCollections())
}

type createCollectionBody struct {
	Params string `json:"params"`
}

func (s *Server) handleCreateCollection(c *gin.Context) {
	name := c.Param("name")
	var body createCollectionBody
	// A missing/empty body is fine: Params defaults to "".
	_ = c.ShouldBindJSON(&body)

	if err := s.toc.CreateCollection(c.Request.Context(), name, map[string]string{"params": body.Params}); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"created": name})
}

func (s *Server) handleDeleteCollection(c *gin.Context) {
	name := c.Param("name")
	if err := s.toc.DeleteCollection(name); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": name})
}

func (s *Server) handleGetCollection(c *gin.Context) {
	name := c.Param("name")
	coll, err := s.toc.Get(name)
	if err != nil {
		respondErr(c, err)
		return
	}
	count, err := coll.CountPoints()
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"name": coll.Name, "point_count": count})
}

func (s *Server) handleCollectionClusterView(c *gin.Context) {
	name := c.Param("name")
	coll, err := s.toc.Get(name)
	if err != nil {
		respondErr(c, err)
		return
	}
	view, err := coll.ClusterView()
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, view)
}

type pointBody struct {
	ID      types.PointID `json:"id"`
	Payload interface{}   `json:"payload"`
}

type upsertPointsBody struct {
	Points []pointBody `json:"points"`
}

func (s *Server) handleUpsertPoints(c *gin.Context) {
	name := c.Param("name")
	localOnly := localOnlyQuery(c)

	var body upsertPointsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondErr(c, errs.Wrap(errs.BadInput, err, "http: decoding upsert body"))
		return
	}

	points := make([]types.Point, 0, len(body.Points))
	for _, pb := range body.Points {
		payload, err := marshalPayload(pb.Payload)
		if err != nil {
			respondErr(c, errs.Wrap(errs.BadInput, err, "http: encoding point payload"))
			return
		}
		points = append(points, types.Point{ID: pb.ID, Payload: payload})
	}

	if err := s.toc.UpsertPoints(c.Request.Context(), name, points, localOnly); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"upserted": len(points)})
}

type getPointsBody struct {
	IDs []types.PointID `json:"ids"`
}

func (s *Server) handleGetPoints(c *gin.Context) {
	name := c.Param("name")
	localOnly := localOnlyQuery(c)

	if shardParam := c.Query("shard_id"); shardParam != "" {
		s.handleGetShardPoints(c, name, shardParam)
		return
	}

	var body getPointsBody
	// Absent/empty body means "all points": ShouldBindJSON errors on an
	// empty request body, which is the expected shape here.
	_ = c.ShouldBindJSON(&body)

	var ids []types.PointID
	if len(body.IDs) > 0 {
		ids = body.IDs
	}

	points, err := s.toc.RetrievePoints(c.Request.Context(), name, ids, localOnly)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, points)
}

// handleGetShardPoints answers a GET points request scoped to a single
// shard's local replica via the shard_id query param: an
// administrative scan that never fans out, regardless of local_only.
func (s *Server) handleGetShardPoints(c *gin.Context, name, shardParam string) {
	shardID, err := strconv.ParseInt(shardParam, 10, 64)
	if err != nil {
		respondErr(c, errs.Wrap(errs.BadInput, err, "http: parsing shard_id"))
		return
	}

	coll, err := s.toc.Get(name)
	if err != nil {
		respondErr(c, err)
		return
	}
	set, err := coll.Holder.ByShardID(types.ShardID(shardID))
	if err != nil {
		respondErr(c, err)
		return
	}
	points, err := set.AllPoints()
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, points)
}

func (s *Server) handleGetPoint(c *gin.Context) {
	name := c.Param("name")
	idParam := c.Param("id")

	id, err := parsePointIDParam(idParam)
	if err != nil {
		respondErr(c, err)
		return
	}

	points, err := s.toc.RetrievePoints(c.Request.Context(), name, []types.PointID{id}, false)
	if err != nil {
		respondErr(c, err)
		return
	}
	if len(points) == 0 {
		respondErr(c, errs.Newf(errs.NotFound, "http: point %s not found", idParam))
		return
	}
	respondOK(c, http.StatusOK, points[0])
}

// parsePointIDParam accepts either a bare uint64 (int-keyed point) or
// any other string (treated as a UUID-keyed point), mirroring
// PointID.UnmarshalJSON's number-vs-string dispatch for a path param
// that carries no quoting of its own.
func parsePointIDParam(raw string) (types.PointID, error) {
	if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return types.NewIntID(n), nil
	}
	return types.NewUUIDID(raw), nil
}

func marshalPayload(v interface{}) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}
