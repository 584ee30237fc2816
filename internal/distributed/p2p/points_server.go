package p2p

import (
	"context"

	"github.com/smoldb/smoldb/internal/catalog"
	"github.com/smoldb/smoldb/internal/errs"
	"github.com/smoldb/smoldb/internal/rpc/smoldbpb"
	"github.com/smoldb/smoldb/internal/types"
)

// PointsServiceHandler implements smoldbpb.PointsInternalServiceServer
// over a catalog.TableOfContent, dispatching each call directly to the
// named collection's shard rather than through its ring (the caller
// already resolved which shard it wants a replica of), per spec.md
// §4.3.
type PointsServiceHandler struct {
	smoldbpb.UnimplementedPointsInternalServiceServer
	toc *catalog.TableOfContent
}

// NewPointsServiceHandler builds a PointsServiceHandler over toc.
func NewPointsServiceHandler(toc *catalog.TableOfContent) *PointsServiceHandler {
	return &PointsServiceHandler{toc: toc}
}

// UpsertPoints writes the request's points to the named shard's local
// replica only: a remote fan-out never re-fans further.
func (h *PointsServiceHandler) UpsertPoints(ctx context.Context, req *smoldbpb.UpsertPointsRequest) (*smoldbpb.UpsertPointsReply, error) {
	coll, err := h.toc.Get(req.GetCollection())
	if err != nil {
		return nil, err
	}
	set, err := coll.Holder.ByShardID(types.ShardID(req.GetShardId()))
	if err != nil {
		return nil, err
	}

	points := make([]types.Point, 0, len(req.GetPoints()))
	for _, p := range req.GetPoints() {
		points = append(points, types.Point{ID: types.NewIntID(p.GetId()), Payload: p.GetPayload()})
	}

	if err := set.Local.UpsertPoints(points); err != nil {
		return nil, errs.Wrap(errs.StorageError, err, "p2p: local upsert for remote fan-out")
	}
	return &smoldbpb.UpsertPointsReply{Accepted: uint32(len(points))}, nil
}

// GetPoints reads the requested ids from the named shard's local
// replica only.
func (h *PointsServiceHandler) GetPoints(ctx context.Context, req *smoldbpb.GetPointsRequest) (*smoldbpb.GetPointsReply, error) {
	coll, err := h.toc.Get(req.GetCollection())
	if err != nil {
		return nil, err
	}
	set, err := coll.Holder.ByShardID(types.ShardID(req.GetShardId()))
	if err != nil {
		return nil, err
	}

	ids := make([]types.PointID, 0, len(req.GetIds()))
	for _, id := range req.GetIds() {
		ids = append(ids, types.NewIntID(id))
	}

	points, err := set.Local.GetPoints(ids)
	if err != nil {
		return nil, errs.Wrap(errs.StorageError, err, "p2p: local read for remote fan-out")
	}

	wire := make([]*smoldbpb.PointPayload, 0, len(points))
	for _, p := range points {
		wire = append(wire, &smoldbpb.PointPayload{Id: p.ID.Int, Payload: p.Payload})
	}
	return &smoldbpb.GetPointsReply{Points: wire}, nil
}
