// Package p2p wires smoldb's internal gRPC surface — RaftService and
// PointsInternalService — onto a single grpc.Server, in the style of
// the teacher's distributed/rootcoord Server: a grpcErrChan startup
// handshake, keepalive policy tuned for intra-cluster traffic, and a
// graceful stop that waits for the serve goroutine to exit.
package p2p

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/smoldb/smoldb/internal/consensus"
	"github.com/smoldb/smoldb/internal/errs"
	"github.com/smoldb/smoldb/internal/log"
	"github.com/smoldb/smoldb/internal/rpc/smoldbpb"
)

var (
	kaEnforcementPolicy = keepalive.EnforcementPolicy{
		MinTime:             5 * time.Second,
		PermitWithoutStream: true,
	}
	kaServerParams = keepalive.ServerParameters{
		Time:    60 * time.Second,
		Timeout: 10 * time.Second,
	}
)

// Server hosts smoldb's p2p gRPC services on one listener.
type Server struct {
	addr string

	grpcServer  *grpc.Server
	grpcErrChan chan error
	wg          sync.WaitGroup

	raftHandler   smoldbpb.RaftServiceServer
	pointsHandler smoldbpb.PointsInternalServiceServer
}

// JoinHandler processes an incoming AddPeerToKnown handshake: it
// records the new peer and returns the full known peer table.
type JoinHandler func(ctx context.Context, peerID uint64, uri string) (map[uint64]string, error)

// NewServer builds a Server bound to addr, serving raftHandler and
// pointsHandler.
func NewServer(addr string, raftHandler smoldbpb.RaftServiceServer, pointsHandler smoldbpb.PointsInternalServiceServer) *Server {
	return &Server{
		addr:          addr,
		grpcErrChan:   make(chan error, 1),
		raftHandler:   raftHandler,
		pointsHandler: pointsHandler,
	}
}

// Start listens and serves in a background goroutine, blocking until
// the listener is confirmed up (or failed).
func (s *Server) Start() error {
	s.wg.Add(1)
	go s.serveLoop()
	return <-s.grpcErrChan
}

func (s *Server) serveLoop() {
	defer s.wg.Done()

	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.grpcErrChan <- errs.Wrapf(errs.TransportError, err, "p2p: listening on %s", s.addr)
		return
	}

	s.grpcServer = grpc.NewServer(
		grpc.KeepaliveEnforcementPolicy(kaEnforcementPolicy),
		grpc.KeepaliveParams(kaServerParams),
	)
	smoldbpb.RegisterRaftServiceServer(s.grpcServer, s.raftHandler)
	smoldbpb.RegisterPointsInternalServiceServer(s.grpcServer, s.pointsHandler)

	s.grpcErrChan <- nil
	if err := s.grpcServer.Serve(lis); err != nil {
		log.Error("p2p: grpc server exited", zap.Error(err))
	}
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() {
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
	s.wg.Wait()
}

// RaftServiceHandler implements smoldbpb.RaftServiceServer over a
// consensus.Driver.
type RaftServiceHandler struct {
	smoldbpb.UnimplementedRaftServiceServer
	driver *consensus.Driver
	onJoin JoinHandler
}

// NewRaftServiceHandler builds a RaftServiceHandler delegating raft
// frames to driver and new-peer requests to onJoin.
func NewRaftServiceHandler(driver *consensus.Driver, onJoin JoinHandler) *RaftServiceHandler {
	return &RaftServiceHandler{driver: driver, onJoin: onJoin}
}

// Send decodes an inbound raft message and hands it to the driver's
// mailbox.
func (h *RaftServiceHandler) Send(ctx context.Context, req *smoldbpb.RaftMessage) (*smoldbpb.RaftSendReply, error) {
	var msg rawRaftMessage
	if err := msg.Unmarshal(req.GetPayload()); err != nil {
		return nil, errs.Wrap(errs.BadInput, err, "p2p: decoding raft message")
	}
	h.driver.Step(msg.Message)
	return &smoldbpb.RaftSendReply{}, nil
}

// AddPeerToKnown handles a joining peer's bootstrap handshake: it
// records the new peer (including for every collection's
// ReplicaHolder, via onJoin) and replies with the full known peer
// table, per spec.md §4.8.
func (h *RaftServiceHandler) AddPeerToKnown(ctx context.Context, req *smoldbpb.AddPeerToKnownRequest) (*smoldbpb.AddPeerToKnownReply, error) {
	known, err := h.onJoin(ctx, req.GetPeerId(), req.GetUri())
	if err != nil {
		return nil, errs.Wrap(errs.ServiceError, err, "p2p: handling AddPeerToKnown")
	}

	peers := make([]*smoldbpb.PeerEntry, 0, len(known))
	for id, uri := range known {
		peers = append(peers, &smoldbpb.PeerEntry{PeerId: id, Uri: uri})
	}
	return &smoldbpb.AddPeerToKnownReply{Peers: peers}, nil
}
