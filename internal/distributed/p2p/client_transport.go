package p2p

import (
	"context"

	"github.com/smoldb/smoldb/internal/errs"
	"github.com/smoldb/smoldb/internal/peers"
	"github.com/smoldb/smoldb/internal/rpc/smoldbpb"
	"github.com/smoldb/smoldb/internal/transport"
	"github.com/smoldb/smoldb/internal/types"
)

// ClientTransport implements consensus.Transport over the p2p
// RaftService, dialing peers through a shared transport.ChannelPool,
// in the style of the teacher's distributed client wrappers
// (distributed/rootcoord/client, distributed/datanode/client): thin
// adapters that resolve a logical peer to a gRPC connection and call
// the generated stub.
type ClientTransport struct {
	pool  *transport.ChannelPool
	peers *peers.Registry
}

// NewClientTransport builds a ClientTransport resolving peers through
// registry and dialing them through pool.
func NewClientTransport(pool *transport.ChannelPool, registry *peers.Registry) *ClientTransport {
	return &ClientTransport{pool: pool, peers: registry}
}

// SendRaftMessage forwards a raw raftpb.Message payload to peerID's
// RaftService.Send.
func (c *ClientTransport) SendRaftMessage(ctx context.Context, peerID types.PeerID, payload []byte) error {
	uri, err := c.peers.Resolve(peerID)
	if err != nil {
		return err
	}
	conn, err := c.pool.GetOrCreate(ctx, uri)
	if err != nil {
		return err
	}
	cli := smoldbpb.NewRaftServiceClient(conn)
	_, err = cli.Send(ctx, &smoldbpb.RaftMessage{Payload: payload})
	if err != nil {
		c.pool.Evict(uri)
		return errs.Wrapf(errs.TransportError, err, "p2p: sending raft message to peer %d", peerID)
	}
	return nil
}

// AddPeerToKnown performs the bootstrap handshake against an existing
// peer at bootstrapURI, announcing selfID/selfURI and returning the
// full known peer table it replies with, per spec.md §4.8.
func (c *ClientTransport) AddPeerToKnown(ctx context.Context, bootstrapURI string, selfID types.PeerID, selfURI string) (map[types.PeerID]string, error) {
	conn, err := c.pool.GetOrCreate(ctx, bootstrapURI)
	if err != nil {
		return nil, err
	}
	cli := smoldbpb.NewRaftServiceClient(conn)
	reply, err := cli.AddPeerToKnown(ctx, &smoldbpb.AddPeerToKnownRequest{
		PeerId: uint64(selfID),
		Uri:    selfURI,
	})
	if err != nil {
		c.pool.Evict(bootstrapURI)
		return nil, errs.Wrapf(errs.TransportError, err, "p2p: bootstrap handshake with %s", bootstrapURI)
	}

	known := make(map[types.PeerID]string, len(reply.GetPeers()))
	for _, p := range reply.GetPeers() {
		known[types.PeerID(p.GetPeerId())] = p.GetUri()
	}
	return known, nil
}
