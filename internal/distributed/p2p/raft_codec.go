package p2p

import (
	"go.etcd.io/etcd/raft/v3/raftpb"
)

// rawRaftMessage wraps a raftpb.Message for the RaftService.Send wire
// payload: the proto schema carries it as opaque bytes (spec.md §6.2),
// so encoding/decoding happens here rather than in the generated code.
type rawRaftMessage struct {
	Message raftpb.Message
}

func (m *rawRaftMessage) Unmarshal(data []byte) error {
	return m.Message.Unmarshal(data)
}

// MarshalRaftMessage encodes a raftpb.Message for RaftService.Send's
// payload field.
func MarshalRaftMessage(msg raftpb.Message) ([]byte, error) {
	return msg.Marshal()
}
