// Package consensus hosts the cluster membership Raft group on a
// dedicated goroutine, fed by a mailbox of typed messages, in the
// style of the kvrocks-controller raft node this is grounded on:
// etcd/raft/v3's raw raft.Node over an in-memory storage, a 100ms tick
// loop, and a Ready()-drain-then-Advance() cycle. Per spec.md §4.8,
// smoldb's raft group only carries membership (AddPeer) and opaque
// data-plane markers, never the point data itself.
package consensus

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"go.etcd.io/etcd/raft/v3"
	"go.etcd.io/etcd/raft/v3/raftpb"
	"go.uber.org/zap"

	"github.com/smoldb/smoldb/internal/errs"
	"github.com/smoldb/smoldb/internal/log"
	"github.com/smoldb/smoldb/internal/peers"
	"github.com/smoldb/smoldb/internal/types"
)

// State is a peer's bootstrap/run state, per spec.md §4.8's state
// machine table.
type State int

const (
	StateBootstrapping State = iota
	StateRequestingPeers
	StateLoneStart
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "Bootstrapping"
	case StateRequestingPeers:
		return "RequestingPeers"
	case StateLoneStart:
		return "LoneStart"
	case StateRunning:
		return "Running"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// OpAddPeer is a proposed membership change: a new peer id/URI pair to
// add to both the raft group (via ConfChange) and the shared peer
// table.
type OpAddPeer struct {
	PeerID types.PeerID
	URI    string
}

// OpUpdateData is an opaque data-plane marker proposed through raft.
// smoldb's raft group exists purely to agree on cluster membership;
// it never replicates point data (that happens via ReplicaSet), but
// the mailbox still accepts this operation kind per spec.md §4.8 so a
// future data-plane consensus use has somewhere to plug in.
type OpUpdateData struct {
	Payload []byte
}

type proposeMsg struct {
	id       uint64
	op       interface{}
	callback func(error)
}

// normalEntryEnvelope wraps an OpUpdateData proposal with its
// proposal id, so applyNormalEntry can resolve the pending callback
// once the entry commits.
type normalEntryEnvelope struct {
	ProposalID uint64 `json:"proposal_id"`
	Payload    []byte `json:"payload"`
}

type raftMsg struct {
	message raftpb.Message
}

// PeerTableMutator is invoked when a ConfChange add/remove is applied,
// so the driver can keep the shared peer registry and every
// collection's ReplicaHolder in sync without importing them directly.
type PeerTableMutator interface {
	OnPeerAdded(id types.PeerID, uri string)
	OnPeerRemoved(id types.PeerID)
}

// Transport dials a peer's RaftService to forward an outbound raft
// message or perform the bootstrap handshake.
type Transport interface {
	SendRaftMessage(ctx context.Context, peerID types.PeerID, payload []byte) error
	AddPeerToKnown(ctx context.Context, bootstrapURI string, selfID types.PeerID, selfURI string) (knownPeers map[types.PeerID]string, err error)
}

// Driver owns the Raft node and its mailbox. All state it touches
// (raftNode, pending, confState, appliedIndex) is only ever read or
// written from the single goroutine started by Run, so none of it is
// guarded by a mutex.
type Driver struct {
	selfID  types.PeerID
	selfURI string

	raftNode raft.Node
	storage  *raft.MemoryStorage
	mutator  PeerTableMutator
	registry *peers.Registry
	transport Transport

	tickInterval time.Duration

	proposeCh chan proposeMsg
	raftCh    chan raftMsg
	stopCh    chan struct{}
	doneCh    chan struct{}

	nextProposalID uint64
	pending        map[uint64]func(error)
	pendingByNode  map[uint64]uint64

	confState    raftpb.ConfState
	appliedIndex uint64

	state atomic.Int32

	wg sync.WaitGroup
}

// Config bundles Driver's construction-time dependencies.
type Config struct {
	SelfID       types.PeerID
	SelfURI      string
	TickInterval time.Duration
	Mutator      PeerTableMutator
	Registry     *peers.Registry
	Transport    Transport
	// BootstrapURI, if non-empty, names an existing peer's p2p URI to
	// join through; empty means a lone/first-peer start.
	BootstrapURI string
}

// New builds a Driver over a fresh in-memory single-node raft group
// containing only selfID. Call Run to start its goroutine.
func New(cfg Config) *Driver {
	storage := raft.NewMemoryStorage()

	d := &Driver{
		selfID:       cfg.SelfID,
		selfURI:      cfg.SelfURI,
		storage:      storage,
		mutator:      cfg.Mutator,
		registry:     cfg.Registry,
		transport:    cfg.Transport,
		tickInterval: cfg.TickInterval,
		proposeCh:    make(chan proposeMsg, 64),
		raftCh:       make(chan raftMsg, 256),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
		pending:      make(map[uint64]func(error)),
		pendingByNode: make(map[uint64]uint64),
	}
	if d.tickInterval <= 0 {
		d.tickInterval = 100 * time.Millisecond
	}

	raftCfg := &raft.Config{
		ID:              uint64(cfg.SelfID),
		ElectionTick:    10,
		HeartbeatTick:   1,
		Storage:         storage,
		MaxSizePerMsg:   1024 * 1024,
		MaxInflightMsgs: 256,
	}

	if cfg.BootstrapURI != "" {
		d.state.Store(int32(StateBootstrapping))
		d.raftNode = raft.StartNode(raftCfg, nil)
	} else {
		d.state.Store(int32(StateLoneStart))
		d.raftNode = raft.StartNode(raftCfg, []raft.Peer{{ID: uint64(cfg.SelfID)}})
	}
	return d
}

// State returns the driver's current bootstrap/run state.
func (d *Driver) State() State {
	return State(d.state.Load())
}

// Bootstrap performs the joining-peer handshake against an existing
// cluster member, per spec.md §4.8: it RPCs AddPeerToKnown, then
// inserts every returned peer into the shared registry before the
// caller starts the tick loop via Run.
func (d *Driver) Bootstrap(ctx context.Context, bootstrapURI string) error {
	d.state.Store(int32(StateRequestingPeers))

	known, err := d.transport.AddPeerToKnown(ctx, bootstrapURI, d.selfID, d.selfURI)
	if err != nil {
		return errs.Wrap(errs.TransportError, err, "consensus: bootstrap handshake failed")
	}
	for id, uri := range known {
		d.registry.Put(id, uri)
		if id != d.selfID {
			d.mutator.OnPeerAdded(id, uri)
		}
	}
	d.state.Store(int32(StateRunning))
	return nil
}

// Run starts the driver's dedicated goroutine. It returns immediately;
// call Stop to shut it down.
func (d *Driver) Run() {
	d.wg.Add(1)
	go d.loop()
}

// Stop signals the loop to exit and waits for it to finish.
func (d *Driver) Stop() {
	close(d.stopCh)
	d.wg.Wait()
	d.state.Store(int32(StateStopped))
}

// Done returns a channel closed once the driver's loop has exited.
func (d *Driver) Done() <-chan struct{} {
	return d.doneCh
}

// Step delivers an inbound raft message received over RaftService.Send
// into the mailbox.
func (d *Driver) Step(m raftpb.Message) {
	select {
	case d.raftCh <- raftMsg{message: m}:
	case <-d.stopCh:
	}
}

// Propose submits an operation to the raft log and calls callback
// once the proposal either fails to enqueue or (eventually) is
// applied. Per spec.md §9, a proposal id collision is dropped
// silently — the caller is never notified in this version, only a
// warning is logged.
func (d *Driver) Propose(ctx context.Context, op interface{}, callback func(error)) {
	id := atomic.AddUint64(&d.nextProposalID, 1)
	msg := proposeMsg{id: id, op: op, callback: callback}
	select {
	case d.proposeCh <- msg:
	case <-ctx.Done():
		if callback != nil {
			callback(ctx.Err())
		}
	case <-d.stopCh:
	}
}

func (d *Driver) loop() {
	defer d.wg.Done()
	if d.state.Load() == int32(StateRequestingPeers) || d.state.Load() == int32(StateLoneStart) {
		d.state.Store(int32(StateRunning))
	}

	ticker := time.NewTicker(d.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.raftNode.Tick()

		case msg := <-d.proposeCh:
			d.handlePropose(msg)

		case msg := <-d.raftCh:
			if err := d.raftNode.Step(context.Background(), msg.message); err != nil {
				log.Warn("consensus: step failed", zap.Error(err))
			}

		case rd := <-d.raftNode.Ready():
			d.handleReady(rd)

		case <-d.stopCh:
			d.raftNode.Stop()
			close(d.doneCh)
			return
		}
	}
}

func (d *Driver) handlePropose(msg proposeMsg) {
	if _, exists := d.pending[msg.id]; exists {
		log.Warn("consensus: dropping proposal with colliding id",
			zap.String("kind", string(errs.ProposalDropped)), zap.Uint64("proposal_id", msg.id))
		return
	}

	if addPeer, ok := msg.op.(OpAddPeer); ok {
		cc := raftpb.ConfChange{
			Type:    raftpb.ConfChangeAddNode,
			NodeID:  uint64(addPeer.PeerID),
			Context: []byte(addPeer.URI),
		}
		d.pending[msg.id] = msg.callback
		d.pendingByNode[cc.NodeID] = msg.id
		if err := d.raftNode.ProposeConfChange(context.Background(), cc); err != nil {
			delete(d.pending, msg.id)
			delete(d.pendingByNode, cc.NodeID)
			if msg.callback != nil {
				msg.callback(errs.Wrap(errs.ServiceError, err, "consensus: proposing conf change"))
			}
		}
		return
	}

	op, _ := msg.op.(OpUpdateData)
	data, err := json.Marshal(normalEntryEnvelope{ProposalID: msg.id, Payload: op.Payload})
	if err != nil {
		if msg.callback != nil {
			msg.callback(errs.Wrap(errs.BadInput, err, "consensus: marshaling proposal"))
		}
		return
	}
	d.pending[msg.id] = msg.callback
	if err := d.raftNode.Propose(context.Background(), data); err != nil {
		delete(d.pending, msg.id)
		if msg.callback != nil {
			msg.callback(errs.Wrap(errs.ServiceError, err, "consensus: proposing entry"))
		}
	}
}

func (d *Driver) handleReady(rd raft.Ready) {
	if err := d.storage.Append(rd.Entries); err != nil {
		log.Error("consensus: appending entries failed", zap.Error(err))
	}
	if !raft.IsEmptyHardState(rd.HardState) {
		if err := d.storage.SetHardState(rd.HardState); err != nil {
			log.Error("consensus: persisting hard state failed", zap.Error(err))
		}
	}

	for _, msg := range rd.Messages {
		d.sendRaftMessage(msg)
	}

	d.applyEntries(rd.CommittedEntries)

	d.raftNode.Advance()
}

func (d *Driver) sendRaftMessage(msg raftpb.Message) {
	data, err := msg.Marshal()
	if err != nil {
		log.Error("consensus: marshaling outbound raft message", zap.Error(err))
		return
	}
	go func() {
		if err := d.transport.SendRaftMessage(context.Background(), types.PeerID(msg.To), data); err != nil {
			log.Warn("consensus: sending raft message failed", zap.Uint64("to", msg.To), zap.Error(err))
			d.raftNode.ReportUnreachable(msg.To)
		}
	}()
}

func (d *Driver) applyEntries(entries []raftpb.Entry) {
	for _, entry := range entries {
		switch entry.Type {
		case raftpb.EntryNormal:
			d.applyNormalEntry(entry)
		case raftpb.EntryConfChange:
			d.applyConfChange(entry)
		case raftpb.EntryConfChangeV2:
			d.applyConfChangeV2(entry)
		}
		d.appliedIndex = entry.Index
	}
}

func (d *Driver) applyNormalEntry(entry raftpb.Entry) {
	if len(entry.Data) == 0 {
		return
	}
	var envelope normalEntryEnvelope
	if err := json.Unmarshal(entry.Data, &envelope); err != nil {
		log.Warn("consensus: decoding normal entry", zap.Error(err))
		return
	}
	// There is no data-plane state machine below the raft group today
	// (point data flows through ReplicaSet, not through raft): an
	// applied OpUpdateData only resolves the proposer's callback.
	if callback, ok := d.pending[envelope.ProposalID]; ok {
		delete(d.pending, envelope.ProposalID)
		if callback != nil {
			callback(nil)
		}
	}
}

func (d *Driver) applyConfChange(entry raftpb.Entry) {
	var cc raftpb.ConfChange
	if err := cc.Unmarshal(entry.Data); err != nil {
		log.Error("consensus: decoding conf change", zap.Error(err))
		return
	}
	d.confState = *d.raftNode.ApplyConfChange(cc)
	d.dispatchConfChangeEffect(cc.Type, types.PeerID(cc.NodeID), string(cc.Context))
}

func (d *Driver) applyConfChangeV2(entry raftpb.Entry) {
	var cc raftpb.ConfChangeV2
	if err := cc.Unmarshal(entry.Data); err != nil {
		log.Error("consensus: decoding conf change v2", zap.Error(err))
		return
	}
	d.confState = *d.raftNode.ApplyConfChange(cc)
	for _, change := range cc.Changes {
		d.dispatchConfChangeEffect(change.Type, types.PeerID(change.NodeID), "")
	}
}

func (d *Driver) dispatchConfChangeEffect(kind raftpb.ConfChangeType, id types.PeerID, uri string) {
	switch kind {
	case raftpb.ConfChangeAddNode, raftpb.ConfChangeAddLearnerNode:
		if uri != "" {
			d.registry.Put(id, uri)
			if id != d.selfID {
				d.mutator.OnPeerAdded(id, uri)
			}
		}
		if proposalID, ok := d.pendingByNode[uint64(id)]; ok {
			delete(d.pendingByNode, uint64(id))
			if callback, ok := d.pending[proposalID]; ok {
				delete(d.pending, proposalID)
				if callback != nil {
					callback(nil)
				}
			}
		}
	case raftpb.ConfChangeRemoveNode:
		d.registry.Remove(id)
		d.mutator.OnPeerRemoved(id)
	}
}
