// Package peers holds the cluster's shared peer_id -> URI table, read
// by RemoteShard on every call and written by the consensus driver's
// bootstrap handshake and ConfChange application, per spec.md's
// "shared peer table" design note: readers take a short-lived read
// lock and never hold it across an RPC.
package peers

import (
	"sync"

	"github.com/smoldb/smoldb/internal/errs"
	"github.com/smoldb/smoldb/internal/types"
)

// Registry is the process-wide peer_id -> p2p URI map.
type Registry struct {
	mu    sync.RWMutex
	table map[types.PeerID]string
}

// NewRegistry builds a registry pre-populated with self's own id and
// URI.
func NewRegistry(selfID types.PeerID, selfURI string) *Registry {
	return &Registry{
		table: map[types.PeerID]string{selfID: selfURI},
	}
}

// Put records (or overwrites) the URI a peer id maps to.
func (r *Registry) Put(id types.PeerID, uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table[id] = uri
}

// Remove drops a peer from the table, e.g. after a ConfChange removes
// it from the raft group.
func (r *Registry) Remove(id types.PeerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.table, id)
}

// Resolve returns the URI for a peer id. Callers must not hold onto
// the result across a blocking call in a way that assumes it stays
// valid; resolve again if a connection attempt fails.
func (r *Registry) Resolve(id types.PeerID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uri, ok := r.table[id]
	if !ok {
		return "", errs.Newf(errs.NotFound, "peers: unknown peer %d", id)
	}
	return uri, nil
}

// All returns a snapshot copy of the table, safe to range over
// without holding the registry's lock.
func (r *Registry) All() map[types.PeerID]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[types.PeerID]string, len(r.table))
	for id, uri := range r.table {
		out[id] = uri
	}
	return out
}

// Len returns the number of known peers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.table)
}
