// Package types holds the data model shared across smoldb's core
// packages: point identifiers, points, and the small integer id
// aliases used to name segments, shards and peers.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// SegmentID identifies a segment within a shard.
type SegmentID int64

// ShardID identifies a shard within a collection. Non-negative.
type ShardID int64

// PeerID identifies a peer within a cluster. Capped to 2^53 so it
// round-trips through JSON float64 without precision loss.
type PeerID uint64

// MaxSafePeerID is the largest PeerID safely representable in a JSON
// number (2^53 - 1).
const MaxSafePeerID PeerID = 1<<53 - 1

// NewRandomPeerID returns a random PeerID in [0, MaxSafePeerID].
func NewRandomPeerID() PeerID {
	return PeerID(rand.Int63n(int64(MaxSafePeerID) + 1))
}

// PointIDKind tags the PointID variant.
type PointIDKind uint8

const (
	// IntKind is the PointID{Id(u64)} variant.
	IntKind PointIDKind = iota
	// UUIDKind is the PointID{Uuid(string)} variant.
	UUIDKind
)

// intTagPrefix and uuidTagPrefix disambiguate Id(5) from Uuid("5"):
// spec.md §9 notes the source keys storage by bare to_string() output,
// which collides across variants. smoldb prefixes the stored/hashed
// key with the variant tag to avoid that collision.
const (
	intTagPrefix  = "i:"
	uuidTagPrefix = "u:"
)

// PointID is a tagged variant over an integer id or a UUID string,
// equal by (kind, value) and hashable/orderable for ring routing and
// segment-key storage.
type PointID struct {
	Kind PointIDKind
	Int  uint64
	UUID string
}

// NewIntID builds an integer-keyed PointID.
func NewIntID(id uint64) PointID { return PointID{Kind: IntKind, Int: id} }

// NewUUIDID builds a UUID-keyed PointID.
func NewUUIDID(id string) PointID { return PointID{Kind: UUIDKind, UUID: id} }

// NewRandomUUIDID builds a UUID-keyed PointID from a fresh random UUID.
func NewRandomUUIDID() PointID { return NewUUIDID(uuid.NewString()) }

// StringForm returns the variant-tagged textual form used both as the
// segment's storage key and as the input to the ring's hash function.
func (p PointID) StringForm() string {
	if p.Kind == UUIDKind {
		return uuidTagPrefix + p.UUID
	}
	return intTagPrefix + strconv.FormatUint(p.Int, 10)
}

// Hash returns a stable, cross-process-deterministic hash of the
// point id, used by the consistent hash ring. Built on xxHash so the
// value is identical on every peer regardless of process or
// architecture, per spec.md §4.6.
func (p PointID) Hash() uint64 {
	return xxhash.Sum64String(p.StringForm())
}

// Equal reports whether two PointIDs name the same point.
func (p PointID) Equal(o PointID) bool {
	return p.Kind == o.Kind && p.Int == o.Int && p.UUID == o.UUID
}

// MarshalJSON encodes an integer id as a JSON number and a UUID id as
// a JSON string, matching the HTTP surface's `<u64|string-uuid>`
// point id encoding (spec.md §6).
func (p PointID) MarshalJSON() ([]byte, error) {
	if p.Kind == UUIDKind {
		return json.Marshal(p.UUID)
	}
	return json.Marshal(p.Int)
}

// UnmarshalJSON accepts either a bare JSON number (-> IntKind) or a
// JSON string (-> UUIDKind).
func (p *PointID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("types: empty point id")
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*p = NewUUIDID(s)
		return nil
	}
	var n uint64
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*p = NewIntID(n)
	return nil
}

// Point is the unit of storage: an id plus an opaque JSON payload.
// The payload is preserved byte-faithfully across the write/read path
// except for canonicalization performed by the embedded KV's own
// encoding.
type Point struct {
	ID      PointID         `json:"id"`
	Payload json.RawMessage `json:"payload"`
}
