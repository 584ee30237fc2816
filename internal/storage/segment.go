// Package storage implements smoldb's embedded per-segment key-value
// layer on top of go.etcd.io/bbolt, in the style of the teacher's
// embedded-KV reference doc: one bucket per segment, JSON-serialized
// values, ACID transactions via db.Update/db.View, per spec.md §4.1.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"go.etcd.io/bbolt"

	"github.com/smoldb/smoldb/internal/errs"
	"github.com/smoldb/smoldb/internal/types"
)

var pointsBucket = []byte("points")

// segmentFileName is the fixed bbolt file name inside a segment's own
// directory (storage/collections/<name>/<shard_id>/segments/<segment_id>/).
const segmentFileName = "segment.db"

// Segment is a single bbolt-backed file holding a set of points keyed
// by their variant-tagged PointID string form (types.PointID.StringForm),
// per spec.md §3's Segment definition and §9's key-collision fix.
type Segment struct {
	ID   types.SegmentID
	path string
	db   *bbolt.DB
}

// CreateSegment creates (or opens, if already present) a segment
// directory under shardSegmentsDir and ensures its points bucket
// exists.
func CreateSegment(shardSegmentsDir string, id types.SegmentID) (*Segment, error) {
	dir := filepath.Join(shardSegmentsDir, segmentDirName(id))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrapf(errs.StorageError, err, "storage: creating segment dir %s", dir)
	}
	path := filepath.Join(dir, segmentFileName)
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errs.Wrapf(errs.StorageError, err, "storage: opening segment %d at %s", id, path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(pointsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errs.Wrapf(errs.StorageError, err, "storage: initializing segment %d bucket", id)
	}
	return &Segment{ID: id, path: path, db: db}, nil
}

// segmentDirName returns the bare-integer directory name for a segment
// under its shard's segments/ directory, per spec.md §4.2.
func segmentDirName(id types.SegmentID) string {
	return strconv.FormatInt(int64(id), 10)
}

// LoadSegment opens an existing segment directory. It does not create
// the directory if missing; callers that want create-or-open should
// use CreateSegment.
func LoadSegment(shardSegmentsDir string, id types.SegmentID) (*Segment, error) {
	dir := filepath.Join(shardSegmentsDir, segmentDirName(id))
	if _, err := os.Stat(dir); err != nil {
		return nil, errs.Wrapf(errs.StorageError, err, "storage: loading segment %d at %s", id, dir)
	}
	return CreateSegment(shardSegmentsDir, id)
}

// Close releases the segment's underlying file handle.
func (s *Segment) Close() error {
	if err := s.db.Close(); err != nil {
		return errs.Wrapf(errs.StorageError, err, "storage: closing segment %d", s.ID)
	}
	return nil
}

// UpsertPoints writes points into the segment in a single transaction,
// overwriting any existing entry with the same id. It is the only
// path that adds or overwrites points; DeletePoints removes them.
func (s *Segment) UpsertPoints(points []types.Point) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(pointsBucket)
		for _, p := range points {
			data, err := json.Marshal(p)
			if err != nil {
				return errs.Wrapf(errs.BadInput, err, "storage: marshaling point %s", p.ID.StringForm())
			}
			if err := b.Put([]byte(p.ID.StringForm()), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetPoints reads the subset of ids present in the segment. Missing
// ids are simply omitted from the result, matching spec.md §4.1's
// "points not found are silently skipped" semantics.
func (s *Segment) GetPoints(ids []types.PointID) ([]types.Point, error) {
	var out []types.Point
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(pointsBucket)
		for _, id := range ids {
			data := b.Get([]byte(id.StringForm()))
			if data == nil {
				continue
			}
			var p types.Point
			if err := json.Unmarshal(data, &p); err != nil {
				return errs.Wrapf(errs.StorageError, err, "storage: decoding point %s", id.StringForm())
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AllPoints returns every point stored in the segment.
func (s *Segment) AllPoints() ([]types.Point, error) {
	var out []types.Point
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(pointsBucket).ForEach(func(_, data []byte) error {
			var p types.Point
			if err := json.Unmarshal(data, &p); err != nil {
				return err
			}
			out = append(out, p)
			return nil
		})
	})
	if err != nil {
		return nil, errs.Wrapf(errs.StorageError, err, "storage: scanning segment %d", s.ID)
	}
	return out, nil
}

// CountPoints returns the number of points stored in the segment.
func (s *Segment) CountPoints() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(pointsBucket).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, errs.Wrapf(errs.StorageError, err, "storage: counting segment %d", s.ID)
	}
	return n, nil
}

// DeletePoints removes the given ids from the segment, ignoring ids
// that are not present.
func (s *Segment) DeletePoints(ids []types.PointID) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(pointsBucket)
		for _, id := range ids {
			if err := b.Delete([]byte(id.StringForm())); err != nil {
				return err
			}
		}
		return nil
	})
}
