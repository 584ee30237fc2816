package storage

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/smoldb/smoldb/internal/errs"
	"github.com/smoldb/smoldb/internal/log"
	"github.com/smoldb/smoldb/internal/types"

	"go.uber.org/zap"
)

// defaultSegmentID is the segment every fresh LocalShard starts with.
// spec.md §4.2 allows a shard to hold several segments but does not
// require a splitting policy, so smoldb always writes to segment 0 and
// reads across whatever segments exist on disk.
const defaultSegmentID types.SegmentID = 0

// segmentsDirName is the fixed subdirectory holding a shard's segment
// directories, per spec.md §4.2's init/load description.
const segmentsDirName = "segments"

// LocalShard owns the segment directories for one shard of one
// collection, living under <collection dir>/<shard id>/, per spec.md
// §4.2.
type LocalShard struct {
	ID  types.ShardID
	dir string

	mu       sync.RWMutex
	segments map[types.SegmentID]*Segment
}

// shardDirName returns the directory name for a shard under its
// collection's root: the bare shard id, so that load(path) can parse
// it back out of the final path component.
func shardDirName(id types.ShardID) string {
	return strconv.FormatInt(int64(id), 10)
}

// InitLocalShard creates path/segments/ under collectionDir/<id>/ and
// opens a default segment 0, per spec.md §4.2's init(path, id).
func InitLocalShard(collectionDir string, id types.ShardID) (*LocalShard, error) {
	dir := filepath.Join(collectionDir, shardDirName(id))
	segmentsDir := filepath.Join(dir, segmentsDirName)
	if err := os.MkdirAll(segmentsDir, 0o755); err != nil {
		return nil, errs.Wrapf(errs.StorageError, err, "storage: creating shard dir %s", dir)
	}
	seg, err := CreateSegment(segmentsDir, defaultSegmentID)
	if err != nil {
		return nil, err
	}
	return &LocalShard{
		ID:       id,
		dir:      dir,
		segments: map[types.SegmentID]*Segment{defaultSegmentID: seg},
	}, nil
}

// LoadLocalShard loads each child of collectionDir/<id>/segments/ whose
// name parses as an integer. The shard id is taken from the id
// argument, which also names the directory; no directory name is
// parsed to obtain it. If segments/ holds no segment, a default
// segment 0 is created.
func LoadLocalShard(collectionDir string, id types.ShardID) (*LocalShard, error) {
	dir := filepath.Join(collectionDir, shardDirName(id))
	segmentsDir := filepath.Join(dir, segmentsDirName)

	entries, err := os.ReadDir(segmentsDir)
	if err != nil {
		return nil, errs.Wrapf(errs.StorageError, err, "storage: reading segments dir %s", segmentsDir)
	}

	segments := make(map[types.SegmentID]*Segment, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		n, err := strconv.ParseInt(entry.Name(), 10, 64)
		if err != nil {
			log.Warn("storage: skipping non-integer segment dir", zap.String("name", entry.Name()))
			continue
		}
		segID := types.SegmentID(n)
		seg, err := LoadSegment(segmentsDir, segID)
		if err != nil {
			return nil, err
		}
		segments[segID] = seg
	}

	if len(segments) == 0 {
		seg, err := CreateSegment(segmentsDir, defaultSegmentID)
		if err != nil {
			return nil, err
		}
		segments[defaultSegmentID] = seg
	}

	return &LocalShard{ID: id, dir: dir, segments: segments}, nil
}

// UpsertPoints writes points to the shard's default segment.
func (s *LocalShard) UpsertPoints(points []types.Point) error {
	s.mu.RLock()
	seg := s.segments[defaultSegmentID]
	s.mu.RUnlock()
	return seg.UpsertPoints(points)
}

// GetPoints reads points across all of the shard's segments,
// returning whatever subset of ids is found.
func (s *LocalShard) GetPoints(ids []types.PointID) ([]types.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[string]types.Point, len(ids))
	remaining := ids
	for _, seg := range s.segments {
		if len(remaining) == 0 {
			break
		}
		points, err := seg.GetPoints(remaining)
		if err != nil {
			return nil, err
		}
		for _, p := range points {
			found[p.ID.StringForm()] = p
		}
		remaining = missingIDs(ids, found)
	}

	out := make([]types.Point, 0, len(found))
	for _, id := range ids {
		if p, ok := found[id.StringForm()]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func missingIDs(ids []types.PointID, found map[string]types.Point) []types.PointID {
	var out []types.PointID
	for _, id := range ids {
		if _, ok := found[id.StringForm()]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// AllPoints returns every point stored across the shard's segments,
// deduplicated by id (a point written after a shard reload could in
// principle live in more than one segment; the first copy found wins).
func (s *LocalShard) AllPoints() ([]types.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []types.Point
	for _, seg := range s.segments {
		points, err := seg.AllPoints()
		if err != nil {
			return nil, err
		}
		for _, p := range points {
			key := p.ID.StringForm()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, p)
		}
	}
	return out, nil
}

// CountPoints sums point counts across the shard's segments.
func (s *LocalShard) CountPoints() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, seg := range s.segments {
		n, err := seg.CountPoints()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// DeletePoints removes the given ids from every segment in the shard.
func (s *LocalShard) DeletePoints(ids []types.PointID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, seg := range s.segments {
		if err := seg.DeletePoints(ids); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every open segment in the shard.
func (s *LocalShard) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, seg := range s.segments {
		if err := seg.Close(); err != nil {
			return err
		}
	}
	return nil
}
