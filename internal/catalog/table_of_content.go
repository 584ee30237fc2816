// Package catalog implements the TableOfContent: smoldb's collection
// registry and on-disk layout root, per spec.md §4.7. All collection
// meta operations (create/delete) are serialized through an exclusive
// lock; point operations only need the registry's read lock, since
// the Collection they delegate to does its own concurrency control.
package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/smoldb/smoldb/internal/collection"
	"github.com/smoldb/smoldb/internal/errs"
	"github.com/smoldb/smoldb/internal/log"
	"github.com/smoldb/smoldb/internal/types"
)

// CollectionDirName is the fixed directory under the storage root
// that holds one subdirectory per collection.
const CollectionDirName = "collections"

// Builder constructs a *collection.Collection for a freshly created or
// loaded on-disk collection directory. TableOfContent depends on this
// instead of directly wiring storage/replica/hashring, so it stays
// agnostic to how a Collection's shards and replicas are assembled —
// that wiring lives in cmd/smoldb, where the cluster's peer table and
// transport pool are available.
type Builder func(ctx context.Context, dir string, name string, params map[string]string) (*collection.Collection, error)

// TableOfContent is the root collection registry.
type TableOfContent struct {
	root    string
	build   Builder
	loadCfg func(dir string) (map[string]string, error)

	mu          sync.RWMutex
	collections map[string]*collection.Collection
}

// New builds an empty TableOfContent rooted at storageRoot/collections.
func New(storageRoot string, build Builder) *TableOfContent {
	return &TableOfContent{
		root:        filepath.Join(storageRoot, CollectionDirName),
		build:       build,
		loadCfg:     loadConfigJSON,
		collections: make(map[string]*collection.Collection),
	}
}

// Load scans the collections root and loads every child directory
// that contains a config.json. Unknown sub-paths are logged and
// skipped rather than failing startup.
func (t *TableOfContent) Load(ctx context.Context) error {
	if err := os.MkdirAll(t.root, 0o755); err != nil {
		return errs.Wrapf(errs.StorageError, err, "catalog: creating collections root %s", t.root)
	}

	entries, err := os.ReadDir(t.root)
	if err != nil {
		return errs.Wrapf(errs.StorageError, err, "catalog: reading collections root %s", t.root)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		dir := filepath.Join(t.root, name)
		params, err := t.loadCfg(dir)
		if err != nil {
			log.Warn("catalog: skipping unrecognized collection directory", zap.String("name", name), zap.Error(err))
			continue
		}
		coll, err := t.build(ctx, dir, name, params)
		if err != nil {
			log.Warn("catalog: failed to load collection, skipping", zap.String("name", name), zap.Error(err))
			continue
		}
		t.collections[name] = coll
	}
	return nil
}

// validateName rejects a collection name that is not a single path
// component, per spec.md §4.7's invariant.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return errs.Newf(errs.BadInput, "catalog: invalid collection name %q", name)
	}
	if strings.ContainsAny(name, "/\\") {
		return errs.Newf(errs.BadInput, "catalog: collection name %q must be a single path component", name)
	}
	return nil
}

// CreateCollection creates a new collection directory and registers
// it. Duplicate names are rejected as BadInput.
func (t *TableOfContent) CreateCollection(ctx context.Context, name string, params map[string]string) error {
	if err := validateName(name); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.collections[name]; exists {
		return errs.Newf(errs.BadInput, "catalog: collection %q already exists", name)
	}

	dir := filepath.Join(t.root, name)
	if _, err := os.Stat(dir); err == nil {
		return errs.Newf(errs.BadInput, "catalog: collection directory %q already exists", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrapf(errs.StorageError, err, "catalog: creating collection dir %s", dir)
	}
	if err := writeConfigJSON(dir, params); err != nil {
		return err
	}

	coll, err := t.build(ctx, dir, name, params)
	if err != nil {
		return err
	}
	t.collections[name] = coll
	return nil
}

// DeleteCollection removes a collection from the registry and then
// recursively removes its directory. Deleting an unknown name is
// BadInput.
func (t *TableOfContent) DeleteCollection(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.collections[name]; !exists {
		return errs.Newf(errs.BadInput, "catalog: collection %q does not exist", name)
	}
	delete(t.collections, name)

	dir := filepath.Join(t.root, name)
	if err := os.RemoveAll(dir); err != nil {
		return errs.Wrapf(errs.StorageError, err, "catalog: removing collection dir %s", dir)
	}
	return nil
}

// ListCollections returns every known collection name.
func (t *TableOfContent) ListCollections() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.collections))
	for name := range t.collections {
		out = append(out, name)
	}
	return out
}

// Get returns the named collection, or a NotFound error.
func (t *TableOfContent) Get(name string) (*collection.Collection, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	coll, ok := t.collections[name]
	if !ok {
		return nil, errs.Newf(errs.NotFound, "catalog: collection %q not found", name)
	}
	return coll, nil
}

// UpsertPoints delegates to the named collection's Collection.UpsertPoints.
func (t *TableOfContent) UpsertPoints(ctx context.Context, name string, points []types.Point, localOnly bool) error {
	coll, err := t.Get(name)
	if err != nil {
		return err
	}
	return coll.UpsertPoints(ctx, points, localOnly)
}

// RetrievePoints delegates to the named collection's Collection.GetPoints.
// A nil ids slice retrieves every point in the collection.
func (t *TableOfContent) RetrievePoints(ctx context.Context, name string, ids []types.PointID, localOnly bool) ([]types.Point, error) {
	coll, err := t.Get(name)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		return coll.AllPoints()
	}
	return coll.GetPoints(ctx, ids, localOnly)
}
