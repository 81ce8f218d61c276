// Package collection manages one named index: its schema binding, buffered
// write path, durable commit point, and read path. Mutations accumulate in a
// write batch and become visible to searches only after Commit.
package collection

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/search/result"
	"github.com/kailas-cloud/textdex/internal/domain/schema"
	"github.com/kailas-cloud/textdex/internal/index"
)

// Collection binds a schema to an on-disk index.
//
// The write path (Add, Update, Delete, Commit) is serialized by mu; there is
// exactly one writer. Searches read the committed index directly and never
// observe the pending batch.
type Collection struct {
	name   string
	dir    string
	mapper *index.Mapper
	idx    bleve.Index
	log    *zap.Logger

	mu    sync.Mutex // guards batch and all index mutation
	batch *bleve.Batch

	tsMu      sync.RWMutex // guards timestamps
	createdAt time.Time
	updatedAt time.Time
}

// Create builds a new collection at dir from the given schema definition.
// The definition and creation timestamps are persisted next to the index so
// the collection can be reopened later.
func Create(dir string, def schema.Definition, log *zap.Logger) (*Collection, error) {
	mapper, err := index.NewMapper(def)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create collection dir: %w", err)
	}

	idx, err := bleve.New(filepath.Join(dir, indexDirName), mapper.IndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index %q: %w", def.Name(), err)
	}

	now := time.Now().UTC()
	if err := saveSchema(dir, def); err != nil {
		_ = idx.Close()
		return nil, err
	}
	if err := saveMeta(dir, now, now); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("save collection metadata: %w", err)
	}

	c := &Collection{
		name:      def.Name(),
		dir:       dir,
		mapper:    mapper,
		idx:       idx,
		log:       log,
		createdAt: now,
		updatedAt: now,
	}
	c.batch = idx.NewBatch()
	log.Info("collection created", zap.String("collection", def.Name()), zap.Int("fields", len(def.Fields())))
	return c, nil
}

// Open loads an existing collection from dir using its persisted schema.
func Open(dir string, log *zap.Logger) (*Collection, error) {
	def, err := loadSchema(dir)
	if err != nil {
		return nil, err
	}
	mapper, err := index.NewMapper(def)
	if err != nil {
		return nil, err
	}

	idx, err := bleve.Open(filepath.Join(dir, indexDirName))
	if err != nil {
		return nil, fmt.Errorf("open index %q: %w", def.Name(), err)
	}

	meta, err := loadMeta(dir)
	if err != nil {
		// Missing or corrupt metadata is recoverable: reset both timestamps.
		log.Warn("collection metadata unreadable, resetting", zap.String("collection", def.Name()), zap.Error(err))
		now := time.Now().UTC()
		meta = metaDTO{CreatedAt: now, UpdatedAt: now}
	}

	c := &Collection{
		name:      def.Name(),
		dir:       dir,
		mapper:    mapper,
		idx:       idx,
		log:       log,
		createdAt: meta.CreatedAt,
		updatedAt: meta.UpdatedAt,
	}
	c.batch = idx.NewBatch()
	log.Info("collection opened", zap.String("collection", def.Name()))
	return c, nil
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Schema returns the schema definition this collection was created with.
func (c *Collection) Schema() schema.Definition { return c.mapper.Definition() }

// Add stages a document for indexing. If a document with the same ID already
// exists (committed or pending), it is replaced when the batch commits.
func (c *Collection) Add(doc document.Document) error {
	fields, err := c.mapper.EngineDocument(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.batch.Index(doc.ID(), fields); err != nil {
		return fmt.Errorf("stage document %q: %w", doc.ID(), err)
	}
	return nil
}

// Update stages a full replacement of the document with the given identity.
// Identical to Add: identity-keyed upsert.
func (c *Collection) Update(doc document.Document) error {
	return c.Add(doc)
}

// Delete stages removal of the document with the given identity. Deleting an
// absent document is not an error.
func (c *Collection) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("%w: document ID is required", domain.ErrSchema)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batch.Delete(id)
	return nil
}

// Pending reports the number of staged, uncommitted operations.
func (c *Collection) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batch.Size()
}

// Commit applies all staged operations to the index, making them durable and
// visible to subsequent searches. Committing with nothing staged still
// advances the updated-at timestamp.
func (c *Collection) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.batch.Size()
	if n > 0 {
		if err := c.idx.Batch(c.batch); err != nil {
			return fmt.Errorf("commit %q: %w", c.name, err)
		}
		c.batch.Reset()
	}
	c.touch()
	if n > 0 {
		c.log.Debug("collection committed", zap.String("collection", c.name), zap.Int("operations", n))
	}
	return nil
}

func (c *Collection) touch() {
	now := time.Now().UTC()
	c.tsMu.Lock()
	c.updatedAt = now
	created := c.createdAt
	c.tsMu.Unlock()
	if err := saveMeta(c.dir, created, now); err != nil {
		c.log.Warn("save collection metadata", zap.String("collection", c.name), zap.Error(err))
	}
}

// Stats reports the committed document count, the on-disk footprint, and the
// lifecycle timestamps. Staged operations are not counted.
func (c *Collection) Stats() (result.CollectionStats, error) {
	count, err := c.idx.DocCount()
	if err != nil {
		return result.CollectionStats{}, fmt.Errorf("doc count %q: %w", c.name, err)
	}

	c.tsMu.RLock()
	created, updated := c.createdAt, c.updatedAt
	c.tsMu.RUnlock()

	return result.CollectionStats{
		Name:           c.name,
		DocumentCount:  count,
		IndexSizeBytes: dirSize(c.dir),
		CreatedAt:      created,
		UpdatedAt:      updated,
	}, nil
}

// dirSize sums regular file sizes under dir. Best effort: unreadable entries
// count as zero.
func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

// Close releases the index. Staged operations that were never committed are
// discarded.
func (c *Collection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := c.batch.Size(); n > 0 {
		c.log.Warn("closing with uncommitted operations", zap.String("collection", c.name), zap.Int("operations", n))
	}
	return c.idx.Close()
}
