// Package engine hosts the collection registry: create/open/drop lifecycle,
// document operation routing, search routing, and the periodic auto-commit
// scheduler.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/textdex/internal/collection"
	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/schema"
	"github.com/kailas-cloud/textdex/internal/domain/search/request"
	"github.com/kailas-cloud/textdex/internal/domain/search/result"
	"github.com/kailas-cloud/textdex/internal/metrics"
)

// DefaultCommitInterval is used when the configuration leaves the commit
// interval unset.
const DefaultCommitInterval = time.Second

// Config holds the engine runtime settings.
type Config struct {
	// DataDir is the root directory holding one subdirectory per collection.
	DataDir string
	// CommitInterval is the period of the auto-commit scheduler.
	CommitInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.CommitInterval <= 0 {
		c.CommitInterval = DefaultCommitInterval
	}
	return c
}

func (c Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data directory is required", domain.ErrConfig)
	}
	return nil
}

// Engine owns every open collection. All registry access is guarded by mu;
// per-collection write serialization lives inside Collection.
type Engine struct {
	log *zap.Logger

	mu          sync.RWMutex
	cfg         Config
	collections map[string]*collection.Collection

	startedAt time.Time

	schedMu   sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// New creates an engine rooted at cfg.DataDir and reopens every collection
// found there. A subdirectory is treated as a collection when it carries a
// schema file; ones that fail to open are logged and skipped so one corrupt
// collection does not take the engine down.
func New(cfg Config, log *zap.Logger) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	e := &Engine{
		log:         log,
		cfg:         cfg,
		collections: make(map[string]*collection.Collection),
		startedAt:   time.Now(),
	}
	if err := e.loadExisting(); err != nil {
		return nil, err
	}
	metrics.CollectionsOpen.Set(float64(len(e.collections)))
	return e, nil
}

func (e *Engine) loadExisting() error {
	entries, err := os.ReadDir(e.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("scan data dir: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(e.cfg.DataDir, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, "schema.json")); err != nil {
			continue
		}
		c, err := collection.Open(dir, e.log)
		if err != nil {
			e.log.Error("skipping unopenable collection", zap.String("collection", entry.Name()), zap.Error(err))
			continue
		}
		e.collections[c.Name()] = c
	}
	e.log.Info("collections loaded", zap.Int("count", len(e.collections)))
	return nil
}

// CreateCollection creates and registers a new collection from the schema
// definition. The collection name is the definition name.
func (e *Engine) CreateCollection(def schema.Definition) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.collections[def.Name()]; ok {
		return fmt.Errorf("%w: %q", domain.ErrAlreadyExists, def.Name())
	}
	dir := filepath.Join(e.cfg.DataDir, def.Name())
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("%w: directory for %q already exists", domain.ErrAlreadyExists, def.Name())
	}

	c, err := collection.Create(dir, def, e.log)
	if err != nil {
		return err
	}
	e.collections[def.Name()] = c
	metrics.CollectionsOpen.Set(float64(len(e.collections)))
	return nil
}

// DropCollection commits outstanding operations, closes the collection, and
// removes its directory.
func (e *Engine) DropCollection(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.collections[name]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrNotFound, name)
	}
	if err := c.Commit(); err != nil {
		e.log.Warn("final commit before drop failed", zap.String("collection", name), zap.Error(err))
	}
	if err := c.Close(); err != nil {
		return fmt.Errorf("close %q: %w", name, err)
	}
	delete(e.collections, name)
	metrics.CollectionsOpen.Set(float64(len(e.collections)))

	if err := os.RemoveAll(filepath.Join(e.cfg.DataDir, name)); err != nil {
		return fmt.Errorf("remove %q: %w", name, err)
	}
	e.log.Info("collection dropped", zap.String("collection", name))
	return nil
}

// ListCollections returns the registered collection names, sorted.
func (e *Engine) ListCollections() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.collections))
	for name := range e.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collection looks up a registered collection.
func (e *Engine) Collection(name string) (*collection.Collection, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, name)
	}
	return c, nil
}

// AddDocument stages a document into the named collection.
func (e *Engine) AddDocument(name string, doc document.Document) error {
	c, err := e.Collection(name)
	if err != nil {
		return err
	}
	if err := c.Add(doc); err != nil {
		return err
	}
	metrics.DocumentOpsTotal.WithLabelValues(name, "add").Inc()
	return nil
}

// UpdateDocument stages a full replacement of a document by identity.
func (e *Engine) UpdateDocument(name string, doc document.Document) error {
	c, err := e.Collection(name)
	if err != nil {
		return err
	}
	if err := c.Update(doc); err != nil {
		return err
	}
	metrics.DocumentOpsTotal.WithLabelValues(name, "update").Inc()
	return nil
}

// DeleteDocument stages removal of a document by identity.
func (e *Engine) DeleteDocument(name, id string) error {
	c, err := e.Collection(name)
	if err != nil {
		return err
	}
	if err := c.Delete(id); err != nil {
		return err
	}
	metrics.DocumentOpsTotal.WithLabelValues(name, "delete").Inc()
	return nil
}

// Commit makes the named collection's staged operations durable and visible.
func (e *Engine) Commit(name string) error {
	c, err := e.Collection(name)
	if err != nil {
		return err
	}
	return e.commitCollection(c, "explicit")
}

func (e *Engine) commitCollection(c *collection.Collection, trigger string) error {
	start := time.Now()
	if err := c.Commit(); err != nil {
		return err
	}
	metrics.CommitsTotal.WithLabelValues(c.Name(), trigger).Inc()
	metrics.CommitDuration.WithLabelValues(c.Name()).Observe(time.Since(start).Seconds())
	return nil
}

// CommitAll commits every collection. All collections are attempted; the
// first error is returned.
func (e *Engine) CommitAll() error {
	return e.commitAll("explicit")
}

func (e *Engine) commitAll(trigger string) error {
	e.mu.RLock()
	cols := make([]*collection.Collection, 0, len(e.collections))
	for _, c := range e.collections {
		cols = append(cols, c)
	}
	e.mu.RUnlock()

	var firstErr error
	for _, c := range cols {
		if err := e.commitCollection(c, trigger); err != nil {
			e.log.Error("commit failed", zap.String("collection", c.Name()), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Search routes the request to its target collection.
func (e *Engine) Search(ctx context.Context, req request.Request) (result.Result, error) {
	c, err := e.Collection(req.Collection())
	if err != nil {
		return result.Result{}, err
	}
	start := time.Now()
	res, err := c.Search(ctx, req)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(req.Collection(), "error").Inc()
		return result.Result{}, err
	}
	metrics.SearchesTotal.WithLabelValues(req.Collection(), "ok").Inc()
	metrics.SearchDuration.WithLabelValues(req.Collection()).Observe(time.Since(start).Seconds())
	return res, nil
}

// Stats reports statistics for the named collection.
func (e *Engine) Stats(name string) (result.CollectionStats, error) {
	c, err := e.Collection(name)
	if err != nil {
		return result.CollectionStats{}, err
	}
	return c.Stats()
}

// AllStats gathers statistics for every collection concurrently.
func (e *Engine) AllStats(ctx context.Context) ([]result.CollectionStats, error) {
	e.mu.RLock()
	cols := make([]*collection.Collection, 0, len(e.collections))
	for _, c := range e.collections {
		cols = append(cols, c)
	}
	e.mu.RUnlock()

	stats := make([]result.CollectionStats, len(cols))
	g, _ := errgroup.WithContext(ctx)
	for i, c := range cols {
		g.Go(func() error {
			s, err := c.Stats()
			if err != nil {
				return err
			}
			stats[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats, nil
}

// Health reports engine liveness plus a per-collection summary.
func (e *Engine) Health() result.EngineHealth {
	e.mu.RLock()
	cols := make([]*collection.Collection, 0, len(e.collections))
	for _, c := range e.collections {
		cols = append(cols, c)
	}
	e.mu.RUnlock()

	health := result.EngineHealth{
		Status:       "healthy",
		Collections:  make([]result.CollectionHealth, 0, len(cols)),
		UptimeMillis: time.Since(e.startedAt).Milliseconds(),
	}
	for _, c := range cols {
		ch := result.CollectionHealth{Name: c.Name(), Status: "healthy"}
		if s, err := c.Stats(); err != nil {
			ch.Status = "unhealthy"
			health.Status = "degraded"
		} else {
			ch.DocumentCount = s.DocumentCount
			ch.IndexSizeBytes = s.IndexSizeBytes
		}
		health.Collections = append(health.Collections, ch)
	}
	sort.Slice(health.Collections, func(i, j int) bool {
		return health.Collections[i].Name < health.Collections[j].Name
	})
	return health
}

// UpdateConfig applies new runtime settings. The data directory is fixed for
// the lifetime of the engine; changing it is rejected.
func (e *Engine) UpdateConfig(cfg Config) error {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if cfg.DataDir != e.cfg.DataDir {
		return fmt.Errorf("%w: data directory cannot change at runtime", domain.ErrConfig)
	}
	e.cfg = cfg
	return nil
}

// Config returns the current runtime settings.
func (e *Engine) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

func (e *Engine) commitInterval() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.CommitInterval
}

// Close stops the scheduler, flushes every collection, and releases all
// indexes. Safe to call more than once.
func (e *Engine) Close() error {
	var firstErr error
	e.closeOnce.Do(func() {
		e.StopScheduler()
		if err := e.commitAll("shutdown"); err != nil {
			firstErr = err
		}

		e.mu.Lock()
		defer e.mu.Unlock()
		for name, c := range e.collections {
			if err := c.Close(); err != nil {
				e.log.Error("close collection", zap.String("collection", name), zap.Error(err))
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		e.collections = make(map[string]*collection.Collection)
		metrics.CollectionsOpen.Set(0)
		e.log.Info("engine closed")
	})
	return firstErr
}
