// Package textdex is the embedded entry point: a full-text document store
// with typed schemas, buffered writes, and structured queries, usable without
// the HTTP server.
package textdex

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/schema"
	"github.com/kailas-cloud/textdex/internal/domain/search/request"
	"github.com/kailas-cloud/textdex/internal/domain/search/result"
	"github.com/kailas-cloud/textdex/internal/engine"
)

// Client is the textdex embedded entry point.
type Client struct {
	engine *engine.Engine
	logger *zap.Logger
}

// New creates a client rooted at the configured data directory and reopens
// any collections found there. When auto-commit is enabled (the default),
// a background scheduler flushes staged writes periodically.
func New(opts ...Option) (*Client, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	eng, err := engine.New(engine.Config{
		DataDir:        cfg.dataDir,
		CommitInterval: cfg.commitInterval,
	}, cfg.logger)
	if err != nil {
		return nil, fmt.Errorf("textdex: %w", err)
	}

	c := &Client{engine: eng, logger: cfg.logger}
	if cfg.autoCommit {
		eng.StartScheduler(context.Background())
	}
	return c, nil
}

// Close flushes staged operations and releases every index.
func (c *Client) Close() error {
	return c.engine.Close()
}

// CreateCollection creates a new collection from the schema definition.
func (c *Client) CreateCollection(def schema.Definition) error {
	return c.engine.CreateCollection(def)
}

// DropCollection removes a collection and its on-disk data.
func (c *Client) DropCollection(name string) error {
	return c.engine.DropCollection(name)
}

// ListCollections returns the registered collection names, sorted.
func (c *Client) ListCollections() []string {
	return c.engine.ListCollections()
}

// AddDocument stages a document. A document with the same ID is replaced on
// commit.
func (c *Client) AddDocument(collection, id string, fields map[string]document.Value) error {
	doc, err := document.New(id, fields)
	if err != nil {
		return err
	}
	return c.engine.AddDocument(collection, doc)
}

// UpdateDocument stages a full replacement of a document by identity.
func (c *Client) UpdateDocument(collection, id string, fields map[string]document.Value) error {
	doc, err := document.New(id, fields)
	if err != nil {
		return err
	}
	return c.engine.UpdateDocument(collection, doc)
}

// DeleteDocument stages removal of a document. Absent IDs are ignored.
func (c *Client) DeleteDocument(collection, id string) error {
	return c.engine.DeleteDocument(collection, id)
}

// Commit makes the collection's staged operations durable and searchable.
func (c *Client) Commit(collection string) error {
	return c.engine.Commit(collection)
}

// CommitAll commits every collection.
func (c *Client) CommitAll() error {
	return c.engine.CommitAll()
}

// Search executes a structured query against the committed state of one
// collection.
func (c *Client) Search(ctx context.Context, req request.Request) (result.Result, error) {
	return c.engine.Search(ctx, req)
}

// Stats reports one collection's document count, disk footprint, and
// timestamps.
func (c *Client) Stats(collection string) (result.CollectionStats, error) {
	return c.engine.Stats(collection)
}

// AllStats reports statistics for every collection.
func (c *Client) AllStats(ctx context.Context) ([]result.CollectionStats, error) {
	return c.engine.AllStats(ctx)
}

// Health reports engine liveness plus a per-collection summary.
func (c *Client) Health() result.EngineHealth {
	return c.engine.Health()
}
