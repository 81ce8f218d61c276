// Package result defines search result and statistics shapes. Results are
// freshly constructed per query and owned by the caller.
package result

import (
	"time"

	"github.com/kailas-cloud/textdex/internal/domain/document"
)

// Hit is one matching document: identity, relevance score, and the stored
// subset of its field values.
type Hit struct {
	id     string
	score  float32
	fields map[string]document.Value
}

// NewHit creates a Hit.
func NewHit(id string, score float32, fields map[string]document.Value) Hit {
	return Hit{id: id, score: score, fields: fields}
}

// ID returns the document identity.
func (h Hit) ID() string { return h.id }

// Score returns the relevance score.
func (h Hit) Score() float32 { return h.score }

// Fields returns the stored field values.
func (h Hit) Fields() map[string]document.Value { return h.fields }

// Result is a completed search: exact total hit count, the requested page of
// hits, and the elapsed time.
type Result struct {
	totalHits  uint64
	hits       []Hit
	tookMillis int64
}

// New creates a Result.
func New(totalHits uint64, hits []Hit, tookMillis int64) Result {
	return Result{totalHits: totalHits, hits: hits, tookMillis: tookMillis}
}

// TotalHits returns the exact number of matching documents.
func (r Result) TotalHits() uint64 { return r.totalHits }

// Hits returns the returned page of hits in rank order.
func (r Result) Hits() []Hit { return r.hits }

// TookMillis returns the query execution time in milliseconds.
func (r Result) TookMillis() int64 { return r.tookMillis }

// CollectionStats reports one collection's document count, approximate
// on-disk size (recursive directory byte sum), and timestamps.
type CollectionStats struct {
	Name           string
	DocumentCount  uint64
	IndexSizeBytes int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CollectionHealth is the per-collection slice of an engine health report.
type CollectionHealth struct {
	Name           string
	Status         string
	DocumentCount  uint64
	IndexSizeBytes int64
}

// EngineHealth aggregates per-collection health.
type EngineHealth struct {
	Status       string
	Collections  []CollectionHealth
	UptimeMillis int64
}
