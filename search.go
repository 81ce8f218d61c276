package textdex

import (
	"time"

	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/search/query"
	"github.com/kailas-cloud/textdex/internal/domain/search/request"
)

// Value constructors re-exported for callers of the embedded client.
var (
	Text    = document.Text
	Integer = document.Integer
	Float   = document.Float
	Date    = document.Date
	Facet   = document.Facet
	Bytes   = document.Bytes
)

// Value is a typed field value.
type Value = document.Value

// Query is a node of the structured query tree.
type Query = query.Expression

// MatchAll matches every document.
func MatchAll() Query { return query.MatchAll{} }

// FullText matches documents whose text field contains the analyzed text.
func FullText(field, text string) Query {
	return query.FullText{Field: field, Text: text}
}

// FullTextBoost is FullText with a score multiplier.
func FullTextBoost(field, text string, boost float64) Query {
	return query.FullText{Field: field, Text: text, Boost: &boost}
}

// Term matches documents whose field holds exactly the given value.
func Term(field string, v Value) Query {
	return query.Term{Field: field, Value: v}
}

// Range matches documents whose field value lies between min and max.
// The inclusive flag applies to both bounds.
func Range(field string, min, max Value, inclusive bool) Query {
	return query.Range{Field: field, Min: &min, Max: &max, Inclusive: inclusive}
}

// Bool combines sub-queries with must/should/must-not semantics.
type Bool struct {
	expr query.Bool
}

// NewBool starts a boolean query.
func NewBool() *Bool { return &Bool{} }

// Must requires every given sub-query to match.
func (b *Bool) Must(qs ...Query) *Bool {
	b.expr.Must = append(b.expr.Must, qs...)
	return b
}

// Should scores documents higher per matching sub-query.
func (b *Bool) Should(qs ...Query) *Bool {
	b.expr.Should = append(b.expr.Should, qs...)
	return b
}

// MustNot excludes documents matching any given sub-query.
func (b *Bool) MustNot(qs ...Query) *Bool {
	b.expr.MustNot = append(b.expr.MustNot, qs...)
	return b
}

// MinimumShouldMatch requires at least n should clauses to match.
func (b *Bool) MinimumShouldMatch(n int) *Bool {
	b.expr.MinimumShouldMatch = n
	return b
}

// Build returns the boolean expression.
func (b *Bool) Build() Query { return b.expr }

// SearchBuilder assembles a search request fluently.
type SearchBuilder struct {
	collection string
	query      Query
	limit      int
	offset     int
	sort       []request.SortField
	err        error
}

// NewSearch starts a search against the named collection.
func NewSearch(collection string, q Query) *SearchBuilder {
	return &SearchBuilder{collection: collection, query: q}
}

// Limit caps the number of returned hits (default 10).
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.limit = n
	return b
}

// Offset skips the given number of leading hits.
func (b *SearchBuilder) Offset(n int) *SearchBuilder {
	b.offset = n
	return b
}

// SortAsc orders results by the field, ascending.
func (b *SearchBuilder) SortAsc(field string) *SearchBuilder {
	return b.sortBy(field, request.OrderAsc)
}

// SortDesc orders results by the field, descending.
func (b *SearchBuilder) SortDesc(field string) *SearchBuilder {
	return b.sortBy(field, request.OrderDesc)
}

func (b *SearchBuilder) sortBy(field string, order request.Order) *SearchBuilder {
	if b.err != nil {
		return b
	}
	sf, err := request.NewSortField(field, order)
	if err != nil {
		b.err = err
		return b
	}
	b.sort = append(b.sort, sf)
	return b
}

// Build validates and returns the request.
func (b *SearchBuilder) Build() (request.Request, error) {
	if b.err != nil {
		return request.Request{}, b.err
	}
	return request.New(b.collection, b.query, b.limit, b.offset, b.sort)
}

// DateOf is a convenience for building date values from components.
func DateOf(year int, month time.Month, day int) Value {
	return document.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}
