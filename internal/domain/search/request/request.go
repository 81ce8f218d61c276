// Package request defines the validated search request value object.
package request

import (
	"fmt"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/search/query"
)

// Pagination limits.
const (
	DefaultLimit = 10
	MaxLimit     = 1000
)

// Limits bounds pagination for one deployment. Zero values fall back to the
// package constants.
type Limits struct {
	Default int
	Max     int
}

func (l Limits) withDefaults() Limits {
	if l.Default <= 0 {
		l.Default = DefaultLimit
	}
	if l.Max <= 0 {
		l.Max = MaxLimit
	}
	return l
}

// Order is the sort direction.
type Order string

// Sort order constants.
const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// SortField names a field to order results by.
type SortField struct {
	field string
	order Order
}

// NewSortField validates and creates a SortField.
func NewSortField(field string, order Order) (SortField, error) {
	if field == "" {
		return SortField{}, fmt.Errorf("%w: sort field is required", domain.ErrQuery)
	}
	if order != OrderAsc && order != OrderDesc {
		return SortField{}, fmt.Errorf("%w: invalid sort order %q for %q", domain.ErrQuery, order, field)
	}
	return SortField{field: field, order: order}, nil
}

// Field returns the sort field name.
func (s SortField) Field() string { return s.field }

// Order returns the sort direction.
func (s SortField) Order() Order { return s.order }

// Request is a validated search request targeting one collection.
type Request struct {
	collection string
	query      query.Expression
	limit      int
	offset     int
	sort       []SortField
}

// New validates and creates a Request. A zero limit defaults to DefaultLimit.
func New(collection string, q query.Expression, limit, offset int, sort []SortField) (Request, error) {
	return NewWithLimits(collection, q, limit, offset, sort, Limits{})
}

// NewWithLimits is New with deployment-specific pagination bounds.
func NewWithLimits(collection string, q query.Expression, limit, offset int, sort []SortField, limits Limits) (Request, error) {
	limits = limits.withDefaults()
	if collection == "" {
		return Request{}, fmt.Errorf("%w: collection name is required", domain.ErrQuery)
	}
	if q == nil {
		return Request{}, fmt.Errorf("%w: query expression is required", domain.ErrQuery)
	}
	if limit < 0 || limit > limits.Max {
		return Request{}, fmt.Errorf("%w: limit must be between 0 and %d", domain.ErrQuery, limits.Max)
	}
	if limit == 0 {
		limit = limits.Default
	}
	if offset < 0 {
		return Request{}, fmt.Errorf("%w: offset must not be negative", domain.ErrQuery)
	}
	return Request{collection: collection, query: q, limit: limit, offset: offset, sort: sort}, nil
}

// Collection returns the target collection name.
func (r Request) Collection() string { return r.collection }

// Query returns the query expression.
func (r Request) Query() query.Expression { return r.query }

// Limit returns the maximum number of hits to return.
func (r Request) Limit() int { return r.limit }

// Offset returns the number of leading hits to skip.
func (r Request) Offset() int { return r.offset }

// Sort returns the ordered sort fields (may be empty).
func (r Request) Sort() []SortField { return r.sort }
