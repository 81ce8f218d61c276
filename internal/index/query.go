package index

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	enginequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/search/query"
	"github.com/kailas-cloud/textdex/internal/domain/schema"
)

// Compile translates a query expression tree into an engine-native query.
// Compilation validates field references against the schema; a structurally
// invalid expression yields ErrQuery, a schema mismatch ErrSchema.
func (m *Mapper) Compile(expr query.Expression) (enginequery.Query, error) {
	switch e := expr.(type) {
	case query.FullText:
		return m.compileFullText(e)
	case query.Term:
		return m.compileTerm(e)
	case query.Range:
		return m.compileRange(e)
	case query.Bool:
		return m.compileBool(e)
	case query.MatchAll:
		return bleve.NewMatchAllQuery(), nil
	case nil:
		return nil, fmt.Errorf("%w: query expression is required", domain.ErrQuery)
	default:
		return nil, fmt.Errorf("%w: unsupported expression type %T", domain.ErrQuery, expr)
	}
}

func (m *Mapper) compileFullText(e query.FullText) (enginequery.Query, error) {
	f, ok := m.fields[e.Field]
	if !ok {
		return nil, fmt.Errorf("%w: unknown field %q", domain.ErrSchema, e.Field)
	}
	if f.Kind() != schema.KindText {
		return nil, fmt.Errorf("%w: full-text query requires a text field, %q is %s", domain.ErrQuery, e.Field, f.Kind())
	}
	if e.Text == "" {
		return nil, fmt.Errorf("%w: full-text query text is required", domain.ErrQuery)
	}
	q := bleve.NewMatchQuery(e.Text)
	q.SetField(e.Field)
	if e.Boost != nil {
		q.SetBoost(*e.Boost)
	}
	return q, nil
}

func (m *Mapper) compileTerm(e query.Term) (enginequery.Query, error) {
	if e.Value.Kind() == document.KindBytes {
		return nil, fmt.Errorf("%w: term query on bytes field %q is not supported", domain.ErrQuery, e.Field)
	}
	if err := m.Validate(e.Field, e.Value); err != nil {
		return nil, err
	}

	switch e.Value.Kind() {
	case document.KindText:
		q := bleve.NewTermQuery(e.Value.Text())
		q.SetField(e.Field)
		return q, nil
	case document.KindFacet:
		q := bleve.NewTermQuery(e.Value.Facet())
		q.SetField(e.Field)
		return q, nil
	case document.KindInteger:
		return numericPoint(e.Field, float64(e.Value.Integer())), nil
	case document.KindFloat:
		return numericPoint(e.Field, e.Value.Float()), nil
	case document.KindDate:
		incl := true
		q := bleve.NewDateRangeInclusiveQuery(e.Value.Date(), e.Value.Date(), &incl, &incl)
		q.SetField(e.Field)
		return q, nil
	}
	return nil, fmt.Errorf("%w: unsupported term value %s", domain.ErrQuery, e.Value)
}

// numericPoint is an exact numeric match expressed as a degenerate inclusive
// range, since numeric fields index as ranges rather than terms.
func numericPoint(field string, v float64) enginequery.Query {
	incl := true
	q := bleve.NewNumericRangeInclusiveQuery(&v, &v, &incl, &incl)
	q.SetField(field)
	return q
}

func (m *Mapper) compileRange(e query.Range) (enginequery.Query, error) {
	f, ok := m.fields[e.Field]
	if !ok {
		return nil, fmt.Errorf("%w: unknown field %q", domain.ErrSchema, e.Field)
	}
	switch f.Kind() {
	case schema.KindInteger, schema.KindFloat, schema.KindDate:
	default:
		return nil, fmt.Errorf("%w: range query requires a numeric or date field, %q is %s", domain.ErrQuery, e.Field, f.Kind())
	}
	if e.Min == nil || e.Max == nil {
		return nil, fmt.Errorf("%w: range query on %q requires both bounds", domain.ErrQuery, e.Field)
	}
	if e.Min.Kind() != e.Max.Kind() {
		return nil, fmt.Errorf("%w: range bounds on %q disagree: %s vs %s", domain.ErrQuery, e.Field, *e.Min, *e.Max)
	}
	if !e.Min.Matches(f.Kind()) {
		return nil, fmt.Errorf("%w: field %q expects %s bounds, got %s", domain.ErrQuery, e.Field, f.Kind(), *e.Min)
	}

	incl := e.Inclusive
	switch f.Kind() {
	case schema.KindInteger:
		min := float64(e.Min.Integer())
		max := float64(e.Max.Integer())
		q := bleve.NewNumericRangeInclusiveQuery(&min, &max, &incl, &incl)
		q.SetField(e.Field)
		return q, nil
	case schema.KindFloat:
		min := e.Min.Float()
		max := e.Max.Float()
		q := bleve.NewNumericRangeInclusiveQuery(&min, &max, &incl, &incl)
		q.SetField(e.Field)
		return q, nil
	default:
		q := bleve.NewDateRangeInclusiveQuery(e.Min.Date(), e.Max.Date(), &incl, &incl)
		q.SetField(e.Field)
		return q, nil
	}
}

func (m *Mapper) compileBool(e query.Bool) (enginequery.Query, error) {
	if len(e.Must) == 0 && len(e.Should) == 0 && len(e.MustNot) == 0 {
		// An empty boolean matches nothing.
		return bleve.NewMatchNoneQuery(), nil
	}

	q := bleve.NewBooleanQuery()
	for _, sub := range e.Must {
		c, err := m.Compile(sub)
		if err != nil {
			return nil, err
		}
		q.AddMust(c)
	}
	for _, sub := range e.Should {
		c, err := m.Compile(sub)
		if err != nil {
			return nil, err
		}
		q.AddShould(c)
	}
	for _, sub := range e.MustNot {
		c, err := m.Compile(sub)
		if err != nil {
			return nil, err
		}
		q.AddMustNot(c)
	}
	if e.MinimumShouldMatch > 0 {
		if e.MinimumShouldMatch > len(e.Should) {
			return nil, fmt.Errorf("%w: minimum_should_match %d exceeds %d should clauses", domain.ErrQuery, e.MinimumShouldMatch, len(e.Should))
		}
		q.SetMinShould(float64(e.MinimumShouldMatch))
	}
	return q, nil
}
