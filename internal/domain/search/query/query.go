// Package query defines the structured query expression tree compiled by the
// index layer into engine-native queries. Boolean composition nests
// arbitrarily.
package query

import "github.com/kailas-cloud/textdex/internal/domain/document"

// Expression is a node of the query tree.
type Expression interface {
	isExpression()
}

// FullText matches documents whose field contains the analyzed text.
// Boost, if set, multiplies the relevance score of matches.
type FullText struct {
	Field string
	Text  string
	Boost *float64
}

// Term matches documents whose field holds exactly the given value.
// Bytes values are not supported for term queries.
type Term struct {
	Field string
	Value document.Value
}

// Range matches documents whose field value lies between Min and Max.
// Both bounds are required and must be the same value kind, restricted to
// integer, float, or date. Inclusive applies to both bounds symmetrically;
// there is no independent control of lower vs. upper inclusivity.
type Range struct {
	Field     string
	Min       *document.Value
	Max       *document.Value
	Inclusive bool
}

// Bool combines sub-expressions with must/should/must-not semantics.
// MinimumShouldMatch, when positive, requires at least that many should
// clauses to match.
type Bool struct {
	Must               []Expression
	Should             []Expression
	MustNot            []Expression
	MinimumShouldMatch int
}

// MatchAll matches every document.
type MatchAll struct{}

func (FullText) isExpression() {}
func (Term) isExpression()     {}
func (Range) isExpression()    {}
func (Bool) isExpression()     {}
func (MatchAll) isExpression() {}
