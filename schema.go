package textdex

import (
	"github.com/kailas-cloud/textdex/internal/domain/schema"
)

// Tokenizer names for text fields.
const (
	TokenizerDefault = schema.TokenizerDefault
	TokenizerKeyword = schema.TokenizerKeyword
	TokenizerSimple  = schema.TokenizerSimple
	TokenizerEnStem  = schema.TokenizerEnStem
)

// SchemaBuilder assembles a collection schema fluently. The first error
// encountered is kept and returned by Build.
type SchemaBuilder struct {
	name       string
	fields     []schema.Field
	primaryKey string
	err        error
}

// NewSchema starts a schema for the named collection.
func NewSchema(name string) *SchemaBuilder {
	return &SchemaBuilder{name: name}
}

func (b *SchemaBuilder) add(name string, kind schema.Kind, opts schema.Options) *SchemaBuilder {
	if b.err != nil {
		return b
	}
	f, err := schema.New(name, kind, opts)
	if err != nil {
		b.err = err
		return b
	}
	b.fields = append(b.fields, f)
	return b
}

// Text adds an analyzed text field using the default tokenizer.
func (b *SchemaBuilder) Text(name string, stored bool) *SchemaBuilder {
	return b.add(name, schema.KindText, schema.Options{Stored: stored, Indexed: true})
}

// TextWithTokenizer adds an analyzed text field with an explicit tokenizer.
func (b *SchemaBuilder) TextWithTokenizer(name string, stored bool, tokenizer string) *SchemaBuilder {
	return b.add(name, schema.KindText, schema.Options{Stored: stored, Indexed: true, Tokenizer: tokenizer})
}

// Keyword adds an exact-match text field (no analysis).
func (b *SchemaBuilder) Keyword(name string, stored bool) *SchemaBuilder {
	return b.TextWithTokenizer(name, stored, TokenizerKeyword)
}

// Integer adds a 64-bit signed integer field.
func (b *SchemaBuilder) Integer(name string, stored, fast bool) *SchemaBuilder {
	return b.add(name, schema.KindInteger, schema.Options{Stored: stored, Indexed: true, Fast: fast})
}

// Float adds a 64-bit float field.
func (b *SchemaBuilder) Float(name string, stored, fast bool) *SchemaBuilder {
	return b.add(name, schema.KindFloat, schema.Options{Stored: stored, Indexed: true, Fast: fast})
}

// Date adds a timestamp field.
func (b *SchemaBuilder) Date(name string, stored, fast bool) *SchemaBuilder {
	return b.add(name, schema.KindDate, schema.Options{Stored: stored, Indexed: true, Fast: fast})
}

// Facet adds a hierarchical facet path field.
func (b *SchemaBuilder) Facet(name string) *SchemaBuilder {
	return b.add(name, schema.KindFacet, schema.Options{})
}

// Bytes adds a raw byte field.
func (b *SchemaBuilder) Bytes(name string, stored bool) *SchemaBuilder {
	return b.add(name, schema.KindBytes, schema.Options{Stored: stored, Indexed: true})
}

// PrimaryKey names the identity-bearing field.
func (b *SchemaBuilder) PrimaryKey(field string) *SchemaBuilder {
	b.primaryKey = field
	return b
}

// Build validates and returns the schema definition.
func (b *SchemaBuilder) Build() (schema.Definition, error) {
	if b.err != nil {
		return schema.Definition{}, b.err
	}
	return schema.NewDefinition(b.name, b.fields, b.primaryKey)
}
