// Package schema defines the abstract field model a collection is bound to:
// field kinds, per-field indexing options, and the immutable schema
// definition persisted alongside each collection.
package schema

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/textdex/internal/domain"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// IdentityField is the reserved identity field every collection carries.
// It is never declared by the caller; the index layer adds it implicitly.
const IdentityField = "_id"

// Kind is the declared type family of a field.
type Kind string

// Field kind constants.
const (
	KindText    Kind = "text"
	KindInteger Kind = "integer"
	KindFloat   Kind = "float"
	KindDate    Kind = "date"
	KindFacet   Kind = "facet"
	KindBytes   Kind = "bytes"
	// KindGeo is declared for forward compatibility. The index layer skips
	// geo fields at schema build time; they are not a runtime capability.
	KindGeo Kind = "geo"
)

// IsValid checks if the kind is a known field kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindText, KindInteger, KindFloat, KindDate, KindFacet, KindBytes, KindGeo:
		return true
	}
	return false
}

// Tokenizer names understood by the index layer for text fields.
// Anything else falls back to the default analyzer.
const (
	TokenizerDefault = "default"
	TokenizerKeyword = "keyword"
	TokenizerSimple  = "simple"
	TokenizerEnStem  = "en_stem"
)

// Options carries the per-field indexing flags supplied at declaration time.
type Options struct {
	Stored    bool
	Indexed   bool
	Fast      bool   // eligible for range queries and sort
	Tokenizer string // text fields only; empty means TokenizerDefault
}

// Field is an immutable value object describing one declared field.
type Field struct {
	name      string
	kind      Kind
	stored    bool
	indexed   bool
	fast      bool
	tokenizer string
}

// New validates and creates a Field.
// Name must be non-empty, max 64 chars, match ^[a-zA-Z0-9_-]+$, and must not
// shadow the reserved identity field.
func New(name string, kind Kind, opts Options) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("%w: field name is required", domain.ErrSchema)
	}
	if len(name) > 64 {
		return Field{}, fmt.Errorf("%w: field name %q too long (max 64)", domain.ErrSchema, name)
	}
	if !nameRegex.MatchString(name) {
		return Field{}, fmt.Errorf("%w: field name %q must be alphanumeric with underscores and hyphens", domain.ErrSchema, name)
	}
	if name == IdentityField {
		return Field{}, fmt.Errorf("%w: field name %q is reserved", domain.ErrSchema, name)
	}
	if !kind.IsValid() {
		return Field{}, fmt.Errorf("%w: invalid field kind %q for %q", domain.ErrSchema, kind, name)
	}

	f := Field{
		name:    name,
		kind:    kind,
		stored:  opts.Stored,
		indexed: opts.Indexed,
		fast:    opts.Fast,
	}
	switch kind {
	case KindText:
		f.tokenizer = opts.Tokenizer
		if f.tokenizer == "" {
			f.tokenizer = TokenizerDefault
		}
	case KindFacet:
		// Facets are always indexed; stored/fast flags do not apply.
		f.stored = false
		f.indexed = true
		f.fast = false
	}
	return f, nil
}

// Reconstruct creates a Field without validation (storage hydration).
func Reconstruct(name string, kind Kind, opts Options) Field {
	return Field{
		name:      name,
		kind:      kind,
		stored:    opts.Stored,
		indexed:   opts.Indexed,
		fast:      opts.Fast,
		tokenizer: opts.Tokenizer,
	}
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// Kind returns the declared type family.
func (f Field) Kind() Kind { return f.kind }

// Stored reports whether the field is retrievable in results.
func (f Field) Stored() bool { return f.stored }

// Indexed reports whether the field is searchable.
func (f Field) Indexed() bool { return f.indexed }

// Fast reports whether the field is eligible for range queries and sort.
func (f Field) Fast() bool { return f.fast }

// Tokenizer returns the tokenizer name (text fields only).
func (f Field) Tokenizer() string { return f.tokenizer }

// Definition is the immutable schema a collection is created with.
// It is persisted next to the index so the collection can be reopened
// without re-specifying it.
type Definition struct {
	name       string
	fields     []Field
	primaryKey string
}

// NewDefinition validates and creates a Definition.
// Name: ^[a-zA-Z0-9_-]+$, 1-64 chars. Fields: unique names, max 64.
// PrimaryKey, if set, must name a declared field or the identity field.
func NewDefinition(name string, fields []Field, primaryKey string) (Definition, error) {
	if name == "" {
		return Definition{}, fmt.Errorf("%w: schema name is required", domain.ErrSchema)
	}
	if len(name) > 64 {
		return Definition{}, fmt.Errorf("%w: schema name too long (max 64)", domain.ErrSchema)
	}
	if !nameRegex.MatchString(name) {
		return Definition{}, fmt.Errorf("%w: schema name must be alphanumeric with underscores and hyphens", domain.ErrSchema)
	}
	if len(fields) > 64 {
		return Definition{}, fmt.Errorf("%w: too many fields (max 64)", domain.ErrSchema)
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name()] {
			return Definition{}, fmt.Errorf("%w: duplicate field name %q", domain.ErrSchema, f.Name())
		}
		seen[f.Name()] = true
	}
	if primaryKey != "" && primaryKey != IdentityField && !seen[primaryKey] {
		return Definition{}, fmt.Errorf("%w: primary key %q is not a declared field", domain.ErrSchema, primaryKey)
	}

	return Definition{name: name, fields: append([]Field(nil), fields...), primaryKey: primaryKey}, nil
}

// ReconstructDefinition creates a Definition without validation (storage hydration).
func ReconstructDefinition(name string, fields []Field, primaryKey string) Definition {
	return Definition{name: name, fields: fields, primaryKey: primaryKey}
}

// Name returns the schema name.
func (d Definition) Name() string { return d.name }

// Fields returns the declared field definitions.
func (d Definition) Fields() []Field { return d.fields }

// PrimaryKey returns the optional primary-key field name.
func (d Definition) PrimaryKey() string { return d.primaryKey }

// FieldByName looks up a declared field by name.
func (d Definition) FieldByName(name string) (Field, bool) {
	for _, f := range d.fields {
		if f.Name() == name {
			return f, true
		}
	}
	return Field{}, false
}
