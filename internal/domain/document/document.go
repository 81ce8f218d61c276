// Package document defines the data-time value model: the tagged field value
// union and the document shape accepted by collection mutations.
package document

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/schema"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9._:-]+$`)

// Kind is the tag of a field value. Exactly one kind matches exactly one
// schema kind family; a mismatch is a validation failure, never a coercion.
type Kind string

// Value kind constants.
const (
	KindText    Kind = "text"
	KindInteger Kind = "integer"
	KindFloat   Kind = "float"
	KindDate    Kind = "date"
	KindFacet   Kind = "facet"
	KindBytes   Kind = "bytes"
)

// Value is the tagged union of field values.
type Value struct {
	kind Kind
	str  string // text or facet path
	i64  int64
	f64  float64
	ts   time.Time
	raw  []byte
}

// Text creates a text value.
func Text(s string) Value { return Value{kind: KindText, str: s} }

// Integer creates a 64-bit signed integer value.
func Integer(i int64) Value { return Value{kind: KindInteger, i64: i} }

// Float creates a 64-bit float value.
func Float(f float64) Value { return Value{kind: KindFloat, f64: f} }

// Date creates a timestamp value (normalized to UTC).
func Date(t time.Time) Value { return Value{kind: KindDate, ts: t.UTC()} }

// Facet creates a hierarchical facet path value, e.g. "/books/fiction".
// Path syntax is validated by the index layer on conversion.
func Facet(path string) Value { return Value{kind: KindFacet, str: path} }

// Bytes creates a raw byte sequence value.
func Bytes(b []byte) Value { return Value{kind: KindBytes, raw: append([]byte(nil), b...)} }

// Kind returns the value tag.
func (v Value) Kind() Kind { return v.kind }

// Text returns the text content (KindText only).
func (v Value) Text() string { return v.str }

// Integer returns the integer content (KindInteger only).
func (v Value) Integer() int64 { return v.i64 }

// Float returns the float content (KindFloat only).
func (v Value) Float() float64 { return v.f64 }

// Date returns the timestamp content (KindDate only).
func (v Value) Date() time.Time { return v.ts }

// Facet returns the facet path (KindFacet only).
func (v Value) Facet() string { return v.str }

// Bytes returns the raw bytes (KindBytes only).
func (v Value) Bytes() []byte { return v.raw }

// Matches reports whether the value tag belongs to the declared kind family.
func (v Value) Matches(k schema.Kind) bool {
	switch v.kind {
	case KindText:
		return k == schema.KindText
	case KindInteger:
		return k == schema.KindInteger
	case KindFloat:
		return k == schema.KindFloat
	case KindDate:
		return k == schema.KindDate
	case KindFacet:
		return k == schema.KindFacet
	case KindBytes:
		return k == schema.KindBytes
	}
	return false
}

// String returns a human-readable form for error messages.
func (v Value) String() string {
	switch v.kind {
	case KindText, KindFacet:
		return fmt.Sprintf("%s(%q)", v.kind, v.str)
	case KindInteger:
		return fmt.Sprintf("integer(%d)", v.i64)
	case KindFloat:
		return fmt.Sprintf("float(%g)", v.f64)
	case KindDate:
		return fmt.Sprintf("date(%s)", v.ts.Format(time.RFC3339))
	case KindBytes:
		return fmt.Sprintf("bytes(%d)", len(v.raw))
	}
	return "unknown"
}

// Document is one unit of indexed content: a caller-supplied identity plus
// a mapping from field name to value. Instances are transient; the caller
// owns them until consumed by add/update.
type Document struct {
	id     string
	fields map[string]Value
}

// New validates and creates a Document.
// ID: non-empty, max 256 chars, limited to [a-zA-Z0-9._:-].
func New(id string, fields map[string]Value) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("%w: document ID is required", domain.ErrSchema)
	}
	if len(id) > 256 {
		return Document{}, fmt.Errorf("%w: document ID too long (max 256)", domain.ErrSchema)
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("%w: document ID %q contains invalid characters", domain.ErrSchema, id)
	}

	cloned := make(map[string]Value, len(fields))
	for k, v := range fields {
		cloned[k] = v
	}
	return Document{id: id, fields: cloned}, nil
}

// ID returns the caller-supplied identity.
func (d Document) ID() string { return d.id }

// Fields returns the field values.
func (d Document) Fields() map[string]Value { return d.fields }
