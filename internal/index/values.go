package index

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/schema"
)

// Validate checks one field value against the schema: the field must be
// declared (or be the identity field) and the value kind must match the
// declared kind.
func (m *Mapper) Validate(field string, v document.Value) error {
	f, ok := m.fields[field]
	if !ok {
		return fmt.Errorf("%w: unknown field %q", domain.ErrSchema, field)
	}
	if !v.Matches(f.Kind()) {
		return fmt.Errorf("%w: field %q expects %s, got %s", domain.ErrSchema, field, f.Kind(), v)
	}
	return nil
}

// EngineDocument converts a validated document into the flat map the engine
// indexes. The identity field is injected from the document ID; supplying it
// explicitly is rejected. Values for geo fields cannot pass validation since
// geo fields are unmapped.
func (m *Mapper) EngineDocument(doc document.Document) (map[string]any, error) {
	out := make(map[string]any, len(doc.Fields())+1)
	out[schema.IdentityField] = doc.ID()

	for name, v := range doc.Fields() {
		if name == schema.IdentityField {
			return nil, fmt.Errorf("%w: field %q is reserved", domain.ErrSchema, name)
		}
		if err := m.Validate(name, v); err != nil {
			return nil, err
		}
		ev, err := engineValue(v)
		if err != nil {
			return nil, err
		}
		out[name] = ev
	}
	return out, nil
}

// engineValue converts one value to its engine representation.
func engineValue(v document.Value) (any, error) {
	switch v.Kind() {
	case document.KindText:
		return v.Text(), nil
	case document.KindInteger:
		return v.Integer(), nil
	case document.KindFloat:
		return v.Float(), nil
	case document.KindDate:
		return v.Date(), nil
	case document.KindFacet:
		p := v.Facet()
		if !strings.HasPrefix(p, "/") {
			return nil, fmt.Errorf("%w: facet path %q must start with '/'", domain.ErrSchema, p)
		}
		for _, seg := range strings.Split(p[1:], "/") {
			if seg == "" {
				return nil, fmt.Errorf("%w: facet path %q has an empty segment", domain.ErrSchema, p)
			}
		}
		return p, nil
	case document.KindBytes:
		return base64.StdEncoding.EncodeToString(v.Bytes()), nil
	}
	return nil, fmt.Errorf("%w: unsupported value kind %q", domain.ErrSchema, v.Kind())
}

// DecodeHit converts the stored fields of one engine hit back into typed
// values, keyed on the declared schema kind. Fields that are unknown, not
// stored, or fail to decode are dropped rather than failing the search.
func (m *Mapper) DecodeHit(raw map[string]any) map[string]document.Value {
	out := make(map[string]document.Value, len(raw))
	for name, rv := range raw {
		if name == schema.IdentityField {
			continue
		}
		f, ok := m.fields[name]
		if !ok || !f.Stored() {
			continue
		}
		v, ok := decodeValue(f.Kind(), rv)
		if !ok {
			continue
		}
		out[name] = v
	}
	return out
}

// decodeValue interprets an engine-stored value as the declared kind.
// The engine returns numerics as float64 and dates as RFC 3339 strings.
func decodeValue(kind schema.Kind, raw any) (document.Value, bool) {
	switch kind {
	case schema.KindText:
		if s, ok := raw.(string); ok {
			return document.Text(s), true
		}
	case schema.KindInteger:
		if f, ok := raw.(float64); ok {
			return document.Integer(int64(f)), true
		}
	case schema.KindFloat:
		if f, ok := raw.(float64); ok {
			return document.Float(f), true
		}
	case schema.KindDate:
		if s, ok := raw.(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return document.Date(t), true
			}
		}
	case schema.KindBytes:
		if s, ok := raw.(string); ok {
			if b, err := base64.StdEncoding.DecodeString(s); err == nil {
				return document.Bytes(b), true
			}
		}
	}
	return document.Value{}, false
}
