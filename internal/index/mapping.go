// Package index is the adapter between the abstract schema/query model and
// the underlying bleve engine: it builds engine field mappings from schema
// definitions, converts values in both directions, and compiles query
// expressions into engine-native queries.
package index

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/schema"
)

// Mapper is the single source of truth for the mapping between one
// collection's abstract schema and the engine's field space.
type Mapper struct {
	def    schema.Definition
	fields map[string]schema.Field // declared fields plus the implicit identity field
	im     *mapping.IndexMappingImpl
}

// NewMapper compiles a schema definition into an engine index mapping.
// The document mapping is static: fields outside the schema are never
// indexed implicitly. Geo fields are skipped at build time.
func NewMapper(def schema.Definition) (*Mapper, error) {
	doc := bleve.NewDocumentStaticMapping()
	fields := make(map[string]schema.Field, len(def.Fields())+1)

	// The identity field is always present: exact-match, stored.
	idField := schema.Reconstruct(schema.IdentityField, schema.KindText, schema.Options{
		Stored:    true,
		Indexed:   true,
		Tokenizer: schema.TokenizerKeyword,
	})
	fields[schema.IdentityField] = idField
	doc.AddFieldMappingsAt(schema.IdentityField, keywordMapping(true, true))

	for _, f := range def.Fields() {
		fm, err := fieldMapping(f)
		if err != nil {
			return nil, err
		}
		if fm == nil {
			// Geo placeholder: declared but not mapped.
			continue
		}
		doc.AddFieldMappingsAt(f.Name(), fm)
		fields[f.Name()] = f
	}

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	im.DefaultAnalyzer = standard.Name

	return &Mapper{def: def, fields: fields, im: im}, nil
}

// fieldMapping builds the engine mapping for one declared field.
// A nil mapping with nil error means the field is intentionally unmapped.
func fieldMapping(f schema.Field) (*mapping.FieldMapping, error) {
	switch f.Kind() {
	case schema.KindText:
		if f.Tokenizer() == schema.TokenizerKeyword {
			return keywordMapping(f.Stored(), f.Indexed()), nil
		}
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = analyzerFor(f.Tokenizer())
		fm.Store = f.Stored()
		fm.Index = f.Indexed()
		// Positions and frequencies for phrase and proximity support.
		fm.IncludeTermVectors = true
		return fm, nil

	case schema.KindInteger, schema.KindFloat:
		fm := bleve.NewNumericFieldMapping()
		fm.Store = f.Stored()
		fm.Index = f.Indexed()
		fm.DocValues = f.Fast()
		return fm, nil

	case schema.KindDate:
		fm := bleve.NewDateTimeFieldMapping()
		fm.Store = f.Stored()
		fm.Index = f.Indexed()
		fm.DocValues = f.Fast()
		return fm, nil

	case schema.KindFacet:
		// Hierarchical path, always indexed for exact categorical filtering.
		return keywordMapping(false, true), nil

	case schema.KindBytes:
		// Raw bytes travel as their base64 encoding.
		return keywordMapping(f.Stored(), f.Indexed()), nil

	case schema.KindGeo:
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: unsupported field kind %q for %q", domain.ErrSchema, f.Kind(), f.Name())
	}
}

func keywordMapping(stored, indexed bool) *mapping.FieldMapping {
	fm := bleve.NewKeywordFieldMapping()
	fm.Store = stored
	fm.Index = indexed
	return fm
}

func analyzerFor(tokenizer string) string {
	switch tokenizer {
	case schema.TokenizerSimple:
		return simple.Name
	case schema.TokenizerEnStem:
		return en.AnalyzerName
	default:
		return standard.Name
	}
}

// Definition returns the schema definition this mapper was built from.
func (m *Mapper) Definition() schema.Definition { return m.def }

// IndexMapping returns the compiled engine mapping.
func (m *Mapper) IndexMapping() mapping.IndexMapping { return m.im }

// Field resolves a field name, including the implicit identity field.
// Geo fields are unmapped and do not resolve.
func (m *Mapper) Field(name string) (schema.Field, bool) {
	f, ok := m.fields[name]
	return f, ok
}
