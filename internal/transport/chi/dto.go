package chi

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/schema"
	"github.com/kailas-cloud/textdex/internal/domain/search/query"
	"github.com/kailas-cloud/textdex/internal/domain/search/request"
	"github.com/kailas-cloud/textdex/internal/domain/search/result"
)

// fieldDTO is the wire form of one schema field.
type fieldDTO struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Stored    bool   `json:"stored"`
	Indexed   bool   `json:"indexed"`
	Fast      bool   `json:"fast,omitempty"`
	Tokenizer string `json:"tokenizer,omitempty"`
}

type createCollectionRequest struct {
	Name       string     `json:"name"`
	Fields     []fieldDTO `json:"fields"`
	PrimaryKey string     `json:"primary_key,omitempty"`
}

type collectionResponse struct {
	Name       string     `json:"name"`
	Fields     []fieldDTO `json:"fields"`
	PrimaryKey string     `json:"primary_key,omitempty"`
}

type collectionListResponse struct {
	Items []string `json:"items"`
}

// valueDTO is the tagged wire form of a field value.
// Dates travel as RFC 3339 strings, bytes as base64.
type valueDTO struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type addDocumentRequest struct {
	ID     string              `json:"id"`
	Fields map[string]valueDTO `json:"fields"`
}

type upsertDocumentRequest struct {
	Fields map[string]valueDTO `json:"fields"`
}

// queryDTO is the recursive wire form of a query expression. Exactly one of
// the variant keys must be set.
type queryDTO struct {
	FullText *fullTextDTO `json:"full_text,omitempty"`
	Term     *termDTO     `json:"term,omitempty"`
	Range    *rangeDTO    `json:"range,omitempty"`
	Bool     *boolDTO     `json:"bool,omitempty"`
	MatchAll *struct{}    `json:"match_all,omitempty"`
}

type fullTextDTO struct {
	Field string   `json:"field"`
	Text  string   `json:"text"`
	Boost *float64 `json:"boost,omitempty"`
}

type termDTO struct {
	Field string   `json:"field"`
	Value valueDTO `json:"value"`
}

type rangeDTO struct {
	Field     string    `json:"field"`
	Min       *valueDTO `json:"min,omitempty"`
	Max       *valueDTO `json:"max,omitempty"`
	Inclusive bool      `json:"inclusive"`
}

type boolDTO struct {
	Must               []queryDTO `json:"must,omitempty"`
	Should             []queryDTO `json:"should,omitempty"`
	MustNot            []queryDTO `json:"must_not,omitempty"`
	MinimumShouldMatch int        `json:"minimum_should_match,omitempty"`
}

type sortDTO struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

type searchRequestDTO struct {
	Query  queryDTO  `json:"query"`
	Limit  int       `json:"limit,omitempty"`
	Offset int       `json:"offset,omitempty"`
	Sort   []sortDTO `json:"sort,omitempty"`
}

type hitDTO struct {
	ID     string              `json:"id"`
	Score  float32             `json:"score"`
	Fields map[string]valueDTO `json:"fields"`
}

type searchResponseDTO struct {
	TotalHits uint64   `json:"total_hits"`
	Hits      []hitDTO `json:"hits"`
	TookMs    int64    `json:"took_ms"`
}

type statsResponse struct {
	Name           string    `json:"name"`
	DocumentCount  uint64    `json:"document_count"`
	IndexSizeBytes int64     `json:"index_size_bytes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type allStatsResponse struct {
	Items []statsResponse `json:"items"`
}

type healthCollectionDTO struct {
	Name           string `json:"name"`
	Status         string `json:"status"`
	DocumentCount  uint64 `json:"document_count"`
	IndexSizeBytes int64  `json:"index_size_bytes"`
}

type healthResponse struct {
	Status      string                `json:"status"`
	Collections []healthCollectionDTO `json:"collections"`
	UptimeMs    int64                 `json:"uptime_ms"`
	Version     string                `json:"version"`
}

type updateConfigRequest struct {
	CommitIntervalMs int `json:"commit_interval_ms"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func fieldsFromDTO(dtos []fieldDTO) ([]schema.Field, error) {
	fields := make([]schema.Field, 0, len(dtos))
	for _, d := range dtos {
		f, err := schema.New(d.Name, schema.Kind(d.Type), schema.Options{
			Stored:    d.Stored,
			Indexed:   d.Indexed,
			Fast:      d.Fast,
			Tokenizer: d.Tokenizer,
		})
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func collectionToDTO(def schema.Definition) collectionResponse {
	fields := make([]fieldDTO, 0, len(def.Fields()))
	for _, f := range def.Fields() {
		fields = append(fields, fieldDTO{
			Name:      f.Name(),
			Type:      string(f.Kind()),
			Stored:    f.Stored(),
			Indexed:   f.Indexed(),
			Fast:      f.Fast(),
			Tokenizer: f.Tokenizer(),
		})
	}
	return collectionResponse{Name: def.Name(), Fields: fields, PrimaryKey: def.PrimaryKey()}
}

func valueFromDTO(d valueDTO) (document.Value, error) {
	switch d.Type {
	case "text":
		s, ok := d.Value.(string)
		if !ok {
			return document.Value{}, fmt.Errorf("text value must be a string")
		}
		return document.Text(s), nil
	case "integer":
		f, ok := d.Value.(float64)
		if !ok {
			return document.Value{}, fmt.Errorf("integer value must be a number")
		}
		return document.Integer(int64(f)), nil
	case "float":
		f, ok := d.Value.(float64)
		if !ok {
			return document.Value{}, fmt.Errorf("float value must be a number")
		}
		return document.Float(f), nil
	case "date":
		s, ok := d.Value.(string)
		if !ok {
			return document.Value{}, fmt.Errorf("date value must be an RFC 3339 string")
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return document.Value{}, fmt.Errorf("parse date: %w", err)
		}
		return document.Date(t), nil
	case "facet":
		s, ok := d.Value.(string)
		if !ok {
			return document.Value{}, fmt.Errorf("facet value must be a string path")
		}
		return document.Facet(s), nil
	case "bytes":
		s, ok := d.Value.(string)
		if !ok {
			return document.Value{}, fmt.Errorf("bytes value must be a base64 string")
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return document.Value{}, fmt.Errorf("decode base64: %w", err)
		}
		return document.Bytes(b), nil
	default:
		return document.Value{}, fmt.Errorf("unknown value type %q", d.Type)
	}
}

func valueToDTO(v document.Value) valueDTO {
	switch v.Kind() {
	case document.KindText:
		return valueDTO{Type: "text", Value: v.Text()}
	case document.KindInteger:
		return valueDTO{Type: "integer", Value: v.Integer()}
	case document.KindFloat:
		return valueDTO{Type: "float", Value: v.Float()}
	case document.KindDate:
		return valueDTO{Type: "date", Value: v.Date().Format(time.RFC3339)}
	case document.KindFacet:
		return valueDTO{Type: "facet", Value: v.Facet()}
	case document.KindBytes:
		return valueDTO{Type: "bytes", Value: base64.StdEncoding.EncodeToString(v.Bytes())}
	}
	return valueDTO{}
}

func fieldValuesFromDTO(dtos map[string]valueDTO) (map[string]document.Value, error) {
	out := make(map[string]document.Value, len(dtos))
	for name, d := range dtos {
		v, err := valueFromDTO(d)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func queryFromDTO(d queryDTO) (query.Expression, error) {
	set := 0
	if d.FullText != nil {
		set++
	}
	if d.Term != nil {
		set++
	}
	if d.Range != nil {
		set++
	}
	if d.Bool != nil {
		set++
	}
	if d.MatchAll != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("query must have exactly one of full_text, term, range, bool, match_all")
	}

	switch {
	case d.FullText != nil:
		return query.FullText{Field: d.FullText.Field, Text: d.FullText.Text, Boost: d.FullText.Boost}, nil
	case d.Term != nil:
		v, err := valueFromDTO(d.Term.Value)
		if err != nil {
			return nil, fmt.Errorf("term value: %w", err)
		}
		return query.Term{Field: d.Term.Field, Value: v}, nil
	case d.Range != nil:
		var min, max *document.Value
		if d.Range.Min != nil {
			v, err := valueFromDTO(*d.Range.Min)
			if err != nil {
				return nil, fmt.Errorf("range min: %w", err)
			}
			min = &v
		}
		if d.Range.Max != nil {
			v, err := valueFromDTO(*d.Range.Max)
			if err != nil {
				return nil, fmt.Errorf("range max: %w", err)
			}
			max = &v
		}
		return query.Range{Field: d.Range.Field, Min: min, Max: max, Inclusive: d.Range.Inclusive}, nil
	case d.Bool != nil:
		must, err := queriesFromDTO(d.Bool.Must)
		if err != nil {
			return nil, err
		}
		should, err := queriesFromDTO(d.Bool.Should)
		if err != nil {
			return nil, err
		}
		mustNot, err := queriesFromDTO(d.Bool.MustNot)
		if err != nil {
			return nil, err
		}
		return query.Bool{
			Must:               must,
			Should:             should,
			MustNot:            mustNot,
			MinimumShouldMatch: d.Bool.MinimumShouldMatch,
		}, nil
	default:
		return query.MatchAll{}, nil
	}
}

func queriesFromDTO(dtos []queryDTO) ([]query.Expression, error) {
	if len(dtos) == 0 {
		return nil, nil
	}
	out := make([]query.Expression, 0, len(dtos))
	for _, d := range dtos {
		q, err := queryFromDTO(d)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func searchRequestFromDTO(collection string, d searchRequestDTO, limits request.Limits) (request.Request, error) {
	q, err := queryFromDTO(d.Query)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %v", domain.ErrQuery, err)
	}

	var sort []request.SortField
	for _, s := range d.Sort {
		sf, err := request.NewSortField(s.Field, request.Order(s.Order))
		if err != nil {
			return request.Request{}, err
		}
		sort = append(sort, sf)
	}

	return request.NewWithLimits(collection, q, d.Limit, d.Offset, sort, limits)
}

func searchResultToDTO(res result.Result) searchResponseDTO {
	hits := make([]hitDTO, 0, len(res.Hits()))
	for _, h := range res.Hits() {
		fields := make(map[string]valueDTO, len(h.Fields()))
		for name, v := range h.Fields() {
			fields[name] = valueToDTO(v)
		}
		hits = append(hits, hitDTO{ID: h.ID(), Score: h.Score(), Fields: fields})
	}
	return searchResponseDTO{TotalHits: res.TotalHits(), Hits: hits, TookMs: res.TookMillis()}
}

func statsToDTO(s result.CollectionStats) statsResponse {
	return statsResponse{
		Name:           s.Name,
		DocumentCount:  s.DocumentCount,
		IndexSizeBytes: s.IndexSizeBytes,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
