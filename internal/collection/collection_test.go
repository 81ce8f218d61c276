package collection

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/schema"
	"github.com/kailas-cloud/textdex/internal/domain/search/query"
	"github.com/kailas-cloud/textdex/internal/domain/search/request"
)

func testDefinition(t *testing.T) schema.Definition {
	t.Helper()
	fields := []schema.Field{
		mustField(t, "title", schema.KindText, schema.Options{Stored: true, Indexed: true}),
		mustField(t, "body", schema.KindText, schema.Options{Indexed: true, Tokenizer: schema.TokenizerEnStem}),
		mustField(t, "year", schema.KindInteger, schema.Options{Stored: true, Indexed: true, Fast: true}),
		mustField(t, "category", schema.KindFacet, schema.Options{}),
	}
	def, err := schema.NewDefinition("articles", fields, "")
	if err != nil {
		t.Fatal(err)
	}
	return def
}

func mustField(t *testing.T, name string, kind schema.Kind, opts schema.Options) schema.Field {
	t.Helper()
	f, err := schema.New(name, kind, opts)
	if err != nil {
		t.Fatalf("build field %q: %v", name, err)
	}
	return f
}

func newTestCollection(t *testing.T) *Collection {
	t.Helper()
	c, err := Create(t.TempDir(), testDefinition(t), zap.NewNop())
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func addArticle(t *testing.T, c *Collection, id, title string, year int64) {
	t.Helper()
	doc, err := document.New(id, map[string]document.Value{
		"title": document.Text(title),
		"body":  document.Text(title),
		"year":  document.Integer(year),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Add(doc); err != nil {
		t.Fatalf("add %q: %v", id, err)
	}
}

func searchAll(t *testing.T, c *Collection, q query.Expression, limit int) []string {
	t.Helper()
	req, err := request.New(c.Name(), q, limit, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	ids := make([]string, 0, len(res.Hits()))
	for _, h := range res.Hits() {
		ids = append(ids, h.ID())
	}
	return ids
}

func TestCommit_MakesStagedVisible(t *testing.T) {
	c := newTestCollection(t)
	addArticle(t, c, "d1", "go concurrency", 2021)

	if got := searchAll(t, c, query.MatchAll{}, 10); len(got) != 0 {
		t.Fatalf("staged document visible before commit: %v", got)
	}
	if c.Pending() != 1 {
		t.Errorf("pending = %d, want 1", c.Pending())
	}

	if err := c.Commit(); err != nil {
		t.Fatal(err)
	}
	if c.Pending() != 0 {
		t.Errorf("pending after commit = %d, want 0", c.Pending())
	}
	if got := searchAll(t, c, query.MatchAll{}, 10); len(got) != 1 || got[0] != "d1" {
		t.Fatalf("unexpected hits after commit: %v", got)
	}
}

func TestAdd_UpsertByIdentity(t *testing.T) {
	c := newTestCollection(t)
	addArticle(t, c, "d1", "first title", 2020)
	if err := c.Commit(); err != nil {
		t.Fatal(err)
	}
	addArticle(t, c, "d1", "second title", 2021)
	if err := c.Commit(); err != nil {
		t.Fatal(err)
	}

	req, err := request.New(c.Name(), query.MatchAll{}, 10, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Search(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalHits() != 1 {
		t.Fatalf("total = %d, want 1", res.TotalHits())
	}
	if got := res.Hits()[0].Fields()["title"].Text(); got != "second title" {
		t.Errorf("title = %q, want replacement", got)
	}
	if got := res.Hits()[0].Fields()["year"].Integer(); got != 2021 {
		t.Errorf("year = %d, want 2021", got)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	c := newTestCollection(t)
	addArticle(t, c, "d1", "to remove", 2020)
	if err := c.Commit(); err != nil {
		t.Fatal(err)
	}

	if err := c.Delete("d1"); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete("never-existed"); err != nil {
		t.Fatalf("deleting absent document must not fail: %v", err)
	}
	if err := c.Commit(); err != nil {
		t.Fatal(err)
	}

	if got := searchAll(t, c, query.MatchAll{}, 10); len(got) != 0 {
		t.Fatalf("document survived delete: %v", got)
	}
}

func TestDelete_EmptyID(t *testing.T) {
	c := newTestCollection(t)
	if err := c.Delete(""); !errors.Is(err, domain.ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestSearch_RangeBoundaries(t *testing.T) {
	c := newTestCollection(t)
	addArticle(t, c, "y2", "a", 2)
	addArticle(t, c, "y3", "b", 3)
	addArticle(t, c, "y4", "c", 4)
	if err := c.Commit(); err != nil {
		t.Fatal(err)
	}

	min := document.Integer(2)
	max := document.Integer(4)

	got := searchAll(t, c, query.Range{Field: "year", Min: &min, Max: &max, Inclusive: true}, 10)
	if len(got) != 3 {
		t.Errorf("inclusive range: %d hits, want 3", len(got))
	}

	got = searchAll(t, c, query.Range{Field: "year", Min: &min, Max: &max, Inclusive: false}, 10)
	if len(got) != 1 || got[0] != "y3" {
		t.Errorf("exclusive range: %v, want [y3]", got)
	}
}

func TestSearch_SortByField(t *testing.T) {
	c := newTestCollection(t)
	addArticle(t, c, "d1", "x", 2023)
	addArticle(t, c, "d2", "x", 2021)
	addArticle(t, c, "d3", "x", 2022)
	if err := c.Commit(); err != nil {
		t.Fatal(err)
	}

	asc, err := request.NewSortField("year", request.OrderAsc)
	if err != nil {
		t.Fatal(err)
	}
	req, err := request.New(c.Name(), query.MatchAll{}, 10, 0, []request.SortField{asc})
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Search(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, h := range res.Hits() {
		ids = append(ids, h.ID())
	}
	want := []string{"d2", "d3", "d1"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ascending order = %v, want %v", ids, want)
		}
	}

	desc, err := request.NewSortField("year", request.OrderDesc)
	if err != nil {
		t.Fatal(err)
	}
	req, err = request.New(c.Name(), query.MatchAll{}, 10, 0, []request.SortField{desc})
	if err != nil {
		t.Fatal(err)
	}
	res, err = c.Search(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Hits()[0].ID() != "d1" {
		t.Errorf("descending first hit = %s, want d1", res.Hits()[0].ID())
	}
}

func TestSearch_SortTieBreakByScore(t *testing.T) {
	c := newTestCollection(t)
	// Same sort key; the repeated term makes d-high score higher.
	addArticle(t, c, "d-high", "go go go go", 2020)
	addArticle(t, c, "d-low", "go", 2020)
	if err := c.Commit(); err != nil {
		t.Fatal(err)
	}

	asc, err := request.NewSortField("year", request.OrderAsc)
	if err != nil {
		t.Fatal(err)
	}
	req, err := request.New(c.Name(), query.FullText{Field: "title", Text: "go"}, 10, 0, []request.SortField{asc})
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Search(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Hits()) != 2 {
		t.Fatalf("hits = %d, want 2", len(res.Hits()))
	}
	if res.Hits()[0].ID() != "d-high" || res.Hits()[1].ID() != "d-low" {
		t.Errorf("tied sort key must order by descending score: got [%s %s]",
			res.Hits()[0].ID(), res.Hits()[1].ID())
	}
}

func TestSearch_SortUnknownField(t *testing.T) {
	c := newTestCollection(t)
	sf, err := request.NewSortField("nope", request.OrderAsc)
	if err != nil {
		t.Fatal(err)
	}
	req, err := request.New(c.Name(), query.MatchAll{}, 10, 0, []request.SortField{sf})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Search(context.Background(), req); !errors.Is(err, domain.ErrQuery) {
		t.Fatalf("expected ErrQuery, got %v", err)
	}
}

func TestSearch_Pagination(t *testing.T) {
	c := newTestCollection(t)
	for i := int64(0); i < 5; i++ {
		addArticle(t, c, string(rune('a'+i)), "x", 2000+i)
	}
	if err := c.Commit(); err != nil {
		t.Fatal(err)
	}

	asc, err := request.NewSortField("year", request.OrderAsc)
	if err != nil {
		t.Fatal(err)
	}
	req, err := request.New(c.Name(), query.MatchAll{}, 2, 2, []request.SortField{asc})
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Search(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalHits() != 5 {
		t.Errorf("total = %d, want 5 (exact count independent of page)", res.TotalHits())
	}
	if len(res.Hits()) != 2 {
		t.Fatalf("page size = %d, want 2", len(res.Hits()))
	}
	if res.Hits()[0].ID() != "c" {
		t.Errorf("first of page = %s, want c", res.Hits()[0].ID())
	}
}

func TestSearch_FullTextStemming(t *testing.T) {
	c := newTestCollection(t)
	doc, err := document.New("d1", map[string]document.Value{
		"title": document.Text("running shoes"),
		"body":  document.Text("running shoes"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Add(doc); err != nil {
		t.Fatal(err)
	}
	if err := c.Commit(); err != nil {
		t.Fatal(err)
	}

	// The body field stems, so "run" matches "running".
	got := searchAll(t, c, query.FullText{Field: "body", Text: "run"}, 10)
	if len(got) != 1 {
		t.Errorf("stemmed query: %v, want one hit", got)
	}
}

func TestOpen_Reload(t *testing.T) {
	dir := t.TempDir()
	c, err := Create(dir, testDefinition(t), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	addArticle(t, c, "d1", "persisted", 2020)
	if err := c.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reopened.Close()

	if reopened.Name() != "articles" {
		t.Errorf("name = %q", reopened.Name())
	}
	if got := searchAll(t, reopened, query.MatchAll{}, 10); len(got) != 1 || got[0] != "d1" {
		t.Fatalf("persisted document lost: %v", got)
	}
}

func TestStats(t *testing.T) {
	c := newTestCollection(t)
	addArticle(t, c, "d1", "a", 2020)
	addArticle(t, c, "d2", "b", 2021)

	// Staged but uncommitted operations do not count.
	stats, err := c.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.DocumentCount != 0 {
		t.Errorf("pre-commit count = %d, want 0", stats.DocumentCount)
	}

	if err := c.Commit(); err != nil {
		t.Fatal(err)
	}
	stats, err = c.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.DocumentCount != 2 {
		t.Errorf("count = %d, want 2", stats.DocumentCount)
	}
	if stats.IndexSizeBytes <= 0 {
		t.Errorf("size = %d, want > 0", stats.IndexSizeBytes)
	}
	if stats.CreatedAt.IsZero() || stats.UpdatedAt.Before(stats.CreatedAt) {
		t.Errorf("timestamps: created=%v updated=%v", stats.CreatedAt, stats.UpdatedAt)
	}
	if stats.Name != "articles" {
		t.Errorf("name = %q", stats.Name)
	}
}

func TestSearch_TookReported(t *testing.T) {
	c := newTestCollection(t)
	addArticle(t, c, "d1", "a", 2020)
	if err := c.Commit(); err != nil {
		t.Fatal(err)
	}

	req, err := request.New(c.Name(), query.MatchAll{}, 10, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Search(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.TookMillis() < 0 {
		t.Errorf("took = %d", res.TookMillis())
	}
	if res.Hits()[0].Score() <= 0 {
		t.Errorf("score = %v, want > 0", res.Hits()[0].Score())
	}
}
