package textdex

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/textdex/internal/domain"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(
		WithDataDir(t.TempDir()),
		WithAutoCommit(false),
	)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func createArticles(t *testing.T, client *Client) {
	t.Helper()
	def, err := NewSchema("articles").
		Text("title", true).
		TextWithTokenizer("body", false, TokenizerEnStem).
		Integer("year", true, true).
		Facet("category").
		Build()
	if err != nil {
		t.Fatal(err)
	}
	if err := client.CreateCollection(def); err != nil {
		t.Fatal(err)
	}
}

func TestSchemaBuilder_PropagatesError(t *testing.T) {
	_, err := NewSchema("bad").
		Text("_id", true).
		Integer("year", true, true).
		Build()
	if !errors.Is(err, domain.ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestClient_EndToEnd(t *testing.T) {
	client := newTestClient(t)
	createArticles(t, client)

	docs := map[string]map[string]Value{
		"a1": {
			"title":    Text("go concurrency patterns"),
			"body":     Text("channels and goroutines"),
			"year":     Integer(2021),
			"category": Facet("/tech/go"),
		},
		"a2": {
			"title":    Text("index structures"),
			"body":     Text("inverted indexes power search"),
			"year":     Integer(2023),
			"category": Facet("/tech/search"),
		},
	}
	for id, fields := range docs {
		if err := client.AddDocument("articles", id, fields); err != nil {
			t.Fatalf("add %q: %v", id, err)
		}
	}
	if err := client.Commit("articles"); err != nil {
		t.Fatal(err)
	}

	req, err := NewSearch("articles",
		NewBool().
			Must(FullText("body", "search")).
			Should(Term("category", Facet("/tech/search"))).
			Build(),
	).Limit(5).Build()
	if err != nil {
		t.Fatal(err)
	}
	res, err := client.Search(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalHits() != 1 || res.Hits()[0].ID() != "a2" {
		t.Fatalf("unexpected result: total=%d", res.TotalHits())
	}

	req, err = NewSearch("articles",
		Range("year", Integer(2020), Integer(2022), true),
	).SortDesc("year").Build()
	if err != nil {
		t.Fatal(err)
	}
	res, err = client.Search(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalHits() != 1 || res.Hits()[0].ID() != "a1" {
		t.Fatalf("range result: total=%d", res.TotalHits())
	}

	stats, err := client.Stats("articles")
	if err != nil {
		t.Fatal(err)
	}
	if stats.DocumentCount != 2 {
		t.Errorf("count = %d, want 2", stats.DocumentCount)
	}

	if got := client.ListCollections(); len(got) != 1 || got[0] != "articles" {
		t.Errorf("list = %v", got)
	}
	if h := client.Health(); h.Status != "healthy" {
		t.Errorf("health = %q", h.Status)
	}
}

func TestClient_AutoCommit(t *testing.T) {
	dir := t.TempDir()
	client, err := New(
		WithDataDir(dir),
		WithCommitInterval(20*time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()
	createArticles(t, client)

	err = client.AddDocument("articles", "a1", map[string]Value{
		"title": Text("auto committed"),
		"year":  Integer(2024),
	})
	if err != nil {
		t.Fatal(err)
	}

	req, err := NewSearch("articles", MatchAll()).Build()
	if err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		res, err := client.Search(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if res.TotalHits() == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("document never became visible via auto-commit")
}

func TestClient_ReopenExisting(t *testing.T) {
	dir := t.TempDir()
	client, err := New(WithDataDir(dir), WithAutoCommit(false))
	if err != nil {
		t.Fatal(err)
	}
	createArticles(t, client)
	err = client.AddDocument("articles", "a1", map[string]Value{
		"title": Text("persisted"),
		"year":  Integer(2020),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := New(WithDataDir(dir), WithAutoCommit(false))
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	stats, err := reopened.Stats("articles")
	if err != nil {
		t.Fatal(err)
	}
	if stats.DocumentCount != 1 {
		t.Errorf("count = %d, want 1 after close flush", stats.DocumentCount)
	}
}

func TestClient_DateQueries(t *testing.T) {
	client := newTestClient(t)
	def, err := NewSchema("events").
		Text("name", true).
		Date("at", true, true).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	if err := client.CreateCollection(def); err != nil {
		t.Fatal(err)
	}

	for id, day := range map[string]int{"e1": 1, "e2": 15, "e3": 28} {
		err := client.AddDocument("events", id, map[string]Value{
			"name": Text("event"),
			"at":   DateOf(2024, time.June, day),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := client.Commit("events"); err != nil {
		t.Fatal(err)
	}

	req, err := NewSearch("events",
		Range("at", DateOf(2024, time.June, 10), DateOf(2024, time.June, 20), true),
	).Build()
	if err != nil {
		t.Fatal(err)
	}
	res, err := client.Search(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalHits() != 1 || res.Hits()[0].ID() != "e2" {
		t.Fatalf("date range: total=%d", res.TotalHits())
	}
}
