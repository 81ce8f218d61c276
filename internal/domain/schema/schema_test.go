package schema

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/textdex/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	f, err := New("title", KindText, Options{Stored: true, Indexed: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Name() != "title" || f.Kind() != KindText {
		t.Errorf("unexpected field: %s %s", f.Name(), f.Kind())
	}
	if f.Tokenizer() != TokenizerDefault {
		t.Errorf("expected default tokenizer, got %q", f.Tokenizer())
	}
}

func TestNew_InvalidName(t *testing.T) {
	cases := []string{"", "has space", "has.dot", "_id", string(make([]byte, 65))}
	for _, name := range cases {
		if _, err := New(name, KindText, Options{Indexed: true}); err == nil {
			t.Errorf("expected error for name %q", name)
		}
	}
}

func TestNew_InvalidKind(t *testing.T) {
	_, err := New("f", Kind("blob"), Options{})
	if !errors.Is(err, domain.ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestNew_FacetForcesIndexedOnly(t *testing.T) {
	f, err := New("category", KindFacet, Options{Stored: true, Fast: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Stored() || f.Fast() {
		t.Error("facet must not be stored or fast")
	}
	if !f.Indexed() {
		t.Error("facet must be indexed")
	}
}

func TestNewDefinition_Valid(t *testing.T) {
	title := mustField(t, "title", KindText, Options{Stored: true, Indexed: true})
	year := mustField(t, "year", KindInteger, Options{Indexed: true, Fast: true})

	def, err := NewDefinition("articles", []Field{title, year}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Name() != "articles" {
		t.Errorf("unexpected name %q", def.Name())
	}
	if _, ok := def.FieldByName("year"); !ok {
		t.Error("expected to find field year")
	}
	if _, ok := def.FieldByName("missing"); ok {
		t.Error("did not expect to find field missing")
	}
}

func TestNewDefinition_DuplicateField(t *testing.T) {
	f1 := mustField(t, "title", KindText, Options{Indexed: true})
	f2 := mustField(t, "title", KindText, Options{Indexed: true})

	_, err := NewDefinition("articles", []Field{f1, f2}, "")
	if !errors.Is(err, domain.ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestNewDefinition_PrimaryKey(t *testing.T) {
	sku := mustField(t, "sku", KindText, Options{Indexed: true, Tokenizer: TokenizerKeyword})

	if _, err := NewDefinition("products", []Field{sku}, "sku"); err != nil {
		t.Errorf("declared primary key rejected: %v", err)
	}
	if _, err := NewDefinition("products", []Field{sku}, IdentityField); err != nil {
		t.Errorf("identity primary key rejected: %v", err)
	}
	if _, err := NewDefinition("products", []Field{sku}, "missing"); err == nil {
		t.Error("expected error for undeclared primary key")
	}
}

func mustField(t *testing.T, name string, kind Kind, opts Options) Field {
	t.Helper()
	f, err := New(name, kind, opts)
	if err != nil {
		t.Fatalf("build field %q: %v", name, err)
	}
	return f
}
