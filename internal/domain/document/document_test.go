package document

import (
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/textdex/internal/domain/schema"
)

func TestNew_Valid(t *testing.T) {
	doc, err := New("doc:1.a-b_c", map[string]Value{"title": Text("hello")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != "doc:1.a-b_c" {
		t.Errorf("unexpected id %q", doc.ID())
	}
	if doc.Fields()["title"].Text() != "hello" {
		t.Error("field lost")
	}
}

func TestNew_InvalidID(t *testing.T) {
	cases := []string{"", "has space", "bad/slash", strings.Repeat("x", 257)}
	for _, id := range cases {
		if _, err := New(id, nil); err == nil {
			t.Errorf("expected error for id %q", id)
		}
	}
}

func TestNew_ClonesFields(t *testing.T) {
	fields := map[string]Value{"n": Integer(1)}
	doc, err := New("d1", fields)
	if err != nil {
		t.Fatal(err)
	}
	fields["n"] = Integer(2)
	if doc.Fields()["n"].Integer() != 1 {
		t.Error("document fields alias caller map")
	}
}

func TestValue_Matches(t *testing.T) {
	cases := []struct {
		value Value
		kind  schema.Kind
		want  bool
	}{
		{Text("x"), schema.KindText, true},
		{Text("x"), schema.KindInteger, false},
		{Integer(1), schema.KindInteger, true},
		{Integer(1), schema.KindFloat, false},
		{Float(1.5), schema.KindFloat, true},
		{Date(time.Now()), schema.KindDate, true},
		{Facet("/a/b"), schema.KindFacet, true},
		{Bytes([]byte{1}), schema.KindBytes, true},
		{Bytes([]byte{1}), schema.KindText, false},
	}
	for _, tc := range cases {
		if got := tc.value.Matches(tc.kind); got != tc.want {
			t.Errorf("%s.Matches(%s) = %v, want %v", tc.value, tc.kind, got, tc.want)
		}
	}
}

func TestDate_NormalizesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	v := Date(time.Date(2024, 6, 1, 15, 0, 0, 0, loc))
	if v.Date().Location() != time.UTC {
		t.Error("date not normalized to UTC")
	}
	if v.Date().Hour() != 12 {
		t.Errorf("expected 12h UTC, got %d", v.Date().Hour())
	}
}

func TestBytes_Cloned(t *testing.T) {
	raw := []byte{1, 2, 3}
	v := Bytes(raw)
	raw[0] = 9
	if v.Bytes()[0] != 1 {
		t.Error("bytes value aliases caller slice")
	}
}
