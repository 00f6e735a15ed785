package bleve

import (
	"context"
	"testing"
)

func seedIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewInMemory([]string{"hospitals_docs", "doctors_docs"})
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })

	docs := map[string]map[string]any{
		"h1": {
			"ref_id": "hosp-1",
			"name":   "Alpha Hospital",
			"text":   "Alpha Hospital general hospital in Giza",
		},
		"h2": {
			"ref_id": "hosp-2",
			"name":   "Beta Clinic",
			"text":   "Beta Clinic dermatology center in Cairo",
		},
	}
	for id, doc := range docs {
		if err := idx.IndexDocument("hospitals_docs", id, doc); err != nil {
			t.Fatalf("index %s: %v", id, err)
		}
	}
	return idx
}

func TestSearchReturnsStoredFields(t *testing.T) {
	idx := seedIndex(t)

	records, err := idx.Search(context.Background(), "hospitals_docs", "alpha", []string{"name^3", "text"}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("expected at least one hit")
	}
	top := records[0]
	if top.RefID != "hosp-1" || top.Name != "Alpha Hospital" {
		t.Fatalf("unexpected top hit %+v", top)
	}
	if top.Collection != "hospitals_docs" {
		t.Fatalf("expected collection tag, got %q", top.Collection)
	}
	if top.Score <= 0 {
		t.Fatalf("expected positive score, got %f", top.Score)
	}
}

func TestSearchEmptyQueryShortCircuits(t *testing.T) {
	idx := seedIndex(t)

	records, err := idx.Search(context.Background(), "hospitals_docs", "   ", []string{"name"}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if records != nil {
		t.Fatalf("expected nil records, got %+v", records)
	}
}

func TestSearchUnknownCollection(t *testing.T) {
	idx := seedIndex(t)

	if _, err := idx.Search(context.Background(), "nope_docs", "alpha", nil, 5); err == nil {
		t.Fatal("expected unknown collection error")
	}
}

func TestParseBoostedField(t *testing.T) {
	cases := []struct {
		in    string
		name  string
		boost float64
	}{
		{"name^3", "name", 3},
		{"text", "text", 1},
		{"name^0", "name", 1},
		{"name^bad", "name", 1},
	}
	for _, tc := range cases {
		name, boost := parseBoostedField(tc.in)
		if name != tc.name || boost != tc.boost {
			t.Fatalf("parseBoostedField(%q) = %q,%f", tc.in, name, boost)
		}
	}
}
