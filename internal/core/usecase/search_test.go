package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}

type fakeDenseIndex struct {
	hits []domain.RetrievalRecord
	err  error
}

func (f *fakeDenseIndex) Search(ctx context.Context, collection string, vector []float32, limit int, scoreThreshold float64) ([]domain.RetrievalRecord, error) {
	return f.hits, f.err
}

type fakeLexicalIndex struct {
	hits      []domain.RetrievalRecord
	err       error
	lastQuery string
	fields    []string
}

func (f *fakeLexicalIndex) Search(ctx context.Context, collection, query string, fields []string, limit int) ([]domain.RetrievalRecord, error) {
	f.lastQuery = query
	f.fields = fields
	return f.hits, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(embedder *fakeEmbedder, dense *fakeDenseIndex, lexical *fakeLexicalIndex) *HybridSearchEngine {
	fields := map[string][]string{
		"hospitals_docs": {"nameAr^4", "nameEn^3", "text^2"},
	}
	return NewHybridSearchEngine(embedder, dense, lexical, fields, time.Second, time.Second, testLogger())
}

func TestHybridSearchFusesBothBranches(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	dense := &fakeDenseIndex{hits: []domain.RetrievalRecord{{RefID: "h-1", Score: 0.9}}}
	lexical := &fakeLexicalIndex{hits: []domain.RetrievalRecord{{RefID: "h-1", Score: 10}}}

	engine := newTestEngine(embedder, dense, lexical)
	records, err := engine.Search(context.Background(), "Al Salam hospital", "hospitals_docs", 5, 0.4)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 fused record, got %d", len(records))
	}
	if records[0].Collection != "hospitals_docs" {
		t.Fatalf("expected collection tag, got %q", records[0].Collection)
	}
}

func TestHybridSearchLexicalGetsNormalizedQuery(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1}}
	lexical := &fakeLexicalIndex{}

	engine := newTestEngine(embedder, &fakeDenseIndex{}, lexical)
	if _, err := engine.Search(context.Background(), "  Al   Salam مُستشفى ", "hospitals_docs", 5, 0); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if lexical.lastQuery != "al salam مستشفي" {
		t.Fatalf("lexical query = %q, want normalized form", lexical.lastQuery)
	}
	if len(lexical.fields) != 3 {
		t.Fatalf("expected configured field boosts, got %v", lexical.fields)
	}
}

func TestHybridSearchDenseFailureDegrades(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1}}
	dense := &fakeDenseIndex{err: errors.New("qdrant down")}
	lexical := &fakeLexicalIndex{hits: []domain.RetrievalRecord{{RefID: "h-1", Score: 2}}}

	engine := newTestEngine(embedder, dense, lexical)
	records, err := engine.Search(context.Background(), "question", "hospitals_docs", 5, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 1 || !records[0].MatchedBy(domain.MatchLexical) {
		t.Fatalf("expected lexical-only degradation, got %+v", records)
	}
}

func TestHybridSearchEmbedderFailureDegrades(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("ollama down")}
	lexical := &fakeLexicalIndex{hits: []domain.RetrievalRecord{{RefID: "h-1", Score: 2}}}

	engine := newTestEngine(embedder, &fakeDenseIndex{}, lexical)
	records, err := engine.Search(context.Background(), "question", "hospitals_docs", 5, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected lexical-only results, got %d", len(records))
	}
}

func TestHybridSearchBothBranchesFailYieldsEmpty(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("down")}
	lexical := &fakeLexicalIndex{err: errors.New("down")}

	engine := newTestEngine(embedder, &fakeDenseIndex{}, lexical)
	records, err := engine.Search(context.Background(), "question", "hospitals_docs", 5, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty results, got %d", len(records))
	}
}
