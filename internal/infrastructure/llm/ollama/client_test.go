package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// generateServer answers /api/generate with the given response text.
func generateServer(t *testing.T, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"response": response})
	}))
}

func TestClassifyParsesRoute(t *testing.T) {
	server := generateServer(t, `{"operation":"direct_structured","entity":"relationships","params":{"query_type":"doctorsAtHospital","hospital_name":"Alpha Hospital"}}`)
	defer server.Close()

	router := NewRouter(New(server.URL, "qwen3", "nomic-embed-text", 0, nil), testLogger())
	route, err := router.Classify(context.Background(), "who works at alpha hospital?")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if route.Operation != domain.OpDirectStructured || route.Entity != domain.EntityRelationships {
		t.Fatalf("unexpected route %+v", route)
	}
	if route.Params.QueryType != domain.QueryDoctorsAtHospital || route.Params.HospitalName != "Alpha Hospital" {
		t.Fatalf("unexpected params %+v", route.Params)
	}
}

func TestClassifyMalformedOutputFallsBack(t *testing.T) {
	server := generateServer(t, `certainly! here is some prose instead of JSON`)
	defer server.Close()

	router := NewRouter(New(server.URL, "qwen3", "nomic-embed-text", 0, nil), testLogger())
	route, err := router.Classify(context.Background(), "anything")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if route != domain.DefaultRoute() {
		t.Fatalf("expected default route, got %+v", route)
	}
}

func TestClassifyUnknownOperationFallsBack(t *testing.T) {
	server := generateServer(t, `{"operation":"telepathy","entity":"doctors","params":{}}`)
	defer server.Close()

	router := NewRouter(New(server.URL, "qwen3", "nomic-embed-text", 0, nil), testLogger())
	route, err := router.Classify(context.Background(), "anything")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if route != domain.DefaultRoute() {
		t.Fatalf("expected default route, got %+v", route)
	}
}

func TestClassifyTransportFailureIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	router := NewRouter(New(server.URL, "qwen3", "nomic-embed-text", 0, nil), testLogger())
	_, err := router.Classify(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error kind, got %v", err)
	}
}

func TestExtractFiltersEmptyCandidates(t *testing.T) {
	server := generateServer(t, `{"candidates":[{"kind":"hospitals","value":"Alpha Hospital","original":"alpha"},{"kind":"doctors","value":"  "}]}`)
	defer server.Close()

	extractor := NewExtractor(New(server.URL, "qwen3", "nomic-embed-text", 0, nil))
	candidates, err := extractor.Extract(context.Background(), "q", []string{"snippet"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Value != "Alpha Hospital" {
		t.Fatalf("unexpected candidates %+v", candidates)
	}
}

func TestExtractMalformedOutput(t *testing.T) {
	server := generateServer(t, `[[[`)
	defer server.Close()

	extractor := NewExtractor(New(server.URL, "qwen3", "nomic-embed-text", 0, nil))
	_, err := extractor.Extract(context.Background(), "q", []string{"snippet"})
	if !errors.Is(err, domain.ErrMalformedOracle) {
		t.Fatalf("expected malformed oracle error, got %v", err)
	}
}

func TestValidateMalformedOutputIsNonMatch(t *testing.T) {
	server := generateServer(t, `sure, looks right to me`)
	defer server.Close()

	validator := NewValidator(New(server.URL, "qwen3", "nomic-embed-text", 0, nil), testLogger())
	match, err := validator.Validate(context.Background(), "q", domain.EntityCandidate{Kind: domain.EntityHospitals, Value: "Alpha"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if match {
		t.Fatal("expected non-match on malformed output")
	}
}

func TestGenerateAnswerPassesLanguage(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		prompt, _ = req["prompt"].(string)
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "إجابة"})
	}))
	defer server.Close()

	generator := NewGenerator(New(server.URL, "qwen3", "nomic-embed-text", 0, nil))
	answer, err := generator.GenerateAnswer(context.Background(), "سؤال", "context", "ar")
	if err != nil {
		t.Fatalf("generate answer: %v", err)
	}
	if answer != "إجابة" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if want := "Answer in Arabic."; !strings.Contains(prompt, want) {
		t.Fatalf("expected %q in prompt", want)
	}
}

func TestEmbedQueryReturnsFirstVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{{0.1, 0.2, 0.3}}})
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "qwen3", "nomic-embed-text", 0, nil))
	vector, err := embedder.EmbedQuery(context.Background(), "alpha hospital")
	if err != nil {
		t.Fatalf("embed query: %v", err)
	}
	if len(vector) != 3 || vector[0] != 0.1 {
		t.Fatalf("unexpected vector %v", vector)
	}
}
