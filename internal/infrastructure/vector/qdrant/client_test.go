package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchBuildsRequestAndMapsRecords(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/hospitals_docs/points/search" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{
					"id":    "point-1",
					"score": 0.92,
					"payload": map[string]any{
						"ref_id": "hosp-1",
						"name":   "Alpha Hospital",
						"text":   "Alpha Hospital, Giza, general hospital",
					},
				},
				{
					"id":      12345,
					"score":   0.55,
					"payload": map[string]any{"text": "orphan snippet"},
				},
			},
		})
	}))
	defer server.Close()

	client := New(server.URL)
	records, err := client.Search(context.Background(), "hospitals_docs", []float32{0.1, 0.2}, 5, 0.4)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if captured["score_threshold"] != 0.4 {
		t.Fatalf("expected score_threshold 0.4, got %v", captured["score_threshold"])
	}
	if captured["limit"] != float64(5) {
		t.Fatalf("expected limit 5, got %v", captured["limit"])
	}
	filter, _ := captured["filter"].(map[string]any)
	if filter == nil || filter["must_not"] == nil {
		t.Fatalf("expected isDeleted must_not filter, got %v", captured["filter"])
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].RefID != "hosp-1" || records[0].Name != "Alpha Hospital" || records[0].Score != 0.92 {
		t.Fatalf("unexpected first record %+v", records[0])
	}
	if records[0].Collection != "hospitals_docs" {
		t.Fatalf("expected collection tag, got %q", records[0].Collection)
	}
	if records[1].RefID != "" || records[1].NativeID != "12345" {
		t.Fatalf("expected native id fallback, got %+v", records[1])
	}
}

func TestSearchBackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Search(context.Background(), "hospitals_docs", []float32{0.1}, 5, 0)
	if err == nil {
		t.Fatal("expected error on 503")
	}
}
