package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
)

// Client is a read-only Qdrant search client. Collections are created and
// populated by the external ingestion pipeline.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Search(
	ctx context.Context,
	collection string,
	vector []float32,
	limit int,
	scoreThreshold float64,
) ([]domain.RetrievalRecord, error) {
	reqBody := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
		"filter": map[string]any{
			"must_not": []map[string]any{
				{
					"key": "isDeleted",
					"match": map[string]any{
						"value": true,
					},
				},
			},
		},
	}
	if scoreThreshold > 0 {
		reqBody["score_threshold"] = scoreThreshold
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("qdrant search status: %s: %w", resp.Status, domain.ErrBackendUnavailable)
	}

	var searchResp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]domain.RetrievalRecord, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.RetrievalRecord{
			RefID:      getStringPayload(r.Payload, "ref_id"),
			NativeID:   fmt.Sprintf("%v", r.ID),
			Name:       getStringPayload(r.Payload, "name"),
			Text:       getStringPayload(r.Payload, "text"),
			Score:      r.Score,
			Collection: collection,
		})
	}
	return out, nil
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
