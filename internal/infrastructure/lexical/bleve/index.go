package bleve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	blevesearch "github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/search/query"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
)

// Index is a multi-collection keyword index. Each collection is its own bleve
// index; documents are flat field maps written by the ingestion side.
type Index struct {
	indexes map[string]blevesearch.Index
}

// Open opens (or creates) one persisted bleve index per collection under path.
func Open(path string, collections []string) (*Index, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	indexes := make(map[string]blevesearch.Index, len(collections))
	for _, collection := range collections {
		indexPath := filepath.Join(path, collection)
		idx, err := blevesearch.Open(indexPath)
		if err == blevesearch.ErrorIndexPathDoesNotExist {
			idx, err = blevesearch.New(indexPath, blevesearch.NewIndexMapping())
		}
		if err != nil {
			return nil, fmt.Errorf("open index %s: %w", collection, err)
		}
		indexes[collection] = idx
	}
	return &Index{indexes: indexes}, nil
}

// NewInMemory builds throwaway indexes, used by tests and local runs.
func NewInMemory(collections []string) (*Index, error) {
	indexes := make(map[string]blevesearch.Index, len(collections))
	for _, collection := range collections {
		idx, err := blevesearch.NewMemOnly(blevesearch.NewIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index %s: %w", collection, err)
		}
		indexes[collection] = idx
	}
	return &Index{indexes: indexes}, nil
}

func (x *Index) Close() error {
	var firstErr error
	for collection, idx := range x.indexes {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close index %s: %w", collection, err)
		}
	}
	return firstErr
}

// IndexDocument stores one document under id in the collection's index.
func (x *Index) IndexDocument(collection, id string, doc map[string]any) error {
	idx, ok := x.indexes[collection]
	if !ok {
		return fmt.Errorf("unknown collection %q", collection)
	}
	if err := idx.Index(id, doc); err != nil {
		return fmt.Errorf("index document %s: %w", id, err)
	}
	return nil
}

// Search runs a boosted per-field disjunction match. Fields use the
// "name^boost" form; a field without a boost defaults to 1.
func (x *Index) Search(ctx context.Context, collection, queryText string, fields []string, limit int) ([]domain.RetrievalRecord, error) {
	idx, ok := x.indexes[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		return nil, nil
	}

	var q query.Query
	if len(fields) == 0 {
		q = blevesearch.NewMatchQuery(queryText)
	} else {
		disjuncts := make([]query.Query, 0, len(fields))
		for _, field := range fields {
			name, boost := parseBoostedField(field)
			match := blevesearch.NewMatchQuery(queryText)
			match.SetField(name)
			match.SetBoost(boost)
			disjuncts = append(disjuncts, match)
		}
		q = query.NewDisjunctionQuery(disjuncts)
	}

	req := blevesearch.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"ref_id", "name", "text"}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("lexical search %s: %w", collection, err)
	}

	out := make([]domain.RetrievalRecord, 0, len(res.Hits))
	for _, hit := range res.Hits {
		out = append(out, domain.RetrievalRecord{
			RefID:      fieldString(hit.Fields, "ref_id"),
			NativeID:   hit.ID,
			Name:       fieldString(hit.Fields, "name"),
			Text:       fieldString(hit.Fields, "text"),
			Score:      hit.Score,
			Collection: collection,
		})
	}
	return out, nil
}

func parseBoostedField(field string) (string, float64) {
	name, raw, found := strings.Cut(field, "^")
	if !found {
		return field, 1
	}
	boost, err := strconv.ParseFloat(raw, 64)
	if err != nil || boost <= 0 {
		return name, 1
	}
	return name, boost
}

func fieldString(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
