package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
	"github.com/hazemfarouk/meddir-assistant/internal/core/ports"
	"github.com/hazemfarouk/meddir-assistant/internal/textnorm"
)

// HybridSearchEngine runs the dense and lexical branches concurrently and
// fuses their results. A branch that fails or times out degrades to empty;
// both branches empty is not an error, callers treat it as no context.
type HybridSearchEngine struct {
	embedder ports.Embedder
	dense    ports.DenseIndex
	lexical  ports.LexicalIndex
	fields   map[string][]string
	logger   *slog.Logger

	denseTimeout   time.Duration
	lexicalTimeout time.Duration
}

func NewHybridSearchEngine(
	embedder ports.Embedder,
	dense ports.DenseIndex,
	lexical ports.LexicalIndex,
	fields map[string][]string,
	denseTimeout time.Duration,
	lexicalTimeout time.Duration,
	logger *slog.Logger,
) *HybridSearchEngine {
	if denseTimeout <= 0 {
		denseTimeout = 5 * time.Second
	}
	if lexicalTimeout <= 0 {
		lexicalTimeout = 3 * time.Second
	}
	return &HybridSearchEngine{
		embedder:       embedder,
		dense:          dense,
		lexical:        lexical,
		fields:         fields,
		logger:         logger,
		denseTimeout:   denseTimeout,
		lexicalTimeout: lexicalTimeout,
	}
}

// Search retrieves from one collection. The lexical branch gets the
// normalized query, the dense branch the raw question text.
func (e *HybridSearchEngine) Search(
	ctx context.Context,
	query string,
	collection string,
	limit int,
	scoreThreshold float64,
) ([]domain.RetrievalRecord, error) {
	if limit <= 0 {
		limit = 5
	}

	var (
		wg          sync.WaitGroup
		denseHits   []domain.RetrievalRecord
		lexicalHits []domain.RetrievalRecord
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		dctx, cancel := context.WithTimeout(ctx, e.denseTimeout)
		defer cancel()

		vector, err := e.embedder.EmbedQuery(dctx, query)
		if err != nil {
			e.logger.Warn("dense branch degraded", "collection", collection, "stage", "embed", "error", err)
			return
		}
		hits, err := e.dense.Search(dctx, collection, vector, limit, scoreThreshold)
		if err != nil {
			e.logger.Warn("dense branch degraded", "collection", collection, "stage", "search", "error", err)
			return
		}
		denseHits = hits
	}()

	go func() {
		defer wg.Done()
		lctx, cancel := context.WithTimeout(ctx, e.lexicalTimeout)
		defer cancel()

		hits, err := e.lexical.Search(lctx, collection, textnorm.Normalize(query), e.fields[collection], limit)
		if err != nil {
			e.logger.Warn("lexical branch degraded", "collection", collection, "error", err)
			return
		}
		lexicalHits = hits
	}()

	wg.Wait()

	fused := fuseRecords(lexicalHits, denseHits, limit)
	for i := range fused {
		fused[i].Collection = collection
	}
	return fused, nil
}
