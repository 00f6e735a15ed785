package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
	"github.com/hazemfarouk/meddir-assistant/internal/core/ports"
	"github.com/hazemfarouk/meddir-assistant/internal/textnorm"
)

const (
	noInfoEnglish = "I couldn't find related information."
	noInfoArabic  = "لم أتمكن من العثور على معلومات ذات صلة."
)

// AnswerQuestionUseCase drives a question through routing, retrieval,
// resolution, enrichment and generation. Control flow is strictly sequential
// per question; only the retrieval engine parallelizes internally.
type AnswerQuestionUseCase struct {
	classifier ports.QueryClassifier
	search     *HybridSearchEngine
	resolver   *RelationshipResolver
	enricher   *EnrichmentLoop
	generator  ports.AnswerGenerator
	logger     *slog.Logger

	collections    map[domain.EntityKind]string
	searchLimit    int
	scoreThreshold float64
}

func NewAnswerQuestionUseCase(
	classifier ports.QueryClassifier,
	search *HybridSearchEngine,
	resolver *RelationshipResolver,
	enricher *EnrichmentLoop,
	generator ports.AnswerGenerator,
	collections map[domain.EntityKind]string,
	searchLimit int,
	scoreThreshold float64,
	logger *slog.Logger,
) *AnswerQuestionUseCase {
	if searchLimit <= 0 {
		searchLimit = 5
	}
	return &AnswerQuestionUseCase{
		classifier:     classifier,
		search:         search,
		resolver:       resolver,
		enricher:       enricher,
		generator:      generator,
		collections:    collections,
		searchLimit:    searchLimit,
		scoreThreshold: scoreThreshold,
		logger:         logger,
	}
}

func (uc *AnswerQuestionUseCase) Answer(ctx context.Context, question, language string) (*domain.GroundedAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer question", fmt.Errorf("empty question"))
	}
	if language == "" {
		language = "en"
		if textnorm.IsArabic(question) {
			language = "ar"
		}
	}

	// Routing is the one essential oracle call: a transport failure here is
	// fatal to the question and retryable by the caller. Non-conforming
	// output is already downgraded to the default route by the adapter.
	route, err := uc.classifier.Classify(ctx, question)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "classify question", err)
	}
	uc.logger.Info("question routed",
		"operation", string(route.Operation),
		"entity", string(route.Entity),
		"query_type", string(route.Params.QueryType))

	var records []domain.RetrievalRecord
	if route.Operation != domain.OpDirectStructured {
		records, err = uc.search.Search(ctx, question, uc.collectionFor(route.Entity), uc.searchLimit, uc.scoreThreshold)
		if err != nil {
			uc.logger.Warn("retrieval degraded", "error", err)
			records = nil
		}
	}

	var blocks []string
	if route.Operation != domain.OpSemantic {
		blocks, err = uc.resolver.Resolve(ctx, route.Params)
		if err != nil {
			uc.logger.Warn("resolution degraded", "error", err)
			blocks = nil
		}
	}

	source := domain.SourceStructured
	if len(blocks) == 0 && len(records) > 0 {
		refined := uc.enricher.Enrich(ctx, question, records, route)
		if !reflect.DeepEqual(refined.Params, route.Params) {
			route = refined
			enrichedBlocks, rerr := uc.resolver.Resolve(ctx, route.Params)
			if rerr != nil {
				uc.logger.Warn("enriched resolution degraded", "error", rerr)
			} else if len(enrichedBlocks) > 0 {
				blocks = enrichedBlocks
				source = domain.SourceEnrichment
			}
		}
	}

	contextText := assembleContext(blocks, records)
	if len(blocks) == 0 {
		if len(records) > 0 {
			source = domain.SourceSnippets
		} else {
			source = domain.SourceNone
		}
	}

	if contextText == "" {
		// Never call the generator with nothing to ground on.
		return &domain.GroundedAnswer{
			Text:          noInfoAnswer(language),
			ContextSource: domain.SourceNone,
			Route:         route,
		}, nil
	}

	answer, err := uc.generator.GenerateAnswer(ctx, question, contextText, language)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "generate answer", err)
	}

	return &domain.GroundedAnswer{
		Text:          answer,
		ContextSource: source,
		Records:       records,
		Route:         route,
	}, nil
}

func (uc *AnswerQuestionUseCase) collectionFor(entity domain.EntityKind) string {
	if name, ok := uc.collections[entity]; ok {
		return name
	}
	return uc.collections[domain.EntityHospitals]
}

// assembleContext builds the grounding text with strict priority: structured
// blocks when present, raw snippets otherwise. The count directive tells the
// generator to enumerate rather than summarize.
func assembleContext(blocks []string, records []domain.RetrievalRecord) string {
	if len(blocks) > 0 {
		header := fmt.Sprintf("[TOTAL RESULTS: %d - You MUST list all %d items]\n\n", len(blocks), len(blocks))
		return header + strings.Join(blocks, "\n---\n")
	}

	snippets := make([]string, 0, len(records))
	for _, rec := range records {
		if text := rec.Snippet(); text != "" {
			snippets = append(snippets, fmt.Sprintf("[Source: %s] %s", rec.Collection, text))
		}
	}
	if len(snippets) == 0 {
		return ""
	}
	return "=== MEDICAL INFO ===\n" + strings.Join(snippets, "\n---\n")
}

func noInfoAnswer(language string) string {
	if language == "ar" {
		return noInfoArabic
	}
	return noInfoEnglish
}
