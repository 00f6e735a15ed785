package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
	"github.com/hazemfarouk/meddir-assistant/internal/core/ports"
)

const snippetLimit = 3

// EnrichmentLoop mines retrieval snippets for entity names the router missed.
// Candidates come from the extraction oracle and are individually validated
// against the original question before being folded into the route's filter
// bag. Only empty filter fields are filled, so enrichment can narrow a route
// but never widen or override it, and a second application is a no-op.
type EnrichmentLoop struct {
	extractor ports.EntityExtractor
	validator ports.MatchValidator
	logger    *slog.Logger
}

func NewEnrichmentLoop(extractor ports.EntityExtractor, validator ports.MatchValidator, logger *slog.Logger) *EnrichmentLoop {
	return &EnrichmentLoop{
		extractor: extractor,
		validator: validator,
		logger:    logger,
	}
}

// Enrich returns a refined copy of the route. Oracle failures leave the route
// untouched.
func (l *EnrichmentLoop) Enrich(ctx context.Context, question string, records []domain.RetrievalRecord, route domain.RouteDecision) domain.RouteDecision {
	snippets := topSnippets(records, snippetLimit)
	if len(snippets) == 0 {
		return route
	}

	candidates, err := l.extractor.Extract(ctx, question, snippets)
	if err != nil {
		l.logger.Warn("entity extraction degraded", "error", err)
		return route
	}

	for _, candidate := range candidates {
		if candidate.Value == "" {
			continue
		}
		ok, err := l.validator.Validate(ctx, question, candidate)
		if err != nil {
			l.logger.Warn("candidate validation degraded", "kind", string(candidate.Kind), "error", err)
			continue
		}
		if !ok {
			continue
		}
		route.Params = foldCandidate(route.Params, candidate)
	}
	return route
}

// foldCandidate fills exactly the empty field matching the candidate's kind.
func foldCandidate(params domain.FilterBag, candidate domain.EntityCandidate) domain.FilterBag {
	switch candidate.Kind {
	case domain.EntityHospitals:
		if params.HospitalName == "" {
			params.HospitalName = candidate.Value
		}
	case domain.EntityDoctors:
		if params.DoctorName == "" {
			params.DoctorName = candidate.Value
		}
	case domain.EntitySpecialties:
		if params.SpecialtyName == "" {
			params.SpecialtyName = candidate.Value
		}
	}
	return params
}

// topSnippets renders the highest-ranked records as source-tagged snippet
// lines for the extraction prompt.
func topSnippets(records []domain.RetrievalRecord, limit int) []string {
	snippets := make([]string, 0, limit)
	for _, rec := range records {
		text := rec.Snippet()
		if text == "" {
			continue
		}
		snippets = append(snippets, fmt.Sprintf("[Source: %s] %s", rec.Collection, text))
		if len(snippets) == limit {
			break
		}
	}
	return snippets
}
