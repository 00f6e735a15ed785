package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
)

type fakeExtractor struct {
	candidates []domain.EntityCandidate
	err        error
	snippets   []string
}

func (f *fakeExtractor) Extract(ctx context.Context, question string, snippets []string) ([]domain.EntityCandidate, error) {
	f.snippets = snippets
	return f.candidates, f.err
}

type fakeValidator struct {
	verdicts map[string]bool
	err      error
}

func (f *fakeValidator) Validate(ctx context.Context, question string, candidate domain.EntityCandidate) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.verdicts[candidate.Value], nil
}

func semanticRoute(params domain.FilterBag) domain.RouteDecision {
	return domain.RouteDecision{Operation: domain.OpSemantic, Entity: domain.EntityHospitals, Params: params}
}

func TestEnrichFillsOnlyEmptyFields(t *testing.T) {
	extractor := &fakeExtractor{candidates: []domain.EntityCandidate{
		{Kind: domain.EntitySpecialties, Value: "Cardiology"},
		{Kind: domain.EntityHospitals, Value: "Intruder Hospital"},
	}}
	validator := &fakeValidator{verdicts: map[string]bool{"Cardiology": true, "Intruder Hospital": true}}
	loop := NewEnrichmentLoop(extractor, validator, testLogger())

	route := semanticRoute(domain.FilterBag{HospitalName: "Al Salam"})
	records := []domain.RetrievalRecord{{Collection: "specialties_docs", Text: "Cardiology department info"}}

	refined := loop.Enrich(context.Background(), "who treats heart disease at Al Salam?", records, route)
	if refined.Params.SpecialtyName != "Cardiology" {
		t.Fatalf("expected empty specialty filled, got %q", refined.Params.SpecialtyName)
	}
	if refined.Params.HospitalName != "Al Salam" {
		t.Fatalf("a present filter must never be overridden, got %q", refined.Params.HospitalName)
	}
}

func TestEnrichSkipsUnvalidatedCandidates(t *testing.T) {
	extractor := &fakeExtractor{candidates: []domain.EntityCandidate{
		{Kind: domain.EntityDoctors, Value: "Dr. Irrelevant"},
	}}
	validator := &fakeValidator{verdicts: map[string]bool{}}
	loop := NewEnrichmentLoop(extractor, validator, testLogger())

	route := semanticRoute(domain.FilterBag{})
	records := []domain.RetrievalRecord{{Collection: "doctors_docs", Text: "Dr. Irrelevant bio"}}

	refined := loop.Enrich(context.Background(), "any cardiologists?", records, route)
	if refined.Params.DoctorName != "" {
		t.Fatalf("unvalidated candidate must not be folded, got %q", refined.Params.DoctorName)
	}
}

func TestEnrichIdempotent(t *testing.T) {
	extractor := &fakeExtractor{candidates: []domain.EntityCandidate{
		{Kind: domain.EntitySpecialties, Value: "Cardiology"},
	}}
	validator := &fakeValidator{verdicts: map[string]bool{"Cardiology": true}}
	loop := NewEnrichmentLoop(extractor, validator, testLogger())

	records := []domain.RetrievalRecord{{Collection: "specialties_docs", Text: "Cardiology"}}
	question := "who treats heart disease?"

	once := loop.Enrich(context.Background(), question, records, semanticRoute(domain.FilterBag{}))
	twice := loop.Enrich(context.Background(), question, records, once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("enrichment must be idempotent: %+v vs %+v", once, twice)
	}
}

func TestEnrichSnippetTaggingAndCap(t *testing.T) {
	extractor := &fakeExtractor{}
	loop := NewEnrichmentLoop(extractor, &fakeValidator{}, testLogger())

	records := []domain.RetrievalRecord{
		{Collection: "hospitals_docs", Text: "one"},
		{Collection: "hospitals_docs", Name: "two"},
		{Collection: "doctors_docs", Text: "three"},
		{Collection: "doctors_docs", Text: "four"},
	}
	loop.Enrich(context.Background(), "q", records, semanticRoute(domain.FilterBag{}))

	if len(extractor.snippets) != 3 {
		t.Fatalf("expected snippet cap of 3, got %d", len(extractor.snippets))
	}
	if extractor.snippets[0] != "[Source: hospitals_docs] one" {
		t.Fatalf("unexpected snippet tag: %q", extractor.snippets[0])
	}
	if extractor.snippets[1] != "[Source: hospitals_docs] two" {
		t.Fatalf("name fallback expected, got %q", extractor.snippets[1])
	}
}

func TestEnrichExtractionFailureLeavesRouteUntouched(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("oracle down")}
	loop := NewEnrichmentLoop(extractor, &fakeValidator{}, testLogger())

	route := semanticRoute(domain.FilterBag{HospitalName: "Al Salam"})
	records := []domain.RetrievalRecord{{Collection: "hospitals_docs", Text: "snippet"}}

	refined := loop.Enrich(context.Background(), "q", records, route)
	if !reflect.DeepEqual(refined, route) {
		t.Fatalf("extraction failure must not change the route: %+v", refined)
	}
}

func TestEnrichNoSnippetsSkipsOracles(t *testing.T) {
	extractor := &fakeExtractor{candidates: []domain.EntityCandidate{{Kind: domain.EntityDoctors, Value: "X"}}}
	loop := NewEnrichmentLoop(extractor, &fakeValidator{}, testLogger())

	route := semanticRoute(domain.FilterBag{})
	refined := loop.Enrich(context.Background(), "q", nil, route)
	if !reflect.DeepEqual(refined, route) {
		t.Fatalf("no snippets must be a no-op, got %+v", refined)
	}
	if extractor.snippets != nil {
		t.Fatalf("extractor must not be called without snippets")
	}
}
