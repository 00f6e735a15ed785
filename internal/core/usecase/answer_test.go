package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
)

type fakeClassifier struct {
	route domain.RouteDecision
	err   error
}

func (f *fakeClassifier) Classify(ctx context.Context, question string) (domain.RouteDecision, error) {
	return f.route, f.err
}

type fakeGenerator struct {
	answer      string
	err         error
	calls       int
	lastContext string
	lastLang    string
}

func (f *fakeGenerator) GenerateAnswer(ctx context.Context, question, contextBlock, language string) (string, error) {
	f.calls++
	f.lastContext = contextBlock
	f.lastLang = language
	return f.answer, f.err
}

type pipelineFixture struct {
	classifier *fakeClassifier
	generator  *fakeGenerator
	directory  *fakeDirectoryStore
	lexical    *fakeLexicalIndex
	extractor  *fakeExtractor
	validator  *fakeValidator
	uc         *AnswerQuestionUseCase
}

func newPipelineFixture(route domain.RouteDecision) *pipelineFixture {
	f := &pipelineFixture{
		classifier: &fakeClassifier{route: route},
		generator:  &fakeGenerator{answer: "grounded answer"},
		directory:  &fakeDirectoryStore{},
		lexical:    &fakeLexicalIndex{},
		extractor:  &fakeExtractor{},
		validator:  &fakeValidator{},
	}

	fields := map[string][]string{"hospitals_docs": {"nameAr^4", "nameEn^3"}}
	search := NewHybridSearchEngine(&fakeEmbedder{vector: []float32{0.1}}, &fakeDenseIndex{}, f.lexical, fields, time.Second, time.Second, testLogger())
	availability := NewAvailabilityEngine(&fakeScheduleStore{}, 1, fixedClock, testLogger())
	resolver := NewRelationshipResolver(f.directory, availability, testLogger())
	enricher := NewEnrichmentLoop(f.extractor, f.validator, testLogger())

	collections := map[domain.EntityKind]string{
		domain.EntityHospitals:   "hospitals_docs",
		domain.EntityDoctors:     "doctors_docs",
		domain.EntitySpecialties: "specialties_docs",
	}
	f.uc = NewAnswerQuestionUseCase(f.classifier, search, resolver, enricher, f.generator, collections, 5, 0.4, testLogger())
	return f
}

func TestAnswerStructuredRouteSkipsRetrieval(t *testing.T) {
	doctor := &domain.Doctor{UID: "d-1", FullName: "Ahmed Mansour"}
	route := domain.RouteDecision{
		Operation: domain.OpDirectStructured,
		Entity:    domain.EntityRelationships,
		Params:    domain.FilterBag{QueryType: domain.QueryHospitalsForDoctor, DoctorName: "Ahmed Mansour"},
	}
	f := newPipelineFixture(route)
	f.directory.doctorsByName = map[string][]domain.Doctor{"ahmed mansour": {*doctor}}
	f.directory.linkResults = [][]domain.Link{{
		{ID: "l-1", DoctorUID: "d-1", Doctor: doctor},
	}}
	f.lexical.hits = []domain.RetrievalRecord{{RefID: "x", Score: 1}}

	answer, err := f.uc.Answer(context.Background(), "where does Dr. Ahmed Mansour work?", "")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.ContextSource != domain.SourceStructured {
		t.Fatalf("context source = %q, want structured", answer.ContextSource)
	}
	if f.lexical.lastQuery != "" {
		t.Fatalf("retrieval must be skipped on a structured route")
	}
	if !strings.HasPrefix(f.generator.lastContext, "[TOTAL RESULTS: 1 - You MUST list all 1 items]") {
		t.Fatalf("missing count directive: %q", f.generator.lastContext)
	}
	if f.generator.lastLang != "en" {
		t.Fatalf("language hint = %q, want en", f.generator.lastLang)
	}
}

func TestAnswerSemanticRouteUsesSnippets(t *testing.T) {
	route := domain.RouteDecision{Operation: domain.OpSemantic, Entity: domain.EntityHospitals}
	f := newPipelineFixture(route)
	f.lexical.hits = []domain.RetrievalRecord{{RefID: "h-1", Text: "Al Salam Hospital is in Cairo", Score: 2}}

	answer, err := f.uc.Answer(context.Background(), "tell me about Al Salam hospital", "")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.ContextSource != domain.SourceSnippets {
		t.Fatalf("context source = %q, want snippets", answer.ContextSource)
	}
	if len(f.directory.linkCalls) != 0 {
		t.Fatalf("resolver must be skipped on a pure semantic route")
	}
	if !strings.Contains(f.generator.lastContext, "[Source: hospitals_docs] Al Salam Hospital is in Cairo") {
		t.Fatalf("unexpected snippet context: %q", f.generator.lastContext)
	}
}

func TestAnswerEnrichmentRefinesEmptyResolution(t *testing.T) {
	route := domain.RouteDecision{
		Operation: domain.OpCombined,
		Entity:    domain.EntityHospitals,
		Params:    domain.FilterBag{QueryType: domain.QuerySpecialistsAtHospital, HospitalName: "Al Salam"},
	}
	f := newPipelineFixture(route)
	specialty := &domain.Specialty{ID: "s-1", NameEn: "Cardiology", NameAr: "قلب"}
	f.directory.hospitals = []domain.Hospital{{UID: "h-1", NameEn: "Al Salam Hospital"}}
	f.directory.specialties = []domain.Specialty{*specialty}
	f.directory.linkResults = [][]domain.Link{
		{},
		{{ID: "l-1", HospitalUID: "h-1", SpecialtyID: "s-1", Specialty: specialty}},
	}
	f.lexical.hits = []domain.RetrievalRecord{{RefID: "s-1", Text: "Cardiology department", Score: 3}}
	f.extractor.candidates = []domain.EntityCandidate{{Kind: domain.EntitySpecialties, Value: "Cardiology"}}
	f.validator.verdicts = map[string]bool{"Cardiology": true}

	answer, err := f.uc.Answer(context.Background(), "who treats heart disease at Al Salam?", "")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.ContextSource != domain.SourceEnrichment {
		t.Fatalf("context source = %q, want enrichment", answer.ContextSource)
	}
	if answer.Route.Params.SpecialtyName != "Cardiology" {
		t.Fatalf("refined route missing specialty, got %+v", answer.Route.Params)
	}
	if len(f.directory.linkCalls) != 2 {
		t.Fatalf("expected resolution to rerun after enrichment, got %d link calls", len(f.directory.linkCalls))
	}
}

func TestAnswerClassifierFailureIsFatal(t *testing.T) {
	f := newPipelineFixture(domain.RouteDecision{})
	f.classifier.err = errors.New("ollama unreachable")

	_, err := f.uc.Answer(context.Background(), "any question", "")
	if err == nil {
		t.Fatal("expected error when classification fails")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected a retryable error, got %v", err)
	}
	if f.generator.calls != 0 {
		t.Fatalf("generator must not run after a fatal classification failure")
	}
}

func TestAnswerNoContextSkipsGenerator(t *testing.T) {
	route := domain.RouteDecision{Operation: domain.OpSemantic, Entity: domain.EntityHospitals}
	f := newPipelineFixture(route)

	answer, err := f.uc.Answer(context.Background(), "ما هي مستشفيات الزمالك؟", "")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if f.generator.calls != 0 {
		t.Fatalf("generator must not be called with empty context")
	}
	if answer.ContextSource != domain.SourceNone {
		t.Fatalf("context source = %q, want none", answer.ContextSource)
	}
	if answer.Text != noInfoArabic {
		t.Fatalf("expected Arabic no-information answer, got %q", answer.Text)
	}
}

func TestAnswerGeneratorFailureIsRetryable(t *testing.T) {
	route := domain.RouteDecision{Operation: domain.OpSemantic, Entity: domain.EntityHospitals}
	f := newPipelineFixture(route)
	f.lexical.hits = []domain.RetrievalRecord{{RefID: "h-1", Text: "snippet", Score: 1}}
	f.generator.err = errors.New("model timeout")

	_, err := f.uc.Answer(context.Background(), "question", "")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected retryable generation error, got %v", err)
	}
}

func TestAnswerRejectsEmptyQuestion(t *testing.T) {
	f := newPipelineFixture(domain.RouteDecision{})

	_, err := f.uc.Answer(context.Background(), "   ", "")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}
