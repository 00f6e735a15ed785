package ports

import (
	"context"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
)

// LinkFilter narrows the hospital-doctor-specialty relation. Every non-empty
// slice is a conjunctive containedIn constraint.
type LinkFilter struct {
	HospitalUIDs []string
	DoctorUIDs   []string
	SpecialtyIDs []string
	Limit        int
}

// DirectoryStore reads the structured medical directory. The directory is
// populated externally and read-only to this service.
type DirectoryStore interface {
	FindHospitals(ctx context.Context, name, location string, limit int) ([]domain.Hospital, error)
	ListHospitals(ctx context.Context, limit int) ([]domain.Hospital, error)
	FindSpecialties(ctx context.Context, name string, limit int) ([]domain.Specialty, error)
	ListSpecialties(ctx context.Context, limit int) ([]domain.Specialty, error)
	FindDoctorsByName(ctx context.Context, name string, limit int) ([]domain.Doctor, error)
	FindDoctorsByGender(ctx context.Context, gender string, limit int) ([]domain.Doctor, error)
	ListDoctors(ctx context.Context, limit int) ([]domain.Doctor, error)
	FindLinks(ctx context.Context, filter LinkFilter) ([]domain.Link, error)
	GetArea(ctx context.Context, id string) (*domain.Area, error)
	GetCity(ctx context.Context, id string) (*domain.City, error)
	ListAreas(ctx context.Context, limit int) ([]domain.Area, error)
	ListCities(ctx context.Context, limit int) ([]domain.City, error)
}

// ScheduleStore reads appointment templates and booked slots.
type ScheduleStore interface {
	ListTemplates(ctx context.Context, doctorUID, hospitalUID string, isOnline *bool) ([]domain.AppointmentTemplate, error)
	ListBookedSlots(ctx context.Context, doctorUID, hospitalUID string, from, to string) ([]domain.BookedSlot, error)
}

// DenseIndex performs semantic search over one document collection.
type DenseIndex interface {
	Search(ctx context.Context, collection string, vector []float32, limit int, scoreThreshold float64) ([]domain.RetrievalRecord, error)
}

// LexicalIndex performs keyword search over one document collection. Fields
// use the "name^boost" form.
type LexicalIndex interface {
	Search(ctx context.Context, collection, query string, fields []string, limit int) ([]domain.RetrievalRecord, error)
}

// Embedder builds the query vector for dense search.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// QueryClassifier routes a question to a pipeline strategy. A transport
// failure here is fatal to the question; non-conforming output falls back to
// domain.DefaultRoute.
type QueryClassifier interface {
	Classify(ctx context.Context, question string) (domain.RouteDecision, error)
}

// EntityExtractor proposes entity candidates from retrieval snippets during
// enrichment.
type EntityExtractor interface {
	Extract(ctx context.Context, question string, snippets []string) ([]domain.EntityCandidate, error)
}

// MatchValidator judges whether an extracted candidate actually answers the
// original question.
type MatchValidator interface {
	Validate(ctx context.Context, question string, candidate domain.EntityCandidate) (bool, error)
}

// AnswerGenerator produces the final grounded answer text.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question, contextBlock, language string) (string, error)
}

// QuestionStore persists asynchronous question lifecycle state.
type QuestionStore interface {
	Create(ctx context.Context, q *domain.Question) error
	GetByID(ctx context.Context, id string) (*domain.Question, error)
	UpdateStatus(ctx context.Context, id string, status domain.QuestionStatus, errMessage string) error
	SaveAnswer(ctx context.Context, id string, answer string) error
}

// QuestionQueue publishes/consumes submitted-question events.
type QuestionQueue interface {
	PublishQuestionSubmitted(ctx context.Context, questionID string) error
	SubscribeQuestionSubmitted(ctx context.Context, handler func(context.Context, string) error) error
}
