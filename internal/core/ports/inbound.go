package ports

import (
	"context"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
)

// QuestionAnswerer is the inbound contract for synchronous question answering.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question, language string) (*domain.GroundedAnswer, error)
}

// QuestionSubmitter is the inbound contract for asynchronous submission.
type QuestionSubmitter interface {
	Submit(ctx context.Context, text, language string) (*domain.Question, error)
}

// QuestionProcessor is the inbound contract for worker-side processing.
type QuestionProcessor interface {
	ProcessByID(ctx context.Context, questionID string) error
}

// QuestionReader is the inbound read model for question state.
type QuestionReader interface {
	GetByID(ctx context.Context, id string) (*domain.Question, error)
}
