package usecase

import (
	"context"
	"fmt"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
	"github.com/hazemfarouk/meddir-assistant/internal/core/ports"
)

// ProcessQuestionUseCase runs the answer pipeline for a queued question and
// persists the outcome.
type ProcessQuestionUseCase struct {
	questions ports.QuestionStore
	answerer  ports.QuestionAnswerer
}

func NewProcessQuestionUseCase(questions ports.QuestionStore, answerer ports.QuestionAnswerer) *ProcessQuestionUseCase {
	return &ProcessQuestionUseCase{
		questions: questions,
		answerer:  answerer,
	}
}

func (uc *ProcessQuestionUseCase) ProcessByID(ctx context.Context, questionID string) error {
	q, err := uc.questions.GetByID(ctx, questionID)
	if err != nil {
		return fmt.Errorf("fetch question by id: %w", err)
	}

	if err := uc.questions.UpdateStatus(ctx, q.ID, domain.QuestionStatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	answer, err := uc.answerer.Answer(ctx, q.Text, q.Language)
	if err != nil {
		if failErr := uc.questions.UpdateStatus(ctx, q.ID, domain.QuestionStatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.questions.SaveAnswer(ctx, q.ID, answer.Text); err != nil {
		return fmt.Errorf("save answer: %w", err)
	}
	return nil
}
