package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
	"github.com/hazemfarouk/meddir-assistant/internal/core/ports"
	"github.com/hazemfarouk/meddir-assistant/internal/textnorm"
)

// SubmitQuestionUseCase persists a pending question and hands it to the
// worker queue.
type SubmitQuestionUseCase struct {
	questions ports.QuestionStore
	queue     ports.QuestionQueue
}

func NewSubmitQuestionUseCase(questions ports.QuestionStore, queue ports.QuestionQueue) *SubmitQuestionUseCase {
	return &SubmitQuestionUseCase{
		questions: questions,
		queue:     queue,
	}
}

func (uc *SubmitQuestionUseCase) Submit(ctx context.Context, text, language string) (*domain.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit question", fmt.Errorf("empty question"))
	}
	if language == "" {
		language = "en"
		if textnorm.IsArabic(text) {
			language = "ar"
		}
	}

	now := time.Now().UTC()
	q := &domain.Question{
		ID:        uuid.NewString(),
		Text:      text,
		Language:  language,
		Status:    domain.QuestionStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.questions.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	if err := uc.queue.PublishQuestionSubmitted(ctx, q.ID); err != nil {
		return nil, fmt.Errorf("publish question event: %w", err)
	}
	return q, nil
}
