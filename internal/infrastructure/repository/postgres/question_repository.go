package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
)

// QuestionRepository implements ports.QuestionStore on Postgres.
type QuestionRepository struct {
	db *sql.DB
}

func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) Create(ctx context.Context, q *domain.Question) error {
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now

	const query = `INSERT INTO questions (id, text, language, status, answer, error_message, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		q.ID, q.Text, q.Language, string(q.Status), q.Answer, q.Error, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	const query = `SELECT id, text, language, status, COALESCE(answer, ''), COALESCE(error_message, ''), created_at, updated_at
FROM questions WHERE id = $1`

	var (
		q      domain.Question
		status string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&q.ID, &q.Text, &q.Language, &status, &q.Answer, &q.Error, &q.CreatedAt, &q.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("question %s: %w", id, domain.ErrQuestionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	q.Status = domain.QuestionStatus(status)
	return &q, nil
}

func (r *QuestionRepository) UpdateStatus(ctx context.Context, id string, status domain.QuestionStatus, errMessage string) error {
	const query = `UPDATE questions SET status = $2, error_message = $3, updated_at = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update question status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update question status rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("question %s: %w", id, domain.ErrQuestionNotFound)
	}
	return nil
}

func (r *QuestionRepository) SaveAnswer(ctx context.Context, id string, answer string) error {
	const query = `UPDATE questions SET status = $2, answer = $3, error_message = '', updated_at = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, string(domain.QuestionStatusAnswered), answer, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save question answer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save question answer rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("question %s: %w", id, domain.ErrQuestionNotFound)
	}
	return nil
}
