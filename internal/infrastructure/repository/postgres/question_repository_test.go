package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
)

func TestQuestionGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM questions WHERE id = \$1`).
		WithArgs("q-missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "text", "language", "status", "answer", "error_message", "created_at", "updated_at",
		}))

	repo := NewQuestionRepository(db)
	_, err = repo.GetByID(context.Background(), "q-missing")
	if !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestQuestionCreateAndGet(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO questions`).
		WithArgs("q-1", "where is alpha hospital", "en", "pending", "", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM questions WHERE id = \$1`).
		WithArgs("q-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "text", "language", "status", "answer", "error_message", "created_at", "updated_at",
		}).AddRow("q-1", "where is alpha hospital", "en", "pending", "", "", created, created))

	repo := NewQuestionRepository(db)
	q := &domain.Question{
		ID:       "q-1",
		Text:     "where is alpha hospital",
		Language: "en",
		Status:   domain.QuestionStatusPending,
	}
	if err := repo.Create(context.Background(), q); err != nil {
		t.Fatalf("create question: %v", err)
	}

	got, err := repo.GetByID(context.Background(), "q-1")
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if got.Status != domain.QuestionStatusPending || got.Text != "where is alpha hospital" {
		t.Fatalf("unexpected question %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestQuestionSaveAnswerMarksAnswered(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE questions SET status = \$2, answer = \$3`).
		WithArgs("q-1", "answered", "Alpha Hospital is in Giza.", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewQuestionRepository(db)
	if err := repo.SaveAnswer(context.Background(), "q-1", "Alpha Hospital is in Giza."); err != nil {
		t.Fatalf("save answer: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestQuestionUpdateStatusMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE questions SET status = \$2, error_message = \$3`).
		WithArgs("q-missing", "failed", "classifier unavailable", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewQuestionRepository(db)
	err = repo.UpdateStatus(context.Background(), "q-missing", domain.QuestionStatusFailed, "classifier unavailable")
	if !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
