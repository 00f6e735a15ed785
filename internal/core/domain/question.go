package domain

import "time"

type QuestionStatus string

const (
	QuestionStatusPending    QuestionStatus = "pending"
	QuestionStatusProcessing QuestionStatus = "processing"
	QuestionStatusAnswered   QuestionStatus = "answered"
	QuestionStatusFailed     QuestionStatus = "failed"
)

// Question is one asynchronously submitted question and its lifecycle state.
type Question struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Language  string         `json:"language,omitempty"`
	Status    QuestionStatus `json:"status"`
	Answer    string         `json:"answer,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
