package model

import "time"

// TestResult is append-only; results are never updated or deleted
// by normal flow.
type TestResult struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	TestID         int64     `json:"test_id"`
	Score          int       `json:"score"` // percentage, 0-100
	TotalQuestions int       `json:"total_questions"`
	Answers        []int     `json:"answers"` // selected option index per question
	CreatedAt      time.Time `json:"created_at"`
}

type ResultFields struct {
	UserID         int64 `json:"user_id"`
	TestID         int64 `json:"test_id"`
	Score          int   `json:"score"`
	TotalQuestions int   `json:"total_questions"`
	Answers        []int `json:"answers"`
}
