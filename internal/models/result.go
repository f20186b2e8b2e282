package models

import "time"

// PassingPercentage is the fixed pass threshold.
const PassingPercentage = 70

type Result struct {
	ExerciseType   ExerciseType    `json:"exercise_type"`
	TotalQuestions int             `json:"total_questions"`
	CorrectAnswers float64         `json:"correct_answers"`
	Percentage     int             `json:"percentage"`
	Passed         bool            `json:"passed"`
	PerAnswer      []AnswerOutcome `json:"per_answer"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

// AnswerOutcome is the per-answer breakdown of a Result. IsCorrect is only set
// for full credit; partial translation credit shows in the percentage alone.
type AnswerOutcome struct {
	QuestionID      string `json:"question_id"`
	SubmittedAnswer string `json:"submitted_answer"`
	IsCorrect       bool   `json:"is_correct"`
}

type CompletionStatus struct {
	Completed bool    `json:"completed"`
	Result    *Result `json:"result"`
}
