package models

import "time"

// AnswerRecord is the judged outcome of one submission. It is overwritten by a
// resubmission of the same question and cleared by a reset.
type AnswerRecord struct {
	QuestionID      string    `json:"question_id"`
	SubmittedAnswer string    `json:"submitted_answer"`
	CreditAwarded   float64   `json:"credit_awarded"`
	IsFullyCorrect  bool      `json:"is_fully_correct"`
	Timestamp       time.Time `json:"timestamp"`
}

type SessionState string

const (
	SessionIdle       SessionState = "idle"
	SessionInProgress SessionState = "in_progress"
	SessionCompleted  SessionState = "completed"
)

// SessionProgress describes how far the learner is through the active exercise.
type SessionProgress struct {
	State              SessionState `json:"state"`
	ExerciseType       ExerciseType `json:"exercise_type,omitempty"`
	Answered           int          `json:"answered"`
	Total              int          `json:"total"`
	ProgressPercentage float64      `json:"progress_percentage"`
	AllAnswered        bool         `json:"all_answered"`
}
