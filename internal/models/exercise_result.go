package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ExerciseResult is the persisted form of a completed Result. A lesson keeps
// one row per exercise type; completing the same type again replaces it.
type ExerciseResult struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	LessonID       string         `json:"lesson_id" gorm:"not null;size:200;uniqueIndex:idx_lesson_exercise_type"`
	ExerciseType   ExerciseType   `json:"exercise_type" gorm:"not null;size:32;uniqueIndex:idx_lesson_exercise_type"`
	TotalQuestions int            `json:"total_questions" gorm:"not null"`
	CorrectAnswers float64        `json:"correct_answers" gorm:"not null"`
	Percentage     int            `json:"percentage" gorm:"not null"`
	Passed         bool           `json:"passed" gorm:"not null;default:false"`
	PerAnswer      datatypes.JSON `json:"per_answer" gorm:"type:jsonb"` // []AnswerOutcome
	CompletedAt    time.Time      `json:"completed_at" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ExerciseResult) TableName() string {
	return "exercise_results"
}

func NewExerciseResult(lessonID string, exerciseType ExerciseType, result *Result) (*ExerciseResult, error) {
	perAnswer, err := json.Marshal(result.PerAnswer)
	if err != nil {
		return nil, fmt.Errorf("marshal per_answer: %w", err)
	}

	completedAt := time.Now()
	if result.CompletedAt != nil {
		completedAt = *result.CompletedAt
	}

	return &ExerciseResult{
		ID:             uuid.New(),
		LessonID:       lessonID,
		ExerciseType:   exerciseType,
		TotalQuestions: result.TotalQuestions,
		CorrectAnswers: result.CorrectAnswers,
		Percentage:     result.Percentage,
		Passed:         result.Passed,
		PerAnswer:      datatypes.JSON(perAnswer),
		CompletedAt:    completedAt,
	}, nil
}

func (r *ExerciseResult) ToResult() (*Result, error) {
	var perAnswer []AnswerOutcome
	if len(r.PerAnswer) > 0 {
		if err := json.Unmarshal(r.PerAnswer, &perAnswer); err != nil {
			return nil, fmt.Errorf("unmarshal per_answer: %w", err)
		}
	}

	completedAt := r.CompletedAt
	return &Result{
		ExerciseType:   r.ExerciseType,
		TotalQuestions: r.TotalQuestions,
		CorrectAnswers: r.CorrectAnswers,
		Percentage:     r.Percentage,
		Passed:         r.Passed,
		PerAnswer:      perAnswer,
		CompletedAt:    &completedAt,
	}, nil
}
