package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
)

// EventType represents the kinds of events the engine emits
type EventType string

const (
	EventExerciseCompleted EventType = "exercise.completed"
)

const (
	eventSource  = "exercise-engine"
	eventVersion = "1.0"
)

// Event is the envelope for every published event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type ExerciseCompletedEvent struct {
	LessonID       string              `json:"lesson_id"`
	ExerciseType   models.ExerciseType `json:"exercise_type"`
	Title          string              `json:"title"`
	TotalQuestions int                 `json:"total_questions"`
	CorrectAnswers float64             `json:"correct_answers"`
	Percentage     int                 `json:"percentage"`
	Passed         bool                `json:"passed"`
	CompletedAt    time.Time           `json:"completed_at"`
}

func NewExerciseCompletedEvent(lessonID, title string, result *models.Result) *Event {
	completedAt := time.Now()
	if result.CompletedAt != nil {
		completedAt = *result.CompletedAt
	}

	return &Event{
		ID:        GenerateEventID(),
		Type:      EventExerciseCompleted,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data: ExerciseCompletedEvent{
			LessonID:       lessonID,
			ExerciseType:   result.ExerciseType,
			Title:          title,
			TotalQuestions: result.TotalQuestions,
			CorrectAnswers: result.CorrectAnswers,
			Percentage:     result.Percentage,
			Passed:         result.Passed,
			CompletedAt:    completedAt,
		},
	}
}

func GenerateEventID() string {
	return uuid.NewString()
}
