package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
)

// Storage persists completed exercise results. A lesson holds at most one
// result per exercise type; saving again replaces the previous one.
type Storage interface {
	SaveExerciseResult(ctx context.Context, lessonID string, exerciseType models.ExerciseType, result *models.Result) error
	// GetExerciseResults returns the stored results of a lesson keyed by
	// exercise type. Types without a result are absent from the map.
	GetExerciseResults(ctx context.Context, lessonID string) (map[models.ExerciseType]*models.Result, error)
}

// ClosableStorage is implemented by stores that hold a connection.
type ClosableStorage interface {
	Storage
	Close() error
}

var (
	ErrInvalidLessonID = errors.New("lesson id must not be empty")
	ErrNilResult       = errors.New("result must not be nil")
)

// CheckSave validates the arguments shared by every SaveExerciseResult.
func CheckSave(lessonID string, exerciseType models.ExerciseType, result *models.Result) error {
	if lessonID == "" {
		return ErrInvalidLessonID
	}
	if !exerciseType.IsValid() {
		return models.ErrUnknownExerciseType
	}
	if result == nil {
		return ErrNilResult
	}
	return nil
}
