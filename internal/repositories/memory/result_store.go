package memory

import (
	"context"
	"sync"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
	"github.com/SAP-F-2025/exercise-engine/internal/repositories"
)

// ResultStore keeps lesson results in process memory.
type ResultStore struct {
	mu      sync.RWMutex
	lessons map[string]map[models.ExerciseType]*models.Result
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		lessons: make(map[string]map[models.ExerciseType]*models.Result),
	}
}

func (s *ResultStore) SaveExerciseResult(ctx context.Context, lessonID string, exerciseType models.ExerciseType, result *models.Result) error {
	if err := repositories.CheckSave(lessonID, exerciseType, result); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lesson, ok := s.lessons[lessonID]
	if !ok {
		lesson = make(map[models.ExerciseType]*models.Result)
		s.lessons[lessonID] = lesson
	}
	lesson[exerciseType] = cloneResult(result)
	return nil
}

func (s *ResultStore) GetExerciseResults(ctx context.Context, lessonID string) (map[models.ExerciseType]*models.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make(map[models.ExerciseType]*models.Result, len(s.lessons[lessonID]))
	for exerciseType, result := range s.lessons[lessonID] {
		results[exerciseType] = cloneResult(result)
	}
	return results, nil
}

func cloneResult(r *models.Result) *models.Result {
	out := *r
	out.PerAnswer = append([]models.AnswerOutcome(nil), r.PerAnswer...)
	if r.CompletedAt != nil {
		completedAt := *r.CompletedAt
		out.CompletedAt = &completedAt
	}
	return &out
}

func (s *ResultStore) Close() error {
	return nil
}
