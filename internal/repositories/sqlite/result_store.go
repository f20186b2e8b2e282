package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
	"github.com/SAP-F-2025/exercise-engine/internal/repositories"
)

// ResultStore implements repositories.Storage backed by SQLite.
type ResultStore struct {
	db *DB
}

func NewResultStore(db *DB) *ResultStore {
	return &ResultStore{db: db}
}

func (s *ResultStore) SaveExerciseResult(ctx context.Context, lessonID string, exerciseType models.ExerciseType, result *models.Result) error {
	if err := repositories.CheckSave(lessonID, exerciseType, result); err != nil {
		return err
	}

	perAnswer, err := json.Marshal(result.PerAnswer)
	if err != nil {
		return fmt.Errorf("marshal per_answer: %w", err)
	}

	now := time.Now().UTC()
	completedAt := now
	if result.CompletedAt != nil {
		completedAt = result.CompletedAt.UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO exercise_results (lesson_id, exercise_type, total_questions,
			correct_answers, percentage, passed, per_answer, completed_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(lesson_id, exercise_type) DO UPDATE SET
			total_questions=excluded.total_questions,
			correct_answers=excluded.correct_answers,
			percentage=excluded.percentage,
			passed=excluded.passed,
			per_answer=excluded.per_answer,
			completed_at=excluded.completed_at,
			updated_at=excluded.updated_at`,
		lessonID, string(exerciseType), result.TotalQuestions,
		result.CorrectAnswers, result.Percentage, result.Passed, string(perAnswer),
		completedAt.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert exercise result: %w", err)
	}
	return nil
}

func (s *ResultStore) GetExerciseResults(ctx context.Context, lessonID string) (map[models.ExerciseType]*models.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT exercise_type, total_questions, correct_answers, percentage,
			passed, per_answer, completed_at
		FROM exercise_results WHERE lesson_id = ?`, lessonID)
	if err != nil {
		return nil, fmt.Errorf("query exercise results: %w", err)
	}
	defer rows.Close()

	results := make(map[models.ExerciseType]*models.Result)
	for rows.Next() {
		var (
			exerciseType string
			perAnswer    string
			completedAt  string
			result       models.Result
		)
		if err := rows.Scan(&exerciseType, &result.TotalQuestions, &result.CorrectAnswers,
			&result.Percentage, &result.Passed, &perAnswer, &completedAt); err != nil {
			return nil, fmt.Errorf("scan exercise result: %w", err)
		}

		if err := json.Unmarshal([]byte(perAnswer), &result.PerAnswer); err != nil {
			return nil, fmt.Errorf("unmarshal per_answer: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, completedAt)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}

		result.ExerciseType = models.ExerciseType(exerciseType)
		result.CompletedAt = &ts
		results[result.ExerciseType] = &result
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercise results: %w", err)
	}
	return results, nil
}

func (s *ResultStore) Close() error {
	return s.db.Close()
}
