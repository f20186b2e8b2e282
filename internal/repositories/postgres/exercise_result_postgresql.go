package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
	"github.com/SAP-F-2025/exercise-engine/internal/repositories"
)

type ExerciseResultPostgreSQL struct {
	db *gorm.DB
}

func NewExerciseResultPostgreSQL(db *gorm.DB) *ExerciseResultPostgreSQL {
	return &ExerciseResultPostgreSQL{db: db}
}

// SaveExerciseResult upserts on (lesson_id, exercise_type).
func (r *ExerciseResultPostgreSQL) SaveExerciseResult(ctx context.Context, lessonID string, exerciseType models.ExerciseType, result *models.Result) error {
	if err := repositories.CheckSave(lessonID, exerciseType, result); err != nil {
		return err
	}

	row, err := models.NewExerciseResult(lessonID, exerciseType, result)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "lesson_id"}, {Name: "exercise_type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_questions",
				"correct_answers",
				"percentage",
				"passed",
				"per_answer",
				"completed_at",
				"updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to save exercise result: %w", err)
	}
	return nil
}

func (r *ExerciseResultPostgreSQL) GetExerciseResults(ctx context.Context, lessonID string) (map[models.ExerciseType]*models.Result, error) {
	var rows []models.ExerciseResult
	if err := r.db.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get exercise results: %w", err)
	}

	results := make(map[models.ExerciseType]*models.Result, len(rows))
	for i := range rows {
		result, err := rows[i].ToResult()
		if err != nil {
			return nil, err
		}
		results[rows[i].ExerciseType] = result
	}
	return results, nil
}

func (r *ExerciseResultPostgreSQL) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
