package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
)

func TestResultExportService_ExportLessonResults(t *testing.T) {
	storage := new(MockStorage)
	service := NewResultExportService(storage, testLogger())
	ctx := context.Background()
	completedAt := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	storage.On("GetExerciseResults", ctx, "lesson-1").Return(map[models.ExerciseType]*models.Result{
		models.ExerciseTranslation: {
			ExerciseType: models.ExerciseTranslation, TotalQuestions: 2, CorrectAnswers: 1.5,
			Percentage: 75, Passed: true, CompletedAt: &completedAt,
			PerAnswer: []models.AnswerOutcome{
				{QuestionID: "t1", SubmittedAnswer: "Dzień Dobry", IsCorrect: true},
				{QuestionID: "t2", SubmittedAnswer: "do widzenie", IsCorrect: false},
			},
		},
		models.ExerciseFillBlank: {
			ExerciseType: models.ExerciseFillBlank, TotalQuestions: 2, CorrectAnswers: 1,
			Percentage: 50, CompletedAt: &completedAt,
			PerAnswer: []models.AnswerOutcome{{QuestionID: "q1", SubmittedAnswer: "Kota", IsCorrect: true}},
		},
	}, nil)

	data, err := service.ExportLessonResults(ctx, "lesson-1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	summary, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, "Exercise Type", summary[0][1])
	// Rows follow exercise type order, not map order.
	assert.Equal(t, []string{"lesson-1", "fill-blank", "2", "1", "50", "Fail", "2026-06-01 09:00:00"}, summary[1])
	assert.Equal(t, "translation", summary[2][1])
	assert.Equal(t, "Pass", summary[2][5])

	answers, err := f.GetRows("Answers")
	require.NoError(t, err)
	assert.Len(t, answers, 4)
	assert.Equal(t, []string{"translation", "t2", "do widzenie", "FALSE"}, answers[3])
}

func TestResultExportService_StorageError(t *testing.T) {
	storage := new(MockStorage)
	service := NewResultExportService(storage, testLogger())
	ctx := context.Background()

	storage.On("GetExerciseResults", ctx, "lesson-1").Return(nil, errors.New("unavailable"))

	_, err := service.ExportLessonResults(ctx, "lesson-1")
	assert.Error(t, err)
}
