package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
	"github.com/SAP-F-2025/exercise-engine/internal/repositories"
)

const (
	summarySheet = "Results"
	answersSheet = "Answers"
	timeLayout   = "2006-01-02 15:04:05"
)

// ResultExportService renders stored lesson results as spreadsheets
type ResultExportService interface {
	ExportLessonResults(ctx context.Context, lessonID string) ([]byte, error)
}

type resultExportService struct {
	storage repositories.Storage
	logger  *slog.Logger
}

func NewResultExportService(storage repositories.Storage, logger *slog.Logger) ResultExportService {
	return &resultExportService{
		storage: storage,
		logger:  logger,
	}
}

// ExportLessonResults builds an .xlsx workbook with one summary row per
// exercise type of the lesson and a second sheet listing every answer.
func (s *resultExportService) ExportLessonResults(ctx context.Context, lessonID string) ([]byte, error) {
	s.logger.Info("Exporting lesson results", "lesson_id", lessonID)

	results, err := s.storage.GetExerciseResults(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson results: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// The default sheet is renamed rather than left empty.
	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if _, err := f.NewSheet(answersSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	summaryHeaders := []interface{}{
		"Lesson ID", "Exercise Type", "Total Questions", "Correct Answers",
		"Percentage", "Result", "Completed At",
	}
	if err := writeRow(f, summarySheet, 1, summaryHeaders); err != nil {
		return nil, err
	}

	answerHeaders := []interface{}{"Exercise Type", "Question ID", "Submitted Answer", "Correct"}
	if err := writeRow(f, answersSheet, 1, answerHeaders); err != nil {
		return nil, err
	}

	summaryRow, answerRow := 2, 2
	for _, exerciseType := range models.ExerciseTypes {
		result, ok := results[exerciseType]
		if !ok || result == nil {
			continue
		}

		completedAt := ""
		if result.CompletedAt != nil {
			completedAt = result.CompletedAt.Format(timeLayout)
		}
		outcome := "Fail"
		if result.Passed {
			outcome = "Pass"
		}

		row := []interface{}{
			lessonID,
			string(exerciseType),
			result.TotalQuestions,
			result.CorrectAnswers,
			result.Percentage,
			outcome,
			completedAt,
		}
		if err := writeRow(f, summarySheet, summaryRow, row); err != nil {
			return nil, err
		}
		summaryRow++

		for _, answer := range result.PerAnswer {
			row := []interface{}{string(exerciseType), answer.QuestionID, answer.SubmittedAnswer, answer.IsCorrect}
			if err := writeRow(f, answersSheet, answerRow, row); err != nil {
				return nil, err
			}
			answerRow++
		}
	}

	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, rowIndex int, values []interface{}) error {
	for colIndex, value := range values {
		cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex)
		if err != nil {
			return fmt.Errorf("failed to resolve cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}
