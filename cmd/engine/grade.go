package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
	"github.com/SAP-F-2025/exercise-engine/internal/repositories/memory"
	"github.com/SAP-F-2025/exercise-engine/internal/services"
	"github.com/SAP-F-2025/exercise-engine/internal/validator"
)

const defaultGradeLesson = "cli"

// answerSheet is the answers file replayed by the grade command, in order.
type answerSheet struct {
	LessonID string        `yaml:"lesson_id"`
	Answers  []answerEntry `yaml:"answers"`
}

type answerEntry struct {
	QuestionID string `yaml:"question_id"`
	Answer     string `yaml:"answer"`
}

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Grade an answers file against an exercise definition",
	RunE: func(cmd *cobra.Command, args []string) error {
		exercisePath, _ := cmd.Flags().GetString("exercise")
		answersPath, _ := cmd.Flags().GetString("answers")
		verbose, _ := cmd.Flags().GetBool("verbose")

		var exercise models.Exercise
		if err := readYAML(exercisePath, &exercise); err != nil {
			return fmt.Errorf("read exercise: %w", err)
		}
		if err := validator.New().ValidateExercise(&exercise); err != nil {
			return fmt.Errorf("invalid exercise: %w", err)
		}

		var sheet answerSheet
		if err := readYAML(answersPath, &sheet); err != nil {
			return fmt.Errorf("read answers: %w", err)
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		result, err := gradeAnswers(ctx, &exercise, sheet, logger)
		if err != nil {
			return err
		}
		return writeResult(cmd.OutOrStdout(), result)
	},
}

func init() {
	rootCmd.AddCommand(gradeCmd)

	gradeCmd.Flags().StringP("exercise", "e", "", "exercise definition YAML file")
	gradeCmd.Flags().StringP("answers", "a", "", "answers YAML file")
	gradeCmd.Flags().BoolP("verbose", "v", false, "log every session operation")
	cobra.CheckErr(gradeCmd.MarkFlagRequired("exercise"))
	cobra.CheckErr(gradeCmd.MarkFlagRequired("answers"))
}

// gradeAnswers replays the sheet through a fresh session backed by an
// in-memory store and returns the completed result.
func gradeAnswers(ctx context.Context, exercise *models.Exercise, sheet answerSheet, logger *slog.Logger) (*models.Result, error) {
	reporter := services.NewProgressReporter(memory.NewResultStore(), nil, logger, services.ProgressReporterConfig{
		EnableDebug: logger.Enabled(ctx, slog.LevelDebug),
	})

	if err := reporter.StartExercise(ctx, exercise); err != nil {
		return nil, err
	}
	for _, entry := range sheet.Answers {
		if _, err := reporter.SubmitAnswer(ctx, entry.QuestionID, entry.Answer); err != nil {
			return nil, fmt.Errorf("answer %q: %w", entry.QuestionID, err)
		}
	}

	lessonID := sheet.LessonID
	if lessonID == "" {
		lessonID = defaultGradeLesson
	}
	return reporter.CompleteExercise(ctx, lessonID)
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

func writeResult(w io.Writer, result *models.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
