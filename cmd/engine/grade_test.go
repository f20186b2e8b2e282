package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
	"github.com/SAP-F-2025/exercise-engine/internal/services"
)

const translationYAML = `
type: translation
title: Greetings
questions:
  - id: t1
    prompt: good morning
    acceptable_answers: ["dzień dobry"]
  - id: t2
    prompt: goodbye
    acceptable_answers: ["do widzenia", "żegnaj"]
`

const matchingYAML = `
type: matching
title: Pairs
left_items: [kot, pies, ryba]
right_items: [dog, cat, fish]
correct_matches:
  - {left: 0, right: 1}
  - {left: 1, right: 0}
  - {left: 2, right: 2}
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustExercise(t *testing.T, src string) *models.Exercise {
	t.Helper()
	var exercise models.Exercise
	require.NoError(t, yaml.Unmarshal([]byte(src), &exercise))
	return &exercise
}

func TestGradeAnswers_Translation(t *testing.T) {
	sheet := answerSheet{Answers: []answerEntry{
		{QuestionID: "t1", Answer: "dzen dobry"},
		{QuestionID: "t2", Answer: "Żegnaj"},
	}}

	result, err := gradeAnswers(context.Background(), mustExercise(t, translationYAML), sheet, discardLogger())

	require.NoError(t, err)
	assert.Equal(t, 1.5, result.CorrectAnswers)
	assert.Equal(t, 75, result.Percentage)
	assert.True(t, result.Passed)
}

func TestGradeAnswers_MatchingKeys(t *testing.T) {
	sheet := answerSheet{Answers: []answerEntry{
		{QuestionID: models.MatchKey(0), Answer: "1"},
		{QuestionID: models.MatchKey(1), Answer: "2"},
	}}

	result, err := gradeAnswers(context.Background(), mustExercise(t, matchingYAML), sheet, discardLogger())

	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.Equal(t, 1.0, result.CorrectAnswers)
	assert.Equal(t, 33, result.Percentage)
}

func TestGradeAnswers_ItemAlreadyMatched(t *testing.T) {
	sheet := answerSheet{Answers: []answerEntry{
		{QuestionID: models.MatchKey(0), Answer: "1"},
		{QuestionID: models.MatchKey(1), Answer: "1"},
	}}

	_, err := gradeAnswers(context.Background(), mustExercise(t, matchingYAML), sheet, discardLogger())

	assert.ErrorIs(t, err, services.ErrItemAlreadyMatched)
}

func TestGradeCommand(t *testing.T) {
	dir := t.TempDir()
	exercisePath := filepath.Join(dir, "exercise.yaml")
	answersPath := filepath.Join(dir, "answers.yaml")
	require.NoError(t, os.WriteFile(exercisePath, []byte(translationYAML), 0o600))
	require.NoError(t, os.WriteFile(answersPath, []byte(`
lesson_id: lesson-7
answers:
  - {question_id: t1, answer: dzień dobry}
  - {question_id: t2, answer: do widzenia}
`), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"grade", "--exercise", exercisePath, "--answers", answersPath})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())

	var result models.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, models.ExerciseTranslation, result.ExerciseType)
	assert.Equal(t, 100, result.Percentage)
	assert.Len(t, result.PerAnswer, 2)
}
