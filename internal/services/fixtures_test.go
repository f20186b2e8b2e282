package services

import (
	"io"
	"log/slog"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(i int) *int { return &i }

func blankSentence(before, answer, after string) []models.SentencePart {
	return []models.SentencePart{
		{Text: before},
		{Blank: &models.Blank{Answer: answer}},
		{Text: after},
	}
}

// fillBlankExercise expects "kota" for q1 and "psa" for q2.
func fillBlankExercise() *models.Exercise {
	return &models.Exercise{
		Title: "Accusative",
		Payload: &models.FillBlankPayload{Questions: []models.FillBlankQuestion{
			{ID: "q1", Sentence: blankSentence("Mam", "kota", ".")},
			{ID: "q2", Sentence: blankSentence("Widzę", "psa", ".")},
		}},
	}
}

func multipleChoiceExercise() *models.Exercise {
	return &models.Exercise{
		Title: "Vocabulary",
		Payload: &models.MultipleChoicePayload{Questions: []models.MultipleChoiceQuestion{
			{ID: "m1", Prompt: "cat", Options: []string{"pies", "kot", "ryba"}, CorrectIndex: intPtr(1)},
			{ID: "m2", Prompt: "dog", Options: []string{"pies", "kot"}, CorrectValue: "pies"},
			{ID: "m3", Prompt: "fish", Options: []string{"pies", "kot", "ryba"}, CorrectIndex: intPtr(2)},
		}},
	}
}

func matchingExercise() *models.Exercise {
	return &models.Exercise{
		Title: "Pairs",
		Payload: &models.MatchingPayload{
			LeftItems:  []string{"kot", "pies", "ryba"},
			RightItems: []string{"dog", "cat", "fish"},
			CorrectMatches: []models.MatchPair{
				{Left: 0, Right: 1},
				{Left: 1, Right: 0},
				{Left: 2, Right: 2},
			},
		},
	}
}

func translationExercise() *models.Exercise {
	return &models.Exercise{
		Title: "Greetings",
		Payload: &models.TranslationPayload{Questions: []models.TranslationQuestion{
			{ID: "t1", Prompt: "good morning", AcceptableAnswers: []string{"dzień dobry"}},
			{ID: "t2", Prompt: "goodbye", AcceptableAnswers: []string{"do widzenia", "żegnaj"}},
		}},
	}
}
