package services

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
)

// ResultAggregator reduces recorded answers into a Result.
type ResultAggregator struct{}

func NewResultAggregator() *ResultAggregator {
	return &ResultAggregator{}
}

// CalculateResults scores answers against exercise. Only answers to scorable
// units earn credit; unanswered units count as zero. PerAnswer lists unit
// answers in exercise order followed by any other recorded answers sorted by
// id.
func (a *ResultAggregator) CalculateResults(exercise *models.Exercise, answers map[string]models.AnswerRecord) *models.Result {
	unitIDs := lo.Uniq(exercise.UnitIDs())
	total := exercise.TotalQuestions()

	credit := lo.Reduce(unitIDs, func(sum float64, id string, _ int) float64 {
		return sum + answers[id].CreditAwarded
	}, 0.0)

	percentage := Percentage(credit, total)

	return &models.Result{
		ExerciseType:   exercise.Type(),
		TotalQuestions: total,
		CorrectAnswers: credit,
		Percentage:     percentage,
		Passed:         IsPassing(percentage),
		PerAnswer:      perAnswer(unitIDs, answers),
	}
}

// Percentage is round(credit / total * 100) clamped to [0, 100], and 0 when
// there is nothing to score.
func Percentage(credit float64, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(credit / float64(total) * 100))
	return min(max(p, 0), 100)
}

func IsPassing(percentage int) bool {
	return percentage >= models.PassingPercentage
}

func perAnswer(unitIDs []string, answers map[string]models.AnswerRecord) []models.AnswerOutcome {
	outcomes := make([]models.AnswerOutcome, 0, len(answers))

	seen := make(map[string]struct{}, len(unitIDs))
	for _, id := range unitIDs {
		seen[id] = struct{}{}
		if record, ok := answers[id]; ok {
			outcomes = append(outcomes, toOutcome(record))
		}
	}

	extra := lo.Filter(lo.Keys(answers), func(id string, _ int) bool {
		_, ok := seen[id]
		return !ok
	})
	sort.Strings(extra)
	for _, id := range extra {
		outcomes = append(outcomes, toOutcome(answers[id]))
	}

	return outcomes
}

func toOutcome(record models.AnswerRecord) models.AnswerOutcome {
	return models.AnswerOutcome{
		QuestionID:      record.QuestionID,
		SubmittedAnswer: record.SubmittedAnswer,
		IsCorrect:       record.IsFullyCorrect,
	}
}
