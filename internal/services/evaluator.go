package services

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
	"github.com/SAP-F-2025/exercise-engine/internal/scoring"
)

const (
	// TranslationSimilarityThreshold is the similarity a near-miss translation
	// must exceed to earn partial credit.
	TranslationSimilarityThreshold = 0.7
	TranslationPartialCredit       = 0.5
)

// Evaluation is the verdict on one submitted answer.
type Evaluation struct {
	Credit       float64
	FullyCorrect bool
}

var (
	fullCredit = Evaluation{Credit: 1, FullyCorrect: true}
	noCredit   = Evaluation{}
)

// Evaluator applies the per-type correctness rules. It holds no state.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate grades answer against the unit identified by questionID. A non-nil
// error is always a *MalformedQuestionError and comes with zero credit.
func (e *Evaluator) Evaluate(exercise *models.Exercise, questionID, answer string) (Evaluation, error) {
	switch p := exercise.Payload.(type) {
	case *models.FillBlankPayload:
		if p != nil {
			return e.evaluateFillBlank(p, questionID, answer)
		}
	case *models.MultipleChoicePayload:
		if p != nil {
			return e.evaluateMultipleChoice(p, questionID, answer)
		}
	case *models.MatchingPayload:
		if p != nil {
			return e.evaluateMatching(p, questionID, answer)
		}
	case *models.TranslationPayload:
		if p != nil {
			return e.evaluateTranslation(p, questionID, answer)
		}
	case nil:
	default:
		return noCredit, newMalformed(questionID, "unsupported payload "+string(p.Type()))
	}
	return noCredit, newMalformed(questionID, "exercise has no payload")
}

func (e *Evaluator) evaluateFillBlank(p *models.FillBlankPayload, questionID, answer string) (Evaluation, error) {
	question, ok := lo.Find(p.Questions, func(q models.FillBlankQuestion) bool { return q.ID == questionID })
	if !ok {
		return noCredit, newMalformed(questionID, "question not found")
	}

	blank, found := question.FindBlank()
	if !found {
		return noCredit, newMalformed(questionID, "sentence has no blank")
	}

	expected := scoring.Normalize(blank.Answer)
	if expected == "" {
		return noCredit, newMalformed(questionID, "blank has no expected answer")
	}

	if scoring.Normalize(answer) == expected {
		return fullCredit, nil
	}
	return noCredit, nil
}

// Multiple-choice answers are compared in option index form.
func (e *Evaluator) evaluateMultipleChoice(p *models.MultipleChoicePayload, questionID, answer string) (Evaluation, error) {
	question, ok := lo.Find(p.Questions, func(q models.MultipleChoiceQuestion) bool { return q.ID == questionID })
	if !ok {
		return noCredit, newMalformed(questionID, "question not found")
	}

	correct, designated := question.CorrectOption()
	if !designated {
		return noCredit, newMalformed(questionID, "no valid correct option designated")
	}

	submitted, valid := question.OptionIndex(answer)
	if valid && submitted == correct {
		return fullCredit, nil
	}
	return noCredit, nil
}

// Matching answers are keyed by models.MatchKey(left) and carry the chosen
// right index in decimal form.
func (e *Evaluator) evaluateMatching(p *models.MatchingPayload, questionID, answer string) (Evaluation, error) {
	left, ok := models.ParseMatchKey(questionID)
	if !ok {
		return noCredit, newMalformed(questionID, "not a match key")
	}

	correctRight, ok := p.CorrectRightFor(left)
	if !ok {
		return noCredit, newMalformed(questionID, "left item has no correct match")
	}

	right, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return noCredit, nil
	}
	if right == correctRight {
		return fullCredit, nil
	}
	return noCredit, nil
}

func (e *Evaluator) evaluateTranslation(p *models.TranslationPayload, questionID, answer string) (Evaluation, error) {
	question, ok := lo.Find(p.Questions, func(q models.TranslationQuestion) bool { return q.ID == questionID })
	if !ok {
		return noCredit, newMalformed(questionID, "question not found")
	}
	if len(question.AcceptableAnswers) == 0 {
		return noCredit, newMalformed(questionID, "no acceptable answers")
	}

	submitted := scoring.Normalize(answer)
	acceptable := make([]string, len(question.AcceptableAnswers))
	for i, candidate := range question.AcceptableAnswers {
		acceptable[i] = scoring.Normalize(candidate)
		if submitted == acceptable[i] {
			return fullCredit, nil
		}
	}

	if submitted == "" {
		return noCredit, nil
	}

	if scoring.MaxSimilarity(submitted, acceptable) > TranslationSimilarityThreshold {
		return Evaluation{Credit: TranslationPartialCredit}, nil
	}
	return noCredit, nil
}
