package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
)

// AnswerTracker holds the answers of one attempt at the current exercise.
// It is not safe for concurrent use.
type AnswerTracker struct {
	evaluator *Evaluator
	logger    *ServiceLogger
	now       func() time.Time

	exercise  *models.Exercise
	answers   map[string]*models.AnswerRecord
	startedAt time.Time
}

func NewAnswerTracker(evaluator *Evaluator, logger *ServiceLogger) *AnswerTracker {
	return &AnswerTracker{
		evaluator: evaluator,
		logger:    logger,
		now:       time.Now,
		answers:   make(map[string]*models.AnswerRecord),
	}
}

// StartExercise makes exercise current and discards every prior answer.
func (t *AnswerTracker) StartExercise(exercise *models.Exercise) {
	t.exercise = exercise
	t.answers = make(map[string]*models.AnswerRecord)
	t.startedAt = t.now()
}

// SubmitAnswer grades and records answer, replacing any earlier answer to
// the same question. It reports whether the answer earned full credit.
func (t *AnswerTracker) SubmitAnswer(ctx context.Context, questionID, answer string) (bool, error) {
	if t.exercise == nil {
		return false, ErrNoActiveExercise
	}

	evaluation, err := t.evaluator.Evaluate(t.exercise, questionID, answer)
	if err != nil {
		t.logger.LogMalformedQuestion(ctx, t.exercise.Type(), err)
	}

	t.answers[questionID] = &models.AnswerRecord{
		QuestionID:      questionID,
		SubmittedAnswer: answer,
		CreditAwarded:   evaluation.Credit,
		IsFullyCorrect:  evaluation.FullyCorrect,
		Timestamp:       t.now(),
	}
	return evaluation.FullyCorrect, nil
}

func (t *AnswerTracker) GetAnswer(questionID string) (models.AnswerRecord, bool) {
	record, ok := t.answers[questionID]
	if !ok {
		return models.AnswerRecord{}, false
	}
	return *record, true
}

// GetAllAnswers returns a copy of the recorded answers keyed by question id.
func (t *AnswerTracker) GetAllAnswers() map[string]models.AnswerRecord {
	out := make(map[string]models.AnswerRecord, len(t.answers))
	for id, record := range t.answers {
		out[id] = *record
	}
	return out
}

// RemoveAnswer forgets the answer to one question. It reports whether there
// was one.
func (t *AnswerTracker) RemoveAnswer(questionID string) bool {
	if _, ok := t.answers[questionID]; !ok {
		return false
	}
	delete(t.answers, questionID)
	return true
}

// ResetAnswers clears every answer and keeps the current exercise.
func (t *AnswerTracker) ResetAnswers() {
	t.answers = make(map[string]*models.AnswerRecord)
}

// AnsweredCount counts answered scorable units. Answers recorded under ids
// the exercise does not define are not counted.
func (t *AnswerTracker) AnsweredCount() int {
	if t.exercise == nil {
		return 0
	}

	count := 0
	for _, id := range t.exercise.UnitIDs() {
		if _, ok := t.answers[id]; ok {
			count++
		}
	}
	return count
}

func (t *AnswerTracker) AreAllQuestionsAnswered() bool {
	if t.exercise == nil {
		return false
	}
	total := t.exercise.TotalQuestions()
	return total > 0 && t.AnsweredCount() >= total
}

func (t *AnswerTracker) Exercise() *models.Exercise {
	return t.exercise
}

func (t *AnswerTracker) StartedAt() time.Time {
	return t.startedAt
}
