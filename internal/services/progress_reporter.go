package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/exercise-engine/internal/events"
	"github.com/SAP-F-2025/exercise-engine/internal/models"
	"github.com/SAP-F-2025/exercise-engine/internal/repositories"
)

const DefaultPersistTimeout = 3 * time.Second

type ProgressReporterConfig struct {
	// PersistTimeout bounds the storage write made on completion.
	PersistTimeout time.Duration
	EnableDebug    bool
}

// MatchingState is a snapshot of the matching board.
type MatchingState struct {
	Pending        PendingSelection   `json:"pending"`
	Pairs          []models.MatchPair `json:"pairs"`
	UnmatchedLeft  []int              `json:"unmatched_left"`
	UnmatchedRight []int              `json:"unmatched_right"`
}

// ProgressReporter drives one learner's exercise session through
// idle, in progress and completed, and persists completed results.
// It is not safe for concurrent use.
type ProgressReporter struct {
	storage    repositories.Storage
	publisher  events.EventPublisher
	logger     *ServiceLogger
	tracker    *AnswerTracker
	aggregator *ResultAggregator
	config     ProgressReporterConfig
	now        func() time.Time

	state    models.SessionState
	matching *MatchingSession
	result   *models.Result
}

func NewProgressReporter(
	storage repositories.Storage,
	publisher events.EventPublisher,
	logger *slog.Logger,
	config ProgressReporterConfig,
) *ProgressReporter {
	if publisher == nil {
		publisher = events.NoopEventPublisher{}
	}
	if config.PersistTimeout <= 0 {
		config.PersistTimeout = DefaultPersistTimeout
	}

	serviceLogger := NewServiceLogger(logger, LogConfig{
		Service:     "exercise-engine",
		Component:   "progress_reporter",
		EnableDebug: config.EnableDebug,
	})

	return &ProgressReporter{
		storage:    storage,
		publisher:  publisher,
		logger:     serviceLogger,
		tracker:    NewAnswerTracker(NewEvaluator(), serviceLogger),
		aggregator: NewResultAggregator(),
		config:     config,
		now:        time.Now,
		state:      models.SessionIdle,
	}
}

// ===== SESSION LIFECYCLE =====

// StartExercise begins a new attempt at exercise. Any unsaved state of the
// previous attempt is discarded.
func (r *ProgressReporter) StartExercise(ctx context.Context, exercise *models.Exercise) error {
	if exercise == nil || exercise.Payload == nil {
		return fmt.Errorf("%w: exercise with a payload is required", ErrValidationFailed)
	}

	op := r.logger.WithOperation(ctx, "start_exercise", exercise.Type())

	r.tracker.StartExercise(exercise)
	r.result = nil
	r.matching = nil
	if payload, ok := exercise.Payload.(*models.MatchingPayload); ok {
		r.matching = NewMatchingSession(payload, r.tracker)
	}
	r.state = models.SessionInProgress

	r.logger.Logger().Info("Exercise started",
		"exercise_type", exercise.Type(),
		"title", exercise.Title,
		"total_questions", exercise.TotalQuestions())

	op.LogResult(nil)
	return nil
}

// SubmitAnswer grades and records one answer. For matching exercises a
// match-key answer always goes through the matching board, so each item
// stays in at most one pair. An answer that names no usable right item
// earns no credit and unpairs the left item.
func (r *ProgressReporter) SubmitAnswer(ctx context.Context, questionID, answer string) (correct bool, err error) {
	op := r.logger.WithOperation(ctx, "submit_answer", r.exerciseType())
	defer func() { op.LogResult(err) }()

	if err := r.requireInProgress(); err != nil {
		return false, err
	}

	if r.matching != nil {
		if left, isKey := models.ParseMatchKey(questionID); isKey {
			commit, err := r.matching.Submit(ctx, left, answer)
			if err != nil || commit == nil {
				return false, err
			}
			return commit.IsCorrect, nil
		}
	}

	return r.tracker.SubmitAnswer(ctx, questionID, answer)
}

// ResetAnswers clears the answers of the running attempt and keeps its exercise.
func (r *ProgressReporter) ResetAnswers(ctx context.Context) (err error) {
	op := r.logger.WithOperation(ctx, "reset_answers", r.exerciseType())
	defer func() { op.LogResult(err) }()

	if err := r.requireInProgress(); err != nil {
		return err
	}

	r.tracker.ResetAnswers()
	if r.matching != nil {
		r.matching.Reset()
	}
	return nil
}

// CompleteExercise scores the attempt, closes it and persists the result for
// lessonID. When persisting fails the result is still returned, together with
// a *StorageFailureError.
func (r *ProgressReporter) CompleteExercise(ctx context.Context, lessonID string) (result *models.Result, err error) {
	op := r.logger.WithOperation(ctx, "complete_exercise", r.exerciseType())
	defer func() { op.LogResult(err) }()

	if err := r.requireInProgress(); err != nil {
		return nil, err
	}
	if lessonID == "" {
		return nil, fmt.Errorf("%w: lesson id is required", ErrValidationFailed)
	}

	exercise := r.tracker.Exercise()
	result = r.aggregator.CalculateResults(exercise, r.tracker.GetAllAnswers())
	completedAt := r.now()
	result.CompletedAt = &completedAt

	r.result = result
	r.state = models.SessionCompleted

	r.logger.Logger().Info("Exercise completed",
		"lesson_id", lessonID,
		"exercise_type", result.ExerciseType,
		"percentage", result.Percentage,
		"passed", result.Passed)

	if err := r.persist(ctx, lessonID, result); err != nil {
		return result, err
	}

	r.publishCompleted(ctx, lessonID, exercise.Title, result)
	return result, nil
}

func (r *ProgressReporter) persist(ctx context.Context, lessonID string, result *models.Result) error {
	if r.storage == nil {
		return nil
	}

	persistCtx, cancel := context.WithTimeout(ctx, r.config.PersistTimeout)
	defer cancel()

	if err := r.storage.SaveExerciseResult(persistCtx, lessonID, result.ExerciseType, result); err != nil {
		return &StorageFailureError{
			LessonID:     lessonID,
			ExerciseType: result.ExerciseType,
			Err:          err,
		}
	}
	return nil
}

func (r *ProgressReporter) publishCompleted(ctx context.Context, lessonID, title string, result *models.Result) {
	event := events.NewExerciseCompletedEvent(lessonID, title, result)
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Logger().Warn("Failed to publish exercise completed event",
			"lesson_id", lessonID,
			"event_id", event.ID,
			"error", err)
	}
}

// ===== MATCHING =====

// SelectMatch picks a left or right item on the matching board.
func (r *ProgressReporter) SelectMatch(ctx context.Context, side MatchSide, index int) (commit *MatchCommit, err error) {
	op := r.logger.WithOperation(ctx, "select_match", r.exerciseType())
	defer func() { op.LogResult(err) }()

	if err := r.requireMatching(); err != nil {
		return nil, err
	}
	return r.matching.Select(ctx, side, index)
}

// Unmatch dissolves the pair of a left item. It reports whether one existed.
func (r *ProgressReporter) Unmatch(ctx context.Context, left int) (removed bool, err error) {
	op := r.logger.WithOperation(ctx, "unmatch", r.exerciseType())
	defer func() { op.LogResult(err) }()

	if err := r.requireMatching(); err != nil {
		return false, err
	}
	return r.matching.Unmatch(left), nil
}

func (r *ProgressReporter) MatchingState() (*MatchingState, error) {
	if r.state == models.SessionIdle {
		return nil, ErrNoActiveExercise
	}
	if r.matching == nil {
		return nil, ErrNotMatchingExercise
	}
	return &MatchingState{
		Pending:        r.matching.Pending(),
		Pairs:          r.matching.Pairs(),
		UnmatchedLeft:  r.matching.UnmatchedLeft(),
		UnmatchedRight: r.matching.UnmatchedRight(),
	}, nil
}

// ===== QUERIES =====

func (r *ProgressReporter) GetAnswer(questionID string) (models.AnswerRecord, bool) {
	return r.tracker.GetAnswer(questionID)
}

func (r *ProgressReporter) GetAllAnswers() map[string]models.AnswerRecord {
	return r.tracker.GetAllAnswers()
}

func (r *ProgressReporter) AreAllQuestionsAnswered() bool {
	return r.tracker.AreAllQuestionsAnswered()
}

func (r *ProgressReporter) State() models.SessionState {
	return r.state
}

func (r *ProgressReporter) Exercise() *models.Exercise {
	return r.tracker.Exercise()
}

// LastResult is the result of the completed attempt, or nil before completion.
func (r *ProgressReporter) LastResult() *models.Result {
	return r.result
}

func (r *ProgressReporter) Progress() models.SessionProgress {
	progress := models.SessionProgress{State: r.state}

	exercise := r.tracker.Exercise()
	if exercise == nil {
		return progress
	}

	progress.ExerciseType = exercise.Type()
	progress.Answered = r.tracker.AnsweredCount()
	progress.Total = exercise.TotalQuestions()
	progress.AllAnswered = r.tracker.AreAllQuestionsAnswered()
	if progress.Total > 0 {
		progress.ProgressPercentage = float64(progress.Answered) / float64(progress.Total) * 100
	}
	return progress
}

// GetCompletionStatus reports, for each exercise type in exercises, whether
// lessonID has a stored result. It does not touch session state.
func (r *ProgressReporter) GetCompletionStatus(ctx context.Context, lessonID string, exercises []*models.Exercise) (map[models.ExerciseType]models.CompletionStatus, error) {
	if r.storage == nil {
		return nil, fmt.Errorf("completion status: no storage configured")
	}

	stored, err := r.storage.GetExerciseResults(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exercise results: %w", err)
	}

	status := make(map[models.ExerciseType]models.CompletionStatus, len(exercises))
	for _, exercise := range exercises {
		if exercise == nil {
			continue
		}
		result, ok := stored[exercise.Type()]
		status[exercise.Type()] = models.CompletionStatus{
			Completed: ok && result != nil,
			Result:    result,
		}
	}
	return status, nil
}

// ===== HELPERS =====

func (r *ProgressReporter) requireInProgress() error {
	switch r.state {
	case models.SessionIdle:
		return ErrNoActiveExercise
	case models.SessionCompleted:
		return ErrAttemptCompleted
	}
	return nil
}

func (r *ProgressReporter) requireMatching() error {
	if err := r.requireInProgress(); err != nil {
		return err
	}
	if r.matching == nil {
		return ErrNotMatchingExercise
	}
	return nil
}

func (r *ProgressReporter) exerciseType() models.ExerciseType {
	return r.tracker.Exercise().Type()
}
