package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exercise-engine/internal/events"
	"github.com/SAP-F-2025/exercise-engine/internal/models"
)

// MockStorage is a mock implementation of repositories.Storage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveExerciseResult(ctx context.Context, lessonID string, exerciseType models.ExerciseType, result *models.Result) error {
	args := m.Called(ctx, lessonID, exerciseType, result)
	return args.Error(0)
}

func (m *MockStorage) GetExerciseResults(ctx context.Context, lessonID string) (map[models.ExerciseType]*models.Result, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.ExerciseType]*models.Result), args.Error(1)
}

func newTestReporter(storage *MockStorage) (*ProgressReporter, *events.MockEventPublisher) {
	publisher := events.NewMockEventPublisher(testLogger())
	reporter := NewProgressReporter(storage, publisher, testLogger(), ProgressReporterConfig{PersistTimeout: time.Second})
	return reporter, publisher
}

func TestProgressReporter_ProtocolBeforeStart(t *testing.T) {
	reporter, _ := newTestReporter(new(MockStorage))
	ctx := context.Background()

	assert.Equal(t, models.SessionIdle, reporter.State())

	_, err := reporter.SubmitAnswer(ctx, "q1", "kota")
	assert.ErrorIs(t, err, ErrNoActiveExercise)

	_, err = reporter.CompleteExercise(ctx, "lesson-1")
	assert.ErrorIs(t, err, ErrNoActiveExercise)

	assert.ErrorIs(t, reporter.ResetAnswers(ctx), ErrNoActiveExercise)
	assert.True(t, IsProtocolError(err))
}

func TestProgressReporter_StartRequiresExercise(t *testing.T) {
	reporter, _ := newTestReporter(new(MockStorage))

	err := reporter.StartExercise(context.Background(), nil)
	assert.True(t, IsValidation(err))
	assert.Equal(t, models.SessionIdle, reporter.State())
}

func TestProgressReporter_FillBlankScenario(t *testing.T) {
	storage := new(MockStorage)
	reporter, publisher := newTestReporter(storage)
	ctx := context.Background()

	require.NoError(t, reporter.StartExercise(ctx, fillBlankExercise()))
	assert.Equal(t, models.SessionInProgress, reporter.State())

	correct, err := reporter.SubmitAnswer(ctx, "q1", "Kota")
	require.NoError(t, err)
	assert.True(t, correct)

	correct, err = reporter.SubmitAnswer(ctx, "q2", "pies")
	require.NoError(t, err)
	assert.False(t, correct)

	storage.On("SaveExerciseResult", mock.Anything, "lesson-1", models.ExerciseFillBlank, mock.AnythingOfType("*models.Result")).Return(nil)

	result, err := reporter.CompleteExercise(ctx, "lesson-1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.CorrectAnswers)
	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 50, result.Percentage)
	assert.False(t, result.Passed)
	require.NotNil(t, result.CompletedAt)

	assert.Equal(t, models.SessionCompleted, reporter.State())
	assert.Same(t, result, reporter.LastResult())
	storage.AssertExpectations(t)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventExerciseCompleted, published[0].Type)
}

func TestProgressReporter_MultipleChoiceScenario(t *testing.T) {
	storage := new(MockStorage)
	reporter, _ := newTestReporter(storage)
	ctx := context.Background()

	require.NoError(t, reporter.StartExercise(ctx, multipleChoiceExercise()))
	for id, answer := range map[string]string{"m1": "kot", "m2": "0", "m3": "2"} {
		correct, err := reporter.SubmitAnswer(ctx, id, answer)
		require.NoError(t, err)
		assert.True(t, correct, id)
	}
	assert.True(t, reporter.AreAllQuestionsAnswered())

	storage.On("SaveExerciseResult", mock.Anything, "lesson-1", models.ExerciseMultipleChoice, mock.Anything).Return(nil)

	result, err := reporter.CompleteExercise(ctx, "lesson-1")
	require.NoError(t, err)
	assert.Equal(t, 100, result.Percentage)
	assert.True(t, result.Passed)
}

func TestProgressReporter_MatchingScenario(t *testing.T) {
	storage := new(MockStorage)
	reporter, _ := newTestReporter(storage)
	ctx := context.Background()

	exercise := &models.Exercise{Payload: &models.MatchingPayload{
		LeftItems:      []string{"kot"},
		RightItems:     []string{"dog", "cat"},
		CorrectMatches: []models.MatchPair{{Left: 0, Right: 1}},
	}}
	require.NoError(t, reporter.StartExercise(ctx, exercise))

	commit, err := reporter.SelectMatch(ctx, MatchSideLeft, 0)
	require.NoError(t, err)
	assert.Nil(t, commit)

	commit, err = reporter.SelectMatch(ctx, MatchSideRight, 1)
	require.NoError(t, err)
	assert.True(t, commit.IsCorrect)

	state, err := reporter.MatchingState()
	require.NoError(t, err)
	assert.Equal(t, []models.MatchPair{{Left: 0, Right: 1}}, state.Pairs)
	assert.Empty(t, state.UnmatchedLeft)

	storage.On("SaveExerciseResult", mock.Anything, "lesson-1", models.ExerciseMatching, mock.Anything).Return(nil)

	result, err := reporter.CompleteExercise(ctx, "lesson-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalQuestions)
	assert.Equal(t, 1.0, result.CorrectAnswers)
	assert.Equal(t, 100, result.Percentage)
}

func TestProgressReporter_MatchingThroughSubmitAnswer(t *testing.T) {
	reporter, _ := newTestReporter(new(MockStorage))
	ctx := context.Background()
	require.NoError(t, reporter.StartExercise(ctx, matchingExercise()))

	correct, err := reporter.SubmitAnswer(ctx, models.MatchKey(0), "1")
	require.NoError(t, err)
	assert.True(t, correct)

	_, err = reporter.SubmitAnswer(ctx, models.MatchKey(1), "1")
	assert.ErrorIs(t, err, ErrItemAlreadyMatched)

	state, err := reporter.MatchingState()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, state.UnmatchedLeft)

	removed, err := reporter.Unmatch(ctx, 0)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, reporter.GetAllAnswers())
}

func TestProgressReporter_MatchingSubmitKeepsBoardInSync(t *testing.T) {
	reporter, _ := newTestReporter(new(MockStorage))
	ctx := context.Background()
	require.NoError(t, reporter.StartExercise(ctx, matchingExercise()))

	// surrounding whitespace still names right item 1
	correct, err := reporter.SubmitAnswer(ctx, models.MatchKey(0), " 1")
	require.NoError(t, err)
	assert.True(t, correct)

	state, err := reporter.MatchingState()
	require.NoError(t, err)
	assert.Equal(t, []models.MatchPair{{Left: 0, Right: 1}}, state.Pairs)
	assert.Equal(t, []int{1, 2}, state.UnmatchedLeft)

	// the board now refuses left 0 because it is paired
	_, err = reporter.SelectMatch(ctx, MatchSideLeft, 0)
	assert.ErrorIs(t, err, ErrItemAlreadyMatched)
}

func TestProgressReporter_MatchingUnusableAnswerScoresZero(t *testing.T) {
	reporter, _ := newTestReporter(new(MockStorage))
	ctx := context.Background()
	require.NoError(t, reporter.StartExercise(ctx, matchingExercise()))

	_, err := reporter.SubmitAnswer(ctx, models.MatchKey(0), "1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		answer string
	}{
		{"right index out of range", "9"},
		{"negative right index", "-1"},
		{"not a number", "cat"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, err := reporter.SubmitAnswer(ctx, models.MatchKey(0), tt.answer)
			require.NoError(t, err)
			assert.False(t, correct)

			record, ok := reporter.GetAnswer(models.MatchKey(0))
			require.True(t, ok)
			assert.Zero(t, record.CreditAwarded)
			assert.Equal(t, tt.answer, record.SubmittedAnswer)

			state, err := reporter.MatchingState()
			require.NoError(t, err)
			assert.Empty(t, state.Pairs)
			assert.Equal(t, []int{0, 1, 2}, state.UnmatchedLeft)
			assert.Equal(t, []int{0, 1, 2}, state.UnmatchedRight)
		})
	}

	// the freed left item can be paired again through the board
	commit, err := reporter.SelectMatch(ctx, MatchSideLeft, 0)
	require.NoError(t, err)
	assert.Nil(t, commit)
	commit, err = reporter.SelectMatch(ctx, MatchSideRight, 1)
	require.NoError(t, err)
	require.NotNil(t, commit)
	assert.True(t, commit.IsCorrect)

	record, ok := reporter.GetAnswer(models.MatchKey(0))
	require.True(t, ok)
	assert.Equal(t, 1.0, record.CreditAwarded)
}

func TestProgressReporter_MatchingUnknownLeftScoresZero(t *testing.T) {
	reporter, _ := newTestReporter(new(MockStorage))
	ctx := context.Background()
	require.NoError(t, reporter.StartExercise(ctx, matchingExercise()))

	correct, err := reporter.SubmitAnswer(ctx, models.MatchKey(7), "1")
	require.NoError(t, err)
	assert.False(t, correct)

	state, err := reporter.MatchingState()
	require.NoError(t, err)
	assert.Empty(t, state.Pairs)
	assert.Zero(t, reporter.Progress().Answered)
}

func TestProgressReporter_MatchingOnOtherTypes(t *testing.T) {
	reporter, _ := newTestReporter(new(MockStorage))
	ctx := context.Background()
	require.NoError(t, reporter.StartExercise(ctx, fillBlankExercise()))

	_, err := reporter.SelectMatch(ctx, MatchSideLeft, 0)
	assert.ErrorIs(t, err, ErrNotMatchingExercise)

	_, err = reporter.MatchingState()
	assert.ErrorIs(t, err, ErrNotMatchingExercise)
}

func TestProgressReporter_TranslationScenario(t *testing.T) {
	storage := new(MockStorage)
	reporter, _ := newTestReporter(storage)
	ctx := context.Background()

	exercise := &models.Exercise{Payload: &models.TranslationPayload{Questions: []models.TranslationQuestion{
		{ID: "a", AcceptableAnswers: []string{"dzień dobry"}},
		{ID: "b", AcceptableAnswers: []string{"dzień dobry"}},
		{ID: "c", AcceptableAnswers: []string{"dzień dobry"}},
	}}}
	require.NoError(t, reporter.StartExercise(ctx, exercise))

	correct, err := reporter.SubmitAnswer(ctx, "a", "Dzień Dobry")
	require.NoError(t, err)
	assert.True(t, correct)

	correct, err = reporter.SubmitAnswer(ctx, "b", "dzen dobry")
	require.NoError(t, err)
	assert.False(t, correct)

	correct, err = reporter.SubmitAnswer(ctx, "c", "hello")
	require.NoError(t, err)
	assert.False(t, correct)

	credits := map[string]float64{}
	for id, record := range reporter.GetAllAnswers() {
		credits[id] = record.CreditAwarded
	}
	assert.Equal(t, map[string]float64{"a": 1, "b": 0.5, "c": 0}, credits)

	storage.On("SaveExerciseResult", mock.Anything, "lesson-1", models.ExerciseTranslation, mock.Anything).Return(nil)

	result, err := reporter.CompleteExercise(ctx, "lesson-1")
	require.NoError(t, err)
	assert.Equal(t, 1.5, result.CorrectAnswers)
	assert.Equal(t, 50, result.Percentage)
}

func TestProgressReporter_Reset(t *testing.T) {
	reporter, _ := newTestReporter(new(MockStorage))
	ctx := context.Background()

	require.NoError(t, reporter.StartExercise(ctx, fillBlankExercise()))
	_, _ = reporter.SubmitAnswer(ctx, "q1", "kota")
	_, _ = reporter.SubmitAnswer(ctx, "q2", "psa")
	require.True(t, reporter.AreAllQuestionsAnswered())

	require.NoError(t, reporter.ResetAnswers(ctx))
	assert.False(t, reporter.AreAllQuestionsAnswered())
	assert.Empty(t, reporter.GetAllAnswers())
	assert.Equal(t, models.SessionInProgress, reporter.State())
	assert.Equal(t, models.ExerciseFillBlank, reporter.Exercise().Type())
}

func TestProgressReporter_StorageFailureStillReturnsResult(t *testing.T) {
	storage := new(MockStorage)
	reporter, publisher := newTestReporter(storage)
	ctx := context.Background()

	require.NoError(t, reporter.StartExercise(ctx, fillBlankExercise()))
	_, _ = reporter.SubmitAnswer(ctx, "q1", "kota")

	storage.On("SaveExerciseResult", mock.Anything, "lesson-1", models.ExerciseFillBlank, mock.Anything).
		Return(errors.New("connection reset"))

	result, err := reporter.CompleteExercise(ctx, "lesson-1")
	require.Error(t, err)
	assert.True(t, IsStorageFailure(err))
	require.NotNil(t, result)
	assert.Equal(t, 50, result.Percentage)
	assert.Equal(t, models.SessionCompleted, reporter.State())
	assert.Empty(t, publisher.GetPublishedEvents())

	var sfe *StorageFailureError
	require.ErrorAs(t, err, &sfe)
	assert.Equal(t, "lesson-1", sfe.LessonID)
	assert.EqualError(t, sfe.Unwrap(), "connection reset")
}

func TestProgressReporter_PublishFailureIsNotReturned(t *testing.T) {
	storage := new(MockStorage)
	reporter, publisher := newTestReporter(storage)
	publisher.Err = errors.New("broker unavailable")
	ctx := context.Background()

	require.NoError(t, reporter.StartExercise(ctx, fillBlankExercise()))
	storage.On("SaveExerciseResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := reporter.CompleteExercise(ctx, "lesson-1")
	assert.NoError(t, err)
}

func TestProgressReporter_CompletedAttemptIsClosed(t *testing.T) {
	storage := new(MockStorage)
	reporter, _ := newTestReporter(storage)
	ctx := context.Background()
	storage.On("SaveExerciseResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, reporter.StartExercise(ctx, fillBlankExercise()))
	_, _ = reporter.SubmitAnswer(ctx, "q1", "kota")
	_, err := reporter.CompleteExercise(ctx, "lesson-1")
	require.NoError(t, err)

	_, err = reporter.SubmitAnswer(ctx, "q2", "psa")
	assert.ErrorIs(t, err, ErrAttemptCompleted)
	assert.ErrorIs(t, reporter.ResetAnswers(ctx), ErrAttemptCompleted)
	_, err = reporter.CompleteExercise(ctx, "lesson-1")
	assert.ErrorIs(t, err, ErrAttemptCompleted)

	// Answers remain inspectable until the next start.
	_, ok := reporter.GetAnswer("q1")
	assert.True(t, ok)

	require.NoError(t, reporter.StartExercise(ctx, fillBlankExercise()))
	assert.Equal(t, models.SessionInProgress, reporter.State())
	assert.Empty(t, reporter.GetAllAnswers())
	assert.Nil(t, reporter.LastResult())
}

func TestProgressReporter_CompleteRequiresLessonID(t *testing.T) {
	reporter, _ := newTestReporter(new(MockStorage))
	ctx := context.Background()
	require.NoError(t, reporter.StartExercise(ctx, fillBlankExercise()))

	_, err := reporter.CompleteExercise(ctx, "")
	assert.True(t, IsValidation(err))
	assert.Equal(t, models.SessionInProgress, reporter.State())
}

func TestProgressReporter_Progress(t *testing.T) {
	reporter, _ := newTestReporter(new(MockStorage))
	ctx := context.Background()

	assert.Equal(t, models.SessionProgress{State: models.SessionIdle}, reporter.Progress())

	require.NoError(t, reporter.StartExercise(ctx, multipleChoiceExercise()))
	_, _ = reporter.SubmitAnswer(ctx, "m1", "1")

	progress := reporter.Progress()
	assert.Equal(t, models.SessionInProgress, progress.State)
	assert.Equal(t, 1, progress.Answered)
	assert.Equal(t, 3, progress.Total)
	assert.InDelta(t, 33.33, progress.ProgressPercentage, 0.01)
	assert.False(t, progress.AllAnswered)
}

func TestProgressReporter_GetCompletionStatus(t *testing.T) {
	storage := new(MockStorage)
	reporter, _ := newTestReporter(storage)
	ctx := context.Background()

	stored := &models.Result{ExerciseType: models.ExerciseFillBlank, Percentage: 80, Passed: true}
	storage.On("GetExerciseResults", ctx, "lesson-1").
		Return(map[models.ExerciseType]*models.Result{models.ExerciseFillBlank: stored}, nil)

	status, err := reporter.GetCompletionStatus(ctx, "lesson-1", []*models.Exercise{fillBlankExercise(), translationExercise()})
	require.NoError(t, err)

	assert.Equal(t, models.CompletionStatus{Completed: true, Result: stored}, status[models.ExerciseFillBlank])
	assert.Equal(t, models.CompletionStatus{Completed: false}, status[models.ExerciseTranslation])
	assert.Equal(t, models.SessionIdle, reporter.State(), "status query does not touch the session")
}

func TestProgressReporter_GetCompletionStatusStorageError(t *testing.T) {
	storage := new(MockStorage)
	reporter, _ := newTestReporter(storage)
	ctx := context.Background()

	storage.On("GetExerciseResults", ctx, "lesson-1").Return(nil, errors.New("timeout"))

	_, err := reporter.GetCompletionStatus(ctx, "lesson-1", []*models.Exercise{fillBlankExercise()})
	assert.Error(t, err)
}

func TestProgressReporter_PersistWaitIsBounded(t *testing.T) {
	storage := new(MockStorage)
	storage.On("SaveExerciseResult", mock.Anything, "lesson-1", models.ExerciseFillBlank, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(context.DeadlineExceeded)

	reporter := NewProgressReporter(storage, nil, testLogger(), ProgressReporterConfig{PersistTimeout: 50 * time.Millisecond})
	ctx := context.Background()
	require.NoError(t, reporter.StartExercise(ctx, fillBlankExercise()))

	start := time.Now()
	result, err := reporter.CompleteExercise(ctx, "lesson-1")
	elapsed := time.Since(start)

	require.NotNil(t, result)
	assert.True(t, IsStorageFailure(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, 2*time.Second)
	assert.Equal(t, models.SessionCompleted, reporter.State())
}
