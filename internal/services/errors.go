package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/exercise-engine/internal/errors"
	"github.com/SAP-F-2025/exercise-engine/internal/models"
)

// ===== SESSION ERRORS =====

var (
	// Protocol errors: the caller drove the session out of order.
	ErrNoActiveExercise    = errors.New("no active exercise")
	ErrAttemptCompleted    = errors.New("attempt already completed")
	ErrNotMatchingExercise = errors.New("active exercise is not a matching exercise")

	// Matching selection errors
	ErrItemAlreadyMatched   = errors.New("item is already part of a committed pair")
	ErrMatchIndexOutOfRange = errors.New("match index out of range")
	ErrInvalidMatchSide     = errors.New("match side must be left or right")

	// Content errors. Never returned from a session operation; they are
	// absorbed as zero credit and only appear in logs.
	ErrMalformedQuestion = errors.New("malformed question")

	ErrValidationFailed = errors.New("validation failed")
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// StorageFailureError reports that a completed result could not be persisted.
// The result itself is still returned alongside it.
type StorageFailureError struct {
	LessonID     string
	ExerciseType models.ExerciseType
	Err          error
}

func (e *StorageFailureError) Error() string {
	return fmt.Sprintf("persist %s result for lesson %s: %v", e.ExerciseType, e.LessonID, e.Err)
}

func (e *StorageFailureError) Unwrap() error {
	return e.Err
}

// MalformedQuestionError carries the reason a question could not be graded.
type MalformedQuestionError struct {
	QuestionID string
	Reason     string
}

func (e *MalformedQuestionError) Error() string {
	return fmt.Sprintf("malformed question %s: %s", e.QuestionID, e.Reason)
}

func (e *MalformedQuestionError) Unwrap() error {
	return ErrMalformedQuestion
}

func newMalformed(questionID, reason string) error {
	return &MalformedQuestionError{QuestionID: questionID, Reason: reason}
}

// ===== ERROR HELPERS =====

// IsProtocolError reports whether err is a session protocol violation
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrNoActiveExercise) ||
		errors.Is(err, ErrAttemptCompleted) ||
		errors.Is(err, ErrNotMatchingExercise)
}

// IsSelectionError reports whether err is a rejected matching selection
func IsSelectionError(err error) bool {
	return errors.Is(err, ErrItemAlreadyMatched) ||
		errors.Is(err, ErrMatchIndexOutOfRange) ||
		errors.Is(err, ErrInvalidMatchSide)
}

func IsStorageFailure(err error) bool {
	var sfe *StorageFailureError
	return errors.As(err, &sfe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

func IsMalformedQuestion(err error) bool {
	return errors.Is(err, ErrMalformedQuestion)
}
