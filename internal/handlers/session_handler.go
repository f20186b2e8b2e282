package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
	"github.com/SAP-F-2025/exercise-engine/internal/services"
	"github.com/SAP-F-2025/exercise-engine/internal/utils"
	"github.com/SAP-F-2025/exercise-engine/internal/validator"
)

// SessionHandler exposes the single learner session over HTTP. The
// ProgressReporter is not safe for concurrent use, so every handler holds mu.
type SessionHandler struct {
	BaseHandler
	mu        sync.Mutex
	reporter  *services.ProgressReporter
	validator *validator.Validator
}

type StartExerciseRequest struct {
	Exercise *models.Exercise `json:"exercise" validate:"required"`
}

type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required,max=200"`
	Answer     string `json:"answer" validate:"max=2000"`
}

type SelectMatchRequest struct {
	Side  string `json:"side" validate:"required,oneof=left right"`
	Index *int   `json:"index" validate:"required,min=0"`
}

type CompleteExerciseRequest struct {
	LessonID string `json:"lesson_id" validate:"required,lesson_id"`
}

type SubmitAnswerResponse struct {
	QuestionID string                 `json:"question_id"`
	Correct    bool                   `json:"correct"`
	Progress   models.SessionProgress `json:"progress"`
}

type SessionProgressResponse struct {
	models.SessionProgress
	Matching *services.MatchingState `json:"matching,omitempty"`
}

type CompleteExerciseResponse struct {
	Result    *models.Result `json:"result"`
	Persisted bool           `json:"persisted"`
}

func NewSessionHandler(
	reporter *services.ProgressReporter,
	validator *validator.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(logger),
		reporter:    reporter,
		validator:   validator,
	}
}

// StartExercise begins a new attempt, discarding any unsaved one
// @Router /session/start [post]
func (h *SessionHandler) StartExercise(c *gin.Context) {
	var req StartExerciseRequest
	if !h.bindAndValidate(c, h.validator.Validate, &req) {
		return
	}
	if err := h.validator.ValidateExercise(req.Exercise); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Starting exercise",
		"exercise_type", req.Exercise.Type(),
		"title", req.Exercise.Title)

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.reporter.StartExercise(h.requestContext(c), req.Exercise); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Exercise started", h.reporter.Progress())
}

// SubmitAnswer grades one answer and records it
// @Router /session/answers [post]
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	var req SubmitAnswerRequest
	if !h.bindAndValidate(c, h.validator.Validate, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	correct, err := h.reporter.SubmitAnswer(h.requestContext(c), req.QuestionID, req.Answer)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SubmitAnswerResponse{
		QuestionID: req.QuestionID,
		Correct:    correct,
		Progress:   h.reporter.Progress(),
	})
}

// GetAnswers lists every recorded answer of the current attempt
// @Router /session/answers [get]
func (h *SessionHandler) GetAnswers(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.JSON(http.StatusOK, h.reporter.GetAllAnswers())
}

// @Router /session/answers/{question_id} [get]
func (h *SessionHandler) GetAnswer(c *gin.Context) {
	questionID := ParseStringIDParam(c, "question_id")
	if questionID == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	record, ok := h.reporter.GetAnswer(questionID)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "No answer recorded for question",
			Details: questionID,
		})
		return
	}
	c.JSON(http.StatusOK, record)
}

// ResetAnswers clears the answers of the running attempt
// @Router /session/reset [post]
func (h *SessionHandler) ResetAnswers(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.reporter.ResetAnswers(h.requestContext(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Answers reset", h.reporter.Progress())
}

// GetProgress reports the session state and, for matching exercises, the board
// @Router /session/progress [get]
func (h *SessionHandler) GetProgress(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	resp := SessionProgressResponse{SessionProgress: h.reporter.Progress()}
	if state, err := h.reporter.MatchingState(); err == nil {
		resp.Matching = state
	}
	c.JSON(http.StatusOK, resp)
}

// SelectMatch picks one item on the matching board
// @Router /session/matching/select [post]
func (h *SessionHandler) SelectMatch(c *gin.Context) {
	var req SelectMatchRequest
	if !h.bindAndValidate(c, h.validator.Validate, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	commit, err := h.reporter.SelectMatch(h.requestContext(c), services.MatchSide(req.Side), *req.Index)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	state, err := h.reporter.MatchingState()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"commit":   commit,
		"matching": state,
	})
}

// Unmatch dissolves the pair of a left item
// @Router /session/matching/pairs/{left} [delete]
func (h *SessionHandler) Unmatch(c *gin.Context) {
	left, ok := ParseIndexParam(c, "left")
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	removed, err := h.reporter.Unmatch(h.requestContext(c), left)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Left item has no pair",
			Details: left,
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteExercise scores and closes the attempt and stores the result. A
// storage failure still returns the result with persisted set to false.
// @Router /session/complete [post]
func (h *SessionHandler) CompleteExercise(c *gin.Context) {
	var req CompleteExerciseRequest
	if !h.bindAndValidate(c, h.validator.Validate, &req) {
		return
	}

	h.LogRequest(c, "Completing exercise", "lesson_id", req.LessonID)

	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := h.reporter.CompleteExercise(h.requestContext(c), req.LessonID)
	var storageErr *services.StorageFailureError
	switch {
	case err == nil:
		h.RespondWithSuccess(c, http.StatusOK, "Exercise completed", CompleteExerciseResponse{
			Result:    result,
			Persisted: true,
		})
	case errors.As(err, &storageErr) && result != nil:
		h.LogError(c, err, "Exercise completed but result was not saved", "lesson_id", req.LessonID)
		h.RespondWithSuccess(c, http.StatusOK, "Exercise completed but result could not be saved", CompleteExerciseResponse{
			Result:    result,
			Persisted: false,
		})
	default:
		h.handleServiceError(c, err)
	}
}
