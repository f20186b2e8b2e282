package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
	"github.com/SAP-F-2025/exercise-engine/internal/repositories"
	"github.com/SAP-F-2025/exercise-engine/internal/services"
	"github.com/SAP-F-2025/exercise-engine/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return utils.GetLoggerFromContext(c, h.logger)
}

// requestContext carries the request id down to service operation logs.
func (h *BaseHandler) requestContext(c *gin.Context) context.Context {
	return services.WithRequestID(c.Request.Context(), utils.GetRequestID(c))
}

// LogRequest logs an incoming request with its handler-specific fields
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"remote_addr", c.ClientIP()}, additionalFields...)
	h.requestLogger(c).Info(message, fields...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.requestLogger(c).LogError(err, message, additionalFields...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Warn(message, additionalFields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode, "error", err)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// handleServiceError maps engine and storage errors to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	var storageErr *services.StorageFailureError
	if errors.As(err, &storageErr) {
		h.RespondWithError(c, http.StatusServiceUnavailable, "Result storage unavailable", err, map[string]interface{}{
			"lesson_id":     storageErr.LessonID,
			"exercise_type": storageErr.ExerciseType,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, repositories.ErrInvalidLessonID),
		errors.Is(err, models.ErrUnknownExerciseType):
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, err.Error())
	case errors.Is(err, services.ErrNoActiveExercise):
		h.RespondWithError(c, http.StatusConflict, "No exercise has been started", err)
	case errors.Is(err, services.ErrAttemptCompleted):
		h.RespondWithError(c, http.StatusConflict, "Exercise attempt is already completed", err)
	case errors.Is(err, services.ErrNotMatchingExercise):
		h.RespondWithError(c, http.StatusConflict, "Active exercise is not a matching exercise", err)
	case errors.Is(err, services.ErrItemAlreadyMatched):
		h.RespondWithError(c, http.StatusConflict, "Item is already matched", err)
	case errors.Is(err, services.ErrMatchIndexOutOfRange),
		errors.Is(err, services.ErrInvalidMatchSide):
		h.RespondWithError(c, http.StatusBadRequest, "Invalid match selection", err, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		h.RespondWithError(c, http.StatusGatewayTimeout, "Request timed out", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// bindAndValidate decodes the JSON body into req and runs struct validation.
// It writes the error response itself and reports whether to continue.
func (h *BaseHandler) bindAndValidate(c *gin.Context, validate func(interface{}) error, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return false
	}
	if err := validate(req); err != nil {
		h.handleServiceError(c, err)
		return false
	}
	return true
}
