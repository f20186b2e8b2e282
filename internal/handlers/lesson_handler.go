package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
	"github.com/SAP-F-2025/exercise-engine/internal/services"
	"github.com/SAP-F-2025/exercise-engine/internal/utils"
	"github.com/SAP-F-2025/exercise-engine/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LessonHandler serves stored lesson results. It never touches session state.
type LessonHandler struct {
	BaseHandler
	reporter      *services.ProgressReporter
	exportService services.ResultExportService
	validator     *validator.Validator
}

type CompletionStatusRequest struct {
	Exercises []*models.Exercise `json:"exercises" validate:"required,min=1,max=20"`
}

func NewLessonHandler(
	reporter *services.ProgressReporter,
	exportService services.ResultExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *LessonHandler {
	return &LessonHandler{
		BaseHandler:   NewBaseHandler(logger),
		reporter:      reporter,
		exportService: exportService,
		validator:     validator,
	}
}

// GetCompletionStatus reports which of the given exercises have a stored result
// @Router /lessons/{lesson_id}/status [post]
func (h *LessonHandler) GetCompletionStatus(c *gin.Context) {
	lessonID := ParseStringIDParam(c, "lesson_id")
	if lessonID == "" {
		return
	}

	var req CompletionStatusRequest
	if !h.bindAndValidate(c, h.validator.Validate, &req) {
		return
	}
	for i, exercise := range req.Exercises {
		if err := h.validator.ValidateExercise(exercise); err != nil {
			h.RespondWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid exercise at index %d", i), err, err)
			return
		}
	}

	status, err := h.reporter.GetCompletionStatus(h.requestContext(c), lessonID, req.Exercises)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// ExportResults downloads the stored results of a lesson as a workbook
// @Router /lessons/{lesson_id}/results/export [get]
func (h *LessonHandler) ExportResults(c *gin.Context) {
	lessonID := ParseStringIDParam(c, "lesson_id")
	if lessonID == "" {
		return
	}

	h.LogRequest(c, "Exporting lesson results", "lesson_id", lessonID)

	data, err := h.exportService.ExportLessonResults(h.requestContext(c), lessonID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", lessonID+"-results.xlsx"))
	c.Data(http.StatusOK, xlsxContentType, data)
}
