package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exercise-engine/internal/services"
	"github.com/SAP-F-2025/exercise-engine/internal/utils"
	"github.com/SAP-F-2025/exercise-engine/internal/validator"
)

type HandlerManager struct {
	sessionHandler *SessionHandler
	lessonHandler  *LessonHandler
	logger         utils.Logger
}

func NewHandlerManager(
	reporter *services.ProgressReporter,
	exportService services.ResultExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler: NewSessionHandler(reporter, validator, logger),
		lessonHandler:  NewLessonHandler(reporter, exportService, validator, logger),
		logger:         logger,
	}
}

// NewRouter builds a gin engine with recovery, request ids, request logging
// and every API route.
func (hm *HandlerManager) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestID(hm.logger), utils.LoggerMiddleware(hm.logger))
	hm.SetupRoutes(router)
	return router
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		session := v1.Group("/session")
		{
			session.POST("/start", hm.sessionHandler.StartExercise)
			session.POST("/answers", hm.sessionHandler.SubmitAnswer)
			session.GET("/answers", hm.sessionHandler.GetAnswers)
			session.GET("/answers/:question_id", hm.sessionHandler.GetAnswer)
			session.POST("/reset", hm.sessionHandler.ResetAnswers)
			session.GET("/progress", hm.sessionHandler.GetProgress)
			session.POST("/complete", hm.sessionHandler.CompleteExercise)

			session.POST("/matching/select", hm.sessionHandler.SelectMatch)
			session.DELETE("/matching/pairs/:left", hm.sessionHandler.Unmatch)
		}

		lessons := v1.Group("/lessons")
		{
			lessons.POST("/:lesson_id/status", hm.lessonHandler.GetCompletionStatus)
			lessons.GET("/:lesson_id/results/export", hm.lessonHandler.ExportResults)
		}
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "exercise-engine",
	})
}
