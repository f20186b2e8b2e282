package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
)

// ServiceLogger provides structured logging for session operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service     string
	Component   string
	EnableDebug bool
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

// Logger returns the underlying slog logger with service attributes attached.
func (l *ServiceLogger) Logger() *slog.Logger {
	return l.logger
}

// ===== OPERATION LOGGING =====

func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, exerciseType models.ExerciseType, duration time.Duration, err error) {
	level := slog.LevelDebug
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		switch {
		case IsProtocolError(err):
			level = slog.LevelWarn
			status = "protocol_error"
		case IsSelectionError(err), IsValidation(err):
			level = slog.LevelWarn
			status = "rejected"
		case IsStorageFailure(err):
			status = "storage_failure"
		}
	}

	if level == slog.LevelDebug && !l.config.EnableDebug {
		return
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("exercise_type", string(exerciseType)),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		if sfe, ok := err.(*StorageFailureError); ok {
			attrs = append(attrs, slog.String("lesson_id", sfe.LessonID))
		}
	}

	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

func (l *ServiceLogger) LogMalformedQuestion(ctx context.Context, exerciseType models.ExerciseType, err error) {
	attrs := []slog.Attr{
		slog.String("exercise_type", string(exerciseType)),
	}

	if mqe, ok := err.(*MalformedQuestionError); ok {
		attrs = append(attrs,
			slog.String("question_id", mqe.QuestionID),
			slog.String("reason", mqe.Reason),
		)
	} else {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Malformed question graded as zero credit", attrs...)
}

// ===== CONTEXT HELPERS =====

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID attaches a request id that operation logs will carry.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// OperationLogger times one operation and logs its outcome.
type OperationLogger struct {
	logger       *ServiceLogger
	operation    string
	exerciseType models.ExerciseType
	startTime    time.Time
	ctx          context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation string, exerciseType models.ExerciseType) *OperationLogger {
	return &OperationLogger{
		logger:       l,
		operation:    operation,
		exerciseType: exerciseType,
		startTime:    time.Now(),
		ctx:          ctx,
	}
}

func (ol *OperationLogger) LogResult(err error) {
	ol.logger.LogOperation(ol.ctx, ol.operation, ol.exerciseType, time.Since(ol.startTime), err)
}
