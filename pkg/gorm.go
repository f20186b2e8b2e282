package pkg

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/exercise-engine/internal/config"
	"github.com/SAP-F-2025/exercise-engine/internal/models"
)

// InitDatabase connects to PostgreSQL and migrates the exercise result table.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsProduction() {
		logLevel = logger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.ExerciseResult{}); err != nil {
		return nil, fmt.Errorf("failed to migrate exercise results: %w", err)
	}

	return db, nil
}
