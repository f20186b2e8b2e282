package pkg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/exercise-engine/internal/cache"
	"github.com/SAP-F-2025/exercise-engine/internal/config"
	"github.com/SAP-F-2025/exercise-engine/internal/repositories"
	"github.com/SAP-F-2025/exercise-engine/internal/repositories/memory"
	"github.com/SAP-F-2025/exercise-engine/internal/repositories/postgres"
	"github.com/SAP-F-2025/exercise-engine/internal/repositories/sqlite"
)

var ErrUnknownStorageDriver = errors.New("unknown storage driver")

// NewStorage builds the result store selected by STORAGE_DRIVER and wraps it
// in a redis read cache when REDIS_URL is set.
func NewStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.ClosableStorage, error) {
	var store repositories.ClosableStorage

	switch cfg.StorageDriver {
	case config.StorageMemory:
		store = memory.NewResultStore()
	case config.StoragePostgres:
		db, err := InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		store = postgres.NewExerciseResultPostgreSQL(db)
	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqlite.NewResultStore(db)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorageDriver, cfg.StorageDriver)
	}

	logger.Info("Result storage ready", "driver", cfg.StorageDriver)

	if cfg.RedisURL == "" {
		return store, nil
	}

	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	logger.Info("Result cache enabled", "ttl", cfg.ResultCacheTTL)

	cached := repositories.NewCachedStorage(store, cache.NewRedisCache(client, logger), cfg.ResultCacheTTL, logger)
	if cfg.StorageDriver == config.StorageMemory {
		// a fresh in-memory store holds nothing the cache may have kept
		if err := cached.Purge(ctx); err != nil {
			logger.Warn("Failed to purge result cache", "error", err)
		}
	}
	return cached, nil
}
