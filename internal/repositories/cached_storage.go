package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/exercise-engine/internal/cache"
	"github.com/SAP-F-2025/exercise-engine/internal/models"
)

const resultCacheKeyPrefix = "exercise-engine:results:"

// CachedStorage serves lesson result reads from a cache in front of another
// Storage. Writes go to the underlying store first and then drop the cached
// lesson entry.
type CachedStorage struct {
	next   Storage
	cache  cache.CacheService
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedStorage(next Storage, cacheService cache.CacheService, ttl time.Duration, logger *slog.Logger) *CachedStorage {
	return &CachedStorage{
		next:   next,
		cache:  cacheService,
		ttl:    ttl,
		logger: logger,
	}
}

func resultCacheKey(lessonID string) string {
	return resultCacheKeyPrefix + lessonID
}

func (s *CachedStorage) SaveExerciseResult(ctx context.Context, lessonID string, exerciseType models.ExerciseType, result *models.Result) error {
	if err := s.next.SaveExerciseResult(ctx, lessonID, exerciseType, result); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, resultCacheKey(lessonID)); err != nil {
		s.logger.Warn("Failed to invalidate cached lesson results",
			"lesson_id", lessonID,
			"error", err)
	}
	return nil
}

func (s *CachedStorage) GetExerciseResults(ctx context.Context, lessonID string) (map[models.ExerciseType]*models.Result, error) {
	key := resultCacheKey(lessonID)

	var cached map[models.ExerciseType]*models.Result
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !cache.IsCacheMiss(err) {
		s.logger.Warn("Cache read failed, falling back to storage",
			"lesson_id", lessonID,
			"error", err)
	}

	results, err := s.next.GetExerciseResults(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lesson results: %w", err)
	}

	if err := s.cache.Set(ctx, key, results, s.ttl); err != nil {
		s.logger.Warn("Failed to cache lesson results",
			"lesson_id", lessonID,
			"error", err)
	}
	return results, nil
}

// Purge drops every cached lesson entry. Call it when the underlying store
// may have lost or changed results the cache still holds.
func (s *CachedStorage) Purge(ctx context.Context) error {
	if err := s.cache.DeletePattern(ctx, resultCacheKeyPrefix+"*"); err != nil {
		return fmt.Errorf("failed to purge cached lesson results: %w", err)
	}
	return nil
}

// Close closes the underlying store when it holds a connection.
func (s *CachedStorage) Close() error {
	if closer, ok := s.next.(ClosableStorage); ok {
		return closer.Close()
	}
	return nil
}
