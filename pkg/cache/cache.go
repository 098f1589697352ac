// Package cache memoizes ranked answers per (question, department).
package cache

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/tb0hdan/kmu-curator/pkg/metrics"
	"github.com/tb0hdan/kmu-curator/pkg/models"
	"github.com/tb0hdan/kmu-curator/pkg/storage"
	"github.com/tb0hdan/kmu-curator/pkg/types"
)

// Store is the persistence contract behind the cache. Misses are reported
// with storage.ErrNotFound.
type Store interface {
	GetCachedAnswer(ctx context.Context, key string) (*models.CachedAnswer, error)
	UpsertCachedAnswer(ctx context.Context, answer *models.CachedAnswer) error
	DeleteCachedAnswersByDepartment(ctx context.Context, department types.Department) (int64, error)
}

type Cache struct {
	store   Store
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// New returns a cache over store. A nil store disables caching: every Get
// misses and every Put reports false.
func New(store Store, logger zerolog.Logger, m *metrics.Metrics) *Cache {
	return &Cache{
		store:   store,
		logger:  logger.With().Str("component", "answer_cache").Logger(),
		metrics: m,
	}
}

func (c *Cache) Enabled() bool {
	return c.store != nil
}

// Get returns the stored answer and true, or "" and false on a miss or when
// the store is unavailable. A stored empty answer is a hit.
func (c *Cache) Get(ctx context.Context, question string, department types.Department) (string, bool) {
	item, ok := c.Lookup(ctx, question, department)
	if !ok {
		return "", false
	}
	return item.Answer, true
}

// Lookup is Get returning the whole entry.
func (c *Cache) Lookup(ctx context.Context, question string, department types.Department) (*models.CachedAnswer, bool) {
	if c.store == nil {
		return nil, false
	}

	key := models.AnswerKey(question, department)
	item, err := c.store.GetCachedAnswer(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.metrics.CacheLookup(metrics.ResultMiss)
		c.logger.Debug().Str("key", key).Msg("cache miss")
		return nil, false
	case err != nil:
		c.metrics.CacheLookup(metrics.ResultError)
		c.logger.Error().Err(err).Str("key", key).Msg("cache lookup failed")
		return nil, false
	}

	c.metrics.CacheLookup(metrics.ResultHit)
	c.logger.Debug().Str("key", key).Msg("cache hit")
	return item, true
}

// Put upserts the answer; the last write for a key wins.
func (c *Cache) Put(ctx context.Context, question string, department types.Department, answer string) bool {
	return c.PutRanked(ctx, question, department, answer, 0)
}

// PutRanked is Put for a ranked answer, recording how many tools it covers.
func (c *Cache) PutRanked(ctx context.Context, question string, department types.Department, answer string, toolCount int) bool {
	if c.store == nil {
		return false
	}

	item := models.NewCachedAnswer(question, department, answer)
	item.ToolCount = toolCount
	if err := c.store.UpsertCachedAnswer(ctx, item); err != nil {
		c.metrics.CacheWrite(metrics.ResultError)
		c.logger.Error().Err(err).Str("key", item.QuestionHash).Msg("failed to cache answer")
		return false
	}

	c.metrics.CacheWrite(metrics.ResultOK)
	return true
}

// Invalidate drops every answer cached for department. It is called whenever
// the department's approved set changes.
func (c *Cache) Invalidate(ctx context.Context, department types.Department) bool {
	if c.store == nil {
		return false
	}

	n, err := c.store.DeleteCachedAnswersByDepartment(ctx, department)
	if err != nil {
		c.metrics.CacheInvalidation(metrics.ResultError)
		c.logger.Error().Err(err).Str("department", department.String()).Msg("failed to invalidate cached answers")
		return false
	}

	c.metrics.CacheInvalidation(metrics.ResultOK)
	c.logger.Debug().Str("department", department.String()).Int64("dropped", n).Msg("cached answers invalidated")
	return true
}
