package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/student-portal-api/pkg/jobs"
)

// JobTypeCacheInvalidate identifies queued cache invalidation jobs.
const JobTypeCacheInvalidate = "cache.invalidate"

// AcademicCachePattern matches every cached academic day payload.
const AcademicCachePattern = "academic:*"

type patternInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// CacheInvalidator removes derived cache entries after writes. When a queue is
// attached the removal happens on a worker, otherwise inline.
type CacheInvalidator struct {
	cache  patternInvalidator
	queue  jobEnqueuer
	logger *zap.Logger
}

// NewCacheInvalidator constructs an invalidator around the cache service.
func NewCacheInvalidator(cache patternInvalidator, logger *zap.Logger) *CacheInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheInvalidator{cache: cache, logger: logger}
}

// Attach routes later invalidations through queue.
func (i *CacheInvalidator) Attach(queue jobEnqueuer) {
	i.queue = queue
}

// Invalidate schedules removal of keys matching pattern. Failures are logged, never returned.
func (i *CacheInvalidator) Invalidate(ctx context.Context, pattern string) {
	if i == nil || i.cache == nil {
		return
	}
	if i.queue != nil {
		job := jobs.Job{ID: uuid.NewString(), Type: JobTypeCacheInvalidate, Key: pattern, Payload: pattern}
		err := i.queue.Enqueue(job)
		if err == nil {
			return
		}
		i.logger.Warn("enqueue cache invalidation failed, running inline", zap.String("pattern", pattern), zap.Error(err))
	}
	if err := i.cache.Invalidate(ctx, pattern); err != nil {
		i.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

// Handle is the queue handler for invalidation jobs.
func (i *CacheInvalidator) Handle(ctx context.Context, job jobs.Job) error {
	pattern, ok := job.Payload.(string)
	if !ok || pattern == "" {
		return fmt.Errorf("invalid invalidation payload %T", job.Payload)
	}
	return i.cache.Invalidate(ctx, pattern)
}
