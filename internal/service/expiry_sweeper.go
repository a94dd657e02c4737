package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/student-portal-api/internal/expiry"
	"github.com/noah-isme/student-portal-api/internal/models"
)

type expiryCounter interface {
	CountExpiry(ctx context.Context, now time.Time) (*models.ExpiryCounts, error)
}

type expiryRecorder interface {
	RecordExpiryCounts(counts models.ExpiryCounts, at time.Time)
}

// ExpirySweeper periodically counts live and expired community content. It never deletes rows.
type ExpirySweeper struct {
	counter  expiryCounter
	recorder expiryRecorder
	engine   *expiry.Engine
	logger   *zap.Logger
	cron     *cron.Cron
	timeout  time.Duration
}

// NewExpirySweeper constructs a sweeper. recorder may be nil.
func NewExpirySweeper(counter expiryCounter, recorder expiryRecorder, engine *expiry.Engine, logger *zap.Logger) *ExpirySweeper {
	if engine == nil {
		engine = expiry.NewEngine(expiry.DefaultPolicy(), nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpirySweeper{
		counter:  counter,
		recorder: recorder,
		engine:   engine,
		logger:   logger,
		cron:     cron.New(cron.WithLocation(time.UTC), cron.WithSeconds()),
		timeout:  30 * time.Second,
	}
}

// Schedule registers the sweep to run every interval.
func (s *ExpirySweeper) Schedule(interval time.Duration) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Warn("expiry sweep failed", zap.Error(err))
		}
	})
}

// Sweep counts content against the engine clock and publishes the result.
func (s *ExpirySweeper) Sweep(ctx context.Context) (*models.ExpiryCounts, error) {
	now := s.engine.Now()
	counts, err := s.counter.CountExpiry(ctx, now)
	if err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordExpiryCounts(*counts, now)
	}
	s.logger.Debug("expiry sweep complete",
		zap.Int("live_threads", counts.LiveThreads),
		zap.Int("expired_threads", counts.ExpiredThreads),
		zap.Int("live_replies", counts.LiveReplies),
		zap.Int("expired_replies", counts.ExpiredReplies),
	)
	return counts, nil
}

// Start runs scheduled sweeps in the background.
func (s *ExpirySweeper) Start() {
	s.cron.Start()
}

// Stop waits for a running sweep to finish.
func (s *ExpirySweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
