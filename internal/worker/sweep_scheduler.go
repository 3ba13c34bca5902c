package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/apply4me/internal/domain/model"
)

// SweepRunner deactivates listings whose deadline has passed.
type SweepRunner interface {
	MarkExpiredItemsInactive(ctx context.Context) model.SweepResult
}

// SweepScheduler runs the expiry sweep on a fixed interval.
type SweepScheduler struct {
	runner   SweepRunner
	interval time.Duration
	logger   *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

func NewSweepScheduler(runner SweepRunner, interval time.Duration, logger *slog.Logger) *SweepScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SweepScheduler{runner: runner, interval: interval, logger: logger}
}

// Start launches the ticker loop.
func (s *SweepScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(runCtx)
}

// Stop waits for a running sweep to finish.
func (s *SweepScheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *SweepScheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result := s.runner.MarkExpiredItemsInactive(ctx)
			s.logger.Info("scheduled expiry sweep finished",
				slog.Int64("institutions_updated", result.InstitutionsUpdated),
				slog.Int64("programs_updated", result.ProgramsUpdated),
				slog.Int64("bursaries_updated", result.BursariesUpdated),
			)
		}
	}
}
