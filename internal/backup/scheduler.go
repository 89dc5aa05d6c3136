package backup

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/clubkit/clubkit/internal/platform/logging"
)

// Scheduler runs snapshot cycles on a fixed interval. One cycle runs
// immediately on Start so a fresh install gets a snapshot without waiting
// a full interval.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
	logger   *logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     conc.WaitGroup
}

func NewScheduler(engine *Engine, interval time.Duration, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		engine:   engine,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the snapshot loop. Calling Start on a running scheduler is
// a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Go(func() {
		s.run(ctx)
	})
}

func (s *Scheduler) run(ctx context.Context) {
	s.cycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	if err := s.engine.CreateSnapshot(ctx); err != nil {
		// A failed cycle is not fatal; the next tick tries again.
		s.logger.ErrorContext(ctx, "snapshot cycle failed", "error", err)
	}
}

// Stop cancels the loop and waits for an in-flight cycle to finish.
// Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
}
