// Package scheduler runs named periodic jobs. Runs of the same job are
// serialized: a tick that arrives while the previous run is still going is
// skipped. Different jobs run independently.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a periodic callback. It receives a context cancelled on Stop.
type Job func(ctx context.Context) error

// Scheduler runs registered jobs on their intervals until stopped.
type Scheduler struct {
	logger *zap.Logger

	mu      sync.Mutex
	running map[string]bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler.
func New(logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger:  logger,
		running: map[string]bool{},
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Every schedules job under name to run on the given interval. The first run
// happens one interval after the call.
func (s *Scheduler) Every(name string, interval time.Duration, job Job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.run(name, job)
			}
		}
	}()
}

// Stop cancels all jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) run(name string, job Job) {
	s.mu.Lock()
	if s.running[name] {
		s.mu.Unlock()
		s.logger.Debug("job still running, tick skipped", zap.String("job", name))
		return
	}
	s.running[name] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running[name] = false
		s.mu.Unlock()
	}()

	start := time.Now()
	if err := job(s.ctx); err != nil {
		s.logger.Warn("job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.logger.Debug("job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
}
