package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/regsync/internal/core/ports/driving"
	"github.com/custodia-labs/regsync/internal/logger"
)

// DefaultInterval is how often the scheduler triggers a full import when not
// configured otherwise.
const DefaultInterval = 12 * time.Hour

// Scheduler runs recurring unattended imports. Run state lives in the task
// audit records the importer already persists; the scheduler itself only
// keeps the next-run clock.
type Scheduler struct {
	interval time.Duration
	importer driving.Importer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler triggering imports every interval.
func NewScheduler(interval time.Duration, importer driving.Importer) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{interval: interval, importer: importer}
}

// Interval returns the effective trigger interval.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Start begins the scheduler loop and blocks until Stop is called or ctx is
// done. The first import runs immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.runImports(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.runImports(ctx)
		}
	}
}

// Stop gracefully shuts down the scheduler and waits for a running import to
// finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// runImports executes one RunAll pass. Import failures are logged, never
// fatal to the loop; the next tick tries again.
func (s *Scheduler) runImports(ctx context.Context) {
	s.wg.Add(1)
	defer s.wg.Done()

	audits, err := s.importer.RunAll(ctx)
	if err != nil {
		logger.Error("scheduler: import pass: %v", err)
	}
	for i := range audits {
		a := &audits[i]
		logger.Info("scheduler: %s finished %s (%d/%d records)",
			a.Source, a.Status, a.ItemsProcessed, a.ItemTotal)
	}
}
