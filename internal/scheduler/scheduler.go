// Package scheduler runs a job on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Job is the work run on each tick.
type Job func(ctx context.Context) error

// Scheduler runs one Job periodically. At most one run is in flight at a
// time; a failing or panicking run is logged and the loop carries on.
type Scheduler struct {
	job      Job
	interval time.Duration
	logger   *slog.Logger

	running atomic.Bool
}

// New returns a Scheduler. A non-positive interval defaults to one hour.
func New(job Job, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{job: job, interval: interval, logger: logger}
}

// Run executes the job immediately, then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunNow(ctx)
	for {
		select {
		case <-ticker.C:
			s.RunNow(ctx)
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		}
	}
}

// RunNow runs the job unless a run is already in progress. It reports
// whether the job ran.
func (s *Scheduler) RunNow(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous run still in progress, skipping")
		return false
	}
	defer s.running.Store(false)

	start := time.Now()
	if err := s.safeRun(ctx); err != nil {
		s.logger.Error("scheduled run failed", "error", err, "duration", time.Since(start).String())
		return true
	}
	s.logger.Debug("scheduled run completed", "duration", time.Since(start).String())
	return true
}

func (s *Scheduler) safeRun(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.job(ctx)
}
