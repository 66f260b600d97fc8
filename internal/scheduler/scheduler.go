// Package scheduler runs the periodic maintenance jobs of the server.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StaleExportSweeper fails exports that never reached a final status.
type StaleExportSweeper interface {
	FailStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// Scheduler wraps cron-based jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC), cron.WithSeconds()),
		logger: logger,
	}
}

// Every registers job to run once per interval.
func (s *Scheduler) Every(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), job)
}

// SweepStaleExports registers the job that marks exports stuck for longer
// than staleAfter as failed.
func (s *Scheduler) SweepStaleExports(sweeper StaleExportSweeper, interval, staleAfter time.Duration) (cron.EntryID, error) {
	return s.Every(interval, func() {
		s.runSweep(sweeper, interval, staleAfter)
	})
}

func (s *Scheduler) runSweep(sweeper StaleExportSweeper, timeout, staleAfter time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := sweeper.FailStale(ctx, staleAfter)
	if err != nil {
		s.logger.Error("Stale export sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("Marked stale exports as failed", zap.Int("count", n))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
