package core

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BestEffort runs side tasks whose failure must never reach the caller.
// Tasks run detached from the request context with their own timeout.
type BestEffort struct {
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewBestEffort creates a new BestEffort runner.
func NewBestEffort(logger *zap.Logger) *BestEffort {
	return &BestEffort{logger: logger}
}

// Go starts fn in the background. Errors and panics are logged at Warn.
func (b *BestEffort) Go(ctx context.Context, op string, timeout time.Duration, fn func(ctx context.Context) error, fields ...zap.Field) {
	taskCtx := context.WithoutCancel(ctx)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Warn("Best-effort task panicked", append(fields, zap.String("operation", op), zap.Any("panic", r))...)
			}
		}()

		if timeout > 0 {
			var cancel context.CancelFunc
			taskCtx, cancel = context.WithTimeout(taskCtx, timeout)
			defer cancel()
		}
		if err := fn(taskCtx); err != nil {
			b.logger.Warn("Best-effort task failed", append(fields, zap.String("operation", op), zap.Error(err))...)
		}
	}()
}

// Wait blocks until every started task has finished.
func (b *BestEffort) Wait() {
	b.wg.Wait()
}
