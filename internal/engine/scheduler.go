package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartScheduler launches the periodic auto-commit loop. Calling it while a
// scheduler is already running is a no-op. The loop stops when ctx is
// cancelled or StopScheduler is called; a final flush happens on the way out
// so a shutdown never strands staged operations.
func (e *Engine) StartScheduler(ctx context.Context) {
	e.schedMu.Lock()
	defer e.schedMu.Unlock()
	if e.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})

	interval := e.commitInterval()
	e.log.Info("auto-commit scheduler started", zap.Duration("interval", interval))

	go func() {
		defer close(e.done)
		timer := time.NewTimer(interval)
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				if err := e.commitAll("shutdown"); err != nil {
					e.log.Error("final scheduled commit failed", zap.Error(err))
				}
				e.log.Info("auto-commit scheduler stopped")
				return
			case <-timer.C:
				if err := e.commitAll("scheduled"); err != nil {
					e.log.Error("scheduled commit failed", zap.Error(err))
				}
				// Re-read so UpdateConfig takes effect on the next tick.
				timer.Reset(e.commitInterval())
			}
		}
	}()
}

// StopScheduler cancels the auto-commit loop and waits for its final flush.
// Safe to call when no scheduler is running.
func (e *Engine) StopScheduler() {
	e.schedMu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.schedMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
