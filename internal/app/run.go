package app

import (
	"context"
	"time"

	"github.com/vk/prefstore/internal/ctxlog"
)

// Tick runs one scheduling step: mutations applied earlier in the step are
// observed by the dirty check, which runs before the save decision. Save
// failures are recovered locally (logged, retried next interval); the error
// is returned for observability only.
func (a *App) Tick(ctx context.Context) error {
	if a.sched == nil {
		return nil
	}
	return a.sched.Tick(ctxlog.WithLogger(ctx, a.logger))
}

// Run drives the tick loop until ctx is cancelled, then flushes pending
// changes before returning. The caller owns signal handling; cancelling the
// context is the shutdown signal.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	ticker := time.NewTicker(a.config.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Debug("Shutdown signal received, flushing preferences.")
			return a.Shutdown(context.WithoutCancel(ctx))
		case <-ticker.C:
			// Errors were already logged by the scheduler; the next tick retries.
			_ = a.Tick(ctx)
		}
	}
}

// Shutdown forces a final save of any pending changes, bypassing the
// debounce interval, and stops the scheduler.
func (a *App) Shutdown(ctx context.Context) error {
	if a.sched == nil {
		return nil
	}
	return a.sched.Shutdown(ctxlog.WithLogger(ctx, a.logger))
}
