// Package scheduler runs background jobs of the agency backend.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ConflictDetector compares the local settings against the remote copy
type ConflictDetector interface {
	DetectConflict(ctx context.Context) (bool, error)
	InConflict() bool
}

// ConflictWatcher calls DetectConflict on a fixed interval so a remote edit
// surfaces as a conflict without a client asking for it.
type ConflictWatcher struct {
	detector ConflictDetector
	interval time.Duration
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewConflictWatcher creates a watcher. interval must be positive.
func NewConflictWatcher(detector ConflictDetector, interval time.Duration, logger *zap.Logger) *ConflictWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictWatcher{
		detector: detector,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the check loop. Calling it on a running watcher does nothing.
func (w *ConflictWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		return
	}
	w.isRunning = true

	ctx, w.cancel = context.WithCancel(context.WithoutCancel(ctx))
	w.wg.Add(1)
	go w.runLoop(ctx)

	w.logger.Info("Conflict watcher started", zap.Duration("interval", w.interval))
}

// Stop ends the loop and waits for a running check, bounded by ctx
func (w *ConflictWatcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	w.cancel()
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("Conflict watcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *ConflictWatcher) runLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

// check skips while a conflict is pending so it is reported once
func (w *ConflictWatcher) check(ctx context.Context) {
	if w.detector.InConflict() {
		return
	}
	if _, err := w.detector.DetectConflict(ctx); err != nil && ctx.Err() == nil {
		w.logger.Warn("Background conflict check failed", zap.Error(err))
	}
}
