package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubDetector struct {
	calls    atomic.Int32
	pending  atomic.Bool
	conflict bool
	err      error
}

func (s *stubDetector) DetectConflict(context.Context) (bool, error) {
	s.calls.Add(1)
	if s.err != nil {
		return false, s.err
	}
	if s.conflict {
		s.pending.Store(true)
	}
	return s.conflict, nil
}

func (s *stubDetector) InConflict() bool { return s.pending.Load() }

func TestConflictWatcher_ChecksPeriodically(t *testing.T) {
	detector := &stubDetector{}
	w := NewConflictWatcher(detector, 5*time.Millisecond, nil)

	w.Start(context.Background())
	w.Start(context.Background())

	assert.Eventually(t, func() bool { return detector.calls.Load() >= 3 }, time.Second, time.Millisecond)
	require.NoError(t, w.Stop(context.Background()))

	calls := detector.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, detector.calls.Load(), "no checks after Stop")
	assert.NoError(t, w.Stop(context.Background()))
}

func TestConflictWatcher_SkipsWhilePending(t *testing.T) {
	detector := &stubDetector{conflict: true}
	w := NewConflictWatcher(detector, 5*time.Millisecond, nil)

	w.Start(context.Background())
	assert.Eventually(t, detector.pending.Load, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, w.Stop(context.Background()))

	assert.Equal(t, int32(1), detector.calls.Load())
}

func TestConflictWatcher_LogsFailures(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	detector := &stubDetector{err: errors.New("connection refused")}
	w := NewConflictWatcher(detector, 5*time.Millisecond, zap.New(core))

	w.Start(context.Background())
	assert.Eventually(t, func() bool {
		return recorded.FilterMessage("Background conflict check failed").Len() > 0
	}, time.Second, time.Millisecond)
	require.NoError(t, w.Stop(context.Background()))
}
