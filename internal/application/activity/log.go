// Package activity implements the append-only activity log. Entries are kept
// in a bounded in-memory ring and fanned out to optional durable sinks.
package activity

import (
	"context"
	"sync"
	"time"

	"github.com/agency/backend/internal/domain/shared"
	"github.com/agency/backend/internal/domain/system"
	"go.uber.org/zap"
)

// DefaultCapacity is used when a non-positive capacity is given
const DefaultCapacity = 500

// Sink receives every appended entry. Sinks are best effort.
type Sink interface {
	Name() string
	Write(ctx context.Context, rec system.ActivityRecord) error
}

// Source can return previously persisted entries, newest first
type Source interface {
	Recent(ctx context.Context, n int) ([]system.ActivityRecord, error)
}

// Log is safe for concurrent use
type Log struct {
	mu       sync.RWMutex
	entries  []system.ActivityRecord // oldest first
	capacity int
	sinks    []Sink
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Log
type Option func(*Log)

// WithSinks adds durable sinks
func WithSinks(sinks ...Sink) Option {
	return func(l *Log) {
		for _, s := range sinks {
			if s != nil {
				l.sinks = append(l.sinks, s)
			}
		}
	}
}

// WithLogger sets the logger used to report sink failures
func WithLogger(logger *zap.Logger) Option {
	return func(l *Log) {
		l.logger = logger
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

// NewLog creates a log keeping at most capacity entries in memory
func NewLog(capacity int, opts ...Option) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l := &Log{
		capacity: capacity,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records an entry, assigning id and date when missing, and returns
// the stored entry. Sink failures are logged and never returned.
func (l *Log) Append(ctx context.Context, rec system.ActivityRecord) system.ActivityRecord {
	if rec.ID == "" {
		rec.ID = shared.NewID(system.ActivityIDPrefix)
	}
	if rec.Date.IsZero() {
		rec.Date = l.now()
	}
	if rec.Status == "" {
		rec.Status = system.ActivityStatusInfo
	}
	rec = rec.Clone()

	l.mu.Lock()
	l.push(rec)
	sinks := l.sinks
	l.mu.Unlock()

	for _, s := range sinks {
		if err := s.Write(ctx, rec.Clone()); err != nil {
			l.logger.Warn("activity sink write failed",
				zap.String("sink", s.Name()),
				zap.String("activity_id", rec.ID),
				zap.Error(err),
			)
		}
	}
	return rec.Clone()
}

// push must be called with mu held
func (l *Log) push(rec system.ActivityRecord) {
	l.entries = append(l.entries, rec)
	if over := len(l.entries) - l.capacity; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
}

// Recent returns up to n entries, newest first. n <= 0 returns everything.
func (l *Log) Recent(n int) []system.ActivityRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]system.ActivityRecord, 0, n)
	for i := len(l.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.entries[i].Clone())
	}
	return out
}

// Len returns the number of entries held in memory
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Hydrate fills an empty log from a durable source. It is a no-op once the
// log already holds entries.
func (l *Log) Hydrate(ctx context.Context, src Source) error {
	if src == nil {
		return nil
	}
	recs, err := src.Recent(ctx, l.capacity)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) > 0 {
		return nil
	}
	for i := len(recs) - 1; i >= 0; i-- {
		l.push(recs[i].Clone())
	}
	return nil
}
