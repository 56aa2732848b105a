package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/agency/backend/internal/domain/shared"
	"github.com/agency/backend/internal/domain/system"
	"github.com/agency/backend/internal/infrastructure/logger"
	"github.com/agency/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Remote operations
const (
	opInsert = "insert"
	opUpdate = "update"
	opDelete = "delete"
)

// Collection is an ordered in-memory set of records mirrored to one remote
// table. A nil table keeps the collection purely in memory.
type Collection[T Record[T]] struct {
	name   string
	prefix string
	kind   system.ActivityType
	newFn  func() T
	table  Table
	rt     *runtime

	mu    sync.RWMutex
	items []T
}

func newCollection[T Record[T]](rt *runtime, name, prefix string, kind system.ActivityType, table Table, newFn func() T) *Collection[T] {
	return &Collection[T]{
		name:   name,
		prefix: prefix,
		kind:   kind,
		newFn:  newFn,
		table:  table,
		rt:     rt,
	}
}

// Name returns the remote table name
func (c *Collection[T]) Name() string {
	return c.name
}

// Get returns a copy of the record with the given id
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i].Clone(), true
	}
	var zero T
	return zero, false
}

// List returns copies of every record in insertion order
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	for i, rec := range c.items {
		out[i] = rec.Clone()
	}
	return out
}

// Len returns the number of records held in memory
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Create assigns a fresh id, applies defaults and derived values, appends the
// record to memory and dispatches the remote insert in the background.
func (c *Collection[T]) Create(ctx context.Context, draft T) string {
	id, _ := c.create(ctx, draft)
	return id
}

// CreateAndWait behaves like Create but waits for the remote insert
func (c *Collection[T]) CreateAndWait(ctx context.Context, draft T) (string, error) {
	id, done := c.create(ctx, draft)
	return id, <-done
}

func (c *Collection[T]) create(ctx context.Context, draft T) (string, <-chan error) {
	rec := draft.Clone()
	rec.SetID(shared.NewID(c.prefix))
	rec.Normalize(c.rt.now())
	id := rec.GetID()

	c.mu.Lock()
	c.items = append(c.items, rec)
	snapshot := rec.Clone()
	c.mu.Unlock()

	c.record(ctx, fmt.Sprintf("%s %s created", c.kind, id), system.ActivityStatusSuccess, id)

	done := c.dispatch(ctx, opInsert, snapshot, func(ctx context.Context, row Row) error {
		return c.table.Insert(ctx, row)
	}, func() {
		c.forget(id)
	})
	return id, done
}

// Update merges patch into the record with the given id, recomputes derived
// values and dispatches the remote update with the full merged record.
// An unknown id is a no-op and reports false.
func (c *Collection[T]) Update(ctx context.Context, id string, patch Patch[T]) bool {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	before := c.items[i]
	next := before.Clone()
	patch.Apply(next)
	next.SetID(id)
	next.Normalize(c.rt.now())
	c.items[i] = next
	snapshot := next.Clone()
	c.mu.Unlock()

	c.record(ctx, fmt.Sprintf("%s %s updated", c.kind, id), system.ActivityStatusSuccess, id)

	c.dispatch(ctx, opUpdate, snapshot, func(ctx context.Context, row Row) error {
		return c.table.Update(ctx, row)
	}, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// only undo if nothing replaced the record since
		if j := c.indexOf(id); j >= 0 && any(c.items[j]) == any(next) {
			c.items[j] = before
		}
	})
	return true
}

// Delete removes the record from memory and dispatches the remote delete.
// An unknown id is a no-op and reports false.
func (c *Collection[T]) Delete(ctx context.Context, id string) bool {
	ok, _ := c.delete(ctx, id)
	return ok
}

// DeleteAndWait behaves like Delete but waits for the remote delete
func (c *Collection[T]) DeleteAndWait(ctx context.Context, id string) (bool, error) {
	ok, done := c.delete(ctx, id)
	return ok, <-done
}

func (c *Collection[T]) delete(ctx context.Context, id string) (bool, <-chan error) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return false, closedErr(nil)
	}
	removed := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	c.mu.Unlock()

	c.record(ctx, fmt.Sprintf("%s %s deleted", c.kind, id), system.ActivityStatusSuccess, id)

	done := c.dispatch(ctx, opDelete, removed.Clone(), func(ctx context.Context, _ Row) error {
		return c.table.Delete(ctx, id)
	}, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.indexOf(id) >= 0 {
			return
		}
		c.items = slices.Insert(c.items, min(i, len(c.items)), removed)
	})
	return true, done
}

// Load replaces memory with every remote row. Rows that cannot be decoded
// are skipped and logged.
func (c *Collection[T]) Load(ctx context.Context) error {
	if c.table == nil {
		return nil
	}
	rows, err := c.table.Select(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", c.name, err)
	}

	now := c.rt.now()
	items := make([]T, 0, len(rows))
	for _, row := range rows {
		rec := c.newFn()
		if err := json.Unmarshal(row.Data, rec); err != nil {
			logger.WithTraceContext(ctx, c.rt.logger).Warn("skipping undecodable row",
				zap.String("collection", c.name),
				zap.String("id", row.ID),
				zap.Error(err),
			)
			continue
		}
		rec.SetID(row.ID)
		rec.Normalize(now)
		items = append(items, rec)
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	c.rt.logger.Info("collection loaded", zap.String("collection", c.name), zap.Int("records", len(items)))
	return nil
}

// forget drops a record from memory without touching the remote
func (c *Collection[T]) forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		c.items = slices.Delete(c.items, i, i+1)
	}
}

// indexOf must be called with mu held
func (c *Collection[T]) indexOf(id string) int {
	return slices.IndexFunc(c.items, func(rec T) bool { return rec.GetID() == id })
}

// dispatch runs the remote write in the background. The returned channel
// yields the write result once; it yields nil immediately when there is no
// remote table.
func (c *Collection[T]) dispatch(ctx context.Context, op string, rec T, write func(context.Context, Row) error, undo func()) <-chan error {
	if c.table == nil {
		return closedErr(nil)
	}

	data, encErr := json.Marshal(rec)
	row := Row{ID: rec.GetID(), Data: data, UpdatedAt: c.rt.now()}
	done := make(chan error, 1)
	ctx = context.WithoutCancel(ctx)

	c.rt.tracker.Begin()
	c.rt.wg.Add(1)
	go func() {
		defer c.rt.wg.Done()
		defer close(done)

		var err error
		if encErr != nil {
			err = fmt.Errorf("encode %s %s: %w", c.name, row.ID, encErr)
		} else {
			err = c.write(ctx, op, row, write)
		}
		c.settle(ctx, op, row.ID, err, undo)
		done <- err
	}()
	return done
}

func (c *Collection[T]) write(ctx context.Context, op string, row Row, write func(context.Context, Row) error) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "store", op,
		attribute.String("collection", c.name),
		attribute.String("record_id", row.ID),
	)
	defer span.End()

	if err := write(ctx, row); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	telemetry.SetOK(span)
	return nil
}

// settle reports the outcome of a remote write. A failure is logged, recorded
// to the activity log and shown in the sync state; the local change is only
// reverted when the policy asks for it.
func (c *Collection[T]) settle(ctx context.Context, op, id string, err error, undo func()) {
	c.rt.metrics.RecordWrite(ctx, c.name, op, err)
	if err == nil {
		c.rt.tracker.Succeed(time.Time{})
		return
	}

	c.rt.tracker.Fail(err)
	logger.WithTraceContext(ctx, c.rt.logger).Error("remote write failed",
		zap.String("collection", c.name),
		zap.String("operation", op),
		zap.String("id", id),
		zap.Bool("rolled_back", c.rt.policy.RollbackOnFailure),
		zap.Error(err),
	)
	c.record(ctx, fmt.Sprintf("Failed to %s %s %s: %v", op, c.kind, id, err), system.ActivityStatusError, id)

	if c.rt.policy.RollbackOnFailure {
		undo()
		c.rt.metrics.RecordRollback(ctx, c.name, op)
	}
}

func (c *Collection[T]) record(ctx context.Context, label string, status system.ActivityStatus, id string) {
	if c.rt.activity == nil {
		return
	}
	c.rt.activity.Append(ctx, system.ActivityRecord{
		Label:    label,
		Type:     c.kind,
		Status:   status,
		Metadata: map[string]string{"id": id, "collection": c.name},
	})
}
