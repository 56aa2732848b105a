// Package store holds the optimistic domain stores. Every mutation is applied
// to memory first and then persisted by a background remote write; readers
// always get copies of the in-memory records.
//
// Writes that span two stores are not atomic. BusinessStore offers a
// compensating saga for the one flow that needs both a client and an invoice.
package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/agency/backend/internal/application/syncer"
	"github.com/agency/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Record is implemented by the pointer types of every stored entity
type Record[T any] interface {
	GetID() string
	SetID(id string)
	Clone() T
	Normalize(now time.Time)
}

// Patch merges a partial update into a record
type Patch[T any] interface {
	Apply(rec T)
}

// Row is the remote shape of a record
type Row struct {
	ID        string
	Data      json.RawMessage
	UpdatedAt time.Time
}

// Table is one remote collection. SelectByID and Update return
// shared.ErrNotFound for an unknown id.
type Table interface {
	Select(ctx context.Context) ([]Row, error)
	SelectByID(ctx context.Context, id string) (Row, error)
	Insert(ctx context.Context, row Row) error
	Update(ctx context.Context, row Row) error
	Upsert(ctx context.Context, row Row) error
	Delete(ctx context.Context, id string) error
}

// Policy controls how a store reacts to a failed remote write
type Policy struct {
	// RollbackOnFailure reverts the optimistic change when its remote write
	// fails. Off by default: the local change is kept and the failure is
	// only reported.
	RollbackOnFailure bool
}

// Options are shared by every store of a process
type Options struct {
	Policy   Policy
	Tracker  *syncer.Tracker
	Activity syncer.ActivityRecorder
	Logger   *zap.Logger
	Metrics  *telemetry.WriteMetrics
	Clock    func() time.Time
}

// runtime is the per-store plumbing shared by its collections
type runtime struct {
	policy   Policy
	tracker  *syncer.Tracker
	activity syncer.ActivityRecorder
	logger   *zap.Logger
	metrics  *telemetry.WriteMetrics
	now      func() time.Time
	wg       sync.WaitGroup
}

func newRuntime(opts Options, name string) *runtime {
	rt := &runtime{
		policy:   opts.Policy,
		tracker:  opts.Tracker,
		activity: opts.Activity,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Clock,
	}
	if rt.tracker == nil {
		rt.tracker = syncer.NewTracker(0)
	}
	if rt.logger == nil {
		rt.logger = zap.NewNop()
	}
	rt.logger = rt.logger.Named(name)
	if rt.now == nil {
		rt.now = time.Now
	}
	return rt
}

// wait blocks until every dispatched write finished or ctx is done
func (rt *runtime) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		rt.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func closedErr(err error) <-chan error {
	ch := make(chan error, 1)
	ch <- err
	close(ch)
	return ch
}
