package store

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/agency/backend/internal/domain/shared"
	"github.com/agency/backend/internal/domain/system"
)

var errRemoteDown = errors.New("remote down")

type fakeTable struct {
	mu      sync.Mutex
	rows    []Row
	fail    map[string]error
	gate    chan struct{}
	calls   []string
	selects int
}

func newFakeTable(rows ...Row) *fakeTable {
	return &fakeTable{rows: rows, fail: map[string]error{}}
}

func (f *fakeTable) failOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

func (f *fakeTable) enter(op string) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.fail[op]
}

func (f *fakeTable) Select(_ context.Context) ([]Row, error) {
	if err := f.enter("select"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selects++
	return slices.Clone(f.rows), nil
}

func (f *fakeTable) SelectByID(_ context.Context, id string) (Row, error) {
	if err := f.enter("select"); err != nil {
		return Row{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.index(id); i >= 0 {
		return f.rows[i], nil
	}
	return Row{}, shared.ErrNotFound
}

func (f *fakeTable) Insert(_ context.Context, row Row) error {
	if err := f.enter(opInsert); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeTable) Update(_ context.Context, row Row) error {
	if err := f.enter(opUpdate); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(row.ID)
	if i < 0 {
		return shared.ErrNotFound
	}
	f.rows[i] = row
	return nil
}

func (f *fakeTable) Upsert(_ context.Context, row Row) error {
	if err := f.enter("upsert"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.index(row.ID); i >= 0 {
		f.rows[i] = row
		return nil
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeTable) Delete(_ context.Context, id string) error {
	if err := f.enter(opDelete); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.index(id); i >= 0 {
		f.rows = slices.Delete(f.rows, i, i+1)
	}
	return nil
}

func (f *fakeTable) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.rows))
	for i, r := range f.rows {
		out[i] = r.ID
	}
	return out
}

func (f *fakeTable) index(id string) int {
	return slices.IndexFunc(f.rows, func(r Row) bool { return r.ID == id })
}

type fakeSettingsRemote struct {
	mu        sync.Mutex
	row       *system.SiteSettings
	getErr    error
	upsertErr error
	upserts   int
	// when set, Upsert signals committed after storing the row and then
	// blocks until release is closed
	committed chan struct{}
	release   chan struct{}
}

func (f *fakeSettingsRemote) Get(_ context.Context, _ string) (*system.SiteSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.row == nil {
		return nil, shared.ErrNotFound
	}
	return f.row.Clone(), nil
}

func (f *fakeSettingsRemote) Upsert(_ context.Context, s *system.SiteSettings) error {
	f.mu.Lock()
	if f.upsertErr != nil {
		f.mu.Unlock()
		return f.upsertErr
	}
	f.upserts++
	f.row = s.Clone()
	f.mu.Unlock()

	if f.committed != nil {
		f.committed <- struct{}{}
		<-f.release
	}
	return nil
}

func (f *fakeSettingsRemote) setRow(row *system.SiteSettings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.row = row.Clone()
}

func (f *fakeSettingsRemote) snapshot() (*system.SiteSettings, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.row.Clone(), f.upserts
}

type activityRecorder struct {
	mu      sync.Mutex
	records []system.ActivityRecord
}

func (r *activityRecorder) Append(_ context.Context, rec system.ActivityRecord) system.ActivityRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return rec
}

func (r *activityRecorder) withStatus(status system.ActivityStatus) []system.ActivityRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []system.ActivityRecord
	for _, rec := range r.records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out
}
