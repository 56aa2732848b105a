package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/agency/backend/internal/application/syncer"
	"github.com/agency/backend/internal/domain/shared"
	"github.com/agency/backend/internal/domain/system"
	"github.com/agency/backend/internal/infrastructure/logger"
	"github.com/agency/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const settingsCollection = "site_settings"

// SystemStore owns the site settings aggregate. Every change writes the whole
// aggregate back with a background upsert.
type SystemStore struct {
	rt     *runtime
	remote syncer.SettingsRemote

	mu       sync.RWMutex
	settings *system.SiteSettings
}

// NewSystemStore creates the store. remote may be nil.
func NewSystemStore(remote syncer.SettingsRemote, opts Options) *SystemStore {
	return &SystemStore{
		rt:       newRuntime(opts, "system_store"),
		remote:   remote,
		settings: system.DefaultSettings(),
	}
}

// Init loads the aggregate from the remote. A missing row keeps the defaults;
// an unreachable remote is logged and the store keeps working in memory.
func (s *SystemStore) Init(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}
	remote, err := s.remote.Get(ctx, system.SettingsID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return nil
	case err != nil:
		s.rt.logger.Warn("settings not loaded, continuing with local defaults", zap.Error(err))
		return nil
	}
	s.ReplaceSettings(ctx, remote)
	// the loaded copy is the first sync point
	s.rt.tracker.Begin()
	s.rt.tracker.Succeed(remote.UpdatedAt)
	return nil
}

// Dispose waits for in-flight writes
func (s *SystemStore) Dispose(ctx context.Context) error {
	return s.rt.wait(ctx)
}

// Settings returns a copy of the aggregate
func (s *SystemStore) Settings() *system.SiteSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// ReplaceSettings overwrites the whole aggregate locally without writing back
func (s *SystemStore) ReplaceSettings(_ context.Context, next *system.SiteSettings) {
	cp := next.Clone()
	cp.ID = system.SettingsID

	s.mu.Lock()
	s.settings = cp
	s.mu.Unlock()
}

// UpdateSettings merges the patch locally and upserts the aggregate in the
// background. While a conflict is pending the change stays in memory only.
// It returns the merged aggregate.
func (s *SystemStore) UpdateSettings(ctx context.Context, patch system.SettingsPatch) *system.SiteSettings {
	updated, _ := s.update(ctx, patch)
	return updated
}

// UpdateSettingsAndWait behaves like UpdateSettings but waits for the upsert
func (s *SystemStore) UpdateSettingsAndWait(ctx context.Context, patch system.SettingsPatch) (*system.SiteSettings, error) {
	updated, done := s.update(ctx, patch)
	return updated, <-done
}

func (s *SystemStore) update(ctx context.Context, patch system.SettingsPatch) (*system.SiteSettings, <-chan error) {
	s.mu.Lock()
	before := s.settings
	next := before.Clone()
	patch.Apply(next)
	next.ID = system.SettingsID
	next.UpdatedAt = s.rt.now()
	s.settings = next
	snapshot := next.Clone()
	s.mu.Unlock()

	if s.remote == nil {
		return snapshot, closedErr(nil)
	}

	done := make(chan error, 1)
	ctx = context.WithoutCancel(ctx)
	s.rt.tracker.Begin()
	s.rt.wg.Add(1)
	go func() {
		defer s.rt.wg.Done()
		defer close(done)
		s.rt.tracker.LockAggregate()
		defer s.rt.tracker.UnlockAggregate()
		if s.rt.tracker.InConflict() {
			s.holdLocally(ctx)
			done <- nil
			return
		}
		err := s.upsert(ctx, snapshot)
		s.settle(ctx, err, before, next)
		done <- err
	}()
	return snapshot, done
}

// holdLocally keeps an edit made during a conflict in memory only. The held
// server copy stays untouched on the remote until the user picks a side.
func (s *SystemStore) holdLocally(ctx context.Context) {
	s.rt.tracker.Succeed(time.Time{})
	logger.WithTraceContext(ctx, s.rt.logger).Info("settings conflict pending, change kept locally")
	if s.rt.activity != nil {
		s.rt.activity.Append(ctx, system.ActivityRecord{
			Label:  "Settings changed locally, resolve the pending conflict to save them",
			Type:   system.ActivityTypeSettings,
			Status: system.ActivityStatusWarning,
		})
	}
}

func (s *SystemStore) upsert(ctx context.Context, snapshot *system.SiteSettings) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "store", "upsert_settings")
	defer span.End()
	if err := s.remote.Upsert(ctx, snapshot); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("upsert settings: %w", err)
	}
	telemetry.SetOK(span)
	return nil
}

// settle reports the outcome. A successful upsert pushed the whole aggregate,
// so it counts as a sync point.
func (s *SystemStore) settle(ctx context.Context, err error, before, next *system.SiteSettings) {
	s.rt.metrics.RecordWrite(ctx, settingsCollection, "upsert", err)
	if err == nil {
		s.rt.tracker.Succeed(next.UpdatedAt)
		return
	}

	s.rt.tracker.Fail(err)
	logger.WithTraceContext(ctx, s.rt.logger).Error("settings write failed",
		zap.Bool("rolled_back", s.rt.policy.RollbackOnFailure),
		zap.Error(err),
	)
	if s.rt.activity != nil {
		s.rt.activity.Append(ctx, system.ActivityRecord{
			Label:  "Failed to save settings: " + err.Error(),
			Type:   system.ActivityTypeSettings,
			Status: system.ActivityStatusError,
		})
	}
	if !s.rt.policy.RollbackOnFailure {
		return
	}
	s.mu.Lock()
	if s.settings == next {
		s.settings = before
	}
	s.mu.Unlock()
	s.rt.metrics.RecordRollback(ctx, settingsCollection, "upsert")
}
