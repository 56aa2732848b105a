package store

import (
	"context"
	"testing"
	"time"

	"github.com/agency/backend/internal/application/syncer"
	"github.com/agency/backend/internal/domain/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func brandPatch(name string) system.SettingsPatch {
	return system.SettingsPatch{Brand: &system.Brand{Name: name}}
}

func TestSystemStore_Init(t *testing.T) {
	t.Run("loads remote row", func(t *testing.T) {
		remote := &fakeSettingsRemote{row: system.DefaultSettings()}
		remote.row.Brand.Name = "Remote Co"
		remote.row.UpdatedAt = testNow
		tracker := syncer.NewTracker(0)
		s := NewSystemStore(remote, Options{Tracker: tracker})

		require.NoError(t, s.Init(context.Background()))

		assert.Equal(t, "Remote Co", s.Settings().Brand.Name)
		assert.Equal(t, testNow, tracker.State().LastSyncTimestamp)
	})

	t.Run("missing row keeps defaults", func(t *testing.T) {
		s := NewSystemStore(&fakeSettingsRemote{}, Options{})

		require.NoError(t, s.Init(context.Background()))

		assert.Equal(t, system.DefaultSettings().Brand, s.Settings().Brand)
	})

	t.Run("unreachable remote is logged", func(t *testing.T) {
		core, recorded := observer.New(zapcore.WarnLevel)
		s := NewSystemStore(&fakeSettingsRemote{getErr: errRemoteDown}, Options{Logger: zap.New(core)})

		require.NoError(t, s.Init(context.Background()))

		assert.Equal(t, 1, recorded.Len())
		assert.Equal(t, system.DefaultSettings().Brand, s.Settings().Brand)
	})
}

func TestSystemStore_UpdateSettings(t *testing.T) {
	tracker := syncer.NewTracker(time.Hour)
	defer tracker.Close()
	remote := &fakeSettingsRemote{}
	s := NewSystemStore(remote, Options{Tracker: tracker, Clock: func() time.Time { return testNow }})

	updated, err := s.UpdateSettingsAndWait(context.Background(), brandPatch("Agency"))

	require.NoError(t, err)
	assert.Equal(t, "Agency", updated.Brand.Name)
	assert.Equal(t, testNow, updated.UpdatedAt)
	assert.Equal(t, "Agency", remote.row.Brand.Name)
	assert.Equal(t, 1, remote.upserts)

	state := tracker.State()
	assert.Equal(t, syncer.StatusSuccess, state.Status)
	assert.False(t, state.LastSyncTimestamp.Before(testNow))
}

func TestSystemStore_OwnWriteIsNotAConflict(t *testing.T) {
	tracker := syncer.NewTracker(0)
	remote := &fakeSettingsRemote{}
	s := NewSystemStore(remote, Options{Tracker: tracker})
	coord := syncer.NewCoordinator(s, remote, tracker)

	_, err := s.UpdateSettingsAndWait(context.Background(), brandPatch("Agency"))
	require.NoError(t, err)

	conflict, err := coord.DetectConflict(context.Background())
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestSystemStore_InFlightWriteIsNotAConflict(t *testing.T) {
	ctx := context.Background()
	tracker := syncer.NewTracker(0)
	remote := &fakeSettingsRemote{committed: make(chan struct{}, 1), release: make(chan struct{})}
	s := NewSystemStore(remote, Options{Tracker: tracker})
	coord := syncer.NewCoordinator(s, remote, tracker)

	s.UpdateSettings(ctx, brandPatch("Agency"))
	<-remote.committed

	detected := make(chan bool, 1)
	go func() {
		conflict, err := coord.DetectConflict(ctx)
		assert.NoError(t, err)
		detected <- conflict
	}()
	close(remote.release)

	assert.False(t, <-detected)
	require.NoError(t, s.Dispose(ctx))
	assert.NotEqual(t, syncer.StatusConflict, tracker.State().Status)
}

func TestSystemStore_UpdateDuringConflictStaysLocal(t *testing.T) {
	newConflict := func(t *testing.T) (*SystemStore, *syncer.Coordinator, *fakeSettingsRemote, *activityRecorder) {
		ctx := context.Background()
		tracker := syncer.NewTracker(0)
		remote := &fakeSettingsRemote{}
		activity := &activityRecorder{}
		s := NewSystemStore(remote, Options{Tracker: tracker, Activity: activity})
		coord := syncer.NewCoordinator(s, remote, tracker)

		_, err := s.UpdateSettingsAndWait(ctx, brandPatch("Mine"))
		require.NoError(t, err)
		theirs, _ := remote.snapshot()
		theirs.Brand.Name = "Theirs"
		theirs.UpdatedAt = tracker.State().LastSyncTimestamp.Add(time.Minute)
		remote.setRow(theirs)

		conflict, err := coord.DetectConflict(ctx)
		require.NoError(t, err)
		require.True(t, conflict)

		updated, err := s.UpdateSettingsAndWait(ctx, system.SettingsPatch{Features: map[string]bool{"blog": true}})
		require.NoError(t, err)
		assert.True(t, updated.Features["blog"])
		return s, coord, remote, activity
	}

	t.Run("server copy is not overwritten", func(t *testing.T) {
		_, coord, remote, activity := newConflict(t)

		row, upserts := remote.snapshot()
		assert.Equal(t, "Theirs", row.Brand.Name)
		assert.Equal(t, 1, upserts)
		assert.True(t, coord.InConflict())
		assert.Len(t, activity.withStatus(system.ActivityStatusWarning), 1)
	})

	t.Run("choosing server drops the local edit", func(t *testing.T) {
		s, coord, _, _ := newConflict(t)

		require.NoError(t, coord.ResolveConflict(context.Background(), syncer.ChoiceServer))

		assert.Equal(t, "Theirs", s.Settings().Brand.Name)
		assert.False(t, s.Settings().Features["blog"])
	})

	t.Run("choosing local pushes the edit", func(t *testing.T) {
		_, coord, remote, _ := newConflict(t)

		require.NoError(t, coord.ResolveConflict(context.Background(), syncer.ChoiceLocal))

		row, _ := remote.snapshot()
		assert.Equal(t, "Mine", row.Brand.Name)
		assert.True(t, row.Features["blog"])
	})
}

func TestSystemStore_FailedUpsert(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		wantName string
	}{
		{"keeps local change", Policy{}, "Agency"},
		{"rolls back", Policy{RollbackOnFailure: true}, system.DefaultSettings().Brand.Name},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := syncer.NewTracker(time.Hour)
			defer tracker.Close()
			activity := &activityRecorder{}
			s := NewSystemStore(&fakeSettingsRemote{upsertErr: errRemoteDown}, Options{
				Policy:   tt.policy,
				Tracker:  tracker,
				Activity: activity,
			})

			_, err := s.UpdateSettingsAndWait(context.Background(), brandPatch("Agency"))

			require.ErrorIs(t, err, errRemoteDown)
			assert.Equal(t, tt.wantName, s.Settings().Brand.Name)
			assert.Equal(t, syncer.StatusError, tracker.State().Status)
			failures := activity.withStatus(system.ActivityStatusError)
			require.Len(t, failures, 1)
			assert.Equal(t, system.ActivityTypeSettings, failures[0].Type)
		})
	}
}

func TestSystemStore_NilRemote(t *testing.T) {
	s := NewSystemStore(nil, Options{})

	require.NoError(t, s.Init(context.Background()))
	updated, err := s.UpdateSettingsAndWait(context.Background(), system.SettingsPatch{
		Features: map[string]bool{"blog": true},
	})

	require.NoError(t, err)
	assert.True(t, updated.Features["blog"])
	require.NoError(t, s.Dispose(context.Background()))
}

func TestSystemStore_ReplaceSettingsDoesNotWriteBack(t *testing.T) {
	remote := &fakeSettingsRemote{}
	s := NewSystemStore(remote, Options{})
	next := system.DefaultSettings()
	next.ID = "other"
	next.Brand.Name = "Server"

	s.ReplaceSettings(context.Background(), next)
	require.NoError(t, s.Dispose(context.Background()))

	got := s.Settings()
	assert.Equal(t, "Server", got.Brand.Name)
	assert.Equal(t, system.SettingsID, got.ID)
	assert.Zero(t, remote.upserts)
}
