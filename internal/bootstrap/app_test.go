package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/agency/backend/internal/application/syncer"
	"github.com/agency/backend/internal/domain/crm"
	"github.com/agency/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverNone},
		Sync:     config.SyncConfig{ActivityCapacity: 10},
		Storage:  config.StorageConfig{Prefix: "exports/"},
	}
}

func TestNew_InMemory(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, memoryConfig(), zap.NewNop())
	require.NoError(t, err)

	assert.Nil(t, app.DB)
	assert.Nil(t, app.Redis)
	assert.Nil(t, app.Deps().DB)

	id, err := app.Business.Clients.CreateAndWait(ctx, &crm.Client{Name: "Acme"})
	require.NoError(t, err)
	_, ok := app.Business.Clients.Get(id)
	assert.True(t, ok)

	result, err := app.Coordinator.StartSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, syncer.StatusSuccess, result.Status)
	assert.False(t, result.LastSyncTimestamp.IsZero())

	conflict, err := app.Coordinator.DetectConflict(ctx)
	require.NoError(t, err)
	assert.False(t, conflict)

	assert.Positive(t, app.Activity.Len())
	require.NoError(t, app.Close(ctx))
}

func TestNew_WatcherNeedsRemote(t *testing.T) {
	cfg := memoryConfig()
	cfg.Sync.ConflictCheckInterval = time.Minute

	app, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, app.Watcher)

	app.Start(context.Background())
	require.NoError(t, app.Close(context.Background()))
}
