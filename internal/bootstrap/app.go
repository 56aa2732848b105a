// Package bootstrap assembles the stores, the sync coordinator and their
// infrastructure from configuration. Both the API server and agencyctl start
// from here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agency/backend/internal/application/activity"
	"github.com/agency/backend/internal/application/analytics"
	"github.com/agency/backend/internal/application/store"
	"github.com/agency/backend/internal/application/syncer"
	"github.com/agency/backend/internal/infrastructure/cache"
	"github.com/agency/backend/internal/infrastructure/config"
	"github.com/agency/backend/internal/infrastructure/logger"
	"github.com/agency/backend/internal/infrastructure/migration"
	"github.com/agency/backend/internal/infrastructure/persistence"
	"github.com/agency/backend/internal/infrastructure/scheduler"
	"github.com/agency/backend/internal/infrastructure/storage"
	"github.com/agency/backend/internal/infrastructure/telemetry"
	"github.com/agency/backend/internal/interfaces/http/router"
	"github.com/agency/backend/migrations"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds every long-lived component of the process
type App struct {
	Config *config.Config
	Logger *zap.Logger

	// DB and Redis are nil when not configured
	DB    *persistence.Database
	Redis *redis.Client

	Tracker     *syncer.Tracker
	Activity    *activity.Log
	Business    *store.BusinessStore
	Content     *store.ContentStore
	System      *store.SystemStore
	Coordinator *syncer.Coordinator
	Conflicts   *syncer.ConflictSurface
	Analytics   *analytics.Service

	// Watcher is nil unless background conflict checks are configured
	Watcher *scheduler.ConflictWatcher
}

// New connects the configured backends, builds the stores and loads them
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: log}
	if err := a.connect(ctx); err != nil {
		a.closeBackends()
		return nil, err
	}
	if err := a.build(ctx); err != nil {
		a.closeBackends()
		return nil, err
	}
	return a, nil
}

func (a *App) connect(ctx context.Context) error {
	cfg := a.Config
	if cfg.Database.Driver != config.DriverNone {
		db, err := persistence.NewDatabase(&cfg.Database,
			persistence.WithLogger(a.Logger, logger.MapGormLogLevel(cfg.Log.Level)),
			persistence.WithTracing(cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled),
		)
		if err != nil {
			return err
		}
		a.DB = db
		if err := a.migrate(); err != nil {
			return err
		}
		a.Logger.Info("Database connected", zap.String("driver", cfg.Database.Driver))
	}

	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		a.Redis = client
		a.Logger.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}
	return nil
}

// migrate brings the schema up to date. Postgres runs the embedded SQL
// migrations, SQLite uses the GORM models.
func (a *App) migrate() error {
	if a.DB.Driver != config.DriverPostgres {
		return a.DB.AutoMigrate()
	}
	sqlDB, err := a.DB.DB.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	m, err := migration.New(sqlDB, migrations.FS, a.Logger.Named("migrate"))
	if err != nil {
		return err
	}
	return errors.Join(m.Up(), m.Close())
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config
	a.Tracker = syncer.NewTracker(cfg.Sync.DisplayDelay)

	var (
		sinks  []activity.Sink
		source activity.Source
	)
	if a.DB != nil {
		table := persistence.NewActivityTable(a.DB.DB)
		sinks = append(sinks, table)
		source = table
	}
	if a.Redis != nil {
		feed := cache.NewRedisActivityLog(a.Redis, cfg.Sync.ActivityRedisKey, cfg.Sync.ActivityCapacity, a.Logger)
		sinks = append(sinks, feed)
		source = feed
	}
	a.Activity = activity.NewLog(cfg.Sync.ActivityCapacity,
		activity.WithSinks(sinks...),
		activity.WithLogger(a.Logger),
	)
	if source != nil {
		if err := a.Activity.Hydrate(ctx, source); err != nil {
			a.Logger.Warn("Activity history not loaded", zap.Error(err))
		}
	}

	metrics, err := telemetry.NewWriteMetrics(nil)
	if err != nil {
		return fmt.Errorf("create write metrics: %w", err)
	}
	opts := store.Options{
		Policy:   store.Policy{RollbackOnFailure: cfg.Sync.RollbackOnFailure},
		Tracker:  a.Tracker,
		Activity: a.Activity,
		Logger:   a.Logger,
		Metrics:  metrics,
	}

	var (
		business store.BusinessTables
		content  store.ContentTables
		remote   syncer.SettingsRemote
	)
	if a.DB != nil {
		business = a.DB.BusinessTables()
		content = a.DB.ContentTables()
		remote = persistence.NewGormSettingsTable(a.DB.DB)
	}
	a.Business = store.NewBusinessStore(business, opts)
	a.Content = store.NewContentStore(content, opts)
	a.System = store.NewSystemStore(remote, opts)

	if err := errors.Join(a.Business.Init(ctx), a.Content.Init(ctx), a.System.Init(ctx)); err != nil {
		return fmt.Errorf("load stores: %w", err)
	}

	a.Coordinator = syncer.NewCoordinator(a.System, remote, a.Tracker,
		syncer.WithTimeout(cfg.Sync.Timeout),
		syncer.WithActivity(a.Activity),
		syncer.WithLogger(a.Logger.Named("sync")),
	)
	a.Conflicts = syncer.NewConflictSurface(a.Coordinator, a.System)
	if remote != nil && cfg.Sync.ConflictCheckInterval > 0 {
		a.Watcher = scheduler.NewConflictWatcher(a.Coordinator, cfg.Sync.ConflictCheckInterval, a.Logger.Named("scheduler"))
	}

	exports, err := a.exportStorage(ctx)
	if err != nil {
		return err
	}
	a.Analytics = analytics.NewService(a.Business,
		analytics.WithStorage(exports),
		analytics.WithLogger(a.Logger.Named("analytics")),
	)
	return nil
}

func (a *App) exportStorage(ctx context.Context) (analytics.ExportStorage, error) {
	cfg := a.Config.Storage
	if !cfg.Enabled {
		return storage.NewMemoryExportStorage(cfg.Prefix), nil
	}
	s3, err := storage.NewS3ExportStorage(&cfg, storage.WithLogger(a.Logger))
	if err != nil {
		return nil, fmt.Errorf("create export storage: %w", err)
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("prepare export bucket: %w", err)
	}
	return s3, nil
}

// Deps returns the dependencies of the HTTP handlers
func (a *App) Deps() router.Deps {
	d := router.Deps{
		Business:    a.Business,
		Content:     a.Content,
		System:      a.System,
		Coordinator: a.Coordinator,
		Conflicts:   a.Conflicts,
		Tracker:     a.Tracker,
		Activity:    a.Activity,
		Analytics:   a.Analytics,
		Clock:       time.Now,
	}
	if a.DB != nil {
		d.DB = a.DB
	}
	return d
}

// Start launches the background jobs
func (a *App) Start(ctx context.Context) {
	if a.Watcher != nil {
		a.Watcher.Start(ctx)
	}
}

// Close stops background jobs, waits for pending remote writes, then
// releases the backends
func (a *App) Close(ctx context.Context) error {
	var stopErr error
	if a.Watcher != nil {
		stopErr = a.Watcher.Stop(ctx)
	}
	err := errors.Join(
		stopErr,
		a.Business.Dispose(ctx),
		a.Content.Dispose(ctx),
		a.System.Dispose(ctx),
	)
	a.Tracker.Close()
	return errors.Join(err, a.closeBackends())
}

func (a *App) closeBackends() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
