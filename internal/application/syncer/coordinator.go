package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agency/backend/internal/domain/shared"
	"github.com/agency/backend/internal/domain/system"
	"github.com/agency/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Choice is the user's side in a conflict resolution
type Choice string

const (
	ChoiceLocal  Choice = "local"
	ChoiceServer Choice = "server"
)

// IsValid reports whether the choice is known
func (c Choice) IsValid() bool {
	return c == ChoiceLocal || c == ChoiceServer
}

// AggregateSource is the local owner of the settings aggregate
type AggregateSource interface {
	Settings() *system.SiteSettings
	// ReplaceSettings overwrites the local aggregate without writing it back
	ReplaceSettings(ctx context.Context, s *system.SiteSettings)
}

// SettingsRemote is the remote copy of the settings aggregate. Get returns
// shared.ErrNotFound when no row exists yet.
type SettingsRemote interface {
	Get(ctx context.Context, id string) (*system.SiteSettings, error)
	Upsert(ctx context.Context, s *system.SiteSettings) error
}

// ActivityRecorder receives sync events
type ActivityRecorder interface {
	Append(ctx context.Context, rec system.ActivityRecord) system.ActivityRecord
}

// Result describes a completed sync run
type Result struct {
	Status            Status    `json:"status"`
	Diverged          bool      `json:"diverged"`
	LastSyncTimestamp time.Time `json:"lastSyncTimestamp"`
}

// Coordinator synchronizes the settings aggregate as a single unit.
// Divergence found while syncing is reported, never resolved automatically;
// a conflict is only entered through DetectConflict.
type Coordinator struct {
	source   AggregateSource
	remote   SettingsRemote
	tracker  *Tracker
	activity ActivityRecorder
	logger   *zap.Logger
	timeout  time.Duration
	now      func() time.Time
}

// CoordinatorOption configures a Coordinator
type CoordinatorOption func(*Coordinator)

// WithTimeout bounds every remote call, 0 means no bound
func WithTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.timeout = d
	}
}

// WithActivity records sync events to the activity log
func WithActivity(a ActivityRecorder) CoordinatorOption {
	return func(c *Coordinator) {
		c.activity = a
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.now = now
	}
}

// NewCoordinator creates a coordinator. A nil remote means the aggregate lives
// only in memory: syncs succeed without network traffic and no conflict can
// ever be detected.
func NewCoordinator(source AggregateSource, remote SettingsRemote, tracker *Tracker, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		source:  source,
		remote:  remote,
		tracker: tracker,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	if c.tracker == nil {
		c.tracker = NewTracker(0)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the shared sync state
func (c *Coordinator) State() State {
	return c.tracker.State()
}

// InConflict reports whether a detected conflict awaits resolution
func (c *Coordinator) InConflict() bool {
	return c.tracker.InConflict()
}

// StartSync pushes the whole local aggregate with a fresh updatedAt. A remote
// copy newer than the last sync is logged as divergence and then overwritten.
// Failures are reported, not retried.
func (c *Coordinator) StartSync(ctx context.Context) (Result, error) {
	c.tracker.LockAggregate()
	defer c.tracker.UnlockAggregate()

	if c.tracker.InConflict() {
		return Result{Status: StatusConflict, LastSyncTimestamp: c.tracker.State().LastSyncTimestamp},
			shared.NewDomainError("INVALID_STATE", "A sync conflict is pending, resolve it first")
	}
	return c.startSync(ctx)
}

func (c *Coordinator) startSync(ctx context.Context) (Result, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sync", "start")
	defer span.End()

	c.tracker.Begin()
	lastSync := c.tracker.State().LastSyncTimestamp

	if c.remote == nil {
		state := c.tracker.Succeed(c.now())
		c.logger.Debug("sync without remote, aggregate kept in memory")
		return Result{Status: StatusSuccess, LastSyncTimestamp: state.LastSyncTimestamp}, nil
	}

	var result Result
	server, err := c.fetch(ctx)
	if err != nil {
		return c.failSync(ctx, span, fmt.Errorf("fetch remote settings: %w", err))
	}
	if server != nil && diverged(server, lastSync) {
		result.Diverged = true
		c.logger.Warn("remote settings changed since last sync, overwriting",
			zap.Time("remote_updated_at", server.UpdatedAt),
			zap.Time("last_sync", lastSync),
		)
		c.record(ctx, "Remote settings changed since last sync and were overwritten", system.ActivityStatusWarning)
	}

	local := c.source.Settings()
	local.ID = system.SettingsID
	local.UpdatedAt = c.now()
	if err := c.withTimeout(ctx, func(ctx context.Context) error { return c.remote.Upsert(ctx, local) }); err != nil {
		return c.failSync(ctx, span, fmt.Errorf("upsert settings: %w", err))
	}

	state := c.tracker.Succeed(c.now())
	span.SetAttributes(attribute.Bool("sync.diverged", result.Diverged))
	telemetry.SetOK(span)
	c.record(ctx, "Settings synchronized", system.ActivityStatusSuccess)

	result.Status = StatusSuccess
	result.LastSyncTimestamp = state.LastSyncTimestamp
	return result, nil
}

func (c *Coordinator) failSync(ctx context.Context, span trace.Span, err error) (Result, error) {
	state := c.tracker.Fail(err)
	telemetry.RecordError(span, err)
	c.logger.Error("settings sync failed", zap.Error(err))
	c.record(ctx, "Settings sync failed: "+err.Error(), system.ActivityStatusError)
	return Result{Status: StatusError, LastSyncTimestamp: state.LastSyncTimestamp}, err
}

// DetectConflict compares the remote copy against the last sync point and,
// when the remote is newer, holds it and enters the conflict state.
func (c *Coordinator) DetectConflict(ctx context.Context) (bool, error) {
	c.tracker.LockAggregate()
	defer c.tracker.UnlockAggregate()

	if c.remote == nil {
		return false, nil
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "sync", "detect_conflict")
	defer span.End()

	server, err := c.fetch(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return false, fmt.Errorf("fetch remote settings: %w", err)
	}
	if server == nil || !diverged(server, c.tracker.State().LastSyncTimestamp) {
		return false, nil
	}

	c.tracker.EnterConflict(server)
	c.logger.Warn("settings conflict detected", zap.Time("remote_updated_at", server.UpdatedAt))
	c.record(ctx, "Settings conflict detected", system.ActivityStatusWarning)
	return true, nil
}

// ResolveConflict applies the user's choice. Outside the conflict state it is
// a no-op, so repeating a resolution never changes anything.
func (c *Coordinator) ResolveConflict(ctx context.Context, choice Choice) error {
	if !choice.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown conflict choice %q", choice))
	}

	c.tracker.LockAggregate()
	defer c.tracker.UnlockAggregate()

	if !c.tracker.InConflict() {
		return nil
	}

	switch choice {
	case ChoiceLocal:
		c.tracker.ClearConflict()
		c.record(ctx, "Conflict resolved with local settings", system.ActivityStatusInfo)
		_, err := c.startSync(ctx)
		return err
	default:
		return c.takeServer(ctx)
	}
}

// takeServer overwrites the local aggregate with a fresh remote read. On any
// failure the local aggregate and the conflict are left untouched.
func (c *Coordinator) takeServer(ctx context.Context) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "sync", "take_server")
	defer span.End()

	server, err := c.fetch(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("fetch remote settings: %w", err)
	}
	if server == nil {
		err := fmt.Errorf("remote settings vanished: %w", shared.ErrNotFound)
		telemetry.RecordError(span, err)
		return err
	}

	c.source.ReplaceSettings(ctx, server)
	c.tracker.ClearConflict()

	at := c.now()
	if server.UpdatedAt.After(at) {
		at = server.UpdatedAt
	}
	c.tracker.Begin()
	c.tracker.Succeed(at)
	telemetry.SetOK(span)
	c.record(ctx, "Conflict resolved with server settings", system.ActivityStatusInfo)
	return nil
}

// fetch returns nil without error when the remote has no settings row
func (c *Coordinator) fetch(ctx context.Context) (*system.SiteSettings, error) {
	var server *system.SiteSettings
	err := c.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		server, err = c.remote.Get(ctx, system.SettingsID)
		return err
	})
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return server, err
}

func (c *Coordinator) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	if c.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return fn(ctx)
}

func (c *Coordinator) record(ctx context.Context, label string, status system.ActivityStatus) {
	if c.activity == nil {
		return
	}
	c.activity.Append(ctx, system.ActivityRecord{
		Label:  label,
		Type:   system.ActivityTypeSync,
		Status: status,
	})
}

// diverged reports whether the remote copy changed after the last sync point.
// Without any sync point every existing remote copy counts as newer.
func diverged(server *system.SiteSettings, lastSync time.Time) bool {
	return server.UpdatedAt.After(lastSync)
}
