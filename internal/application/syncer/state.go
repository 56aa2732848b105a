// Package syncer tracks the visible synchronization status and coordinates
// whole-aggregate synchronization of the site settings with the remote.
package syncer

import (
	"sync"
	"time"

	"github.com/agency/backend/internal/domain/system"
)

// Status is the visible synchronization status
type Status string

const (
	StatusIdle     Status = "idle"
	StatusSyncing  Status = "syncing"
	StatusSuccess  Status = "success"
	StatusError    Status = "error"
	StatusConflict Status = "conflict"
)

// State is a point-in-time copy of the tracker
type State struct {
	Status            Status               `json:"status"`
	LastSyncTimestamp time.Time            `json:"lastSyncTimestamp"`
	LastError         string               `json:"lastError,omitempty"`
	ServerSnapshot    *system.SiteSettings `json:"serverSnapshot,omitempty"`
	Pending           int                  `json:"pending"`
}

// Tracker owns the shared sync state. success and error fall back to idle
// after the display delay unless another transition happened meanwhile.
// While in conflict, write traffic does not change the visible status.
type Tracker struct {
	mu           sync.Mutex
	state        State
	displayDelay time.Duration
	gen          uint64
	timer        *time.Timer
	closed       bool

	// held by settings writes, sync, detection and resolution
	aggregate sync.Mutex
}

// NewTracker creates an idle tracker
func NewTracker(displayDelay time.Duration) *Tracker {
	return &Tracker{
		state:        State{Status: StatusIdle},
		displayDelay: displayDelay,
	}
}

// State returns a copy of the current state
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.copyState()
}

func (t *Tracker) copyState() State {
	s := t.state
	if s.ServerSnapshot != nil {
		s.ServerSnapshot = s.ServerSnapshot.Clone()
	}
	return s
}

// Begin marks one more remote operation in flight
func (t *Tracker) Begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Pending++
	if t.state.Status != StatusConflict {
		t.transition(StatusSyncing)
	}
}

// Succeed completes an in-flight operation. A non-zero syncedAt advances the
// last sync timestamp, which stays strictly increasing even when two syncs
// read the same clock value.
func (t *Tracker) Succeed(syncedAt time.Time) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done()
	if !syncedAt.IsZero() {
		t.stamp(syncedAt)
	}
	if t.state.Status != StatusConflict && t.state.Pending == 0 {
		t.state.LastError = ""
		t.transition(StatusSuccess)
	}
	return t.copyState()
}

// Fail completes an in-flight operation with an error
func (t *Tracker) Fail(err error) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done()
	if err != nil {
		t.state.LastError = err.Error()
	}
	if t.state.Status != StatusConflict {
		t.transition(StatusError)
	}
	return t.copyState()
}

// EnterConflict holds the server snapshot until the conflict is resolved
func (t *Tracker) EnterConflict(server *system.SiteSettings) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.ServerSnapshot = server.Clone()
	t.transition(StatusConflict)
}

// ClearConflict drops the held snapshot and leaves the conflict status.
// It reports whether a conflict was pending.
func (t *Tracker) ClearConflict() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Status != StatusConflict {
		return false
	}
	t.state.ServerSnapshot = nil
	t.transition(StatusIdle)
	return true
}

// LockAggregate serializes remote work on the settings aggregate. A settings
// write holds it from the upsert until its sync point is stamped, so conflict
// detection never sees a write of this process as a newer remote copy.
func (t *Tracker) LockAggregate() {
	t.aggregate.Lock()
}

// UnlockAggregate releases LockAggregate
func (t *Tracker) UnlockAggregate() {
	t.aggregate.Unlock()
}

// InConflict reports whether a conflict is pending
func (t *Tracker) InConflict() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Status == StatusConflict
}

// Close stops the pending idle timer
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *Tracker) done() {
	if t.state.Pending > 0 {
		t.state.Pending--
	}
}

func (t *Tracker) stamp(at time.Time) {
	if !at.After(t.state.LastSyncTimestamp) {
		at = t.state.LastSyncTimestamp.Add(time.Millisecond)
	}
	t.state.LastSyncTimestamp = at
}

// transition must be called with mu held
func (t *Tracker) transition(s Status) {
	t.gen++
	t.state.Status = s
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if s != StatusSuccess && s != StatusError {
		return
	}
	if t.displayDelay <= 0 {
		t.state.Status = StatusIdle
		return
	}
	if t.closed {
		return
	}
	gen := t.gen
	t.timer = time.AfterFunc(t.displayDelay, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.gen == gen {
			t.state.Status = StatusIdle
		}
	})
}
