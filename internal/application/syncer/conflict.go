package syncer

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"time"

	"github.com/agency/backend/internal/domain/shared"
	"github.com/agency/backend/internal/domain/system"
)

// FieldDiff is one top-level settings section that differs between the local
// aggregate and the held server snapshot
type FieldDiff struct {
	Section string `json:"section"`
	Local   any    `json:"local"`
	Server  any    `json:"server"`
}

// ConflictView is the side-by-side presentation of a pending conflict
type ConflictView struct {
	Local           *system.SiteSettings `json:"local"`
	Server          *system.SiteSettings `json:"server"`
	ServerUpdatedAt time.Time            `json:"serverUpdatedAt"`
	LastSync        time.Time            `json:"lastSync"`
	Differences     []FieldDiff          `json:"differences"`
}

// ConflictSurface presents a pending conflict and forwards the user's choice
type ConflictSurface struct {
	coordinator *Coordinator
	source      AggregateSource
}

// NewConflictSurface creates the surface over a coordinator and the local aggregate owner
func NewConflictSurface(c *Coordinator, source AggregateSource) *ConflictSurface {
	return &ConflictSurface{coordinator: c, source: source}
}

// View returns both snapshots while a conflict is pending, ErrNoConflict otherwise
func (s *ConflictSurface) View() (ConflictView, error) {
	state := s.coordinator.State()
	if state.Status != StatusConflict || state.ServerSnapshot == nil {
		return ConflictView{}, shared.ErrNoConflict
	}
	local := s.source.Settings()
	server := state.ServerSnapshot
	return ConflictView{
		Local:           local,
		Server:          server,
		ServerUpdatedAt: server.UpdatedAt,
		LastSync:        state.LastSyncTimestamp,
		Differences:     Diff(local, server),
	}, nil
}

// Resolve applies the choice. Once the conflict is gone, repeated calls are no-ops.
func (s *ConflictSurface) Resolve(ctx context.Context, choice Choice) error {
	return s.coordinator.ResolveConflict(ctx, choice)
}

// Diff lists the sections whose JSON form differs, sorted by section name
func Diff(local, server *system.SiteSettings) []FieldDiff {
	ls, ss := local.Sections(), server.Sections()
	names := make([]string, 0, len(ls))
	for name := range ls {
		names = append(names, name)
	}
	sort.Strings(names)

	diffs := []FieldDiff{}
	for _, name := range names {
		if !sameJSON(ls[name], ss[name]) {
			diffs = append(diffs, FieldDiff{Section: name, Local: ls[name], Server: ss[name]})
		}
	}
	return diffs
}

func sameJSON(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	var va, vb any
	_ = json.Unmarshal(ja, &va)
	_ = json.Unmarshal(jb, &vb)
	if isEmpty(va) && isEmpty(vb) {
		return true
	}
	return reflect.DeepEqual(va, vb)
}

// isEmpty treats null and {} as the same section value
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	m, ok := v.(map[string]any)
	return ok && len(m) == 0
}
