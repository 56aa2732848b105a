package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/agency/backend/internal/application/syncer"
	"github.com/agency/backend/internal/domain/system"
	"github.com/agency/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSyncRouter(f *fixture) *gin.Engine {
	coordinator := syncer.NewCoordinator(f.system, f.remote, f.tracker,
		syncer.WithActivity(f.activity), syncer.WithClock(clock))
	sh := NewSyncHandler(coordinator, syncer.NewConflictSurface(coordinator, f.system))
	st := NewSettingsHandler(f.system)

	r := gin.New()
	r.GET("/settings", st.Get)
	r.PUT("/settings", st.Update)
	r.POST("/sync", sh.Start)
	r.GET("/sync/status", sh.Status)
	r.POST("/sync/conflict/detect", sh.Detect)
	r.GET("/sync/conflict", sh.Conflict)
	r.POST("/sync/conflict/resolve", sh.Resolve)
	return r
}

func TestSettingsHandler_Update(t *testing.T) {
	f := newFixture(t)
	r := newSyncRouter(f)

	w := doJSON(t, r, http.MethodPut, "/settings", map[string]any{
		"brand":    map[string]any{"name": "Northwind"},
		"features": map[string]bool{"blog": true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Northwind", dataMap(t, decode(t, w))["brand"].(map[string]any)["name"])

	require.NoError(t, f.system.Dispose(context.Background()))
	stored := f.remote.current()
	require.NotNil(t, stored)
	assert.Equal(t, "Northwind", stored.Brand.Name)
	assert.True(t, stored.Features["blog"])

	w = doJSON(t, r, http.MethodPut, "/settings", map[string]any{"aiConfig": map[string]any{"temperature": 3}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/sync/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(syncer.StatusSuccess), dataMap(t, decode(t, w))["status"])
}

func TestSyncHandler_ConflictFlow(t *testing.T) {
	f := newFixture(t)
	r := newSyncRouter(f)

	// no conflict yet
	w := doJSON(t, r, http.MethodGet, "/sync/conflict", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeNoConflict, decode(t, w).Error.Code)

	server := system.DefaultSettings()
	server.Brand.Name = "Edited elsewhere"
	server.UpdatedAt = testNow.Add(time.Hour)
	f.remote.set(server)

	w = doJSON(t, r, http.MethodPost, "/sync/conflict/detect", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, dataMap(t, decode(t, w))["conflict"])

	w = doJSON(t, r, http.MethodGet, "/sync/conflict", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := dataMap(t, decode(t, w))
	diffs := view["differences"].([]any)
	require.Len(t, diffs, 1)
	assert.Equal(t, "brand", diffs[0].(map[string]any)["section"])

	w = doJSON(t, r, http.MethodPost, "/sync", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, decode(t, w).Error.Code)

	w = doJSON(t, r, http.MethodPost, "/sync/conflict/resolve", map[string]any{"choice": "both"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/sync/conflict/resolve", map[string]any{"choice": "server"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEqual(t, string(syncer.StatusConflict), dataMap(t, decode(t, w))["status"])
	assert.Equal(t, "Edited elsewhere", f.system.Settings().Brand.Name)

	// resolving again is a no-op
	w = doJSON(t, r, http.MethodPost, "/sync/conflict/resolve", map[string]any{"choice": "local"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Edited elsewhere", f.remote.current().Brand.Name)
}

func TestSyncHandler_Start(t *testing.T) {
	f := newFixture(t)
	r := newSyncRouter(f)

	w := doJSON(t, r, http.MethodPost, "/sync", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataMap(t, decode(t, w))
	assert.Equal(t, string(syncer.StatusSuccess), data["status"])
	assert.Equal(t, false, data["diverged"])
	require.NotNil(t, f.remote.current())

	f.remote.err = assert.AnError
	w = doJSON(t, r, http.MethodPost, "/sync", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, syncer.StatusError, f.tracker.State().Status)
}
