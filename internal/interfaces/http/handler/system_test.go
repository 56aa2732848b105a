package handler

import (
	"net/http"
	"testing"

	"github.com/agency/backend/internal/application/syncer"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func() error

func (f pingerFunc) Ping() error { return f() }

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name     string
		db       Pinger
		status   int
		overall  string
		database string
	}{
		{"in memory", nil, http.StatusOK, "ok", "disabled"},
		{"database up", pingerFunc(func() error { return nil }), http.StatusOK, "ok", "ok"},
		{"database down", pingerFunc(func() error { return assert.AnError }), http.StatusServiceUnavailable, "degraded", "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewSystemHandler(tt.db, syncer.NewTracker(0)).Health)

			w := doJSON(t, r, http.MethodGet, "/health", nil)
			require.Equal(t, tt.status, w.Code)
			data := dataMap(t, decode(t, w))
			assert.Equal(t, tt.overall, data["status"])
			assert.Equal(t, tt.database, data["database"])
			assert.Equal(t, "idle", data["sync"])
		})
	}
}
