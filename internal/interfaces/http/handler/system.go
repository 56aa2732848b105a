package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/agency/backend/internal/application/syncer"
	"github.com/agency/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Health states
const (
	healthOK       = "ok"
	healthDegraded = "degraded"
	healthDisabled = "disabled"
	healthDown     = "down"
)

// Pinger checks a dependency
type Pinger interface {
	Ping() error
}

// SystemHandler serves process health
type SystemHandler struct {
	BaseHandler
	db      Pinger
	tracker *syncer.Tracker
	timeout time.Duration
}

// NewSystemHandler creates the handler. A nil db reports the database as
// disabled, which is not a failure.
func NewSystemHandler(db Pinger, tracker *syncer.Tracker) *SystemHandler {
	return &SystemHandler{db: db, tracker: tracker, timeout: 2 * time.Second}
}

// Health reports the database reachability and the sync status. An
// unreachable database degrades the service to 503 since every write would fail.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{Status: healthOK, Database: healthDisabled}
	if h.tracker != nil {
		resp.Sync = string(h.tracker.State().Status)
	}

	if h.db != nil {
		resp.Database = healthOK
		if err := h.ping(c.Request.Context()); err != nil {
			resp.Database = healthDown
			resp.Status = healthDegraded
			c.JSON(http.StatusServiceUnavailable, dto.Response{Data: resp})
			return
		}
	}
	h.Success(c, resp)
}

func (h *SystemHandler) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- h.db.Ping() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
