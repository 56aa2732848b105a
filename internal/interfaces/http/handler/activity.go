package handler

import (
	"strconv"

	"github.com/agency/backend/internal/application/activity"
	"github.com/gin-gonic/gin"
)

// DefaultActivityLimit is used when ?limit is absent
const DefaultActivityLimit = 50

// ActivityHandler serves the activity log
type ActivityHandler struct {
	BaseHandler
	log *activity.Log
}

// NewActivityHandler creates the handler
func NewActivityHandler(log *activity.Log) *ActivityHandler {
	return &ActivityHandler{log: log}
}

// List returns the newest entries. limit=0 returns everything held.
func (h *ActivityHandler) List(c *gin.Context) {
	limit := DefaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.BadRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	entries := h.log.Recent(limit)
	h.SuccessList(c, entries, len(entries))
}
