package handler

import (
	"github.com/agency/backend/internal/application/syncer"
	"github.com/agency/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SyncHandler exposes the sync coordinator and the conflict surface
type SyncHandler struct {
	BaseHandler
	coordinator *syncer.Coordinator
	conflicts   *syncer.ConflictSurface
}

// NewSyncHandler creates the handler
func NewSyncHandler(coordinator *syncer.Coordinator, conflicts *syncer.ConflictSurface) *SyncHandler {
	return &SyncHandler{coordinator: coordinator, conflicts: conflicts}
}

// Start runs a whole-aggregate sync
func (h *SyncHandler) Start(c *gin.Context) {
	result, err := h.coordinator.StartSync(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Status returns the shared sync state
func (h *SyncHandler) Status(c *gin.Context) {
	h.Success(c, h.coordinator.State())
}

// Detect checks the remote copy and enters the conflict state when it is newer
func (h *SyncHandler) Detect(c *gin.Context) {
	conflict, err := h.coordinator.DetectConflict(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.DetectConflictResponse{Conflict: conflict})
}

// Conflict returns the side-by-side view of a pending conflict
func (h *SyncHandler) Conflict(c *gin.Context) {
	view, err := h.conflicts.View()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Resolve applies the chosen side and returns the resulting state
func (h *SyncHandler) Resolve(c *gin.Context) {
	var req dto.ResolveConflictRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.conflicts.Resolve(c.Request.Context(), syncer.Choice(req.Choice)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.coordinator.State())
}
