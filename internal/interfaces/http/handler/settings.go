package handler

import (
	"github.com/agency/backend/internal/application/store"
	"github.com/agency/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SettingsHandler serves the site settings aggregate
type SettingsHandler struct {
	BaseHandler
	system *store.SystemStore
}

// NewSettingsHandler creates the handler
func NewSettingsHandler(system *store.SystemStore) *SettingsHandler {
	return &SettingsHandler{system: system}
}

// Get returns the local settings
func (h *SettingsHandler) Get(c *gin.Context) {
	h.Success(c, h.system.Settings())
}

// Update merges the body into the settings. The upsert runs in the background.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.Success(c, h.system.UpdateSettings(c.Request.Context(), req.ToPatch()))
}
