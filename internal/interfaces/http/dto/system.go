package dto

import (
	"time"

	"github.com/agency/backend/internal/domain/system"
)

// UpdateSettingsRequest is the body of PUT /settings. Absent sections are kept;
// features and extra are merged key by key.
type UpdateSettingsRequest struct {
	Brand       *system.Brand       `json:"brand"`
	ContactInfo *system.ContactInfo `json:"contactInfo"`
	AIConfig    *AIConfigRequest    `json:"aiConfig"`
	Features    map[string]bool     `json:"features"`
	Extra       map[string]any      `json:"extra"`
}

// AIConfigRequest validates the AI section
type AIConfigRequest struct {
	Provider    string  `json:"provider" binding:"max=50"`
	Model       string  `json:"model" binding:"max=100"`
	Enabled     bool    `json:"enabled"`
	Temperature float64 `json:"temperature" binding:"gte=0,lte=2"`
}

// ToPatch converts the request to a settings patch
func (r UpdateSettingsRequest) ToPatch() system.SettingsPatch {
	p := system.SettingsPatch{
		Brand:       r.Brand,
		ContactInfo: r.ContactInfo,
		Features:    r.Features,
		Extra:       r.Extra,
	}
	if r.AIConfig != nil {
		p.AIConfig = &system.AIConfig{
			Provider:    r.AIConfig.Provider,
			Model:       r.AIConfig.Model,
			Enabled:     r.AIConfig.Enabled,
			Temperature: r.AIConfig.Temperature,
		}
	}
	return p
}

// ResolveConflictRequest is the body of POST /sync/conflict/resolve
type ResolveConflictRequest struct {
	Choice string `json:"choice" binding:"required,oneof=local server"`
}

// DetectConflictResponse reports whether a conflict was entered
type DetectConflictResponse struct {
	Conflict bool `json:"conflict"`
}

// ExportResponse describes an uploaded analytics export
type ExportResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Sync     string `json:"sync"`
}
