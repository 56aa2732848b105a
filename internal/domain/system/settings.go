// Package system holds the site-wide configuration aggregate and the
// activity records written by every store.
package system

import (
	"encoding/json"
	"maps"
	"time"
)

// SettingsID is the fixed identity of the settings aggregate
const SettingsID = "main"

// Brand describes the public identity of the agency
type Brand struct {
	Name         string `json:"name"`
	Tagline      string `json:"tagline,omitempty"`
	LogoURL      string `json:"logoUrl,omitempty"`
	PrimaryColor string `json:"primaryColor,omitempty"`
}

// ContactInfo holds the public contact channels
type ContactInfo struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Website string `json:"website,omitempty"`
}

// AIConfig configures the content assistant
type AIConfig struct {
	Provider    string  `json:"provider,omitempty"`
	Model       string  `json:"model,omitempty"`
	Enabled     bool    `json:"enabled"`
	Temperature float64 `json:"temperature"`
}

// SiteSettings is the singleton configuration aggregate. It is always read
// and written as one unit.
type SiteSettings struct {
	ID          string          `json:"id"`
	Brand       Brand           `json:"brand"`
	ContactInfo ContactInfo     `json:"contactInfo"`
	AIConfig    AIConfig        `json:"aiConfig"`
	Features    map[string]bool `json:"features"`
	Extra       map[string]any  `json:"extra"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// DefaultSettings returns an empty aggregate with its fixed id
func DefaultSettings() *SiteSettings {
	return &SiteSettings{
		ID:       SettingsID,
		Features: map[string]bool{},
		Extra:    map[string]any{},
	}
}

// Clone returns a deep copy of the aggregate. Extra is copied through JSON so
// nested maps and slices are not shared.
func (s *SiteSettings) Clone() *SiteSettings {
	cp := *s
	cp.Features = maps.Clone(s.Features)
	if cp.Features == nil {
		cp.Features = map[string]bool{}
	}
	cp.Extra = cloneExtra(s.Extra)
	return &cp
}

// Sections returns the top-level sections of the aggregate keyed by their
// JSON name. Used to diff two snapshots section by section.
func (s *SiteSettings) Sections() map[string]any {
	return map[string]any{
		"brand":       s.Brand,
		"contactInfo": s.ContactInfo,
		"aiConfig":    s.AIConfig,
		"features":    s.Features,
		"extra":       s.Extra,
	}
}

func cloneExtra(src map[string]any) map[string]any {
	if len(src) == 0 {
		return map[string]any{}
	}
	raw, err := json.Marshal(src)
	if err != nil {
		return maps.Clone(src)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return maps.Clone(src)
	}
	return out
}

// SettingsPatch is a partial update of the aggregate. Section pointers replace
// the whole section; Features and Extra are merged key by key.
type SettingsPatch struct {
	Brand       *Brand          `json:"brand,omitempty"`
	ContactInfo *ContactInfo    `json:"contactInfo,omitempty"`
	AIConfig    *AIConfig       `json:"aiConfig,omitempty"`
	Features    map[string]bool `json:"features,omitempty"`
	Extra       map[string]any  `json:"extra,omitempty"`
}

// Apply merges the patch into the aggregate
func (p SettingsPatch) Apply(s *SiteSettings) {
	if p.Brand != nil {
		s.Brand = *p.Brand
	}
	if p.ContactInfo != nil {
		s.ContactInfo = *p.ContactInfo
	}
	if p.AIConfig != nil {
		s.AIConfig = *p.AIConfig
	}
	if len(p.Features) > 0 {
		if s.Features == nil {
			s.Features = map[string]bool{}
		}
		maps.Copy(s.Features, p.Features)
	}
	if len(p.Extra) > 0 {
		if s.Extra == nil {
			s.Extra = map[string]any{}
		}
		maps.Copy(s.Extra, cloneExtra(p.Extra))
	}
}
