package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/agency/backend/internal/domain/system"
)

// SettingsModel is the single-row site settings table. Each section is its
// own JSON column; Data holds the free-form extra section.
type SettingsModel struct {
	ID          string    `gorm:"type:varchar(32);primaryKey"`
	Brand       string    `gorm:"type:jsonb;not null"`
	ContactInfo string    `gorm:"type:jsonb;not null"`
	AIConfig    string    `gorm:"column:ai_config;type:jsonb;not null"`
	Features    string    `gorm:"type:jsonb;not null"`
	Data        string    `gorm:"type:jsonb;not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name
func (SettingsModel) TableName() string {
	return "site_settings"
}

// ToDomain decodes every section column
func (m *SettingsModel) ToDomain() (*system.SiteSettings, error) {
	s := &system.SiteSettings{ID: m.ID, UpdatedAt: m.UpdatedAt}
	columns := []struct {
		name string
		raw  string
		dst  any
	}{
		{"brand", m.Brand, &s.Brand},
		{"contact_info", m.ContactInfo, &s.ContactInfo},
		{"ai_config", m.AIConfig, &s.AIConfig},
		{"features", m.Features, &s.Features},
		{"data", m.Data, &s.Extra},
	}
	for _, col := range columns {
		if col.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(col.raw), col.dst); err != nil {
			return nil, fmt.Errorf("decode settings column %s: %w", col.name, err)
		}
	}
	if s.Features == nil {
		s.Features = map[string]bool{}
	}
	if s.Extra == nil {
		s.Extra = map[string]any{}
	}
	return s, nil
}

// SettingsModelFromDomain encodes the aggregate into its columns
func SettingsModelFromDomain(s *system.SiteSettings) (*SettingsModel, error) {
	m := &SettingsModel{ID: s.ID, UpdatedAt: s.UpdatedAt}
	columns := []struct {
		name string
		src  any
		dst  *string
	}{
		{"brand", s.Brand, &m.Brand},
		{"contact_info", s.ContactInfo, &m.ContactInfo},
		{"ai_config", s.AIConfig, &m.AIConfig},
		{"features", nonNilMap(s.Features), &m.Features},
		{"data", nonNilMap(s.Extra), &m.Data},
	}
	for _, col := range columns {
		b, err := json.Marshal(col.src)
		if err != nil {
			return nil, fmt.Errorf("encode settings column %s: %w", col.name, err)
		}
		*col.dst = string(b)
	}
	return m, nil
}

func nonNilMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return m
}
