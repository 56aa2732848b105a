package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/agency/backend/internal/application/syncer"
	"github.com/agency/backend/internal/domain/shared"
	"github.com/agency/backend/internal/domain/system"
	"github.com/agency/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsTable stores the settings aggregate as a single row
type GormSettingsTable struct {
	db *gorm.DB
}

// NewGormSettingsTable creates the settings table
func NewGormSettingsTable(db *gorm.DB) *GormSettingsTable {
	return &GormSettingsTable{db: db}
}

var _ syncer.SettingsRemote = (*GormSettingsTable)(nil)

// Get returns the aggregate with the given id
func (t *GormSettingsTable) Get(ctx context.Context, id string) (*system.SiteSettings, error) {
	var m models.SettingsModel
	if err := t.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("select settings: %w", err)
	}
	return m.ToDomain()
}

// Upsert writes the whole aggregate. UpdatedAt is taken from the aggregate.
func (t *GormSettingsTable) Upsert(ctx context.Context, s *system.SiteSettings) error {
	m, err := models.SettingsModelFromDomain(s)
	if err != nil {
		return err
	}
	err = t.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"brand", "contact_info", "ai_config", "features", "data", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
