package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/agency/backend/internal/application/store"
	"github.com/agency/backend/internal/domain/shared"
	"github.com/agency/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTable implements store.Table over one entity table
type GormTable struct {
	db   *gorm.DB
	name string
}

// NewGormTable creates a table bound to the given name
func NewGormTable(db *gorm.DB, name string) *GormTable {
	return &GormTable{db: db, name: name}
}

var _ store.Table = (*GormTable)(nil)

func (t *GormTable) table(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx).Table(t.name)
}

// Select returns every row in creation order
func (t *GormTable) Select(ctx context.Context) ([]store.Row, error) {
	var rows []models.RecordModel
	if err := t.table(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select %s: %w", t.name, err)
	}
	out := make([]store.Row, len(rows))
	for i := range rows {
		out[i] = rows[i].ToRow()
	}
	return out, nil
}

// SelectByID returns one row
func (t *GormTable) SelectByID(ctx context.Context, id string) (store.Row, error) {
	var row models.RecordModel
	if err := t.table(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.Row{}, shared.ErrNotFound
		}
		return store.Row{}, fmt.Errorf("select %s %s: %w", t.name, id, err)
	}
	return row.ToRow(), nil
}

// Insert adds a new row
func (t *GormTable) Insert(ctx context.Context, row store.Row) error {
	if err := t.table(ctx).Create(models.RecordModelFromRow(row)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("insert %s %s: %w", t.name, row.ID, err)
	}
	return nil
}

// Update replaces the body of an existing row
func (t *GormTable) Update(ctx context.Context, row store.Row) error {
	result := t.table(ctx).Where("id = ?", row.ID).Updates(map[string]any{
		"data":       string(row.Data),
		"updated_at": row.UpdatedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("update %s %s: %w", t.name, row.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Upsert inserts the row or replaces the body of an existing one
func (t *GormTable) Upsert(ctx context.Context, row store.Row) error {
	err := t.table(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(models.RecordModelFromRow(row)).Error
	if err != nil {
		return fmt.Errorf("upsert %s %s: %w", t.name, row.ID, err)
	}
	return nil
}

// Delete removes a row. Deleting an unknown id is not an error.
func (t *GormTable) Delete(ctx context.Context, id string) error {
	if err := t.table(ctx).Where("id = ?", id).Delete(&models.RecordModel{}).Error; err != nil {
		return fmt.Errorf("delete %s %s: %w", t.name, id, err)
	}
	return nil
}
