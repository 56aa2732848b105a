package models

import (
	"encoding/json"
	"time"

	"github.com/agency/backend/internal/application/store"
)

// RecordModel is the shared row shape of every entity table. The record body
// is kept as a JSON document so entity fields can evolve without migrations.
type RecordModel struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	Data      string    `gorm:"type:jsonb;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToRow converts the model to the store row shape
func (m *RecordModel) ToRow() store.Row {
	return store.Row{
		ID:        m.ID,
		Data:      json.RawMessage(m.Data),
		UpdatedAt: m.UpdatedAt,
	}
}

// RecordModelFromRow builds a model from a store row. The row timestamp is
// used for both columns; CreatedAt is ignored by updates.
func RecordModelFromRow(row store.Row) *RecordModel {
	return &RecordModel{
		ID:        row.ID,
		Data:      string(row.Data),
		CreatedAt: row.UpdatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
