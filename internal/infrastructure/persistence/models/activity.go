package models

import (
	"encoding/json"
	"time"

	"github.com/agency/backend/internal/domain/system"
)

// ActivityModel is one row of the activity log table
type ActivityModel struct {
	ID       string    `gorm:"type:varchar(64);primaryKey"`
	Date     time.Time `gorm:"not null;index"`
	Label    string    `gorm:"type:text;not null"`
	Type     string    `gorm:"type:varchar(32);not null"`
	Status   string    `gorm:"type:varchar(16);not null"`
	Metadata *string   `gorm:"type:jsonb"`
}

// TableName returns the table name
func (ActivityModel) TableName() string {
	return "activity_log"
}

// ToDomain converts the row to an activity record. Undecodable metadata is dropped.
func (m *ActivityModel) ToDomain() system.ActivityRecord {
	rec := system.ActivityRecord{
		ID:     m.ID,
		Date:   m.Date,
		Label:  m.Label,
		Type:   system.ActivityType(m.Type),
		Status: system.ActivityStatus(m.Status),
	}
	if m.Metadata != nil {
		_ = json.Unmarshal([]byte(*m.Metadata), &rec.Metadata)
	}
	return rec
}

// ActivityModelFromDomain converts an activity record to its row
func ActivityModelFromDomain(rec system.ActivityRecord) *ActivityModel {
	m := &ActivityModel{
		ID:     rec.ID,
		Date:   rec.Date,
		Label:  rec.Label,
		Type:   string(rec.Type),
		Status: string(rec.Status),
	}
	if len(rec.Metadata) > 0 {
		if b, err := json.Marshal(rec.Metadata); err == nil {
			meta := string(b)
			m.Metadata = &meta
		}
	}
	return m
}
