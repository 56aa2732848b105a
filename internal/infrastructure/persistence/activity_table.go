package persistence

import (
	"context"
	"fmt"

	"github.com/agency/backend/internal/application/activity"
	"github.com/agency/backend/internal/domain/system"
	"github.com/agency/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// ActivityTable persists the activity log
type ActivityTable struct {
	db *gorm.DB
}

// NewActivityTable creates the activity table
func NewActivityTable(db *gorm.DB) *ActivityTable {
	return &ActivityTable{db: db}
}

var (
	_ activity.Sink   = (*ActivityTable)(nil)
	_ activity.Source = (*ActivityTable)(nil)
)

// Name identifies the sink in logs
func (t *ActivityTable) Name() string {
	return "database"
}

// Write appends one entry
func (t *ActivityTable) Write(ctx context.Context, rec system.ActivityRecord) error {
	if err := t.db.WithContext(ctx).Create(models.ActivityModelFromDomain(rec)).Error; err != nil {
		return fmt.Errorf("insert activity %s: %w", rec.ID, err)
	}
	return nil
}

// Recent returns up to n entries, newest first
func (t *ActivityTable) Recent(ctx context.Context, n int) ([]system.ActivityRecord, error) {
	var rows []models.ActivityModel
	q := t.db.WithContext(ctx).Order("date DESC").Order("id DESC")
	if n > 0 {
		q = q.Limit(n)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select activity: %w", err)
	}
	out := make([]system.ActivityRecord, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}
