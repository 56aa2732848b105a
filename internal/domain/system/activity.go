package system

import (
	"maps"
	"time"
)

// ActivityIDPrefix prefixes generated activity IDs
const ActivityIDPrefix = "act"

// ActivityType names the entity family an activity is about
type ActivityType string

const (
	ActivityTypeClient   ActivityType = "client"
	ActivityTypeProject  ActivityType = "project"
	ActivityTypeInvoice  ActivityType = "invoice"
	ActivityTypeExpense  ActivityType = "expense"
	ActivityTypeService  ActivityType = "service"
	ActivityTypeArticle  ActivityType = "article"
	ActivityTypeSettings ActivityType = "settings"
	ActivityTypeSync     ActivityType = "sync"
)

// ActivityStatus is the outcome recorded for an activity
type ActivityStatus string

const (
	ActivityStatusSuccess ActivityStatus = "success"
	ActivityStatusError   ActivityStatus = "error"
	ActivityStatusInfo    ActivityStatus = "info"
	ActivityStatusWarning ActivityStatus = "warning"
)

// ActivityRecord is one append-only entry of the activity log
type ActivityRecord struct {
	ID       string            `json:"id"`
	Date     time.Time         `json:"date"`
	Label    string            `json:"label"`
	Type     ActivityType      `json:"type"`
	Status   ActivityStatus    `json:"status"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Clone returns a copy that shares no maps with the receiver
func (r ActivityRecord) Clone() ActivityRecord {
	r.Metadata = maps.Clone(r.Metadata)
	return r
}
