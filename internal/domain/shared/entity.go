package shared

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BaseRecord provides identity and creation time for every stored record.
// IDs are opaque strings assigned once at creation time.
type BaseRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetID returns the record ID
func (r *BaseRecord) GetID() string {
	return r.ID
}

// SetID assigns the record ID
func (r *BaseRecord) SetID(id string) {
	r.ID = id
}

// Touch sets CreatedAt if it has not been set yet
func (r *BaseRecord) Touch(now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
}

// NewID returns a collision-resistant identifier with a readable prefix,
// e.g. "inv_6f1c0c2e-...". The prefix is lower-cased and may be empty.
func NewID(prefix string) string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "_" + uuid.NewString()
}
