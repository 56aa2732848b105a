// Package content holds the public catalogue of the agency: the services it
// sells and the articles it publishes.
package content

import (
	"slices"
	"time"

	"github.com/agency/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ServiceIDPrefix prefixes generated service IDs
const ServiceIDPrefix = "svc"

// ServiceStatus represents catalogue visibility of a service
type ServiceStatus string

const (
	ServiceStatusActive   ServiceStatus = "active"
	ServiceStatusDraft    ServiceStatus = "draft"
	ServiceStatusArchived ServiceStatus = "archived"
)

// IsValid reports whether the status is known
func (s ServiceStatus) IsValid() bool {
	return s == ServiceStatusActive || s == ServiceStatusDraft || s == ServiceStatusArchived
}

// Service is an offering listed in the agency catalogue
type Service struct {
	shared.BaseRecord
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category,omitempty"`
	Status      ServiceStatus   `json:"status"`
	Features    []string        `json:"features"`
}

// Clone returns a deep copy of the service
func (s *Service) Clone() *Service {
	cp := *s
	cp.Features = slices.Clone(s.Features)
	return &cp
}

// Normalize applies creation defaults
func (s *Service) Normalize(now time.Time) {
	s.Touch(now)
	if !s.Status.IsValid() {
		s.Status = ServiceStatusDraft
	}
	if s.Price.IsNegative() {
		s.Price = decimal.Zero
	}
	if s.Features == nil {
		s.Features = []string{}
	}
}

// ServicePatch is a partial update for a service
type ServicePatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	Status      *ServiceStatus
	Features    []string
}

// Apply merges the patch into the service
func (p ServicePatch) Apply(s *Service) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.Category != nil {
		s.Category = *p.Category
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Features != nil {
		s.Features = slices.Clone(p.Features)
	}
}
