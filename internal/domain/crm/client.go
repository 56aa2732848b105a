// Package crm holds the client relationship model: clients, their projects
// and the lead temperature score derived from a client record.
package crm

import (
	"slices"
	"time"

	"github.com/agency/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ClientIDPrefix prefixes generated client IDs
const ClientIDPrefix = "cli"

// ClientStatus represents where a client sits in the sales pipeline
type ClientStatus string

const (
	ClientStatusLead        ClientStatus = "lead"
	ClientStatusNegotiation ClientStatus = "negotiation"
	ClientStatusActive      ClientStatus = "active"
	ClientStatusCompleted   ClientStatus = "completed"
	ClientStatusLost        ClientStatus = "lost"
)

// IsValid reports whether the status is one of the known pipeline stages
func (s ClientStatus) IsValid() bool {
	switch s {
	case ClientStatusLead, ClientStatusNegotiation, ClientStatusActive, ClientStatusCompleted, ClientStatusLost:
		return true
	}
	return false
}

// Client is a person or company the agency sells to
type Client struct {
	shared.BaseRecord
	Name        string          `json:"name"`
	Email       string          `json:"email,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Company     string          `json:"company,omitempty"`
	Website     string          `json:"website,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Status      ClientStatus    `json:"status"`
	Value       decimal.Decimal `json:"value"`
	Tags        []string        `json:"tags"`
	LastContact time.Time       `json:"lastContact"`
}

// Clone returns a deep copy of the client
func (c *Client) Clone() *Client {
	cp := *c
	cp.Tags = slices.Clone(c.Tags)
	return &cp
}

// Normalize applies creation defaults and keeps the record within its invariants
func (c *Client) Normalize(now time.Time) {
	c.Touch(now)
	if !c.Status.IsValid() {
		c.Status = ClientStatusLead
	}
	if c.Value.IsNegative() {
		c.Value = decimal.Zero
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
}

// IsPipeline reports whether the client is still an open opportunity
func (c *Client) IsPipeline() bool {
	return c.Status == ClientStatusLead || c.Status == ClientStatusNegotiation
}

// ClientPatch is a partial update for a client. Nil fields are left untouched.
type ClientPatch struct {
	Name        *string
	Email       *string
	Phone       *string
	Company     *string
	Website     *string
	Notes       *string
	Status      *ClientStatus
	Value       *decimal.Decimal
	Tags        []string
	LastContact *time.Time
}

// Apply merges the patch into the client
func (p ClientPatch) Apply(c *Client) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Company != nil {
		c.Company = *p.Company
	}
	if p.Website != nil {
		c.Website = *p.Website
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Value != nil {
		c.Value = *p.Value
	}
	if p.Tags != nil {
		c.Tags = slices.Clone(p.Tags)
	}
	if p.LastContact != nil {
		c.LastContact = *p.LastContact
	}
}
