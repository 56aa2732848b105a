// Package billing holds invoices, their payments and business expenses.
// Invoice totals are derived values: Recalculate is the only writer.
package billing

import (
	"slices"
	"time"

	"github.com/agency/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceIDPrefix prefixes generated invoice IDs
const InvoiceIDPrefix = "inv"

// DefaultCurrency is used when an invoice is created without one
const DefaultCurrency = "USD"

// InvoiceStatus represents the billing state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid reports whether the status is known
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// IsOutstanding reports whether money is still expected for the invoice
func (s InvoiceStatus) IsOutstanding() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusOverdue
}

// InvoiceItem is a billed line
type InvoiceItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// Payment is money received against an invoice
type Payment struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Date   time.Time       `json:"date"`
}

// Invoice is a bill sent to a client. ClientID is a weak reference.
type Invoice struct {
	shared.BaseRecord
	Number    string          `json:"number,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	ProjectID string          `json:"projectId,omitempty"`
	Items     []InvoiceItem   `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
	Status    InvoiceStatus   `json:"status"`
	Payments  []Payment       `json:"payments"`
	Currency  string          `json:"currency"`
	IssueDate time.Time       `json:"issueDate"`
	DueDate   time.Time       `json:"dueDate"`
	Notes     string          `json:"notes,omitempty"`
}

// LineTotal is quantity times unit price, with negative inputs treated as zero
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return nonNegative(quantity).Mul(nonNegative(unitPrice))
}

// Recalculate derives every item total, the subtotal and the total from the
// items and the discount. Any hand-set totals are overwritten.
func (inv *Invoice) Recalculate() {
	subtotal := decimal.Zero
	for i := range inv.Items {
		item := &inv.Items[i]
		item.Quantity = nonNegative(item.Quantity)
		item.UnitPrice = nonNegative(item.UnitPrice)
		item.Total = LineTotal(item.Quantity, item.UnitPrice)
		subtotal = subtotal.Add(item.Total)
	}
	inv.Discount = nonNegative(inv.Discount)
	inv.Subtotal = subtotal
	inv.Total = nonNegative(subtotal.Sub(inv.Discount))
}

// AmountPaid sums all recorded payments
func (inv *Invoice) AmountPaid() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range inv.Payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// Balance is the amount still owed, never negative
func (inv *Invoice) Balance() decimal.Decimal {
	return nonNegative(inv.Total.Sub(inv.AmountPaid()))
}

// IsOverdue reports whether an outstanding invoice is past its due date
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return inv.Status.IsOutstanding() && !inv.DueDate.IsZero() && inv.DueDate.Before(now)
}

// Clone returns a deep copy of the invoice
func (inv *Invoice) Clone() *Invoice {
	cp := *inv
	cp.Items = slices.Clone(inv.Items)
	cp.Payments = slices.Clone(inv.Payments)
	return &cp
}

// Normalize applies creation defaults and re-derives the totals
func (inv *Invoice) Normalize(now time.Time) {
	inv.Touch(now)
	if !inv.Status.IsValid() {
		inv.Status = InvoiceStatusDraft
	}
	if inv.Currency == "" {
		inv.Currency = DefaultCurrency
	}
	if inv.IssueDate.IsZero() {
		inv.IssueDate = inv.CreatedAt
	}
	if inv.Items == nil {
		inv.Items = []InvoiceItem{}
	}
	if inv.Payments == nil {
		inv.Payments = []Payment{}
	}
	inv.Recalculate()
}

// InvoicePatch is a partial update for an invoice. Totals are not patchable.
type InvoicePatch struct {
	Number    *string
	ClientID  *string
	ProjectID *string
	Items     []InvoiceItem
	Discount  *decimal.Decimal
	Status    *InvoiceStatus
	Payments  []Payment
	Currency  *string
	IssueDate *time.Time
	DueDate   *time.Time
	Notes     *string
}

// Apply merges the patch into the invoice and re-derives the totals
func (p InvoicePatch) Apply(inv *Invoice) {
	if p.Number != nil {
		inv.Number = *p.Number
	}
	if p.ClientID != nil {
		inv.ClientID = *p.ClientID
	}
	if p.ProjectID != nil {
		inv.ProjectID = *p.ProjectID
	}
	if p.Items != nil {
		inv.Items = slices.Clone(p.Items)
	}
	if p.Discount != nil {
		inv.Discount = *p.Discount
	}
	if p.Status != nil {
		inv.Status = *p.Status
	}
	if p.Payments != nil {
		inv.Payments = slices.Clone(p.Payments)
	}
	if p.Currency != nil {
		inv.Currency = *p.Currency
	}
	if p.IssueDate != nil {
		inv.IssueDate = *p.IssueDate
	}
	if p.DueDate != nil {
		inv.DueDate = *p.DueDate
	}
	if p.Notes != nil {
		inv.Notes = *p.Notes
	}
	inv.Recalculate()
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
