package dto

import (
	"time"

	"github.com/agency/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// InvoiceItemRequest is one invoice line. Totals are always recomputed.
type InvoiceItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// PaymentRequest is one payment received against an invoice
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method" binding:"max=50"`
	Date   time.Time       `json:"date"`
}

// CreateInvoiceRequest is the body of POST /invoices
type CreateInvoiceRequest struct {
	Number    string               `json:"number" binding:"max=50"`
	ClientID  string               `json:"clientId"`
	ProjectID string               `json:"projectId"`
	Items     []InvoiceItemRequest `json:"items" binding:"dive"`
	Discount  decimal.Decimal      `json:"discount"`
	Status    string               `json:"status" binding:"omitempty,oneof=draft pending paid overdue cancelled"`
	Payments  []PaymentRequest     `json:"payments" binding:"dive"`
	Currency  string               `json:"currency" binding:"omitempty,currency"`
	IssueDate time.Time            `json:"issueDate"`
	DueDate   time.Time            `json:"dueDate"`
	Notes     string               `json:"notes"`
}

// ToDomain builds the invoice draft
func (r CreateInvoiceRequest) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		Number:    r.Number,
		ClientID:  r.ClientID,
		ProjectID: r.ProjectID,
		Items:     toItems(r.Items),
		Discount:  r.Discount,
		Status:    billing.InvoiceStatus(r.Status),
		Payments:  toPayments(r.Payments),
		Currency:  r.Currency,
		IssueDate: r.IssueDate,
		DueDate:   r.DueDate,
		Notes:     r.Notes,
	}
}

// UpdateInvoiceRequest is the body of PUT /invoices/:id
type UpdateInvoiceRequest struct {
	Number    *string              `json:"number" binding:"omitempty,max=50"`
	ClientID  *string              `json:"clientId"`
	ProjectID *string              `json:"projectId"`
	Items     []InvoiceItemRequest `json:"items" binding:"omitempty,dive"`
	Discount  *decimal.Decimal     `json:"discount"`
	Status    *string              `json:"status" binding:"omitempty,oneof=draft pending paid overdue cancelled"`
	Payments  []PaymentRequest     `json:"payments" binding:"omitempty,dive"`
	Currency  *string              `json:"currency" binding:"omitempty,currency"`
	IssueDate *time.Time           `json:"issueDate"`
	DueDate   *time.Time           `json:"dueDate"`
	Notes     *string              `json:"notes"`
}

// ToPatch converts the request to an invoice patch
func (r UpdateInvoiceRequest) ToPatch() billing.InvoicePatch {
	p := billing.InvoicePatch{
		Number:    r.Number,
		ClientID:  r.ClientID,
		ProjectID: r.ProjectID,
		Items:     toItems(r.Items),
		Discount:  r.Discount,
		Payments:  toPayments(r.Payments),
		Currency:  r.Currency,
		IssueDate: r.IssueDate,
		DueDate:   r.DueDate,
		Notes:     r.Notes,
	}
	if r.Status != nil {
		s := billing.InvoiceStatus(*r.Status)
		p.Status = &s
	}
	return p
}

// OnboardRequest creates a client and its first invoice together
type OnboardRequest struct {
	Client  CreateClientRequest  `json:"client"`
	Invoice CreateInvoiceRequest `json:"invoice"`
}

// OnboardResponse names the records created by an onboarding
type OnboardResponse struct {
	ClientID  string `json:"clientId"`
	InvoiceID string `json:"invoiceId"`
}

// CreateExpenseRequest is the body of POST /expenses
type CreateExpenseRequest struct {
	Description string          `json:"description" binding:"required,max=500"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category" binding:"omitempty,oneof=software hardware marketing office travel contractor other"`
	Date        time.Time       `json:"date"`
	Vendor      string          `json:"vendor" binding:"max=200"`
	ProjectID   string          `json:"projectId"`
}

// ToDomain builds the expense draft
func (r CreateExpenseRequest) ToDomain() *billing.Expense {
	return &billing.Expense{
		Description: r.Description,
		Amount:      r.Amount,
		Category:    billing.ExpenseCategory(r.Category),
		Date:        r.Date,
		Vendor:      r.Vendor,
		ProjectID:   r.ProjectID,
	}
}

// UpdateExpenseRequest is the body of PUT /expenses/:id
type UpdateExpenseRequest struct {
	Description *string          `json:"description" binding:"omitempty,min=1,max=500"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category" binding:"omitempty,oneof=software hardware marketing office travel contractor other"`
	Date        *time.Time       `json:"date"`
	Vendor      *string          `json:"vendor" binding:"omitempty,max=200"`
	ProjectID   *string          `json:"projectId"`
}

// ToPatch converts the request to an expense patch
func (r UpdateExpenseRequest) ToPatch() billing.ExpensePatch {
	p := billing.ExpensePatch{
		Description: r.Description,
		Amount:      r.Amount,
		Date:        r.Date,
		Vendor:      r.Vendor,
		ProjectID:   r.ProjectID,
	}
	if r.Category != nil {
		c := billing.ExpenseCategory(*r.Category)
		p.Category = &c
	}
	return p
}

func toItems(in []InvoiceItemRequest) []billing.InvoiceItem {
	if in == nil {
		return nil
	}
	out := make([]billing.InvoiceItem, len(in))
	for i, it := range in {
		out[i] = billing.InvoiceItem{Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return out
}

func toPayments(in []PaymentRequest) []billing.Payment {
	if in == nil {
		return nil
	}
	out := make([]billing.Payment, len(in))
	for i, p := range in {
		out[i] = billing.Payment{Amount: p.Amount, Method: p.Method, Date: p.Date}
	}
	return out
}
