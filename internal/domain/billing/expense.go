package billing

import (
	"time"

	"github.com/agency/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExpenseIDPrefix prefixes generated expense IDs
const ExpenseIDPrefix = "exp"

// ExpenseCategory groups expenses for reporting
type ExpenseCategory string

const (
	ExpenseCategorySoftware   ExpenseCategory = "software"
	ExpenseCategoryHardware   ExpenseCategory = "hardware"
	ExpenseCategoryMarketing  ExpenseCategory = "marketing"
	ExpenseCategoryOffice     ExpenseCategory = "office"
	ExpenseCategoryTravel     ExpenseCategory = "travel"
	ExpenseCategoryContractor ExpenseCategory = "contractor"
	ExpenseCategoryOther      ExpenseCategory = "other"
)

// IsValid reports whether the category is known
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategorySoftware, ExpenseCategoryHardware, ExpenseCategoryMarketing,
		ExpenseCategoryOffice, ExpenseCategoryTravel, ExpenseCategoryContractor, ExpenseCategoryOther:
		return true
	}
	return false
}

// Expense is money spent by the agency
type Expense struct {
	shared.BaseRecord
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    ExpenseCategory `json:"category"`
	Date        time.Time       `json:"date"`
	Vendor      string          `json:"vendor,omitempty"`
	ProjectID   string          `json:"projectId,omitempty"`
}

// Clone returns a copy of the expense
func (e *Expense) Clone() *Expense {
	cp := *e
	return &cp
}

// Normalize applies creation defaults
func (e *Expense) Normalize(now time.Time) {
	e.Touch(now)
	if !e.Category.IsValid() {
		e.Category = ExpenseCategoryOther
	}
	if e.Date.IsZero() {
		e.Date = e.CreatedAt
	}
	e.Amount = nonNegative(e.Amount)
}

// ExpensePatch is a partial update for an expense
type ExpensePatch struct {
	Description *string
	Amount      *decimal.Decimal
	Category    *ExpenseCategory
	Date        *time.Time
	Vendor      *string
	ProjectID   *string
}

// Apply merges the patch into the expense
func (p ExpensePatch) Apply(e *Expense) {
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Vendor != nil {
		e.Vendor = *p.Vendor
	}
	if p.ProjectID != nil {
		e.ProjectID = *p.ProjectID
	}
}
