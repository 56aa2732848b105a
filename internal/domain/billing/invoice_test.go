package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func item(qty, price int64) InvoiceItem {
	return InvoiceItem{Description: "line", Quantity: d(qty), UnitPrice: d(price)}
}

// assertTotalsConsistent checks the derived-value invariants of an invoice
func assertTotalsConsistent(t *testing.T, inv *Invoice) {
	t.Helper()
	sum := decimal.Zero
	for _, it := range inv.Items {
		assert.True(t, it.Total.Equal(it.Quantity.Mul(it.UnitPrice)), "item total %s != %s*%s", it.Total, it.Quantity, it.UnitPrice)
		sum = sum.Add(it.Total)
	}
	assert.True(t, inv.Subtotal.Equal(sum), "subtotal %s != %s", inv.Subtotal, sum)
	want := inv.Subtotal.Sub(inv.Discount)
	if want.IsNegative() {
		want = decimal.Zero
	}
	assert.True(t, inv.Total.Equal(want), "total %s != %s", inv.Total, want)
}

func TestInvoice_Recalculate_Scenario(t *testing.T) {
	inv := &Invoice{
		Items:    []InvoiceItem{item(2, 500), item(1, 1000)},
		Discount: d(500),
	}
	inv.Recalculate()

	assert.True(t, inv.Subtotal.Equal(d(2000)))
	assert.True(t, inv.Total.Equal(d(1500)))
	assertTotalsConsistent(t, inv)
}

func TestInvoice_Recalculate_OverwritesHandSetTotals(t *testing.T) {
	inv := &Invoice{
		Items:    []InvoiceItem{{Quantity: d(3), UnitPrice: d(10), Total: d(999)}},
		Subtotal: d(12345),
		Total:    d(1),
	}
	inv.Recalculate()

	assert.True(t, inv.Items[0].Total.Equal(d(30)))
	assert.True(t, inv.Subtotal.Equal(d(30)))
	assert.True(t, inv.Total.Equal(d(30)))
}

func TestInvoice_Recalculate_DiscountLargerThanSubtotal(t *testing.T) {
	inv := &Invoice{Items: []InvoiceItem{item(1, 100)}, Discount: d(250)}
	inv.Recalculate()

	assert.True(t, inv.Total.IsZero())
	assertTotalsConsistent(t, inv)
}

func TestInvoice_Recalculate_ClampsNegativeInputs(t *testing.T) {
	inv := &Invoice{Items: []InvoiceItem{item(-2, 100), item(1, -50)}, Discount: d(-10)}
	inv.Recalculate()

	assert.True(t, inv.Subtotal.IsZero())
	assert.True(t, inv.Discount.IsZero())
	assertTotalsConsistent(t, inv)
}

func TestInvoice_TotalsHoldAfterEveryPatch(t *testing.T) {
	inv := &Invoice{}
	inv.Normalize(time.Now())
	assertTotalsConsistent(t, inv)

	discount := d(300)
	fractional := decimal.RequireFromString("0.5")
	patches := []InvoicePatch{
		{Items: []InvoiceItem{item(2, 500)}},
		{Discount: &discount},
		{Items: []InvoiceItem{item(2, 500), item(1, 1000), {Quantity: fractional, UnitPrice: d(99)}}},
		{Items: []InvoiceItem{}},
		{Items: []InvoiceItem{item(10, 10)}},
	}
	for i, p := range patches {
		p.Apply(inv)
		t.Logf("after patch %d: subtotal=%s total=%s", i, inv.Subtotal, inv.Total)
		assertTotalsConsistent(t, inv)
	}
}

func TestInvoice_Normalize_Defaults(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	inv := &Invoice{Status: "nonsense"}
	inv.Normalize(now)

	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.Equal(t, DefaultCurrency, inv.Currency)
	assert.Equal(t, now, inv.IssueDate)
	assert.NotNil(t, inv.Items)
	assert.NotNil(t, inv.Payments)
}

func TestInvoice_PaymentsAndBalance(t *testing.T) {
	inv := &Invoice{Items: []InvoiceItem{item(1, 1000)}}
	inv.Recalculate()
	inv.Payments = []Payment{{Amount: d(400), Method: "card"}, {Amount: d(100), Method: "cash"}}

	assert.True(t, inv.AmountPaid().Equal(d(500)))
	assert.True(t, inv.Balance().Equal(d(500)))

	inv.Payments = append(inv.Payments, Payment{Amount: d(900)})
	assert.True(t, inv.Balance().IsZero())
}

func TestInvoice_IsOverdue(t *testing.T) {
	now := time.Now()
	inv := &Invoice{Status: InvoiceStatusPending, DueDate: now.Add(-time.Hour)}
	assert.True(t, inv.IsOverdue(now))

	inv.Status = InvoiceStatusPaid
	assert.False(t, inv.IsOverdue(now))
}

func TestInvoice_CloneIsDeep(t *testing.T) {
	inv := &Invoice{Items: []InvoiceItem{item(1, 1)}}
	cp := inv.Clone()
	cp.Items[0].Description = "changed"

	require.Len(t, inv.Items, 1)
	assert.Equal(t, "line", inv.Items[0].Description)
}

func TestExpense_Normalize(t *testing.T) {
	now := time.Now()
	e := &Expense{Amount: d(-3), Category: "??"}
	e.Normalize(now)

	assert.True(t, e.Amount.IsZero())
	assert.Equal(t, ExpenseCategoryOther, e.Category)
	assert.Equal(t, now, e.Date)
}
