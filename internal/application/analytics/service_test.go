package analytics

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agency/backend/internal/application/store"
	"github.com/agency/backend/internal/domain/billing"
	"github.com/agency/backend/internal/domain/crm"
	"github.com/agency/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func seededStore(t *testing.T) *store.BusinessStore {
	t.Helper()
	s := store.NewBusinessStore(store.BusinessTables{}, store.Options{})
	ctx := context.Background()

	s.Clients.Create(ctx, &crm.Client{Name: "Active", Status: crm.ClientStatusActive, Value: d(50_000)})
	s.Clients.Create(ctx, &crm.Client{Name: "Lead", Status: crm.ClientStatusLead, Value: d(200_000)})
	s.Clients.Create(ctx, &crm.Client{Name: "Deal", Status: crm.ClientStatusNegotiation, Value: d(300_000)})

	s.Invoices.Create(ctx, &billing.Invoice{
		Status: billing.InvoiceStatusPaid,
		Items:  []billing.InvoiceItem{{Quantity: d(1), UnitPrice: d(1000)}},
		Payments: []billing.Payment{
			{Amount: d(600), Date: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)},
			{Amount: d(400), Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		},
	})
	s.Invoices.Create(ctx, &billing.Invoice{
		Status:   billing.InvoiceStatusPending,
		Items:    []billing.InvoiceItem{{Quantity: d(2), UnitPrice: d(500)}},
		Payments: []billing.Payment{{Amount: d(250), Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}},
	})
	s.Invoices.Create(ctx, &billing.Invoice{
		Status: billing.InvoiceStatusDraft,
		Items:  []billing.InvoiceItem{{Quantity: d(1), UnitPrice: d(9999)}},
	})

	s.Expenses.Create(ctx, &billing.Expense{Description: "Laptop", Amount: d(300)})
	s.Projects.Create(ctx, &crm.Project{Name: "Site", Status: crm.ProjectStatusInProgress})
	return s
}

func TestService_Summary(t *testing.T) {
	svc := NewService(seededStore(t))

	sum := svc.Summary(now)

	assert.True(t, d(1250).Equal(sum.TotalRevenue), sum.TotalRevenue.String())
	assert.True(t, d(750).Equal(sum.Outstanding), "only pending/overdue balances count")
	assert.True(t, d(300).Equal(sum.TotalExpenses))
	assert.True(t, d(950).Equal(sum.NetProfit))
	assert.True(t, d(500_000).Equal(sum.PipelineValue))
	assert.Equal(t, 1, sum.ActiveClients)
	assert.Equal(t, 3, sum.InvoiceCount)
	assert.Equal(t, 1, sum.ActiveProjects)
	// scores: active 20, lead 10+10, negotiation 30+10
	assert.Equal(t, 27, sum.AverageLeadScore)
}

func TestService_SummaryEmpty(t *testing.T) {
	svc := NewService(store.NewBusinessStore(store.BusinessTables{}, store.Options{}))

	sum := svc.Summary(now)

	assert.True(t, sum.TotalRevenue.IsZero())
	assert.Zero(t, sum.AverageLeadScore)
}

func TestService_MonthlyRevenue(t *testing.T) {
	svc := NewService(seededStore(t))

	months := svc.MonthlyRevenue(now, 3)

	require.Len(t, months, 3)
	assert.Equal(t, []string{"2024-04", "2024-05", "2024-06"},
		[]string{months[0].Month, months[1].Month, months[2].Month})
	assert.True(t, months[0].Revenue.IsZero())
	assert.True(t, d(600).Equal(months[1].Revenue))
	assert.True(t, d(400).Equal(months[2].Revenue))
}

func TestService_MonthlyRevenueAcrossYear(t *testing.T) {
	svc := NewService(store.NewBusinessStore(store.BusinessTables{}, store.Options{}))

	months := svc.MonthlyRevenue(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 2)

	assert.Equal(t, "2023-12", months[0].Month)
	assert.Equal(t, "2024-01", months[1].Month)
}

func TestService_Export(t *testing.T) {
	svc := NewService(seededStore(t))
	var buf bytes.Buffer

	require.NoError(t, svc.Export(&buf, now))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Category,Value\nTotal Revenue,1250.00\n"), out)
	assert.Contains(t, out, "\n\nMonth,Revenue\n")
	assert.Contains(t, out, "2024-05,600.00\n")
	assert.True(t, strings.HasSuffix(out, "2024-06,400.00\n"))
	assert.NotContains(t, out, `"`)
}

type memStorage struct {
	objects map[string][]byte
	err     error
}

func (m *memStorage) Upload(_ context.Context, name string, data []byte, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.objects["exports/"+name] = data
	return "exports/" + name, nil
}

func (m *memStorage) DownloadURL(_ context.Context, key string, _ time.Duration) (string, time.Time, error) {
	return "https://files.test/" + key, now.Add(time.Minute), nil
}

func TestService_ExportToStorage(t *testing.T) {
	t.Run("no storage", func(t *testing.T) {
		_, err := NewService(seededStore(t)).ExportToStorage(context.Background(), now)
		assert.ErrorIs(t, err, shared.ErrRemoteUnavailable)
	})

	t.Run("uploads", func(t *testing.T) {
		storage := &memStorage{objects: map[string][]byte{}}
		svc := NewService(seededStore(t), WithStorage(storage))

		res, err := svc.ExportToStorage(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, "exports/analytics-20240615-100000.csv", res.Key)
		assert.Equal(t, "https://files.test/"+res.Key, res.URL)
		assert.Contains(t, string(storage.objects[res.Key]), "Category,Value")
	})

	t.Run("upload failure", func(t *testing.T) {
		storage := &memStorage{objects: map[string][]byte{}, err: errors.New("bucket gone")}
		svc := NewService(seededStore(t), WithStorage(storage))

		_, err := svc.ExportToStorage(context.Background(), now)

		assert.ErrorContains(t, err, "bucket gone")
	})
}
