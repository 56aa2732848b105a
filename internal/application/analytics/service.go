// Package analytics derives dashboard figures from the business store and
// renders them as a flat CSV export.
package analytics

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/agency/backend/internal/application/store"
	"github.com/agency/backend/internal/domain/crm"
	"github.com/agency/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultMonths is the revenue window used by exports
const DefaultMonths = 6

// ExportStorage keeps rendered exports and hands out download links
type ExportStorage interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// Summary holds the headline figures
type Summary struct {
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	Outstanding      decimal.Decimal `json:"outstanding"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	NetProfit        decimal.Decimal `json:"netProfit"`
	ActiveClients    int             `json:"activeClients"`
	PipelineValue    decimal.Decimal `json:"pipelineValue"`
	AverageLeadScore int             `json:"averageLeadScore"`
	InvoiceCount     int             `json:"invoiceCount"`
	ActiveProjects   int             `json:"activeProjects"`
}

// MonthRevenue is the money received in one calendar month
type MonthRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ExportResult points at an uploaded export
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service computes analytics over the business store
type Service struct {
	business *store.BusinessStore
	storage  ExportStorage
	logger   *zap.Logger
}

// Option configures Service
type Option func(*Service)

// WithStorage enables uploads of rendered exports
func WithStorage(s ExportStorage) Option {
	return func(svc *Service) {
		svc.storage = s
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(svc *Service) {
		svc.logger = l
	}
}

// NewService creates the service
func NewService(business *store.BusinessStore, opts ...Option) *Service {
	svc := &Service{business: business, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Summary computes the headline figures as of now
func (s *Service) Summary(now time.Time) Summary {
	var sum Summary
	invoices := s.business.Invoices.List()
	sum.InvoiceCount = len(invoices)
	for _, inv := range invoices {
		sum.TotalRevenue = sum.TotalRevenue.Add(inv.AmountPaid())
		if inv.Status.IsOutstanding() {
			sum.Outstanding = sum.Outstanding.Add(inv.Balance())
		}
	}

	for _, e := range s.business.Expenses.List() {
		sum.TotalExpenses = sum.TotalExpenses.Add(e.Amount)
	}
	sum.NetProfit = sum.TotalRevenue.Sub(sum.TotalExpenses)

	clients := s.business.Clients.List()
	scoreTotal := 0
	for _, c := range clients {
		if c.Status == crm.ClientStatusActive {
			sum.ActiveClients++
		}
		if c.IsPipeline() {
			sum.PipelineValue = sum.PipelineValue.Add(c.Value)
		}
		scoreTotal += crm.ScoreLead(c, now).Score
	}
	if len(clients) > 0 {
		sum.AverageLeadScore = int(math.Round(float64(scoreTotal) / float64(len(clients))))
	}

	for _, p := range s.business.Projects.List() {
		if p.Status == crm.ProjectStatusInProgress {
			sum.ActiveProjects++
		}
	}
	return sum
}

// MonthlyRevenue sums payments per calendar month for the months ending at
// now's month, oldest first. Months without payments report zero.
func (s *Service) MonthlyRevenue(now time.Time, months int) []MonthRevenue {
	if months <= 0 {
		months = DefaultMonths
	}
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	out := make([]MonthRevenue, months)
	index := make(map[string]int, months)
	for i := range out {
		key := first.AddDate(0, i, 0).Format("2006-01")
		out[i] = MonthRevenue{Month: key, Revenue: decimal.Zero}
		index[key] = i
	}

	for _, inv := range s.business.Invoices.List() {
		for _, p := range inv.Payments {
			if p.Date.IsZero() {
				continue
			}
			if i, ok := index[p.Date.UTC().Format("2006-01")]; ok {
				out[i].Revenue = out[i].Revenue.Add(p.Amount)
			}
		}
	}
	return out
}

// Export writes the KPI table, a blank line and the monthly revenue table.
// Every field is a fixed label, a month or a number, so nothing is quoted.
func (s *Service) Export(w io.Writer, now time.Time) error {
	sum := s.Summary(now)
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"Category", "Value"},
		{"Total Revenue", money(sum.TotalRevenue)},
		{"Outstanding", money(sum.Outstanding)},
		{"Total Expenses", money(sum.TotalExpenses)},
		{"Net Profit", money(sum.NetProfit)},
		{"Active Clients", fmt.Sprint(sum.ActiveClients)},
		{"Pipeline Value", money(sum.PipelineValue)},
		{"Average Lead Score", fmt.Sprint(sum.AverageLeadScore)},
		{"Invoices", fmt.Sprint(sum.InvoiceCount)},
		{"Active Projects", fmt.Sprint(sum.ActiveProjects)},
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write separator: %w", err)
	}

	if err := cw.Write([]string{"Month", "Revenue"}); err != nil {
		return fmt.Errorf("write revenue header: %w", err)
	}
	for _, m := range s.MonthlyRevenue(now, DefaultMonths) {
		if err := cw.Write([]string{m.Month, money(m.Revenue)}); err != nil {
			return fmt.Errorf("write revenue row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportToStorage renders the export, uploads it and returns a download link
func (s *Service) ExportToStorage(ctx context.Context, now time.Time) (ExportResult, error) {
	if s.storage == nil {
		return ExportResult{}, shared.ErrRemoteUnavailable
	}
	var buf bytes.Buffer
	if err := s.Export(&buf, now); err != nil {
		return ExportResult{}, err
	}

	name := fmt.Sprintf("analytics-%s.csv", now.UTC().Format("20060102-150405"))
	key, err := s.storage.Upload(ctx, name, buf.Bytes(), "text/csv")
	if err != nil {
		return ExportResult{}, fmt.Errorf("upload export: %w", err)
	}
	url, expiresAt, err := s.storage.DownloadURL(ctx, key, 0)
	if err != nil {
		return ExportResult{}, fmt.Errorf("sign export: %w", err)
	}
	s.logger.Info("analytics export uploaded", zap.String("key", key))
	return ExportResult{Key: key, URL: url, ExpiresAt: expiresAt}, nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
