package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agency/backend/internal/domain/billing"
	"github.com/agency/backend/internal/domain/crm"
	"github.com/agency/backend/internal/domain/system"
	"go.uber.org/zap"
)

// BusinessTables are the remote tables of the business store. Nil fields keep
// the matching collection in memory.
type BusinessTables struct {
	Clients  Table
	Projects Table
	Invoices Table
	Expenses Table
}

// BusinessStore owns clients, projects, invoices and expenses
type BusinessStore struct {
	rt       *runtime
	Clients  *Collection[*crm.Client]
	Projects *Collection[*crm.Project]
	Invoices *Collection[*billing.Invoice]
	Expenses *Collection[*billing.Expense]
}

// NewBusinessStore creates the store
func NewBusinessStore(tables BusinessTables, opts Options) *BusinessStore {
	rt := newRuntime(opts, "business_store")
	return &BusinessStore{
		rt: rt,
		Clients: newCollection(rt, "clients", crm.ClientIDPrefix, system.ActivityTypeClient,
			tables.Clients, func() *crm.Client { return &crm.Client{} }),
		Projects: newCollection(rt, "projects", crm.ProjectIDPrefix, system.ActivityTypeProject,
			tables.Projects, func() *crm.Project { return &crm.Project{} }),
		Invoices: newCollection(rt, "invoices", billing.InvoiceIDPrefix, system.ActivityTypeInvoice,
			tables.Invoices, func() *billing.Invoice { return &billing.Invoice{} }),
		Expenses: newCollection(rt, "expenses", billing.ExpenseIDPrefix, system.ActivityTypeExpense,
			tables.Expenses, func() *billing.Expense { return &billing.Expense{} }),
	}
}

// Init loads every collection from the remote
func (s *BusinessStore) Init(ctx context.Context) error {
	return errors.Join(
		s.Clients.Load(ctx),
		s.Projects.Load(ctx),
		s.Invoices.Load(ctx),
		s.Expenses.Load(ctx),
	)
}

// Dispose waits for in-flight writes
func (s *BusinessStore) Dispose(ctx context.Context) error {
	return s.rt.wait(ctx)
}

// Wait blocks until every dispatched write has finished
func (s *BusinessStore) Wait() {
	s.rt.wg.Wait()
}

// ClientScore computes the lead temperature of a client
func (s *BusinessStore) ClientScore(id string, now time.Time) (crm.LeadScore, bool) {
	c, ok := s.Clients.Get(id)
	if !ok {
		return crm.LeadScore{}, false
	}
	return crm.ScoreLead(c, now), true
}

// OnboardClientWithInvoice creates a client and a first invoice for it. Both
// remote inserts are awaited. If the client cannot be persisted nothing is
// kept; if the invoice cannot be persisted the client is deleted again. A
// failed compensation is reported together with the original error.
func (s *BusinessStore) OnboardClientWithInvoice(ctx context.Context, client *crm.Client, invoice *billing.Invoice) (clientID, invoiceID string, err error) {
	clientID, err = s.Clients.CreateAndWait(ctx, client)
	if err != nil {
		s.Clients.forget(clientID)
		return "", "", fmt.Errorf("onboard: create client: %w", err)
	}

	draft := invoice.Clone()
	draft.ClientID = clientID
	invoiceID, err = s.Invoices.CreateAndWait(ctx, draft)
	if err == nil {
		return clientID, invoiceID, nil
	}

	s.Invoices.forget(invoiceID)
	err = fmt.Errorf("onboard: create invoice: %w", err)
	if _, cerr := s.Clients.DeleteAndWait(ctx, clientID); cerr != nil {
		s.rt.logger.Error("onboarding compensation failed, client left behind",
			zap.String("client_id", clientID),
			zap.Error(cerr),
		)
		return "", "", errors.Join(err, fmt.Errorf("onboard: compensate client %s: %w", clientID, cerr))
	}
	return "", "", err
}
