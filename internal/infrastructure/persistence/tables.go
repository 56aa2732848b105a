package persistence

import (
	"github.com/agency/backend/internal/application/store"
)

// Entity table names
const (
	TableClients  = "clients"
	TableProjects = "projects"
	TableInvoices = "invoices"
	TableExpenses = "expenses"
	TableServices = "services"
	TableArticles = "articles"
)

// EntityTables lists every table that uses the shared record layout
var EntityTables = []string{
	TableClients,
	TableProjects,
	TableInvoices,
	TableExpenses,
	TableServices,
	TableArticles,
}

// BusinessTables returns the remote tables of the business store
func (d *Database) BusinessTables() store.BusinessTables {
	return store.BusinessTables{
		Clients:  NewGormTable(d.DB, TableClients),
		Projects: NewGormTable(d.DB, TableProjects),
		Invoices: NewGormTable(d.DB, TableInvoices),
		Expenses: NewGormTable(d.DB, TableExpenses),
	}
}

// ContentTables returns the remote tables of the content store
func (d *Database) ContentTables() store.ContentTables {
	return store.ContentTables{
		Services: NewGormTable(d.DB, TableServices),
		Articles: NewGormTable(d.DB, TableArticles),
	}
}
