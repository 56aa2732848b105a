package router

import (
	"time"

	"github.com/agency/backend/internal/application/activity"
	"github.com/agency/backend/internal/application/analytics"
	"github.com/agency/backend/internal/application/store"
	"github.com/agency/backend/internal/application/syncer"
	"github.com/agency/backend/internal/domain/billing"
	"github.com/agency/backend/internal/domain/content"
	"github.com/agency/backend/internal/domain/crm"
	"github.com/agency/backend/internal/interfaces/http/dto"
	"github.com/agency/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// CRUD is a handler serving the five resource routes
type CRUD interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// Deps are the application services the API is built on
type Deps struct {
	Business    *store.BusinessStore
	Content     *store.ContentStore
	System      *store.SystemStore
	Coordinator *syncer.Coordinator
	Conflicts   *syncer.ConflictSurface
	Tracker     *syncer.Tracker
	Activity    *activity.Log
	Analytics   *analytics.Service
	// DB is pinged by the health check, nil when running in memory
	DB    handler.Pinger
	Clock func() time.Time
}

// Handlers are the API handlers, one per resource
type Handlers struct {
	Clients   CRUD
	Projects  CRUD
	Invoices  CRUD
	Expenses  CRUD
	Services  CRUD
	Articles  CRUD
	Client    *handler.ClientHandler
	Settings  *handler.SettingsHandler
	Sync      *handler.SyncHandler
	Activity  *handler.ActivityHandler
	Analytics *handler.AnalyticsHandler
	System    *handler.SystemHandler
}

// NewHandlers builds every handler over deps
func NewHandlers(d Deps) Handlers {
	return Handlers{
		Clients: handler.NewResourceHandler("client", d.Business.Clients,
			func(r dto.CreateClientRequest) *crm.Client { return r.ToDomain() },
			func(r dto.UpdateClientRequest) store.Patch[*crm.Client] { return r.ToPatch() }),
		Projects: handler.NewResourceHandler("project", d.Business.Projects,
			func(r dto.CreateProjectRequest) *crm.Project { return r.ToDomain() },
			func(r dto.UpdateProjectRequest) store.Patch[*crm.Project] { return r.ToPatch() }),
		Invoices: handler.NewResourceHandler("invoice", d.Business.Invoices,
			func(r dto.CreateInvoiceRequest) *billing.Invoice { return r.ToDomain() },
			func(r dto.UpdateInvoiceRequest) store.Patch[*billing.Invoice] { return r.ToPatch() }),
		Expenses: handler.NewResourceHandler("expense", d.Business.Expenses,
			func(r dto.CreateExpenseRequest) *billing.Expense { return r.ToDomain() },
			func(r dto.UpdateExpenseRequest) store.Patch[*billing.Expense] { return r.ToPatch() }),
		Services: handler.NewResourceHandler("service", d.Content.Services,
			func(r dto.CreateServiceRequest) *content.Service { return r.ToDomain() },
			func(r dto.UpdateServiceRequest) store.Patch[*content.Service] { return r.ToPatch() }),
		Articles: handler.NewResourceHandler("article", d.Content.Articles,
			func(r dto.CreateArticleRequest) *content.Article { return r.ToDomain() },
			func(r dto.UpdateArticleRequest) store.Patch[*content.Article] { return r.ToPatch() }),
		Client:    handler.NewClientHandler(d.Business, d.Clock),
		Settings:  handler.NewSettingsHandler(d.System),
		Sync:      handler.NewSyncHandler(d.Coordinator, d.Conflicts),
		Activity:  handler.NewActivityHandler(d.Activity),
		Analytics: handler.NewAnalyticsHandler(d.Analytics, d.Clock),
		System:    handler.NewSystemHandler(d.DB, d.Tracker),
	}
}

// Groups returns the route groups of the API
func (h Handlers) Groups() []*DomainGroup {
	clients := resourceGroup("clients", h.Clients).
		POST("/onboard", h.Client.Onboard).
		GET("/:id/score", h.Client.Score)

	sync := NewDomainGroup("sync", "/sync").
		POST("", h.Sync.Start).
		GET("/status", h.Sync.Status)
	sync.Group("conflict", "/conflict").
		GET("", h.Sync.Conflict).
		POST("/detect", h.Sync.Detect).
		POST("/resolve", h.Sync.Resolve)

	return []*DomainGroup{
		clients,
		resourceGroup("projects", h.Projects),
		resourceGroup("invoices", h.Invoices),
		resourceGroup("expenses", h.Expenses),
		resourceGroup("services", h.Services),
		resourceGroup("articles", h.Articles),
		NewDomainGroup("settings", "/settings").
			GET("", h.Settings.Get).
			PUT("", h.Settings.Update),
		sync,
		NewDomainGroup("activity", "/activity").
			GET("", h.Activity.List),
		NewDomainGroup("analytics", "/analytics").
			GET("/summary", h.Analytics.Summary).
			GET("/monthly", h.Analytics.Monthly).
			GET("/export", h.Analytics.Export),
		NewDomainGroup("system", "/health").
			GET("", h.System.Health),
	}
}

// Mount registers every group on the engine under /api/v1
func Mount(engine *gin.Engine, h Handlers) {
	r := NewRouter(engine)
	for _, g := range h.Groups() {
		r.Register(g)
	}
	r.Setup()
}

func resourceGroup(name string, h CRUD) *DomainGroup {
	return NewDomainGroup(name, "/"+name).
		GET("", h.List).
		POST("", h.Create).
		GET("/:id", h.Get).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
}
