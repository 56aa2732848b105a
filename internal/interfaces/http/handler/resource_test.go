package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/agency/backend/internal/application/store"
	"github.com/agency/backend/internal/domain/billing"
	"github.com/agency/backend/internal/domain/crm"
	"github.com/agency/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountResource(r gin.IRoutes, prefix string, h interface {
	List(*gin.Context)
	Get(*gin.Context)
	Create(*gin.Context)
	Update(*gin.Context)
	Delete(*gin.Context)
}) {
	r.GET(prefix, h.List)
	r.POST(prefix, h.Create)
	r.GET(prefix+"/:id", h.Get)
	r.PUT(prefix+"/:id", h.Update)
	r.DELETE(prefix+"/:id", h.Delete)
}

func newClientRouter(f *fixture) *gin.Engine {
	r := gin.New()
	mountResource(r, "/clients", NewResourceHandler("client", f.business.Clients,
		func(req dto.CreateClientRequest) *crm.Client { return req.ToDomain() },
		func(req dto.UpdateClientRequest) store.Patch[*crm.Client] { return req.ToPatch() }))
	return r
}

func TestResourceHandler_ClientLifecycle(t *testing.T) {
	f := newFixture(t)
	r := newClientRouter(f)

	w := doJSON(t, r, http.MethodPost, "/clients", map[string]any{
		"name":  "Acme",
		"email": "hello@acme.test",
		"value": 250000,
		"tags":  []string{"retail"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := dataMap(t, decode(t, w))
	id, _ := created["id"].(string)
	assert.True(t, strings.HasPrefix(id, crm.ClientIDPrefix+"_"))
	assert.Equal(t, "lead", created["status"])
	assert.Equal(t, "250000", created["value"])

	w = doJSON(t, r, http.MethodGet, "/clients", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)
	require.NotNil(t, list.Meta)
	assert.Equal(t, 1, list.Meta.Total)

	w = doJSON(t, r, http.MethodPut, "/clients/"+id, map[string]any{"status": "active", "company": "Acme Ltd"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := dataMap(t, decode(t, w))
	assert.Equal(t, "active", updated["status"])
	assert.Equal(t, "Acme Ltd", updated["company"])
	assert.Equal(t, "Acme", updated["name"])

	w = doJSON(t, r, http.MethodDelete, "/clients/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/clients/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decode(t, w).Error.Code)
}

func TestResourceHandler_UnknownID(t *testing.T) {
	f := newFixture(t)
	r := newClientRouter(f)

	tests := []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPut, map[string]any{"name": "x"}},
		{http.MethodDelete, nil},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := doJSON(t, r, tt.method, "/clients/cli_missing", tt.body)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "client not found", decode(t, w).Error.Message)
		})
	}
	assert.Zero(t, f.business.Clients.Len())
}

func TestResourceHandler_InvoiceTotals(t *testing.T) {
	f := newFixture(t)
	r := gin.New()
	mountResource(r, "/invoices", NewResourceHandler("invoice", f.business.Invoices,
		func(req dto.CreateInvoiceRequest) *billing.Invoice { return req.ToDomain() },
		func(req dto.UpdateInvoiceRequest) store.Patch[*billing.Invoice] { return req.ToPatch() }))

	w := doJSON(t, r, http.MethodPost, "/invoices", map[string]any{
		"items": []map[string]any{
			{"description": "Design", "quantity": 2, "unitPrice": "100"},
			{"description": "Hosting", "quantity": 1, "unitPrice": "50"},
		},
		"discount": 25,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := dataMap(t, decode(t, w))
	assert.Equal(t, "250", inv["subtotal"])
	assert.Equal(t, "225", inv["total"])
	assert.Equal(t, "USD", inv["currency"])
	assert.Equal(t, "draft", inv["status"])

	id := inv["id"].(string)
	w = doJSON(t, r, http.MethodPut, "/invoices/"+id, map[string]any{"discount": 300, "status": "pending"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	inv = dataMap(t, decode(t, w))
	assert.Equal(t, "0", inv["total"])
	assert.Equal(t, "pending", inv["status"])

	w = doJSON(t, r, http.MethodPut, "/invoices/"+id, map[string]any{"currency": "usd"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decode(t, w).Error.Code)
}
