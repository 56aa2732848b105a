package handler

import (
	"time"

	"github.com/agency/backend/internal/application/store"
	"github.com/agency/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ClientHandler serves the client endpoints that span more than one record
type ClientHandler struct {
	BaseHandler
	business *store.BusinessStore
	now      func() time.Time
}

// NewClientHandler creates the handler. A nil clock means time.Now.
func NewClientHandler(business *store.BusinessStore, now func() time.Time) *ClientHandler {
	if now == nil {
		now = time.Now
	}
	return &ClientHandler{business: business, now: now}
}

// Score returns the lead score of a client
func (h *ClientHandler) Score(c *gin.Context) {
	id := c.Param("id")
	score, ok := h.business.ClientScore(id, h.now())
	if !ok {
		h.NotFound(c, "client not found")
		return
	}
	h.Success(c, dto.LeadScoreResponse{ClientID: id, Score: score.Score, Level: string(score.Level)})
}

// Onboard creates a client with its first invoice and waits for both remote
// inserts. On failure nothing of the onboarding is kept.
func (h *ClientHandler) Onboard(c *gin.Context) {
	var req dto.OnboardRequest
	if !h.BindJSON(c, &req) {
		return
	}
	clientID, invoiceID, err := h.business.OnboardClientWithInvoice(c.Request.Context(),
		req.Client.ToDomain(), req.Invoice.ToDomain())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.OnboardResponse{ClientID: clientID, InvoiceID: invoiceID})
}
