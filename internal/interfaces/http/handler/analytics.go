package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/agency/backend/internal/application/analytics"
	"github.com/agency/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves the derived business figures
type AnalyticsHandler struct {
	BaseHandler
	analytics *analytics.Service
	now       func() time.Time
}

// NewAnalyticsHandler creates the handler. A nil clock means time.Now.
func NewAnalyticsHandler(svc *analytics.Service, now func() time.Time) *AnalyticsHandler {
	if now == nil {
		now = time.Now
	}
	return &AnalyticsHandler{analytics: svc, now: now}
}

// Summary returns the KPI summary
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	h.Success(c, h.analytics.Summary(h.now()))
}

// Monthly returns revenue per month, oldest first. ?months defaults to six.
func (h *AnalyticsHandler) Monthly(c *gin.Context) {
	months := analytics.DefaultMonths
	if raw := c.Query("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 60 {
			h.BadRequest(c, "months must be between 1 and 60")
			return
		}
		months = n
	}
	h.Success(c, h.analytics.MonthlyRevenue(h.now(), months))
}

// Export streams the CSV export. With ?upload=true the file is stored in
// object storage instead and a download link is returned.
func (h *AnalyticsHandler) Export(c *gin.Context) {
	now := h.now()
	if upload, _ := strconv.ParseBool(c.Query("upload")); upload {
		res, err := h.analytics.ExportToStorage(c.Request.Context(), now)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, dto.ExportResponse{Key: res.Key, URL: res.URL, ExpiresAt: res.ExpiresAt})
		return
	}

	var buf bytes.Buffer
	if err := h.analytics.Export(&buf, now); err != nil {
		h.HandleError(c, err)
		return
	}
	name := fmt.Sprintf("analytics-%s.csv", now.UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
