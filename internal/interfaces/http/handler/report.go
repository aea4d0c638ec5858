package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	reportapp "github.com/locaflow/backend/internal/application/report"
)

// ReportHandler serves the dashboard and reports
type ReportHandler struct {
	BaseHandler
	reports *reportapp.Service
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *reportapp.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Dashboard godoc
// @ID           dashboard
// @Summary      Dashboard
// @Description  Counters, month revenue and top equipment. Cached for a minute
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[report.Dashboard]
// @Security     CookieAuth
// @Router       /dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	d, err := h.reports.Dashboard(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// Bookings godoc
// @ID           bookingsReport
// @Summary      Bookings per day
// @Description  One row per day, inclusive. Defaults to the last 30 days
// @Tags         reports
// @Produce      json
// @Param        from query string false "From (YYYY-MM-DD)"
// @Param        to query string false "To (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[report.BookingsReport]
// @Failure      400 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /reports/bookings [get]
func (h *ReportHandler) Bookings(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	from, ok := h.optionalDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := h.optionalDateQuery(c, "to")
	if !ok {
		return
	}
	var fromT, toT time.Time
	if from != nil {
		fromT = *from
	}
	if to != nil {
		toT = *to
	}
	r, err := h.reports.BookingsReport(c.Request.Context(), tenantID, fromT, toT)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}
