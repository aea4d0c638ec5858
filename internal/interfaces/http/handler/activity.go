package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/locaflow/backend/internal/application/audit"
	"github.com/locaflow/backend/internal/interfaces/http/dto"
)

// ActivityHandler reads the tenant activity log
type ActivityHandler struct {
	BaseHandler
	audit *audit.Service
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(auditService *audit.Service) *ActivityHandler {
	return &ActivityHandler{audit: auditService}
}

// ActivityListQuery filters the activity log
type ActivityListQuery struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	EntityType string `form:"entity_type" binding:"max=50"`
	Action     string `form:"action" binding:"max=50"`
}

// List godoc
// @ID           listActivityLogs
// @Summary      List activity logs
// @Description  Newest first
// @Tags         activity
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        entity_type query string false "Entity type"
// @Param        entity_id query string false "Entity" format(uuid)
// @Param        user_id query string false "Actor" format(uuid)
// @Param        action query string false "Action"
// @Param        from query string false "From (YYYY-MM-DD)"
// @Param        to query string false "To (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[[]audit.ActivityLogDTO]
// @Failure      403 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /activity-logs [get]
func (h *ActivityHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var q ActivityListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page := dto.ListRequest{Page: q.Page, PageSize: q.PageSize}
	page.Normalize()

	f := audit.ListFilter{
		Page:       page.Page,
		PageSize:   page.PageSize,
		EntityType: q.EntityType,
		Action:     q.Action,
	}
	if f.EntityID, ok = h.optionalUUIDQuery(c, "entity_id"); !ok {
		return
	}
	if f.UserID, ok = h.optionalUUIDQuery(c, "user_id"); !ok {
		return
	}
	if f.From, ok = h.optionalDateQuery(c, "from"); !ok {
		return
	}
	to, ok := h.optionalDateQuery(c, "to")
	if !ok {
		return
	}
	f.To = endOfDay(to)

	result, err := h.audit.List(c.Request.Context(), tenantID, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, result)
}
