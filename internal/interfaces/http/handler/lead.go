package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/locaflow/backend/internal/application/partner"
	"github.com/locaflow/backend/internal/interfaces/http/dto"
)

// LeadHandler serves the public contact form and the platform lead inbox
type LeadHandler struct {
	BaseHandler
	leadService *partnerapp.LeadService
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadService *partnerapp.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

// CaptureLeadRequest is submitted by the public site
// @Description Public contact form
type CaptureLeadRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=200" example:"Carlos Mendes"`
	Email   string `json:"email" binding:"required,email,max=200" example:"carlos@obras.com.br"`
	Phone   string `json:"phone" binding:"max=20" example:"11 97777-6666"`
	Company string `json:"company" binding:"max=200" example:"Mendes Obras"`
	Message string `json:"message" binding:"max=4000" example:"Quero conhecer o sistema"`
	Source  string `json:"source" binding:"max=50" example:"landing-page"`
}

// LeadStatusRequest moves a lead through the funnel
// @Description Lead status
type LeadStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=NEW CONTACTED CONVERTED DISCARDED" example:"CONTACTED"`
}

// LeadListQuery filters the leads
type LeadListQuery struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=NEW CONTACTED CONVERTED DISCARDED"`
}

// Capture godoc
// @ID           captureLead
// @Summary      Submit a contact
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        request body CaptureLeadRequest true "Contact"
// @Success      201 {object} APIResponse[partnerapp.LeadResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      429 {object} dto.ErrorResponse
// @Router       /public/leads [post]
func (h *LeadHandler) Capture(c *gin.Context) {
	var req CaptureLeadRequest
	if !h.bind(c, &req) {
		return
	}
	lead, err := h.leadService.Capture(c.Request.Context(), partnerapp.CaptureLeadRequest{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Message: req.Message,
		Source:  req.Source,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, lead)
}

// List godoc
// @ID           listLeads
// @Summary      List leads
// @Tags         leads
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Name, email or company"
// @Param        status query string false "Status filter"
// @Success      200 {object} APIResponse[[]partnerapp.LeadResponse]
// @Security     CookieAuth
// @Router       /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	var q LeadListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	q.Normalize()
	result, err := h.leadService.List(c.Request.Context(), q.Page, q.PageSize, q.Search, q.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, result)
}

// ChangeStatus godoc
// @ID           changeLeadStatus
// @Summary      Change lead status
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body LeadStatusRequest true "Status"
// @Success      200 {object} APIResponse[partnerapp.LeadResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /leads/{id}/status [put]
func (h *LeadHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req LeadStatusRequest
	if !h.bind(c, &req) {
		return
	}
	lead, err := h.leadService.ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lead)
}

// Delete godoc
// @ID           deleteLead
// @Summary      Delete a lead
// @Tags         leads
// @Param        id path string true "Lead ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /leads/{id} [delete]
func (h *LeadHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.leadService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
