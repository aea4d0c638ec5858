package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	fiscalapp "github.com/locaflow/backend/internal/application/fiscal"
	"github.com/locaflow/backend/internal/interfaces/http/dto"
)

// InvoiceHandler handles service invoices (NFS-e)
type InvoiceHandler struct {
	BaseHandler
	invoices *fiscalapp.Service
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoices *fiscalapp.Service) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// InvoiceListQuery filters invoices
type InvoiceListQuery struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=DRAFT PROCESSING AUTHORIZED ERROR CANCELLED"`
}

// CancelInvoiceRequest carries the cancel reason sent to the city hall
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,min=15,max=255" example:"Serviço não prestado ao tomador"`
}

// Create godoc
// @ID           createInvoice
// @Summary      Create invoice draft
// @Description  With a booking the customer and amount come from it
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body fiscalapp.CreateInvoiceInput true "Draft"
// @Success      201 {object} APIResponse[fiscalapp.InvoiceDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req fiscalapp.CreateInvoiceInput
	if !h.bind(c, &req) {
		return
	}
	inv, err := h.invoices.CreateDraft(c.Request.Context(), tenantID, actorID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// Get godoc
// @ID           getInvoice
// @Summary      Get invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[fiscalapp.InvoiceDTO]
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	inv, err := h.invoices.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Reference or number"
// @Param        status query string false "Status"
// @Param        customer_id query string false "Customer" format(uuid)
// @Param        booking_id query string false "Booking" format(uuid)
// @Param        from query string false "Created from (YYYY-MM-DD)"
// @Param        to query string false "Created until (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[[]fiscalapp.InvoiceDTO]
// @Security     CookieAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var q InvoiceListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	q.Normalize()

	f := fiscalapp.InvoiceListFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		Search:   q.Search,
		Status:   q.Status,
	}
	if f.CustomerID, ok = h.optionalUUIDQuery(c, "customer_id"); !ok {
		return
	}
	if f.BookingID, ok = h.optionalUUIDQuery(c, "booking_id"); !ok {
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

	result, err := h.invoices.List(c.Request.Context(), tenantID, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, result)
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete invoice
// @Description  Only drafts and rejected invoices can be deleted
// @Tags         invoices
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.invoices.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Issue godoc
// @ID           issueInvoice
// @Summary      Issue invoice
// @Description  Sends the draft to the fiscal provider. A rejection leaves the invoice in ERROR
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[fiscalapp.InvoiceDTO]
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /invoices/{id}/issue [post]
func (h *InvoiceHandler) Issue(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	inv, err := h.invoices.Issue(c.Request.Context(), tenantID, id, actorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Sync godoc
// @ID           syncInvoice
// @Summary      Sync invoice status
// @Description  Polls the fiscal provider for a processing invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[fiscalapp.InvoiceDTO]
// @Failure      404 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /invoices/{id}/sync [post]
func (h *InvoiceHandler) Sync(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	inv, err := h.invoices.Sync(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Cancel godoc
// @ID           cancelInvoice
// @Summary      Cancel invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body CancelInvoiceRequest true "Reason"
// @Success      200 {object} APIResponse[fiscalapp.InvoiceDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req CancelInvoiceRequest
	if !h.bind(c, &req) {
		return
	}
	inv, err := h.invoices.Cancel(c.Request.Context(), tenantID, id, actorID(c), req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// PDF godoc
// @ID           invoicePDF
// @Summary      Download invoice PDF
// @Tags         invoices
// @Produce      application/pdf
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {file} binary
// @Success      302
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *gin.Context) {
	h.download(c, fiscalapp.FilePDF)
}

// XML godoc
// @ID           invoiceXML
// @Summary      Download invoice XML
// @Tags         invoices
// @Produce      application/xml
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {file} binary
// @Success      302
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /invoices/{id}/xml [get]
func (h *InvoiceHandler) XML(c *gin.Context) {
	h.download(c, fiscalapp.FileXML)
}

func (h *InvoiceHandler) download(c *gin.Context, kind fiscalapp.FileKind) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	file, err := h.invoices.Download(c.Request.Context(), tenantID, id, kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if file.URL != "" {
		c.Redirect(http.StatusFound, file.URL)
		return
	}
	sendFile(c, file.FileName, file.ContentType, file.Data)
}
