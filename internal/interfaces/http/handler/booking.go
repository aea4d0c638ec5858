package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	bookingapp "github.com/locaflow/backend/internal/application/booking"
	"github.com/locaflow/backend/internal/application/printing"
	"github.com/locaflow/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// BookingHandler handles bookings and their lifecycle
type BookingHandler struct {
	BaseHandler
	bookingService  *bookingapp.Service
	contractService *printing.ContractService
}

// NewBookingHandler creates a new booking handler. contractService may be
// nil, in which case the contract route answers 503
func NewBookingHandler(bookingService *bookingapp.Service, contractService *printing.ContractService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService, contractService: contractService}
}

// BookingItemRequest is one equipment line
type BookingItemRequest struct {
	EquipmentID string           `json:"equipment_id" binding:"required,uuid" example:"5b1f0c1e-8d0a-4c53-9d55-7f1f0b6f3a11"`
	Quantity    int              `json:"quantity" binding:"required,min=1" example:"2"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty" swaggertype:"string" example:"300.00"`
}

// BookingRequest opens or replaces a pending booking
// @Description Booking form
type BookingRequest struct {
	CustomerID      string               `json:"customer_id" binding:"required,uuid"`
	StartDate       string               `json:"start_date" binding:"required" example:"2026-03-02"`
	EndDate         string               `json:"end_date" binding:"required" example:"2026-03-09"`
	Discount        decimal.Decimal      `json:"discount" swaggertype:"string" example:"0"`
	DeliveryFee     decimal.Decimal      `json:"delivery_fee" swaggertype:"string" example:"50.00"`
	Notes           string               `json:"notes" binding:"max=2000"`
	DeliveryAddress string               `json:"delivery_address" binding:"max=500"`
	Items           []BookingItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CompleteBookingRequest lists damaged units per equipment
// @Description Booking return
type CompleteBookingRequest struct {
	Damaged map[string]int `json:"damaged"`
}

// CancelBookingRequest carries the cancel reason
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=500" example:"Cliente desistiu"`
}

// BookingListQuery filters the booking list
type BookingListQuery struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED IN_PROGRESS COMPLETED CANCELLED"`
}

func (h *BookingHandler) toInput(c *gin.Context, tenantID uuid.UUID, req BookingRequest) (bookingapp.CreateBookingInput, bool) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.BadRequest(c, "Invalid customer_id")
		return bookingapp.CreateBookingInput{}, false
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		h.BadRequest(c, "Invalid start_date")
		return bookingapp.CreateBookingInput{}, false
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		h.BadRequest(c, "Invalid end_date")
		return bookingapp.CreateBookingInput{}, false
	}

	items := make([]bookingapp.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		equipmentID, err := uuid.Parse(it.EquipmentID)
		if err != nil {
			h.BadRequest(c, "Invalid equipment_id")
			return bookingapp.CreateBookingInput{}, false
		}
		items = append(items, bookingapp.ItemInput{
			EquipmentID: equipmentID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}

	return bookingapp.CreateBookingInput{
		TenantID:        tenantID,
		ActorID:         actorID(c),
		CustomerID:      customerID,
		StartDate:       start,
		EndDate:         end,
		Discount:        req.Discount,
		DeliveryFee:     req.DeliveryFee,
		Notes:           req.Notes,
		DeliveryAddress: req.DeliveryAddress,
		Items:           items,
	}, true
}

// Create godoc
// @ID           createBooking
// @Summary      Create booking
// @Description  Opens a pending booking. Stock is reserved on confirm
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        request body BookingRequest true "Booking"
// @Success      201 {object} APIResponse[bookingapp.BookingDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req BookingRequest
	if !h.bind(c, &req) {
		return
	}
	input, ok := h.toInput(c, tenantID, req)
	if !ok {
		return
	}
	b, err := h.bookingService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, b)
}

// Get godoc
// @ID           getBooking
// @Summary      Get booking
// @Tags         bookings
// @Produce      json
// @Param        id path string true "Booking ID" format(uuid)
// @Success      200 {object} APIResponse[bookingapp.BookingDTO]
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	b, err := h.bookingService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// List godoc
// @ID           listBookings
// @Summary      List bookings
// @Tags         bookings
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Booking number"
// @Param        status query string false "Status"
// @Param        customer_id query string false "Customer" format(uuid)
// @Param        from query string false "Bookings ending on or after (YYYY-MM-DD)"
// @Param        to query string false "Bookings starting on or before (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[[]bookingapp.BookingDTO]
// @Security     CookieAuth
// @Router       /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var q BookingListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	q.Normalize()
	customerID, ok := h.optionalUUIDQuery(c, "customer_id")
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

	result, err := h.bookingService.List(c.Request.Context(), tenantID, bookingapp.BookingListFilter{
		Page:       q.Page,
		PageSize:   q.PageSize,
		Search:     q.Search,
		Status:     q.Status,
		CustomerID: customerID,
		From:       from,
		To:         endOfDay(to),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, result)
}

// Update godoc
// @ID           updateBooking
// @Summary      Update booking
// @Description  Only pending bookings can be changed
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id path string true "Booking ID" format(uuid)
// @Param        request body BookingRequest true "Booking"
// @Success      200 {object} APIResponse[bookingapp.BookingDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /bookings/{id} [put]
func (h *BookingHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req BookingRequest
	if !h.bind(c, &req) {
		return
	}
	input, ok := h.toInput(c, tenantID, req)
	if !ok {
		return
	}
	b, err := h.bookingService.Update(c.Request.Context(), bookingapp.UpdateBookingInput{CreateBookingInput: input, ID: id})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// Delete godoc
// @ID           deleteBooking
// @Summary      Delete booking
// @Description  Only pending or cancelled bookings can be deleted
// @Tags         bookings
// @Param        id path string true "Booking ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /bookings/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.bookingService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Confirm godoc
// @ID           confirmBooking
// @Summary      Confirm booking
// @Description  Reserves the stock of every item
// @Tags         bookings
// @Produce      json
// @Param        id path string true "Booking ID" format(uuid)
// @Success      200 {object} APIResponse[bookingapp.BookingDTO]
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /bookings/{id}/confirm [post]
func (h *BookingHandler) Confirm(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	b, err := h.bookingService.Confirm(c.Request.Context(), tenantID, id, actorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// Start godoc
// @ID           startBooking
// @Summary      Start booking
// @Description  Records the pickup of a confirmed booking
// @Tags         bookings
// @Produce      json
// @Param        id path string true "Booking ID" format(uuid)
// @Success      200 {object} APIResponse[bookingapp.BookingDTO]
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /bookings/{id}/start [post]
func (h *BookingHandler) Start(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	b, err := h.bookingService.Start(c.Request.Context(), tenantID, id, actorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// Complete godoc
// @ID           completeBooking
// @Summary      Complete booking
// @Description  Records the return. Damaged units go to the damaged counter
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id path string true "Booking ID" format(uuid)
// @Param        request body CompleteBookingRequest false "Damaged units"
// @Success      200 {object} APIResponse[bookingapp.BookingDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /bookings/{id}/complete [post]
func (h *BookingHandler) Complete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req CompleteBookingRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}

	damaged := make(map[uuid.UUID]int, len(req.Damaged))
	for raw, qty := range req.Damaged {
		equipmentID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, fmt.Sprintf("Invalid equipment id %q in damaged", raw))
			return
		}
		if qty < 0 {
			h.BadRequest(c, "Damaged quantities cannot be negative")
			return
		}
		damaged[equipmentID] = qty
	}

	b, err := h.bookingService.Complete(c.Request.Context(), bookingapp.CompleteBookingInput{
		TenantID: tenantID,
		ID:       id,
		ActorID:  actorID(c),
		Damaged:  damaged,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// Cancel godoc
// @ID           cancelBooking
// @Summary      Cancel booking
// @Description  Releases reserved stock when the booking was confirmed
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id path string true "Booking ID" format(uuid)
// @Param        request body CancelBookingRequest false "Reason"
// @Success      200 {object} APIResponse[bookingapp.BookingDTO]
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req CancelBookingRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	b, err := h.bookingService.Cancel(c.Request.Context(), tenantID, id, actorID(c), req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// Contract godoc
// @ID           bookingContract
// @Summary      Rental contract
// @Description  Renders the contract PDF. Redirects to the stored copy when the object store can link to it
// @Tags         bookings
// @Produce      application/pdf
// @Param        id path string true "Booking ID" format(uuid)
// @Success      200 {file} binary
// @Success      302
// @Failure      404 {object} dto.ErrorResponse
// @Failure      503 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /bookings/{id}/contract [get]
func (h *BookingHandler) Contract(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if h.contractService == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, "Contract rendering is not configured")
		return
	}
	doc, err := h.contractService.Generate(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !doc.Stream() {
		c.Redirect(http.StatusFound, doc.URL)
		return
	}
	sendFile(c, doc.FileName, doc.ContentType, doc.Data)
}
