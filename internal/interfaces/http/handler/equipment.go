package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	inventoryapp "github.com/locaflow/backend/internal/application/inventory"
	"github.com/locaflow/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// EquipmentHandler handles the equipment catalog
type EquipmentHandler struct {
	BaseHandler
	equipmentService *inventoryapp.EquipmentService
}

// NewEquipmentHandler creates a new equipment handler
func NewEquipmentHandler(equipmentService *inventoryapp.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipmentService: equipmentService}
}

// EquipmentRequest holds the descriptive fields and prices of a model
// @Description Equipment form
type EquipmentRequest struct {
	Name             string          `json:"name" binding:"required,min=2,max=200" example:"Betoneira 400L"`
	Description      string          `json:"description" binding:"max=2000"`
	Category         string          `json:"category" binding:"max=100" example:"Construção"`
	Brand            string          `json:"brand" binding:"max=100" example:"Menegotti"`
	Model            string          `json:"model" binding:"max=100" example:"MB-400"`
	SerialNumber     string          `json:"serial_number" binding:"max=100"`
	DailyPrice       decimal.Decimal `json:"daily_price" swaggertype:"string" example:"80.00"`
	WeeklyPrice      decimal.Decimal `json:"weekly_price" swaggertype:"string" example:"450.00"`
	MonthlyPrice     decimal.Decimal `json:"monthly_price" swaggertype:"string" example:"1500.00"`
	ReplacementValue decimal.Decimal `json:"replacement_value" swaggertype:"string" example:"4500.00"`
}

// CreateEquipmentRequest adds the code and the first purchase
// @Description New equipment
type CreateEquipmentRequest struct {
	EquipmentRequest
	Code            string `json:"code" binding:"required,min=1,max=50" example:"BET-400"`
	InitialQuantity int    `json:"initial_quantity" binding:"gte=0" example:"5"`
}

// UpdateEquipmentRequest also toggles the active flag
// @Description Equipment changes
type UpdateEquipmentRequest struct {
	EquipmentRequest
	Active *bool `json:"active" example:"true"`
}

// EquipmentListQuery filters the catalog
type EquipmentListQuery struct {
	dto.ListRequest
	Category      string `form:"category" binding:"max=100"`
	Status        string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
	AvailableOnly bool   `form:"available_only"`
}

// Create godoc
// @ID           createEquipment
// @Summary      Create equipment
// @Description  Registers a model. A positive initial quantity is recorded as a purchase
// @Tags         equipment
// @Accept       json
// @Produce      json
// @Param        request body CreateEquipmentRequest true "Equipment"
// @Success      201 {object} APIResponse[inventoryapp.EquipmentDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /equipment [post]
func (h *EquipmentHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req CreateEquipmentRequest
	if !h.bind(c, &req) {
		return
	}

	equipment, err := h.equipmentService.Create(c.Request.Context(), inventoryapp.CreateEquipmentInput{
		TenantID:         tenantID,
		ActorID:          actorID(c),
		Code:             req.Code,
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		Brand:            req.Brand,
		Model:            req.Model,
		SerialNumber:     req.SerialNumber,
		DailyPrice:       req.DailyPrice,
		WeeklyPrice:      req.WeeklyPrice,
		MonthlyPrice:     req.MonthlyPrice,
		ReplacementValue: req.ReplacementValue,
		InitialQuantity:  req.InitialQuantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, equipment)
}

// Get godoc
// @ID           getEquipment
// @Summary      Get equipment
// @Tags         equipment
// @Produce      json
// @Param        id path string true "Equipment ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.EquipmentDTO]
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /equipment/{id} [get]
func (h *EquipmentHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	equipment, err := h.equipmentService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, equipment)
}

// List godoc
// @ID           listEquipment
// @Summary      List equipment
// @Tags         equipment
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Code, name, brand or model"
// @Param        category query string false "Category"
// @Param        status query string false "ACTIVE or INACTIVE"
// @Param        available_only query bool false "Only models with available units"
// @Success      200 {object} APIResponse[[]inventoryapp.EquipmentDTO]
// @Security     CookieAuth
// @Router       /equipment [get]
func (h *EquipmentHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var q EquipmentListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	q.Normalize()

	result, err := h.equipmentService.List(c.Request.Context(), tenantID, inventoryapp.EquipmentListFilter{
		Page:          q.Page,
		PageSize:      q.PageSize,
		Search:        q.Search,
		Category:      q.Category,
		Status:        q.Status,
		AvailableOnly: q.AvailableOnly,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, result)
}

// Update godoc
// @ID           updateEquipment
// @Summary      Update equipment
// @Description  Quantities change only through stock movements
// @Tags         equipment
// @Accept       json
// @Produce      json
// @Param        id path string true "Equipment ID" format(uuid)
// @Param        request body UpdateEquipmentRequest true "Changes"
// @Success      200 {object} APIResponse[inventoryapp.EquipmentDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /equipment/{id} [put]
func (h *EquipmentHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateEquipmentRequest
	if !h.bind(c, &req) {
		return
	}

	equipment, err := h.equipmentService.Update(c.Request.Context(), inventoryapp.UpdateEquipmentInput{
		TenantID:         tenantID,
		ID:               id,
		ActorID:          actorID(c),
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		Brand:            req.Brand,
		Model:            req.Model,
		SerialNumber:     req.SerialNumber,
		DailyPrice:       req.DailyPrice,
		WeeklyPrice:      req.WeeklyPrice,
		MonthlyPrice:     req.MonthlyPrice,
		ReplacementValue: req.ReplacementValue,
		Active:           req.Active,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, equipment)
}

// Delete godoc
// @ID           deleteEquipment
// @Summary      Delete equipment
// @Description  Equipment referenced by open bookings cannot be deleted
// @Tags         equipment
// @Param        id path string true "Equipment ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /equipment/{id} [delete]
func (h *EquipmentHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.equipmentService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Price godoc
// @ID           quoteEquipment
// @Summary      Quote a rental
// @Description  Best price of one unit for the number of days, combining monthly, weekly and daily rates
// @Tags         equipment
// @Produce      json
// @Param        id path string true "Equipment ID" format(uuid)
// @Param        days query int true "Rental days" minimum(1)
// @Success      200 {object} APIResponse[inventoryapp.PriceQuote]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /equipment/{id}/price [get]
func (h *EquipmentHandler) Price(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	days, err := strconv.Atoi(c.Query("days"))
	if err != nil || days < 1 {
		h.BadRequest(c, "days must be a positive integer")
		return
	}
	quote, err := h.equipmentService.Price(c.Request.Context(), tenantID, id, days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}
