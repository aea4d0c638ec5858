package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/locaflow/backend/internal/application/inventory"
	"github.com/locaflow/backend/internal/interfaces/http/dto"
)

// StockHandler exposes the stock ledger
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// MovementRequest registers a manual movement. Booking driven types are
// rejected. For ADJUSTMENT the quantity is the counted total
// @Description Manual stock movement
type MovementRequest struct {
	EquipmentID string `json:"equipment_id" binding:"required,uuid" example:"5b1f0c1e-8d0a-4c53-9d55-7f1f0b6f3a11"`
	Type        string `json:"type" binding:"required,oneof=PURCHASE WRITE_OFF MAINTENANCE_IN MAINTENANCE_OUT DAMAGE REPAIR LOSS ADJUSTMENT" example:"PURCHASE"`
	Quantity    int    `json:"quantity" binding:"gte=0" example:"3"`
	Reason      string `json:"reason" binding:"max=500" example:"Compra NF 1234"`
}

// MovementListQuery pages the ledger
type MovementListQuery struct {
	dto.ListRequest
	Type string `form:"type" binding:"max=30"`
}

// RegisterMovement godoc
// @ID           registerStockMovement
// @Summary      Register a stock movement
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body MovementRequest true "Movement"
// @Success      201 {object} APIResponse[inventoryapp.StockMovementDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /stock/movements [post]
func (h *StockHandler) RegisterMovement(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req MovementRequest
	if !h.bind(c, &req) {
		return
	}
	equipmentID, err := parseUUID(req.EquipmentID)
	if err != nil {
		h.BadRequest(c, "Invalid equipment_id")
		return
	}

	movement, err := h.stockService.RegisterMovement(c.Request.Context(), inventoryapp.RegisterMovementInput{
		TenantID:    tenantID,
		ActorID:     actorID(c),
		EquipmentID: equipmentID,
		Type:        req.Type,
		Quantity:    req.Quantity,
		Reason:      req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// ListMovements godoc
// @ID           listStockMovements
// @Summary      List stock movements
// @Tags         stock
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        equipment_id query string false "Equipment filter" format(uuid)
// @Param        booking_id query string false "Booking filter" format(uuid)
// @Param        type query string false "Movement type"
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[[]inventoryapp.StockMovementDTO]
// @Security     CookieAuth
// @Router       /stock/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var q MovementListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	q.Normalize()

	equipmentID, ok := h.optionalUUIDQuery(c, "equipment_id")
	if !ok {
		return
	}
	bookingID, ok := h.optionalUUIDQuery(c, "booking_id")
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

	result, err := h.stockService.ListMovements(c.Request.Context(), tenantID, inventoryapp.MovementListFilter{
		Page:        q.Page,
		PageSize:    q.PageSize,
		EquipmentID: equipmentID,
		BookingID:   bookingID,
		Type:        q.Type,
		From:        from,
		To:          endOfDay(to),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, result)
}

// Summary godoc
// @ID           stockSummary
// @Summary      Stock summary
// @Description  Counter totals, equipment by status and models running low
// @Tags         stock
// @Produce      json
// @Success      200 {object} APIResponse[inventoryapp.StockSummary]
// @Security     CookieAuth
// @Router       /stock/summary [get]
func (h *StockHandler) Summary(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	summary, err := h.stockService.Summary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
