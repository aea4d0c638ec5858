package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/locaflow/backend/internal/application/partner"
	"github.com/locaflow/backend/internal/domain/shared/valueobject"
	"github.com/locaflow/backend/internal/interfaces/http/dto"
)

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// CustomerRequest is the customer form. The document decides between a
// person (CPF) and a company (CNPJ). A bare zip code is completed by lookup
// @Description Customer form
type CustomerRequest struct {
	Name                  string              `json:"name" binding:"required,min=2,max=200" example:"Construtora Alfa Ltda"`
	TradeName             string              `json:"trade_name" binding:"max=200" example:"Alfa Obras"`
	Document              string              `json:"document" binding:"required,document" example:"11.222.333/0001-81"`
	StateRegistration     string              `json:"state_registration" binding:"max=20" example:"110042490114"`
	MunicipalRegistration string              `json:"municipal_registration" binding:"max=20"`
	Email                 string              `json:"email" binding:"omitempty,email,max=200" example:"compras@alfa.com.br"`
	Phone                 string              `json:"phone" binding:"max=20" example:"11 3333-4444"`
	Mobile                string              `json:"mobile" binding:"max=20" example:"11 98888-7777"`
	Address               valueobject.Address `json:"address"`
	Notes                 string              `json:"notes" binding:"max=2000"`
}

// UpdateCustomerRequest also toggles the active flag
// @Description Customer changes
type UpdateCustomerRequest struct {
	CustomerRequest
	Active *bool `json:"active" example:"true"`
}

// CustomerListQuery filters the customer list
type CustomerListQuery struct {
	dto.ListRequest
	Type string `form:"type" binding:"omitempty,oneof=INDIVIDUAL COMPANY"`
}

func (r CustomerRequest) toApp() partnerapp.CreateCustomerRequest {
	return partnerapp.CreateCustomerRequest{
		Name:                  r.Name,
		TradeName:             r.TradeName,
		Document:              r.Document,
		StateRegistration:     r.StateRegistration,
		MunicipalRegistration: r.MunicipalRegistration,
		Email:                 r.Email,
		Phone:                 r.Phone,
		Mobile:                r.Mobile,
		Address:               r.Address,
		Notes:                 r.Notes,
	}
}

// Create godoc
// @ID           createCustomer
// @Summary      Create a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body CustomerRequest true "Customer"
// @Success      201 {object} APIResponse[partnerapp.CustomerResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req CustomerRequest
	if !h.bind(c, &req) {
		return
	}
	customer, err := h.customerService.Create(c.Request.Context(), tenantID, actorID(c), req.toApp())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// Get godoc
// @ID           getCustomer
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[partnerapp.CustomerResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	customer, err := h.customerService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// List godoc
// @ID           listCustomers
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Name, trade name, document or email"
// @Param        type query string false "INDIVIDUAL or COMPANY"
// @Param        active query bool false "Active filter"
// @Success      200 {object} APIResponse[[]partnerapp.CustomerResponse]
// @Security     CookieAuth
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var q CustomerListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	q.Normalize()

	result, err := h.customerService.List(c.Request.Context(), tenantID, partnerapp.CustomerListFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		Search:   q.Search,
		Type:     q.Type,
		Active:   optionalBoolQuery(c, "active"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, result)
}

// Update godoc
// @ID           updateCustomer
// @Summary      Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        request body UpdateCustomerRequest true "Customer"
// @Success      200 {object} APIResponse[partnerapp.CustomerResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateCustomerRequest
	if !h.bind(c, &req) {
		return
	}
	customer, err := h.customerService.Update(c.Request.Context(), tenantID, id, actorID(c), partnerapp.UpdateCustomerRequest{
		CreateCustomerRequest: req.toApp(),
		Active:                req.Active,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete godoc
// @ID           deleteCustomer
// @Summary      Delete a customer
// @Description  Customers with open bookings cannot be deleted
// @Tags         customers
// @Param        id path string true "Customer ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.customerService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
