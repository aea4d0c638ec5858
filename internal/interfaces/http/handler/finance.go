package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/locaflow/backend/internal/application/finance"
	"github.com/locaflow/backend/internal/interfaces/http/dto"
)

// FinanceHandler handles transactions and the cash summary
type FinanceHandler struct {
	BaseHandler
	transactions *financeapp.TransactionService
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(transactions *financeapp.TransactionService) *FinanceHandler {
	return &FinanceHandler{transactions: transactions}
}

// TransactionListQuery filters transactions
type TransactionListQuery struct {
	dto.ListRequest
	Type   string `form:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
	Status string `form:"status" binding:"omitempty,oneof=PENDING PAID OVERDUE CANCELLED"`
}

// Create godoc
// @ID           createTransaction
// @Summary      Create transaction
// @Tags         financial
// @Accept       json
// @Produce      json
// @Param        request body financeapp.TransactionInput true "Transaction"
// @Success      201 {object} APIResponse[financeapp.TransactionDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/transactions [post]
func (h *FinanceHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req financeapp.TransactionInput
	if !h.bind(c, &req) {
		return
	}
	tx, err := h.transactions.Create(c.Request.Context(), tenantID, actorID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// Get godoc
// @ID           getTransaction
// @Summary      Get transaction
// @Tags         financial
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.TransactionDTO]
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/transactions/{id} [get]
func (h *FinanceHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	tx, err := h.transactions.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// List godoc
// @ID           listTransactions
// @Summary      List transactions
// @Tags         financial
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Description"
// @Param        type query string false "INCOME or EXPENSE"
// @Param        status query string false "Status"
// @Param        category_id query string false "Category" format(uuid)
// @Param        customer_id query string false "Customer" format(uuid)
// @Param        booking_id query string false "Booking" format(uuid)
// @Param        from query string false "Due from (YYYY-MM-DD)"
// @Param        to query string false "Due until (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[[]financeapp.TransactionDTO]
// @Security     CookieAuth
// @Router       /financial/transactions [get]
func (h *FinanceHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var q TransactionListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	q.Normalize()

	f := financeapp.TransactionListFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		Search:   q.Search,
		Type:     q.Type,
		Status:   q.Status,
	}
	if f.CategoryID, ok = h.optionalUUIDQuery(c, "category_id"); !ok {
		return
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

	result, err := h.transactions.List(c.Request.Context(), tenantID, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, result)
}

// Update godoc
// @ID           updateTransaction
// @Summary      Update transaction
// @Description  Paid and cancelled transactions cannot be changed
// @Tags         financial
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body financeapp.TransactionInput true "Transaction"
// @Success      200 {object} APIResponse[financeapp.TransactionDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/transactions/{id} [put]
func (h *FinanceHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req financeapp.TransactionInput
	if !h.bind(c, &req) {
		return
	}
	tx, err := h.transactions.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Delete godoc
// @ID           deleteTransaction
// @Summary      Delete transaction
// @Description  Paid transactions cannot be deleted
// @Tags         financial
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/transactions/{id} [delete]
func (h *FinanceHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.transactions.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Pay godoc
// @ID           payTransaction
// @Summary      Mark transaction paid
// @Tags         financial
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body financeapp.PayInput false "Payment"
// @Success      200 {object} APIResponse[financeapp.TransactionDTO]
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/transactions/{id}/pay [post]
func (h *FinanceHandler) Pay(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req financeapp.PayInput
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	tx, err := h.transactions.Pay(c.Request.Context(), tenantID, id, actorID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Cancel godoc
// @ID           cancelTransaction
// @Summary      Cancel transaction
// @Tags         financial
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.TransactionDTO]
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/transactions/{id}/cancel [post]
func (h *FinanceHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	tx, err := h.transactions.Cancel(c.Request.Context(), tenantID, id, actorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Summary godoc
// @ID           financialSummary
// @Summary      Cash summary
// @Description  Defaults to the current month when either bound is missing
// @Tags         financial
// @Produce      json
// @Param        from query string false "From (YYYY-MM-DD)"
// @Param        to query string false "To (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[finance.Summary]
// @Failure      400 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/summary [get]
func (h *FinanceHandler) Summary(c *gin.Context) {
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
	if from != nil && to != nil {
		fromT, toT = *from, *endOfDay(to)
	}
	summary, err := h.transactions.Summary(c.Request.Context(), tenantID, fromT, toT)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// CategoryHandler handles finance categories
type CategoryHandler struct {
	BaseHandler
	categories *financeapp.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories *financeapp.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List godoc
// @ID           listCategories
// @Summary      List categories
// @Tags         financial
// @Produce      json
// @Param        type query string false "INCOME or EXPENSE"
// @Success      200 {object} APIResponse[[]financeapp.CategoryDTO]
// @Security     CookieAuth
// @Router       /financial/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	kind := c.Query("type")
	if kind != "" && kind != "INCOME" && kind != "EXPENSE" {
		h.BadRequest(c, "type must be INCOME or EXPENSE")
		return
	}
	categories, err := h.categories.List(c.Request.Context(), tenantID, kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if categories == nil {
		categories = []financeapp.CategoryDTO{}
	}
	h.Success(c, categories)
}

// Create godoc
// @ID           createCategory
// @Summary      Create category
// @Tags         financial
// @Accept       json
// @Produce      json
// @Param        request body financeapp.CategoryInput true "Category"
// @Success      201 {object} APIResponse[financeapp.CategoryDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req financeapp.CategoryInput
	if !h.bind(c, &req) {
		return
	}
	category, err := h.categories.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// Update godoc
// @ID           updateCategory
// @Summary      Update category
// @Tags         financial
// @Accept       json
// @Produce      json
// @Param        id path string true "Category ID" format(uuid)
// @Param        request body financeapp.CategoryInput true "Category"
// @Success      200 {object} APIResponse[financeapp.CategoryDTO]
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req financeapp.CategoryInput
	if !h.bind(c, &req) {
		return
	}
	category, err := h.categories.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Delete godoc
// @ID           deleteCategory
// @Summary      Delete category
// @Description  Default categories and categories in use cannot be deleted
// @Tags         financial
// @Param        id path string true "Category ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RecurringHandler handles recurring series
type RecurringHandler struct {
	BaseHandler
	recurring *financeapp.RecurringService
}

// NewRecurringHandler creates a new recurring handler
func NewRecurringHandler(recurring *financeapp.RecurringService) *RecurringHandler {
	return &RecurringHandler{recurring: recurring}
}

// RecurringListQuery filters recurring series
type RecurringListQuery struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=ACTIVE PAUSED COMPLETED"`
}

// Create godoc
// @ID           createRecurring
// @Summary      Create recurring series
// @Tags         financial
// @Accept       json
// @Produce      json
// @Param        request body financeapp.RecurringInput true "Series"
// @Success      201 {object} APIResponse[financeapp.RecurringDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/recurring [post]
func (h *RecurringHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req financeapp.RecurringInput
	if !h.bind(c, &req) {
		return
	}
	r, err := h.recurring.Create(c.Request.Context(), tenantID, actorID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, r)
}

// Get godoc
// @ID           getRecurring
// @Summary      Get recurring series
// @Tags         financial
// @Produce      json
// @Param        id path string true "Series ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.RecurringDTO]
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/recurring/{id} [get]
func (h *RecurringHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	r, err := h.recurring.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// List godoc
// @ID           listRecurring
// @Summary      List recurring series
// @Tags         financial
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        status query string false "ACTIVE, PAUSED or COMPLETED"
// @Success      200 {object} APIResponse[[]financeapp.RecurringDTO]
// @Security     CookieAuth
// @Router       /financial/recurring [get]
func (h *RecurringHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var q RecurringListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	q.Normalize()
	result, err := h.recurring.List(c.Request.Context(), tenantID, q.Page, q.PageSize, q.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, result)
}

// Update godoc
// @ID           updateRecurring
// @Summary      Update recurring series
// @Tags         financial
// @Accept       json
// @Produce      json
// @Param        id path string true "Series ID" format(uuid)
// @Param        request body financeapp.RecurringInput true "Series"
// @Success      200 {object} APIResponse[financeapp.RecurringDTO]
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/recurring/{id} [put]
func (h *RecurringHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req financeapp.RecurringInput
	if !h.bind(c, &req) {
		return
	}
	r, err := h.recurring.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// Delete godoc
// @ID           deleteRecurring
// @Summary      Delete recurring series
// @Description  Transactions already generated are kept
// @Tags         financial
// @Param        id path string true "Series ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/recurring/{id} [delete]
func (h *RecurringHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.recurring.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Pause godoc
// @ID           pauseRecurring
// @Summary      Pause recurring series
// @Tags         financial
// @Produce      json
// @Param        id path string true "Series ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.RecurringDTO]
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/recurring/{id}/pause [post]
func (h *RecurringHandler) Pause(c *gin.Context) {
	h.change(c, h.recurring.Pause)
}

// Resume godoc
// @ID           resumeRecurring
// @Summary      Resume recurring series
// @Tags         financial
// @Produce      json
// @Param        id path string true "Series ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.RecurringDTO]
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/recurring/{id}/resume [post]
func (h *RecurringHandler) Resume(c *gin.Context) {
	h.change(c, h.recurring.Resume)
}

// Complete godoc
// @ID           completeRecurring
// @Summary      Complete recurring series
// @Tags         financial
// @Produce      json
// @Param        id path string true "Series ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.RecurringDTO]
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /financial/recurring/{id}/complete [post]
func (h *RecurringHandler) Complete(c *gin.Context) {
	h.change(c, h.recurring.Complete)
}

// Generate godoc
// @ID           generateRecurring
// @Summary      Generate due transactions
// @Description  Creates the transactions of every active series that is due
// @Tags         financial
// @Produce      json
// @Success      200 {object} APIResponse[CountData]
// @Security     CookieAuth
// @Router       /financial/recurring/generate [post]
func (h *RecurringHandler) Generate(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	n, err := h.recurring.GenerateDue(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: int64(n)})
}

func (h *RecurringHandler) change(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*financeapp.RecurringDTO, error)) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	r, err := fn(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}
