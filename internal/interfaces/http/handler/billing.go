package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	billingapp "github.com/locaflow/backend/internal/application/billing"
	"github.com/locaflow/backend/internal/interfaces/http/dto"
	"github.com/locaflow/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AsaasTokenHeader carries the webhook token configured in the Asaas panel
const AsaasTokenHeader = "asaas-access-token"

// BillingHandler handles plans, the tenant subscription and gateway webhooks
type BillingHandler struct {
	BaseHandler
	billing  *billingapp.Service
	webhooks *billingapp.WebhookHandler
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billing *billingapp.Service, webhooks *billingapp.WebhookHandler) *BillingHandler {
	return &BillingHandler{billing: billing, webhooks: webhooks}
}

// SubscribeRequest converts the trial into a paid subscription
// @Description Subscription request
type SubscribeRequest struct {
	PlanCode     string `json:"plan_code" binding:"required,max=50" example:"PROFESSIONAL"`
	BillingCycle string `json:"billing_cycle" binding:"omitempty,oneof=MONTHLY YEARLY" example:"MONTHLY"`
	BillingType  string `json:"billing_type" binding:"omitempty,oneof=BOLETO PIX CREDIT_CARD" example:"PIX"`
}

// ChangePlanRequest moves the subscription to another plan
// @Description Plan change
type ChangePlanRequest struct {
	PlanCode     string `json:"plan_code" binding:"required,max=50" example:"ENTERPRISE"`
	BillingCycle string `json:"billing_cycle" binding:"omitempty,oneof=MONTHLY YEARLY" example:"YEARLY"`
}

// ListPlans godoc
// @ID           listPlans
// @Summary      List plans
// @Tags         billing
// @Produce      json
// @Success      200 {object} APIResponse[[]billingapp.PlanDTO]
// @Router       /plans [get]
func (h *BillingHandler) ListPlans(c *gin.Context) {
	plans, err := h.billing.ListPlans(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if plans == nil {
		plans = []billingapp.PlanDTO{}
	}
	h.Success(c, plans)
}

// Current godoc
// @ID           getSubscription
// @Summary      Current subscription
// @Tags         billing
// @Produce      json
// @Success      200 {object} APIResponse[billingapp.SubscriptionDTO]
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /subscription [get]
func (h *BillingHandler) Current(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	sub, err := h.billing.Current(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sub)
}

// Subscribe godoc
// @ID           subscribe
// @Summary      Subscribe to a plan
// @Description  Opens the gateway subscription when billing is configured, otherwise activates locally
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        request body SubscribeRequest true "Subscription"
// @Success      200 {object} APIResponse[billingapp.SubscriptionDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /subscription [post]
func (h *BillingHandler) Subscribe(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req SubscribeRequest
	if !h.bind(c, &req) {
		return
	}
	sub, err := h.billing.Subscribe(c.Request.Context(), tenantID, billingapp.SubscribeInput{
		PlanCode:     req.PlanCode,
		BillingCycle: req.BillingCycle,
		BillingType:  req.BillingType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sub)
}

// ChangePlan godoc
// @ID           changePlan
// @Summary      Change plan
// @Description  Downgrades are refused while usage exceeds the target plan limits
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        request body ChangePlanRequest true "Plan"
// @Success      200 {object} APIResponse[billingapp.SubscriptionDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /subscription/plan [put]
func (h *BillingHandler) ChangePlan(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req ChangePlanRequest
	if !h.bind(c, &req) {
		return
	}
	sub, err := h.billing.ChangePlan(c.Request.Context(), tenantID, billingapp.ChangePlanInput{
		PlanCode:     req.PlanCode,
		BillingCycle: req.BillingCycle,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sub)
}

// Cancel godoc
// @ID           cancelSubscription
// @Summary      Cancel subscription
// @Tags         billing
// @Produce      json
// @Success      200 {object} APIResponse[billingapp.SubscriptionDTO]
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /subscription [delete]
func (h *BillingHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	sub, err := h.billing.Cancel(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sub)
}

// Webhook godoc
// @ID           asaasWebhook
// @Summary      Asaas webhook
// @Description  Applies payment and subscription events. Repeated deliveries are acknowledged without effect
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        asaas-access-token header string true "Webhook token"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Router       /webhooks/asaas [post]
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Unable to read request body")
		return
	}
	if err := h.webhooks.Handle(c.Request.Context(), c.GetHeader(AsaasTokenHeader), payload); err != nil {
		logger.FromGin(c).Warn("Webhook rejected", zap.Error(err))
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Received"})
}
