package billing

import (
	"context"
	"time"

	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/infrastructure/integration"
	"go.uber.org/zap"
)

// webhookTTL covers the gateway retry window
const webhookTTL = 7 * 24 * time.Hour

var ErrInvalidWebhookToken = shared.NewDomainError(shared.CodeUnauthorized, "Invalid webhook token")

// WebhookHandler applies Asaas deliveries to subscriptions. Each delivery
// id is applied once
type WebhookHandler struct {
	service *Service
	store   shared.IdempotencyStore
	logger  *zap.Logger
}

// NewWebhookHandler creates a webhook handler backed by the service
func NewWebhookHandler(service *Service, store shared.IdempotencyStore, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, store: store, logger: logger}
}

// Handle verifies, parses and applies one delivery. Unknown events and
// subscriptions are acknowledged so the gateway stops retrying
func (h *WebhookHandler) Handle(ctx context.Context, token string, payload []byte) error {
	gateway := h.service.gateway
	if gateway == nil || !gateway.VerifyWebhookToken(token) {
		return ErrInvalidWebhookToken
	}
	event, err := integration.ParseAsaasWebhook(payload)
	if err != nil {
		return shared.NewDomainError(shared.CodeInvalidInput, err.Error())
	}

	key := "asaas:" + event.ID
	seen, err := h.store.IsProcessed(ctx, key)
	if err != nil {
		return err
	}
	if seen {
		h.logger.Debug("Duplicate webhook delivery", zap.String("event_id", event.ID))
		return nil
	}

	if err := h.apply(ctx, event); err != nil {
		return err
	}
	if _, err := h.store.MarkProcessed(ctx, key, webhookTTL); err != nil {
		h.logger.Warn("Failed to record webhook delivery", zap.String("event_id", event.ID), zap.Error(err))
	}
	return nil
}

func (h *WebhookHandler) apply(ctx context.Context, event integration.AsaasWebhookEvent) error {
	log := h.logger.With(
		zap.String("event", event.Event),
		zap.String("asaas_subscription_id", event.SubscriptionID),
	)
	if event.SubscriptionID == "" {
		log.Debug("Webhook without subscription ignored")
		return nil
	}
	sub, err := h.service.subscriptions.FindByGatewayID(ctx, event.SubscriptionID)
	if err != nil {
		if shared.IsNotFound(err) {
			log.Warn("Webhook for unknown subscription")
			return nil
		}
		return err
	}
	if !sub.ApplyWebhook(event.Event, h.service.now()) {
		log.Debug("Webhook event ignored")
		return nil
	}
	if err := h.service.subscriptions.Save(ctx, sub); err != nil {
		return err
	}
	log.Info("Subscription updated from webhook", zap.String("status", string(sub.Status)))
	return nil
}
