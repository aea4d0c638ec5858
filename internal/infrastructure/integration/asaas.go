package integration

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/locaflow/backend/internal/domain/shared/valueobject"
	"github.com/locaflow/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	AsaasProductionURL = "https://api.asaas.com/v3"
	AsaasSandboxURL    = "https://sandbox.asaas.com/api/v3"

	asaasDateLayout = "2006-01-02"
)

// AsaasCustomer is the payer registered at the gateway
type AsaasCustomer struct {
	Name              string
	Document          string
	Email             string
	Phone             string
	ExternalReference string
}

// AsaasSubscriptionRequest opens a recurring charge
type AsaasSubscriptionRequest struct {
	CustomerID        string
	BillingType       string // BOLETO, PIX, CREDIT_CARD or UNDEFINED
	Cycle             string // MONTHLY or YEARLY
	Value             decimal.Decimal
	NextDueDate       time.Time
	Description       string
	ExternalReference string
}

// AsaasSubscription is the gateway view of a subscription
type AsaasSubscription struct {
	ID          string
	CustomerID  string
	Status      string
	Cycle       string
	Value       decimal.Decimal
	NextDueDate time.Time
}

// AsaasWebhookEvent is a parsed webhook delivery
type AsaasWebhookEvent struct {
	ID             string
	Event          string
	SubscriptionID string
	PaymentID      string
}

// AsaasClient talks to the Asaas v3 API
type AsaasClient struct {
	rest         *restClient
	webhookToken string
}

// NewAsaasClient creates a client authenticated by the access_token header
func NewAsaasClient(cfg config.AsaasConfig, logger *zap.Logger) *AsaasClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = AsaasProductionURL
		if cfg.Sandbox {
			baseURL = AsaasSandboxURL
		}
	}
	rest := newRestClient("asaas", baseURL, cfg.Timeout, logger)
	key := cfg.APIKey
	rest.authorize = func(req *http.Request) { req.Header.Set("access_token", key) }
	rest.parseError = func(body gjson.Result) (string, string) {
		first := body.Get("errors.0")
		return first.Get("code").String(), first.Get("description").String()
	}
	return &AsaasClient{rest: rest, webhookToken: cfg.WebhookToken}
}

// CreateCustomer registers a payer and returns its gateway id
func (c *AsaasClient) CreateCustomer(ctx context.Context, customer AsaasCustomer) (string, error) {
	body, _, err := c.rest.doJSON(ctx, http.MethodPost, "/customers", map[string]any{
		"name":              customer.Name,
		"cpfCnpj":           valueobject.OnlyDigits(customer.Document),
		"email":             customer.Email,
		"mobilePhone":       valueobject.OnlyDigits(customer.Phone),
		"externalReference": customer.ExternalReference,
	})
	if err != nil {
		return "", err
	}
	id := body.Get("id").String()
	if id == "" {
		return "", fmt.Errorf("asaas: customer response without id")
	}
	return id, nil
}

// CreateSubscription opens a subscription
func (c *AsaasClient) CreateSubscription(ctx context.Context, req AsaasSubscriptionRequest) (*AsaasSubscription, error) {
	body, _, err := c.rest.doJSON(ctx, http.MethodPost, "/subscriptions", map[string]any{
		"customer":          req.CustomerID,
		"billingType":       req.BillingType,
		"cycle":             req.Cycle,
		"value":             req.Value.InexactFloat64(),
		"nextDueDate":       req.NextDueDate.Format(asaasDateLayout),
		"description":       req.Description,
		"externalReference": req.ExternalReference,
	})
	if err != nil {
		return nil, err
	}
	return parseAsaasSubscription(body)
}

// UpdateSubscription changes value and cycle, repricing pending charges too
func (c *AsaasClient) UpdateSubscription(ctx context.Context, id string, value decimal.Decimal, cycle string) (*AsaasSubscription, error) {
	body, _, err := c.rest.doJSON(ctx, http.MethodPut, "/subscriptions/"+url.PathEscape(id), map[string]any{
		"value":                 value.InexactFloat64(),
		"cycle":                 cycle,
		"updatePendingPayments": true,
	})
	if err != nil {
		return nil, err
	}
	return parseAsaasSubscription(body)
}

// GetSubscription fetches a subscription
func (c *AsaasClient) GetSubscription(ctx context.Context, id string) (*AsaasSubscription, error) {
	body, _, err := c.rest.doJSON(ctx, http.MethodGet, "/subscriptions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return parseAsaasSubscription(body)
}

// DeleteSubscription cancels a subscription at the gateway
func (c *AsaasClient) DeleteSubscription(ctx context.Context, id string) error {
	body, _, err := c.rest.doJSON(ctx, http.MethodDelete, "/subscriptions/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	if d := body.Get("deleted"); d.Exists() && !d.Bool() {
		return fmt.Errorf("asaas: subscription %s was not deleted", id)
	}
	return nil
}

// VerifyWebhookToken checks the asaas-access-token header value
func (c *AsaasClient) VerifyWebhookToken(token string) bool {
	if c.webhookToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(c.webhookToken)) == 1
}

// ParseAsaasWebhook extracts the event type and the subscription it concerns
func ParseAsaasWebhook(payload []byte) (AsaasWebhookEvent, error) {
	if !gjson.ValidBytes(payload) {
		return AsaasWebhookEvent{}, fmt.Errorf("asaas: invalid webhook payload")
	}
	body := gjson.ParseBytes(payload)
	ev := AsaasWebhookEvent{
		ID:        body.Get("id").String(),
		Event:     body.Get("event").String(),
		PaymentID: body.Get("payment.id").String(),
	}
	ev.SubscriptionID = body.Get("payment.subscription").String()
	if ev.SubscriptionID == "" {
		ev.SubscriptionID = body.Get("subscription.id").String()
	}
	if ev.Event == "" {
		return AsaasWebhookEvent{}, fmt.Errorf("asaas: webhook without event")
	}
	if ev.ID == "" {
		// older deliveries carry no event id
		ev.ID = strings.Join([]string{ev.Event, ev.PaymentID, ev.SubscriptionID}, ":")
	}
	return ev, nil
}

func parseAsaasSubscription(body gjson.Result) (*AsaasSubscription, error) {
	id := body.Get("id").String()
	if id == "" {
		return nil, fmt.Errorf("asaas: subscription response without id")
	}
	value, err := decimal.NewFromString(body.Get("value").Raw)
	if err != nil {
		value = decimal.Zero
	}
	next, _ := time.Parse(asaasDateLayout, body.Get("nextDueDate").String())
	return &AsaasSubscription{
		ID:          id,
		CustomerID:  body.Get("customer").String(),
		Status:      body.Get("status").String(),
		Cycle:       body.Get("cycle").String(),
		Value:       value,
		NextDueDate: next,
	}, nil
}
