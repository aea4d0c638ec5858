package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/billing"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/infrastructure/integration"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Gateway is the subset of the Asaas API used for subscriptions
type Gateway interface {
	CreateCustomer(ctx context.Context, customer integration.AsaasCustomer) (string, error)
	CreateSubscription(ctx context.Context, req integration.AsaasSubscriptionRequest) (*integration.AsaasSubscription, error)
	UpdateSubscription(ctx context.Context, id string, value decimal.Decimal, cycle string) (*integration.AsaasSubscription, error)
	DeleteSubscription(ctx context.Context, id string) error
	VerifyWebhookToken(token string) bool
}

// TenantStore loads the paying tenant and keeps its gateway customer id
type TenantStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error)
	Save(ctx context.Context, tenant *identity.Tenant) error
}

var (
	ErrNoSubscription     = shared.NewDomainError("SUBSCRIPTION_REQUIRED", "The company has no active subscription")
	ErrSubscriptionExists = shared.NewDomainError(shared.CodeAlreadyExists, "The company already has an active subscription")
	ErrFeatureUnavailable = shared.NewDomainError("FEATURE_NOT_AVAILABLE", "This feature is not included in your plan")
	ErrPlanUnavailable    = shared.NewDomainError(shared.CodeNotFound, "Plan not found")
)

// Config holds the subscription defaults
type Config struct {
	TrialDays   int
	DefaultPlan string
}

// Service manages plans, subscriptions and plan enforcement.
// A nil gateway activates paid subscriptions locally
type Service struct {
	plans         billing.PlanRepository
	subscriptions billing.SubscriptionRepository
	tenants       TenantStore
	gateway       Gateway
	tx            shared.TransactionManager
	config        Config
	logger        *zap.Logger
	now           func() time.Time
}

// NewService creates a new billing service
func NewService(
	plans billing.PlanRepository,
	subscriptions billing.SubscriptionRepository,
	tenants TenantStore,
	gateway Gateway,
	tx shared.TransactionManager,
	config Config,
	logger *zap.Logger,
) *Service {
	if config.TrialDays <= 0 {
		config.TrialDays = billing.DefaultTrialDays
	}
	if config.DefaultPlan == "" {
		config.DefaultPlan = billing.PlanProfessional
	}
	return &Service{
		plans:         plans,
		subscriptions: subscriptions,
		tenants:       tenants,
		gateway:       gateway,
		tx:            tx,
		config:        config,
		logger:        logger,
		now:           time.Now,
	}
}

// EnsureDefaultPlans seeds the plan table when it is empty
func (s *Service) EnsureDefaultPlans(ctx context.Context) error {
	count, err := s.plans.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, p := range billing.DefaultPlans() {
		if err := s.plans.Save(ctx, p); err != nil {
			return fmt.Errorf("failed to seed plan %s: %w", p.Code, err)
		}
	}
	s.logger.Info("Default plans seeded")
	return nil
}

// ListPlans returns the active plans in display order
func (s *Service) ListPlans(ctx context.Context) ([]PlanDTO, error) {
	plans, err := s.plans.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PlanDTO, len(plans))
	for i := range plans {
		out[i] = toPlanDTO(&plans[i])
	}
	return out, nil
}

// InitializeTenant opens the trial of a newly registered tenant
func (s *Service) InitializeTenant(ctx context.Context, tenantID uuid.UUID, planCode string) error {
	if planCode == "" {
		planCode = s.config.DefaultPlan
	}
	plan, err := s.findPlan(ctx, planCode)
	if err != nil {
		return err
	}
	exists, err := s.subscriptions.HasCurrent(ctx, tenantID)
	if err != nil {
		return err
	}
	if exists {
		return ErrSubscriptionExists
	}
	trial := billing.NewTrial(tenantID, plan.ID, s.config.TrialDays, s.now())
	if err := s.subscriptions.Save(ctx, trial); err != nil {
		return err
	}
	s.logger.Info("Trial opened",
		zap.String("tenant_id", tenantID.String()),
		zap.String("plan", plan.Code),
		zap.Time("trial_ends_at", *trial.TrialEndsAt),
	)
	return nil
}

// Current returns the subscription governing the tenant
func (s *Service) Current(ctx context.Context, tenantID uuid.UUID) (*SubscriptionDTO, error) {
	sub, plan, err := s.current(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	dto := toSubscriptionDTO(sub, plan)
	return &dto, nil
}

// CurrentPlan returns the plan of the current subscription
func (s *Service) CurrentPlan(ctx context.Context, tenantID uuid.UUID) (*billing.Plan, error) {
	_, plan, err := s.current(ctx, tenantID)
	return plan, err
}

// CheckLimit fails when current already fills the plan cap for resource
func (s *Service) CheckLimit(ctx context.Context, tenantID uuid.UUID, resource billing.LimitedResource, current int64) error {
	plan, err := s.CurrentPlan(ctx, tenantID)
	if err != nil {
		return err
	}
	return plan.CheckLimit(resource, current)
}

// HasFeature reports whether the current plan includes feature
func (s *Service) HasFeature(ctx context.Context, tenantID uuid.UUID, feature string) (bool, error) {
	plan, err := s.CurrentPlan(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrNoSubscription) {
			return false, nil
		}
		return false, err
	}
	return plan.HasFeature(feature), nil
}

// RequireFeature fails unless the current plan includes feature
func (s *Service) RequireFeature(ctx context.Context, tenantID uuid.UUID, feature string) error {
	ok, err := s.HasFeature(ctx, tenantID, feature)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFeatureUnavailable
	}
	return nil
}

// Subscribe replaces the trial, or an ended subscription, with a paid one
func (s *Service) Subscribe(ctx context.Context, tenantID uuid.UUID, input SubscribeInput) (*SubscriptionDTO, error) {
	cycle := billing.BillingCycle(strings.ToUpper(input.BillingCycle))
	if cycle == "" {
		cycle = billing.BillingCycleMonthly
	}
	billingType := billing.BillingType(strings.ToUpper(input.BillingType))
	if billingType == "" {
		billingType = billing.BillingTypeUndefined
	}
	if !cycle.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_CYCLE", "Invalid billing cycle %q", input.BillingCycle)
	}
	if !billingType.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_BILLING_TYPE", "Invalid billing type %q", input.BillingType)
	}
	plan, err := s.findPlan(ctx, input.PlanCode)
	if err != nil {
		return nil, err
	}

	trial, err := s.subscriptions.FindCurrent(ctx, tenantID)
	switch {
	case err == nil && !trial.IsTrial():
		return nil, ErrSubscriptionExists
	case err != nil && !shared.IsNotFound(err):
		return nil, err
	case err != nil:
		trial = nil
	}

	now := s.now()
	gatewayID := ""
	if s.gateway != nil {
		gatewayID, err = s.openGatewaySubscription(ctx, tenantID, plan, cycle, billingType, firstCharge(trial, now))
		if err != nil {
			return nil, err
		}
	}

	sub, err := billing.NewPaid(tenantID, plan.ID, cycle, billingType, gatewayID, now)
	if err != nil {
		return nil, err
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if trial != nil {
			if err := trial.Cancel(now); err != nil {
				return err
			}
			if err := s.subscriptions.Save(ctx, trial); err != nil {
				return err
			}
		}
		exists, err := s.subscriptions.HasCurrent(ctx, tenantID)
		if err != nil {
			return err
		}
		if exists {
			return ErrSubscriptionExists
		}
		return s.subscriptions.Save(ctx, sub)
	})
	if err != nil {
		if gatewayID != "" {
			if derr := s.gateway.DeleteSubscription(ctx, gatewayID); derr != nil {
				s.logger.Error("Failed to roll back gateway subscription",
					zap.String("asaas_subscription_id", gatewayID),
					zap.Error(derr),
				)
			}
		}
		return nil, err
	}

	s.logger.Info("Subscription started",
		zap.String("tenant_id", tenantID.String()),
		zap.String("plan", plan.Code),
		zap.String("cycle", string(cycle)),
	)
	dto := toSubscriptionDTO(sub, plan)
	return &dto, nil
}

func (s *Service) openGatewaySubscription(ctx context.Context, tenantID uuid.UUID, plan *billing.Plan, cycle billing.BillingCycle, billingType billing.BillingType, due time.Time) (string, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if tenant.AsaasCustomerID == "" {
		id, err := s.gateway.CreateCustomer(ctx, integration.AsaasCustomer{
			Name:              tenant.Name,
			Document:          tenant.Document,
			Email:             tenant.Email,
			Phone:             tenant.Phone,
			ExternalReference: tenant.ID.String(),
		})
		if err != nil {
			return "", err
		}
		tenant.LinkAsaasCustomer(id)
		if err := s.tenants.Save(ctx, tenant); err != nil {
			return "", err
		}
	}
	remote, err := s.gateway.CreateSubscription(ctx, integration.AsaasSubscriptionRequest{
		CustomerID:        tenant.AsaasCustomerID,
		BillingType:       string(billingType),
		Cycle:             string(cycle),
		Value:             plan.PriceFor(cycle),
		NextDueDate:       due,
		Description:       "LocaFlow " + plan.Name,
		ExternalReference: tenantID.String(),
	})
	if err != nil {
		return "", err
	}
	return remote.ID, nil
}

// firstCharge is due when the running trial ends, or today
func firstCharge(trial *billing.Subscription, now time.Time) time.Time {
	if trial != nil && trial.TrialEndsAt != nil && trial.TrialEndsAt.After(now) {
		return *trial.TrialEndsAt
	}
	return now
}

// ChangePlan moves the current subscription to another plan or cycle
func (s *Service) ChangePlan(ctx context.Context, tenantID uuid.UUID, input ChangePlanInput) (*SubscriptionDTO, error) {
	sub, _, err := s.current(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	plan, err := s.findPlan(ctx, input.PlanCode)
	if err != nil {
		return nil, err
	}
	cycle := sub.BillingCycle
	if input.BillingCycle != "" {
		cycle = billing.BillingCycle(strings.ToUpper(input.BillingCycle))
	}
	if err := sub.ChangePlan(plan.ID, cycle); err != nil {
		return nil, err
	}
	// the gateway is repriced only after the row is saved
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.subscriptions.Save(ctx, sub); err != nil {
			return err
		}
		if s.gateway == nil || sub.AsaasSubscriptionID == "" {
			return nil
		}
		_, err := s.gateway.UpdateSubscription(ctx, sub.AsaasSubscriptionID, plan.PriceFor(cycle), string(cycle))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Subscription plan changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("plan", plan.Code),
	)
	dto := toSubscriptionDTO(sub, plan)
	return &dto, nil
}

// Cancel ends the current subscription here and at the gateway
func (s *Service) Cancel(ctx context.Context, tenantID uuid.UUID) (*SubscriptionDTO, error) {
	sub, plan, err := s.current(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if s.gateway != nil && sub.AsaasSubscriptionID != "" {
		if err := s.gateway.DeleteSubscription(ctx, sub.AsaasSubscriptionID); err != nil && !integration.HasStatus(err, http.StatusNotFound) {
			return nil, err
		}
	}
	if err := sub.Cancel(s.now()); err != nil {
		return nil, err
	}
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return nil, err
	}
	s.logger.Info("Subscription cancelled", zap.String("tenant_id", tenantID.String()))
	dto := toSubscriptionDTO(sub, plan)
	return &dto, nil
}

// ExpireTrials closes trials whose end date has passed
func (s *Service) ExpireTrials(ctx context.Context) (int, error) {
	now := s.now()
	trials, err := s.subscriptions.FindExpiredTrials(ctx, now)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range trials {
		sub := &trials[i]
		if !sub.Expire(now) {
			continue
		}
		if err := s.subscriptions.Save(ctx, sub); err != nil {
			s.logger.Warn("Failed to expire trial",
				zap.String("subscription_id", sub.ID.String()),
				zap.Error(err),
			)
			continue
		}
		expired++
	}
	if expired > 0 {
		s.logger.Info("Trials expired", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *Service) current(ctx context.Context, tenantID uuid.UUID) (*billing.Subscription, *billing.Plan, error) {
	sub, err := s.subscriptions.FindCurrent(ctx, tenantID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, nil, ErrNoSubscription
		}
		return nil, nil, err
	}
	plan, err := s.plans.FindByID(ctx, sub.PlanID)
	if err != nil {
		return nil, nil, err
	}
	return sub, plan, nil
}

func (s *Service) findPlan(ctx context.Context, code string) (*billing.Plan, error) {
	plan, err := s.plans.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, ErrPlanUnavailable
		}
		return nil, err
	}
	if !plan.Active {
		return nil, ErrPlanUnavailable
	}
	return plan, nil
}
