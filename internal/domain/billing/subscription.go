package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
)

// SubscriptionStatus is the billing state of a tenant
type SubscriptionStatus string

const (
	SubscriptionStatusTrialing  SubscriptionStatus = "TRIALING"
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPastDue   SubscriptionStatus = "PAST_DUE"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
)

// IsCurrent reports whether the subscription still governs the tenant.
// At most one current subscription exists per tenant
func (s SubscriptionStatus) IsCurrent() bool {
	return s == SubscriptionStatusTrialing || s == SubscriptionStatusActive || s == SubscriptionStatusPastDue
}

// CurrentStatuses lists the statuses counted by the one-subscription rule
var CurrentStatuses = []SubscriptionStatus{SubscriptionStatusTrialing, SubscriptionStatusActive, SubscriptionStatusPastDue}

// BillingCycle is the charge period
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "MONTHLY"
	BillingCycleYearly  BillingCycle = "YEARLY"
)

// IsValid returns true for known cycles
func (c BillingCycle) IsValid() bool {
	return c == BillingCycleMonthly || c == BillingCycleYearly
}

// Next returns the end of a period starting at t
func (c BillingCycle) Next(t time.Time) time.Time {
	if c == BillingCycleYearly {
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 1, 0)
}

// BillingType is how the gateway charges the tenant
type BillingType string

const (
	BillingTypeBoleto     BillingType = "BOLETO"
	BillingTypePix        BillingType = "PIX"
	BillingTypeCreditCard BillingType = "CREDIT_CARD"
	BillingTypeUndefined  BillingType = "UNDEFINED"
)

// IsValid returns true for known billing types
func (b BillingType) IsValid() bool {
	switch b {
	case BillingTypeBoleto, BillingTypePix, BillingTypeCreditCard, BillingTypeUndefined:
		return true
	}
	return false
}

// Gateway webhook events handled by subscriptions
const (
	WebhookPaymentConfirmed        = "PAYMENT_CONFIRMED"
	WebhookPaymentReceived         = "PAYMENT_RECEIVED"
	WebhookPaymentOverdue          = "PAYMENT_OVERDUE"
	WebhookSubscriptionDeleted     = "SUBSCRIPTION_DELETED"
	WebhookSubscriptionInactivated = "SUBSCRIPTION_INACTIVATED"
)

// DefaultTrialDays is the length of the trial opened at registration
const DefaultTrialDays = 14

// Subscription binds a tenant to a plan
type Subscription struct {
	shared.TenantAggregateRoot
	PlanID              uuid.UUID
	Status              SubscriptionStatus
	BillingCycle        BillingCycle
	BillingType         BillingType
	AsaasSubscriptionID string
	CurrentPeriodStart  *time.Time
	CurrentPeriodEnd    *time.Time
	TrialEndsAt         *time.Time
	CancelledAt         *time.Time
}

// NewTrial opens a trial on plan
func NewTrial(tenantID, planID uuid.UUID, trialDays int, now time.Time) *Subscription {
	if trialDays <= 0 {
		trialDays = DefaultTrialDays
	}
	ends := now.AddDate(0, 0, trialDays)
	return &Subscription{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PlanID:              planID,
		Status:              SubscriptionStatusTrialing,
		BillingCycle:        BillingCycleMonthly,
		BillingType:         BillingTypeUndefined,
		CurrentPeriodStart:  &now,
		CurrentPeriodEnd:    &ends,
		TrialEndsAt:         &ends,
	}
}

// NewPaid opens a gateway-backed subscription starting now
func NewPaid(tenantID, planID uuid.UUID, cycle BillingCycle, billingType BillingType, gatewayID string, now time.Time) (*Subscription, error) {
	if !cycle.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_CYCLE", "Invalid billing cycle %q", cycle)
	}
	if !billingType.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_BILLING_TYPE", "Invalid billing type %q", billingType)
	}
	end := cycle.Next(now)
	return &Subscription{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PlanID:              planID,
		Status:              SubscriptionStatusActive,
		BillingCycle:        cycle,
		BillingType:         billingType,
		AsaasSubscriptionID: gatewayID,
		CurrentPeriodStart:  &now,
		CurrentPeriodEnd:    &end,
	}, nil
}

// IsTrial reports whether the subscription is an unpaid trial
func (s *Subscription) IsTrial() bool {
	return s.Status == SubscriptionStatusTrialing
}

// ChangePlan moves the subscription to another plan and cycle
func (s *Subscription) ChangePlan(planID uuid.UUID, cycle BillingCycle) error {
	if !s.Status.IsCurrent() {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot change plan of a %s subscription", s.Status)
	}
	if !cycle.IsValid() {
		return shared.NewDomainErrorf("INVALID_CYCLE", "Invalid billing cycle %q", cycle)
	}
	s.PlanID = planID
	s.BillingCycle = cycle
	s.Touch()
	return nil
}

// Cancel ends the subscription
func (s *Subscription) Cancel(now time.Time) error {
	if !s.Status.IsCurrent() {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Subscription is already %s", s.Status)
	}
	s.Status = SubscriptionStatusCancelled
	s.CancelledAt = &now
	s.Touch()
	return nil
}

// Expire ends a trial whose end date has passed. It returns true when the status changed
func (s *Subscription) Expire(now time.Time) bool {
	if s.Status != SubscriptionStatusTrialing || s.TrialEndsAt == nil || s.TrialEndsAt.After(now) {
		return false
	}
	s.Status = SubscriptionStatusExpired
	s.Touch()
	return true
}

// ApplyWebhook updates the status for a gateway event. Unknown events and
// events for cancelled or expired subscriptions are ignored
func (s *Subscription) ApplyWebhook(event string, now time.Time) bool {
	if !s.Status.IsCurrent() {
		return false
	}
	switch event {
	case WebhookPaymentConfirmed, WebhookPaymentReceived:
		start := now
		if s.CurrentPeriodEnd != nil && s.Status != SubscriptionStatusTrialing && s.CurrentPeriodEnd.After(now.AddDate(0, 0, -s.graceDays())) {
			start = *s.CurrentPeriodEnd
		}
		end := s.BillingCycle.Next(start)
		s.Status = SubscriptionStatusActive
		s.CurrentPeriodStart = &start
		s.CurrentPeriodEnd = &end
	case WebhookPaymentOverdue:
		s.Status = SubscriptionStatusPastDue
	case WebhookSubscriptionDeleted, WebhookSubscriptionInactivated:
		s.Status = SubscriptionStatusCancelled
		s.CancelledAt = &now
	default:
		return false
	}
	s.Touch()
	return true
}

func (s *Subscription) graceDays() int {
	if s.BillingCycle == BillingCycleYearly {
		return 30
	}
	return 7
}
