package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// PlanDTO is the public view of a plan
type PlanDTO struct {
	ID                  uuid.UUID       `json:"id"`
	Code                string          `json:"code"`
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	MonthlyPrice        decimal.Decimal `json:"monthly_price"`
	YearlyPrice         decimal.Decimal `json:"yearly_price"`
	MaxEquipment        int             `json:"max_equipment"`
	MaxUsers            int             `json:"max_users"`
	MaxBookingsPerMonth int             `json:"max_bookings_per_month"`
	Features            []string        `json:"features"`
}

// SubscriptionDTO is the current subscription with its plan
type SubscriptionDTO struct {
	ID                 uuid.UUID  `json:"id"`
	Status             string     `json:"status"`
	BillingCycle       string     `json:"billing_cycle"`
	BillingType        string     `json:"billing_type"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	Plan               PlanDTO    `json:"plan"`
}

// SubscribeInput converts the tenant to a paid subscription
type SubscribeInput struct {
	PlanCode     string `json:"plan_code" binding:"required"`
	BillingCycle string `json:"billing_cycle"`
	BillingType  string `json:"billing_type"`
}

// ChangePlanInput moves the current subscription to another plan
type ChangePlanInput struct {
	PlanCode     string `json:"plan_code" binding:"required"`
	BillingCycle string `json:"billing_cycle"`
}

func toPlanDTO(p *billing.Plan) PlanDTO {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return PlanDTO{
		ID:                  p.ID,
		Code:                p.Code,
		Name:                p.Name,
		Description:         p.Description,
		MonthlyPrice:        p.MonthlyPrice,
		YearlyPrice:         p.YearlyPrice,
		MaxEquipment:        p.MaxEquipment,
		MaxUsers:            p.MaxUsers,
		MaxBookingsPerMonth: p.MaxBookingsPerMonth,
		Features:            features,
	}
}

func toSubscriptionDTO(s *billing.Subscription, p *billing.Plan) SubscriptionDTO {
	return SubscriptionDTO{
		ID:                 s.ID,
		Status:             string(s.Status),
		BillingCycle:       string(s.BillingCycle),
		BillingType:        string(s.BillingType),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		TrialEndsAt:        s.TrialEndsAt,
		CancelledAt:        s.CancelledAt,
		Plan:               toPlanDTO(p),
	}
}
