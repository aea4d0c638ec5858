package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PlanRepository persists platform plans
type PlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	FindByCode(ctx context.Context, code string) (*Plan, error)
	FindActive(ctx context.Context) ([]Plan, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, plan *Plan) error
}

// SubscriptionRepository persists tenant subscriptions
type SubscriptionRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Subscription, error)
	// FindCurrent returns the TRIALING, ACTIVE or PAST_DUE subscription of the tenant
	FindCurrent(ctx context.Context, tenantID uuid.UUID) (*Subscription, error)
	FindByGatewayID(ctx context.Context, gatewayID string) (*Subscription, error)
	HasCurrent(ctx context.Context, tenantID uuid.UUID) (bool, error)
	FindExpiredTrials(ctx context.Context, now time.Time) ([]Subscription, error)
	Save(ctx context.Context, sub *Subscription) error
}
