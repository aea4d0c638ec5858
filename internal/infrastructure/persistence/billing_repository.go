package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/billing"
	"github.com/locaflow/backend/internal/infrastructure/persistence/models"
	"github.com/locaflow/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormPlanRepository implements billing.PlanRepository using GORM
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GormPlanRepository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// FindByID finds a plan by ID
func (r *GormPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Plan, error) {
	var model models.PlanModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a plan by its code
func (r *GormPlanRepository) FindByCode(ctx context.Context, code string) (*billing.Plan, error) {
	var model models.PlanModel
	if err := conn(ctx, r.db).First(&model, "code = ?", strings.ToUpper(code)).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindActive lists the active plans in display order
func (r *GormPlanRepository) FindActive(ctx context.Context) ([]billing.Plan, error) {
	var rows []models.PlanModel
	if err := conn(ctx, r.db).
		Where("active = ?", true).
		Order("sort_order ASC, monthly_price ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	plans := make([]billing.Plan, len(rows))
	for i := range rows {
		plans[i] = *rows[i].ToDomain()
	}
	return plans, nil
}

// Count counts every plan
func (r *GormPlanRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.PlanModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a plan
func (r *GormPlanRepository) Save(ctx context.Context, p *billing.Plan) error {
	return writeError(conn(ctx, r.db).Save(models.PlanModelFromDomain(p)).Error)
}

// GormSubscriptionRepository implements billing.SubscriptionRepository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// FindByIDForTenant finds a subscription by ID within a tenant
func (r *GormSubscriptionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindCurrent returns the TRIALING, ACTIVE or PAST_DUE subscription of the tenant
func (r *GormSubscriptionRepository) FindCurrent(ctx context.Context, tenantID uuid.UUID) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).
		Where("status IN ?", billing.CurrentStatuses).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByGatewayID finds a subscription by its Asaas id across tenants
func (r *GormSubscriptionRepository) FindByGatewayID(ctx context.Context, gatewayID string) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	if err := conn(ctx, r.db).First(&model, "asaas_subscription_id = ?", gatewayID).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// HasCurrent reports whether the tenant already has a current subscription
func (r *GormSubscriptionRepository) HasCurrent(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.SubscriptionModel{}).Scopes(tenant.Scope(tenantID)).
		Where("status IN ?", billing.CurrentStatuses).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindExpiredTrials returns TRIALING subscriptions whose trial ended before now
func (r *GormSubscriptionRepository) FindExpiredTrials(ctx context.Context, now time.Time) ([]billing.Subscription, error) {
	var rows []models.SubscriptionModel
	if err := conn(ctx, r.db).
		Where("status = ? AND trial_ends_at < ?", billing.SubscriptionStatusTrialing, now).
		Order("trial_ends_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	subs := make([]billing.Subscription, len(rows))
	for i := range rows {
		subs[i] = *rows[i].ToDomain()
	}
	return subs, nil
}

// Save creates or updates a subscription
func (r *GormSubscriptionRepository) Save(ctx context.Context, s *billing.Subscription) error {
	return saveAggregate(conn(ctx, r.db), models.SubscriptionModelFromDomain(s), &s.BaseAggregateRoot)
}

var (
	_ billing.PlanRepository         = (*GormPlanRepository)(nil)
	_ billing.SubscriptionRepository = (*GormSubscriptionRepository)(nil)
)
