package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// PlanModel is a platform plan row. Plans have no tenant column
type PlanModel struct {
	BaseModel
	Code                string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name                string          `gorm:"type:varchar(100);not null"`
	Description         string          `gorm:"type:text"`
	MonthlyPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	YearlyPrice         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	MaxEquipment        int             `gorm:"not null;default:0"`
	MaxUsers            int             `gorm:"not null;default:0"`
	MaxBookingsPerMonth int             `gorm:"not null;default:0"`
	Features            []string        `gorm:"type:text;serializer:json"`
	Active              bool            `gorm:"not null;default:true"`
	SortOrder           int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PlanModel) TableName() string {
	return "plans"
}

// ToDomain converts the persistence model to a domain Plan
func (m *PlanModel) ToDomain() *billing.Plan {
	return &billing.Plan{
		BaseEntity:   m.BaseModel.ToDomain(),
		Code:         m.Code,
		Name:         m.Name,
		Description:  m.Description,
		MonthlyPrice: m.MonthlyPrice,
		YearlyPrice:  m.YearlyPrice,
		Limits: billing.Limits{
			MaxEquipment:        m.MaxEquipment,
			MaxUsers:            m.MaxUsers,
			MaxBookingsPerMonth: m.MaxBookingsPerMonth,
		},
		Features:  m.Features,
		Active:    m.Active,
		SortOrder: m.SortOrder,
	}
}

// PlanModelFromDomain creates a persistence model from a domain Plan
func PlanModelFromDomain(p *billing.Plan) *PlanModel {
	m := &PlanModel{
		Code:                p.Code,
		Name:                p.Name,
		Description:         p.Description,
		MonthlyPrice:        p.MonthlyPrice,
		YearlyPrice:         p.YearlyPrice,
		MaxEquipment:        p.MaxEquipment,
		MaxUsers:            p.MaxUsers,
		MaxBookingsPerMonth: p.MaxBookingsPerMonth,
		Features:            p.Features,
		Active:              p.Active,
		SortOrder:           p.SortOrder,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// SubscriptionModel is the persistence model for tenant subscriptions
type SubscriptionModel struct {
	TenantAggregateModel
	PlanID              uuid.UUID                  `gorm:"type:uuid;not null;index"`
	Status              billing.SubscriptionStatus `gorm:"type:varchar(20);not null;index"`
	BillingCycle        billing.BillingCycle       `gorm:"type:varchar(10);not null;default:'MONTHLY'"`
	BillingType         billing.BillingType        `gorm:"type:varchar(20);not null;default:'UNDEFINED'"`
	AsaasSubscriptionID string                     `gorm:"type:varchar(50);index"`
	CurrentPeriodStart  *time.Time
	CurrentPeriodEnd    *time.Time
	TrialEndsAt         *time.Time `gorm:"index"`
	CancelledAt         *time.Time
}

// TableName returns the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// ToDomain converts the persistence model to a domain Subscription
func (m *SubscriptionModel) ToDomain() *billing.Subscription {
	return &billing.Subscription{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		PlanID:              m.PlanID,
		Status:              m.Status,
		BillingCycle:        m.BillingCycle,
		BillingType:         m.BillingType,
		AsaasSubscriptionID: m.AsaasSubscriptionID,
		CurrentPeriodStart:  m.CurrentPeriodStart,
		CurrentPeriodEnd:    m.CurrentPeriodEnd,
		TrialEndsAt:         m.TrialEndsAt,
		CancelledAt:         m.CancelledAt,
	}
}

// SubscriptionModelFromDomain creates a persistence model from a domain Subscription
func SubscriptionModelFromDomain(s *billing.Subscription) *SubscriptionModel {
	m := &SubscriptionModel{
		PlanID:              s.PlanID,
		Status:              s.Status,
		BillingCycle:        s.BillingCycle,
		BillingType:         s.BillingType,
		AsaasSubscriptionID: s.AsaasSubscriptionID,
		CurrentPeriodStart:  s.CurrentPeriodStart,
		CurrentPeriodEnd:    s.CurrentPeriodEnd,
		TrialEndsAt:         s.TrialEndsAt,
		CancelledAt:         s.CancelledAt,
	}
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	return m
}
