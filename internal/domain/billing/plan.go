package billing

import (
	"slices"
	"strings"

	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Feature flags carried by plans
const (
	FeatureNFSe      = "nfse"
	FeatureAPIAccess = "api_access"
	FeatureReports   = "reports"
)

// Plan codes seeded on first start
const (
	PlanStarter      = "STARTER"
	PlanProfessional = "PROFESSIONAL"
	PlanEnterprise   = "ENTERPRISE"
)

// LimitedResource is a resource whose count a plan can cap
type LimitedResource string

const (
	LimitEquipment        LimitedResource = "equipment"
	LimitUsers            LimitedResource = "users"
	LimitBookingsPerMonth LimitedResource = "bookings_per_month"
)

// Limits caps resource counts. Zero means unlimited
type Limits struct {
	MaxEquipment        int
	MaxUsers            int
	MaxBookingsPerMonth int
}

// For returns the cap of resource, 0 when unlimited
func (l Limits) For(resource LimitedResource) int {
	switch resource {
	case LimitEquipment:
		return l.MaxEquipment
	case LimitUsers:
		return l.MaxUsers
	case LimitBookingsPerMonth:
		return l.MaxBookingsPerMonth
	}
	return 0
}

// Plan is a platform-level price list entry. It has no tenant
type Plan struct {
	shared.BaseEntity
	Code         string
	Name         string
	Description  string
	MonthlyPrice decimal.Decimal
	YearlyPrice  decimal.Decimal
	Limits
	Features  []string
	Active    bool
	SortOrder int
}

// NewPlan validates a plan definition
func NewPlan(code, name string, monthly, yearly decimal.Decimal, limits Limits, features ...string) (*Plan, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Plan code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Plan name cannot be empty")
	}
	if monthly.IsNegative() || yearly.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	if limits.MaxEquipment < 0 || limits.MaxUsers < 0 || limits.MaxBookingsPerMonth < 0 {
		return nil, shared.NewDomainError("INVALID_LIMIT", "Limits cannot be negative")
	}
	return &Plan{
		BaseEntity:   shared.NewBaseEntity(),
		Code:         code,
		Name:         strings.TrimSpace(name),
		MonthlyPrice: monthly,
		YearlyPrice:  yearly,
		Limits:       limits,
		Features:     features,
		Active:       true,
	}, nil
}

// HasFeature reports whether the plan includes feature
func (p *Plan) HasFeature(feature string) bool {
	return slices.Contains(p.Features, feature)
}

// PriceFor returns the charge for one billing cycle
func (p *Plan) PriceFor(cycle BillingCycle) decimal.Decimal {
	if cycle == BillingCycleYearly {
		return p.YearlyPrice
	}
	return p.MonthlyPrice
}

// CheckLimit fails with PLAN_LIMIT_REACHED when current already uses the whole cap
func (p *Plan) CheckLimit(resource LimitedResource, current int64) error {
	limit := p.For(resource)
	if limit == 0 || current < int64(limit) {
		return nil
	}
	return shared.NewDomainErrorf(shared.CodePlanLimitReached,
		"Plan %s allows at most %d %s", p.Name, limit, strings.ReplaceAll(string(resource), "_", " "))
}

// DefaultPlans returns the plans seeded on an empty database
func DefaultPlans() []*Plan {
	defs := []struct {
		code, name, desc string
		monthly, yearly  int64
		limits           Limits
		features         []string
	}{
		{PlanStarter, "Starter", "Para locadoras começando", 99, 990,
			Limits{MaxEquipment: 50, MaxUsers: 2, MaxBookingsPerMonth: 100}, nil},
		{PlanProfessional, "Professional", "Para locadoras em crescimento", 249, 2490,
			Limits{MaxEquipment: 500, MaxUsers: 10, MaxBookingsPerMonth: 1000}, []string{FeatureNFSe, FeatureReports}},
		{PlanEnterprise, "Enterprise", "Sem limites", 599, 5990,
			Limits{}, []string{FeatureNFSe, FeatureReports, FeatureAPIAccess}},
	}
	out := make([]*Plan, 0, len(defs))
	for i, d := range defs {
		p, _ := NewPlan(d.code, d.name, decimal.NewFromInt(d.monthly), decimal.NewFromInt(d.yearly), d.limits, d.features...)
		p.Description = d.desc
		p.SortOrder = i + 1
		out = append(out, p)
	}
	return out
}
