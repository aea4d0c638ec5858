package identity

import (
	"strings"

	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TenantStatus represents the lifecycle state of a rental company account
type TenantStatus string

const (
	TenantStatusTrial     TenantStatus = "TRIAL"
	TenantStatusActive    TenantStatus = "ACTIVE"
	TenantStatusSuspended TenantStatus = "SUSPENDED"
	TenantStatusCancelled TenantStatus = "CANCELLED"
)

// FiscalSettings holds what the tenant needs to issue NFS-e
type FiscalSettings struct {
	MunicipalRegistration string
	ServiceCode           string
	ISSRate               decimal.Decimal
	SimpleNational        bool
}

// IsComplete reports whether invoices can be issued with these settings
func (f FiscalSettings) IsComplete() bool {
	return f.MunicipalRegistration != "" && f.ServiceCode != "" && f.ISSRate.IsPositive()
}

// Tenant is a rental company using the platform
type Tenant struct {
	shared.BaseAggregateRoot
	Name            string
	Slug            string
	Document        string
	Email           string
	Phone           string
	Status          TenantStatus
	Address         valueobject.Address
	Fiscal          FiscalSettings
	AsaasCustomerID string
}

// NewTenant creates a tenant in trial status
func NewTenant(name, document, email string) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Company name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Company name cannot exceed 200 characters")
	}
	var digits string
	if strings.TrimSpace(document) != "" {
		doc, err := valueobject.ParseDocument(document)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_DOCUMENT", err.Error())
		}
		digits = doc.Number()
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	t := &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              valueobject.Slugify(name),
		Document:          digits,
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Status:            TenantStatusTrial,
	}
	t.AddDomainEvent(NewTenantCreatedEvent(t))
	return t, nil
}

// UpdateProfile changes contact and address data
func (t *Tenant) UpdateProfile(name, phone string, address valueobject.Address) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_TENANT_NAME", "Company name cannot be empty")
	}
	addr, err := valueobject.NewAddress(address)
	if err != nil {
		return shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}
	t.Name = name
	t.Phone = strings.TrimSpace(phone)
	t.Address = addr
	t.Touch()
	return nil
}

// SetFiscalSettings stores the NFS-e configuration
func (t *Tenant) SetFiscalSettings(settings FiscalSettings) error {
	if settings.ISSRate.IsNegative() || settings.ISSRate.GreaterThan(decimal.NewFromInt(5)) {
		return shared.NewDomainError("INVALID_ISS_RATE", "ISS rate must be between 0 and 5 percent")
	}
	settings.MunicipalRegistration = valueobject.OnlyDigits(settings.MunicipalRegistration)
	settings.ServiceCode = strings.TrimSpace(settings.ServiceCode)
	t.Fiscal = settings
	t.Touch()
	return nil
}

// Activate moves a trial or suspended tenant to active
func (t *Tenant) Activate() error {
	if t.Status == TenantStatusCancelled {
		return shared.NewDomainError("TENANT_CANCELLED", "Cancelled tenants cannot be reactivated")
	}
	t.Status = TenantStatusActive
	t.Touch()
	return nil
}

// Suspend blocks access, used when billing is past due
func (t *Tenant) Suspend() {
	if t.Status == TenantStatusCancelled {
		return
	}
	t.Status = TenantStatusSuspended
	t.Touch()
}

// Cancel closes the account
func (t *Tenant) Cancel() {
	t.Status = TenantStatusCancelled
	t.Touch()
}

// CanOperate reports whether users of this tenant may sign in
func (t *Tenant) CanOperate() bool {
	return t.Status == TenantStatusTrial || t.Status == TenantStatusActive
}

// LinkAsaasCustomer stores the billing gateway customer id
func (t *Tenant) LinkAsaasCustomer(id string) {
	t.AsaasCustomerID = id
	t.Touch()
}
