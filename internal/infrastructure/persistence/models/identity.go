package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TenantModel is the persistence model for the Tenant aggregate
type TenantModel struct {
	AggregateModel
	Name     string                `gorm:"type:varchar(200);not null"`
	Slug     string                `gorm:"type:varchar(100);not null;uniqueIndex"`
	Document string                `gorm:"type:varchar(14);index"`
	Email    string                `gorm:"type:varchar(200);not null"`
	Phone    string                `gorm:"type:varchar(30)"`
	Status   identity.TenantStatus `gorm:"type:varchar(20);not null;default:'TRIAL'"`
	Address  AddressColumns        `gorm:"embedded"`

	MunicipalRegistration string          `gorm:"type:varchar(30)"`
	ServiceCode           string          `gorm:"type:varchar(20)"`
	ISSRate               decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	SimpleNational        bool            `gorm:"not null;default:false"`
	AsaasCustomerID       string          `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant
func (m *TenantModel) ToDomain() *identity.Tenant {
	return &identity.Tenant{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Slug:              m.Slug,
		Document:          m.Document,
		Email:             m.Email,
		Phone:             m.Phone,
		Status:            m.Status,
		Address:           valueobject.Address(m.Address),
		Fiscal: identity.FiscalSettings{
			MunicipalRegistration: m.MunicipalRegistration,
			ServiceCode:           m.ServiceCode,
			ISSRate:               m.ISSRate,
			SimpleNational:        m.SimpleNational,
		},
		AsaasCustomerID: m.AsaasCustomerID,
	}
}

// TenantModelFromDomain creates a persistence model from a domain Tenant
func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{
		Name:                  t.Name,
		Slug:                  t.Slug,
		Document:              t.Document,
		Email:                 t.Email,
		Phone:                 t.Phone,
		Status:                t.Status,
		Address:               AddressColumns(t.Address),
		MunicipalRegistration: t.Fiscal.MunicipalRegistration,
		ServiceCode:           t.Fiscal.ServiceCode,
		ISSRate:               t.Fiscal.ISSRate,
		SimpleNational:        t.Fiscal.SimpleNational,
		AsaasCustomerID:       t.AsaasCustomerID,
	}
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	return m
}

// UserModel is the persistence model for the User aggregate
type UserModel struct {
	TenantAggregateModel
	Name           string        `gorm:"type:varchar(200);not null"`
	Email          string        `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash   string        `gorm:"type:varchar(255);not null"`
	Role           identity.Role `gorm:"type:varchar(20);not null"`
	Active         bool          `gorm:"not null;default:true"`
	LastLoginAt    *time.Time
	LastLoginIP    string `gorm:"type:varchar(45)"`
	FailedAttempts int    `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		Email:               m.Email,
		PasswordHash:        m.PasswordHash,
		Role:                m.Role,
		Active:              m.Active,
		LastLoginAt:         m.LastLoginAt,
		LastLoginIP:         m.LastLoginIP,
		FailedAttempts:      m.FailedAttempts,
		LockedUntil:         m.LockedUntil,
	}
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Name:           u.Name,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		Role:           u.Role,
		Active:         u.Active,
		LastLoginAt:    u.LastLoginAt,
		LastLoginIP:    u.LastLoginIP,
		FailedAttempts: u.FailedAttempts,
		LockedUntil:    u.LockedUntil,
	}
	m.FromDomainTenantAggregateRoot(u.TenantAggregateRoot)
	return m
}

// PasswordResetTokenModel stores hashed reset secrets
type PasswordResetTokenModel struct {
	BaseModel
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"type:char(64);not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
}

// TableName returns the table name for GORM
func (PasswordResetTokenModel) TableName() string {
	return "password_reset_tokens"
}

// ToDomain converts the persistence model to a domain token
func (m *PasswordResetTokenModel) ToDomain() *identity.PasswordResetToken {
	return &identity.PasswordResetToken{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		UserID:     m.UserID,
		TokenHash:  m.TokenHash,
		ExpiresAt:  m.ExpiresAt,
		UsedAt:     m.UsedAt,
	}
}

// PasswordResetTokenModelFromDomain creates a persistence model from a domain token
func PasswordResetTokenModelFromDomain(t *identity.PasswordResetToken) *PasswordResetTokenModel {
	m := &PasswordResetTokenModel{
		TenantID:  t.TenantID,
		UserID:    t.UserID,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		UsedAt:    t.UsedAt,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}

// APIKeyModel stores hashed API keys
type APIKeyModel struct {
	TenantAggregateModel
	Name       string        `gorm:"type:varchar(100);not null"`
	Prefix     string        `gorm:"type:varchar(12);not null"`
	KeyHash    string        `gorm:"type:char(64);not null;uniqueIndex"`
	Role       identity.Role `gorm:"type:varchar(20);not null"`
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
	RevokedAt  *time.Time
}

// TableName returns the table name for GORM
func (APIKeyModel) TableName() string {
	return "api_keys"
}

// ToDomain converts the persistence model to a domain APIKey
func (m *APIKeyModel) ToDomain() *identity.APIKey {
	return &identity.APIKey{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		Prefix:              m.Prefix,
		KeyHash:             m.KeyHash,
		Role:                m.Role,
		LastUsedAt:          m.LastUsedAt,
		ExpiresAt:           m.ExpiresAt,
		RevokedAt:           m.RevokedAt,
	}
}

// APIKeyModelFromDomain creates a persistence model from a domain APIKey
func APIKeyModelFromDomain(k *identity.APIKey) *APIKeyModel {
	m := &APIKeyModel{
		Name:       k.Name,
		Prefix:     k.Prefix,
		KeyHash:    k.KeyHash,
		Role:       k.Role,
		LastUsedAt: k.LastUsedAt,
		ExpiresAt:  k.ExpiresAt,
		RevokedAt:  k.RevokedAt,
	}
	m.FromDomainTenantAggregateRoot(k.TenantAggregateRoot)
	return m
}
