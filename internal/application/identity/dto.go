package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/domain/shared/valueobject"
	"github.com/locaflow/backend/internal/infrastructure/auth"
	"github.com/shopspring/decimal"
)

// RegisterInput contains the sign-up form
type RegisterInput struct {
	CompanyName     string
	CompanyDocument string
	CompanyEmail    string
	CompanyPhone    string
	OwnerName       string
	OwnerEmail      string
	Password        string
	PlanCode        string
	IP              string
	UserAgent       string
}

// LoginInput contains input for login
type LoginInput struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
}

// SessionResult is returned by register, login and refresh. The token pair
// goes to cookies, the rest to the response body
type SessionResult struct {
	Tokens *auth.TokenPair
	User   UserDTO
	Tenant TenantDTO
}

// LogoutInput identifies the session being closed
type LogoutInput struct {
	TenantID     uuid.UUID
	UserID       uuid.UUID
	UserName     string
	AccessToken  string
	RefreshToken string
	IP           string
	UserAgent    string
}

// ChangePasswordInput contains input for changing password
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// ResetPasswordInput contains the token from the reset link and the new password
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// CurrentUserResult is the body of GET /auth/me
type CurrentUserResult struct {
	User        UserDTO   `json:"user"`
	Tenant      TenantDTO `json:"tenant"`
	Permissions []string  `json:"permissions"`
}

// UserDTO represents user data transfer object
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	Locked      bool       `json:"locked"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateUserInput contains input for creating a user
type CreateUserInput struct {
	TenantID  uuid.UUID
	ActorID   uuid.UUID
	ActorRole identity.Role
	Name      string
	Email     string
	Password  string
	Role      string
}

// UpdateUserInput contains input for updating a user. Nil fields are left alone
type UpdateUserInput struct {
	TenantID  uuid.UUID
	ID        uuid.UUID
	ActorID   uuid.UUID
	ActorRole identity.Role
	Name      *string
	Role      *string
	Active    *bool
}

// UserListFilter narrows the user list
type UserListFilter struct {
	Page     int
	PageSize int
	Search   string
	Role     string
	Active   *bool
}

// TenantDTO represents tenant data transfer object
type TenantDTO struct {
	ID       uuid.UUID           `json:"id"`
	Name     string              `json:"name"`
	Slug     string              `json:"slug"`
	Document string              `json:"document,omitempty"`
	Email    string              `json:"email"`
	Phone    string              `json:"phone,omitempty"`
	Status   string              `json:"status"`
	Address  valueobject.Address `json:"address"`
	Fiscal   FiscalSettingsDTO   `json:"fiscal"`
}

// FiscalSettingsDTO carries the NFS-e settings of a tenant
type FiscalSettingsDTO struct {
	MunicipalRegistration string          `json:"municipal_registration"`
	ServiceCode           string          `json:"service_code"`
	ISSRate               decimal.Decimal `json:"iss_rate"`
	SimpleNational        bool            `json:"simple_national"`
	Complete              bool            `json:"complete"`
}

// UpdateTenantInput contains the editable company profile
type UpdateTenantInput struct {
	TenantID uuid.UUID
	Name     string
	Phone    string
	Address  valueobject.Address
	Fiscal   *FiscalSettingsDTO
}

// CreateAPIKeyInput contains input for creating an API key
type CreateAPIKeyInput struct {
	TenantID  uuid.UUID
	ActorID   uuid.UUID
	Name      string
	Role      string
	ExpiresAt *time.Time
}

// APIKeyDTO never carries the secret
type APIKeyDTO struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	Role       string     `json:"role"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	CreatedBy  *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CreatedAPIKey is returned once, right after creation
type CreatedAPIKey struct {
	APIKeyDTO
	Key string `json:"key"`
}

// APIKeyPrincipal is the identity resolved from a valid API key
type APIKeyPrincipal struct {
	KeyID    uuid.UUID
	TenantID uuid.UUID
	Name     string
	Role     identity.Role
}

func toUserDTO(u *identity.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		TenantID:    u.TenantID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		Active:      u.Active,
		Locked:      u.IsLocked(),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func toTenantDTO(t *identity.Tenant) TenantDTO {
	return TenantDTO{
		ID:       t.ID,
		Name:     t.Name,
		Slug:     t.Slug,
		Document: t.Document,
		Email:    t.Email,
		Phone:    t.Phone,
		Status:   string(t.Status),
		Address:  t.Address,
		Fiscal: FiscalSettingsDTO{
			MunicipalRegistration: t.Fiscal.MunicipalRegistration,
			ServiceCode:           t.Fiscal.ServiceCode,
			ISSRate:               t.Fiscal.ISSRate,
			SimpleNational:        t.Fiscal.SimpleNational,
			Complete:              t.Fiscal.IsComplete(),
		},
	}
}

func toAPIKeyDTO(k *identity.APIKey) APIKeyDTO {
	return APIKeyDTO{
		ID:         k.ID,
		Name:       k.Name,
		Prefix:     k.Prefix,
		Role:       string(k.Role),
		LastUsedAt: k.LastUsedAt,
		ExpiresAt:  k.ExpiresAt,
		RevokedAt:  k.RevokedAt,
		CreatedBy:  k.CreatedBy,
		CreatedAt:  k.CreatedAt,
	}
}
