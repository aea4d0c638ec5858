package handler

import (
	"time"

	identityapp "github.com/locaflow/backend/internal/application/identity"
	"github.com/locaflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RegisterRequest is the company sign-up form
// @Description Company and owner sign-up
type RegisterRequest struct {
	CompanyName     string `json:"company_name" binding:"required,min=2,max=200" example:"Loca Mais Equipamentos"`
	CompanyDocument string `json:"company_document" binding:"omitempty,document" example:"11.222.333/0001-81"`
	CompanyEmail    string `json:"company_email" binding:"required,email,max=200" example:"contato@locamais.com.br"`
	CompanyPhone    string `json:"company_phone" binding:"omitempty,max=20" example:"11 3333-4444"`
	OwnerName       string `json:"owner_name" binding:"required,min=2,max=200" example:"Ana Souza"`
	OwnerEmail      string `json:"owner_email" binding:"required,email,max=200" example:"ana@locamais.com.br"`
	Password        string `json:"password" binding:"required,min=8,max=72" example:"S3nha-forte"`
	PlanCode        string `json:"plan_code" binding:"omitempty,max=50" example:"PROFESSIONAL"`
}

// LoginRequest represents login credentials
// @Description Login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ana@locamais.com.br"`
	Password string `json:"password" binding:"required" example:"S3nha-forte"`
}

// RefreshRequest carries the refresh token for clients that do not use cookies
// @Description Refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest changes the password of the current user
// @Description Password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required" example:"S3nha-antiga"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72" example:"S3nha-nova"`
}

// ForgotPasswordRequest starts a password reset
// @Description Password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email" example:"ana@locamais.com.br"`
}

// ResetPasswordRequest completes a password reset
// @Description Password reset with the token from the email link
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72" example:"S3nha-nova"`
}

// SessionResponse is returned by register, login and refresh. Tokens travel
// in httpOnly cookies only
// @Description Session data
type SessionResponse struct {
	User                  identityapp.UserDTO   `json:"user"`
	Tenant                identityapp.TenantDTO `json:"tenant"`
	AccessTokenExpiresAt  time.Time             `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time             `json:"refresh_token_expires_at"`
}

func toSessionResponse(r *identityapp.SessionResult) SessionResponse {
	return SessionResponse{
		User:                  r.User,
		Tenant:                r.Tenant,
		AccessTokenExpiresAt:  r.Tokens.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: r.Tokens.RefreshTokenExpiresAt,
	}
}

// UpdateTenantRequest edits the company profile
// @Description Company profile and fiscal settings
type UpdateTenantRequest struct {
	Name    string              `json:"name" binding:"required,min=2,max=200" example:"Loca Mais Equipamentos"`
	Phone   string              `json:"phone" binding:"omitempty,max=20" example:"11 3333-4444"`
	Address valueobject.Address `json:"address"`
	Fiscal  *FiscalRequest      `json:"fiscal"`
}

// FiscalRequest holds the NFS-e settings
// @Description NFS-e settings
type FiscalRequest struct {
	MunicipalRegistration string          `json:"municipal_registration" binding:"max=20" example:"12345678"`
	ServiceCode           string          `json:"service_code" binding:"max=20" example:"07498"`
	ISSRate               decimal.Decimal `json:"iss_rate" swaggertype:"string" example:"2.5"`
	SimpleNational        bool            `json:"simple_national"`
}
