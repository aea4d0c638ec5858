package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	identityapp "github.com/locaflow/backend/internal/application/identity"
	"github.com/locaflow/backend/internal/infrastructure/auth"
	"github.com/locaflow/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
	cookies     *auth.Cookies
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identityapp.AuthService, cookies *auth.Cookies) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// Register godoc
// @ID           register
// @Summary      Sign up a company
// @Description  Create the company, its ADMIN owner, default categories and a trial subscription, then open a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Sign-up form"
// @Success      201 {object} APIResponse[SessionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), identityapp.RegisterInput{
		CompanyName:     req.CompanyName,
		CompanyDocument: req.CompanyDocument,
		CompanyEmail:    req.CompanyEmail,
		CompanyPhone:    req.CompanyPhone,
		OwnerName:       req.OwnerName,
		OwnerEmail:      req.OwnerEmail,
		Password:        req.Password,
		PlanCode:        req.PlanCode,
		IP:              c.ClientIP(),
		UserAgent:       c.Request.UserAgent(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.cookies.Set(c, result.Tokens)
	h.Created(c, toSessionResponse(result))
}

// Login godoc
// @ID           login
// @Summary      User login
// @Description  Authenticate with email and password. The session is delivered as httpOnly cookies
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[SessionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      423 {object} dto.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identityapp.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.cookies.Set(c, result.Tokens)
	h.Success(c, toSessionResponse(result))
}

// Refresh godoc
// @ID           refreshSession
// @Summary      Rotate the session
// @Description  Exchange the refresh cookie (or body token) for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest false "Refresh token when cookies are not used"
// @Success      200 {object} APIResponse[SessionResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(h.cookies.RefreshName())
	if token == "" {
		var req RefreshRequest
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}
	if token == "" {
		h.Unauthorized(c, "Refresh token required")
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		h.cookies.Clear(c)
		h.HandleError(c, err)
		return
	}

	h.cookies.Set(c, result.Tokens)
	h.Success(c, toSessionResponse(result))
}

// Logout godoc
// @ID           logout
// @Summary      User logout
// @Description  Revoke the session tokens and clear the cookies
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[MessageData]
// @Failure      401 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	access, _ := c.Cookie(h.cookies.AccessName())
	if bearer, found := strings.CutPrefix(c.GetHeader(middleware.AuthHeaderKey), middleware.BearerPrefix); found {
		access = bearer
	}
	refresh, _ := c.Cookie(h.cookies.RefreshName())

	input := identityapp.LogoutInput{
		TenantID:     p.TenantID,
		UserID:       p.UserID,
		AccessToken:  access,
		RefreshToken: refresh,
		IP:           c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
	}
	if p.Claims != nil {
		input.UserName = p.Claims.Email
	}
	if err := h.authService.Logout(c.Request.Context(), input); err != nil {
		h.HandleError(c, err)
		return
	}

	h.cookies.Clear(c)
	h.Success(c, MessageData{Message: "Logged out"})
}

// Me godoc
// @ID           currentUser
// @Summary      Get current user
// @Description  Current user, company and granted permissions
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[identityapp.CurrentUserResult]
// @Failure      401 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.authService.Me(c.Request.Context(), p.TenantID, p.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ChangePassword godoc
// @ID           changePassword
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "Old and new password"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req ChangePasswordRequest
	if !h.bind(c, &req) {
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), p.TenantID, identityapp.ChangePasswordInput{
		UserID:      p.UserID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Password changed"})
}

// ForgotPassword godoc
// @ID           forgotPassword
// @Summary      Request a password reset
// @Description  Mails a reset link when the account exists. The answer is the same either way
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Account email"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} dto.ErrorResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "If the email is registered, a reset link has been sent"})
}

// ResetPassword godoc
// @ID           resetPassword
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Reset token and new password"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} dto.ErrorResponse
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !h.bind(c, &req) {
		return
	}
	err := h.authService.ResetPassword(c.Request.Context(), identityapp.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Password has been reset"})
}

// UpdateTenant godoc
// @ID           updateTenant
// @Summary      Update company profile
// @Description  Edit contact data, address and NFS-e settings
// @Tags         tenant
// @Accept       json
// @Produce      json
// @Param        request body UpdateTenantRequest true "Company profile"
// @Success      200 {object} APIResponse[identityapp.TenantDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /tenant [put]
func (h *AuthHandler) UpdateTenant(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req UpdateTenantRequest
	if !h.bind(c, &req) {
		return
	}

	input := identityapp.UpdateTenantInput{
		TenantID: tenantID,
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
	}
	if req.Fiscal != nil {
		input.Fiscal = &identityapp.FiscalSettingsDTO{
			MunicipalRegistration: req.Fiscal.MunicipalRegistration,
			ServiceCode:           req.Fiscal.ServiceCode,
			ISSRate:               req.Fiscal.ISSRate,
			SimpleNational:        req.Fiscal.SimpleNational,
		}
	}
	tenant, err := h.authService.UpdateTenant(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}
