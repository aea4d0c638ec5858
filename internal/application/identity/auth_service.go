package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/audit"
	"github.com/locaflow/backend/internal/domain/billing"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/infrastructure/auth"
	"github.com/locaflow/backend/internal/infrastructure/mail"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Invalid email or password")
	ErrAccountLocked      = shared.NewDomainError("ACCOUNT_LOCKED", "Account is temporarily locked due to too many failed login attempts")
	ErrAccountDisabled    = shared.NewDomainError("ACCOUNT_DISABLED", "Account is deactivated")
	ErrTenantInactive     = shared.NewDomainError("TENANT_INACTIVE", "Company account is not active")
	ErrInvalidSession     = shared.NewDomainError(shared.CodeUnauthorized, "Session is invalid or has expired")
)

// TenantInitializer prepares a freshly registered tenant. It runs inside
// the registration transaction
type TenantInitializer interface {
	InitializeTenant(ctx context.Context, tenantID uuid.UUID, planCode string) error
}

// ActivityRecorder appends entries to the activity log
type ActivityRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// LimitChecker enforces plan limits for a tenant
type LimitChecker interface {
	CheckLimit(ctx context.Context, tenantID uuid.UUID, resource billing.LimitedResource, current int64) error
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int
	LockDuration     time.Duration
	ResetTokenTTL    time.Duration
	// AppURL is the front-end origin used in password reset links
	AppURL string
}

// DefaultAuthServiceConfig returns default auth service configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
		ResetTokenTTL:    identity.PasswordResetTTL,
		AppURL:           "http://localhost:3000",
	}
}

// AuthService handles registration, sessions and passwords
type AuthService struct {
	tenants      identity.TenantRepository
	users        identity.UserRepository
	resets       identity.PasswordResetRepository
	tx           shared.TransactionManager
	jwt          *auth.JWTService
	blacklist    auth.TokenBlacklist
	mailer       mail.Sender
	activity     ActivityRecorder
	events       shared.EventPublisher
	initializers []TenantInitializer
	config       AuthServiceConfig
	logger       *zap.Logger
	now          func() time.Time
}

// AuthServiceDeps groups the collaborators of AuthService
type AuthServiceDeps struct {
	Tenants      identity.TenantRepository
	Users        identity.UserRepository
	Resets       identity.PasswordResetRepository
	Tx           shared.TransactionManager
	JWT          *auth.JWTService
	Blacklist    auth.TokenBlacklist
	Mailer       mail.Sender
	Activity     ActivityRecorder
	Events       shared.EventPublisher
	Initializers []TenantInitializer
}

// NewAuthService creates a new auth service
func NewAuthService(deps AuthServiceDeps, config AuthServiceConfig, logger *zap.Logger) *AuthService {
	defaults := DefaultAuthServiceConfig()
	if config.MaxLoginAttempts <= 0 {
		config.MaxLoginAttempts = defaults.MaxLoginAttempts
	}
	if config.LockDuration <= 0 {
		config.LockDuration = defaults.LockDuration
	}
	if config.ResetTokenTTL <= 0 {
		config.ResetTokenTTL = defaults.ResetTokenTTL
	}
	if config.AppURL == "" {
		config.AppURL = defaults.AppURL
	}
	return &AuthService{
		tenants:      deps.Tenants,
		users:        deps.Users,
		resets:       deps.Resets,
		tx:           deps.Tx,
		jwt:          deps.JWT,
		blacklist:    deps.Blacklist,
		mailer:       deps.Mailer,
		activity:     deps.Activity,
		events:       deps.Events,
		initializers: deps.Initializers,
		config:       config,
		logger:       logger,
		now:          time.Now,
	}
}

// Register creates a tenant with its owner, default data and trial in one transaction
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*SessionResult, error) {
	if err := identity.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	var tenant *identity.Tenant
	var owner *identity.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.users.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(input.OwnerEmail)))
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Email is already registered")
		}

		tenant, err = identity.NewTenant(input.CompanyName, input.CompanyDocument, input.CompanyEmail)
		if err != nil {
			return err
		}
		tenant.Phone = strings.TrimSpace(input.CompanyPhone)
		if tenant.Document != "" {
			taken, err := s.tenants.ExistsByDocument(ctx, tenant.Document)
			if err != nil {
				return err
			}
			if taken {
				return shared.NewDomainError(shared.CodeAlreadyExists, "Company document is already registered")
			}
		}
		if tenant.Slug, err = s.uniqueSlug(ctx, tenant.Slug); err != nil {
			return err
		}
		if err := s.tenants.Save(ctx, tenant); err != nil {
			return err
		}

		owner, err = identity.NewUser(tenant.ID, input.OwnerName, input.OwnerEmail, input.Password, identity.RoleAdmin)
		if err != nil {
			return err
		}
		if err := s.users.Save(ctx, owner); err != nil {
			return err
		}

		planCode := strings.ToUpper(strings.TrimSpace(input.PlanCode))
		for _, init := range s.initializers {
			if err := init.InitializeTenant(ctx, tenant.ID, planCode); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, tenant)
	s.publish(ctx, owner)
	s.logger.Info("Tenant registered",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug),
		zap.String("owner_id", owner.ID.String()),
	)

	return s.startSession(ctx, tenant, owner, input.IP, input.UserAgent)
}

func (s *AuthService) uniqueSlug(ctx context.Context, base string) (string, error) {
	if base == "" {
		base = "locadora"
	}
	slug := base
	for i := 2; ; i++ {
		taken, err := s.tenants.ExistsBySlug(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Login authenticates a user and issues a session
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*SessionResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if shared.IsNotFound(err) {
			s.logger.Warn("Login attempt for unknown email", zap.String("ip", input.IP))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Active {
		s.logger.Warn("Login attempt on deactivated account", zap.String("user_id", user.ID.String()))
		return nil, ErrAccountDisabled
	}
	if user.IsLocked() {
		s.logger.Warn("Login attempt on locked account",
			zap.String("user_id", user.ID.String()),
			zap.Timep("locked_until", user.LockedUntil),
		)
		return nil, ErrAccountLocked
	}

	if !user.VerifyPassword(input.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.users.Save(ctx, user); err != nil {
			s.logger.Error("Failed to record login failure", zap.Error(err))
		}
		if locked {
			s.logger.Warn("Account locked after failed logins",
				zap.String("user_id", user.ID.String()),
				zap.Int("attempts", user.FailedAttempts),
			)
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	tenant, err := s.tenants.FindByID(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.CanOperate() {
		return nil, ErrTenantInactive
	}

	user.RecordLoginSuccess(input.IP)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", tenant.ID.String()),
	)
	return s.startSession(ctx, tenant, user, input.IP, input.UserAgent)
}

func (s *AuthService) startSession(ctx context.Context, tenant *identity.Tenant, user *identity.User, ip, userAgent string) (*SessionResult, error) {
	tokens, err := s.jwt.Issue(auth.Subject{
		TenantID: tenant.ID,
		UserID:   user.ID,
		Email:    user.Email,
		Role:     string(user.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.record(ctx, audit.Entry{
		TenantID:    tenant.ID,
		UserID:      &user.ID,
		UserName:    user.Name,
		Action:      audit.ActionLogin,
		EntityType:  identity.AggregateTypeUser,
		EntityID:    &user.ID,
		Description: "Login: " + user.Email,
		IPAddress:   ip,
		UserAgent:   userAgent,
	})

	return &SessionResult{Tokens: tokens, User: toUserDTO(user), Tenant: toTenantDTO(tenant)}, nil
}

// Refresh rotates a refresh token into a new pair. The old refresh token is revoked
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*SessionResult, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidSession
	}
	if err := s.checkNotRevoked(ctx, claims); err != nil {
		return nil, err
	}

	user, err := s.users.FindByIDForTenant(ctx, claims.TenantUUID(), claims.UserUUID())
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	if !user.CanLogin() {
		return nil, ErrInvalidSession
	}
	tenant, err := s.tenants.FindByID(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.CanOperate() {
		return nil, ErrTenantInactive
	}

	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	tokens, err := s.jwt.Issue(auth.Subject{
		TenantID: tenant.ID,
		UserID:   user.ID,
		Email:    user.Email,
		Role:     string(user.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &SessionResult{Tokens: tokens, User: toUserDTO(user), Tenant: toTenantDTO(tenant)}, nil
}

func (s *AuthService) checkNotRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("check token blacklist: %w", err)
	}
	if revoked {
		return ErrInvalidSession
	}
	revoked, err = s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.IssuedAtTime())
	if err != nil {
		return fmt.Errorf("check user revocation: %w", err)
	}
	if revoked {
		return ErrInvalidSession
	}
	return nil
}

// Logout blacklists the access and refresh tokens of the session.
// Tokens that no longer validate are skipped
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if claims, err := s.jwt.ValidateAccessToken(input.AccessToken); err == nil {
		if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
			return fmt.Errorf("revoke access token: %w", err)
		}
	}
	if claims, err := s.jwt.ValidateRefreshToken(input.RefreshToken); err == nil {
		if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
	}

	if input.TenantID != uuid.Nil {
		s.record(ctx, audit.Entry{
			TenantID:    input.TenantID,
			UserID:      &input.UserID,
			UserName:    input.UserName,
			Action:      audit.ActionLogout,
			EntityType:  identity.AggregateTypeUser,
			EntityID:    &input.UserID,
			Description: "Logout",
			IPAddress:   input.IP,
			UserAgent:   input.UserAgent,
		})
	}
	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// Me returns the current user, tenant and permissions
func (s *AuthService) Me(ctx context.Context, tenantID, userID uuid.UUID) (*CurrentUserResult, error) {
	user, err := s.users.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &CurrentUserResult{
		User:        toUserDTO(user),
		Tenant:      toTenantDTO(tenant),
		Permissions: user.Permissions(),
	}, nil
}

// ChangePassword changes the password of the current user after checking the old one
func (s *AuthService) ChangePassword(ctx context.Context, tenantID uuid.UUID, input ChangePasswordInput) error {
	user, err := s.users.FindByIDForTenant(ctx, tenantID, input.UserID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	s.publish(ctx, user)
	s.logger.Info("Password changed", zap.String("user_id", user.ID.String()))
	return nil
}

// ForgotPassword mails a reset link. It never reveals whether the email exists:
// unknown emails and delivery failures are only logged
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !shared.IsNotFound(err) {
			s.logger.Error("Failed to look up user for password reset", zap.Error(err))
		}
		return nil
	}
	if !user.Active {
		s.logger.Info("Password reset requested for deactivated account", zap.String("user_id", user.ID.String()))
		return nil
	}

	now := s.now()
	token, plain, err := identity.NewPasswordResetToken(user, now)
	if err != nil {
		s.logger.Error("Failed to create reset token", zap.Error(err))
		return nil
	}
	token.ExpiresAt = now.Add(s.config.ResetTokenTTL)
	if err := s.resets.Save(ctx, token); err != nil {
		s.logger.Error("Failed to save reset token", zap.Error(err))
		return nil
	}

	link := strings.TrimRight(s.config.AppURL, "/") + "/reset-password?token=" + url.QueryEscape(plain)
	msg := mail.Message{
		To:      []string{user.Email},
		Subject: "Redefinição de senha - LocaFlow",
		Text: fmt.Sprintf("Olá %s,\n\nPara redefinir sua senha acesse:\n%s\n\nO link expira em %s.\n",
			user.Name, link, s.config.ResetTokenTTL),
		HTML: fmt.Sprintf(`<p>Olá %s,</p><p>Para redefinir sua senha clique no link abaixo:</p><p><a href="%s">Redefinir senha</a></p><p>O link expira em %s.</p>`,
			user.Name, link, s.config.ResetTokenTTL),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("Failed to send password reset mail", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil
	}
	s.logger.Info("Password reset requested", zap.String("user_id", user.ID.String()))
	return nil
}

// ResetPassword consumes a reset token. Token check, password change, token
// invalidation and unlock share one transaction, so a failure changes nothing
func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if err := identity.ValidatePassword(input.NewPassword); err != nil {
		return err
	}
	now := s.now()

	var user *identity.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		token, err := s.resets.FindByHash(ctx, identity.HashSecret(input.Token))
		if err != nil {
			if shared.IsNotFound(err) {
				return identity.ErrResetTokenInvalid
			}
			return err
		}
		if err := token.Validate(now); err != nil {
			return err
		}

		user, err = s.users.FindByID(ctx, token.UserID)
		if err != nil {
			return err
		}
		if err := user.SetPassword(input.NewPassword); err != nil {
			return err
		}
		user.Unlock()
		if err := s.users.Save(ctx, user); err != nil {
			return err
		}

		token.MarkUsed(now)
		if err := s.resets.Save(ctx, token); err != nil {
			return err
		}
		return s.resets.InvalidateForUser(ctx, user.ID, now)
	})
	if err != nil {
		var de *shared.DomainError
		if !errors.As(err, &de) {
			s.logger.Error("Password reset failed", zap.Error(err))
		}
		return err
	}

	// existing sessions end with the old password
	if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.jwt.RefreshTokenExpiration()); err != nil {
		s.logger.Warn("Failed to revoke sessions after password reset", zap.Error(err))
	}
	s.publish(ctx, user)
	s.logger.Info("Password reset", zap.String("user_id", user.ID.String()))
	return nil
}

// UpdateTenant edits the company profile and fiscal settings
func (s *AuthService) UpdateTenant(ctx context.Context, input UpdateTenantInput) (*TenantDTO, error) {
	tenant, err := s.tenants.FindByID(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}
	if err := tenant.UpdateProfile(input.Name, input.Phone, input.Address); err != nil {
		return nil, err
	}
	if input.Fiscal != nil {
		if err := tenant.SetFiscalSettings(identity.FiscalSettings{
			MunicipalRegistration: input.Fiscal.MunicipalRegistration,
			ServiceCode:           input.Fiscal.ServiceCode,
			ISSRate:               input.Fiscal.ISSRate,
			SimpleNational:        input.Fiscal.SimpleNational,
		}); err != nil {
			return nil, err
		}
	}
	if err := s.tenants.Save(ctx, tenant); err != nil {
		return nil, err
	}
	dto := toTenantDTO(tenant)
	return &dto, nil
}

func (s *AuthService) record(ctx context.Context, entry audit.Entry) {
	if s.activity != nil {
		s.activity.Record(ctx, entry)
	}
}

func (s *AuthService) publish(ctx context.Context, agg shared.AggregateRoot) {
	if err := shared.PublishAndClear(ctx, s.events, agg); err != nil {
		s.logger.Warn("Failed to publish domain events", zap.Error(err))
	}
}
