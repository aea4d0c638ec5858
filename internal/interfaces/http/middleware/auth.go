package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/locaflow/backend/internal/application/identity"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/infrastructure/auth"
	"github.com/locaflow/backend/internal/infrastructure/logger"
	"github.com/locaflow/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys set by Authenticate. tenant_id and user_id are also read by
// the request logger
const (
	PrincipalKey  = "principal"
	TenantIDKey   = "tenant_id"
	UserIDKey     = "user_id"
	AuthHeaderKey = "Authorization"
	APIKeyHeader  = "X-API-Key"
	BearerPrefix  = "Bearer "
)

// Principal is the authenticated caller, a user session or an API key
type Principal struct {
	TenantID uuid.UUID
	UserID   uuid.UUID // uuid.Nil for API keys
	APIKeyID uuid.UUID // uuid.Nil for sessions
	Email    string
	Role     identity.Role
	Claims   *auth.Claims // nil for API keys
}

// IsAPIKey reports whether the caller authenticated with an API key
func (p *Principal) IsAPIKey() bool {
	return p.APIKeyID != uuid.Nil
}

// APIKeyAuthenticator resolves a plaintext API key
type APIKeyAuthenticator interface {
	Authenticate(ctx context.Context, plain string) (*identityapp.APIKeyPrincipal, error)
}

// AuthConfig holds configuration for the authentication middleware
type AuthConfig struct {
	JWTService *auth.JWTService
	// Blacklist is optional; revoked tokens are accepted without it
	Blacklist auth.TokenBlacklist
	// Cookies names the session cookie. Without it only the Authorization
	// header is read
	Cookies *auth.Cookies
	// APIKeys is optional; API keys are rejected without it
	APIKeys APIKeyAuthenticator
	// OnError replaces the JSON 401 body, used by the HTML pages
	OnError func(c *gin.Context, code, message string)
	Logger  *zap.Logger
}

// Authenticate accepts, in order, an X-API-Key header, an Authorization
// bearer holding an API key or a JWT, and the access cookie
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if key, ok := apiKeyCredential(c); ok {
			if cfg.APIKeys == nil {
				fail(c, cfg, dto.ErrCodeInvalidAPIKey, "API keys are not accepted")
				return
			}
			principal, err := cfg.APIKeys.Authenticate(ctx, key)
			if err != nil {
				switch shared.ErrorCode(err) {
				case dto.ErrCodeTenantInactive:
					abort(c, http.StatusForbidden, dto.ErrCodeTenantInactive, "Company account is not active")
				case "":
					log.Error("API key authentication failed", zap.Error(err))
					abort(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
				default:
					fail(c, cfg, dto.ErrCodeInvalidAPIKey, "Invalid API key")
				}
				return
			}
			setPrincipal(c, &Principal{
				TenantID: principal.TenantID,
				APIKeyID: principal.KeyID,
				Role:     principal.Role,
			})
			c.Next()
			return
		}

		token := sessionToken(c, cfg.Cookies)
		if token == "" {
			fail(c, cfg, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			code, message := tokenError(err)
			fail(c, cfg, code, message)
			return
		}

		if cfg.Blacklist != nil {
			revoked, err := isRevoked(ctx, cfg.Blacklist, claims)
			if err != nil {
				// Fail open: the blacklist only shortens sessions
				log.Error("Failed to check token blacklist", zap.String("user_id", claims.UserID), zap.Error(err))
			} else if revoked {
				fail(c, cfg, dto.ErrCodeTokenRevoked, "Session has been revoked")
				return
			}
		}

		setPrincipal(c, &Principal{
			TenantID: claims.TenantUUID(),
			UserID:   claims.UserUUID(),
			Email:    claims.Email,
			Role:     identity.Role(claims.Role),
			Claims:   claims,
		})
		c.Next()
	}
}

func isRevoked(ctx context.Context, bl auth.TokenBlacklist, claims *auth.Claims) (bool, error) {
	if claims.ID != "" {
		revoked, err := bl.IsRevoked(ctx, claims.ID)
		if err != nil || revoked {
			return revoked, err
		}
	}
	return bl.IsUserRevoked(ctx, claims.UserID, claims.IssuedAtTime())
}

// apiKeyCredential extracts an API key from X-API-Key or a bearer that
// carries the key prefix
func apiKeyCredential(c *gin.Context) (string, bool) {
	if key := strings.TrimSpace(c.GetHeader(APIKeyHeader)); key != "" {
		return key, true
	}
	if bearer := bearerToken(c); identity.LooksLikeAPIKey(bearer) {
		return bearer, true
	}
	return "", false
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
}

// sessionToken prefers the Authorization header over the cookie
func sessionToken(c *gin.Context, cookies *auth.Cookies) string {
	if token := bearerToken(c); token != "" {
		return token
	}
	if cookies == nil {
		return ""
	}
	token, err := c.Cookie(cookies.AccessName())
	if err != nil {
		return ""
	}
	return token
}

func tokenError(err error) (string, string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Session has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		return dto.ErrCodeTokenInvalid, "Token is not yet valid"
	default:
		return dto.ErrCodeTokenInvalid, "Invalid token"
	}
}

func fail(c *gin.Context, cfg AuthConfig, code, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, code, message)
		c.Abort()
		return
	}
	abort(c, http.StatusUnauthorized, code, message)
}

func setPrincipal(c *gin.Context, p *Principal) {
	c.Set(PrincipalKey, p)
	c.Set(TenantIDKey, p.TenantID.String())
	if p.UserID != uuid.Nil {
		c.Set(UserIDKey, p.UserID.String())
	}

	// The tenant id in the request context drives the GORM tenant filter
	ctx := c.Request.Context()
	log := logger.FromGin(c)
	ctx, log = logger.WithTenantID(ctx, log, p.TenantID.String())
	if p.UserID != uuid.Nil {
		ctx, log = logger.WithUserID(ctx, log, p.UserID.String())
	}
	c.Request = c.Request.WithContext(ctx)
	logger.SetGin(c, log)
}

// GetPrincipal returns the authenticated caller, or nil
func GetPrincipal(c *gin.Context) *Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(*Principal); ok {
			return p
		}
	}
	return nil
}
