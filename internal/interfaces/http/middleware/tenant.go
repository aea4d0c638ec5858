package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/infrastructure/logger"
	"github.com/locaflow/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// TenantFinder loads the caller's tenant
type TenantFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error)
}

// RequireActiveTenant rejects callers whose tenant is suspended or cancelled.
// It must run after Authenticate
func RequireActiveTenant(tenants TenantFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			abort(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		tenant, err := tenants.FindByID(c.Request.Context(), p.TenantID)
		if err != nil {
			if shared.IsNotFound(err) {
				abort(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Company account not found")
				return
			}
			logger.FromGin(c).Error("Failed to load tenant", zap.Error(err))
			abort(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
			return
		}
		if !tenant.CanOperate() {
			abort(c, http.StatusForbidden, dto.ErrCodeTenantInactive, "Company account is not active")
			return
		}
		c.Next()
	}
}

// GetTenantUUID returns the tenant of the authenticated caller
func GetTenantUUID(c *gin.Context) (uuid.UUID, bool) {
	p := GetPrincipal(c)
	if p == nil || p.TenantID == uuid.Nil {
		return uuid.Nil, false
	}
	return p.TenantID, true
}
