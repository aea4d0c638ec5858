package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/infrastructure/logger"
	"github.com/locaflow/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RequirePermission checks resource:action against the caller's role
func RequirePermission(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			abort(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !p.Role.Can(resource, action) {
			logger.FromGin(c).Warn("Permission denied",
				zap.String("role", string(p.Role)),
				zap.String("permission", resource+":"+action),
			)
			abort(c, http.StatusForbidden, dto.ErrCodeForbidden, "You do not have permission to "+action+" "+resource)
			return
		}
		c.Next()
	}
}

// RequireResource derives the action from the HTTP method
func RequireResource(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		RequirePermission(resource, methodToAction(c.Request.Method))(c)
	}
}

// RequireSession rejects API keys on routes that act on a user account
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil || p.IsAPIKey() {
			abort(c, http.StatusForbidden, dto.ErrCodeForbidden, "This operation requires a user session")
			return
		}
		c.Next()
	}
}

func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return identity.ActionRead
	case http.MethodPost:
		return identity.ActionCreate
	case http.MethodPut, http.MethodPatch:
		return identity.ActionUpdate
	case http.MethodDelete:
		return identity.ActionDelete
	default:
		return identity.ActionRead
	}
}

// HasPermission reports whether the caller may perform action on resource
func HasPermission(c *gin.Context, resource, action string) bool {
	p := GetPrincipal(c)
	return p != nil && p.Role.Can(resource, action)
}
