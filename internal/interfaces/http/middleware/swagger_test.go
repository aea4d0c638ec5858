package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func swaggerRouter(cfg SwaggerConfig, auth gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/swagger/*any", SwaggerProtection(cfg, auth), func(c *gin.Context) { c.String(http.StatusOK, "docs") })
	return r
}

func TestSwaggerProtection(t *testing.T) {
	get := func(r *gin.Engine, remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("disabled", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(swaggerRouter(SwaggerConfig{}, nil), "127.0.0.1:1"))
	})

	t.Run("open when enabled", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(swaggerRouter(SwaggerConfig{Enabled: true}, nil), "203.0.113.9:1"))
	})

	t.Run("allowlist with CIDR", func(t *testing.T) {
		r := swaggerRouter(SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8", "192.168.1.5"}}, nil)
		assert.Equal(t, http.StatusOK, get(r, "10.1.2.3:1"))
		assert.Equal(t, http.StatusOK, get(r, "192.168.1.5:1"))
		assert.Equal(t, http.StatusForbidden, get(r, "203.0.113.9:1"))
	})

	t.Run("auth required", func(t *testing.T) {
		deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
		r := swaggerRouter(SwaggerConfig{Enabled: true, RequireAuth: true}, deny)
		assert.Equal(t, http.StatusUnauthorized, get(r, "127.0.0.1:1"))
	})
}
