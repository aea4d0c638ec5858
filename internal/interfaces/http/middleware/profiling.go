package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling labels CPU samples taken while handling a request with the
// route, method and tenant. Health and metrics probes are skipped
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || skipProfiling(route) {
			c.Next()
			return
		}

		labels := []string{"route", route, "method", c.Request.Method}
		if p := GetPrincipal(c); p != nil {
			labels = append(labels, "tenant_id", p.TenantID.String())
		}

		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels(labels...), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func skipProfiling(route string) bool {
	return route == "/health" || route == "/metrics" || strings.HasPrefix(route, "/swagger")
}
