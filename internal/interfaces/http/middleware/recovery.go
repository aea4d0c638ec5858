package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/locaflow/backend/internal/infrastructure/logger"
	"github.com/locaflow/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// ErrorReporter forwards failures to an error tracker
type ErrorReporter interface {
	CaptureError(ctx context.Context, err error, tags map[string]string)
	CapturePanic(ctx context.Context, recovered any, tags map[string]string)
}

// Recovery turns panics into a 500 JSON body and reports them. Handler
// errors attached with c.Error on a 5xx response are reported too
func Recovery(reporter ErrorReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.FromGin(c).Error("Panic recovered",
					zap.Any("panic", r),
					zap.String("route", c.FullPath()),
					zap.Stack("stack"),
				)
				if reporter != nil {
					reporter.CapturePanic(c.Request.Context(), r, routeTags(c))
				}
				if !c.Writer.Written() {
					abort(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
				} else {
					c.Abort()
				}
			}
		}()

		c.Next()

		if reporter == nil || c.Writer.Status() < http.StatusInternalServerError {
			return
		}
		for _, e := range c.Errors {
			reporter.CaptureError(c.Request.Context(), e.Err, routeTags(c))
		}
	}
}

func routeTags(c *gin.Context) map[string]string {
	tags := map[string]string{
		"method": c.Request.Method,
		"route":  c.FullPath(),
	}
	if p := GetPrincipal(c); p != nil && p.IsAPIKey() {
		tags["api_key_id"] = p.APIKeyID.String()
	}
	if c.Writer.Written() {
		tags["status"] = fmt.Sprint(c.Writer.Status())
	}
	return tags
}
