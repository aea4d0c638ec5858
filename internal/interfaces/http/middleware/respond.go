package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/locaflow/backend/internal/interfaces/http/dto"
)

// abort ends the request with the standard error body
func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(code, message, GetRequestID(c)))
}
