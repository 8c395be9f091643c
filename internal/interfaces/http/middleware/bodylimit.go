package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderlink/backend/internal/interfaces/http/dto"
)

// BodyLimit caps the request body size. Requests over the limit fail with
// 413 before the handler reads a byte past the cap.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
