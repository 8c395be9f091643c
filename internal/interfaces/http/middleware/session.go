package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orderlink/backend/internal/infrastructure/auth"
	"github.com/orderlink/backend/internal/interfaces/http/dto"
)

// Session context keys
const (
	SessionShopKey = "session_shop"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// SessionAuth validates the bearer session token and stores the shop domain
// in the request context.
func SessionAuth(sessions *auth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		token := strings.TrimPrefix(authHeader, BearerPrefix)
		shop, err := sessions.Validate(token)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired session token")
			return
		}

		c.Set(SessionShopKey, shop)
		c.Next()
	}
}

// GetSessionShop returns the authenticated shop domain, empty if the request
// did not pass session auth.
func GetSessionShop(c *gin.Context) string {
	return c.GetString(SessionShopKey)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}
