package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderlink/backend/internal/infrastructure/auth"
	"github.com/orderlink/backend/internal/infrastructure/config"
)

func sessionRouter(t *testing.T) (*gin.Engine, *auth.SessionService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := auth.NewSessionService(config.SessionConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "orderlink-test",
	})

	engine := gin.New()
	engine.GET("/protected", SessionAuth(sessions), func(c *gin.Context) {
		c.String(http.StatusOK, GetSessionShop(c))
	})
	return engine, sessions
}

func TestSessionAuth(t *testing.T) {
	t.Run("valid token passes shop to handler", func(t *testing.T) {
		engine, sessions := sessionRouter(t)
		token, err := sessions.Generate("demo-store.example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "demo-store.example.com", rec.Body.String())
	})

	t.Run("missing header answers 401", func(t *testing.T) {
		engine, _ := sessionRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header answers 401", func(t *testing.T) {
		engine, sessions := sessionRouter(t)
		token, err := sessions.Generate("demo-store.example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, token)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("tampered token answers 401", func(t *testing.T) {
		engine, sessions := sessionRouter(t)
		token, err := sessions.Generate("demo-store.example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token+"x")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
