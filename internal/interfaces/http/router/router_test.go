package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type registrarFunc func(rg *gin.RouterGroup)

func (f registrarFunc) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }

func ok(c *gin.Context) { c.String(http.StatusOK, "ok") }

func TestRouterSetup(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("root and api registrars mount on their prefixes", func(t *testing.T) {
		engine := gin.New()
		r := NewRouter(engine, WithAPIVersion("v1"))
		r.RegisterRoot(registrarFunc(func(rg *gin.RouterGroup) { rg.GET("/webhook", ok) }))
		r.RegisterAPI(registrarFunc(func(rg *gin.RouterGroup) { rg.GET("/sources", ok) }))
		r.Setup()

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webhook", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sources", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("api middleware guards only the api group", func(t *testing.T) {
		engine := gin.New()
		guard := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
		r := NewRouter(engine, WithAPIMiddleware(guard))
		r.RegisterRoot(registrarFunc(func(rg *gin.RouterGroup) { rg.GET("/webhook", ok) }))
		r.RegisterAPI(registrarFunc(func(rg *gin.RouterGroup) { rg.GET("/sources", ok) }))
		r.Setup()

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webhook", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sources", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
