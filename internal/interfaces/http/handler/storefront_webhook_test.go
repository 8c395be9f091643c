package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	privacyapp "github.com/orderlink/backend/internal/application/privacy"
	"github.com/orderlink/backend/internal/domain/merchant"
	"github.com/orderlink/backend/internal/domain/privacy"
	"github.com/orderlink/backend/internal/infrastructure/signature"
)

const storefrontSecret = "storefront-api-secret"

// stubRequestRepo records data requests in memory.
type stubRequestRepo struct {
	saved   int
	deleted []string
}

func (r *stubRequestRepo) Save(_ context.Context, _ *privacy.CustomerDataRequest) error {
	r.saved++
	return nil
}

func (r *stubRequestRepo) FindByShop(_ context.Context, _ string) ([]privacy.CustomerDataRequest, error) {
	return nil, nil
}

func (r *stubRequestRepo) DeleteByShop(_ context.Context, shop string) error {
	r.deleted = append(r.deleted, shop)
	return nil
}

func newStorefrontRouter(t *testing.T) (*gin.Engine, *stubMerchantRepo, *stubRequestRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := merchant.NewMerchant(testShop, "token-123")
	require.NoError(t, err)
	repo := &stubMerchantRepo{merchant: m}
	requests := &stubRequestRepo{}

	service := privacyapp.NewService(privacyapp.ServiceConfig{
		MerchantRepo: repo,
		RequestRepo:  requests,
		Logger:       zap.NewNop(),
	})

	engine := gin.New()
	NewStorefrontWebhookHandler(service, storefrontSecret, zap.NewNop()).RegisterRoutes(engine.Group(""))
	return engine, repo, requests
}

func postStorefront(t *testing.T, engine *gin.Engine, path, shop, secret string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	sig, err := signature.Sign(signature.StorefrontScheme, []byte(secret), body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(HeaderStorefrontShop, shop)
	req.Header.Set(HeaderStorefrontHmac, sig)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestStorefrontWebhooks(t *testing.T) {
	t.Run("uninstall deactivates the merchant", func(t *testing.T) {
		engine, repo, _ := newStorefrontRouter(t)

		rec := postStorefront(t, engine, "/storefront/uninstall", testShop, storefrontSecret, []byte("{}"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, repo.merchant.Active)
		assert.Empty(t, repo.merchant.AccessToken)
	})

	t.Run("invalid signature answers 401", func(t *testing.T) {
		engine, repo, _ := newStorefrontRouter(t)

		rec := postStorefront(t, engine, "/storefront/uninstall", testShop, "wrong-secret", []byte("{}"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.True(t, repo.merchant.Active)
	})

	t.Run("data request is recorded", func(t *testing.T) {
		engine, _, requests := newStorefrontRouter(t)
		body := []byte(`{"customer":{"id":42,"email":"buyer@example.com"},"orders_requested":[7001]}`)

		rec := postStorefront(t, engine, "/storefront/gdpr/request_customer", testShop, storefrontSecret, body)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, requests.saved)
	})

	t.Run("customer redaction strips tracked orders", func(t *testing.T) {
		engine, repo, _ := newStorefrontRouter(t)
		order, err := merchant.NewOrder(7001, testSourceURL, "cash", merchant.Customer{Email: "buyer@example.com"})
		require.NoError(t, err)
		require.NoError(t, repo.merchant.AddOrder(*order))
		body := []byte(`{"customer":{"id":42,"email":"buyer@example.com"},"orders_to_redact":[7001]}`)

		rec := postStorefront(t, engine, "/storefront/gdpr/redact_customer", testShop, storefrontSecret, body)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, repo.merchant.Orders)
	})

	t.Run("shop redaction deletes stored requests", func(t *testing.T) {
		engine, _, requests := newStorefrontRouter(t)

		rec := postStorefront(t, engine, "/storefront/gdpr/redact_shop", testShop, storefrontSecret, []byte("{}"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{testShop}, requests.deleted)
	})

	t.Run("missing headers answer 400", func(t *testing.T) {
		engine, _, _ := newStorefrontRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/storefront/uninstall", bytes.NewReader([]byte("{}")))
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
