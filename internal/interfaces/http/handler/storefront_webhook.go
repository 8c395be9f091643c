package handler

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orderlink/backend/internal/application/privacy"
	"github.com/orderlink/backend/internal/infrastructure/signature"
)

// Storefront webhook headers
const (
	HeaderStorefrontHmac = "X-Storefront-Hmac-Sha256"
	HeaderStorefrontShop = "X-Storefront-Shop-Domain"
)

// StorefrontWebhookHandler receives storefront lifecycle and privacy
// webhooks. All of them share one process-wide signing secret.
type StorefrontWebhookHandler struct {
	BaseHandler
	service       *privacy.Service
	webhookSecret string
	logger        *zap.Logger
}

// NewStorefrontWebhookHandler creates a new storefront webhook handler
func NewStorefrontWebhookHandler(service *privacy.Service, webhookSecret string, logger *zap.Logger) *StorefrontWebhookHandler {
	return &StorefrontWebhookHandler{
		service:       service,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// RegisterRoutes registers the storefront webhook endpoints
func (h *StorefrontWebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sf := rg.Group("/storefront")
	sf.POST("/uninstall", h.Uninstall)
	sf.POST("/gdpr/request_customer", h.RequestCustomer)
	sf.POST("/gdpr/redact_customer", h.RedactCustomer)
	sf.POST("/gdpr/redact_shop", h.RedactShop)
}

// verify reads the raw body and checks the storefront HMAC. A nil body
// return means the response has already been written.
func (h *StorefrontWebhookHandler) verify(c *gin.Context) ([]byte, string) {
	shop := c.GetHeader(HeaderStorefrontShop)
	presented := c.GetHeader(HeaderStorefrontHmac)
	if shop == "" || presented == "" {
		h.BadRequest(c, "Missing storefront webhook headers")
		return nil, ""
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Unreadable request body")
		return nil, ""
	}

	if !signature.Verify(signature.StorefrontScheme, []byte(h.webhookSecret), body, presented) {
		h.logger.Warn("Storefront webhook signature rejected", zap.String("shop", shop))
		h.Unauthorized(c, "Invalid webhook signature")
		return nil, ""
	}
	return body, shop
}

// Uninstall handles the app uninstalled webhook
func (h *StorefrontWebhookHandler) Uninstall(c *gin.Context) {
	_, shop := h.verify(c)
	if shop == "" {
		return
	}

	if err := h.service.HandleUninstalled(c.Request.Context(), shop); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"shop": shop})
}

type customerWebhookPayload struct {
	Customer struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	} `json:"customer"`
	OrderIDs []int64 `json:"orders_requested"`
	Redact   []int64 `json:"orders_to_redact"`
}

// RequestCustomer records a customer data request for later fulfilment
func (h *StorefrontWebhookHandler) RequestCustomer(c *gin.Context) {
	body, shop := h.verify(c)
	if shop == "" {
		return
	}

	var payload customerWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.BadRequest(c, "Invalid webhook payload")
		return
	}

	err := h.service.RecordDataRequest(c.Request.Context(), shop, payload.Customer.ID, payload.Customer.Email, payload.OrderIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"shop": shop})
}

// RedactCustomer strips a customer's data from pending orders
func (h *StorefrontWebhookHandler) RedactCustomer(c *gin.Context) {
	body, shop := h.verify(c)
	if shop == "" {
		return
	}

	var payload customerWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.BadRequest(c, "Invalid webhook payload")
		return
	}

	orderIDs := payload.Redact
	if len(orderIDs) == 0 {
		orderIDs = payload.OrderIDs
	}
	if err := h.service.RedactCustomer(c.Request.Context(), shop, payload.Customer.Email, orderIDs); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"shop": shop})
}

// RedactShop erases everything stored for the shop
func (h *StorefrontWebhookHandler) RedactShop(c *gin.Context) {
	_, shop := h.verify(c)
	if shop == "" {
		return
	}

	if err := h.service.RedactShop(c.Request.Context(), shop); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"shop": shop})
}
