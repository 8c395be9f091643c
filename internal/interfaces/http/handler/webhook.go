package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orderlink/backend/internal/application/orders"
	"github.com/orderlink/backend/internal/domain/shared"
)

// Marketplace webhook headers
const (
	HeaderWebhookSource    = "X-Webhook-Source"
	HeaderWebhookTopic     = "X-Webhook-Topic"
	HeaderWebhookSignature = "X-Webhook-Signature"
)

// WebhookHandler receives marketplace order webhooks
type WebhookHandler struct {
	BaseHandler
	webhooks *orders.WebhookService
	logger   *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhooks *orders.WebhookService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhooks: webhooks,
		logger:   logger,
	}
}

// RegisterRoutes registers the marketplace webhook endpoint
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhook", h.Receive)
}

// Receive handles a marketplace order webhook delivery
func (h *WebhookHandler) Receive(c *gin.Context) {
	sourceURL := c.GetHeader(HeaderWebhookSource)
	topic := c.GetHeader(HeaderWebhookTopic)
	sig := c.GetHeader(HeaderWebhookSignature)
	if sourceURL == "" || topic == "" || sig == "" {
		h.BadRequest(c, "Missing webhook headers")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Unreadable request body")
		return
	}

	result, err := h.webhooks.ProcessWebhook(c.Request.Context(), orders.ProcessRequest{
		SourceURL: sourceURL,
		Topic:     topic,
		Signature: sig,
		Body:      body,
	})
	if err != nil {
		// A failed signature answers 403 so the sender does not retry with
		// the same secret
		if errors.Is(err, shared.ErrUnauthorized) {
			h.Forbidden(c, "Invalid webhook signature")
			return
		}
		h.HandleError(c, err)
		return
	}

	if result.Duplicate {
		h.logger.Debug("Duplicate webhook delivery acknowledged",
			zap.String("source", sourceURL),
			zap.String("topic", topic),
		)
	}
	h.Success(c, gin.H{
		"order_id":      result.OrderID,
		"topic":         result.Topic,
		"duplicate":     result.Duplicate,
		"fully_matched": result.FullyMatched,
	})
}
