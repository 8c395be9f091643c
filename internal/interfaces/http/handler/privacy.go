package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	privacyapp "github.com/orderlink/backend/internal/application/privacy"
	"github.com/orderlink/backend/internal/interfaces/http/middleware"
)

// PrivacyHandler exposes the recorded data-subject requests to the operator
type PrivacyHandler struct {
	BaseHandler
	privacy *privacyapp.Service
	logger  *zap.Logger
}

// NewPrivacyHandler creates a new privacy handler
func NewPrivacyHandler(privacy *privacyapp.Service, logger *zap.Logger) *PrivacyHandler {
	return &PrivacyHandler{
		privacy: privacy,
		logger:  logger,
	}
}

// RegisterRoutes registers privacy routes
func (h *PrivacyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/privacy/requests", h.ListRequests)
	rg.POST("/privacy/requests/:id/fulfill", h.FulfillRequest)
}

// ListRequests returns the data requests recorded for the shop
func (h *PrivacyHandler) ListRequests(c *gin.Context) {
	shop := middleware.GetSessionShop(c)
	requests, err := h.privacy.ListDataRequests(c.Request.Context(), shop)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, requests)
}

// FulfillRequest marks a data request as answered
func (h *PrivacyHandler) FulfillRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request id")
		return
	}

	shop := middleware.GetSessionShop(c)
	request, err := h.privacy.FulfillDataRequest(c.Request.Context(), shop, requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}
