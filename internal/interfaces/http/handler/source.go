package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	catalogapp "github.com/orderlink/backend/internal/application/catalog"
	"github.com/orderlink/backend/internal/interfaces/http/middleware"
)

// SourceHandler manages a merchant's marketplace source connections
type SourceHandler struct {
	BaseHandler
	sources *catalogapp.SourceService
	logger  *zap.Logger
}

// NewSourceHandler creates a new source handler
func NewSourceHandler(sources *catalogapp.SourceService, logger *zap.Logger) *SourceHandler {
	return &SourceHandler{
		sources: sources,
		logger:  logger,
	}
}

// RegisterRoutes registers source management routes
func (h *SourceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sources := rg.Group("/sources")
	sources.GET("", h.List)
	sources.POST("", h.Connect)
	sources.DELETE("/:id", h.Disconnect)
	sources.POST("/:id/rotate", h.Rotate)
	rg.POST("/marketplace/products", h.ListProducts)
}

// List returns the merchant's connected marketplace stores
func (h *SourceHandler) List(c *gin.Context) {
	shop := middleware.GetSessionShop(c)
	sources, err := h.sources.ListSources(c.Request.Context(), shop)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sources)
}

// Connect connects a marketplace store and registers its order webhook
func (h *SourceHandler) Connect(c *gin.Context) {
	var req catalogapp.ConnectSourceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	shop := middleware.GetSessionShop(c)
	source, err := h.sources.ConnectSource(c.Request.Context(), shop, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, source)
}

// Disconnect removes a source and its remote webhook registration
func (h *SourceHandler) Disconnect(c *gin.Context) {
	sourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid source id")
		return
	}

	shop := middleware.GetSessionShop(c)
	if err := h.sources.DisconnectSource(c.Request.Context(), shop, sourceID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Rotate re-registers the source webhook under a fresh secret
func (h *SourceHandler) Rotate(c *gin.Context) {
	sourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid source id")
		return
	}

	shop := middleware.GetSessionShop(c)
	source, err := h.sources.RotateWebhook(c.Request.Context(), shop, sourceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, source)
}

// ListProductsRequest selects the source and catalog page to fetch
type ListProductsRequest struct {
	SourceID string `json:"source_id" binding:"required,uuid"`
	Page     int    `json:"page" binding:"omitempty,min=1"`
}

// ListProducts proxies one page of the marketplace product catalog for the
// operator UI's picker.
func (h *SourceHandler) ListProducts(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	sourceID, err := uuid.Parse(req.SourceID)
	if err != nil {
		h.BadRequest(c, "Invalid source id")
		return
	}
	page := req.Page
	if page == 0 {
		page = 1
	}

	shop := middleware.GetSessionShop(c)
	products, err := h.sources.ListMarketplaceProducts(c.Request.Context(), shop, sourceID, page)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}
