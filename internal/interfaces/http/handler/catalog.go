package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	catalogapp "github.com/orderlink/backend/internal/application/catalog"
	"github.com/orderlink/backend/internal/application/orders"
	"github.com/orderlink/backend/internal/domain/catalog"
	"github.com/orderlink/backend/internal/interfaces/http/middleware"
)

// CatalogHandler exposes the matched and unmatched product catalogs
type CatalogHandler struct {
	BaseHandler
	catalogs  *catalogapp.CatalogService
	reconcile *orders.ReconcileService
	logger    *zap.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogs *catalogapp.CatalogService, reconcile *orders.ReconcileService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogs:  catalogs,
		reconcile: reconcile,
		logger:    logger,
	}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/matched", h.ListMatched)
	rg.POST("/matched", h.AddMatched)
	rg.PUT("/matched/:id", h.UpdateMatched)
	rg.DELETE("/matched/:id", h.RemoveMatched)
	rg.GET("/unmatched", h.ListUnmatched)
	rg.POST("/unmatched/match", h.Match)
}

// ListMatched returns every product with a storefront mapping
func (h *CatalogHandler) ListMatched(c *gin.Context) {
	shop := middleware.GetSessionShop(c)
	products, err := h.catalogs.ListMatchedProducts(c.Request.Context(), shop)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// AddMatched creates a mapping directly from the operator's manual form
func (h *CatalogHandler) AddMatched(c *gin.Context) {
	var input catalogapp.MatchedProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	shop := middleware.GetSessionShop(c)
	product, err := h.catalogs.AddMatchedProduct(c.Request.Context(), shop, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// UpdateMatched replaces an existing mapping
func (h *CatalogHandler) UpdateMatched(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	var input catalogapp.MatchedProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	shop := middleware.GetSessionShop(c)
	product, err := h.catalogs.UpdateMatchedProduct(c.Request.Context(), shop, productID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// RemoveMatched drops a product mapping
func (h *CatalogHandler) RemoveMatched(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	shop := middleware.GetSessionShop(c)
	if err := h.catalogs.RemoveMatchedProduct(c.Request.Context(), shop, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListUnmatched returns the placeholders waiting for an operator mapping
func (h *CatalogHandler) ListUnmatched(c *gin.Context) {
	shop := middleware.GetSessionShop(c)
	products, err := h.catalogs.ListUnmatchedProducts(c.Request.Context(), shop)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// MatchRequest is the operator's mapping for an unmatched product
type MatchRequest struct {
	UnmatchedID         string  `json:"unmatched_id" binding:"required,uuid"`
	StorefrontVariantID string  `json:"storefront_variant_id" binding:"required"`
	Name                string  `json:"name"`
	VariantName         string  `json:"variant_name"`
	Image               string  `json:"image"`
	QuantityPerUnit     int     `json:"quantity_per_unit" binding:"omitempty,min=1"`
	DiscountType        string  `json:"discount_type" binding:"omitempty,oneof=FIXED_AMOUNT PERCENTAGE"`
	DiscountValue       float64 `json:"discount_value" binding:"omitempty,min=0"`
}

// Match applies the mapping and promotes every order that was waiting on it
func (h *CatalogHandler) Match(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	unmatchedID, err := uuid.Parse(req.UnmatchedID)
	if err != nil {
		h.BadRequest(c, "Invalid unmatched id")
		return
	}

	quantityPerUnit := req.QuantityPerUnit
	if quantityPerUnit == 0 {
		quantityPerUnit = 1
	}
	discountType := catalog.DiscountType(req.DiscountType)
	if req.DiscountType == "" {
		discountType = catalog.DiscountTypeFixedAmount
	}

	shop := middleware.GetSessionShop(c)
	result, err := h.reconcile.MatchProduct(c.Request.Context(), shop, orders.MatchProductInput{
		UnmatchedID:         unmatchedID,
		StorefrontVariantID: req.StorefrontVariantID,
		Name:                req.Name,
		VariantName:         req.VariantName,
		Image:               req.Image,
		QuantityPerUnit:     quantityPerUnit,
		Discount: catalog.Discount{
			Type:  discountType,
			Value: decimal.NewFromFloat(req.DiscountValue),
		},
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
