package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/orderlink/backend/internal/domain/catalog"
	"github.com/orderlink/backend/internal/domain/merchant"
	"github.com/orderlink/backend/internal/domain/shared"
)

// CatalogService exposes a merchant's product mapping state.
type CatalogService struct {
	merchantRepo merchant.Repository
	logger       *zap.Logger
}

// CatalogServiceConfig contains configuration for CatalogService
type CatalogServiceConfig struct {
	MerchantRepo merchant.Repository
	Logger       *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(cfg CatalogServiceConfig) *CatalogService {
	return &CatalogService{
		merchantRepo: cfg.MerchantRepo,
		logger:       cfg.Logger,
	}
}

// MatchedProductInput carries the operator-supplied fields of a mapping
type MatchedProductInput struct {
	MarketplaceProductID int64           `json:"marketplace_product_id" binding:"required"`
	MarketplaceURL       string          `json:"marketplace_url" binding:"required,marketplace_url"`
	StorefrontVariantID  string          `json:"storefront_variant_id" binding:"required"`
	Name                 string          `json:"name"`
	VariantName          string          `json:"variant_name"`
	Image                string          `json:"image"`
	MarketplaceName      string          `json:"marketplace_name"`
	MarketplaceImage     string          `json:"marketplace_image"`
	QuantityPerUnit      int             `json:"quantity_per_unit" binding:"omitempty,min=1"`
	DiscountType         string          `json:"discount_type" binding:"omitempty,oneof=FIXED_AMOUNT PERCENTAGE"`
	DiscountValue        decimal.Decimal `json:"discount_value"`
}

func (in MatchedProductInput) toProduct() (*catalog.MatchedProduct, error) {
	product, err := catalog.NewMatchedProduct(in.MarketplaceProductID, in.MarketplaceURL, in.StorefrontVariantID)
	if err != nil {
		return nil, err
	}
	product.Name = in.Name
	product.VariantName = in.VariantName
	product.Image = in.Image
	product.MarketplaceName = in.MarketplaceName
	product.MarketplaceImage = in.MarketplaceImage
	if in.QuantityPerUnit > 0 {
		product.QuantityPerUnit = in.QuantityPerUnit
	}
	if in.DiscountType != "" {
		product.Discount = catalog.Discount{
			Type:  catalog.DiscountType(in.DiscountType),
			Value: in.DiscountValue,
		}
	}
	return product, nil
}

// ListMatchedProducts returns every marketplace product with a storefront mapping
func (s *CatalogService) ListMatchedProducts(ctx context.Context, shop string) ([]catalog.MatchedProduct, error) {
	m, err := s.merchantRepo.FindByShop(ctx, shop)
	if err != nil {
		return nil, err
	}
	return m.MatchedProducts, nil
}

// ListUnmatchedProducts returns the placeholders still waiting for an operator
func (s *CatalogService) ListUnmatchedProducts(ctx context.Context, shop string) ([]catalog.UnmatchedProduct, error) {
	m, err := s.merchantRepo.FindByShop(ctx, shop)
	if err != nil {
		return nil, err
	}
	return m.UnmatchedProducts, nil
}

// AddMatchedProduct creates a mapping directly, without going through an
// unmatched placeholder. Used by the operator UI's manual match form.
func (s *CatalogService) AddMatchedProduct(ctx context.Context, shop string, input MatchedProductInput) (*catalog.MatchedProduct, error) {
	m, err := s.merchantRepo.FindByShop(ctx, shop)
	if err != nil {
		return nil, err
	}

	product, err := input.toProduct()
	if err != nil {
		return nil, err
	}
	if err := m.AddMatchedProduct(*product); err != nil {
		return nil, err
	}
	if err := s.merchantRepo.Save(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info("Product mapping added",
		zap.String("shop", shop),
		zap.Int64("marketplace_product_id", product.MarketplaceProductID),
	)
	return product, nil
}

// UpdateMatchedProduct replaces the mapping fields of an existing product
func (s *CatalogService) UpdateMatchedProduct(ctx context.Context, shop string, productID uuid.UUID, input MatchedProductInput) (*catalog.MatchedProduct, error) {
	m, err := s.merchantRepo.FindByShop(ctx, shop)
	if err != nil {
		return nil, err
	}

	product, err := input.toProduct()
	if err != nil {
		return nil, err
	}
	product.ID = productID
	if err := m.UpdateMatchedProduct(*product); err != nil {
		return nil, err
	}
	if err := s.merchantRepo.Save(ctx, m); err != nil {
		return nil, err
	}
	return product, nil
}

// RemoveMatchedProduct drops a mapping. Future orders carrying the product
// fall back to the unmatched flow.
func (s *CatalogService) RemoveMatchedProduct(ctx context.Context, shop string, productID uuid.UUID) error {
	m, err := s.merchantRepo.FindByShop(ctx, shop)
	if err != nil {
		return err
	}

	found := false
	kept := m.MatchedProducts[:0]
	for _, p := range m.MatchedProducts {
		if p.ID == productID {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return shared.ErrNotFound
	}
	m.MatchedProducts = kept

	if err := s.merchantRepo.Save(ctx, m); err != nil {
		return err
	}
	s.logger.Info("Product mapping removed",
		zap.String("shop", shop),
		zap.String("product_id", productID.String()),
	)
	return nil
}
