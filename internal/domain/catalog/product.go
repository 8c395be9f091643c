package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderlink/backend/internal/domain/shared"
)

// DiscountType identifies how a discount value is interpreted by the
// storefront draft order API.
type DiscountType string

const (
	DiscountTypeFixedAmount DiscountType = "FIXED_AMOUNT"
	DiscountTypePercentage  DiscountType = "PERCENTAGE"
)

// IsValid checks if the discount type is known
func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountTypeFixedAmount, DiscountTypePercentage:
		return true
	}
	return false
}

// Discount is the per-line discount applied when the matched product is
// placed on a storefront draft order.
type Discount struct {
	Type  DiscountType    `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// ProductKey uniquely identifies a marketplace product within a merchant's
// catalog. The same numeric product id can exist on two different
// marketplace stores, so the source URL is part of the key.
type ProductKey struct {
	MarketplaceProductID int64
	MarketplaceURL       string
}

// MatchedProduct maps a marketplace product to a storefront variant.
// Uniqueness invariant: at most one matched product per ProductKey in a
// merchant's catalog.
type MatchedProduct struct {
	ID                   uuid.UUID       `json:"id"`
	MarketplaceProductID int64           `json:"marketplace_product_id"`
	MarketplaceURL       string          `json:"marketplace_url"`
	MarketplaceName      string          `json:"marketplace_name"`
	MarketplaceImage     string          `json:"marketplace_image"`
	StorefrontVariantID  string          `json:"storefront_variant_id"`
	Name                 string          `json:"name"`
	VariantName          string          `json:"variant_name"`
	Image                string          `json:"image"`
	QuantityPerUnit      int             `json:"quantity_per_unit"`
	Discount             Discount        `json:"discount"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// NewMatchedProduct creates a matched product, validating the mapping fields
func NewMatchedProduct(marketplaceProductID int64, marketplaceURL, storefrontVariantID string) (*MatchedProduct, error) {
	if marketplaceProductID == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Marketplace product ID cannot be empty")
	}
	if marketplaceURL == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Marketplace URL cannot be empty")
	}
	if storefrontVariantID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Storefront variant ID cannot be empty")
	}

	now := time.Now()
	return &MatchedProduct{
		ID:                   uuid.New(),
		MarketplaceProductID: marketplaceProductID,
		MarketplaceURL:       marketplaceURL,
		StorefrontVariantID:  storefrontVariantID,
		QuantityPerUnit:      1,
		Discount:             Discount{Type: DiscountTypeFixedAmount, Value: decimal.Zero},
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// Key returns the catalog key of this product
func (p *MatchedProduct) Key() ProductKey {
	return ProductKey{
		MarketplaceProductID: p.MarketplaceProductID,
		MarketplaceURL:       p.MarketplaceURL,
	}
}

// Validate validates the mapping invariants
func (p *MatchedProduct) Validate() error {
	if p.MarketplaceProductID == 0 || p.MarketplaceURL == "" {
		return shared.NewDomainError("INVALID_INPUT", "Matched product is missing its marketplace key")
	}
	if p.StorefrontVariantID == "" {
		return shared.NewDomainError("INVALID_INPUT", "Matched product is missing a storefront variant")
	}
	if p.QuantityPerUnit <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Quantity per unit must be positive")
	}
	if !p.Discount.Type.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Unknown discount type")
	}
	return nil
}

// UnmatchedProduct is a placeholder recorded the first time an order
// references a marketplace product with no mapping. It exists so an operator
// can supply the mapping later; once matched it is removed from the catalog.
type UnmatchedProduct struct {
	ID                   uuid.UUID `json:"id"`
	MarketplaceProductID int64     `json:"marketplace_product_id"`
	MarketplaceURL       string    `json:"marketplace_url"`
	Name                 string    `json:"name"`
	Image                string    `json:"image"`
	CreatedAt            time.Time `json:"created_at"`
}

// Key returns the catalog key of this product
func (p *UnmatchedProduct) Key() ProductKey {
	return ProductKey{
		MarketplaceProductID: p.MarketplaceProductID,
		MarketplaceURL:       p.MarketplaceURL,
	}
}
