package merchant

import (
	"time"

	"github.com/google/uuid"

	"github.com/orderlink/backend/internal/domain/catalog"
	"github.com/orderlink/backend/internal/domain/shared"
)

// Merchant is the aggregate root of one storefront installation. It owns the
// connected marketplace sources, the product catalog and every in-flight
// order. The whole aggregate is persisted as one document, so concurrent
// writers follow last-writer-wins.
type Merchant struct {
	ID                uuid.UUID                  `json:"id"`
	Shop              string                     `json:"shop"`
	AccessToken       string                     `json:"access_token"`
	Active            bool                       `json:"active"`
	Sources           []catalog.Source           `json:"sources"`
	MatchedProducts   []catalog.MatchedProduct   `json:"matched_products"`
	UnmatchedProducts []catalog.UnmatchedProduct `json:"unmatched_products"`
	Orders            []Order                    `json:"orders"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
}

// NewMerchant creates a merchant for a freshly installed storefront shop
func NewMerchant(shop, accessToken string) (*Merchant, error) {
	if shop == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Shop domain cannot be empty")
	}
	if accessToken == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Access token cannot be empty")
	}

	now := time.Now()
	return &Merchant{
		ID:          uuid.New(),
		Shop:        shop,
		AccessToken: accessToken,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SourceByURL looks up a connected marketplace source by its store URL
func (m *Merchant) SourceByURL(marketplaceURL string) *catalog.Source {
	for i := range m.Sources {
		if m.Sources[i].MarketplaceURL == marketplaceURL {
			return &m.Sources[i]
		}
	}
	return nil
}

// AddSource connects a marketplace source. A merchant can connect a store
// at most once.
func (m *Merchant) AddSource(source catalog.Source) error {
	if m.SourceByURL(source.MarketplaceURL) != nil {
		return shared.NewDomainError("CONFLICT", "Marketplace source is already connected")
	}
	m.Sources = append(m.Sources, source)
	m.UpdatedAt = time.Now()
	return nil
}

// RemoveSource disconnects a marketplace source by id
func (m *Merchant) RemoveSource(sourceID uuid.UUID) error {
	for i := range m.Sources {
		if m.Sources[i].ID == sourceID {
			m.Sources = append(m.Sources[:i], m.Sources[i+1:]...)
			m.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Marketplace source not found")
}

// FindOrder looks up an in-flight order by its marketplace order id
func (m *Merchant) FindOrder(marketplaceOrderID int64) *Order {
	for i := range m.Orders {
		if m.Orders[i].MarketplaceOrderID == marketplaceOrderID {
			return &m.Orders[i]
		}
	}
	return nil
}

// AddOrder records a new in-flight order
func (m *Merchant) AddOrder(order Order) error {
	if m.FindOrder(order.MarketplaceOrderID) != nil {
		return shared.NewDomainError("ALREADY_EXISTS", "Order is already being tracked")
	}
	m.Orders = append(m.Orders, order)
	m.UpdatedAt = time.Now()
	return nil
}

// RemoveOrder drops a finished or cancelled order from the aggregate
func (m *Merchant) RemoveOrder(marketplaceOrderID int64) {
	for i := range m.Orders {
		if m.Orders[i].MarketplaceOrderID == marketplaceOrderID {
			m.Orders = append(m.Orders[:i], m.Orders[i+1:]...)
			m.UpdatedAt = time.Now()
			return
		}
	}
}

// AddUnmatchedProducts extends the catalog with placeholders for products
// seen on orders without a mapping. Existing keys are skipped so repeated
// orders for the same product never duplicate the placeholder.
func (m *Merchant) AddUnmatchedProducts(products []catalog.UnmatchedProduct) int {
	known := make(map[catalog.ProductKey]bool, len(m.UnmatchedProducts))
	for _, p := range m.UnmatchedProducts {
		known[p.Key()] = true
	}
	added := 0
	for _, p := range products {
		if known[p.Key()] {
			continue
		}
		known[p.Key()] = true
		m.UnmatchedProducts = append(m.UnmatchedProducts, p)
		added++
	}
	if added > 0 {
		m.UpdatedAt = time.Now()
	}
	return added
}

func (m *Merchant) matchedKeyTaken(key catalog.ProductKey, exceptID uuid.UUID) bool {
	for i := range m.MatchedProducts {
		if m.MatchedProducts[i].ID != exceptID && m.MatchedProducts[i].Key() == key {
			return true
		}
	}
	return false
}

// AddMatchedProduct inserts an operator-supplied mapping directly into the
// matched catalog. The (product id, marketplace URL) key must be free.
func (m *Merchant) AddMatchedProduct(product catalog.MatchedProduct) error {
	if err := product.Validate(); err != nil {
		return err
	}
	if m.matchedKeyTaken(product.Key(), product.ID) {
		return shared.NewDomainError("CONFLICT", "Product is already matched")
	}
	m.MatchedProducts = append(m.MatchedProducts, product)
	m.UpdatedAt = time.Now()
	return nil
}

// UpdateMatchedProduct replaces an existing mapping by id
func (m *Merchant) UpdateMatchedProduct(product catalog.MatchedProduct) error {
	if err := product.Validate(); err != nil {
		return err
	}
	if m.matchedKeyTaken(product.Key(), product.ID) {
		return shared.NewDomainError("CONFLICT", "Product is already matched")
	}
	for i := range m.MatchedProducts {
		if m.MatchedProducts[i].ID == product.ID {
			product.CreatedAt = m.MatchedProducts[i].CreatedAt
			product.UpdatedAt = time.Now()
			m.MatchedProducts[i] = product
			m.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Matched product not found")
}

// MatchProduct promotes an unmatched product to a matched one using the
// variant mapping supplied by the operator. The placeholder leaves the
// unmatched list and the new mapping joins the matched catalog.
func (m *Merchant) MatchProduct(unmatchedID uuid.UUID, storefrontVariantID, name, variantName, image string, quantityPerUnit int, discount catalog.Discount) (*catalog.MatchedProduct, error) {
	idx := -1
	for i := range m.UnmatchedProducts {
		if m.UnmatchedProducts[i].ID == unmatchedID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, shared.NewDomainError("NOT_FOUND", "Unmatched product not found")
	}

	placeholder := m.UnmatchedProducts[idx]
	matched, err := catalog.NewMatchedProduct(placeholder.MarketplaceProductID, placeholder.MarketplaceURL, storefrontVariantID)
	if err != nil {
		return nil, err
	}
	matched.MarketplaceName = placeholder.Name
	matched.MarketplaceImage = placeholder.Image
	matched.Name = name
	matched.VariantName = variantName
	matched.Image = image
	if quantityPerUnit > 0 {
		matched.QuantityPerUnit = quantityPerUnit
	}
	if discount.Type != "" {
		matched.Discount = discount
	}
	if err := matched.Validate(); err != nil {
		return nil, err
	}
	if m.matchedKeyTaken(matched.Key(), matched.ID) {
		return nil, shared.NewDomainError("CONFLICT", "Product is already matched")
	}

	m.UnmatchedProducts = append(m.UnmatchedProducts[:idx], m.UnmatchedProducts[idx+1:]...)
	m.MatchedProducts = append(m.MatchedProducts, *matched)
	m.UpdatedAt = time.Now()
	return matched, nil
}

// Deactivate marks the merchant as uninstalled. The record is kept so a
// pending data request can still be answered.
func (m *Merchant) Deactivate() {
	m.Active = false
	m.AccessToken = ""
	m.UpdatedAt = time.Now()
}
