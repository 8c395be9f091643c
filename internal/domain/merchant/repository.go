package merchant

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence port for the merchant aggregate.
type Repository interface {
	// FindByID loads a merchant by its id
	FindByID(ctx context.Context, id uuid.UUID) (*Merchant, error)
	// FindByShop loads a merchant by its storefront shop domain
	FindByShop(ctx context.Context, shop string) (*Merchant, error)
	// FindBySourceURL loads the merchant that has the given marketplace
	// store connected as a source
	FindBySourceURL(ctx context.Context, marketplaceURL string) (*Merchant, error)
	// CountBySourceURLExcludingShop counts merchants other than the given
	// shop that claim the marketplace store. Used to refuse cross-merchant
	// source claims.
	CountBySourceURLExcludingShop(ctx context.Context, marketplaceURL, shop string) (int64, error)
	// Save persists the whole aggregate
	Save(ctx context.Context, m *Merchant) error
	// Delete removes the merchant record entirely
	Delete(ctx context.Context, id uuid.UUID) error
}
