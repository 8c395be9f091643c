package integration

import (
	"context"
	"errors"

	"github.com/orderlink/backend/internal/domain/merchant"
)

var (
	// Storefront platform errors
	ErrStorefrontRequestFailed   = errors.New("integration: storefront request failed")
	ErrStorefrontInvalidResponse = errors.New("integration: invalid storefront response")
	ErrStorefrontAuthFailed      = errors.New("integration: storefront authentication failed")
	ErrStorefrontUserErrors      = errors.New("integration: storefront rejected the mutation")
	ErrDraftOrderNotFound        = errors.New("integration: draft order not found")
)

// StorefrontCredentials identify the shop an API call runs against.
type StorefrontCredentials struct {
	Shop        string
	AccessToken string
}

// DraftOrderInput is everything the storefront needs to build a draft order
// from a matched marketplace order.
type DraftOrderInput struct {
	Customer merchant.Customer
	Items    []DraftOrderItem
}

// DraftOrderItem is one draft order position. Quantity already includes the
// mapping's units-per-item multiplier.
type DraftOrderItem struct {
	VariantID     string
	Quantity      int
	DiscountType  string
	DiscountValue string
}

// DraftOrderClient is the port to the storefront's draft order API.
type DraftOrderClient interface {
	// CreateDraftOrder creates a draft order and returns its id
	CreateDraftOrder(ctx context.Context, creds StorefrontCredentials, input DraftOrderInput) (string, error)
	// UpdateDraftOrder replaces the line items of an open draft order
	UpdateDraftOrder(ctx context.Context, creds StorefrontCredentials, draftOrderID string, input DraftOrderInput) (string, error)
	// CompleteDraftOrder completes the draft with payment pending and
	// settles the resulting order with the given payment gateway. Returns
	// the id of the completed order.
	CompleteDraftOrder(ctx context.Context, creds StorefrontCredentials, draftOrderID, paymentMethod string) (string, error)
}
