package merchant

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderlink/backend/internal/domain/catalog"
	"github.com/orderlink/backend/internal/domain/shared"
)

// OrderStatus tracks how far along the storefront side of an order is.
type OrderStatus string

const (
	// OrderStatusReceived means the marketplace order arrived but no draft
	// order exists on the storefront yet.
	OrderStatusReceived OrderStatus = "RECEIVED"
	// OrderStatusDraftOpen means a storefront draft order has been created
	// and is being kept in sync with marketplace updates.
	OrderStatusDraftOpen OrderStatus = "DRAFT_OPEN"
	// OrderStatusCompletionArmed means a deferred completion job has been
	// scheduled for this order.
	OrderStatusCompletionArmed OrderStatus = "COMPLETION_ARMED"
)

// Address is a postal address carried over from the marketplace order.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// ShippingLine is the shipping option the buyer picked on the marketplace.
type ShippingLine struct {
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

// Customer is the buyer information forwarded onto the draft order.
type Customer struct {
	Email           string       `json:"email"`
	BillingAddress  Address      `json:"billing_address"`
	ShippingAddress Address      `json:"shipping_address"`
	ShippingLine    ShippingLine `json:"shipping_line"`
}

// Order links one marketplace order to its storefront draft order. It lives
// inside the merchant document and is removed once the draft order has been
// completed and settled.
type Order struct {
	ID                 uuid.UUID                   `json:"id"`
	MarketplaceOrderID int64                       `json:"marketplace_order_id"`
	MarketplaceURL     string                      `json:"marketplace_url"`
	DraftOrderID       string                      `json:"draft_order_id"`
	PaymentMethod      string                      `json:"payment_method"`
	Customer           Customer                    `json:"customer"`
	MatchedItems       []catalog.MatchedLineItem   `json:"matched_items"`
	UnmatchedItems     []catalog.UnmatchedLineItem `json:"unmatched_items"`
	Status             OrderStatus                 `json:"status"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

// NewOrder creates an order in the received state
func NewOrder(marketplaceOrderID int64, marketplaceURL, paymentMethod string, customer Customer) (*Order, error) {
	if marketplaceOrderID == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Marketplace order ID cannot be empty")
	}
	if marketplaceURL == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Marketplace URL cannot be empty")
	}

	now := time.Now()
	return &Order{
		ID:                 uuid.New(),
		MarketplaceOrderID: marketplaceOrderID,
		MarketplaceURL:     marketplaceURL,
		PaymentMethod:      paymentMethod,
		Customer:           customer,
		Status:             OrderStatusReceived,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// FullyMatched reports whether every line item has a storefront mapping
func (o *Order) FullyMatched() bool {
	return len(o.UnmatchedItems) == 0
}

// IsCompleteEligible reports whether the deferred completion may run: the
// order must be fully matched and a draft order must exist. Both conditions
// are re-checked at fire time because either can change while the delay runs.
func (o *Order) IsCompleteEligible() bool {
	return o.FullyMatched() && o.DraftOrderID != ""
}

// ApplyMatch replaces the order's line item partition with a fresh match
// result, as produced from an order_updated payload.
func (o *Order) ApplyMatch(result catalog.MatchResult) {
	o.MatchedItems = result.Matched
	o.UnmatchedItems = result.Unmatched
	o.UpdatedAt = time.Now()
}

// AttachDraft records the storefront draft order backing this order
func (o *Order) AttachDraft(draftOrderID string) error {
	if draftOrderID == "" {
		return shared.NewDomainError("INVALID_INPUT", "Draft order ID cannot be empty")
	}
	o.DraftOrderID = draftOrderID
	if o.Status == OrderStatusReceived {
		o.Status = OrderStatusDraftOpen
	}
	o.UpdatedAt = time.Now()
	return nil
}

// ArmCompletion marks the order as having a completion job scheduled
func (o *Order) ArmCompletion() error {
	if !o.FullyMatched() {
		return shared.NewDomainError("CONFLICT", "Cannot arm completion with unmatched line items")
	}
	o.Status = OrderStatusCompletionArmed
	o.UpdatedAt = time.Now()
	return nil
}

// PromoteUnmatched moves every unmatched line item referencing the given
// product onto the matched side, keeping its quantity. Returns how many
// items were promoted.
func (o *Order) PromoteUnmatched(product catalog.MatchedProduct) int {
	key := product.Key()
	promoted := 0
	remaining := o.UnmatchedItems[:0]
	for _, item := range o.UnmatchedItems {
		if item.Product.Key() == key {
			o.MatchedItems = append(o.MatchedItems, catalog.MatchedLineItem{
				Quantity: item.Quantity,
				Product:  product,
			})
			promoted++
			continue
		}
		remaining = append(remaining, item)
	}
	o.UnmatchedItems = remaining
	if promoted > 0 {
		o.UpdatedAt = time.Now()
	}
	return promoted
}
