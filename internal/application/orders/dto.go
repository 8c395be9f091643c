package orders

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/orderlink/backend/internal/domain/catalog"
	"github.com/orderlink/backend/internal/domain/integration"
	"github.com/orderlink/backend/internal/domain/merchant"
)

// Webhook topics delivered by marketplace stores.
const (
	TopicOrderCreated = "order_created"
	TopicOrderUpdated = "order_updated"
)

// OrderPayload is the order document carried by marketplace webhooks.
type OrderPayload struct {
	ID            int64             `json:"id"`
	PaymentMethod string            `json:"payment_method"`
	Customer      CustomerPayload   `json:"customer"`
	LineItems     []LineItemPayload `json:"line_items"`
	ShippingLine  ShippingPayload   `json:"shipping_line"`
}

// CustomerPayload is the buyer block of an order payload.
type CustomerPayload struct {
	Email           string         `json:"email"`
	BillingAddress  AddressPayload `json:"billing_address"`
	ShippingAddress AddressPayload `json:"shipping_address"`
}

// AddressPayload is a postal address block of an order payload.
type AddressPayload struct {
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

// ShippingPayload is the shipping option block of an order payload.
type ShippingPayload struct {
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

// LineItemPayload is one order position of an order payload.
type LineItemPayload struct {
	ProductID int64    `json:"product_id"`
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	Images    []string `json:"images"`
}

// ParseOrderPayload decodes and validates a webhook order body
func ParseOrderPayload(body []byte) (*OrderPayload, error) {
	var payload OrderPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("invalid order payload: %w", err)
	}
	if payload.ID == 0 {
		return nil, fmt.Errorf("order payload is missing an id")
	}
	return &payload, nil
}

// DomainLineItems converts the payload positions to domain line items
func (p *OrderPayload) DomainLineItems() []catalog.LineItem {
	items := make([]catalog.LineItem, 0, len(p.LineItems))
	for _, li := range p.LineItems {
		items = append(items, catalog.LineItem{
			ProductID: li.ProductID,
			Name:      li.Name,
			Quantity:  li.Quantity,
			Images:    li.Images,
		})
	}
	return items
}

// DomainCustomer converts the payload buyer block to a domain customer
func (p *OrderPayload) DomainCustomer() merchant.Customer {
	return merchant.Customer{
		Email:           p.Customer.Email,
		BillingAddress:  domainAddress(p.Customer.BillingAddress),
		ShippingAddress: domainAddress(p.Customer.ShippingAddress),
		ShippingLine: merchant.ShippingLine{
			Title: p.ShippingLine.Title,
			Price: p.ShippingLine.Price,
		},
	}
}

func domainAddress(a AddressPayload) merchant.Address {
	return merchant.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		Province:  a.Province,
		Zip:       a.Zip,
		Country:   a.Country,
		Phone:     a.Phone,
	}
}

// buildDraftInput renders an order as the storefront draft order input.
// Quantities are multiplied by the mapping's units per item.
func buildDraftInput(order *merchant.Order) integration.DraftOrderInput {
	items := make([]integration.DraftOrderItem, 0, len(order.MatchedItems))
	for _, item := range order.MatchedItems {
		items = append(items, integration.DraftOrderItem{
			VariantID:     item.Product.StorefrontVariantID,
			Quantity:      item.Quantity * item.Product.QuantityPerUnit,
			DiscountType:  string(item.Product.Discount.Type),
			DiscountValue: item.Product.Discount.Value.String(),
		})
	}
	return integration.DraftOrderInput{
		Customer: order.Customer,
		Items:    items,
	}
}
