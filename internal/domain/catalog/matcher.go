package catalog

import (
	"time"

	"github.com/google/uuid"
)

// LineItem is one position of an incoming marketplace order before matching.
type LineItem struct {
	ProductID int64    `json:"product_id"`
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	Images    []string `json:"images"`
}

// MatchedLineItem is an order position resolved to a storefront variant.
type MatchedLineItem struct {
	Quantity int            `json:"quantity"`
	Product  MatchedProduct `json:"product"`
}

// UnmatchedLineItem is an order position with no mapping yet. The full
// product reference is kept so the position can be promoted in place once
// the operator matches the product.
type UnmatchedLineItem struct {
	Quantity int              `json:"quantity"`
	Product  UnmatchedProduct `json:"product"`
}

// MatchResult is the partition of an order's line items against a merchant's
// catalog. Every input item lands in exactly one of Matched or Unmatched,
// in input order. NewUnmatched holds the catalog placeholders that did not
// exist before this match, deduplicated by product key.
type MatchResult struct {
	Matched      []MatchedLineItem
	Unmatched    []UnmatchedLineItem
	NewUnmatched []UnmatchedProduct
}

// FullyMatched reports whether every line item resolved to a mapping
func (r *MatchResult) FullyMatched() bool {
	return len(r.Unmatched) == 0
}

// MatchLineItems partitions order line items against the merchant's matched
// products. Matching is exact on (product id, marketplace URL). Items that
// miss are recorded as unmatched; products not already present in
// knownUnmatched are additionally returned in NewUnmatched so the caller can
// extend the catalog.
func MatchLineItems(items []LineItem, matched []MatchedProduct, knownUnmatched []UnmatchedProduct, marketplaceURL string) MatchResult {
	byKey := make(map[ProductKey]MatchedProduct, len(matched))
	for _, p := range matched {
		byKey[p.Key()] = p
	}
	seen := make(map[ProductKey]bool, len(knownUnmatched))
	for _, p := range knownUnmatched {
		seen[p.Key()] = true
	}

	var result MatchResult
	for _, item := range items {
		key := ProductKey{MarketplaceProductID: item.ProductID, MarketplaceURL: marketplaceURL}
		if product, ok := byKey[key]; ok {
			result.Matched = append(result.Matched, MatchedLineItem{
				Quantity: item.Quantity,
				Product:  product,
			})
			continue
		}

		placeholder := UnmatchedProduct{
			ID:                   uuid.New(),
			MarketplaceProductID: item.ProductID,
			MarketplaceURL:       marketplaceURL,
			Name:                 item.Name,
			CreatedAt:            time.Now(),
		}
		if len(item.Images) > 0 {
			placeholder.Image = item.Images[0]
		}
		result.Unmatched = append(result.Unmatched, UnmatchedLineItem{
			Quantity: item.Quantity,
			Product:  placeholder,
		})
		if !seen[key] {
			seen[key] = true
			result.NewUnmatched = append(result.NewUnmatched, placeholder)
		}
	}
	return result
}
