package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/orderlink/backend/internal/domain/catalog"
	"github.com/orderlink/backend/internal/domain/merchant"
)

// MerchantModel is the persistence model for the Merchant aggregate. The
// collections are stored as jsonb columns and written back whole on every
// save.
type MerchantModel struct {
	ID                    uuid.UUID `gorm:"type:uuid;primary_key"`
	Shop                  string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_merchant_shop"`
	AccessToken           string    `gorm:"type:varchar(255)"`
	Active                bool      `gorm:"not null;default:true"`
	SourcesJSON           string    `gorm:"type:jsonb;column:sources"`
	MatchedProductsJSON   string    `gorm:"type:jsonb;column:matched_products"`
	UnmatchedProductsJSON string    `gorm:"type:jsonb;column:unmatched_products"`
	OrdersJSON            string    `gorm:"type:jsonb;column:orders"`
	CreatedAt             time.Time `gorm:"not null"`
	UpdatedAt             time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MerchantModel) TableName() string {
	return "merchants"
}

// ToDomain converts the persistence model to a domain Merchant aggregate.
func (m *MerchantModel) ToDomain() *merchant.Merchant {
	agg := &merchant.Merchant{
		ID:          m.ID,
		Shop:        m.Shop,
		AccessToken: m.AccessToken,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	if m.SourcesJSON != "" {
		var sources []catalog.Source
		if err := json.Unmarshal([]byte(m.SourcesJSON), &sources); err == nil {
			agg.Sources = sources
		}
	}
	if m.MatchedProductsJSON != "" {
		var matched []catalog.MatchedProduct
		if err := json.Unmarshal([]byte(m.MatchedProductsJSON), &matched); err == nil {
			agg.MatchedProducts = matched
		}
	}
	if m.UnmatchedProductsJSON != "" {
		var unmatched []catalog.UnmatchedProduct
		if err := json.Unmarshal([]byte(m.UnmatchedProductsJSON), &unmatched); err == nil {
			agg.UnmatchedProducts = unmatched
		}
	}
	if m.OrdersJSON != "" {
		var orders []merchant.Order
		if err := json.Unmarshal([]byte(m.OrdersJSON), &orders); err == nil {
			agg.Orders = orders
		}
	}

	return agg
}

// FromDomain populates the persistence model from a domain Merchant aggregate.
func (m *MerchantModel) FromDomain(agg *merchant.Merchant) error {
	m.ID = agg.ID
	m.Shop = agg.Shop
	m.AccessToken = agg.AccessToken
	m.Active = agg.Active
	m.CreatedAt = agg.CreatedAt
	m.UpdatedAt = agg.UpdatedAt

	sources, err := marshalCollection(agg.Sources)
	if err != nil {
		return err
	}
	m.SourcesJSON = sources

	matched, err := marshalCollection(agg.MatchedProducts)
	if err != nil {
		return err
	}
	m.MatchedProductsJSON = matched

	unmatched, err := marshalCollection(agg.UnmatchedProducts)
	if err != nil {
		return err
	}
	m.UnmatchedProductsJSON = unmatched

	orders, err := marshalCollection(agg.Orders)
	if err != nil {
		return err
	}
	m.OrdersJSON = orders

	return nil
}

// marshalCollection renders a slice as a json array, never as null, so jsonb
// containment queries behave on empty collections
func marshalCollection[T any](items []T) (string, error) {
	if len(items) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
