package integration

import (
	"context"
	"errors"
)

var (
	// Marketplace platform errors
	ErrMarketplaceRequestFailed   = errors.New("integration: marketplace request failed")
	ErrMarketplaceInvalidResponse = errors.New("integration: invalid marketplace response")
	ErrMarketplaceAuthFailed      = errors.New("integration: marketplace authentication failed")
	ErrWebhookNotFound            = errors.New("integration: marketplace webhook not found")
)

// MarketplaceCredentials identify the marketplace store an API call runs
// against.
type MarketplaceCredentials struct {
	StoreURL string
	APIKey   string
}

// WebhookRegistration is the remote side of a source's webhook subscription.
type WebhookRegistration struct {
	ID     string
	Secret string
}

// MarketplaceProduct is a product listed on the marketplace store, as
// returned by its catalog API.
type MarketplaceProduct struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Images []string `json:"images"`
}

// ProductPage is one page of a marketplace store's catalog. Total carries
// the store-wide product count so callers can render pagination.
type ProductPage struct {
	Products []MarketplaceProduct `json:"products"`
	Total    int                  `json:"total"`
}

// MarketplaceClient is the port to a marketplace store's API.
type MarketplaceClient interface {
	// RegisterWebhook subscribes the callback URL to order events, signing
	// deliveries with the returned secret
	RegisterWebhook(ctx context.Context, creds MarketplaceCredentials, callbackURL, secret string) (WebhookRegistration, error)
	// DeleteWebhook removes a webhook subscription from the store
	DeleteWebhook(ctx context.Context, creds MarketplaceCredentials, webhookID string) error
	// ListProducts fetches one page of the store's product catalog. Pages
	// are 1-based.
	ListProducts(ctx context.Context, creds MarketplaceCredentials, page int) (ProductPage, error)
}
