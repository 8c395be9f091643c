// Package marketplace talks to a connected marketplace store's site API.
package marketplace

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/orderlink/backend/internal/domain/integration"
)

const (
	// maxResponseSize limits response bodies to prevent memory exhaustion
	maxResponseSize = 4 * 1024 * 1024

	apiKeyHeader = "X-Api-Key"
)

// webhookEvents are the order topics every source subscribes to.
var webhookEvents = []string{"order_created", "order_updated"}

// Client implements integration.MarketplaceClient over the store's REST API.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a marketplace API client
func NewClient(logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// NewWebhookSecret generates the shared secret a source signs its
// deliveries with.
func NewWebhookSecret() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("marketplace: failed to generate webhook secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

type createWebhookRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret"`
}

type createWebhookResponse struct {
	ID string `json:"id"`
}

type listProductsResponse struct {
	Items      []integration.MarketplaceProduct `json:"items"`
	TotalCount int                              `json:"totalCount"`
}

// RegisterWebhook subscribes the callback URL to order events on the store
func (c *Client) RegisterWebhook(ctx context.Context, creds integration.MarketplaceCredentials, callbackURL, secret string) (integration.WebhookRegistration, error) {
	payload := createWebhookRequest{
		URL:    callbackURL,
		Events: webhookEvents,
		Secret: secret,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return integration.WebhookRegistration{}, fmt.Errorf("marketplace: failed to marshal request: %w", err)
	}

	respBody, err := c.doRequest(ctx, creds, http.MethodPost, "/api/site/webhooks", body)
	if err != nil {
		return integration.WebhookRegistration{}, err
	}

	var created createWebhookResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return integration.WebhookRegistration{}, fmt.Errorf("%w: %v", integration.ErrMarketplaceInvalidResponse, err)
	}
	if created.ID == "" {
		return integration.WebhookRegistration{}, integration.ErrMarketplaceInvalidResponse
	}

	c.logger.Info("Marketplace webhook registered",
		zap.String("store_url", creds.StoreURL),
		zap.String("webhook_id", created.ID),
	)
	return integration.WebhookRegistration{ID: created.ID, Secret: secret}, nil
}

// DeleteWebhook removes a webhook subscription from the store
func (c *Client) DeleteWebhook(ctx context.Context, creds integration.MarketplaceCredentials, webhookID string) error {
	_, err := c.doRequest(ctx, creds, http.MethodDelete, "/api/site/webhooks/"+webhookID, nil)
	return err
}

// productPageLimit is the page size of the store's catalog API.
const productPageLimit = 10

// ListProducts fetches one page of the store's product catalog
func (c *Client) ListProducts(ctx context.Context, creds integration.MarketplaceCredentials, page int) (integration.ProductPage, error) {
	if page < 1 {
		page = 1
	}
	skip := (page - 1) * productPageLimit
	path := fmt.Sprintf("/api/site/products?limit=%d&skip=%d", productPageLimit, skip)

	respBody, err := c.doRequest(ctx, creds, http.MethodGet, path, nil)
	if err != nil {
		return integration.ProductPage{}, err
	}

	var listed listProductsResponse
	if err := json.Unmarshal(respBody, &listed); err != nil {
		return integration.ProductPage{}, fmt.Errorf("%w: %v", integration.ErrMarketplaceInvalidResponse, err)
	}
	return integration.ProductPage{Products: listed.Items, Total: listed.TotalCount}, nil
}

// doRequest issues one API call against the store and returns the body
func (c *Client) doRequest(ctx context.Context, creds integration.MarketplaceCredentials, method, path string, body []byte) ([]byte, error) {
	url := strings.TrimSuffix(creds.StoreURL, "/") + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("marketplace: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, creds.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrMarketplaceRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("marketplace: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, integration.ErrMarketplaceAuthFailed
	case resp.StatusCode == http.StatusNotFound:
		return nil, integration.ErrWebhookNotFound
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrMarketplaceRequestFailed, resp.StatusCode)
	}
	return respBody, nil
}
