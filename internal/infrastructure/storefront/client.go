// Package storefront talks to the storefront platform's admin APIs. Draft
// order mutations go through GraphQL, payment settlement through REST.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/orderlink/backend/internal/domain/integration"
	"github.com/orderlink/backend/internal/domain/merchant"
	"github.com/orderlink/backend/internal/infrastructure/config"
)

const (
	// maxResponseSize limits response bodies to prevent memory exhaustion
	maxResponseSize = 4 * 1024 * 1024

	accessTokenHeader = "X-Storefront-Access-Token"

	// settlement transactions are marked external because payment was
	// collected on the marketplace, not by the storefront
	settlementSource = "external"
	settlementKind   = "sale"
)

const draftOrderCreateMutation = `
mutation draftOrderCreate($input: DraftOrderInput!) {
  draftOrderCreate(input: $input) {
    draftOrder { id }
    userErrors { field message }
  }
}`

const draftOrderUpdateMutation = `
mutation draftOrderUpdate($id: ID!, $input: DraftOrderInput!) {
  draftOrderUpdate(id: $id, input: $input) {
    draftOrder { id }
    userErrors { field message }
  }
}`

const draftOrderCompleteMutation = `
mutation draftOrderComplete($id: ID!) {
  draftOrderComplete(id: $id, paymentPending: true) {
    draftOrder { id order { id } }
    userErrors { field message }
  }
}`

// Client implements integration.DraftOrderClient against the storefront
// admin API.
type Client struct {
	httpClient *http.Client
	apiVersion string
	logger     *zap.Logger

	// baseURL overrides the per-shop URL, used by tests
	baseURL string
}

// NewClient creates a storefront API client
func NewClient(cfg config.StorefrontConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiVersion: cfg.APIVersion,
		logger:     logger,
	}
}

// NewClientWithBaseURL creates a client that sends every request to baseURL
// instead of the shop domain. Test use only.
func NewClientWithBaseURL(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		apiVersion: "test",
		logger:     logger,
		baseURL:    baseURL,
	}
}

// CreateDraftOrder creates a draft order and returns its id
func (c *Client) CreateDraftOrder(ctx context.Context, creds integration.StorefrontCredentials, input integration.DraftOrderInput) (string, error) {
	variables := map[string]any{"input": buildDraftOrderInput(input)}

	var data draftOrderCreateData
	if err := c.mutate(ctx, creds, draftOrderCreateMutation, variables, &data); err != nil {
		return "", err
	}
	if err := checkUserErrors(data.DraftOrderCreate.UserErrors); err != nil {
		return "", err
	}
	if data.DraftOrderCreate.DraftOrder.ID == "" {
		return "", integration.ErrStorefrontInvalidResponse
	}

	c.logger.Info("Draft order created",
		zap.String("shop", creds.Shop),
		zap.String("draft_order_id", data.DraftOrderCreate.DraftOrder.ID),
	)
	return data.DraftOrderCreate.DraftOrder.ID, nil
}

// UpdateDraftOrder replaces the line items of an open draft order
func (c *Client) UpdateDraftOrder(ctx context.Context, creds integration.StorefrontCredentials, draftOrderID string, input integration.DraftOrderInput) (string, error) {
	variables := map[string]any{
		"id":    draftOrderID,
		"input": buildDraftOrderInput(input),
	}

	var data draftOrderUpdateData
	if err := c.mutate(ctx, creds, draftOrderUpdateMutation, variables, &data); err != nil {
		return "", err
	}
	if err := checkUserErrors(data.DraftOrderUpdate.UserErrors); err != nil {
		return "", err
	}
	if data.DraftOrderUpdate.DraftOrder.ID == "" {
		return "", integration.ErrStorefrontInvalidResponse
	}
	return data.DraftOrderUpdate.DraftOrder.ID, nil
}

// CompleteDraftOrder completes the draft with payment pending and settles
// the resulting order through a REST sale transaction carrying the
// marketplace payment method as gateway
func (c *Client) CompleteDraftOrder(ctx context.Context, creds integration.StorefrontCredentials, draftOrderID, paymentMethod string) (string, error) {
	variables := map[string]any{"id": draftOrderID}

	var data draftOrderCompleteData
	if err := c.mutate(ctx, creds, draftOrderCompleteMutation, variables, &data); err != nil {
		return "", err
	}
	if err := checkUserErrors(data.DraftOrderComplete.UserErrors); err != nil {
		return "", err
	}
	orderID := data.DraftOrderComplete.DraftOrder.Order.ID
	if orderID == "" {
		return "", integration.ErrStorefrontInvalidResponse
	}

	if err := c.settleOrder(ctx, creds, orderID, paymentMethod); err != nil {
		return "", err
	}

	c.logger.Info("Draft order completed and settled",
		zap.String("shop", creds.Shop),
		zap.String("draft_order_id", draftOrderID),
		zap.String("order_id", orderID),
		zap.String("gateway", paymentMethod),
	)
	return orderID, nil
}

// settleOrder posts the sale transaction against the completed order
func (c *Client) settleOrder(ctx context.Context, creds integration.StorefrontCredentials, orderGID, paymentMethod string) error {
	payload := transactionRequest{
		Transaction: transactionBody{
			Kind:    settlementKind,
			Gateway: paymentMethod,
			Source:  settlementSource,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("storefront: failed to marshal transaction: %w", err)
	}

	url := c.restURL(creds.Shop, fmt.Sprintf("orders/%s/transactions.json", StripGID(orderGID)))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("storefront: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(accessTokenHeader, creds.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrStorefrontRequestFailed, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return integration.ErrStorefrontAuthFailed
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: HTTP %d", integration.ErrStorefrontRequestFailed, resp.StatusCode)
	}
	return nil
}

// mutate runs a GraphQL mutation and decodes its data envelope
func (c *Client) mutate(ctx context.Context, creds integration.StorefrontCredentials, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("storefront: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL(creds.Shop), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("storefront: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(accessTokenHeader, creds.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrStorefrontRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("storefront: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return integration.ErrStorefrontAuthFailed
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: HTTP %d", integration.ErrStorefrontRequestFailed, resp.StatusCode)
	}

	var envelope graphqlResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrStorefrontInvalidResponse, err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("%w: %s", integration.ErrStorefrontRequestFailed, envelope.Errors[0].Message)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrStorefrontInvalidResponse, err)
	}
	return nil
}

func (c *Client) graphqlURL(shop string) string {
	if c.baseURL != "" {
		return c.baseURL + "/graphql.json"
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shop, c.apiVersion)
}

func (c *Client) restURL(shop, path string) string {
	if c.baseURL != "" {
		return c.baseURL + "/" + path
	}
	return fmt.Sprintf("https://%s/admin/api/%s/%s", shop, c.apiVersion, path)
}

// buildDraftOrderInput renders the domain input as the platform input object
func buildDraftOrderInput(input integration.DraftOrderInput) map[string]any {
	lineItems := make([]lineItemInput, 0, len(input.Items))
	for _, item := range input.Items {
		li := lineItemInput{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		}
		if item.DiscountValue != "" && item.DiscountValue != "0" {
			li.AppliedDiscount = &appliedDiscountInput{
				ValueType: item.DiscountType,
				Value:     item.DiscountValue,
			}
		}
		lineItems = append(lineItems, li)
	}

	result := map[string]any{
		"lineItems":       lineItems,
		"email":           input.Customer.Email,
		"billingAddress":  buildAddressInput(input.Customer.BillingAddress),
		"shippingAddress": buildAddressInput(input.Customer.ShippingAddress),
	}
	if input.Customer.ShippingLine.Title != "" {
		result["shippingLine"] = shippingLineInput{
			Title: input.Customer.ShippingLine.Title,
			Price: input.Customer.ShippingLine.Price.String(),
		}
	}
	return result
}

func buildAddressInput(addr merchant.Address) addressInput {
	return addressInput{
		FirstName: addr.FirstName,
		LastName:  addr.LastName,
		Address1:  addr.Address1,
		Address2:  addr.Address2,
		City:      addr.City,
		Province:  addr.Province,
		Zip:       addr.Zip,
		Country:   addr.Country,
		Phone:     addr.Phone,
	}
}

// checkUserErrors turns mutation-level validation failures into hard errors
func checkUserErrors(errs []userError) error {
	if len(errs) == 0 {
		return nil
	}
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Message)
	}
	return fmt.Errorf("%w: %s", integration.ErrStorefrontUserErrors, strings.Join(messages, "; "))
}

// StripGID extracts the trailing numeric id from a platform gid, e.g.
// gid://storefront/Order/123 becomes 123. Plain ids pass through unchanged.
func StripGID(gid string) string {
	if idx := strings.LastIndex(gid, "/"); idx >= 0 {
		return gid[idx+1:]
	}
	return gid
}
