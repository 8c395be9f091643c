package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/orderlink/backend/internal/domain/integration"
	"github.com/orderlink/backend/internal/domain/merchant"
)

type MockMerchantRepository struct {
	mock.Mock
}

func (m *MockMerchantRepository) FindByID(ctx context.Context, id uuid.UUID) (*merchant.Merchant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*merchant.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) FindByShop(ctx context.Context, shop string) (*merchant.Merchant, error) {
	args := m.Called(ctx, shop)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*merchant.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) FindBySourceURL(ctx context.Context, url string) (*merchant.Merchant, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*merchant.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) CountBySourceURLExcludingShop(ctx context.Context, url, shop string) (int64, error) {
	args := m.Called(ctx, url, shop)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMerchantRepository) Save(ctx context.Context, mer *merchant.Merchant) error {
	args := m.Called(ctx, mer)
	return args.Error(0)
}

func (m *MockMerchantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMarketplaceClient struct {
	mock.Mock
}

func (m *MockMarketplaceClient) RegisterWebhook(ctx context.Context, creds integration.MarketplaceCredentials, callbackURL, secret string) (integration.WebhookRegistration, error) {
	args := m.Called(ctx, creds, callbackURL, secret)
	return args.Get(0).(integration.WebhookRegistration), args.Error(1)
}

func (m *MockMarketplaceClient) DeleteWebhook(ctx context.Context, creds integration.MarketplaceCredentials, webhookID string) error {
	args := m.Called(ctx, creds, webhookID)
	return args.Error(0)
}

func (m *MockMarketplaceClient) ListProducts(ctx context.Context, creds integration.MarketplaceCredentials, page int) (integration.ProductPage, error) {
	args := m.Called(ctx, creds, page)
	return args.Get(0).(integration.ProductPage), args.Error(1)
}
