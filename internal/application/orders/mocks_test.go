package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/orderlink/backend/internal/domain/integration"
	"github.com/orderlink/backend/internal/domain/merchant"
	"github.com/orderlink/backend/internal/infrastructure/scheduler"
)

// MockMerchantRepository is a mock implementation of merchant.Repository
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

func (m *MockMerchantRepository) FindBySourceURL(ctx context.Context, marketplaceURL string) (*merchant.Merchant, error) {
	args := m.Called(ctx, marketplaceURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*merchant.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) CountBySourceURLExcludingShop(ctx context.Context, marketplaceURL, shop string) (int64, error) {
	args := m.Called(ctx, marketplaceURL, shop)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMerchantRepository) Save(ctx context.Context, agg *merchant.Merchant) error {
	args := m.Called(ctx, agg)
	return args.Error(0)
}

func (m *MockMerchantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDraftOrderClient is a mock implementation of integration.DraftOrderClient
type MockDraftOrderClient struct {
	mock.Mock
}

func (m *MockDraftOrderClient) CreateDraftOrder(ctx context.Context, creds integration.StorefrontCredentials, input integration.DraftOrderInput) (string, error) {
	args := m.Called(ctx, creds, input)
	return args.String(0), args.Error(1)
}

func (m *MockDraftOrderClient) UpdateDraftOrder(ctx context.Context, creds integration.StorefrontCredentials, draftOrderID string, input integration.DraftOrderInput) (string, error) {
	args := m.Called(ctx, creds, draftOrderID, input)
	return args.String(0), args.Error(1)
}

func (m *MockDraftOrderClient) CompleteDraftOrder(ctx context.Context, creds integration.StorefrontCredentials, draftOrderID, paymentMethod string) (string, error) {
	args := m.Called(ctx, creds, draftOrderID, paymentMethod)
	return args.String(0), args.Error(1)
}

// MockJobScheduler is a mock implementation of JobScheduler
type MockJobScheduler struct {
	mock.Mock
}

func (m *MockJobScheduler) Schedule(job scheduler.OrderJob, delay time.Duration) error {
	args := m.Called(job, delay)
	return args.Error(0)
}
