package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orderlink/backend/internal/domain/catalog"
	"github.com/orderlink/backend/internal/domain/merchant"
	"github.com/orderlink/backend/internal/domain/shared"
	"github.com/orderlink/backend/internal/infrastructure/scheduler"
)

func completionFixture(t *testing.T) (*CompletionService, *MockMerchantRepository, *MockDraftOrderClient, *merchant.Merchant) {
	t.Helper()
	m, err := merchant.NewMerchant("demo.storefront.example", "token-123")
	require.NoError(t, err)

	repo := new(MockMerchantRepository)
	client := new(MockDraftOrderClient)
	return NewCompletionService(repo, client, zap.NewNop()), repo, client, m
}

func armedOrder(t *testing.T, draftID string) *merchant.Order {
	t.Helper()
	order, err := merchant.NewOrder(9001, testSourceURL, "marketplace_invoice", merchant.Customer{})
	require.NoError(t, err)
	mapping, err := catalog.NewMatchedProduct(100, testSourceURL, "gid://storefront/ProductVariant/1")
	require.NoError(t, err)
	order.MatchedItems = []catalog.MatchedLineItem{{Quantity: 2, Product: *mapping}}
	if draftID != "" {
		require.NoError(t, order.AttachDraft(draftID))
	}
	return order
}

func TestCompletionServiceExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("completes the draft and removes the order", func(t *testing.T) {
		service, repo, client, m := completionFixture(t)
		require.NoError(t, m.AddOrder(*armedOrder(t, "gid://storefront/DraftOrder/42")))

		repo.On("FindByID", mock.Anything, m.ID).Return(m, nil)
		repo.On("Save", mock.Anything, m).Return(nil)
		client.On("CompleteDraftOrder", mock.Anything, mock.Anything, "gid://storefront/DraftOrder/42", "marketplace_invoice").
			Return("gid://storefront/Order/314", nil)

		job := scheduler.NewOrderJob(scheduler.JobKindCompleteDraft, m.ID, 9001)
		require.NoError(t, service.Execute(ctx, job))

		assert.Nil(t, m.FindOrder(9001))
		repo.AssertExpectations(t)
		client.AssertExpectations(t)
	})

	t.Run("merchant gone is a silent exit", func(t *testing.T) {
		service, repo, client, m := completionFixture(t)
		repo.On("FindByID", mock.Anything, m.ID).Return(nil, shared.ErrNotFound)

		job := scheduler.NewOrderJob(scheduler.JobKindCompleteDraft, m.ID, 9001)
		require.NoError(t, service.Execute(ctx, job))
		client.AssertNotCalled(t, "CompleteDraftOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("order gone is a silent exit", func(t *testing.T) {
		service, repo, client, m := completionFixture(t)
		repo.On("FindByID", mock.Anything, m.ID).Return(m, nil)

		job := scheduler.NewOrderJob(scheduler.JobKindCompleteDraft, m.ID, 9001)
		require.NoError(t, service.Execute(ctx, job))
		client.AssertNotCalled(t, "CompleteDraftOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("order no longer fully matched aborts quietly", func(t *testing.T) {
		service, repo, client, m := completionFixture(t)
		order := armedOrder(t, "gid://storefront/DraftOrder/42")
		order.UnmatchedItems = []catalog.UnmatchedLineItem{{
			Quantity: 1,
			Product:  catalog.UnmatchedProduct{ID: uuid.New(), MarketplaceProductID: 300, MarketplaceURL: testSourceURL},
		}}
		require.NoError(t, m.AddOrder(*order))
		repo.On("FindByID", mock.Anything, m.ID).Return(m, nil)

		job := scheduler.NewOrderJob(scheduler.JobKindCompleteDraft, m.ID, 9001)
		require.NoError(t, service.Execute(ctx, job))

		assert.NotNil(t, m.FindOrder(9001))
		client.AssertNotCalled(t, "CompleteDraftOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("create and complete opens the draft first", func(t *testing.T) {
		service, repo, client, m := completionFixture(t)
		require.NoError(t, m.AddOrder(*armedOrder(t, "")))

		repo.On("FindByID", mock.Anything, m.ID).Return(m, nil)
		repo.On("Save", mock.Anything, m).Return(nil)
		client.On("CreateDraftOrder", mock.Anything, mock.Anything, mock.Anything).Return("gid://storefront/DraftOrder/55", nil)
		client.On("CompleteDraftOrder", mock.Anything, mock.Anything, "gid://storefront/DraftOrder/55", "marketplace_invoice").
			Return("gid://storefront/Order/314", nil)

		job := scheduler.NewOrderJob(scheduler.JobKindCreateAndComplete, m.ID, 9001)
		require.NoError(t, service.Execute(ctx, job))

		assert.Nil(t, m.FindOrder(9001))
		client.AssertExpectations(t)
	})

	t.Run("update and complete refreshes the draft first", func(t *testing.T) {
		service, repo, client, m := completionFixture(t)
		require.NoError(t, m.AddOrder(*armedOrder(t, "gid://storefront/DraftOrder/42")))

		repo.On("FindByID", mock.Anything, m.ID).Return(m, nil)
		repo.On("Save", mock.Anything, m).Return(nil)
		client.On("UpdateDraftOrder", mock.Anything, mock.Anything, "gid://storefront/DraftOrder/42", mock.Anything).
			Return("gid://storefront/DraftOrder/42", nil)
		client.On("CompleteDraftOrder", mock.Anything, mock.Anything, "gid://storefront/DraftOrder/42", "marketplace_invoice").
			Return("gid://storefront/Order/314", nil)

		job := scheduler.NewOrderJob(scheduler.JobKindUpdateAndComplete, m.ID, 9001)
		require.NoError(t, service.Execute(ctx, job))
		client.AssertExpectations(t)
	})

	t.Run("complete draft with no draft id is skipped", func(t *testing.T) {
		service, repo, client, m := completionFixture(t)
		require.NoError(t, m.AddOrder(*armedOrder(t, "")))
		repo.On("FindByID", mock.Anything, m.ID).Return(m, nil)

		job := scheduler.NewOrderJob(scheduler.JobKindCompleteDraft, m.ID, 9001)
		require.NoError(t, service.Execute(ctx, job))
		client.AssertNotCalled(t, "CompleteDraftOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("update and complete with no draft id is skipped", func(t *testing.T) {
		service, repo, client, m := completionFixture(t)
		require.NoError(t, m.AddOrder(*armedOrder(t, "")))
		repo.On("FindByID", mock.Anything, m.ID).Return(m, nil)

		job := scheduler.NewOrderJob(scheduler.JobKindUpdateAndComplete, m.ID, 9001)
		require.NoError(t, service.Execute(ctx, job))
		client.AssertNotCalled(t, "UpdateDraftOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		client.AssertNotCalled(t, "CompleteDraftOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed completion keeps the order", func(t *testing.T) {
		service, repo, client, m := completionFixture(t)
		require.NoError(t, m.AddOrder(*armedOrder(t, "gid://storefront/DraftOrder/42")))

		repo.On("FindByID", mock.Anything, m.ID).Return(m, nil)
		client.On("CompleteDraftOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", assert.AnError)

		job := scheduler.NewOrderJob(scheduler.JobKindCompleteDraft, m.ID, 9001)
		require.Error(t, service.Execute(ctx, job))

		assert.NotNil(t, m.FindOrder(9001))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
