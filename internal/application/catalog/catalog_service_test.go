package catalog

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
)

func newCatalogFixture(t *testing.T) (*MockMerchantRepository, *CatalogService, *merchant.Merchant) {
	t.Helper()

	m, err := merchant.NewMerchant(testShop, "token-123")
	require.NoError(t, err)

	repo := new(MockMerchantRepository)
	service := NewCatalogService(CatalogServiceConfig{
		MerchantRepo: repo,
		Logger:       zap.NewNop(),
	})
	return repo, service, m
}

func TestListProducts(t *testing.T) {
	t.Run("returns matched and unmatched collections", func(t *testing.T) {
		repo, service, m := newCatalogFixture(t)
		matched, err := catalog.NewMatchedProduct(100, testSourceURL, "variant-1")
		require.NoError(t, err)
		m.MatchedProducts = append(m.MatchedProducts, *matched)
		m.UnmatchedProducts = append(m.UnmatchedProducts, catalog.UnmatchedProduct{
			ID:                   uuid.New(),
			MarketplaceProductID: 200,
			MarketplaceURL:       testSourceURL,
			Name:                 "Oak Shelf",
		})
		repo.On("FindByShop", mock.Anything, testShop).Return(m, nil)

		gotMatched, err := service.ListMatchedProducts(context.Background(), testShop)
		require.NoError(t, err)
		require.Len(t, gotMatched, 1)
		assert.Equal(t, int64(100), gotMatched[0].MarketplaceProductID)

		gotUnmatched, err := service.ListUnmatchedProducts(context.Background(), testShop)
		require.NoError(t, err)
		require.Len(t, gotUnmatched, 1)
		assert.Equal(t, "Oak Shelf", gotUnmatched[0].Name)
	})

	t.Run("unknown shop", func(t *testing.T) {
		repo, service, _ := newCatalogFixture(t)
		repo.On("FindByShop", mock.Anything, "ghost.example.com").Return(nil, shared.ErrNotFound)

		_, err := service.ListMatchedProducts(context.Background(), "ghost.example.com")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestAddMatchedProduct(t *testing.T) {
	input := MatchedProductInput{
		MarketplaceProductID: 100,
		MarketplaceURL:       testSourceURL,
		StorefrontVariantID:  "variant-1",
		Name:                 "Oak Shelf",
		QuantityPerUnit:      2,
	}

	t.Run("persists the mapping", func(t *testing.T) {
		repo, service, m := newCatalogFixture(t)
		repo.On("FindByShop", mock.Anything, testShop).Return(m, nil)
		repo.On("Save", mock.Anything, m).Return(nil)

		product, err := service.AddMatchedProduct(context.Background(), testShop, input)

		require.NoError(t, err)
		assert.Equal(t, 2, product.QuantityPerUnit)
		require.Len(t, m.MatchedProducts, 1)
		assert.Equal(t, "variant-1", m.MatchedProducts[0].StorefrontVariantID)
		repo.AssertExpectations(t)
	})

	t.Run("key already matched", func(t *testing.T) {
		repo, service, m := newCatalogFixture(t)
		existing, err := catalog.NewMatchedProduct(100, testSourceURL, "variant-9")
		require.NoError(t, err)
		m.MatchedProducts = append(m.MatchedProducts, *existing)
		repo.On("FindByShop", mock.Anything, testShop).Return(m, nil)

		_, err = service.AddMatchedProduct(context.Background(), testShop, input)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONFLICT", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestUpdateMatchedProduct(t *testing.T) {
	t.Run("replaces the mapping fields", func(t *testing.T) {
		repo, service, m := newCatalogFixture(t)
		existing, err := catalog.NewMatchedProduct(100, testSourceURL, "variant-1")
		require.NoError(t, err)
		m.MatchedProducts = append(m.MatchedProducts, *existing)
		repo.On("FindByShop", mock.Anything, testShop).Return(m, nil)
		repo.On("Save", mock.Anything, m).Return(nil)

		updated, err := service.UpdateMatchedProduct(context.Background(), testShop, existing.ID, MatchedProductInput{
			MarketplaceProductID: 100,
			MarketplaceURL:       testSourceURL,
			StorefrontVariantID:  "variant-2",
			QuantityPerUnit:      6,
		})

		require.NoError(t, err)
		assert.Equal(t, existing.ID, updated.ID)
		require.Len(t, m.MatchedProducts, 1)
		assert.Equal(t, "variant-2", m.MatchedProducts[0].StorefrontVariantID)
		assert.Equal(t, 6, m.MatchedProducts[0].QuantityPerUnit)
		repo.AssertExpectations(t)
	})

	t.Run("unknown mapping", func(t *testing.T) {
		repo, service, m := newCatalogFixture(t)
		repo.On("FindByShop", mock.Anything, testShop).Return(m, nil)

		_, err := service.UpdateMatchedProduct(context.Background(), testShop, uuid.New(), MatchedProductInput{
			MarketplaceProductID: 100,
			MarketplaceURL:       testSourceURL,
			StorefrontVariantID:  "variant-1",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestRemoveMatchedProduct(t *testing.T) {
	t.Run("removes the mapping", func(t *testing.T) {
		repo, service, m := newCatalogFixture(t)
		matched, err := catalog.NewMatchedProduct(100, testSourceURL, "variant-1")
		require.NoError(t, err)
		m.MatchedProducts = append(m.MatchedProducts, *matched)
		repo.On("FindByShop", mock.Anything, testShop).Return(m, nil)
		repo.On("Save", mock.Anything, m).Return(nil)

		err = service.RemoveMatchedProduct(context.Background(), testShop, matched.ID)

		require.NoError(t, err)
		assert.Empty(t, m.MatchedProducts)
		repo.AssertExpectations(t)
	})

	t.Run("unknown mapping", func(t *testing.T) {
		repo, service, m := newCatalogFixture(t)
		repo.On("FindByShop", mock.Anything, testShop).Return(m, nil)

		err := service.RemoveMatchedProduct(context.Background(), testShop, uuid.New())

		assert.ErrorIs(t, err, shared.ErrNotFound)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
