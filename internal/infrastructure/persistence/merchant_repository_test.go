package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orderlink/backend/internal/domain/catalog"
	"github.com/orderlink/backend/internal/domain/merchant"
	"github.com/orderlink/backend/internal/domain/shared"
	"github.com/orderlink/backend/internal/infrastructure/persistence/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.MerchantModel{}, &models.CustomerDataRequestModel{}))
	return db
}

func newTestMerchant(t *testing.T) *merchant.Merchant {
	t.Helper()
	m, err := merchant.NewMerchant("demo.storefront.example", "token-123")
	require.NoError(t, err)
	return m
}

func TestGormMerchantRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormMerchantRepository(newTestDB(t))

	m := newTestMerchant(t)
	source, err := catalog.NewSource("https://seller.marketplace.example", "api-key")
	require.NoError(t, err)
	require.NoError(t, m.AddSource(*source))

	order, err := merchant.NewOrder(9001, source.MarketplaceURL, "invoice", merchant.Customer{Email: "buyer@example.com"})
	require.NoError(t, err)
	require.NoError(t, m.AddOrder(*order))

	require.NoError(t, repo.Save(ctx, m))

	t.Run("by id round trips the aggregate", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, m.ID)
		require.NoError(t, err)

		assert.Equal(t, m.Shop, loaded.Shop)
		assert.Equal(t, m.AccessToken, loaded.AccessToken)
		require.Len(t, loaded.Sources, 1)
		assert.Equal(t, source.MarketplaceURL, loaded.Sources[0].MarketplaceURL)
		require.Len(t, loaded.Orders, 1)
		assert.Equal(t, int64(9001), loaded.Orders[0].MarketplaceOrderID)
		assert.Equal(t, "buyer@example.com", loaded.Orders[0].Customer.Email)
	})

	t.Run("by shop", func(t *testing.T) {
		loaded, err := repo.FindByShop(ctx, "demo.storefront.example")
		require.NoError(t, err)
		assert.Equal(t, m.ID, loaded.ID)
	})

	t.Run("unknown shop returns not found", func(t *testing.T) {
		_, err := repo.FindByShop(ctx, "missing.storefront.example")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("save replaces the whole document", func(t *testing.T) {
		m.RemoveOrder(9001)
		require.NoError(t, repo.Save(ctx, m))

		loaded, err := repo.FindByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Empty(t, loaded.Orders)
		assert.Len(t, loaded.Sources, 1)
	})
}

func TestGormMerchantRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewGormMerchantRepository(newTestDB(t))

	m := newTestMerchant(t)
	require.NoError(t, repo.Save(ctx, m))

	require.NoError(t, repo.Delete(ctx, m.ID))
	_, err := repo.FindByID(ctx, m.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
}

func TestGormMerchantRepository_FindBySourceURL(t *testing.T) {
	ctx := context.Background()
	repo := NewGormMerchantRepository(newTestDB(t))

	m := newTestMerchant(t)
	source, err := catalog.NewSource("https://seller.marketplace.example", "api-key")
	require.NoError(t, err)
	require.NoError(t, m.AddSource(*source))
	require.NoError(t, repo.Save(ctx, m))

	other, err := merchant.NewMerchant("other.storefront.example", "token-456")
	require.NoError(t, err)
	otherSource, err := catalog.NewSource("https://another.marketplace.example", "api-key-2")
	require.NoError(t, err)
	require.NoError(t, other.AddSource(*otherSource))
	require.NoError(t, repo.Save(ctx, other))

	t.Run("resolves the owning merchant", func(t *testing.T) {
		loaded, err := repo.FindBySourceURL(ctx, "https://seller.marketplace.example")
		require.NoError(t, err)
		assert.Equal(t, m.ID, loaded.ID)
	})

	t.Run("unclaimed store returns not found", func(t *testing.T) {
		_, err := repo.FindBySourceURL(ctx, "https://unclaimed.marketplace.example")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("counts other claimants", func(t *testing.T) {
		count, err := repo.CountBySourceURLExcludingShop(ctx, "https://seller.marketplace.example", "other.storefront.example")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		count, err = repo.CountBySourceURLExcludingShop(ctx, "https://seller.marketplace.example", m.Shop)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestSourcePredicate(t *testing.T) {
	clause, arg := sourcePredicate("postgres", "https://seller.marketplace.example")
	assert.Equal(t, "sources @> ?", clause)
	assert.Equal(t, `[{"marketplace_url":"https://seller.marketplace.example"}]`, arg)

	clause, arg = sourcePredicate("sqlite", "https://seller.marketplace.example")
	assert.Contains(t, clause, "json_each(sources)")
	assert.Equal(t, "https://seller.marketplace.example", arg)
}
