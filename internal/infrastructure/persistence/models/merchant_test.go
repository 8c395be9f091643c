package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderlink/backend/internal/domain/catalog"
	"github.com/orderlink/backend/internal/domain/merchant"
	"github.com/orderlink/backend/internal/domain/privacy"
)

func TestMerchantModelConversion(t *testing.T) {
	t.Run("round trips collections", func(t *testing.T) {
		agg, err := merchant.NewMerchant("demo.storefront.example", "token-123")
		require.NoError(t, err)

		source, err := catalog.NewSource("https://seller.marketplace.example", "api-key")
		require.NoError(t, err)
		source.AttachWebhook("wh-1", "secret-1")
		require.NoError(t, agg.AddSource(*source))

		mapping, err := catalog.NewMatchedProduct(100, source.MarketplaceURL, "gid://storefront/ProductVariant/1")
		require.NoError(t, err)
		agg.MatchedProducts = append(agg.MatchedProducts, *mapping)

		var model MerchantModel
		require.NoError(t, model.FromDomain(agg))

		restored := model.ToDomain()
		assert.Equal(t, agg.ID, restored.ID)
		assert.Equal(t, agg.Shop, restored.Shop)
		require.Len(t, restored.Sources, 1)
		assert.Equal(t, "secret-1", restored.Sources[0].WebhookSecret)
		require.Len(t, restored.MatchedProducts, 1)
		assert.Equal(t, int64(100), restored.MatchedProducts[0].MarketplaceProductID)
		assert.Empty(t, restored.Orders)
	})

	t.Run("empty collections serialize as empty arrays", func(t *testing.T) {
		agg, err := merchant.NewMerchant("demo.storefront.example", "token-123")
		require.NoError(t, err)

		var model MerchantModel
		require.NoError(t, model.FromDomain(agg))

		assert.Equal(t, "[]", model.SourcesJSON)
		assert.Equal(t, "[]", model.OrdersJSON)
		assert.Equal(t, "[]", model.MatchedProductsJSON)
		assert.Equal(t, "[]", model.UnmatchedProductsJSON)
	})
}

func TestCustomerDataRequestModelConversion(t *testing.T) {
	request, err := privacy.NewCustomerDataRequest("demo.storefront.example", 77, "buyer@example.com", []int64{9001, 9002})
	require.NoError(t, err)
	request.Fulfill()

	var model CustomerDataRequestModel
	require.NoError(t, model.FromDomain(request))
	assert.Equal(t, "FULFILLED", model.Status)

	restored := model.ToDomain()
	assert.Equal(t, request.ID, restored.ID)
	assert.Equal(t, []int64{9001, 9002}, restored.OrderIDs)
	require.NotNil(t, restored.FulfilledAt)
	assert.WithinDuration(t, time.Now(), *restored.FulfilledAt, time.Minute)
	assert.NotEqual(t, uuid.Nil, restored.ID)
}
