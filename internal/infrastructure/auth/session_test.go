package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderlink/backend/internal/infrastructure/config"
)

func testService(expiration time.Duration) *SessionService {
	return NewSessionService(config.SessionConfig{
		Secret:     "test-secret-test-secret-test-secret",
		Expiration: expiration,
		Issuer:     "orderlink-test",
	})
}

func TestSessionService(t *testing.T) {
	t.Run("round trips the shop", func(t *testing.T) {
		svc := testService(time.Hour)

		token, err := svc.Generate("demo.storefront.example")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		shop, err := svc.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "demo.storefront.example", shop)
	})

	t.Run("rejects empty shop", func(t *testing.T) {
		_, err := testService(time.Hour).Generate("")
		assert.ErrorIs(t, err, ErrMissingShop)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		svc := testService(-time.Minute)
		token, err := svc.Generate("demo.storefront.example")
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		token, err := testService(time.Hour).Generate("demo.storefront.example")
		require.NoError(t, err)

		other := NewSessionService(config.SessionConfig{Secret: "other-secret", Expiration: time.Hour})
		_, err = other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := testService(time.Hour).Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
