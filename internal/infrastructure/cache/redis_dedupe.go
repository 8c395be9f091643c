package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orderlink/backend/internal/infrastructure/config"
)

// RedisDeliveryDedupe shares delivery state across instances through Redis.
type RedisDeliveryDedupe struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisDeliveryDedupe connects to Redis and verifies the connection
func NewRedisDeliveryDedupe(cfg config.RedisConfig) (*RedisDeliveryDedupe, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisDeliveryDedupe{
		client:    client,
		keyPrefix: "webhook:delivery:",
	}, nil
}

// NewRedisDeliveryDedupeWithClient wraps an existing client, useful for
// testing or when sharing a client across components
func NewRedisDeliveryDedupeWithClient(client *redis.Client, keyPrefix string) *RedisDeliveryDedupe {
	if keyPrefix == "" {
		keyPrefix = "webhook:delivery:"
	}
	return &RedisDeliveryDedupe{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed records a delivery fingerprint. SETNX makes the check and
// the write one atomic operation.
func (s *RedisDeliveryDedupe) MarkProcessed(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetNX(ctx, s.keyPrefix+fingerprint, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark delivery as processed: %w", err)
	}
	return result, nil
}

// Forget releases a delivery fingerprint
func (s *RedisDeliveryDedupe) Forget(ctx context.Context, fingerprint string) error {
	if err := s.client.Del(ctx, s.keyPrefix+fingerprint).Err(); err != nil {
		return fmt.Errorf("failed to release delivery fingerprint: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisDeliveryDedupe) Close() error {
	return s.client.Close()
}
