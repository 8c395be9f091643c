// Package cache holds the webhook delivery deduplication stores.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// DeliveryDedupe remembers which webhook deliveries have been processed.
// Marketplace stores redeliver on slow responses, so a delivery seen twice
// inside the TTL must be acknowledged without side effects.
type DeliveryDedupe interface {
	// MarkProcessed records a delivery fingerprint. Returns true if the
	// delivery is new, false if it was already processed.
	MarkProcessed(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error)
	// Forget releases a fingerprint so the delivery can be retried. Called
	// when processing fails after the mark was taken.
	Forget(ctx context.Context, fingerprint string) error
	// Close releases store resources
	Close() error
}

// Fingerprint derives the dedupe key of a delivery from its source, topic
// and raw body.
func Fingerprint(sourceURL, topic string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(sourceURL))
	h.Write([]byte{0})
	h.Write([]byte(topic))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type entry struct {
	expiresAt time.Time
}

// InMemoryDeliveryDedupe keeps fingerprints in a map. Suitable for
// single-instance deployments and testing.
type InMemoryDeliveryDedupe struct {
	mu        sync.Mutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryDeliveryDedupe creates the store and starts its cleanup loop
func NewInMemoryDeliveryDedupe() *InMemoryDeliveryDedupe {
	store := &InMemoryDeliveryDedupe{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}
	store.wg.Add(1)
	go store.cleanupLoop()
	return store
}

// MarkProcessed records a delivery fingerprint
func (s *InMemoryDeliveryDedupe) MarkProcessed(_ context.Context, fingerprint string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[fingerprint]; exists && time.Now().Before(e.expiresAt) {
		return false, nil
	}
	s.entries[fingerprint] = entry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// Forget releases a delivery fingerprint
func (s *InMemoryDeliveryDedupe) Forget(_ context.Context, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, fingerprint)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryDeliveryDedupe) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryDeliveryDedupe) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryDeliveryDedupe) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for fingerprint, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, fingerprint)
		}
	}
}
