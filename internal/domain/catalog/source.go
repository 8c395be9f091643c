package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/orderlink/backend/internal/domain/shared"
)

// Source is a connected marketplace store. Each source carries its own
// webhook secret so signatures from different stores never verify against
// each other.
type Source struct {
	ID             uuid.UUID `json:"id"`
	MarketplaceURL string    `json:"marketplace_url"`
	APIKey         string    `json:"api_key"`
	WebhookID      string    `json:"webhook_id"`
	WebhookSecret  string    `json:"webhook_secret"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewSource creates a source connection for a marketplace store
func NewSource(marketplaceURL, apiKey string) (*Source, error) {
	if marketplaceURL == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Marketplace URL cannot be empty")
	}
	if apiKey == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "API key cannot be empty")
	}

	now := time.Now()
	return &Source{
		ID:             uuid.New(),
		MarketplaceURL: marketplaceURL,
		APIKey:         apiKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// AttachWebhook records the remote webhook registration on the source.
// Re-registration replaces both the webhook id and the secret, so signatures
// produced with the previous secret stop verifying immediately.
func (s *Source) AttachWebhook(webhookID, secret string) {
	s.WebhookID = webhookID
	s.WebhookSecret = secret
	s.UpdatedAt = time.Now()
}

// DetachWebhook clears the remote webhook registration
func (s *Source) DetachWebhook() {
	s.WebhookID = ""
	s.WebhookSecret = ""
	s.UpdatedAt = time.Now()
}
