// Package catalog holds the operator-facing services for sources and
// product mappings.
package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orderlink/backend/internal/domain/catalog"
	"github.com/orderlink/backend/internal/domain/integration"
	"github.com/orderlink/backend/internal/domain/merchant"
	"github.com/orderlink/backend/internal/domain/shared"
)

// SecretGenerator produces fresh webhook signing secrets.
type SecretGenerator func() (string, error)

// SourceService manages a merchant's marketplace source connections.
type SourceService struct {
	merchantRepo merchant.Repository
	marketplace  integration.MarketplaceClient
	newSecret    SecretGenerator
	publicURL    string
	logger       *zap.Logger
}

// SourceServiceConfig contains configuration for SourceService
type SourceServiceConfig struct {
	MerchantRepo merchant.Repository
	Marketplace  integration.MarketplaceClient
	NewSecret    SecretGenerator
	PublicURL    string
	Logger       *zap.Logger
}

// NewSourceService creates a new SourceService
func NewSourceService(cfg SourceServiceConfig) *SourceService {
	return &SourceService{
		merchantRepo: cfg.MerchantRepo,
		marketplace:  cfg.Marketplace,
		newSecret:    cfg.NewSecret,
		publicURL:    cfg.PublicURL,
		logger:       cfg.Logger,
	}
}

// ConnectSourceInput is the connection request for a marketplace store.
type ConnectSourceInput struct {
	MarketplaceURL string `json:"marketplace_url" binding:"required,marketplace_url"`
	APIKey         string `json:"api_key" binding:"required"`
}

// ConnectSource connects a marketplace store to the merchant: the store is
// claimed, a signing secret is generated and the order webhook is registered
// remotely before anything is persisted. Reconnecting a URL the merchant
// already holds replaces its webhook registration and API key.
func (s *SourceService) ConnectSource(ctx context.Context, shop string, input ConnectSourceInput) (*catalog.Source, error) {
	m, err := s.merchantRepo.FindByShop(ctx, shop)
	if err != nil {
		return nil, err
	}

	// A marketplace store belongs to exactly one merchant
	claimed, err := s.merchantRepo.CountBySourceURLExcludingShop(ctx, input.MarketplaceURL, shop)
	if err != nil {
		return nil, err
	}
	if claimed > 0 {
		return nil, shared.ErrForbidden
	}

	if prior := m.SourceByURL(input.MarketplaceURL); prior != nil {
		if prior.WebhookID != "" {
			if err := s.marketplace.DeleteWebhook(ctx, s.credentials(prior), prior.WebhookID); err != nil {
				return nil, fmt.Errorf("%w: %v", shared.ErrExternalAPI, err)
			}
		}
		if err := m.RemoveSource(prior.ID); err != nil {
			return nil, err
		}
	}

	source, err := catalog.NewSource(input.MarketplaceURL, input.APIKey)
	if err != nil {
		return nil, err
	}

	secret, err := s.newSecret()
	if err != nil {
		return nil, err
	}

	registration, err := s.marketplace.RegisterWebhook(ctx, s.credentials(source), s.callbackURL(), secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrExternalAPI, err)
	}
	source.AttachWebhook(registration.ID, registration.Secret)

	if err := m.AddSource(*source); err != nil {
		return nil, err
	}
	if err := s.merchantRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("Marketplace source connected",
		zap.String("shop", shop),
		zap.String("marketplace_url", source.MarketplaceURL),
		zap.String("webhook_id", source.WebhookID),
	)
	return source, nil
}

// DisconnectSource removes a source. The remote webhook is deleted before
// the local record so a dangling remote registration can never outlive a
// forgotten source.
func (s *SourceService) DisconnectSource(ctx context.Context, shop string, sourceID uuid.UUID) error {
	m, err := s.merchantRepo.FindByShop(ctx, shop)
	if err != nil {
		return err
	}

	var source *catalog.Source
	for i := range m.Sources {
		if m.Sources[i].ID == sourceID {
			source = &m.Sources[i]
			break
		}
	}
	if source == nil {
		return shared.ErrNotFound
	}

	if source.WebhookID != "" {
		if err := s.marketplace.DeleteWebhook(ctx, s.credentials(source), source.WebhookID); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrExternalAPI, err)
		}
	}

	if err := m.RemoveSource(sourceID); err != nil {
		return err
	}
	if err := s.merchantRepo.Save(ctx, m); err != nil {
		return err
	}

	s.logger.Info("Marketplace source disconnected",
		zap.String("shop", shop),
		zap.String("marketplace_url", source.MarketplaceURL),
	)
	return nil
}

// RotateWebhook re-registers a source's webhook under a fresh secret. The
// old registration is deleted first; signatures under the previous secret
// stop verifying the moment the merchant is saved.
func (s *SourceService) RotateWebhook(ctx context.Context, shop string, sourceID uuid.UUID) (*catalog.Source, error) {
	m, err := s.merchantRepo.FindByShop(ctx, shop)
	if err != nil {
		return nil, err
	}

	var source *catalog.Source
	for i := range m.Sources {
		if m.Sources[i].ID == sourceID {
			source = &m.Sources[i]
			break
		}
	}
	if source == nil {
		return nil, shared.ErrNotFound
	}

	if source.WebhookID != "" {
		if err := s.marketplace.DeleteWebhook(ctx, s.credentials(source), source.WebhookID); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrExternalAPI, err)
		}
	}

	secret, err := s.newSecret()
	if err != nil {
		return nil, err
	}
	registration, err := s.marketplace.RegisterWebhook(ctx, s.credentials(source), s.callbackURL(), secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrExternalAPI, err)
	}
	source.AttachWebhook(registration.ID, registration.Secret)

	if err := s.merchantRepo.Save(ctx, m); err != nil {
		return nil, err
	}
	return source, nil
}

// ListSources returns the merchant's connected sources
func (s *SourceService) ListSources(ctx context.Context, shop string) ([]catalog.Source, error) {
	m, err := s.merchantRepo.FindByShop(ctx, shop)
	if err != nil {
		return nil, err
	}
	return m.Sources, nil
}

// ListMarketplaceProducts fetches one page of a source's live product catalog
func (s *SourceService) ListMarketplaceProducts(ctx context.Context, shop string, sourceID uuid.UUID, page int) (integration.ProductPage, error) {
	m, err := s.merchantRepo.FindByShop(ctx, shop)
	if err != nil {
		return integration.ProductPage{}, err
	}

	for i := range m.Sources {
		if m.Sources[i].ID == sourceID {
			products, err := s.marketplace.ListProducts(ctx, s.credentials(&m.Sources[i]), page)
			if err != nil {
				return integration.ProductPage{}, fmt.Errorf("%w: %v", shared.ErrExternalAPI, err)
			}
			return products, nil
		}
	}
	return integration.ProductPage{}, shared.ErrNotFound
}

func (s *SourceService) credentials(source *catalog.Source) integration.MarketplaceCredentials {
	return integration.MarketplaceCredentials{StoreURL: source.MarketplaceURL, APIKey: source.APIKey}
}

func (s *SourceService) callbackURL() string {
	return s.publicURL + "/webhook"
}
