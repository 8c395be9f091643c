package orders

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/orderlink/backend/internal/domain/catalog"
	"github.com/orderlink/backend/internal/domain/integration"
	"github.com/orderlink/backend/internal/domain/merchant"
	"github.com/orderlink/backend/internal/domain/shared"
	"github.com/orderlink/backend/internal/infrastructure/cache"
	"github.com/orderlink/backend/internal/infrastructure/scheduler"
	"github.com/orderlink/backend/internal/infrastructure/signature"
)

// JobScheduler arms deferred completion jobs.
type JobScheduler interface {
	Schedule(job scheduler.OrderJob, delay time.Duration) error
}

// WebhookService processes marketplace order webhooks.
type WebhookService struct {
	merchantRepo    merchant.Repository
	dedupe          cache.DeliveryDedupe
	draftClient     integration.DraftOrderClient
	scheduler       JobScheduler
	completionDelay time.Duration
	dedupeTTL       time.Duration
	logger          *zap.Logger
}

// WebhookServiceConfig contains configuration for WebhookService
type WebhookServiceConfig struct {
	MerchantRepo    merchant.Repository
	Dedupe          cache.DeliveryDedupe
	DraftClient     integration.DraftOrderClient
	Scheduler       JobScheduler
	CompletionDelay time.Duration
	DedupeTTL       time.Duration
	Logger          *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	return &WebhookService{
		merchantRepo:    cfg.MerchantRepo,
		dedupe:          cfg.Dedupe,
		draftClient:     cfg.DraftClient,
		scheduler:       cfg.Scheduler,
		completionDelay: cfg.CompletionDelay,
		dedupeTTL:       cfg.DedupeTTL,
		logger:          cfg.Logger,
	}
}

// ProcessRequest is one incoming webhook delivery.
type ProcessRequest struct {
	SourceURL string
	Topic     string
	Signature string
	Body      []byte
}

// ProcessResult reports what a delivery did.
type ProcessResult struct {
	OrderID      int64  `json:"order_id"`
	Topic        string `json:"topic"`
	Duplicate    bool   `json:"duplicate"`
	FullyMatched bool   `json:"fully_matched"`
	DraftOrderID string `json:"draft_order_id,omitempty"`
}

// ProcessWebhook verifies, deduplicates and applies one marketplace order
// delivery.
func (s *WebhookService) ProcessWebhook(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	m, err := s.merchantRepo.FindBySourceURL(ctx, req.SourceURL)
	if err != nil {
		return nil, err
	}
	source := m.SourceByURL(req.SourceURL)
	if source == nil {
		return nil, shared.ErrNotFound
	}

	// Signature is checked against this source's secret only; deliveries
	// signed by another store must never verify.
	if !signature.Verify(signature.MarketplaceScheme, []byte(source.WebhookSecret), req.Body, req.Signature) {
		s.logger.Warn("Webhook signature verification failed",
			zap.String("source_url", req.SourceURL),
			zap.String("topic", req.Topic),
		)
		return nil, shared.ErrUnauthorized
	}

	fingerprint := cache.Fingerprint(req.SourceURL, req.Topic, req.Body)
	fresh, err := s.dedupe.MarkProcessed(ctx, fingerprint, s.dedupeTTL)
	if err != nil {
		return nil, err
	}
	if !fresh {
		s.logger.Info("Duplicate webhook delivery acknowledged",
			zap.String("source_url", req.SourceURL),
			zap.String("topic", req.Topic),
		)
		return &ProcessResult{Topic: req.Topic, Duplicate: true}, nil
	}

	result, err := s.apply(ctx, m, source, req)
	if err != nil {
		// The mark must not outlive a failed delivery: the error response
		// tells the store to redeliver, and that retry has to be processed,
		// not short-circuited as a duplicate.
		if forgetErr := s.dedupe.Forget(ctx, fingerprint); forgetErr != nil {
			s.logger.Error("Failed to release delivery fingerprint",
				zap.String("source_url", req.SourceURL),
				zap.Error(forgetErr),
			)
		}
		return nil, err
	}
	return result, nil
}

// apply parses the delivery and dispatches it by topic
func (s *WebhookService) apply(ctx context.Context, m *merchant.Merchant, source *catalog.Source, req ProcessRequest) (*ProcessResult, error) {
	payload, err := ParseOrderPayload(req.Body)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	switch req.Topic {
	case TopicOrderCreated:
		return s.handleOrderCreated(ctx, m, source, payload)
	case TopicOrderUpdated:
		return s.handleOrderUpdated(ctx, m, source, payload)
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown webhook topic")
	}
}

// handleOrderCreated records a new order and, when every line item already
// has a mapping, opens a draft order and arms its deferred completion.
func (s *WebhookService) handleOrderCreated(ctx context.Context, m *merchant.Merchant, source *catalog.Source, payload *OrderPayload) (*ProcessResult, error) {
	if existing := m.FindOrder(payload.ID); existing != nil {
		s.logger.Info("Order already tracked, acknowledging",
			zap.Int64("marketplace_order_id", payload.ID),
		)
		return &ProcessResult{OrderID: payload.ID, Topic: TopicOrderCreated, Duplicate: true}, nil
	}

	match := catalog.MatchLineItems(payload.DomainLineItems(), m.MatchedProducts, m.UnmatchedProducts, source.MarketplaceURL)
	m.AddUnmatchedProducts(match.NewUnmatched)

	order, err := merchant.NewOrder(payload.ID, source.MarketplaceURL, payload.PaymentMethod, payload.DomainCustomer())
	if err != nil {
		return nil, err
	}
	order.ApplyMatch(match)

	result := &ProcessResult{
		OrderID:      payload.ID,
		Topic:        TopicOrderCreated,
		FullyMatched: match.FullyMatched(),
	}

	if match.FullyMatched() {
		draftID, err := s.draftClient.CreateDraftOrder(ctx, s.credentials(m), buildDraftInput(order))
		if err != nil {
			return nil, err
		}
		if err := order.AttachDraft(draftID); err != nil {
			return nil, err
		}
		if err := s.armCompletion(order, m); err != nil {
			return nil, err
		}
		result.DraftOrderID = draftID
	}

	if err := m.AddOrder(*order); err != nil {
		return nil, err
	}
	if err := s.merchantRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("Order created webhook processed",
		zap.String("shop", m.Shop),
		zap.Int64("marketplace_order_id", payload.ID),
		zap.Bool("fully_matched", result.FullyMatched),
		zap.String("draft_order_id", result.DraftOrderID),
	)
	return result, nil
}

// handleOrderUpdated re-partitions a tracked order against the current
// catalog and refreshes its draft order when one is open.
func (s *WebhookService) handleOrderUpdated(ctx context.Context, m *merchant.Merchant, source *catalog.Source, payload *OrderPayload) (*ProcessResult, error) {
	order := m.FindOrder(payload.ID)
	if order == nil {
		return nil, shared.ErrNotFound
	}

	match := catalog.MatchLineItems(payload.DomainLineItems(), m.MatchedProducts, m.UnmatchedProducts, source.MarketplaceURL)
	m.AddUnmatchedProducts(match.NewUnmatched)

	order.ApplyMatch(match)
	order.Customer = payload.DomainCustomer()
	if payload.PaymentMethod != "" {
		order.PaymentMethod = payload.PaymentMethod
	}

	result := &ProcessResult{
		OrderID:      payload.ID,
		Topic:        TopicOrderUpdated,
		FullyMatched: match.FullyMatched(),
		DraftOrderID: order.DraftOrderID,
	}

	// The draft is only rewritten when the updated order still resolves
	// completely; a partial match leaves the open draft untouched.
	if match.FullyMatched() && order.DraftOrderID != "" {
		if _, err := s.draftClient.UpdateDraftOrder(ctx, s.credentials(m), order.DraftOrderID, buildDraftInput(order)); err != nil {
			return nil, err
		}
	}

	if err := s.merchantRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("Order updated webhook processed",
		zap.String("shop", m.Shop),
		zap.Int64("marketplace_order_id", payload.ID),
		zap.Bool("fully_matched", result.FullyMatched),
	)
	return result, nil
}

// armCompletion schedules the deferred draft completion for an order
func (s *WebhookService) armCompletion(order *merchant.Order, m *merchant.Merchant) error {
	if err := order.ArmCompletion(); err != nil {
		return err
	}
	job := scheduler.NewOrderJob(scheduler.JobKindCompleteDraft, m.ID, order.MarketplaceOrderID)
	job.DraftOrderID = order.DraftOrderID
	job.PaymentMethod = order.PaymentMethod
	return s.scheduler.Schedule(job, s.completionDelay)
}

func (s *WebhookService) credentials(m *merchant.Merchant) integration.StorefrontCredentials {
	return integration.StorefrontCredentials{Shop: m.Shop, AccessToken: m.AccessToken}
}
