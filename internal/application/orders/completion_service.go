package orders

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/orderlink/backend/internal/domain/integration"
	"github.com/orderlink/backend/internal/domain/merchant"
	"github.com/orderlink/backend/internal/domain/shared"
	"github.com/orderlink/backend/internal/infrastructure/scheduler"
)

// CompletionService executes deferred completion jobs. Every decision is
// made against freshly loaded state: the merchant, the order and its match
// partition may all have changed since the job was armed.
type CompletionService struct {
	merchantRepo merchant.Repository
	draftClient  integration.DraftOrderClient
	logger       *zap.Logger
}

// NewCompletionService creates a new CompletionService
func NewCompletionService(merchantRepo merchant.Repository, draftClient integration.DraftOrderClient, logger *zap.Logger) *CompletionService {
	return &CompletionService{
		merchantRepo: merchantRepo,
		draftClient:  draftClient,
		logger:       logger,
	}
}

// Execute runs one fired job
func (s *CompletionService) Execute(ctx context.Context, job scheduler.OrderJob) error {
	m, err := s.merchantRepo.FindByID(ctx, job.MerchantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Merchant uninstalled while the timer ran
			return nil
		}
		return err
	}

	order := m.FindOrder(job.MarketplaceOrderID)
	if order == nil {
		// Order completed or cancelled while the timer ran
		s.logger.Info("Deferred job found no order, skipping",
			zap.String("shop", m.Shop),
			zap.Int64("marketplace_order_id", job.MarketplaceOrderID),
		)
		return nil
	}

	if !order.FullyMatched() {
		s.logger.Info("Order no longer fully matched, completion aborted",
			zap.String("shop", m.Shop),
			zap.Int64("marketplace_order_id", job.MarketplaceOrderID),
		)
		return nil
	}

	creds := integration.StorefrontCredentials{Shop: m.Shop, AccessToken: m.AccessToken}

	switch job.Kind {
	case scheduler.JobKindCompleteDraft:
		// The draft was opened when the order arrived, nothing to prepare
	case scheduler.JobKindCreateAndComplete:
		draftID, err := s.draftClient.CreateDraftOrder(ctx, creds, buildDraftInput(order))
		if err != nil {
			return err
		}
		if err := order.AttachDraft(draftID); err != nil {
			return err
		}
	case scheduler.JobKindUpdateAndComplete:
		if order.DraftOrderID != "" {
			if _, err := s.draftClient.UpdateDraftOrder(ctx, creds, order.DraftOrderID, buildDraftInput(order)); err != nil {
				return err
			}
		}
	default:
		return nil
	}

	if !order.IsCompleteEligible() {
		s.logger.Info("Order has no draft to complete, skipping",
			zap.String("shop", m.Shop),
			zap.Int64("marketplace_order_id", job.MarketplaceOrderID),
		)
		return nil
	}

	orderID, err := s.draftClient.CompleteDraftOrder(ctx, creds, order.DraftOrderID, order.PaymentMethod)
	if err != nil {
		return err
	}

	m.RemoveOrder(job.MarketplaceOrderID)
	if err := s.merchantRepo.Save(ctx, m); err != nil {
		return err
	}

	s.logger.Info("Draft order completed",
		zap.String("shop", m.Shop),
		zap.Int64("marketplace_order_id", job.MarketplaceOrderID),
		zap.String("order_id", orderID),
		zap.String("kind", string(job.Kind)),
	)
	return nil
}
