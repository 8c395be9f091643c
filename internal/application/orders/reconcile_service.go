package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orderlink/backend/internal/domain/catalog"
	"github.com/orderlink/backend/internal/domain/merchant"
	"github.com/orderlink/backend/internal/infrastructure/scheduler"
)

// ReconcileService applies operator product matches and promotes the orders
// that were waiting on them.
type ReconcileService struct {
	merchantRepo   merchant.Repository
	scheduler      JobScheduler
	reconcileDelay time.Duration
	logger         *zap.Logger
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(merchantRepo merchant.Repository, jobScheduler JobScheduler, reconcileDelay time.Duration, logger *zap.Logger) *ReconcileService {
	return &ReconcileService{
		merchantRepo:   merchantRepo,
		scheduler:      jobScheduler,
		reconcileDelay: reconcileDelay,
		logger:         logger,
	}
}

// MatchProductInput is the mapping an operator supplies for an unmatched
// product.
type MatchProductInput struct {
	UnmatchedID         uuid.UUID        `json:"unmatched_id"`
	StorefrontVariantID string           `json:"storefront_variant_id"`
	Name                string           `json:"name"`
	VariantName         string           `json:"variant_name"`
	Image               string           `json:"image"`
	QuantityPerUnit     int              `json:"quantity_per_unit"`
	Discount            catalog.Discount `json:"discount"`
}

// MatchProductResult reports the new mapping and the orders it promoted.
type MatchProductResult struct {
	Matched         catalog.MatchedProduct `json:"matched"`
	PromotedOrders  []int64                `json:"promoted_orders"`
	ScheduledOrders []int64                `json:"scheduled_orders"`
}

// MatchProduct promotes an unmatched product to a mapping, rewrites every
// order that referenced it, and arms completion for the orders the match
// made whole.
func (s *ReconcileService) MatchProduct(ctx context.Context, shop string, input MatchProductInput) (*MatchProductResult, error) {
	m, err := s.merchantRepo.FindByShop(ctx, shop)
	if err != nil {
		return nil, err
	}

	matched, err := m.MatchProduct(
		input.UnmatchedID,
		input.StorefrontVariantID,
		input.Name,
		input.VariantName,
		input.Image,
		input.QuantityPerUnit,
		input.Discount,
	)
	if err != nil {
		return nil, err
	}

	result := &MatchProductResult{Matched: *matched}

	for i := range m.Orders {
		order := &m.Orders[i]
		if order.PromoteUnmatched(*matched) == 0 {
			continue
		}
		result.PromotedOrders = append(result.PromotedOrders, order.MarketplaceOrderID)

		if !order.FullyMatched() {
			continue
		}

		kind := scheduler.JobKindUpdateAndComplete
		if order.DraftOrderID == "" {
			kind = scheduler.JobKindCreateAndComplete
		}
		if err := order.ArmCompletion(); err != nil {
			return nil, err
		}
		job := scheduler.NewOrderJob(kind, m.ID, order.MarketplaceOrderID)
		job.DraftOrderID = order.DraftOrderID
		job.PaymentMethod = order.PaymentMethod
		if err := s.scheduler.Schedule(job, s.reconcileDelay); err != nil {
			return nil, err
		}
		result.ScheduledOrders = append(result.ScheduledOrders, order.MarketplaceOrderID)
	}

	if err := s.merchantRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("Product matched",
		zap.String("shop", shop),
		zap.Int64("marketplace_product_id", matched.MarketplaceProductID),
		zap.String("variant_id", matched.StorefrontVariantID),
		zap.Int("promoted_orders", len(result.PromotedOrders)),
		zap.Int("scheduled_orders", len(result.ScheduledOrders)),
	)
	return result, nil
}
