// Package privacy handles storefront lifecycle and data-subject webhooks:
// app uninstall, customer data requests, customer redaction and shop
// redaction.
package privacy

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orderlink/backend/internal/domain/merchant"
	"github.com/orderlink/backend/internal/domain/privacy"
	"github.com/orderlink/backend/internal/domain/shared"
)

// Service processes storefront lifecycle and privacy webhooks.
type Service struct {
	merchantRepo merchant.Repository
	requestRepo  privacy.Repository
	logger       *zap.Logger
}

// ServiceConfig contains configuration for Service
type ServiceConfig struct {
	MerchantRepo merchant.Repository
	RequestRepo  privacy.Repository
	Logger       *zap.Logger
}

// NewService creates a new Service
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		merchantRepo: cfg.MerchantRepo,
		requestRepo:  cfg.RequestRepo,
		logger:       cfg.Logger,
	}
}

// HandleUninstalled deactivates the merchant and discards its access token.
// The record itself stays until the shop redaction webhook arrives.
func (s *Service) HandleUninstalled(ctx context.Context, shop string) error {
	m, err := s.merchantRepo.FindByShop(ctx, shop)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}

	m.Deactivate()
	if err := s.merchantRepo.Save(ctx, m); err != nil {
		return err
	}

	s.logger.Info("Merchant deactivated after uninstall", zap.String("shop", shop))
	return nil
}

// RecordDataRequest persists a customer data request for operator follow-up
func (s *Service) RecordDataRequest(ctx context.Context, shop string, customerID int64, email string, orderIDs []int64) error {
	request, err := privacy.NewCustomerDataRequest(shop, customerID, email, orderIDs)
	if err != nil {
		return err
	}
	if err := s.requestRepo.Save(ctx, request); err != nil {
		return err
	}

	s.logger.Info("Customer data request recorded",
		zap.String("shop", shop),
		zap.Int64("customer_id", customerID),
	)
	return nil
}

// RedactCustomer drops the customer's orders from the merchant's tracked
// set. Orders the merchant no longer tracks need no redaction.
func (s *Service) RedactCustomer(ctx context.Context, shop, email string, orderIDs []int64) error {
	m, err := s.merchantRepo.FindByShop(ctx, shop)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}

	redact := make(map[int64]bool, len(orderIDs))
	for _, id := range orderIDs {
		redact[id] = true
	}

	kept := m.Orders[:0]
	redacted := 0
	for _, order := range m.Orders {
		if redact[order.MarketplaceOrderID] || (email != "" && order.Customer.Email == email) {
			redacted++
			continue
		}
		kept = append(kept, order)
	}
	if redacted == 0 {
		return nil
	}
	m.Orders = kept

	if err := s.merchantRepo.Save(ctx, m); err != nil {
		return err
	}
	s.logger.Info("Customer orders redacted",
		zap.String("shop", shop),
		zap.Int("orders", redacted),
	)
	return nil
}

// RedactShop erases everything held for the shop, including recorded data
// requests.
func (s *Service) RedactShop(ctx context.Context, shop string) error {
	if err := s.requestRepo.DeleteByShop(ctx, shop); err != nil {
		return err
	}

	m, err := s.merchantRepo.FindByShop(ctx, shop)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.merchantRepo.Delete(ctx, m.ID); err != nil {
		return err
	}

	s.logger.Info("Shop data redacted", zap.String("shop", shop))
	return nil
}

// ListDataRequests returns the recorded data requests for a shop
func (s *Service) ListDataRequests(ctx context.Context, shop string) ([]privacy.CustomerDataRequest, error) {
	return s.requestRepo.FindByShop(ctx, shop)
}

// FulfillDataRequest marks a recorded data request as answered. Fulfilling
// an already answered request keeps the original fulfilment time.
func (s *Service) FulfillDataRequest(ctx context.Context, shop string, id uuid.UUID) (*privacy.CustomerDataRequest, error) {
	requests, err := s.requestRepo.FindByShop(ctx, shop)
	if err != nil {
		return nil, err
	}

	for i := range requests {
		if requests[i].ID != id {
			continue
		}
		request := requests[i]
		if request.Status == privacy.RequestStatusFulfilled {
			return &request, nil
		}
		request.Fulfill()
		if err := s.requestRepo.Save(ctx, &request); err != nil {
			return nil, err
		}
		s.logger.Info("Customer data request fulfilled",
			zap.String("shop", shop),
			zap.String("request_id", id.String()),
		)
		return &request, nil
	}
	return nil, shared.ErrNotFound
}
