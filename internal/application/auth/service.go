// Package auth exchanges storefront credentials for operator session tokens.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"go.uber.org/zap"

	"github.com/orderlink/backend/internal/domain/merchant"
	"github.com/orderlink/backend/internal/domain/shared"
)

// TokenIssuer signs session tokens for a shop.
type TokenIssuer interface {
	Generate(shop string) (string, error)
}

// Service authenticates a shop by its storefront access token and issues a
// session token for the operator console.
type Service struct {
	merchantRepo merchant.Repository
	tokens       TokenIssuer
	logger       *zap.Logger
}

// NewService creates a new Service
func NewService(merchantRepo merchant.Repository, tokens TokenIssuer, logger *zap.Logger) *Service {
	return &Service{
		merchantRepo: merchantRepo,
		tokens:       tokens,
		logger:       logger,
	}
}

// IssueSession verifies the shop's access token and returns a signed session
// token. Unknown shops and bad tokens get the same answer so callers cannot
// tell which shops are installed.
func (s *Service) IssueSession(ctx context.Context, shop, accessToken string) (string, error) {
	m, err := s.merchantRepo.FindByShop(ctx, shop)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", shared.ErrUnauthorized
		}
		return "", err
	}

	if !m.Active || m.AccessToken == "" {
		return "", shared.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(m.AccessToken), []byte(accessToken)) != 1 {
		return "", shared.ErrUnauthorized
	}

	token, err := s.tokens.Generate(shop)
	if err != nil {
		return "", err
	}

	s.logger.Info("Session issued", zap.String("shop", shop))
	return token, nil
}
