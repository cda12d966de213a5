package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
)

// CheckoutAPI places an order.
type CheckoutAPI interface {
	Checkout(ctx context.Context, token, addressID string) error
}

// CheckoutService validates a checkout and places the order.
type CheckoutService struct {
	api    CheckoutAPI
	logger *slog.Logger
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(api CheckoutAPI, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{api: api, logger: logger}
}

// PlaceOrder validates c and, on a pass, sends exactly one checkout request
// for the selected address. It is never retried. A validation failure is a
// *domain.ValidationError and no request is made.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sess session.Session, c domain.CheckoutContext) (*domain.OrderResult, error) {
	if err := domain.ValidateCheckout(c); err != nil {
		return nil, err
	}
	if err := sess.RequireToken(); err != nil {
		return nil, err
	}
	ctx = sess.Annotate(ctx)

	summary := domain.Summarize(c.CartLines, c.Catalog)

	if err := s.api.Checkout(ctx, sess.Token, c.SelectedAddressID); err != nil {
		s.logger.ErrorContext(ctx, "order placement failed",
			slog.String("address_id", c.SelectedAddressID),
			slog.Float64("total", summary.Total),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("place order: %w", err)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("address_id", c.SelectedAddressID),
		slog.Int("items", summary.Items),
		slog.Float64("total", summary.Total),
	)
	return &domain.OrderResult{AddressID: c.SelectedAddressID, Summary: summary}, nil
}
