// Package service holds the storefront engine's stateful operations: cart
// mutations, debounced search, the address book and order placement.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// ErrStaleResponse is returned when a cart response arrives after the response
// to a later-issued mutation of the same product was applied. The stale record
// set is dropped.
var ErrStaleResponse = errors.New("stale cart response discarded")

// CartAPI is the remote cart store.
type CartAPI interface {
	FetchCart(ctx context.Context, token string) ([]domain.CartRecord, error)
	SetQuantity(ctx context.Context, token, productID string, qty int) ([]domain.CartRecord, error)
}

// SetQuantityOptions tunes a SetQuantity call.
type SetQuantityOptions struct {
	// PreventDuplicate aborts when productID already has a line with qty > 0.
	PreventDuplicate bool
}

type setQuantityInput struct {
	ProductID string `validate:"required,notblank"`
	Qty       int    `validate:"gte=0"`
}

// CartService applies quantity mutations against the remote cart store and
// holds the authoritative reconciled cart.
type CartService struct {
	api    CartAPI
	logger *slog.Logger

	mu    sync.Mutex
	lines []domain.CartLine
	// seq holds the tag of the latest mutation issued per product.
	seq map[string]uint64
	// applied holds the tag of the latest response applied per product.
	applied map[string]uint64
}

// NewCartService creates a cart service with an empty cart.
func NewCartService(api CartAPI, logger *slog.Logger) *CartService {
	return &CartService{
		api:     api,
		logger:  logger,
		lines:   []domain.CartLine{},
		seq:     make(map[string]uint64),
		applied: make(map[string]uint64),
	}
}

// Lines returns a copy of the current cart.
func (s *CartService) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.lines)
}

// Rebind re-reconciles the held cart against a freshly fetched catalog.
func (s *CartService) Rebind(catalog []domain.Product) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = domain.Reconcile(domain.Records(s.lines), catalog)
	return copyLines(s.lines)
}

// FetchCart loads the user's cart from the remote store and reconciles it.
func (s *CartService) FetchCart(ctx context.Context, sess session.Session, catalog []domain.Product) ([]domain.CartLine, error) {
	if err := sess.RequireToken(); err != nil {
		return s.Lines(), err
	}
	ctx = sess.Annotate(ctx)

	records, err := s.api.FetchCart(ctx, sess.Token)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to fetch cart", slog.String("error", err.Error()))
		return s.Lines(), fmt.Errorf("fetch cart: %w", err)
	}

	lines := domain.Reconcile(records, catalog)

	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()

	return copyLines(lines), nil
}

// SetQuantity sets productID to newQty in the remote cart. current is the cart
// the caller is looking at; it is used for the duplicate check and is returned
// unchanged on any failure. On success the response is reconciled against
// catalog and becomes the held cart.
func (s *CartService) SetQuantity(
	ctx context.Context,
	sess session.Session,
	current []domain.CartLine,
	productID string,
	catalog []domain.Product,
	newQty int,
	opts SetQuantityOptions,
) ([]domain.CartLine, error) {
	if err := sess.RequireToken(); err != nil {
		return current, err
	}
	if opts.PreventDuplicate && domain.InCart(current, productID) {
		return current, apperrors.DuplicateItem(productID)
	}
	if err := validator.Validate(setQuantityInput{ProductID: productID, Qty: newQty}); err != nil {
		return current, apperrors.InvalidInput(err.Error())
	}

	ctx = sess.Annotate(ctx)
	tag := s.issue(productID)

	records, err := s.api.SetQuantity(ctx, sess.Token, productID, newQty)
	if err != nil {
		s.logger.WarnContext(ctx, "cart update failed",
			slog.String("product_id", productID),
			slog.Int("qty", newQty),
			slog.String("error", err.Error()),
		)
		return current, fmt.Errorf("set quantity: %w", err)
	}

	lines := domain.Reconcile(records, catalog)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A failed later mutation leaves this confirmed response authoritative.
	if tag < s.applied[productID] {
		s.logger.InfoContext(ctx, "discarding stale cart response",
			slog.String("product_id", productID),
			slog.Uint64("tag", tag),
			slog.Uint64("applied", s.applied[productID]),
		)
		return copyLines(s.lines), ErrStaleResponse
	}
	s.applied[productID] = tag
	s.lines = lines

	s.logger.InfoContext(ctx, "cart updated",
		slog.String("product_id", productID),
		slog.Int("qty", newQty),
		slog.Int("lines", len(lines)),
	)
	return copyLines(lines), nil
}

// AddToCart adds one unit of productID. A product already in the cart is
// rejected with DuplicateItem.
func (s *CartService) AddToCart(ctx context.Context, sess session.Session, productID string, catalog []domain.Product) ([]domain.CartLine, error) {
	return s.SetQuantity(ctx, sess, s.Lines(), productID, catalog, 1, SetQuantityOptions{PreventDuplicate: true})
}

// Increment raises the quantity of productID by one.
func (s *CartService) Increment(ctx context.Context, sess session.Session, productID string, catalog []domain.Product) ([]domain.CartLine, error) {
	current := s.Lines()
	return s.SetQuantity(ctx, sess, current, productID, catalog, qtyOf(current, productID)+1, SetQuantityOptions{})
}

// Decrement lowers the quantity of productID by one; reaching zero removes it.
func (s *CartService) Decrement(ctx context.Context, sess session.Session, productID string, catalog []domain.Product) ([]domain.CartLine, error) {
	current := s.Lines()
	qty := qtyOf(current, productID)
	if qty == 0 {
		return current, apperrors.InvalidInput(fmt.Sprintf("product %s is not in the cart", productID))
	}
	return s.SetQuantity(ctx, sess, current, productID, catalog, qty-1, SetQuantityOptions{})
}

// Remove deletes productID from the cart.
func (s *CartService) Remove(ctx context.Context, sess session.Session, productID string, catalog []domain.Product) ([]domain.CartLine, error) {
	return s.SetQuantity(ctx, sess, s.Lines(), productID, catalog, 0, SetQuantityOptions{})
}

// Reset empties the held cart, e.g. after a placed order.
func (s *CartService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = []domain.CartLine{}
}

func (s *CartService) issue(productID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[productID]++
	return s.seq[productID]
}

func qtyOf(lines []domain.CartLine, productID string) int {
	if i := domain.FindLine(lines, productID); i >= 0 {
		return lines[i].Qty
	}
	return 0
}

func copyLines(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out
}
