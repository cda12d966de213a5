package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
)

// --- Mock APIs ---

type mockCartAPI struct {
	mock.Mock
}

func (m *mockCartAPI) FetchCart(ctx context.Context, token string) ([]domain.CartRecord, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartRecord), args.Error(1)
}

func (m *mockCartAPI) SetQuantity(ctx context.Context, token, productID string, qty int) ([]domain.CartRecord, error) {
	args := m.Called(ctx, token, productID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartRecord), args.Error(1)
}

type mockSearchAPI struct {
	mock.Mock
}

func (m *mockSearchAPI) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockSearchAPI) SearchProducts(ctx context.Context, text string) ([]domain.Product, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

type mockAddressAPI struct {
	mock.Mock
}

func (m *mockAddressAPI) FetchAddresses(ctx context.Context, token string) ([]domain.Address, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

func (m *mockAddressAPI) AddAddress(ctx context.Context, token, text string) ([]domain.Address, error) {
	args := m.Called(ctx, token, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

func (m *mockAddressAPI) DeleteAddress(ctx context.Context, token, id string) ([]domain.Address, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

type mockCheckoutAPI struct {
	mock.Mock
}

func (m *mockCheckoutAPI) Checkout(ctx context.Context, token, addressID string) error {
	args := m.Called(ctx, token, addressID)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func signedIn() session.Session {
	return session.Session{Token: "tok-1", Username: "crio-user", WalletBalance: 5000}
}

func testCatalog() []domain.Product {
	return []domain.Product{
		{ID: "p1", Name: "Tan Leatherette Weekender Duffle", Category: "Fashion", Cost: 150, Rating: 4},
		{ID: "p2", Name: "The Minimalist Slim Leather Watch", Category: "Electronics", Cost: 60, Rating: 5},
		{ID: "p3", Name: "YONEX Smash Badminton Racquet", Category: "Sports", Cost: 100, Rating: 5},
	}
}
