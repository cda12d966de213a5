package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/middleware"
)

// ============================================================================
// Test helpers
// ============================================================================

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishOrderPlaced(ctx context.Context, order *Order) error {
	return m.Called(ctx, order).Error(0)
}

type testAPI struct {
	store   *Store
	handler http.Handler
	token   string
}

func setupTestAPI(t *testing.T, opts ...RouterOption) *testAPI {
	t.Helper()
	store := newTestStore(200)
	tokens := NewTokenManager("test-secret-123", time.Hour)
	token, err := tokens.Issue("alice")
	require.NoError(t, err)

	return &testAPI{
		store:   store,
		handler: NewRouter(store, tokens.Validate, health.NewHandler(ServiceName), logger.Discard(), opts...),
		token:   token,
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, APIPrefix+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// ============================================================================
// Catalog
// ============================================================================

func TestListProducts(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodGet, "/products", nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))
	assert.Len(t, decode[[]domain.Product](t, rec), 3)
}

func TestListProducts_WireShape(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodGet, "/products", nil, false)

	var raw []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	require.NotEmpty(t, raw)
	for _, key := range []string{"_id", "name", "category", "cost", "rating", "image"} {
		assert.Contains(t, raw[0], key)
	}
}

func TestSearchProducts(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodGet, "/products/search?value=sports", nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Product](t, rec), 2)
}

func TestSearchProducts_NoMatch(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodGet, "/products/search?value=laptop", nil, false)

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[httputil.Failure](t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, MsgNoProducts, body.Message)
}

func TestSearchProducts_BlankReturnsCatalog(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodGet, "/products/search?value=", nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Product](t, rec), 3)
}

// ============================================================================
// Auth
// ============================================================================

func TestProtectedRoutes_RequireToken(t *testing.T) {
	api := setupTestAPI(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/cart"},
		{http.MethodPost, "/cart"},
		{http.MethodPost, "/cart/checkout"},
		{http.MethodGet, "/user/addresses"},
		{http.MethodPost, "/user/addresses"},
		{http.MethodDelete, "/user/addresses/addr-1"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := api.do(t, rt.method, rt.path, nil, false)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, middleware.MissingTokenMessage, decode[httputil.Failure](t, rec).Message)
		})
	}
}

// ============================================================================
// Cart
// ============================================================================

func TestSetQuantity(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodPost, "/cart", map[string]any{"productId": "p1", "qty": 2}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []domain.CartRecord{{ProductID: "p1", Qty: 2}}, decode[[]domain.CartRecord](t, rec))

	rec = api.do(t, http.MethodGet, "/cart", nil, true)
	assert.Equal(t, []domain.CartRecord{{ProductID: "p1", Qty: 2}}, decode[[]domain.CartRecord](t, rec))
}

func TestSetQuantity_ZeroRemoves(t *testing.T) {
	api := setupTestAPI(t)
	_, err := api.store.SetQuantity("alice", "p1", 2)
	require.NoError(t, err)

	rec := api.do(t, http.MethodPost, "/cart", map[string]any{"productId": "p1", "qty": 0}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.CartRecord](t, rec))
}

func TestSetQuantity_UnknownProduct(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodPost, "/cart", map[string]any{"productId": "nope", "qty": 1}, true)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, MsgUnknownProduct, decode[httputil.Failure](t, rec).Message)
}

func TestSetQuantity_InvalidBody(t *testing.T) {
	api := setupTestAPI(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing qty", map[string]any{"productId": "p1"}},
		{"blank product", map[string]any{"productId": "  ", "qty": 1}},
		{"wrong type", map[string]any{"productId": "p1", "qty": "two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/cart", tt.body, true)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, decode[httputil.Failure](t, rec).Success)
		})
	}
	assert.Empty(t, api.store.Cart("alice"))
}

// ============================================================================
// Checkout
// ============================================================================

func TestCheckout(t *testing.T) {
	api := setupTestAPI(t)
	_, err := api.store.SetQuantity("alice", "p1", 1)
	require.NoError(t, err)
	api.store.AddAddress("alice", "123 Main St")

	rec := api.do(t, http.MethodPost, "/cart/checkout", map[string]string{"addressId": "addr-1"}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[httputil.Confirmation](t, rec).Success)
	assert.Empty(t, api.store.Cart("alice"))
	assert.Equal(t, 100.0, api.store.Balance("alice"))
}

func TestCheckout_PublishesOrderEvent(t *testing.T) {
	events := new(mockPublisher)
	api := setupTestAPI(t, WithOrderPublisher(events))
	_, err := api.store.SetQuantity("alice", "p2", 2)
	require.NoError(t, err)
	api.store.AddAddress("alice", "123 Main St")

	events.On("PublishOrderPlaced", mock.Anything, mock.MatchedBy(func(o *Order) bool {
		return o.Username == "alice" && o.AddressID == "addr-1" && o.Total == 120
	})).Return(nil).Once()

	rec := api.do(t, http.MethodPost, "/cart/checkout", map[string]string{"addressId": "addr-1"}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	events.AssertExpectations(t)
}

func TestCheckout_PublishFailureKeepsOrder(t *testing.T) {
	events := new(mockPublisher)
	api := setupTestAPI(t, WithOrderPublisher(events))
	_, err := api.store.SetQuantity("alice", "p1", 1)
	require.NoError(t, err)
	api.store.AddAddress("alice", "123 Main St")

	events.On("PublishOrderPlaced", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	rec := api.do(t, http.MethodPost, "/cart/checkout", map[string]string{"addressId": "addr-1"}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, api.store.Cart("alice"))
	assert.Equal(t, 100.0, api.store.Balance("alice"))
}

func TestCheckout_RejectedOrderIsNotPublished(t *testing.T) {
	events := new(mockPublisher)
	api := setupTestAPI(t, WithOrderPublisher(events))

	rec := api.do(t, http.MethodPost, "/cart/checkout", map[string]string{"addressId": "addr-1"}, true)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	events.AssertNotCalled(t, "PublishOrderPlaced", mock.Anything, mock.Anything)
}

func TestCheckout_InsufficientBalance(t *testing.T) {
	api := setupTestAPI(t)
	_, err := api.store.SetQuantity("alice", "p3", 2)
	require.NoError(t, err)
	api.store.AddAddress("alice", "123 Main St")

	rec := api.do(t, http.MethodPost, "/cart/checkout", map[string]string{"addressId": "addr-1"}, true)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[httputil.Failure](t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, MsgInsufficientBalance, body.Message)
	assert.Len(t, api.store.Cart("alice"), 1)
}

func TestCheckout_MissingAddressID(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodPost, "/cart/checkout", map[string]string{}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ============================================================================
// Addresses
// ============================================================================

func TestAddresses(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodPost, "/user/addresses", map[string]string{"address": "123 Main St"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []domain.Address{{ID: "addr-1", Text: "123 Main St"}}, decode[[]domain.Address](t, rec))

	rec = api.do(t, http.MethodGet, "/user/addresses", nil, true)
	assert.Len(t, decode[[]domain.Address](t, rec), 1)

	rec = api.do(t, http.MethodDelete, "/user/addresses/addr-1", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.Address](t, rec))

	rec = api.do(t, http.MethodDelete, "/user/addresses/addr-1", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddAddress_Blank(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodPost, "/user/addresses", map[string]string{"address": "   "}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, api.store.Addresses("alice"))
}

// ============================================================================
// Operational endpoints
// ============================================================================

func TestHealthAndMetrics(t *testing.T) {
	api := setupTestAPI(t)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		api.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestCorrelationIDEchoed(t *testing.T) {
	api := setupTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, APIPrefix+"/products", nil)
	req.Header.Set(middleware.CorrelationIDHeader, "corr-42")
	rec := httptest.NewRecorder()

	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, "corr-42", rec.Header().Get(middleware.CorrelationIDHeader))
}
