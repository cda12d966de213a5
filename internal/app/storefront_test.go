package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/mockapi"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/session"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/logger"
)

// ============================================================================
// Test helpers
// ============================================================================

const testSecret = "test-secret-123"

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: "p1", Name: "iPhone XR", Category: "Phones", Cost: 100, Rating: 4},
		{ID: "p2", Name: "Basketball", Category: "Sports", Cost: 60, Rating: 5},
		{ID: "p3", Name: "Running Shoes", Category: "Sports", Cost: 150, Rating: 3},
	}
}

type testBackend struct {
	server *httptest.Server
	store  *mockapi.Store
	tokens *mockapi.TokenManager
}

// setupBackend starts the fake commerce API on a local listener.
func setupBackend(t *testing.T) *testBackend {
	t.Helper()
	store := mockapi.NewStore(testProducts(), 5000)
	tokens := mockapi.NewTokenManager(testSecret, time.Hour)
	router := mockapi.NewRouter(store, tokens.Validate, health.NewHandler(mockapi.ServiceName), logger.Discard())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testBackend{server: srv, store: store, tokens: tokens}
}

func (b *testBackend) token(t *testing.T, username string) string {
	t.Helper()
	token, err := b.tokens.Issue(username)
	require.NoError(t, err)
	return token
}

func testConfig(apiURL string) *config.Config {
	return &config.Config{
		Environment:         "test",
		LogLevel:            "error",
		APIURL:              apiURL + mockapi.APIPrefix,
		HTTPTimeoutSeconds:  5,
		SearchDebounceMs:    50,
		CBMaxRequests:       1,
		CBInterval:          60,
		CBTimeout:           30,
		CBFailureRatio:      0.5,
		CBMinRequests:       5,
		CatalogCacheBackend: config.CacheBackendMemory,
		CatalogCacheTTLMins: 15,
		WalletBalance:       5000,
	}
}

func newStorefront(t *testing.T, cfg *config.Config) *Storefront {
	t.Helper()
	sf, err := New(cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sf.Close(context.Background()) })
	return sf
}

// signedInStorefront returns a storefront logged in as alice with the catalog loaded.
func signedInStorefront(t *testing.T, b *testBackend) *Storefront {
	t.Helper()
	cfg := testConfig(b.server.URL)
	cfg.Username = "alice"
	cfg.Token = b.token(t, "alice")

	sf := newStorefront(t, cfg)
	_, err := sf.LoadCatalog(context.Background())
	require.NoError(t, err)
	return sf
}

func qtyOf(lines []domain.CartLine, productID string) int {
	if i := domain.FindLine(lines, productID); i >= 0 {
		return lines[i].Qty
	}
	return 0
}

// ============================================================================
// End-to-end flows
// ============================================================================

func TestStorefront_ShoppingFlow(t *testing.T) {
	b := setupBackend(t)
	sf := signedInStorefront(t, b)
	ctx := context.Background()

	assert.Len(t, sf.Products(), 3)

	lines, err := sf.AddToCart(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, qtyOf(lines, "p1"))
	assert.Equal(t, "iPhone XR", lines[0].Name())

	_, err = sf.AddToCart(ctx, "p1")
	assert.Equal(t, apperrors.KindDuplicateItem, apperrors.KindOf(err))

	lines, err = sf.Increment(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, qtyOf(lines, "p1"))

	_, err = sf.AddToCart(ctx, "p2")
	require.NoError(t, err)
	lines, err = sf.Decrement(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, -1, domain.FindLine(lines, "p2"))

	addrs, err := sf.AddAddress(ctx, "123 Main St")
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.Equal(t, "123 Main St", addrs[0].Text)

	_, err = sf.PlaceOrder(ctx)
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, domain.NoAddressSelected, valErr.Reason)

	sf.SelectAddress(addrs[0].ID)
	assert.Equal(t, domain.OrderSummary{Items: 2, Subtotal: 200, Total: 200}, sf.Summary())

	result, err := sf.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, addrs[0].ID, result.AddressID)
	assert.Equal(t, 200.0, result.Summary.Total)

	assert.Empty(t, sf.Cart())
	assert.Equal(t, 4800.0, sf.Session().WalletBalance)
	assert.Empty(t, b.store.Cart("alice"))
	assert.Equal(t, 4800.0, b.store.Balance("alice"))
}

func TestStorefront_ServerRejectsCheckout(t *testing.T) {
	b := setupBackend(t)
	b.store.SetBalance("alice", 50)
	sf := signedInStorefront(t, b)
	ctx := context.Background()

	_, err := sf.AddToCart(ctx, "p1")
	require.NoError(t, err)
	addrs, err := sf.AddAddress(ctx, "123 Main St")
	require.NoError(t, err)
	sf.SelectAddress(addrs[0].ID)

	_, err = sf.PlaceOrder(ctx)

	require.Error(t, err)
	assert.Equal(t, apperrors.KindServerRejection, apperrors.KindOf(err))
	assert.Equal(t, mockapi.MsgInsufficientBalance, apperrors.Message(err))
	assert.Len(t, sf.Cart(), 1)
	assert.Equal(t, 5000.0, sf.Session().WalletBalance)
}

func TestStorefront_LocalBalanceCheckSendsNothing(t *testing.T) {
	b := setupBackend(t)
	sf := signedInStorefront(t, b)
	ctx := context.Background()

	_, err := sf.AddToCart(ctx, "p3")
	require.NoError(t, err)
	addrs, err := sf.AddAddress(ctx, "123 Main St")
	require.NoError(t, err)
	sf.SelectAddress(addrs[0].ID)
	sf.SetSession(sf.Session().WithBalance(50))

	_, err = sf.PlaceOrder(ctx)

	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, domain.InsufficientBalance, valErr.Reason)
	assert.Len(t, b.store.Cart("alice"), 1)
}

func TestStorefront_GuestIsRejectedLocally(t *testing.T) {
	b := setupBackend(t)
	sf := newStorefront(t, testConfig(b.server.URL))
	ctx := context.Background()

	_, err := sf.LoadCatalog(ctx)
	require.NoError(t, err)

	_, err = sf.AddToCart(ctx, "p1")
	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))

	_, err = sf.ListAddresses(ctx)
	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))
}

func TestStorefront_FetchCartThenRebind(t *testing.T) {
	b := setupBackend(t)
	_, err := b.store.SetQuantity("alice", "p2", 3)
	require.NoError(t, err)

	cfg := testConfig(b.server.URL)
	cfg.Username = "alice"
	cfg.Token = b.token(t, "alice")
	sf := newStorefront(t, cfg)
	ctx := context.Background()

	lines, err := sf.FetchCart(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.False(t, lines[0].Resolved())

	_, err = sf.LoadCatalog(ctx)
	require.NoError(t, err)

	lines = sf.Cart()
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Resolved())
	assert.Equal(t, 180.0, sf.Summary().Total)
}

func TestStorefront_SetSessionForOtherUserResetsCart(t *testing.T) {
	b := setupBackend(t)
	sf := signedInStorefront(t, b)
	ctx := context.Background()

	_, err := sf.AddToCart(ctx, "p1")
	require.NoError(t, err)
	addrs, err := sf.AddAddress(ctx, "alice street 1")
	require.NoError(t, err)
	sf.SelectAddress(addrs[0].ID)

	sf.SetSession(session.Session{Username: "bob", Token: b.token(t, "bob")})

	assert.Empty(t, sf.Cart())
	assert.Empty(t, sf.Addresses())
	assert.Empty(t, sf.CheckoutContext().SelectedAddressID)

	var valErr *domain.ValidationError
	require.ErrorAs(t, domain.ValidateCheckout(sf.CheckoutContext()), &valErr)
	assert.Equal(t, domain.NoAddresses, valErr.Reason)

	lines, err := sf.FetchCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestStorefront_RemoveAddressKeepsDanglingSelection(t *testing.T) {
	b := setupBackend(t)
	sf := signedInStorefront(t, b)
	ctx := context.Background()

	addrs, err := sf.AddAddress(ctx, "123 Main St")
	require.NoError(t, err)
	sf.SelectAddress(addrs[0].ID)

	remaining, err := sf.RemoveAddress(ctx, addrs[0].ID)
	require.NoError(t, err)

	assert.Empty(t, remaining)
	assert.Equal(t, addrs[0].ID, sf.CheckoutContext().SelectedAddressID)
	assert.True(t, sf.AddressBook().SelectionDangling())
}

// ============================================================================
// Search
// ============================================================================

func TestStorefront_Search(t *testing.T) {
	b := setupBackend(t)
	sf := signedInStorefront(t, b)
	ctx := context.Background()

	result := sf.Search(ctx, "sports")
	require.NoError(t, result.Err)
	assert.Len(t, result.Products, 2)
	assert.Len(t, sf.Products(), 2)

	result = sf.Search(ctx, "laptop")
	assert.True(t, errors.Is(result.Err, apperrors.ErrNotFound))
	assert.Len(t, sf.Products(), 2)

	result = sf.Search(ctx, "")
	require.NoError(t, result.Err)
	assert.Len(t, sf.Products(), 3)
}

func TestStorefront_DebouncedSearch(t *testing.T) {
	b := setupBackend(t)
	sf := signedInStorefront(t, b)
	ctx := context.Background()

	results := make(chan service.SearchResult, 4)
	sf.OnSearchResult(func(r service.SearchResult) { results <- r })

	sf.SearchInput(ctx, "s")
	sf.SearchInput(ctx, "sp")
	sf.SearchInput(ctx, "sports")

	select {
	case r := <-results:
		require.NoError(t, r.Err)
		assert.Equal(t, "sports", r.Text)
		assert.Len(t, r.Products, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("debounced search never fired")
	}

	select {
	case r := <-results:
		t.Fatalf("unexpected second search for %q", r.Text)
	case <-time.After(150 * time.Millisecond):
	}
}

// ============================================================================
// Failure handling and catalog snapshots
// ============================================================================

func TestStorefront_UnreachableAPI(t *testing.T) {
	b := setupBackend(t)
	cfg := testConfig(b.server.URL)
	b.server.Close()
	sf := newStorefront(t, cfg)

	products, err := sf.LoadCatalog(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperrors.KindNetwork, apperrors.KindOf(err))
	assert.Empty(t, products)
}

// failingBackend answers every request with a bare 502 and counts hits per path.
type failingBackend struct {
	mu   sync.Mutex
	hits map[string]int
}

func (f *failingBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits[r.URL.Path]++
	f.mu.Unlock()
	w.WriteHeader(http.StatusBadGateway)
}

func (f *failingBackend) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func TestStorefront_BreakerOnlyShortCircuitsCatalogLoad(t *testing.T) {
	backend := &failingBackend{hits: map[string]int{}}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.Token = "token"
	cfg.Username = "alice"
	sf := newStorefront(t, cfg)
	ctx := context.Background()

	// CBMinRequests failures trip the breaker; later loads never reach the server.
	for i := 0; i < 8; i++ {
		_, err := sf.LoadCatalog(ctx)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindNetwork, apperrors.KindOf(err))
	}
	assert.Equal(t, int(cfg.CBMinRequests), backend.count(mockapi.APIPrefix+"/products"))

	// User actions are attempted once each, regardless of the breaker.
	const actions = 8
	for i := 0; i < actions; i++ {
		result := sf.Search(ctx, "phone")
		require.Error(t, result.Err)
		assert.Equal(t, apperrors.KindNetwork, apperrors.KindOf(result.Err))

		_, err := sf.ListAddresses(ctx)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindNetwork, apperrors.KindOf(err))

		_, err = sf.FetchCart(ctx)
		require.Error(t, err)
	}
	assert.Equal(t, actions, backend.count(mockapi.APIPrefix+"/products/search"))
	assert.Equal(t, actions, backend.count(mockapi.APIPrefix+"/user/addresses"))
	assert.Equal(t, actions, backend.count(mockapi.APIPrefix+"/cart"))
}

func TestStorefront_RedisSnapshotServedWhenAPIDown(t *testing.T) {
	mr := miniredis.RunT(t)
	b := setupBackend(t)

	cfg := testConfig(b.server.URL)
	cfg.CatalogCacheBackend = config.CacheBackendRedis
	cfg.RedisAddr = mr.Addr()

	first := newStorefront(t, cfg)
	_, err := first.LoadCatalog(context.Background())
	require.NoError(t, err)
	assert.True(t, mr.Exists("catalog:snapshot"))

	b.server.Close()

	second := newStorefront(t, cfg)
	products, err := second.LoadCatalog(context.Background())

	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestNew_RedisUnavailable(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.CatalogCacheBackend = config.CacheBackendRedis
	cfg.RedisAddr = "127.0.0.1:1"

	sf, err := New(cfg, logger.Discard())

	assert.Nil(t, sf)
	assert.Contains(t, err.Error(), "connect to redis")
}
