package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/api"
	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/tracing"
)

// ServiceName labels the storefront's logs and spans.
const ServiceName = "storefront"

// Storefront wires together all dependencies of the cart engine and exposes
// the operations a storefront UI or CLI drives.
type Storefront struct {
	cfg    *config.Config
	logger *slog.Logger

	mu      sync.Mutex
	session session.Session

	catalogClient *api.Client
	rdb           *redis.Client
	catalog       *catalog.Cache

	cart      *service.CartService
	search    *service.SearchDebouncer
	addresses *service.AddressBook
	checkout  *service.CheckoutService

	tracerShutdown func(context.Context) error
}

// New creates a storefront from cfg, initializing all dependencies. The
// session starts from the configured token, username and wallet balance.
func New(cfg *config.Config, logger *slog.Logger) (*Storefront, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tcfg := tracing.DefaultConfig(ServiceName)
	tcfg.Environment = cfg.Environment
	tcfg.Enabled = cfg.OTELEnabled
	tcfg.OTLPEndpoint = cfg.OTELEndpoint
	tcfg.SampleRate = cfg.OTELSampleRate
	tracerShutdown, err := tracing.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Catalog snapshot store.
	var (
		rdb   *redis.Client
		store catalog.Store
	)
	switch cfg.CatalogCacheBackend {
	case config.CacheBackendRedis:
		rdb, err = database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		database.SetSlowCommandLogging(cfg.RedisSlowCommand(), logger)
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		store = catalog.NewRedisStore(rdb, cfg.CatalogCacheTTL())
	default:
		store = catalog.NewMemoryStore()
	}

	// Commerce API transport: one attempt per call. Only the catalog load,
	// which can fall back to a snapshot, runs behind the circuit breaker.
	httpClient := httpclient.New(cfg.HTTPClient())
	breaker := httpclient.NewCircuitBreakerClient(httpClient, cfg.CircuitBreaker(), logger).
		WithFallback(api.CircuitOpenFallback)
	client := api.NewClient(cfg.APIURL, httpClient, logger)
	catalogClient := api.NewClient(cfg.APIURL, breaker, logger)

	cache := catalog.NewCache(store, logger)

	return &Storefront{
		cfg:    cfg,
		logger: logger,
		session: session.Session{
			Token:         cfg.Token,
			Username:      cfg.Username,
			WalletBalance: cfg.WalletBalance,
		},
		catalogClient:  catalogClient,
		rdb:            rdb,
		catalog:        cache,
		cart:           service.NewCartService(client, logger),
		search:         service.NewSearchDebouncer(client, cache, cfg.SearchDebounce(), logger),
		addresses:      service.NewAddressBook(client, logger),
		checkout:       service.NewCheckoutService(client, logger),
		tracerShutdown: tracerShutdown,
	}, nil
}

// Session returns the current session.
func (s *Storefront) Session() session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// SetSession replaces the current session. Held cart and address state from a
// previous user is discarded when the username changes.
func (s *Storefront) SetSession(sess session.Session) {
	s.mu.Lock()
	changed := s.session.Username != sess.Username
	s.session = sess
	s.mu.Unlock()

	if changed {
		s.cart.Reset()
		s.addresses.Reset()
	}
}

// --- Catalog ---

// LoadCatalog fetches the full catalog and re-reconciles the held cart
// against it. When the API cannot be reached, a stored snapshot is served
// instead if one exists. Repeated failures open the circuit breaker, after
// which the fetch is skipped until the breaker's timeout elapses.
func (s *Storefront) LoadCatalog(ctx context.Context) ([]domain.Product, error) {
	products, err := s.catalogClient.FetchProducts(ctx)
	if err != nil {
		warmed, werr := s.catalog.Warm(ctx)
		if werr != nil || !warmed {
			return s.catalog.Products(), fmt.Errorf("load catalog: %w", err)
		}
		s.logger.WarnContext(ctx, "commerce API unavailable, serving catalog snapshot",
			slog.Int("products", s.catalog.Len()),
			slog.String("error", err.Error()),
		)
		s.cart.Rebind(s.catalog.Products())
		return s.catalog.Products(), nil
	}

	s.catalog.Replace(ctx, products)
	s.cart.Rebind(products)
	return products, nil
}

// Products returns the catalog currently held.
func (s *Storefront) Products() []domain.Product {
	return s.catalog.Products()
}

// Search runs a catalog search immediately, bypassing the debounce window.
func (s *Storefront) Search(ctx context.Context, text string) service.SearchResult {
	return s.search.Search(ctx, text)
}

// SearchInput feeds one keystroke-level change of the search box.
func (s *Storefront) SearchInput(ctx context.Context, text string) {
	s.search.OnInput(ctx, text)
}

// OnSearchResult registers the receiver of debounced search results.
func (s *Storefront) OnSearchResult(fn func(service.SearchResult)) {
	s.search.OnResult(fn)
}

// --- Cart ---

// Cart returns the held cart.
func (s *Storefront) Cart() []domain.CartLine {
	return s.cart.Lines()
}

// FetchCart loads the remote cart and reconciles it with the catalog.
func (s *Storefront) FetchCart(ctx context.Context) ([]domain.CartLine, error) {
	return s.cart.FetchCart(ctx, s.Session(), s.catalog.Products())
}

// AddToCart adds one unit of productID. A product already in the cart is rejected.
func (s *Storefront) AddToCart(ctx context.Context, productID string) ([]domain.CartLine, error) {
	return s.cart.AddToCart(ctx, s.Session(), productID, s.catalog.Products())
}

// Increment raises the quantity of productID by one.
func (s *Storefront) Increment(ctx context.Context, productID string) ([]domain.CartLine, error) {
	return s.cart.Increment(ctx, s.Session(), productID, s.catalog.Products())
}

// Decrement lowers the quantity of productID by one; at zero the line is removed.
func (s *Storefront) Decrement(ctx context.Context, productID string) ([]domain.CartLine, error) {
	return s.cart.Decrement(ctx, s.Session(), productID, s.catalog.Products())
}

// RemoveFromCart removes productID from the cart.
func (s *Storefront) RemoveFromCart(ctx context.Context, productID string) ([]domain.CartLine, error) {
	return s.cart.Remove(ctx, s.Session(), productID, s.catalog.Products())
}

// --- Addresses ---

// Addresses returns the held address list.
func (s *Storefront) Addresses() []domain.Address {
	return s.addresses.Addresses()
}

// ListAddresses loads the saved addresses.
func (s *Storefront) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	return s.addresses.List(ctx, s.Session())
}

// AddAddress saves a new address and refreshes the list.
func (s *Storefront) AddAddress(ctx context.Context, text string) ([]domain.Address, error) {
	return s.addresses.Add(ctx, s.Session(), text)
}

// RemoveAddress deletes the address with id.
func (s *Storefront) RemoveAddress(ctx context.Context, id string) ([]domain.Address, error) {
	return s.addresses.Remove(ctx, s.Session(), id)
}

// SelectAddress marks id as the shipping address.
func (s *Storefront) SelectAddress(id string) {
	s.addresses.Select(id)
}

// AddressBook exposes the address book for draft editing.
func (s *Storefront) AddressBook() *service.AddressBook {
	return s.addresses
}

// --- Checkout ---

// CheckoutContext assembles a fresh snapshot of everything checkout validates.
func (s *Storefront) CheckoutContext() domain.CheckoutContext {
	return domain.CheckoutContext{
		CartLines:         s.cart.Lines(),
		Catalog:           s.catalog.Products(),
		Addresses:         s.addresses.Addresses(),
		SelectedAddressID: s.addresses.Selected(),
		WalletBalance:     s.Session().WalletBalance,
	}
}

// Summary returns the order details of the held cart.
func (s *Storefront) Summary() domain.OrderSummary {
	return domain.Summarize(s.cart.Lines(), s.catalog.Products())
}

// PlaceOrder validates the checkout and places the order. On success the held
// cart is emptied and the session's wallet balance is debited by the total.
func (s *Storefront) PlaceOrder(ctx context.Context) (*domain.OrderResult, error) {
	result, err := s.checkout.PlaceOrder(ctx, s.Session(), s.CheckoutContext())
	if err != nil {
		return nil, err
	}

	s.cart.Reset()
	s.mu.Lock()
	s.session = s.session.WithBalance(s.session.WalletBalance - result.Summary.Total)
	s.mu.Unlock()
	return result, nil
}

// Close stops pending searches and releases connections.
func (s *Storefront) Close(ctx context.Context) error {
	s.search.Stop()

	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			s.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if err := s.tracerShutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer: %w", err)
	}
	return nil
}
