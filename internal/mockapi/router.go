package mockapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// ServiceName labels the fake API's logs, metrics and spans.
const ServiceName = "mockapi"

// APIPrefix is the mount point of the commerce API routes.
const APIPrefix = "/api/v1"

// RouterOption customizes NewRouter.
type RouterOption func(*routerOptions)

type routerOptions struct {
	events OrderPublisher
}

// WithOrderPublisher announces placed orders through p.
func WithOrderPublisher(p OrderPublisher) RouterOption {
	return func(o *routerOptions) { o.events = p }
}

// NewRouter creates a chi router with all commerce API routes registered.
func NewRouter(
	store *Store,
	tokens middleware.TokenValidator,
	healthHandler *health.Handler,
	logger *slog.Logger,
	opts ...RouterOption,
) http.Handler {
	options := routerOptions{events: NopPublisher{}}
	for _, opt := range opts {
		opt(&options)
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	h := NewHandler(store, options.events, logger)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(time.Minute))
			r.Get("/products", h.ListProducts)
			r.Get("/products/search", h.SearchProducts)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokens))
			r.Use(middleware.RequestLogger(logger))

			r.Get("/cart", h.GetCart)
			r.Post("/cart", h.SetQuantity)
			r.Post("/cart/checkout", h.Checkout)

			r.Get("/user/addresses", h.ListAddresses)
			r.Post("/user/addresses", h.AddAddress)
			r.Delete("/user/addresses/{id}", h.DeleteAddress)
		})
	})

	return r
}
