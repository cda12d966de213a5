package mockapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/validator"
)

// MsgNoProducts is the search miss message.
const MsgNoProducts = "No products found"

// Handler serves the commerce API routes.
type Handler struct {
	store  *Store
	events OrderPublisher
	logger *slog.Logger
}

// NewHandler creates a new commerce API handler. Placed orders are announced
// through events.
func NewHandler(store *Store, events OrderPublisher, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		events: events,
		logger: logger,
	}
}

// --- Request DTOs ---

// SetQuantityRequest is the JSON request body of POST /cart.
type SetQuantityRequest struct {
	ProductID string `json:"productId" validate:"required,notblank"`
	Qty       *int   `json:"qty" validate:"required"`
}

// CheckoutRequest is the JSON request body of POST /cart/checkout.
type CheckoutRequest struct {
	AddressID string `json:"addressId" validate:"required,notblank"`
}

// AddAddressRequest is the JSON request body of POST /user/addresses.
type AddAddressRequest struct {
	Address string `json:"address" validate:"required,notblank,max=1000"`
}

// --- Handlers ---

// ListProducts handles GET /products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.Products())
}

// SearchProducts handles GET /products/search?value=
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")
	if strings.TrimSpace(value) == "" {
		httputil.WriteJSON(w, http.StatusOK, h.store.Products())
		return
	}

	matches := h.store.Search(value)
	if len(matches) == 0 {
		httputil.WriteFailure(w, http.StatusNotFound, MsgNoProducts)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, matches)
}

// GetCart handles GET /cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	user := middleware.UsernameFromContext(r.Context())
	httputil.WriteJSON(w, http.StatusOK, h.store.Cart(user))
}

// SetQuantity handles POST /cart
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		h.writeBadRequest(w, r, err)
		return
	}

	user := middleware.UsernameFromContext(r.Context())
	cart, err := h.store.SetQuantity(user, req.ProductID, *req.Qty)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.log(r).InfoContext(r.Context(), "cart quantity set",
		slog.String("product_id", req.ProductID),
		slog.Int("qty", *req.Qty),
	)
	httputil.WriteJSON(w, http.StatusOK, cart)
}

// Checkout handles POST /cart/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		h.writeBadRequest(w, r, err)
		return
	}

	user := middleware.UsernameFromContext(r.Context())
	order, err := h.store.Checkout(user, req.AddressID)
	if err != nil {
		h.log(r).WarnContext(r.Context(), "checkout rejected",
			slog.String("error", err.Error()),
		)
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.log(r).InfoContext(r.Context(), "order placed",
		slog.String("order_id", order.ID),
		slog.String("address_id", req.AddressID),
		slog.Float64("total", order.Total),
		slog.Float64("wallet_balance", h.store.Balance(user)),
	)

	// The order stands even when the event is lost.
	if err := h.events.PublishOrderPlaced(r.Context(), order); err != nil {
		h.log(r).ErrorContext(r.Context(), "failed to publish order event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
	httputil.WriteSuccess(w)
}

// ListAddresses handles GET /user/addresses
func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	user := middleware.UsernameFromContext(r.Context())
	httputil.WriteJSON(w, http.StatusOK, h.store.Addresses(user))
}

// AddAddress handles POST /user/addresses
func (h *Handler) AddAddress(w http.ResponseWriter, r *http.Request) {
	var req AddAddressRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		h.writeBadRequest(w, r, err)
		return
	}

	user := middleware.UsernameFromContext(r.Context())
	httputil.WriteJSON(w, http.StatusOK, h.store.AddAddress(user, req.Address))
}

// DeleteAddress handles DELETE /user/addresses/{id}
func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	user := middleware.UsernameFromContext(r.Context())
	list, err := h.store.DeleteAddress(user, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// writeBadRequest reports a body that failed to decode or validate.
func (h *Handler) writeBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteFailure(w, http.StatusBadRequest, "Invalid request body")
}

// log returns the request-scoped logger, falling back to the handler's own.
func (h *Handler) log(r *http.Request) *slog.Logger {
	if l := logger.FromContext(r.Context()); l != slog.Default() {
		return l
	}
	return h.logger
}
