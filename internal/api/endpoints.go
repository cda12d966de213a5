package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

type setQuantityRequest struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

type addAddressRequest struct {
	Address string `json:"address"`
}

type checkoutRequest struct {
	AddressID string `json:"addressId"`
}

type checkoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// FetchProducts returns the full catalog.
func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := send[[]domain.Product](ctx, c, request{
		name:   "fetch_products",
		method: http.MethodGet,
		path:   "/products",
	})
	return list(products, err)
}

// SearchProducts returns the products matching text. A 404 surfaces as an
// error matching apperrors.ErrNotFound.
func (c *Client) SearchProducts(ctx context.Context, text string) ([]domain.Product, error) {
	products, err := send[[]domain.Product](ctx, c, request{
		name:   "search_products",
		method: http.MethodGet,
		path:   "/products/search",
		query:  url.Values{"value": {text}},
	})
	return list(products, err)
}

// FetchCart returns the user's raw cart records.
func (c *Client) FetchCart(ctx context.Context, token string) ([]domain.CartRecord, error) {
	records, err := send[[]domain.CartRecord](ctx, c, request{
		name:   "fetch_cart",
		method: http.MethodGet,
		path:   "/cart",
		token:  token,
		auth:   true,
	})
	return list(records, err)
}

// SetQuantity sets the quantity of productID and returns the resulting record
// set. qty 0 removes the product.
func (c *Client) SetQuantity(ctx context.Context, token, productID string, qty int) ([]domain.CartRecord, error) {
	records, err := send[[]domain.CartRecord](ctx, c, request{
		name:   "set_quantity",
		method: http.MethodPost,
		path:   "/cart",
		token:  token,
		auth:   true,
		body:   setQuantityRequest{ProductID: productID, Qty: qty},
	})
	return list(records, err)
}

// FetchAddresses returns the user's saved addresses.
func (c *Client) FetchAddresses(ctx context.Context, token string) ([]domain.Address, error) {
	addrs, err := send[[]domain.Address](ctx, c, request{
		name:   "fetch_addresses",
		method: http.MethodGet,
		path:   "/user/addresses",
		token:  token,
		auth:   true,
	})
	return list(addrs, err)
}

// AddAddress saves a new address and returns the list the server answered with.
func (c *Client) AddAddress(ctx context.Context, token, text string) ([]domain.Address, error) {
	addrs, err := send[[]domain.Address](ctx, c, request{
		name:   "add_address",
		method: http.MethodPost,
		path:   "/user/addresses",
		token:  token,
		auth:   true,
		body:   addAddressRequest{Address: text},
	})
	return list(addrs, err)
}

// DeleteAddress removes an address and returns the remaining list.
func (c *Client) DeleteAddress(ctx context.Context, token, id string) ([]domain.Address, error) {
	addrs, err := send[[]domain.Address](ctx, c, request{
		name:   "delete_address",
		method: http.MethodDelete,
		path:   "/user/addresses/" + url.PathEscape(id),
		token:  token,
		auth:   true,
	})
	return list(addrs, err)
}

// Checkout places the order for the current cart, shipping to addressID.
func (c *Client) Checkout(ctx context.Context, token, addressID string) error {
	resp, err := send[checkoutResponse](ctx, c, request{
		name:   "checkout",
		method: http.MethodPost,
		path:   "/cart/checkout",
		token:  token,
		auth:   true,
		body:   checkoutRequest{AddressID: addressID},
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "checkout was not confirmed"
		}
		return apperrors.ServerRejection(http.StatusOK, msg)
	}
	return nil
}

// list normalizes a decoded JSON array: null becomes empty, and nothing is
// returned alongside an error.
func list[T any](items []T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []T{}, nil
	}
	return items, nil
}
