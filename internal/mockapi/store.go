package mockapi

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Rejection messages returned to clients.
const (
	MsgUnknownProduct      = "Product doesn't exist"
	MsgNegativeQuantity    = "Quantity must not be negative"
	MsgEmptyCart           = "Cart is empty"
	MsgAddressNotSet       = "Address not set"
	MsgInsufficientBalance = "Wallet balance not sufficient to place order"
)

// Order is a placed order as recorded by Checkout.
type Order struct {
	ID        string              `json:"orderId"`
	Username  string              `json:"username"`
	AddressID string              `json:"addressId"`
	Items     []domain.CartRecord `json:"items"`
	Total     float64             `json:"total"`
	PlacedAt  time.Time           `json:"placedAt"`
}

// Store is the in-memory state behind the fake commerce API. Carts, addresses
// and wallets are keyed by username.
type Store struct {
	mu          sync.RWMutex
	products    []domain.Product
	carts       map[string][]domain.CartRecord
	addresses   map[string][]domain.Address
	wallets     map[string]float64
	seedBalance float64
	newID       func() string
}

// NewStore creates a store serving products. Every user starts with seedBalance.
func NewStore(products []domain.Product, seedBalance float64) *Store {
	catalog := make([]domain.Product, len(products))
	copy(catalog, products)
	return &Store{
		products:    catalog,
		carts:       make(map[string][]domain.CartRecord),
		addresses:   make(map[string][]domain.Address),
		wallets:     make(map[string]float64),
		seedBalance: seedBalance,
		newID:       uuid.NewString,
	}
}

// Products returns the full catalog.
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.products)
}

// Search returns products whose name or category contains text, ignoring case.
func (s *Store) Search(text string) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(text))

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]domain.Product, 0)
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle) {
			matches = append(matches, p)
		}
	}
	return matches
}

// Cart returns the cart records of user.
func (s *Store) Cart(user string) []domain.CartRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.carts[user])
}

// SetQuantity sets the quantity of productID in the cart of user and returns
// the resulting cart. Qty 0 removes the record.
func (s *Store) SetQuantity(user, productID string, qty int) ([]domain.CartRecord, error) {
	if qty < 0 {
		return nil, apperrors.InvalidInput(MsgNegativeQuantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if domain.FindProduct(s.products, productID) == nil {
		return nil, apperrors.InvalidInput(MsgUnknownProduct)
	}

	cart := s.carts[user]
	idx := -1
	for i := range cart {
		if cart[i].ProductID == productID {
			idx = i
			break
		}
	}

	switch {
	case qty == 0 && idx >= 0:
		cart = append(cart[:idx:idx], cart[idx+1:]...)
	case qty == 0:
	case idx >= 0:
		cart[idx].Qty = qty
	default:
		cart = append(cart, domain.CartRecord{ProductID: productID, Qty: qty})
	}
	s.carts[user] = cart

	return cloneSlice(cart), nil
}

// Addresses returns the saved addresses of user.
func (s *Store) Addresses(user string) []domain.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.addresses[user])
}

// AddAddress saves text as a new address of user and returns the full list.
func (s *Store) AddAddress(user, text string) []domain.Address {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addresses[user] = append(s.addresses[user], domain.Address{ID: s.newID(), Text: text})
	return cloneSlice(s.addresses[user])
}

// DeleteAddress removes the address id of user and returns the remaining list.
func (s *Store) DeleteAddress(user, id string) ([]domain.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.addresses[user]
	idx := domain.FindAddress(list, id)
	if idx < 0 {
		return nil, apperrors.NotFound("address", id)
	}
	s.addresses[user] = append(list[:idx:idx], list[idx+1:]...)
	return cloneSlice(s.addresses[user]), nil
}

// Balance returns the wallet balance of user.
func (s *Store) Balance(user string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balanceLocked(user)
}

// SetBalance overrides the wallet balance of user.
func (s *Store) SetBalance(user string, balance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[user] = balance
}

// Checkout places the order for the cart of user: it debits the wallet by the
// cart total and empties the cart. Nothing changes when it fails.
func (s *Store) Checkout(user, addressID string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[user]
	if len(cart) == 0 {
		return nil, apperrors.InvalidInput(MsgEmptyCart)
	}
	if addressID == "" || domain.FindAddress(s.addresses[user], addressID) < 0 {
		return nil, apperrors.InvalidInput(MsgAddressNotSet)
	}

	total := domain.TotalValue(domain.Reconcile(cart, s.products), s.products)
	balance := s.balanceLocked(user)
	if total > balance {
		return nil, apperrors.InvalidInput(MsgInsufficientBalance)
	}

	s.wallets[user] = balance - total
	delete(s.carts, user)
	return &Order{
		ID:        uuid.NewString(),
		Username:  user,
		AddressID: addressID,
		Items:     cart,
		Total:     total,
		PlacedAt:  time.Now().UTC(),
	}, nil
}

func (s *Store) balanceLocked(user string) float64 {
	if b, ok := s.wallets[user]; ok {
		return b
	}
	return s.seedBalance
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
