package domain

import (
	"fmt"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CheckoutContext is the snapshot validated before an order is placed.
// It is assembled fresh for every validation pass.
type CheckoutContext struct {
	CartLines         []CartLine
	Catalog           []Product
	Addresses         []Address
	SelectedAddressID string
	WalletBalance     float64
}

// ValidationReason names the checkout rule that failed.
type ValidationReason string

const (
	InsufficientBalance ValidationReason = "INSUFFICIENT_BALANCE"
	NoAddresses         ValidationReason = "NO_ADDRESSES"
	NoAddressSelected   ValidationReason = "NO_ADDRESS_SELECTED"
)

// ValidationError is a failed checkout rule. It matches apperrors.ErrValidation.
type ValidationError struct {
	Reason ValidationReason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout validation failed: %s", e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrValidation
}

// ValidateCheckout runs the checkout rules in order and stops at the first
// failure: wallet balance, then address presence, then address selection.
// A nil return means the checkout may proceed.
func ValidateCheckout(c CheckoutContext) error {
	if TotalValue(c.CartLines, c.Catalog) > c.WalletBalance {
		return &ValidationError{Reason: InsufficientBalance}
	}
	if len(c.Addresses) == 0 {
		return &ValidationError{Reason: NoAddresses}
	}
	if c.SelectedAddressID == "" {
		return &ValidationError{Reason: NoAddressSelected}
	}
	return nil
}

// OrderResult is returned by a confirmed order placement.
type OrderResult struct {
	AddressID string       `json:"addressId"`
	Summary   OrderSummary `json:"summary"`
}
