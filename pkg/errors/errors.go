package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrDuplicateItem   = errors.New("item already in cart")
	ErrValidation      = errors.New("validation failed")
	ErrNetwork         = errors.New("network failure")
	ErrServerRejection = errors.New("server rejected request")
	ErrInternal        = errors.New("internal error")
)

// Kind classifies an error into the storefront's failure taxonomy.
type Kind string

const (
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindDuplicateItem   Kind = "DUPLICATE_ITEM"
	KindValidation      Kind = "VALIDATION_FAILURE"
	KindNetwork         Kind = "NETWORK_FAILURE"
	KindServerRejection Kind = "SERVER_REJECTION"
	KindNotFound        Kind = "NOT_FOUND"
	KindInvalidInput    Kind = "INVALID_INPUT"
	KindInternal        Kind = "INTERNAL_ERROR"
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    string(KindNotFound),
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    string(KindInvalidInput),
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthenticated reports a missing or rejected session token.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Code:    string(KindUnauthenticated),
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthenticated,
	}
}

// DuplicateItem reports an add-to-cart for a product that already has a line.
func DuplicateItem(productID string) *AppError {
	return &AppError{
		Code:    string(KindDuplicateItem),
		Message: fmt.Sprintf("product %s is already in the cart", productID),
		Status:  http.StatusConflict,
		Err:     ErrDuplicateItem,
	}
}

// NetworkFailure wraps a transport error, or a response without a structured message.
func NetworkFailure(err error) *AppError {
	return &AppError{
		Code:    string(KindNetwork),
		Message: "could not reach the commerce API",
		Status:  http.StatusBadGateway,
		Err:     fmt.Errorf("%w: %w", ErrNetwork, err),
	}
}

// ServerRejection carries the structured message a remote service responded with.
func ServerRejection(status int, message string) *AppError {
	return &AppError{
		Code:    string(KindServerRejection),
		Message: message,
		Status:  status,
		Err:     ErrServerRejection,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    string(KindInternal),
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// KindOf returns the taxonomy kind of err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrDuplicateItem):
		return KindDuplicateItem
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrServerRejection):
		return KindServerRejection
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	default:
		return KindInternal
	}
}

// Message returns the user-facing message carried by err, or "" if it has none.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput, KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindDuplicateItem:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
