// Package notice maps engine outcomes to the short messages a storefront
// shows its user.
package notice

import (
	"errors"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Severity grades a notice.
type Severity string

const (
	Success Severity = "success"
	Info    Severity = "info"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Notice is a user-facing message.
type Notice struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Messages shown on success.
var (
	CartUpdated  = Notice{Message: "Cart successfully updated", Severity: Success}
	AddressAdded = Notice{Message: "Address added successfully!", Severity: Success}
	OrderPlaced  = Notice{Message: "Order placed successfully!", Severity: Success}
)

const unreachable = "Could not reach the store. Check that the backend is running, reachable and returns valid JSON."

// FromError maps err to the notice a user should see. A nil error maps to the
// zero Notice.
func FromError(err error) Notice {
	if err == nil {
		return Notice{}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return fromValidation(ve.Reason)
	}

	switch apperrors.KindOf(err) {
	case apperrors.KindUnauthenticated:
		return Notice{Message: "Please log in to continue", Severity: Warning}
	case apperrors.KindDuplicateItem:
		return Notice{Message: "Item already in cart. Use the cart sidebar to update quantity or remove item.", Severity: Warning}
	case apperrors.KindNotFound:
		return Notice{Message: "No products found", Severity: Info}
	case apperrors.KindInvalidInput:
		return Notice{Message: messageOr(err, "Invalid input"), Severity: Warning}
	case apperrors.KindServerRejection:
		return Notice{Message: messageOr(err, "Checkout failed. Please try again later."), Severity: Error}
	case apperrors.KindNetwork:
		return Notice{Message: unreachable, Severity: Error}
	default:
		return Notice{Message: "Something went wrong. Please try again later.", Severity: Error}
	}
}

func fromValidation(reason domain.ValidationReason) Notice {
	switch reason {
	case domain.InsufficientBalance:
		return Notice{Message: "You do not have enough balance in your wallet for this purchase", Severity: Warning}
	case domain.NoAddresses:
		return Notice{Message: "Please add a new address before proceeding.", Severity: Warning}
	case domain.NoAddressSelected:
		return Notice{Message: "Please select one shipping address to proceed.", Severity: Warning}
	default:
		return Notice{Message: "Checkout failed. Please try again later.", Severity: Warning}
	}
}

func messageOr(err error, fallback string) string {
	if msg := strings.TrimSpace(apperrors.Message(err)); msg != "" {
		return msg
	}
	return fallback
}
