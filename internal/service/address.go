package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// AddressAPI is the remote address store.
type AddressAPI interface {
	FetchAddresses(ctx context.Context, token string) ([]domain.Address, error)
	AddAddress(ctx context.Context, token, text string) ([]domain.Address, error)
	DeleteAddress(ctx context.Context, token, id string) ([]domain.Address, error)
}

// AddAddressInput is the text of a new address.
type AddAddressInput struct {
	Text string `validate:"required,notblank,max=1000"`
}

// AddressBook holds the user's shipping addresses, the selected one, and the
// draft text of an address being typed.
type AddressBook struct {
	api    AddressAPI
	logger *slog.Logger

	mu        sync.Mutex
	addresses []domain.Address
	selected  string
	draft     string
}

// NewAddressBook creates an empty address book.
func NewAddressBook(api AddressAPI, logger *slog.Logger) *AddressBook {
	return &AddressBook{
		api:       api,
		logger:    logger,
		addresses: []domain.Address{},
	}
}

// Addresses returns a copy of the held list.
func (b *AddressBook) Addresses() []domain.Address {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyAddresses(b.addresses)
}

// List replaces the collection with the remote list. On failure the held
// collection is left untouched.
func (b *AddressBook) List(ctx context.Context, sess session.Session) ([]domain.Address, error) {
	if err := sess.RequireToken(); err != nil {
		return b.Addresses(), err
	}
	ctx = sess.Annotate(ctx)

	addrs, err := b.api.FetchAddresses(ctx, sess.Token)
	if err != nil {
		b.logger.WarnContext(ctx, "failed to fetch addresses", slog.String("error", err.Error()))
		return b.Addresses(), fmt.Errorf("fetch addresses: %w", err)
	}

	b.replace(addrs)
	return copyAddresses(addrs), nil
}

// Add saves text as a new address and then re-fetches the list. The draft is
// cleared only once the server has accepted the address.
func (b *AddressBook) Add(ctx context.Context, sess session.Session, text string) ([]domain.Address, error) {
	if err := sess.RequireToken(); err != nil {
		return b.Addresses(), err
	}
	if err := validator.Validate(AddAddressInput{Text: text}); err != nil {
		return b.Addresses(), apperrors.InvalidInput(err.Error())
	}
	ctx = sess.Annotate(ctx)

	addrs, err := b.api.AddAddress(ctx, sess.Token, text)
	if err != nil {
		b.logger.WarnContext(ctx, "failed to add address", slog.String("error", err.Error()))
		return b.Addresses(), fmt.Errorf("add address: %w", err)
	}

	b.mu.Lock()
	b.addresses = copyAddresses(addrs)
	b.draft = ""
	b.mu.Unlock()

	refreshed, err := b.api.FetchAddresses(ctx, sess.Token)
	if err != nil {
		b.logger.WarnContext(ctx, "failed to refresh addresses after add", slog.String("error", err.Error()))
		return copyAddresses(addrs), nil
	}

	b.replace(refreshed)
	b.logger.InfoContext(ctx, "address added", slog.Int("addresses", len(refreshed)))
	return copyAddresses(refreshed), nil
}

// Remove deletes the address with id. The response is the new list. A removed
// selected id is kept as the selection; see SelectionDangling.
func (b *AddressBook) Remove(ctx context.Context, sess session.Session, id string) ([]domain.Address, error) {
	if err := sess.RequireToken(); err != nil {
		return b.Addresses(), err
	}
	if strings.TrimSpace(id) == "" {
		return b.Addresses(), apperrors.InvalidInput("address id is required")
	}
	ctx = sess.Annotate(ctx)

	addrs, err := b.api.DeleteAddress(ctx, sess.Token, id)
	if err != nil {
		b.logger.WarnContext(ctx, "failed to delete address",
			slog.String("address_id", id),
			slog.String("error", err.Error()),
		)
		return b.Addresses(), fmt.Errorf("delete address: %w", err)
	}

	b.replace(addrs)
	return copyAddresses(addrs), nil
}

// Select marks id as the shipping address. Selecting the same id twice is a no-op.
func (b *AddressBook) Select(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selected = id
}

// ClearSelection drops the selected id.
func (b *AddressBook) ClearSelection() {
	b.Select("")
}

// Reset drops the held addresses, the selection and the draft, e.g. when
// another user signs in.
func (b *AddressBook) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addresses = []domain.Address{}
	b.selected = ""
	b.draft = ""
}

// Selected returns the selected id, or "".
func (b *AddressBook) Selected() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}

// SelectionDangling reports whether the selected id no longer names a held address.
func (b *AddressBook) SelectionDangling() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected != "" && domain.FindAddress(b.addresses, b.selected) < 0
}

// Draft returns the text of the address being typed.
func (b *AddressBook) Draft() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.draft
}

// SetDraft records the text of the address being typed.
func (b *AddressBook) SetDraft(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft = text
}

// AddDraft submits the current draft via Add.
func (b *AddressBook) AddDraft(ctx context.Context, sess session.Session) ([]domain.Address, error) {
	return b.Add(ctx, sess, b.Draft())
}

func (b *AddressBook) replace(addrs []domain.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addresses = copyAddresses(addrs)
}

func copyAddresses(addrs []domain.Address) []domain.Address {
	out := make([]domain.Address, len(addrs))
	copy(out, addrs)
	return out
}
