// Package session carries the signed-in user's credentials and wallet balance.
// A Session is passed explicitly to every operation that needs it; nothing in
// the engine reads it from global state.
package session

import (
	"context"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

const loginRequiredMessage = "Please log in to continue"

// Session is the identity an operation runs as. The zero value is a guest.
type Session struct {
	Token         string
	Username      string
	WalletBalance float64
}

// Guest returns an unauthenticated session.
func Guest() Session {
	return Session{}
}

// Authenticated reports whether the session carries a bearer token.
func (s Session) Authenticated() bool {
	return strings.TrimSpace(s.Token) != ""
}

// RequireToken returns an Unauthenticated error for a guest session.
func (s Session) RequireToken() error {
	if !s.Authenticated() {
		return apperrors.Unauthenticated(loginRequiredMessage)
	}
	return nil
}

// WithBalance returns a copy of s with the wallet balance replaced.
func (s Session) WithBalance(balance float64) Session {
	s.WalletBalance = balance
	return s
}

// Annotate stores the username on ctx so log lines carry it.
func (s Session) Annotate(ctx context.Context) context.Context {
	if s.Username == "" {
		return ctx
	}
	return logger.WithUsername(ctx, s.Username)
}
