package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

func TestSession_Authenticated(t *testing.T) {
	assert.False(t, Guest().Authenticated())
	assert.False(t, Session{Token: "   "}.Authenticated())
	assert.True(t, Session{Token: "abc"}.Authenticated())
}

func TestSession_RequireToken(t *testing.T) {
	err := Guest().RequireToken()
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	assert.Equal(t, "Please log in to continue", apperrors.Message(err))

	assert.NoError(t, Session{Token: "abc"}.RequireToken())
}

func TestSession_WithBalance(t *testing.T) {
	s := Session{Token: "abc", WalletBalance: 10}
	updated := s.WithBalance(250)

	assert.Equal(t, 10.0, s.WalletBalance)
	assert.Equal(t, 250.0, updated.WalletBalance)
	assert.Equal(t, "abc", updated.Token)
}

func TestSession_Annotate(t *testing.T) {
	ctx := Session{Username: "crio-user"}.Annotate(context.Background())
	assert.Equal(t, "crio-user", logger.UsernameFromContext(ctx))

	ctx = Guest().Annotate(context.Background())
	assert.Empty(t, logger.UsernameFromContext(ctx))
}
