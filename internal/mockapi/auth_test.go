package mockapi

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndValidate(t *testing.T) {
	m := NewTokenManager("test-secret-123", time.Hour)

	token, err := m.Issue("alice")
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestTokenManager_IssueRequiresUsername(t *testing.T) {
	m := NewTokenManager("test-secret-123", time.Hour)

	_, err := m.Issue("  ")

	assert.Error(t, err)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-one-123", time.Hour).Issue("alice")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-two-456", time.Hour).Validate(token)

	assert.Error(t, err)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("test-secret-123", time.Minute)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, err := m.Issue("alice")
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.Validate(token)

	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenManager_RejectsOtherSigningMethod(t *testing.T) {
	m := NewTokenManager("test-secret-123", time.Hour)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &tokenClaims{Username: "alice"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Validate(unsigned)

	assert.Error(t, err)
}

func TestTokenManager_RejectsForeignIssuer(t *testing.T) {
	m := NewTokenManager("test-secret-123", time.Hour)
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &tokenClaims{
		Username:         "alice",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	}).SignedString([]byte("test-secret-123"))
	require.NoError(t, err)

	_, err = m.Validate(foreign)

	assert.Error(t, err)
}
