package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", 15*time.Minute, 7*24*time.Hour)

	access, err := m.IssueAccessToken(42)
	require.NoError(t, err)
	refresh, err := m.IssueRefreshToken(42)
	require.NoError(t, err)

	userID, err := m.Parse(access, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	userID, err = m.Parse(refresh, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestTokenManager_RejectsWrongType(t *testing.T) {
	m := NewTokenManager("secret", time.Minute, time.Hour)

	refresh, err := m.IssueRefreshToken(1)
	require.NoError(t, err)

	_, err = m.Parse(refresh, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute, time.Hour)
	issuedAt := time.Now().Add(-2 * time.Minute)
	m.now = func() time.Time { return issuedAt }

	token, err := m.IssueAccessToken(1)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	signer := NewTokenManager("one", time.Minute, time.Hour)
	verifier := NewTokenManager("two", time.Minute, time.Hour)

	token, err := signer.IssueAccessToken(1)
	require.NoError(t, err)

	_, err = verifier.Parse(token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsNoneAlgorithm(t *testing.T) {
	m := NewTokenManager("secret", time.Minute, time.Hour)

	claims := Claims{
		Type: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Parse(token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	m := NewTokenManager("secret", time.Minute, time.Hour)

	first, err := m.IssueRefreshToken(7)
	require.NoError(t, err)
	second, err := m.IssueRefreshToken(7)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLocalVerifier(t *testing.T) {
	m := NewTokenManager("secret", time.Minute, time.Hour)
	v := NewLocalVerifier(m)

	token, err := m.IssueAccessToken(9)
	require.NoError(t, err)

	principal, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(9), principal.UserID)

	_, err = v.Verify(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
