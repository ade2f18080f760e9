package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewTokenService("secret", 0)
	token, err := s.Issue("65f1c0ffee0000000000abcd")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := s.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "65f1c0ffee0000000000abcd", id)
}

func TestTokenExpiresAfterThirtyDays(t *testing.T) {
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewTokenService("secret", DefaultTokenTTL)
	s.now = func() time.Time { return issued }

	token, err := s.Issue("user-1")
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(DefaultTokenTTL - time.Minute) }
	_, err = s.Verify(token)
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(DefaultTokenTTL + time.Minute) }
	_, err = s.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsForeignSignatures(t *testing.T) {
	token, err := NewTokenService("other", 0).Issue("user-1")
	require.NoError(t, err)

	_, err = NewTokenService("secret", 0).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenService("secret", 0).Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRequiresExpiryAndHS256(t *testing.T) {
	s := NewTokenService("secret", 0)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{ID: "user-1"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = s.Verify(noExp)
	require.ErrorIs(t, err, ErrInvalidToken)

	claims := Claims{ID: "user-1", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = s.Verify(hs512)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("pw12345")
	require.NoError(t, err)
	require.NotEqual(t, "pw12345", hash)
	require.True(t, CheckPassword(hash, "pw12345"))
	require.False(t, CheckPassword(hash, "pw123456"))
	require.False(t, CheckPassword("not-a-hash", "pw12345"))
}
