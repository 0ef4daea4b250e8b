package jwt

import (
	"context"
	"errors"
	"testing"
	"time"

	"rintintin/internal/ports/auth"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T, now time.Time) *Signer {
	t.Helper()
	s, err := NewSigner(Config{Secret: "test-secret"})
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	return s
}

func TestSigner_IssueVerify_RoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	s := newTestSigner(t, now)

	tok, err := s.Issue(context.Background(), auth.Claims{UserID: "u-1", Email: "a@x.com", Role: "USER"})
	require.NoError(t, err)

	c, err := s.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UserID)
	assert.Equal(t, "a@x.com", c.Email)
	assert.Equal(t, "USER", c.Role)
}

func TestSigner_Verify_Expired(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	s := newTestSigner(t, now)

	tok, err := s.Issue(context.Background(), auth.Claims{UserID: "u-1"})
	require.NoError(t, err)

	s.now = func() time.Time { return now.Add(DefaultTTL + time.Minute) }
	_, err = s.Verify(context.Background(), tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, auth.ErrTokenExpired), "got %v", err)
}

func TestSigner_Verify_WrongSecret(t *testing.T) {
	now := time.Now()
	s := newTestSigner(t, now)

	other, err := NewSigner(Config{Secret: "another-secret"})
	require.NoError(t, err)

	tok, err := other.Issue(context.Background(), auth.Claims{UserID: "u-1"})
	require.NoError(t, err)

	_, err = s.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestSigner_Verify_RejectsNoneAlg(t *testing.T) {
	s := newTestSigner(t, time.Now())

	tok := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims{
		UserID: "u-1",
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := tok.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.Verify(context.Background(), raw)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestNewSigner_RequiresSecret(t *testing.T) {
	_, err := NewSigner(Config{Secret: "  "})
	assert.ErrorIs(t, err, ErrSecretEmpty)
}
