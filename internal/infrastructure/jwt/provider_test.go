package jwtinfra

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-otp-auth/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = strings.Repeat("s", 32)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func newProvider(t *testing.T, clk *fixedClock) *Provider {
	t.Helper()
	p, err := NewProvider(secret, "go-otp-auth", 7*24*time.Hour, clk)
	require.NoError(t, err)
	return p
}

func TestNewProvider_ShortSecret(t *testing.T) {
	_, err := NewProvider("short", "iss", time.Hour, &fixedClock{})
	assert.True(t, errors.Is(err, domain.ErrConfig))
}

func TestSignVerify_RoundTrip(t *testing.T) {
	clk := &fixedClock{now: time.Now().UTC().Truncate(time.Second)}
	p := newProvider(t, clk)

	signed, expiresAt, err := p.Sign("u1", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, clk.now.Add(7*24*time.Hour), expiresAt)

	claims, err := p.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID())
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "go-otp-auth", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestVerify_Expired(t *testing.T) {
	clk := &fixedClock{now: time.Now().UTC()}
	p := newProvider(t, clk)

	signed, _, err := p.Sign("u1", "a@x.com")
	require.NoError(t, err)

	clk.now = clk.now.Add(8 * 24 * time.Hour)
	_, err = p.Verify(signed)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestVerify_WrongKey(t *testing.T) {
	clk := &fixedClock{now: time.Now().UTC()}
	other, err := NewProvider(strings.Repeat("o", 32), "go-otp-auth", time.Hour, clk)
	require.NoError(t, err)

	signed, _, err := other.Sign("u1", "a@x.com")
	require.NoError(t, err)

	_, err = newProvider(t, clk).Verify(signed)
	assert.Error(t, err)
}

func TestVerify_WrongIssuer(t *testing.T) {
	clk := &fixedClock{now: time.Now().UTC()}
	other, err := NewProvider(secret, "someone-else", time.Hour, clk)
	require.NoError(t, err)

	signed, _, err := other.Sign("u1", "a@x.com")
	require.NoError(t, err)

	_, err = newProvider(t, clk).Verify(signed)
	assert.True(t, errors.Is(err, jwt.ErrTokenInvalidIssuer))
}

func TestVerify_RejectsNoneAlg(t *testing.T) {
	clk := &fixedClock{now: time.Now().UTC()}
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u1",
		Issuer:    "go-otp-auth",
		ExpiresAt: jwt.NewNumericDate(clk.now.Add(time.Hour)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newProvider(t, clk).Verify(signed)
	assert.Error(t, err)
}
