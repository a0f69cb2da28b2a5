package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-otp-auth/internal/domain"
	"github.com/go-otp-auth/internal/pkg/clock"
	"github.com/go-otp-auth/internal/pkg/id"
	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLen is the shortest accepted HS256 signing key.
const MinSecretLen = 32

var (
	ErrInvalidSigningMethod = errors.New("unexpected signing method")
	ErrInvalidToken         = errors.New("invalid token claims")
)

// Claims holds the JWT payload fields. Subject carries the user ID.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the credential.
func (c *Claims) UserID() string {
	return c.Subject
}

// Provider signs and verifies HS256 JWTs.
type Provider struct {
	secret []byte
	issuer string
	expiry time.Duration
	clock  clock.Clocker
}

func NewProvider(secret, issuer string, expiry time.Duration, clk clock.Clocker) (*Provider, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("jwt signing key shorter than %d bytes: %w", MinSecretLen, domain.ErrConfig)
	}
	if expiry <= 0 {
		return nil, fmt.Errorf("jwt expiry must be positive: %w", domain.ErrConfig)
	}
	return &Provider{secret: []byte(secret), issuer: issuer, expiry: expiry, clock: clk}, nil
}

// Sign issues a credential for the user and returns it with its expiry instant.
func (p *Provider) Sign(userID, email string) (string, time.Time, error) {
	now := p.clock.Now()
	expiresAt := now.Add(p.expiry)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.NewAt(now),
			Subject:   userID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign jwt: %w", err)
	}
	return signed, expiresAt, nil
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, ErrInvalidSigningMethod
			}
			return p.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.clock.Now),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
